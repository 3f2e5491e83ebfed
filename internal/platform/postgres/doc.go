// Package postgres implements the store and task persistence interfaces on
// PostgreSQL through database/sql and the pgx stdlib driver. It also owns
// the embedded goose migrations that create the schema.
package postgres
