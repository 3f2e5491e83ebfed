// Package store defines the persistence interfaces used by the services.
// Implementations live under internal/platform; services depend only on
// these interfaces.
package store
