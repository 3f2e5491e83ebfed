// Package service provides the application services behind the HTTP API:
// users, decks and cards, journal entries and proficiency forecasts. The
// review flow lives in the card_review subpackage.
//
// Services depend on the store interfaces only. Operations that touch more
// than one table run inside store.RunInTransaction on the *sql.DB they were
// constructed with, using the WithTx variants of their stores.
package service
