// Package domain contains the core business entities of the journaling
// coach: users, flashcard decks and cards, their review state, journal
// entries and the AI analyses attached to them. It is independent of any
// storage or delivery mechanism.
package domain
