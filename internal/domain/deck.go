package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Deck validation errors
var (
	ErrEmptyDeckID     = errors.New("deck ID cannot be empty")
	ErrEmptyDeckUserID = errors.New("deck user ID cannot be empty")
	ErrEmptyDeckName   = errors.New("deck name cannot be empty")
	ErrDeckNameTooLong = errors.New("deck name must be at most 200 characters")
)

const maxDeckNameLength = 200

// Deck groups a user's flashcards.
type Deck struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDeck creates a validated deck owned by userID.
func NewDeck(userID uuid.UUID, name string) (*Deck, error) {
	now := time.Now().UTC()
	deck := &Deck{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := deck.Validate(); err != nil {
		return nil, err
	}

	return deck, nil
}

// Validate checks if the Deck has valid data.
func (d *Deck) Validate() error {
	if d.ID == uuid.Nil {
		return ErrEmptyDeckID
	}
	if d.UserID == uuid.Nil {
		return ErrEmptyDeckUserID
	}
	if d.Name == "" {
		return ErrEmptyDeckName
	}
	if len(d.Name) > maxDeckNameLength {
		return ErrDeckNameTooLong
	}
	return nil
}
