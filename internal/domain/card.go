package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardUserIDEmpty is returned when a card's user ID is empty or nil.
	ErrCardUserIDEmpty = errors.New("card user ID cannot be empty")

	// ErrCardDeckIDEmpty is returned when a card's deck ID is empty or nil.
	ErrCardDeckIDEmpty = errors.New("card deck ID cannot be empty")

	// ErrCardContentEmpty is returned when a card's content is empty.
	ErrCardContentEmpty = errors.New("card content cannot be empty")

	// ErrCardContentInvalid is returned when a card's content is not valid JSON.
	ErrCardContentInvalid = errors.New("card content must be valid JSON")
)

// Card is a flashcard. Content is stored as JSONB so card formats can grow
// without schema changes; CardContent is the shape the API writes.
type Card struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	DeckID    uuid.UUID       `json:"deck_id"`
	Content   json.RawMessage `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CardContent is the standard content of a card.
type CardContent struct {
	Front   string   `json:"front"`
	Back    string   `json:"back"`
	Example string   `json:"example,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// NewCard creates a new Card with the given owner, deck and content.
func NewCard(userID, deckID uuid.UUID, content json.RawMessage) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		ID:        uuid.New(),
		UserID:    userID,
		DeckID:    deckID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.UserID == uuid.Nil {
		return ErrCardUserIDEmpty
	}

	if c.DeckID == uuid.Nil {
		return ErrCardDeckIDEmpty
	}

	if len(c.Content) == 0 {
		return ErrCardContentEmpty
	}

	if !json.Valid(c.Content) {
		return ErrCardContentInvalid
	}

	return nil
}

// UpdateContent replaces the card content after validating it.
func (c *Card) UpdateContent(content json.RawMessage) error {
	if len(content) == 0 {
		return ErrCardContentEmpty
	}
	if !json.Valid(content) {
		return ErrCardContentInvalid
	}

	c.Content = content
	c.UpdatedAt = time.Now().UTC()
	return nil
}
