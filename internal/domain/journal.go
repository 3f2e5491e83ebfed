package domain

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// EntryStatus represents the analysis state of a journal entry.
type EntryStatus string

// Possible entry status values
const (
	EntryStatusPending   EntryStatus = "pending"
	EntryStatusAnalyzing EntryStatus = "analyzing"
	EntryStatusAnalyzed  EntryStatus = "analyzed"
	EntryStatusFailed    EntryStatus = "failed"
)

// Journal entry validation errors
var (
	ErrEmptyEntryID       = errors.New("journal entry ID cannot be empty")
	ErrEmptyEntryUserID   = errors.New("journal entry user ID cannot be empty")
	ErrEmptyEntryText     = errors.New("journal entry text cannot be empty")
	ErrEntryTextTooLong   = errors.New("journal entry text must be at most 10000 characters")
	ErrInvalidEntryStatus = errors.New("invalid journal entry status")
)

// MaxEntryLength is the longest entry, in characters, accepted for analysis.
const MaxEntryLength = 10000

// JournalEntry is a piece of free writing in the user's target language.
type JournalEntry struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"user_id"`
	Text      string      `json:"text"`
	Status    EntryStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewJournalEntry creates a pending entry for userID.
func NewJournalEntry(userID uuid.UUID, text string) (*JournalEntry, error) {
	now := time.Now().UTC()
	entry := &JournalEntry{
		ID:        uuid.New(),
		UserID:    userID,
		Text:      text,
		Status:    EntryStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	return entry, nil
}

// Validate checks if the JournalEntry has valid data.
func (e *JournalEntry) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEmptyEntryID
	}
	if e.UserID == uuid.Nil {
		return ErrEmptyEntryUserID
	}
	if e.Text == "" {
		return ErrEmptyEntryText
	}
	if utf8.RuneCountInString(e.Text) > MaxEntryLength {
		return ErrEntryTextTooLong
	}
	if !isValidEntryStatus(e.Status) {
		return ErrInvalidEntryStatus
	}
	return nil
}

// UpdateStatus updates the entry's status and UpdatedAt timestamp.
func (e *JournalEntry) UpdateStatus(status EntryStatus) error {
	if !isValidEntryStatus(status) {
		return ErrInvalidEntryStatus
	}

	e.Status = status
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// Valid reports whether s is a known entry status.
func (s EntryStatus) Valid() bool {
	return isValidEntryStatus(s)
}

func isValidEntryStatus(status EntryStatus) bool {
	switch status {
	case EntryStatusPending, EntryStatusAnalyzing, EntryStatusAnalyzed, EntryStatusFailed:
		return true
	default:
		return false
	}
}
