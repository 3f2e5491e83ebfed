package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ReviewOutcome is the button a learner pressed after seeing a card.
type ReviewOutcome string

// Review outcomes offered by the client.
const (
	ReviewOutcomeForgot ReviewOutcome = "forgot"
	ReviewOutcomeGood   ReviewOutcome = "good"
	ReviewOutcomeEasy   ReviewOutcome = "easy"
)

// Valid reports whether o is one of the named outcomes.
func (o ReviewOutcome) Valid() bool {
	switch o {
	case ReviewOutcomeForgot, ReviewOutcomeGood, ReviewOutcomeEasy:
		return true
	default:
		return false
	}
}

// Defaults for a card that has never been reviewed.
const (
	DefaultInterval   = 1.0
	DefaultEaseFactor = 2.5
)

// Review state validation errors
var (
	ErrEmptyStateUserID  = errors.New("review state user ID cannot be empty")
	ErrEmptyStateCardID  = errors.New("review state card ID cannot be empty")
	ErrInvalidInterval   = errors.New("interval must be at least 1 day")
	ErrInvalidEaseFactor = errors.New("ease factor must be at least 1.3")
)

// ReviewState is the scheduling state of one card for its owner.
// Interval is in whole days but kept as float64 so ease-factor arithmetic
// never truncates before rounding. LastReviewedAt is zero until the first
// review.
type ReviewState struct {
	UserID         uuid.UUID `json:"user_id"`
	CardID         uuid.UUID `json:"card_id"`
	Interval       float64   `json:"interval"`
	EaseFactor     float64   `json:"ease_factor"`
	NextReviewAt   time.Time `json:"next_review_at"`
	LastReviewedAt time.Time `json:"last_reviewed_at"`
	ReviewCount    int       `json:"review_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewReviewState creates the state of a brand-new card: due immediately,
// interval 1, ease factor 2.5.
func NewReviewState(userID, cardID uuid.UUID, now time.Time) (*ReviewState, error) {
	now = now.UTC()
	state := &ReviewState{
		UserID:       userID,
		CardID:       cardID,
		Interval:     DefaultInterval,
		EaseFactor:   DefaultEaseFactor,
		NextReviewAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := state.Validate(); err != nil {
		return nil, err
	}

	return state, nil
}

// Validate checks if the ReviewState has valid data.
func (s *ReviewState) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrEmptyStateUserID
	}
	if s.CardID == uuid.Nil {
		return ErrEmptyStateCardID
	}
	if s.Interval < 1 {
		return ErrInvalidInterval
	}
	if s.EaseFactor < 1.3 {
		return ErrInvalidEaseFactor
	}
	return nil
}

// Learning reports whether the card is still in the one-day learning step.
func (s *ReviewState) Learning() bool {
	return s.Interval <= 1
}

// ReviewLog is an append-only record of a single review.
type ReviewLog struct {
	ID               uuid.UUID     `json:"id"`
	UserID           uuid.UUID     `json:"user_id"`
	CardID           uuid.UUID     `json:"card_id"`
	Outcome          ReviewOutcome `json:"outcome"`
	Quality          int           `json:"quality"`
	PreviousInterval float64       `json:"previous_interval"`
	NewInterval      float64       `json:"new_interval"`
	EaseFactor       float64       `json:"ease_factor"`
	ReviewedAt       time.Time     `json:"reviewed_at"`
}
