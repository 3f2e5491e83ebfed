package srs

import (
	"errors"
	"time"

	"github.com/phrazzld/quill-api/internal/domain"
)

// Common errors
var (
	ErrNilState     = errors.New("review state cannot be nil")
	ErrInvalidDays  = errors.New("postpone days must be at least 1")
	ErrNilParameter = errors.New("scheduler parameters cannot be nil")
)

// Service applies the scheduling algorithm to persisted review states.
// All methods return new values and never modify their input.
type Service interface {
	// CalculateNextReview returns the state after a review graded quality.
	CalculateNextReview(
		state *domain.ReviewState,
		quality Quality,
		now time.Time,
	) (*domain.ReviewState, error)

	// PreviewIntervals returns the interval each button would produce.
	PreviewIntervals(state *domain.ReviewState) (Intervals, error)

	// PostponeReview pushes the due date forward by whole days.
	PostponeReview(
		state *domain.ReviewState,
		days int,
		now time.Time,
	) (*domain.ReviewState, error)
}

type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduler service with default parameters.
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a new scheduler service with custom parameters.
func NewServiceWithParams(params *Params) (Service, error) {
	if params == nil {
		return nil, ErrNilParameter
	}
	return &defaultService{params: params}, nil
}

func (s *defaultService) CalculateNextReview(
	state *domain.ReviewState,
	quality Quality,
	now time.Time,
) (*domain.ReviewState, error) {
	if state == nil {
		return nil, ErrNilState
	}

	res := Review(State{Interval: state.Interval, EaseFactor: state.EaseFactor}, quality, now, s.params)

	updated := *state
	updated.Interval = res.Interval
	updated.EaseFactor = res.EaseFactor
	updated.NextReviewAt = res.NextReviewAt
	updated.LastReviewedAt = res.LastReviewedAt
	updated.ReviewCount++
	updated.UpdatedAt = now.UTC()

	return &updated, nil
}

func (s *defaultService) PreviewIntervals(state *domain.ReviewState) (Intervals, error) {
	if state == nil {
		return Intervals{}, ErrNilState
	}
	return Preview(State{Interval: state.Interval, EaseFactor: state.EaseFactor}, s.params), nil
}

// PostponeReview moves NextReviewAt forward by days, counted from the later of
// now and the current due date, so postponing an overdue card never leaves it
// due in the past.
func (s *defaultService) PostponeReview(
	state *domain.ReviewState,
	days int,
	now time.Time,
) (*domain.ReviewState, error) {
	if state == nil {
		return nil, ErrNilState
	}
	if days < 1 {
		return nil, ErrInvalidDays
	}

	from := state.NextReviewAt
	if from.Before(now) {
		from = now
	}

	updated := *state
	updated.NextReviewAt = startOfDay(from.AddDate(0, 0, days))
	updated.UpdatedAt = now.UTC()

	return &updated, nil
}
