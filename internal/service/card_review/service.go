// Package card_review runs the spaced-repetition review flow: listing due
// cards, grading reviews and postponing cards.
package card_review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/domain/srs"
	"github.com/phrazzld/quill-api/internal/platform/logger"
	"github.com/phrazzld/quill-api/internal/platform/metrics"
	"github.com/phrazzld/quill-api/internal/store"
)

// ReviewAnswer is the learner's response to a card.
type ReviewAnswer struct {
	Outcome domain.ReviewOutcome `json:"outcome"`
}

// CardReviewService provides the review operations.
type CardReviewService interface {
	// GetDueCards returns up to limit of the user's due cards, most overdue
	// first. A limit of 0 or above the configured maximum uses the maximum.
	GetDueCards(ctx context.Context, userID uuid.UUID, limit int) ([]store.DueCard, error)

	// SubmitReview grades a review and reschedules the card.
	//
	// The card is loaded, its ownership checked, and its review state read
	// with a row lock, updated and logged in a single transaction, so two
	// concurrent reviews of one card apply one after the other.
	//
	// Returns ErrCardNotFound, ErrCardNotOwned or ErrInvalidAnswer.
	SubmitReview(ctx context.Context, userID, cardID uuid.UUID, answer ReviewAnswer) (*domain.ReviewState, error)

	// PreviewIntervals returns the interval each outcome would produce,
	// without changing anything.
	PreviewIntervals(ctx context.Context, userID, cardID uuid.UUID) (srs.Intervals, error)

	// PostponeReview pushes the card's due date back by days.
	PostponeReview(ctx context.Context, userID, cardID uuid.UUID, days int) (*domain.ReviewState, error)
}

// Common error types for CardReviewService
var (
	// ErrCardNotFound indicates the card does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrCardNotOwned indicates the card belongs to another user.
	ErrCardNotOwned = errors.New("card is owned by another user")

	// ErrInvalidAnswer indicates an unknown review outcome.
	ErrInvalidAnswer = errors.New("invalid review answer")

	// ErrInvalidPostpone indicates a postpone of less than one day.
	ErrInvalidPostpone = errors.New("postpone days must be at least 1")
)

// ServiceError wraps unexpected failures of the review service.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("card review %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("card review %s failed: %s", e.Operation, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewSubmitReviewError wraps a failure of SubmitReview. Known sentinels are
// returned unwrapped.
func NewSubmitReviewError(message string, err error) error {
	return wrap("submit_review", message, err)
}

func wrap(operation, message string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrCardNotFound), errors.Is(err, store.ErrCardNotFound):
		return ErrCardNotFound
	case errors.Is(err, ErrCardNotOwned), errors.Is(err, ErrInvalidAnswer), errors.Is(err, ErrInvalidPostpone):
		return err
	}
	return &ServiceError{Operation: operation, Message: message, Err: err}
}

type cardReviewService struct {
	db        *sql.DB
	cards     store.CardStore
	states    store.ReviewStateStore
	logs      store.ReviewLogStore
	scheduler srs.Service
	dueLimit  int
	logger    *slog.Logger
	now       func() time.Time
}

// NewCardReviewService creates a CardReviewService. dueLimit caps
// GetDueCards.
func NewCardReviewService(
	db *sql.DB,
	cards store.CardStore,
	states store.ReviewStateStore,
	logs store.ReviewLogStore,
	scheduler srs.Service,
	dueLimit int,
	logger *slog.Logger,
) (CardReviewService, error) {
	switch {
	case db == nil:
		return nil, errors.New("db cannot be nil")
	case cards == nil:
		return nil, errors.New("card store cannot be nil")
	case states == nil:
		return nil, errors.New("review state store cannot be nil")
	case logs == nil:
		return nil, errors.New("review log store cannot be nil")
	case scheduler == nil:
		return nil, errors.New("scheduler cannot be nil")
	case dueLimit < 1:
		return nil, fmt.Errorf("due card limit must be positive, got %d", dueLimit)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &cardReviewService{
		db:        db,
		cards:     cards,
		states:    states,
		logs:      logs,
		scheduler: scheduler,
		dueLimit:  dueLimit,
		logger:    logger.With(slog.String("component", "card_review_service")),
		now:       time.Now,
	}, nil
}

func (s *cardReviewService) GetDueCards(ctx context.Context, userID uuid.UUID, limit int) ([]store.DueCard, error) {
	if limit <= 0 || limit > s.dueLimit {
		limit = s.dueLimit
	}

	due, err := s.cards.ListDue(ctx, userID, s.now(), limit)
	if err != nil {
		return nil, wrap("get_due_cards", "failed to list due cards", err)
	}
	return due, nil
}

func (s *cardReviewService) SubmitReview(
	ctx context.Context,
	userID, cardID uuid.UUID,
	answer ReviewAnswer,
) (*domain.ReviewState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()))

	quality, ok := srs.QualityForOutcome(answer.Outcome)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAnswer, answer.Outcome)
	}

	var updated *domain.ReviewState
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.checkOwner(ctx, s.cards.WithTx(tx), userID, cardID); err != nil {
			return err
		}

		txStates := s.states.WithTx(tx)
		current, err := txStates.GetForUpdate(ctx, userID, cardID)
		if err != nil {
			return NewSubmitReviewError("failed to load review state", err)
		}

		now := s.now()
		next, err := s.scheduler.CalculateNextReview(current, quality, now)
		if err != nil {
			return NewSubmitReviewError("failed to schedule review", err)
		}
		if err := txStates.Update(ctx, next); err != nil {
			return NewSubmitReviewError("failed to save review state", err)
		}

		entry := &domain.ReviewLog{
			ID:               uuid.New(),
			UserID:           userID,
			CardID:           cardID,
			Outcome:          answer.Outcome,
			Quality:          int(quality),
			PreviousInterval: current.Interval,
			NewInterval:      next.Interval,
			EaseFactor:       next.EaseFactor,
			ReviewedAt:       now.UTC(),
		}
		if err := s.logs.WithTx(tx).Create(ctx, entry); err != nil {
			return NewSubmitReviewError("failed to log review", err)
		}

		updated = next
		return nil
	})
	if err != nil {
		log.Debug("review not recorded", slog.String("error", err.Error()))
		return nil, err
	}

	metrics.RecordReview(string(answer.Outcome))
	log.Info("review recorded",
		slog.String("outcome", string(answer.Outcome)),
		slog.Float64("interval", updated.Interval),
		slog.Float64("ease_factor", updated.EaseFactor),
		slog.Time("next_review_at", updated.NextReviewAt))
	return updated, nil
}

func (s *cardReviewService) PreviewIntervals(ctx context.Context, userID, cardID uuid.UUID) (srs.Intervals, error) {
	if err := s.checkOwner(ctx, s.cards, userID, cardID); err != nil {
		return srs.Intervals{}, err
	}

	state, err := s.states.Get(ctx, userID, cardID)
	if err != nil {
		return srs.Intervals{}, wrap("preview_intervals", "failed to load review state", err)
	}

	intervals, err := s.scheduler.PreviewIntervals(state)
	if err != nil {
		return srs.Intervals{}, wrap("preview_intervals", "failed to compute intervals", err)
	}
	return intervals, nil
}

func (s *cardReviewService) PostponeReview(
	ctx context.Context,
	userID, cardID uuid.UUID,
	days int,
) (*domain.ReviewState, error) {
	if days < 1 {
		return nil, ErrInvalidPostpone
	}

	var updated *domain.ReviewState
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.checkOwner(ctx, s.cards.WithTx(tx), userID, cardID); err != nil {
			return err
		}

		txStates := s.states.WithTx(tx)
		current, err := txStates.GetForUpdate(ctx, userID, cardID)
		if err != nil {
			return wrap("postpone_review", "failed to load review state", err)
		}

		next, err := s.scheduler.PostponeReview(current, days, s.now())
		if err != nil {
			return wrap("postpone_review", "failed to postpone", err)
		}
		if err := txStates.Update(ctx, next); err != nil {
			return wrap("postpone_review", "failed to save review state", err)
		}

		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *cardReviewService) checkOwner(ctx context.Context, cards store.CardStore, userID, cardID uuid.UUID) error {
	card, err := cards.GetByID(ctx, cardID)
	if err != nil {
		return wrap("load_card", "failed to load card", err)
	}
	if card.UserID != userID {
		return ErrCardNotOwned
	}
	return nil
}
