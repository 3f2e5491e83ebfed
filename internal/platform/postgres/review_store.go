package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/platform/logger"
	"github.com/phrazzld/quill-api/internal/store"
)

const selectReviewState = `
	SELECT user_id, card_id, interval, ease_factor, next_review_at, last_reviewed_at,
	       review_count, created_at, updated_at
	FROM review_states
	WHERE user_id = $1 AND card_id = $2`

// PostgresReviewStateStore implements store.ReviewStateStore.
type PostgresReviewStateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewStateStore creates a PostgresReviewStateStore.
// It panics if db is nil.
func NewPostgresReviewStateStore(db store.DBTX, logger *slog.Logger) *PostgresReviewStateStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresReviewStateStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_state_store")),
	}
}

var _ store.ReviewStateStore = (*PostgresReviewStateStore)(nil)

// Create implements store.ReviewStateStore.Create.
func (s *PostgresReviewStateStore) Create(ctx context.Context, state *domain.ReviewState) error {
	if err := state.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO review_states (user_id, card_id, interval, ease_factor, next_review_at,
		                           last_reviewed_at, review_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, state.UserID, state.CardID, state.Interval, state.EaseFactor, state.NextReviewAt,
		nullTime(state.LastReviewedAt), state.ReviewCount, state.CreatedAt, state.UpdatedAt)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create review state",
			slog.String("card_id", state.CardID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// Get implements store.ReviewStateStore.Get.
func (s *PostgresReviewStateStore) Get(ctx context.Context, userID, cardID uuid.UUID) (*domain.ReviewState, error) {
	return s.get(ctx, selectReviewState, userID, cardID)
}

// GetForUpdate implements store.ReviewStateStore.GetForUpdate.
func (s *PostgresReviewStateStore) GetForUpdate(
	ctx context.Context,
	userID, cardID uuid.UUID,
) (*domain.ReviewState, error) {
	return s.get(ctx, selectReviewState+" FOR UPDATE", userID, cardID)
}

func (s *PostgresReviewStateStore) get(
	ctx context.Context,
	query string,
	userID, cardID uuid.UUID,
) (*domain.ReviewState, error) {
	var rs domain.ReviewState
	var last sql.NullTime
	err := s.db.QueryRowContext(ctx, query, userID, cardID).Scan(
		&rs.UserID, &rs.CardID, &rs.Interval, &rs.EaseFactor, &rs.NextReviewAt, &last,
		&rs.ReviewCount, &rs.CreatedAt, &rs.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrReviewStateNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get review state",
			slog.String("card_id", cardID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	rs.LastReviewedAt = timeOrZero(last)
	return &rs, nil
}

// Update implements store.ReviewStateStore.Update.
func (s *PostgresReviewStateStore) Update(ctx context.Context, state *domain.ReviewState) error {
	if err := state.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE review_states
		SET interval = $1, ease_factor = $2, next_review_at = $3, last_reviewed_at = $4,
		    review_count = $5, updated_at = $6
		WHERE user_id = $7 AND card_id = $8
	`, state.Interval, state.EaseFactor, state.NextReviewAt, nullTime(state.LastReviewedAt),
		state.ReviewCount, state.UpdatedAt, state.UserID, state.CardID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrReviewStateNotFound)
}

// WithTx implements store.ReviewStateStore.WithTx.
func (s *PostgresReviewStateStore) WithTx(tx *sql.Tx) store.ReviewStateStore {
	return &PostgresReviewStateStore{db: tx, logger: s.logger}
}

// PostgresReviewLogStore implements store.ReviewLogStore.
type PostgresReviewLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewLogStore creates a PostgresReviewLogStore.
func NewPostgresReviewLogStore(db store.DBTX, logger *slog.Logger) *PostgresReviewLogStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresReviewLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_log_store")),
	}
}

var _ store.ReviewLogStore = (*PostgresReviewLogStore)(nil)

// Create implements store.ReviewLogStore.Create.
func (s *PostgresReviewLogStore) Create(ctx context.Context, entry *domain.ReviewLog) error {
	if !entry.Outcome.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidReviewOutcome, entry.Outcome)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO review_logs (id, user_id, card_id, outcome, quality, previous_interval,
		                         new_interval, ease_factor, reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, entry.ID, entry.UserID, entry.CardID, entry.Outcome, entry.Quality,
		entry.PreviousInterval, entry.NewInterval, entry.EaseFactor, entry.ReviewedAt)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to append review log",
			slog.String("card_id", entry.CardID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// CountSince implements store.ReviewLogStore.CountSince.
func (s *PostgresReviewLogStore) CountSince(ctx context.Context, userID uuid.UUID, t time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM review_logs WHERE user_id = $1 AND reviewed_at >= $2
	`, userID, t.UTC()).Scan(&n)
	if err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

// WithTx implements store.ReviewLogStore.WithTx.
func (s *PostgresReviewLogStore) WithTx(tx *sql.Tx) store.ReviewLogStore {
	return &PostgresReviewLogStore{db: tx, logger: s.logger}
}
