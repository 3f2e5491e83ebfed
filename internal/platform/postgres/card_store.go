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

// PostgresCardStore implements store.CardStore.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a PostgresCardStore. It accepts a connection
// or a transaction. It panics if db is nil.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

var _ store.CardStore = (*PostgresCardStore)(nil)

// Create implements store.CardStore.Create.
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during create",
			slog.String("card_id", card.ID.String()),
			slog.String("error", err.Error()))
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cards (id, user_id, deck_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, card.ID, card.UserID, card.DeckID, []byte(card.Content), card.CreatedAt, card.UpdatedAt)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: deck %s or user %s not found",
				store.ErrInvalidEntity, card.DeckID, card.UserID)
		}
		log.Error("failed to create card",
			slog.String("card_id", card.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Debug("card created", slog.String("card_id", card.ID.String()))
	return nil
}

// GetByID implements store.CardStore.GetByID.
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	var c domain.Card
	var content []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, deck_id, content, created_at, updated_at
		FROM cards WHERE id = $1
	`, id).Scan(&c.ID, &c.UserID, &c.DeckID, &content, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get card",
			slog.String("card_id", id.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	c.Content = content
	return &c, nil
}

// UpdateContent implements store.CardStore.UpdateContent.
func (s *PostgresCardStore) UpdateContent(ctx context.Context, id uuid.UUID, content []byte) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE cards SET content = $1, updated_at = $2 WHERE id = $3
	`, content, time.Now().UTC(), id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrCardNotFound)
}

// Delete implements store.CardStore.Delete.
func (s *PostgresCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrCardNotFound)
}

// ListDue implements store.CardStore.ListDue.
func (s *PostgresCardStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]store.DueCard, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.user_id, c.deck_id, c.content, c.created_at, c.updated_at,
		       rs.interval, rs.ease_factor, rs.next_review_at, rs.last_reviewed_at,
		       rs.review_count, rs.created_at, rs.updated_at
		FROM cards c
		JOIN review_states rs ON rs.card_id = c.id AND rs.user_id = c.user_id
		WHERE c.user_id = $1 AND rs.next_review_at <= $2
		ORDER BY rs.next_review_at ASC, c.id ASC
		LIMIT $3
	`, userID, now.UTC(), limit)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list due cards",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	due := make([]store.DueCard, 0)
	for rows.Next() {
		var c domain.Card
		var content []byte
		var rs domain.ReviewState
		var last sql.NullTime

		if err := rows.Scan(
			&c.ID, &c.UserID, &c.DeckID, &content, &c.CreatedAt, &c.UpdatedAt,
			&rs.Interval, &rs.EaseFactor, &rs.NextReviewAt, &last,
			&rs.ReviewCount, &rs.CreatedAt, &rs.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}

		c.Content = content
		rs.UserID = c.UserID
		rs.CardID = c.ID
		rs.LastReviewedAt = timeOrZero(last)
		due = append(due, store.DueCard{Card: &c, State: &rs})
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return due, nil
}

// WithTx implements store.CardStore.WithTx.
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{db: tx, logger: s.logger}
}
