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

// PostgresJournalStore implements store.JournalStore.
type PostgresJournalStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresJournalStore creates a PostgresJournalStore. It panics if db is nil.
func NewPostgresJournalStore(db store.DBTX, logger *slog.Logger) *PostgresJournalStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresJournalStore{
		db:     db,
		logger: logger.With(slog.String("component", "journal_store")),
	}
}

var _ store.JournalStore = (*PostgresJournalStore)(nil)

// Create implements store.JournalStore.Create.
// Returns store.ErrInvalidEntity if the user does not exist.
func (s *PostgresJournalStore) Create(ctx context.Context, entry *domain.JournalEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		log.Warn("journal entry validation failed during create",
			slog.String("entry_id", entry.ID.String()),
			slog.String("error", err.Error()))
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO journal_entries (id, user_id, text, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.ID, entry.UserID, entry.Text, entry.Status, entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: user with ID %s not found", store.ErrInvalidEntity, entry.UserID)
		}
		log.Error("failed to create journal entry",
			slog.String("entry_id", entry.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Info("journal entry created",
		slog.String("entry_id", entry.ID.String()),
		slog.String("user_id", entry.UserID.String()))
	return nil
}

// GetByID implements store.JournalStore.GetByID.
func (s *PostgresJournalStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.JournalEntry, error) {
	var e domain.JournalEntry
	var status string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, text, status, created_at, updated_at
		FROM journal_entries WHERE id = $1
	`, id).Scan(&e.ID, &e.UserID, &e.Text, &status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrJournalEntryNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get journal entry",
			slog.String("entry_id", id.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	e.Status = domain.EntryStatus(status)
	return &e, nil
}

// ListByUser implements store.JournalStore.ListByUser.
func (s *PostgresJournalStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, text, status, created_at, updated_at
		FROM journal_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]*domain.JournalEntry, 0)
	for rows.Next() {
		var e domain.JournalEntry
		var status string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Text, &status, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, MapError(err)
		}
		e.Status = domain.EntryStatus(status)
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return entries, nil
}

// UpdateStatus implements store.JournalStore.UpdateStatus.
func (s *PostgresJournalStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.EntryStatus) error {
	if !status.Valid() {
		return domain.ErrInvalidEntryStatus
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE journal_entries SET status = $1, updated_at = $2 WHERE id = $3
	`, status, time.Now().UTC(), id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update journal entry status",
			slog.String("entry_id", id.String()),
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrJournalEntryNotFound)
}

// WithTx implements store.JournalStore.WithTx.
func (s *PostgresJournalStore) WithTx(tx *sql.Tx) store.JournalStore {
	return &PostgresJournalStore{db: tx, logger: s.logger}
}

// PostgresAnalysisStore implements store.AnalysisStore.
type PostgresAnalysisStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAnalysisStore creates a PostgresAnalysisStore. It panics if db is nil.
func NewPostgresAnalysisStore(db store.DBTX, logger *slog.Logger) *PostgresAnalysisStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAnalysisStore{
		db:     db,
		logger: logger.With(slog.String("component", "analysis_store")),
	}
}

var _ store.AnalysisStore = (*PostgresAnalysisStore)(nil)

// Create implements store.AnalysisStore.Create.
func (s *PostgresAnalysisStore) Create(ctx context.Context, a *domain.EntryAnalysis) error {
	if err := a.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entry_analyses (id, entry_id, user_id, overall, grammar, phrasing,
		                            vocabulary, feedback, assessed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, a.ID, a.EntryID, a.UserID, a.Overall, a.Grammar, a.Phrasing, a.Vocabulary, a.Feedback, a.AssessedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrAnalysisExists
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create entry analysis",
			slog.String("entry_id", a.EntryID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

const selectAnalysis = `
	SELECT id, entry_id, user_id, overall, grammar, phrasing, vocabulary, feedback, assessed_at
	FROM entry_analyses`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*domain.EntryAnalysis, error) {
	var a domain.EntryAnalysis
	err := row.Scan(&a.ID, &a.EntryID, &a.UserID, &a.Overall, &a.Grammar, &a.Phrasing,
		&a.Vocabulary, &a.Feedback, &a.AssessedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByEntry implements store.AnalysisStore.GetByEntry.
func (s *PostgresAnalysisStore) GetByEntry(ctx context.Context, entryID uuid.UUID) (*domain.EntryAnalysis, error) {
	a, err := scanAnalysis(s.db.QueryRowContext(ctx, selectAnalysis+" WHERE entry_id = $1", entryID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAnalysisNotFound
		}
		return nil, MapError(err)
	}
	return a, nil
}

// ListByUser implements store.AnalysisStore.ListByUser.
func (s *PostgresAnalysisStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.EntryAnalysis, error) {
	rows, err := s.db.QueryContext(ctx, selectAnalysis+" WHERE user_id = $1 ORDER BY assessed_at ASC", userID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list entry analyses",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]*domain.EntryAnalysis, 0)
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, MapError(err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return out, nil
}

// WithTx implements store.AnalysisStore.WithTx.
func (s *PostgresAnalysisStore) WithTx(tx *sql.Tx) store.AnalysisStore {
	return &PostgresAnalysisStore{db: tx, logger: s.logger}
}
