package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/quill-api/internal/domain"
)

// JournalStore persists journal entries.
type JournalStore interface {
	Create(ctx context.Context, entry *domain.JournalEntry) error

	// GetByID returns ErrJournalEntryNotFound if the entry does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.JournalEntry, error)

	// ListByUser returns the user's entries, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.JournalEntry, error)

	// UpdateStatus returns ErrJournalEntryNotFound if the entry does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.EntryStatus) error

	// WithTx returns a JournalStore bound to tx.
	WithTx(tx *sql.Tx) JournalStore
}

// AnalysisStore persists AI analyses of journal entries.
type AnalysisStore interface {
	// Create stores an analysis. Returns ErrAnalysisExists if the entry
	// has already been analyzed.
	Create(ctx context.Context, analysis *domain.EntryAnalysis) error

	// GetByEntry returns ErrAnalysisNotFound if the entry has no analysis.
	GetByEntry(ctx context.Context, entryID uuid.UUID) (*domain.EntryAnalysis, error)

	// ListByUser returns every analysis of the user's entries in
	// chronological order of assessment.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.EntryAnalysis, error)

	// WithTx returns an AnalysisStore bound to tx.
	WithTx(tx *sql.Tx) AnalysisStore
}
