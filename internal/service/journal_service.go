package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/quill-api/internal/analysis"
	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/events"
	"github.com/phrazzld/quill-api/internal/platform/cache"
	"github.com/phrazzld/quill-api/internal/platform/logger"
	"github.com/phrazzld/quill-api/internal/store"
	"github.com/phrazzld/quill-api/internal/task"
)

// Page bounds for ListEntries.
const (
	DefaultEntryPageSize = 20
	MaxEntryPageSize     = 100
)

// JournalService manages journal entries and their analyses.
type JournalService interface {
	// CreateEntry stores a pending entry and requests its analysis.
	CreateEntry(ctx context.Context, userID uuid.UUID, text string) (*domain.JournalEntry, error)

	GetEntry(ctx context.Context, userID, entryID uuid.UUID) (*EntryWithAnalysis, error)
	ListEntries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.JournalEntry, error)

	task.EntryService
}

// EntryWithAnalysis is an entry and, once it has been analyzed, its scores.
type EntryWithAnalysis struct {
	Entry    *domain.JournalEntry  `json:"entry"`
	Analysis *domain.EntryAnalysis `json:"analysis,omitempty"`
}

type journalService struct {
	db       *sql.DB
	entries  store.JournalStore
	analyses store.AnalysisStore
	users    store.UserStore
	emitter  events.EventEmitter
	cache    cache.ForecastCache
	logger   *slog.Logger
	now      func() time.Time
}

var _ task.EntryService = (*journalService)(nil)

// NewJournalService creates a JournalService. A nil forecast cache disables
// invalidation.
func NewJournalService(
	db *sql.DB,
	entries store.JournalStore,
	analyses store.AnalysisStore,
	users store.UserStore,
	emitter events.EventEmitter,
	forecasts cache.ForecastCache,
	logger *slog.Logger,
) (JournalService, error) {
	switch {
	case db == nil:
		return nil, nilDependency("db")
	case entries == nil:
		return nil, nilDependency("entries")
	case analyses == nil:
		return nil, nilDependency("analyses")
	case users == nil:
		return nil, nilDependency("users")
	case emitter == nil:
		return nil, nilDependency("emitter")
	}
	if forecasts == nil {
		forecasts = cache.NoopForecastCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &journalService{
		db:       db,
		entries:  entries,
		analyses: analyses,
		users:    users,
		emitter:  emitter,
		cache:    forecasts,
		logger:   logger.With(slog.String("component", "journal_service")),
		now:      time.Now,
	}, nil
}

func (s *journalService) CreateEntry(ctx context.Context, userID uuid.UUID, text string) (*domain.JournalEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	entry, err := domain.NewJournalEntry(userID, text)
	if err != nil {
		return nil, err
	}

	if err := s.entries.Create(ctx, entry); err != nil {
		log.Error("failed to save journal entry",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("create_entry", "failed to save entry", err)
	}

	event, err := task.EntryAnalysisRequest(entry.ID)
	if err != nil {
		return nil, NewServiceError("create_entry", "failed to create event", err)
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to emit analysis event",
			slog.String("entry_id", entry.ID.String()),
			slog.String("event_id", event.ID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("create_entry", "failed to emit event", err)
	}

	log.Info("journal entry created",
		slog.String("entry_id", entry.ID.String()),
		slog.String("event_id", event.ID.String()))
	return entry, nil
}

func (s *journalService) GetEntry(ctx context.Context, userID, entryID uuid.UUID) (*EntryWithAnalysis, error) {
	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, NewServiceError("get_entry", "failed to load entry", err)
	}
	if entry.UserID != userID {
		return nil, ErrNotOwned
	}

	out := &EntryWithAnalysis{Entry: entry}
	if entry.Status != domain.EntryStatusAnalyzed {
		return out, nil
	}

	a, err := s.analyses.GetByEntry(ctx, entryID)
	switch {
	case errors.Is(err, store.ErrAnalysisNotFound):
	case err != nil:
		return nil, NewServiceError("get_entry", "failed to load analysis", err)
	default:
		out.Analysis = a
	}
	return out, nil
}

func (s *journalService) ListEntries(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.JournalEntry, error) {
	if limit <= 0 {
		limit = DefaultEntryPageSize
	}
	if limit > MaxEntryPageSize {
		limit = MaxEntryPageSize
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.entries.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, NewServiceError("list_entries", "failed to list entries", err)
	}
	return entries, nil
}

// GetEntryForAnalysis implements task.EntryService.
func (s *journalService) GetEntryForAnalysis(
	ctx context.Context,
	entryID uuid.UUID,
) (*domain.JournalEntry, string, error) {
	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, "", NewServiceError("get_entry_for_analysis", "failed to load entry", err)
	}
	user, err := s.users.GetByID(ctx, entry.UserID)
	if err != nil {
		return nil, "", NewServiceError("get_entry_for_analysis", "failed to load author", err)
	}
	return entry, user.TargetLanguage, nil
}

// UpdateEntryStatus implements task.EntryService.
func (s *journalService) UpdateEntryStatus(ctx context.Context, entryID uuid.UUID, status domain.EntryStatus) error {
	if err := s.entries.UpdateStatus(ctx, entryID, status); err != nil {
		return NewServiceError("update_entry_status", "failed to update status", err)
	}
	return nil
}

// RecordAnalysis implements task.EntryService. The analysis and the status
// change commit together; an entry that already has an analysis is only
// marked analyzed. The author's cached forecasts are dropped afterwards.
func (s *journalService) RecordAnalysis(
	ctx context.Context,
	entry *domain.JournalEntry,
	result *analysis.Result,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	a := &domain.EntryAnalysis{
		ID:         uuid.New(),
		EntryID:    entry.ID,
		UserID:     entry.UserID,
		Overall:    result.Overall,
		Grammar:    result.Grammar,
		Phrasing:   result.Phrasing,
		Vocabulary: result.Vocabulary,
		Feedback:   result.Feedback,
		AssessedAt: s.now().UTC(),
	}
	if err := a.Validate(); err != nil {
		return NewServiceError("record_analysis", "invalid analysis", err)
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txAnalyses := s.analyses.WithTx(tx)
		_, err := txAnalyses.GetByEntry(ctx, entry.ID)
		switch {
		case err == nil:
			log.Info("entry already has an analysis", slog.String("entry_id", entry.ID.String()))
		case errors.Is(err, store.ErrAnalysisNotFound):
			if err := txAnalyses.Create(ctx, a); err != nil {
				return NewServiceError("record_analysis", "failed to save analysis", err)
			}
		default:
			return NewServiceError("record_analysis", "failed to check for analysis", err)
		}
		if err := s.entries.WithTx(tx).UpdateStatus(ctx, entry.ID, domain.EntryStatusAnalyzed); err != nil {
			return NewServiceError("record_analysis", "failed to mark entry analyzed", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.cache.Invalidate(ctx, entry.UserID); err != nil {
		log.Warn("failed to invalidate cached forecasts",
			slog.String("user_id", entry.UserID.String()),
			slog.String("error", err.Error()))
	}
	return nil
}
