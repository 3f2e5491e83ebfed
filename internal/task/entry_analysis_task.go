package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/quill-api/internal/analysis"
	"github.com/phrazzld/quill-api/internal/domain"
)

// Common errors
var (
	ErrNilEntryService = errors.New("entry service cannot be nil")
	ErrNilAnalyzer     = errors.New("analyzer cannot be nil")
	ErrEmptyEntryID    = errors.New("entry ID cannot be empty")
	ErrInvalidPayload  = errors.New("invalid task payload")
)

// EntryService is what an analysis task needs from the journal service.
type EntryService interface {
	// GetEntryForAnalysis returns the entry and its author's target language.
	GetEntryForAnalysis(ctx context.Context, entryID uuid.UUID) (*domain.JournalEntry, string, error)

	UpdateEntryStatus(ctx context.Context, entryID uuid.UUID, status domain.EntryStatus) error

	// RecordAnalysis stores the result and marks the entry analyzed.
	RecordAnalysis(ctx context.Context, entry *domain.JournalEntry, result *analysis.Result) error
}

type entryAnalysisPayload struct {
	EntryID uuid.UUID `json:"entry_id"`
}

// EntryAnalysisTask scores one journal entry with the analyzer.
type EntryAnalysisTask struct {
	id       uuid.UUID
	entryID  uuid.UUID
	entries  EntryService
	analyzer analysis.Analyzer
	logger   *slog.Logger

	mu     sync.Mutex
	status TaskStatus
}

func (t *EntryAnalysisTask) ID() uuid.UUID { return t.id }

func (t *EntryAnalysisTask) Type() string { return TaskTypeEntryAnalysis }

// EntryID returns the entry this task analyzes.
func (t *EntryAnalysisTask) EntryID() uuid.UUID { return t.entryID }

func (t *EntryAnalysisTask) Payload() []byte {
	// Marshalling a struct of one UUID cannot fail.
	data, _ := json.Marshal(entryAnalysisPayload{EntryID: t.entryID})
	return data
}

func (t *EntryAnalysisTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *EntryAnalysisTask) setStatus(s TaskStatus) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}

// Execute loads the entry, runs the analyzer and records the result. An
// entry that is already analyzed is left alone, so re-running a recovered
// task is harmless.
func (t *EntryAnalysisTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)

	if err := ctx.Err(); err != nil {
		t.setStatus(TaskStatusFailed)
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	entry, language, err := t.entries.GetEntryForAnalysis(ctx, t.entryID)
	if err != nil {
		t.setStatus(TaskStatusFailed)
		return fmt.Errorf("failed to retrieve entry: %w", err)
	}

	if entry.Status == domain.EntryStatusAnalyzed {
		t.logger.Info("entry already analyzed, nothing to do")
		t.setStatus(TaskStatusCompleted)
		return nil
	}

	if err := t.entries.UpdateEntryStatus(ctx, t.entryID, domain.EntryStatusAnalyzing); err != nil {
		t.setStatus(TaskStatusFailed)
		return fmt.Errorf("failed to mark entry analyzing: %w", err)
	}

	result, err := t.analyzer.AnalyzeEntry(ctx, entry.Text, language)
	if err == nil {
		err = result.Validate()
	}
	if err != nil {
		t.fail(ctx)
		return fmt.Errorf("failed to analyze entry: %w", err)
	}

	if err := t.entries.RecordAnalysis(ctx, entry, result); err != nil {
		t.fail(ctx)
		return fmt.Errorf("failed to record analysis: %w", err)
	}

	t.logger.Info("entry analyzed", slog.Float64("overall", result.Overall))
	t.setStatus(TaskStatusCompleted)
	return nil
}

func (t *EntryAnalysisTask) fail(ctx context.Context) {
	t.setStatus(TaskStatusFailed)
	if err := t.entries.UpdateEntryStatus(ctx, t.entryID, domain.EntryStatusFailed); err != nil {
		t.logger.Error("failed to mark entry failed", slog.String("error", err.Error()))
	}
}

// EntryAnalysisTaskFactory builds analysis tasks, both fresh ones and ones
// recovered from the store.
type EntryAnalysisTaskFactory struct {
	entries  EntryService
	analyzer analysis.Analyzer
	logger   *slog.Logger
}

// NewEntryAnalysisTaskFactory creates a new factory.
func NewEntryAnalysisTaskFactory(
	entries EntryService,
	analyzer analysis.Analyzer,
	logger *slog.Logger,
) (*EntryAnalysisTaskFactory, error) {
	if entries == nil {
		return nil, ErrNilEntryService
	}
	if analyzer == nil {
		return nil, ErrNilAnalyzer
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &EntryAnalysisTaskFactory{entries: entries, analyzer: analyzer, logger: logger}, nil
}

// CreateTask returns a new pending task for entryID.
func (f *EntryAnalysisTaskFactory) CreateTask(entryID uuid.UUID) (Task, error) {
	t, err := f.build(uuid.New(), entryID, TaskStatusPending)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Rehydrate rebuilds a stored analysis task. It is a Factory.
func (f *EntryAnalysisTaskFactory) Rehydrate(rec Record) (Task, error) {
	var p entryAnalysisPayload
	if err := json.Unmarshal(rec.Payload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	t, err := f.build(rec.ID, p.EntryID, rec.Status)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (f *EntryAnalysisTaskFactory) build(id, entryID uuid.UUID, status TaskStatus) (*EntryAnalysisTask, error) {
	if entryID == uuid.Nil {
		return nil, ErrEmptyEntryID
	}

	return &EntryAnalysisTask{
		id:       id,
		entryID:  entryID,
		entries:  f.entries,
		analyzer: f.analyzer,
		logger: f.logger.With(
			slog.String("task_type", TaskTypeEntryAnalysis),
			slog.String("entry_id", entryID.String())),
		status: status,
	}, nil
}
