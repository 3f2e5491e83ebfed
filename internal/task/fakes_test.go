package task

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/quill-api/internal/analysis"
	"github.com/phrazzld/quill-api/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory TaskStore.
type memStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*Record
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{records: make(map[uuid.UUID]*Record)}
}

func (s *memStore) put(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := rec
	s.records[rec.ID] = &r
}

func (s *memStore) status(id uuid.UUID) TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.records[id]; ok {
		return r.Status
	}
	return ""
}

func (s *memStore) errorMessage(id uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[id].ErrorMessage
}

func (s *memStore) SaveTask(ctx context.Context, t Task) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	now := time.Now().UTC()
	s.put(Record{ID: t.ID(), Type: t.Type(), Payload: t.Payload(), Status: t.Status(), CreatedAt: now, UpdatedAt: now})
	return nil
}

func (s *memStore) UpdateTaskStatus(ctx context.Context, id uuid.UUID, status TaskStatus, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return errors.New("not found")
	}
	r.Status = status
	r.ErrorMessage = msg
	r.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *memStore) ClaimTask(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok || r.Status != TaskStatusPending {
		return false, nil
	}
	r.Status = TaskStatusProcessing
	r.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (s *memStore) byStatus(status TaskStatus, olderThan time.Duration) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	cutoff := time.Now().UTC().Add(-olderThan)
	for _, r := range s.records {
		if r.Status != status {
			continue
		}
		if olderThan > 0 && !r.UpdatedAt.Before(cutoff) {
			continue
		}
		out = append(out, *r)
	}
	return out
}

func (s *memStore) GetPendingTasks(ctx context.Context) ([]Record, error) {
	return s.byStatus(TaskStatusPending, 0), nil
}

func (s *memStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Record, error) {
	return s.byStatus(TaskStatusProcessing, olderThan), nil
}

func (s *memStore) WithTx(tx *sql.Tx) TaskStore { return s }

// fakeEntries is an in-memory EntryService.
type fakeEntries struct {
	mu       sync.Mutex
	entries  map[uuid.UUID]*domain.JournalEntry
	recorded map[uuid.UUID]*analysis.Result
	getErr   error
}

func newFakeEntries(entries ...*domain.JournalEntry) *fakeEntries {
	f := &fakeEntries{
		entries:  make(map[uuid.UUID]*domain.JournalEntry),
		recorded: make(map[uuid.UUID]*analysis.Result),
	}
	for _, e := range entries {
		f.entries[e.ID] = e
	}
	return f
}

func (f *fakeEntries) GetEntryForAnalysis(ctx context.Context, id uuid.UUID) (*domain.JournalEntry, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, "", f.getErr
	}
	e, ok := f.entries[id]
	if !ok {
		return nil, "", errors.New("entry not found")
	}
	cp := *e
	return &cp, "es", nil
}

func (f *fakeEntries) UpdateEntryStatus(ctx context.Context, id uuid.UUID, status domain.EntryStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[id].Status = status
	return nil
}

func (f *fakeEntries) RecordAnalysis(ctx context.Context, e *domain.JournalEntry, r *analysis.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded[e.ID] = r
	f.entries[e.ID].Status = domain.EntryStatusAnalyzed
	return nil
}

func (f *fakeEntries) entryStatus(id uuid.UUID) domain.EntryStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[id].Status
}

// fakeAnalyzer returns a fixed result or error.
type fakeAnalyzer struct {
	mu       sync.Mutex
	result   *analysis.Result
	err      error
	calls    int
	language string
}

func (a *fakeAnalyzer) AnalyzeEntry(ctx context.Context, text, language string) (*analysis.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	a.language = language
	return a.result, a.err
}

func (a *fakeAnalyzer) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}
