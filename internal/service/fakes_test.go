package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/events"
	"github.com/phrazzld/quill-api/internal/store"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTxDB returns a sqlmock database whose expectations are checked when the
// test ends.
func newTxDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

type fakeUsers struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*domain.User
	err  error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uuid.UUID]*domain.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return store.ErrEmailExists
		}
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrUserNotFound
}

type fakeDecks struct {
	decks map[uuid.UUID]*domain.Deck
}

func newFakeDecks() *fakeDecks { return &fakeDecks{decks: map[uuid.UUID]*domain.Deck{}} }

func (f *fakeDecks) Create(_ context.Context, d *domain.Deck) error {
	f.decks[d.ID] = d
	return nil
}

func (f *fakeDecks) GetByID(_ context.Context, id uuid.UUID) (*domain.Deck, error) {
	d, ok := f.decks[id]
	if !ok {
		return nil, store.ErrDeckNotFound
	}
	return d, nil
}

func (f *fakeDecks) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.Deck, error) {
	var out []*domain.Deck
	for _, d := range f.decks {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeCards struct {
	cards     map[uuid.UUID]*domain.Card
	createErr error
}

func newFakeCards() *fakeCards { return &fakeCards{cards: map[uuid.UUID]*domain.Card{}} }

func (f *fakeCards) Create(_ context.Context, c *domain.Card) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.cards[c.ID] = c
	return nil
}

func (f *fakeCards) GetByID(_ context.Context, id uuid.UUID) (*domain.Card, error) {
	c, ok := f.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCards) UpdateContent(_ context.Context, id uuid.UUID, content []byte) error {
	c, ok := f.cards[id]
	if !ok {
		return store.ErrCardNotFound
	}
	c.Content = content
	return nil
}

func (f *fakeCards) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.cards[id]; !ok {
		return store.ErrCardNotFound
	}
	delete(f.cards, id)
	return nil
}

func (f *fakeCards) ListDue(context.Context, uuid.UUID, time.Time, int) ([]store.DueCard, error) {
	return nil, errors.New("not used")
}

func (f *fakeCards) WithTx(*sql.Tx) store.CardStore { return f }

type fakeStates struct {
	states    map[uuid.UUID]*domain.ReviewState
	createErr error
}

func newFakeStates() *fakeStates { return &fakeStates{states: map[uuid.UUID]*domain.ReviewState{}} }

func (f *fakeStates) Create(_ context.Context, s *domain.ReviewState) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.states[s.CardID] = s
	return nil
}

func (f *fakeStates) Get(_ context.Context, _, cardID uuid.UUID) (*domain.ReviewState, error) {
	s, ok := f.states[cardID]
	if !ok {
		return nil, store.ErrReviewStateNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStates) GetForUpdate(ctx context.Context, userID, cardID uuid.UUID) (*domain.ReviewState, error) {
	return f.Get(ctx, userID, cardID)
}

func (f *fakeStates) Update(_ context.Context, s *domain.ReviewState) error {
	f.states[s.CardID] = s
	return nil
}

func (f *fakeStates) WithTx(*sql.Tx) store.ReviewStateStore { return f }

type fakeEntries struct {
	entries   map[uuid.UUID]*domain.JournalEntry
	createErr error
}

func newFakeEntries() *fakeEntries { return &fakeEntries{entries: map[uuid.UUID]*domain.JournalEntry{}} }

func (f *fakeEntries) Create(_ context.Context, e *domain.JournalEntry) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *e
	f.entries[e.ID] = &cp
	return nil
}

func (f *fakeEntries) GetByID(_ context.Context, id uuid.UUID) (*domain.JournalEntry, error) {
	e, ok := f.entries[id]
	if !ok {
		return nil, store.ErrJournalEntryNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEntries) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*domain.JournalEntry, error) {
	var out []*domain.JournalEntry
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return []*domain.JournalEntry{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeEntries) UpdateStatus(_ context.Context, id uuid.UUID, status domain.EntryStatus) error {
	e, ok := f.entries[id]
	if !ok {
		return store.ErrJournalEntryNotFound
	}
	e.Status = status
	return nil
}

func (f *fakeEntries) WithTx(*sql.Tx) store.JournalStore { return f }

type fakeAnalyses struct {
	byEntry map[uuid.UUID]*domain.EntryAnalysis
	listErr error
	lists   int
}

func newFakeAnalyses() *fakeAnalyses {
	return &fakeAnalyses{byEntry: map[uuid.UUID]*domain.EntryAnalysis{}}
}

func (f *fakeAnalyses) Create(_ context.Context, a *domain.EntryAnalysis) error {
	if _, ok := f.byEntry[a.EntryID]; ok {
		return store.ErrAnalysisExists
	}
	f.byEntry[a.EntryID] = a
	return nil
}

func (f *fakeAnalyses) GetByEntry(_ context.Context, entryID uuid.UUID) (*domain.EntryAnalysis, error) {
	a, ok := f.byEntry[entryID]
	if !ok {
		return nil, store.ErrAnalysisNotFound
	}
	return a, nil
}

func (f *fakeAnalyses) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.EntryAnalysis, error) {
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.EntryAnalysis
	for _, a := range f.byEntry {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssessedAt.Before(out[j].AssessedAt) })
	return out, nil
}

func (f *fakeAnalyses) WithTx(*sql.Tx) store.AnalysisStore { return f }

type recordingEmitter struct {
	events []*events.TaskRequestEvent
	err    error
}

func (r *recordingEmitter) EmitEvent(_ context.Context, e *events.TaskRequestEvent) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, e)
	return nil
}

type fakeForecastCache struct {
	entries     map[string]*domain.ProficiencyForecast
	invalidated []uuid.UUID
	getErr      error
}

func newFakeForecastCache() *fakeForecastCache {
	return &fakeForecastCache{entries: map[string]*domain.ProficiencyForecast{}}
}

func cacheKey(userID uuid.UUID, horizon int) string {
	return userID.String() + "/" + strconv.Itoa(horizon)
}

func (c *fakeForecastCache) Get(_ context.Context, userID uuid.UUID, horizon int) (*domain.ProficiencyForecast, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	f, ok := c.entries[cacheKey(userID, horizon)]
	return f, ok, nil
}

func (c *fakeForecastCache) Set(_ context.Context, userID uuid.UUID, horizon int, f *domain.ProficiencyForecast) error {
	c.entries[cacheKey(userID, horizon)] = f
	return nil
}

func (c *fakeForecastCache) Invalidate(_ context.Context, userID uuid.UUID) error {
	c.invalidated = append(c.invalidated, userID)
	for k := range c.entries {
		if strings.HasPrefix(k, userID.String()+"/") {
			delete(c.entries, k)
		}
	}
	return nil
}

// plainHasher prefixes passwords so tests avoid bcrypt's cost.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "h:" + p, nil }

func (plainHasher) Compare(hashed, p string) error {
	if hashed != "h:"+p {
		return errors.New("mismatch")
	}
	return nil
}
