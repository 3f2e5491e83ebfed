package api

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/service"
	"github.com/phrazzld/quill-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestJournalHandler() (*JournalHandler, *mockJournalService, *mockProficiencyService) {
	j := &mockJournalService{}
	p := &mockProficiencyService{}
	return NewJournalHandler(j, p), j, p
}

func TestJournalHandler_CreateEntry(t *testing.T) {
	h, journal, _ := newTestJournalHandler()
	userID := uuid.New()
	entry := &domain.JournalEntry{ID: uuid.New(), UserID: userID, Text: "Hoy", Status: domain.EntryStatusPending}
	journal.On("CreateEntry", mock.Anything, userID, "Hoy").Return(entry, nil)

	rec := serve(t, http.MethodPost, "/journal", "/journal", CreateEntryRequest{Text: "Hoy"}, userID, h.CreateEntry)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, domain.EntryStatusPending, decodeBody[domain.JournalEntry](t, rec).Status)

	rec = serve(t, http.MethodPost, "/journal", "/journal",
		CreateEntryRequest{Text: strings.Repeat("a", 10001)}, userID, h.CreateEntry)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJournalHandler_ListAndGet(t *testing.T) {
	h, journal, _ := newTestJournalHandler()
	userID, entryID := uuid.New(), uuid.New()

	journal.On("ListEntries", mock.Anything, userID, 10, 20).Return(nil, nil)
	journal.On("GetEntry", mock.Anything, userID, entryID).Return(&service.EntryWithAnalysis{
		Entry:    &domain.JournalEntry{ID: entryID},
		Analysis: &domain.EntryAnalysis{Overall: 64},
	}, nil)
	journal.On("GetEntry", mock.Anything, userID, mock.Anything).Return(nil, store.ErrJournalEntryNotFound)

	rec := serve(t, http.MethodGet, "/journal", "/journal?limit=10&offset=20", nil, userID, h.ListEntries)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = serve(t, http.MethodGet, "/journal/{id}", "/journal/"+entryID.String(), nil, userID, h.GetEntry)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 64.0, decodeBody[service.EntryWithAnalysis](t, rec).Analysis.Overall)

	rec = serve(t, http.MethodGet, "/journal/{id}", "/journal/"+uuid.NewString(), nil, userID, h.GetEntry)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJournalHandler_GetForecast(t *testing.T) {
	h, _, proficiency := newTestJournalHandler()
	userID := uuid.New()
	day := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	proficiency.On("GetForecast", mock.Anything, userID, 30).Return(&domain.ProficiencyForecast{
		PredictedOverall:   []domain.ScorePoint{{Date: day, Score: 61.5}},
		PredictedSubskills: []domain.SubskillPoint{},
	}, nil)
	proficiency.On("GetForecast", mock.Anything, userID, 9999).
		Return(nil, fmt.Errorf("%w: must be between 1 and 365 days", service.ErrInvalidHorizon))

	rec := serve(t, http.MethodGet, "/forecast", "/forecast?horizon_days=30", nil, userID, h.GetForecast)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"predicted_overall":[{"date":"2024-02-01T00:00:00Z","score":61.5}],"predicted_subskills":[]}`,
		rec.Body.String())

	rec = serve(t, http.MethodGet, "/forecast", "/forecast?horizon_days=9999", nil, userID, h.GetForecast)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, http.MethodGet, "/forecast", "/forecast?horizon_days=soon", nil, userID, h.GetForecast)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
