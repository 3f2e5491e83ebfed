package api

import (
	"net/http"

	"github.com/phrazzld/quill-api/internal/api/shared"
	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/service"
)

// JournalHandler handles journal entries and proficiency forecasts.
type JournalHandler struct {
	journal     service.JournalService
	proficiency service.ProficiencyService
}

// NewJournalHandler creates a JournalHandler.
func NewJournalHandler(journal service.JournalService, proficiency service.ProficiencyService) *JournalHandler {
	return &JournalHandler{journal: journal, proficiency: proficiency}
}

// CreateEntry handles POST /api/journal. The entry is analyzed in the
// background, so the response is 202 with status "pending".
func (h *JournalHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req CreateEntryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	entry, err := h.journal.CreateEntry(r.Context(), userID, req.Text)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusAccepted, entry)
}

// ListEntries handles GET /api/journal?limit=N&offset=M.
func (h *JournalHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		HandleAPIError(w, r, err, "Invalid limit")
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		HandleAPIError(w, r, err, "Invalid offset")
		return
	}

	entries, err := h.journal.ListEntries(r.Context(), userID, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if entries == nil {
		entries = []*domain.JournalEntry{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, entries)
}

// GetEntry handles GET /api/journal/{id}.
func (h *JournalHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	userID, entryID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	entry, err := h.journal.GetEntry(r.Context(), userID, entryID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, entry)
}

// GetForecast handles GET /api/proficiency/forecast?horizon_days=N.
func (h *JournalHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	horizon, err := queryInt(r, "horizon_days", 0)
	if err != nil {
		HandleAPIError(w, r, err, "Invalid horizon_days")
		return
	}

	forecast, err := h.proficiency.GetForecast(r.Context(), userID, horizon)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, forecast)
}
