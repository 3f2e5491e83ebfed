package api

import (
	"net/http"

	"github.com/phrazzld/quill-api/internal/api/shared"
	"github.com/phrazzld/quill-api/internal/service"
)

// DeckHandler handles deck and card management.
type DeckHandler struct {
	decks service.DeckService
}

// NewDeckHandler creates a DeckHandler.
func NewDeckHandler(decks service.DeckService) *DeckHandler {
	return &DeckHandler{decks: decks}
}

// CreateDeck handles POST /api/decks.
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req CreateDeckRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	deck, err := h.decks.CreateDeck(r.Context(), userID, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, deck)
}

// ListDecks handles GET /api/decks.
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	decks, err := h.decks.ListDecks(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, decks)
}

// CreateCard handles POST /api/decks/{id}/cards.
func (h *DeckHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	userID, deckID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}
	var req CardContentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.decks.CreateCard(r.Context(), userID, deckID, req.Content)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, card)
}

// UpdateCard handles PUT /api/cards/{id}.
func (h *DeckHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	userID, cardID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}
	var req CardContentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.decks.UpdateCardContent(r.Context(), userID, cardID, req.Content)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// DeleteCard handles DELETE /api/cards/{id}.
func (h *DeckHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	userID, cardID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.decks.DeleteCard(r.Context(), userID, cardID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
