package api

import (
	"fmt"
	"net/http"

	"github.com/phrazzld/quill-api/internal/api/shared"
	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/service/card_review"
)

// ReviewHandler handles the review endpoints.
type ReviewHandler struct {
	reviews card_review.CardReviewService
}

// NewReviewHandler creates a ReviewHandler.
func NewReviewHandler(reviews card_review.CardReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// GetDueCards handles GET /api/cards/due?limit=N.
func (h *ReviewHandler) GetDueCards(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err == nil && limit < 0 {
		err = fmt.Errorf("%w: limit must not be negative", domain.ErrValidation)
	}
	if err != nil {
		HandleAPIError(w, r, err, "Invalid limit")
		return
	}

	due, err := h.reviews.GetDueCards(r.Context(), userID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, due)
}

// PreviewIntervals handles GET /api/cards/{id}/preview.
func (h *ReviewHandler) PreviewIntervals(w http.ResponseWriter, r *http.Request) {
	userID, cardID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	intervals, err := h.reviews.PreviewIntervals(r.Context(), userID, cardID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, intervals)
}

// SubmitReview handles POST /api/cards/{id}/review.
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	userID, cardID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}
	var req SubmitReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	state, err := h.reviews.SubmitReview(r.Context(), userID, cardID, card_review.ReviewAnswer{
		Outcome: domain.ReviewOutcome(req.Outcome),
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, state)
}

// PostponeReview handles POST /api/cards/{id}/postpone.
func (h *ReviewHandler) PostponeReview(w http.ResponseWriter, r *http.Request) {
	userID, cardID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}
	var req PostponeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	state, err := h.reviews.PostponeReview(r.Context(), userID, cardID, req.Days)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, state)
}
