package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/phrazzld/quill-api/internal/api/shared"
	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/service"
	"github.com/phrazzld/quill-api/internal/service/auth"
	"github.com/phrazzld/quill-api/internal/service/card_review"
	"github.com/phrazzld/quill-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"not owned", service.ErrNotOwned, http.StatusForbidden},
		{"card not owned", card_review.ErrCardNotOwned, http.StatusForbidden},
		{"card not found", card_review.ErrCardNotFound, http.StatusNotFound},
		{"wrapped store not found", fmt.Errorf("loading: %w", store.ErrJournalEntryNotFound), http.StatusNotFound},
		{"duplicate email", store.ErrEmailExists, http.StatusConflict},
		{"invalid answer", card_review.ErrInvalidAnswer, http.StatusBadRequest},
		{"invalid horizon", service.ErrInvalidHorizon, http.StatusBadRequest},
		{"domain validation", fmt.Errorf("create: %w", domain.ErrEmptyDeckName), http.StatusBadRequest},
		{"unknown", errors.New("pq: connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"expired", auth.ErrExpiredToken, "Token expired"},
		{"wrong type", auth.ErrWrongTokenType, "Invalid token"},
		{"deck", store.ErrDeckNotFound, "Deck not found"},
		{"card via service", card_review.ErrCardNotFound, "Card not found"},
		{"domain message", fmt.Errorf("x: %w", domain.ErrEntryTextTooLong), "Journal entry text must be at most 10000 characters"},
		{"internal detail hidden", errors.New("dial tcp 10.0.0.3:5432: refused"), "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	tests := []struct {
		name string
		req  any
		want string
	}{
		{"required", &CreateEntryRequest{}, "Invalid text: required field"},
		{"email", &LoginRequest{Email: "nope", Password: "x"}, "Invalid email: invalid email format"},
		{"oneof", &SubmitReviewRequest{Outcome: "hard"}, "Invalid outcome: must be one of forgot good easy"},
		{"max", &PostponeRequest{Days: 400}, "Invalid days: must be at most 365"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := shared.ValidateRequest(tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.want, SanitizeValidationError(err))
		})
	}

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("other")))
}
