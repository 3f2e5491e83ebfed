package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=12,max=72"`
	TargetLanguage string `json:"target_language" validate:"required,min=2,max=35"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest is the body of POST /api/auth/refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse is returned by every auth endpoint.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// CreateDeckRequest is the body of POST /api/decks.
type CreateDeckRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// CardContentRequest is the body of POST /api/decks/{id}/cards and
// PUT /api/cards/{id}.
type CardContentRequest struct {
	Content json.RawMessage `json:"content" validate:"required"`
}

// SubmitReviewRequest is the body of POST /api/cards/{id}/review.
type SubmitReviewRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=forgot good easy"`
}

// PostponeRequest is the body of POST /api/cards/{id}/postpone.
type PostponeRequest struct {
	Days int `json:"days" validate:"required,min=1,max=365"`
}

// CreateEntryRequest is the body of POST /api/journal.
type CreateEntryRequest struct {
	Text string `json:"text" validate:"required,max=10000"`
}
