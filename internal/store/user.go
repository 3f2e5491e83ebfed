package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/quill-api/internal/domain"
)

// UserStore persists users.
type UserStore interface {
	// Create stores a user whose HashedPassword is already set.
	// Returns ErrEmailExists if the email is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail returns ErrUserNotFound if no user has this email.
	// The match is case-insensitive.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
