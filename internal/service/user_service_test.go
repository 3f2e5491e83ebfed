package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "correct-horse-battery"

func newTestUserService(t *testing.T) (UserService, *fakeUsers) {
	t.Helper()
	users := newFakeUsers()
	svc, err := NewUserService(users, plainHasher{}, discardLogger())
	require.NoError(t, err)
	return svc, users
}

func TestNewUserService_NilDependencies(t *testing.T) {
	_, err := NewUserService(nil, plainHasher{}, nil)
	assert.ErrorIs(t, err, ErrNilDependency)

	_, err = NewUserService(newFakeUsers(), nil, nil)
	assert.ErrorIs(t, err, ErrNilDependency)
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	svc, users := newTestUserService(t)

	user, err := svc.Register(ctx, "  Learner@Example.com ", testPassword, "es")
	require.NoError(t, err)

	assert.Equal(t, "learner@example.com", user.Email)
	assert.Empty(t, user.Password)
	assert.Equal(t, "h:"+testPassword, user.HashedPassword)

	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "es", stored.TargetLanguage)

	_, err = svc.Register(ctx, "learner@example.com", testPassword, "fr")
	assert.ErrorIs(t, err, store.ErrEmailExists)
}

func TestUserService_Register_Invalid(t *testing.T) {
	svc, _ := newTestUserService(t)

	tests := []struct {
		name     string
		email    string
		password string
		language string
		want     error
	}{
		{"bad email", "not-an-email", testPassword, "es", domain.ErrInvalidEmail},
		{"short password", "a@example.com", "short", "es", domain.ErrPasswordTooShort},
		{"no language", "a@example.com", testPassword, "", domain.ErrEmptyTargetLanguage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.email, tt.password, tt.language)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUserService_Register_StoreFailure(t *testing.T) {
	svc, users := newTestUserService(t)
	users.err = errors.New("connection refused")

	_, err := svc.Register(context.Background(), "a@example.com", testPassword, "es")

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "register", svcErr.Operation)
}

func TestUserService_Authenticate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestUserService(t)
	registered, err := svc.Register(ctx, "a@example.com", testPassword, "de")
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "A@example.com", testPassword)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = svc.Authenticate(ctx, "a@example.com", "wrong-password-123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", testPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_GetUser(t *testing.T) {
	svc, _ := newTestUserService(t)

	_, err := svc.GetUser(context.Background(), uuid.New())
	assert.True(t, store.IsNotFoundError(err))
}
