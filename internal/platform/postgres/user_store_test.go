package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPostgresUserStore_NilDB(t *testing.T) {
	assert.Panics(t, func() { NewPostgresUserStore(nil, nil) })
}

func TestPostgresUserStore_Create(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresUserStore(db, testLogger())

	user := &domain.User{
		ID:             uuid.New(),
		Email:          "  Ana@Example.COM ",
		TargetLanguage: "es",
		HashedPassword: "$2a$10$hash",
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO users").
		WithArgs(user.ID, "ana@example.com", "es", "$2a$10$hash", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Create(context.Background(), user))
	assert.Equal(t, "ana@example.com", user.Email)
}

func TestPostgresUserStore_CreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresUserStore(db, testLogger())

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "users_email_key"})

	err := s.Create(context.Background(), &domain.User{ID: uuid.New(), Email: "a@b.c", HashedPassword: "h"})
	assert.ErrorIs(t, err, store.ErrEmailExists)
	assert.True(t, store.IsDuplicateError(err))
}

func TestPostgresUserStore_CreateRequiresHash(t *testing.T) {
	db, _ := newMock(t)
	s := NewPostgresUserStore(db, testLogger())

	err := s.Create(context.Background(), &domain.User{ID: uuid.New(), Email: "a@b.c", Password: "plaintext"})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestPostgresUserStore_GetByEmail(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresUserStore(db, testLogger())

	id := uuid.New()
	now := time.Now().UTC()
	cols := []string{"id", "email", "target_language", "hashed_password", "created_at", "updated_at"}

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(id.String(), "ana@example.com", "es", "h", now, now))

	u, err := s.GetByEmail(context.Background(), "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "es", u.TargetLanguage)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WillReturnRows(sqlmock.NewRows(cols))

	_, err = s.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}
