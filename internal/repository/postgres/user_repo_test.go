package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/finoa/finos-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "name", "email", "password_hash", "created_at"}

func TestUserRepository_Create(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)
	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Asha", "asha@example.com", "hash").
		WillReturnRows(pgxmock.NewRows(userRowColumns).AddRow(id, "Asha", "asha@example.com", "hash", now))

	user, err := repo.Create(context.Background(), &domain.User{Name: "Asha", Email: "asha@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "hash", user.PasswordHash)
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Asha", "asha@example.com", "hash").
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := repo.Create(context.Background(), &domain.User{Name: "Asha", Email: "asha@example.com", PasswordHash: "hash"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)
	id := uuid.New()

	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("asha@example.com").
		WillReturnRows(pgxmock.NewRows(userRowColumns).AddRow(id, "Asha", "asha@example.com", "hash", time.Now().UTC()))
	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("ghost@example.com").
		WillReturnRows(pgxmock.NewRows(userRowColumns))

	user, err := repo.GetByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)

	_, err = repo.GetByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_GetByID(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)
	id := uuid.New()

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(userRowColumns).AddRow(id, "Asha", "asha@example.com", "hash", time.Now().UTC()))

	user, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Asha", user.Name)
}
