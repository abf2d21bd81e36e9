package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Haarush2006/OpsBoard-BE/internal/domain"
	apperrors "github.com/Haarush2006/OpsBoard-BE/pkg/errors"
)

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *UserRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewUserRepository(mock)
}

func sampleUser() *domain.User {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	return &domain.User{
		ID:           "u-1",
		Email:        "ann@example.com",
		PasswordHash: "$2a$04$abcdefghijklmnopqrstuv",
		Name:         "Ann",
		Role:         domain.RoleOperator,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      1,
	}
}

func TestUserRepository_Create(t *testing.T) {
	mock, repo := newMockRepo(t)
	u := sampleUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt, u.Version).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), u)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	mock, repo := newMockRepo(t)
	u := sampleUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt, u.Version).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := repo.Create(context.Background(), u)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	mock, repo := newMockRepo(t)
	u := sampleUser()

	rows := pgxmock.NewRows([]string{
		"id", "email", "password_hash", "name", "role", "is_active",
		"last_login_at", "created_at", "updated_at", "version",
	}).AddRow(u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.IsActive,
		u.LastLoginAt, u.CreatedAt, u.UpdatedAt, u.Version)

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs(u.Email).
		WillReturnRows(rows)

	got, err := repo.GetByEmail(context.Background(), u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.PasswordHash, got.PasswordHash)
	assert.Nil(t, got.LastLoginAt)
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("missing@example.com").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserRepository_GetByID_QueryError(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("u-1").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.GetByID(context.Background(), "u-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserRepository_Update(t *testing.T) {
	mock, repo := newMockRepo(t)
	u := sampleUser()
	loginAt := time.Date(2026, 1, 16, 9, 30, 0, 0, time.UTC)
	u.LastLoginAt = &loginAt

	mock.ExpectExec("UPDATE users").
		WithArgs(u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.IsActive, u.LastLoginAt, u.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Update(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, 2, u.Version)
}

func TestUserRepository_Update_NotFound(t *testing.T) {
	mock, repo := newMockRepo(t)
	u := sampleUser()

	mock.ExpectExec("UPDATE users").
		WithArgs(u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.IsActive, u.LastLoginAt, u.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), u)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
