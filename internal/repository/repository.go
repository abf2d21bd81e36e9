// Package repository defines persistence contracts for the auth service.
package repository

import (
	"context"

	"github.com/Haarush2006/OpsBoard-BE/internal/domain"
)

// UserRepository provides access to user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// RefreshTokenRepository stores hashed refresh tokens. Delete and
// DeleteByUserID report how many rows were removed so callers can
// detect whether they were the ones to consume a token.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	Delete(ctx context.Context, tokenHash string) (int64, error)
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
}
