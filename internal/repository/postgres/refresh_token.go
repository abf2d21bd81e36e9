package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Haarush2006/OpsBoard-BE/internal/domain"
	apperrors "github.com/Haarush2006/OpsBoard-BE/pkg/errors"
)

// RefreshTokenRepository is the PostgreSQL-backed implementation of
// repository.RefreshTokenRepository. Tokens are stored by SHA-256 hash,
// never in plaintext.
type RefreshTokenRepository struct {
	db DB
}

func NewRefreshTokenRepository(db DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, issued_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.ExpiresAt,
		token.IssuedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("refresh token", "token_hash", token.TokenHash)
		}
		return apperrors.Internal(fmt.Errorf("create refresh token: %w", err))
	}
	return nil
}

func (r *RefreshTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, issued_at
		FROM refresh_tokens
		WHERE token_hash = $1`

	var t domain.RefreshToken
	err := r.db.QueryRow(ctx, query, tokenHash).Scan(
		&t.ID,
		&t.UserID,
		&t.TokenHash,
		&t.ExpiresAt,
		&t.IssuedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("refresh token", tokenHash)
		}
		return nil, apperrors.Internal(fmt.Errorf("get refresh token: %w", err))
	}
	return &t, nil
}

// Delete removes the token row and reports how many rows went away.
// Under concurrent use of the same token only one caller sees 1.
func (r *RefreshTokenRepository) Delete(ctx context.Context, tokenHash string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return 0, apperrors.Internal(fmt.Errorf("delete refresh token: %w", err))
	}
	return tag.RowsAffected(), nil
}

func (r *RefreshTokenRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, apperrors.Internal(fmt.Errorf("delete refresh tokens for user: %w", err))
	}
	return tag.RowsAffected(), nil
}
