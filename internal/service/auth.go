// Package service implements the authentication engine: credential
// verification, token issuance, refresh rotation, and session revocation.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Haarush2006/OpsBoard-BE/internal/auth"
	"github.com/Haarush2006/OpsBoard-BE/internal/domain"
	"github.com/Haarush2006/OpsBoard-BE/internal/event"
	"github.com/Haarush2006/OpsBoard-BE/internal/repository"
	apperrors "github.com/Haarush2006/OpsBoard-BE/pkg/errors"
)

// DefaultBcryptCost is the hashing cost used in production. Tests pass a
// lower cost to keep fixtures fast.
const DefaultBcryptCost = 12

// Events is the subset of event.Emitter the engine publishes through.
type Events interface {
	UserRegistered(ctx context.Context, user *domain.User)
	UserLoggedIn(ctx context.Context, user *domain.User)
	SessionsRevoked(ctx context.Context, userID string, sessions int64)
}

var _ Events = (*event.Emitter)(nil)

// AuthService orchestrates the credential store, session store, and token
// codec. It holds no mutable state of its own; every invocation is safe to
// run concurrently.
type AuthService struct {
	users      repository.UserRepository
	sessions   repository.RefreshTokenRepository
	codec      *auth.TokenCodec
	events     Events
	logger     *slog.Logger
	bcryptCost int
	now        func() time.Time
}

func NewAuthService(
	users repository.UserRepository,
	sessions repository.RefreshTokenRepository,
	codec *auth.TokenCodec,
	events Events,
	logger *slog.Logger,
	bcryptCost int,
) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = DefaultBcryptCost
	}
	return &AuthService{
		users:      users,
		sessions:   sessions,
		codec:      codec,
		events:     events,
		logger:     logger,
		bcryptCost: bcryptCost,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// RegisterInput carries a registration request. Role is optional and
// defaults to operator.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// AuthResult is returned by Register, Login, and Refresh.
type AuthResult struct {
	User   *domain.User
	Tokens *domain.TokenPair
}

// Register creates a new account and opens its first session.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)

	role := input.Role
	if role == "" {
		role = domain.DefaultRole
	}
	if !domain.IsValidRole(role) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid role %q", role))
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.AlreadyExists("user", "email", email)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("hash password: %w", err))
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(input.Name),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      1,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	tokens, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "role", user.Role)
	s.events.UserRegistered(ctx, user)

	return &AuthResult{User: user, Tokens: tokens}, nil
}

// Login verifies credentials and opens a new session. An unknown email and a
// wrong password return the same error so callers cannot probe for accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidCredentials()
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, apperrors.AccountDisabled()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.InvalidCredentials()
	}

	now := s.now()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	tokens, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)
	s.events.UserLoggedIn(ctx, user)

	return &AuthResult{User: user, Tokens: tokens}, nil
}

// Refresh rotates a refresh token: the presented token is consumed and a new
// pair is issued. The token is single use; a second presentation, including a
// concurrent one, fails.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, mapTokenError(err)
	}

	hash := hashToken(refreshToken)
	stored, err := s.sessions.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Already consumed by an earlier rotation, or never issued here.
			return nil, apperrors.InvalidToken()
		}
		return nil, err
	}
	if stored.UserID != claims.UserID {
		return nil, apperrors.InvalidToken()
	}

	// Consume before issuing. Concurrent presentations of the same token
	// race on this delete; only the caller that removed the row proceeds.
	removed, err := s.sessions.Delete(ctx, hash)
	if err != nil {
		return nil, err
	}
	if removed == 0 {
		return nil, apperrors.InvalidToken()
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidToken()
		}
		return nil, err
	}
	if !user.IsActive {
		// Indistinguishable from a bad token so the refresh path is not an
		// account-status oracle.
		return nil, apperrors.InvalidToken()
	}

	tokens, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Tokens: tokens}, nil
}

// Logout revokes the session behind the presented refresh token. Revoking a
// token that is already gone is not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if _, err := s.sessions.Delete(ctx, hashToken(refreshToken)); err != nil {
		return err
	}
	return nil
}

// LogoutAll revokes every session belonging to the user and returns how many
// were removed.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) (int64, error) {
	removed, err := s.sessions.DeleteByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "sessions revoked", "user_id", userID, "count", removed)
	s.events.SessionsRevoked(ctx, userID, removed)

	return removed, nil
}

// VerifyAccessToken validates an access token and returns its claims. It is
// stateless; revocation of outstanding access tokens is not possible.
func (s *AuthService) VerifyAccessToken(token string) (*auth.AccessClaims, error) {
	claims, err := s.codec.VerifyAccess(token)
	if err != nil {
		return nil, mapTokenError(err)
	}
	return claims, nil
}

// GetProfile returns the user behind an authenticated request.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// openSession issues a token pair and persists the refresh half by hash.
func (s *AuthService) openSession(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	accessToken, err := s.codec.IssueAccess(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	refreshToken, err := s.codec.IssueRefresh(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	now := s.now()
	session := &domain.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		TokenHash: hashToken(refreshToken),
		ExpiresAt: now.Add(s.codec.RefreshExpiry()),
		IssuedAt:  now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func mapTokenError(err error) error {
	if errors.Is(err, auth.ErrTokenExpired) {
		return apperrors.TokenExpired()
	}
	return apperrors.InvalidToken()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
