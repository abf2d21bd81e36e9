// Package redis provides a Redis-backed refresh token store. Token TTLs
// are enforced by Redis key expiry, so expired sessions vanish without a
// cleanup job.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Haarush2006/OpsBoard-BE/internal/domain"
	apperrors "github.com/Haarush2006/OpsBoard-BE/pkg/errors"
)

const (
	tokenKeyPrefix = "auth:refresh:"
	userSetPrefix  = "auth:user_sessions:"
)

// SessionStore implements repository.RefreshTokenRepository on Redis.
type SessionStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{
		client: client,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func tokenKey(hash string) string { return tokenKeyPrefix + hash }
func userSetKey(id string) string { return userSetPrefix + id }

func (s *SessionStore) Create(ctx context.Context, token *domain.RefreshToken) error {
	data, err := json.Marshal(token)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("marshal refresh token: %w", err))
	}

	ttl := token.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return apperrors.InvalidInput("refresh token already expired")
	}

	ok, err := s.client.SetNX(ctx, tokenKey(token.TokenHash), data, ttl).Result()
	if err != nil {
		return apperrors.Internal(fmt.Errorf("store refresh token: %w", err))
	}
	if !ok {
		return apperrors.AlreadyExists("refresh token", "token_hash", token.TokenHash)
	}

	// Index the hash under its user so LogoutAll can find every session.
	// The set outlives individual members; stale members are skipped on read.
	pipe := s.client.Pipeline()
	pipe.SAdd(ctx, userSetKey(token.UserID), token.TokenHash)
	pipe.Expire(ctx, userSetKey(token.UserID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperrors.Internal(fmt.Errorf("index refresh token: %w", err))
	}
	return nil
}

func (s *SessionStore) GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	data, err := s.client.Get(ctx, tokenKey(tokenHash)).Bytes()
	if err == redis.Nil {
		return nil, apperrors.NotFound("refresh token", tokenHash)
	}
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("get refresh token: %w", err))
	}

	var token domain.RefreshToken
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("unmarshal refresh token: %w", err))
	}
	// TokenHash is excluded from serialization; restore it from the key.
	token.TokenHash = tokenHash
	return &token, nil
}

// Delete removes the token key. DEL reports how many keys were removed,
// so under concurrent use of the same token exactly one caller sees 1.
func (s *SessionStore) Delete(ctx context.Context, tokenHash string) (int64, error) {
	n, err := s.client.Del(ctx, tokenKey(tokenHash)).Result()
	if err != nil {
		return 0, apperrors.Internal(fmt.Errorf("delete refresh token: %w", err))
	}
	return n, nil
}

func (s *SessionStore) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	hashes, err := s.client.SMembers(ctx, userSetKey(userID)).Result()
	if err != nil {
		return 0, apperrors.Internal(fmt.Errorf("list user sessions: %w", err))
	}
	if len(hashes) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(hashes))
	for _, h := range hashes {
		keys = append(keys, tokenKey(h))
	}

	pipe := s.client.Pipeline()
	delCmd := pipe.Del(ctx, keys...)
	pipe.Del(ctx, userSetKey(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, apperrors.Internal(fmt.Errorf("delete user sessions: %w", err))
	}
	return delCmd.Val(), nil
}
