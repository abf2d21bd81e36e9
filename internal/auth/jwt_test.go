package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Haarush2006/OpsBoard-BE/internal/domain"
)

const (
	testAccessSecret  = "test-access-secret-0123456789abcdef"
	testRefreshSecret = "test-refresh-secret-0123456789abcdef"
)

func newTestCodec() *TokenCodec {
	return NewTokenCodec(testAccessSecret, testRefreshSecret, 15*time.Minute, 7*24*time.Hour)
}

func testUser() *domain.User {
	return &domain.User{
		ID:       "u-1",
		Email:    "ann@example.com",
		Role:     domain.RoleOperator,
		IsActive: true,
	}
}

func TestIssueAccess_RoundTrip(t *testing.T) {
	codec := newTestCodec()

	token, err := codec.IssueAccess(testUser())
	require.NoError(t, err)

	claims, err := codec.VerifyAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "ann@example.com", claims.Email)
	assert.Equal(t, domain.RoleOperator, claims.Role)
}

func TestIssueRefresh_RoundTrip(t *testing.T) {
	codec := newTestCodec()

	token, err := codec.IssueRefresh(testUser())
	require.NoError(t, err)

	claims, err := codec.VerifyRefresh(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
}

func TestVerify_SecretsAreIndependent(t *testing.T) {
	codec := newTestCodec()

	accessToken, err := codec.IssueAccess(testUser())
	require.NoError(t, err)
	refreshToken, err := codec.IssueRefresh(testUser())
	require.NoError(t, err)

	// An access token must not verify as a refresh token, and vice versa.
	_, err = codec.VerifyRefresh(accessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = codec.VerifyAccess(refreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyAccess_ExpiredIsClassifiedAsExpired(t *testing.T) {
	codec := newTestCodec()

	// Issue in the past, verify at the present.
	issuedAt := time.Now().UTC().Add(-time.Hour)
	codec.now = func() time.Time { return issuedAt }
	token, err := codec.IssueAccess(testUser())
	require.NoError(t, err)

	codec.now = func() time.Time { return time.Now().UTC() }
	_, err = codec.VerifyAccess(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.False(t, errors.Is(err, ErrTokenInvalid), "expired must not be reported as invalid")
}

func TestVerifyRefresh_ExpiredIsClassifiedAsExpired(t *testing.T) {
	codec := newTestCodec()

	issuedAt := time.Now().UTC().Add(-8 * 24 * time.Hour)
	codec.now = func() time.Time { return issuedAt }
	token, err := codec.IssueRefresh(testUser())
	require.NoError(t, err)

	codec.now = func() time.Time { return time.Now().UTC() }
	_, err = codec.VerifyRefresh(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyAccess_TamperedToken(t *testing.T) {
	codec := newTestCodec()

	token, err := codec.IssueAccess(testUser())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + ".AAAA" + parts[2][4:]

	_, err = codec.VerifyAccess(tampered)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyAccess_Garbage(t *testing.T) {
	codec := newTestCodec()

	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := codec.VerifyAccess(tok)
		assert.ErrorIs(t, err, ErrTokenInvalid, "token %q", tok)
	}
}

func TestVerifyAccess_WrongSecret(t *testing.T) {
	codec := newTestCodec()
	other := NewTokenCodec("completely-different-secret-value!", testRefreshSecret, 15*time.Minute, 7*24*time.Hour)

	token, err := other.IssueAccess(testUser())
	require.NoError(t, err)

	_, err = codec.VerifyAccess(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestIssueAccess_ExpirySetFromClock(t *testing.T) {
	codec := newTestCodec()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	codec.now = func() time.Time { return fixed }

	token, err := codec.IssueAccess(testUser())
	require.NoError(t, err)

	claims, err := codec.VerifyAccess(token)
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(15*time.Minute), claims.ExpiresAt.Time)
	assert.Equal(t, fixed, claims.IssuedAt.Time)
}
