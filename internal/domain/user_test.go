package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_PasswordHashNeverSerialized(t *testing.T) {
	u := User{
		ID:           "u-1",
		Email:        "ann@example.com",
		PasswordHash: "$2a$12$secret",
		Name:         "Ann",
		Role:         RoleOperator,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
		Version:      3,
	}

	data, err := json.Marshal(u)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "secret")
	assert.NotContains(t, string(data), "password")
	assert.NotContains(t, string(data), "version")
}

func TestRefreshToken_HashNeverSerialized(t *testing.T) {
	rt := RefreshToken{
		ID:        "rt-1",
		UserID:    "u-1",
		TokenHash: "deadbeef",
		ExpiresAt: time.Now().UTC().Add(7 * 24 * time.Hour),
		IssuedAt:  time.Now().UTC(),
	}

	data, err := json.Marshal(rt)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "deadbeef")
}

func TestIsValidRole(t *testing.T) {
	for _, role := range ValidRoles() {
		assert.True(t, IsValidRole(role), role)
	}
	assert.False(t, IsValidRole("customer"))
	assert.False(t, IsValidRole(""))
	assert.False(t, IsValidRole("Admin"))
}

func TestDefaultRole(t *testing.T) {
	assert.Equal(t, RoleOperator, DefaultRole)
}
