package jwtutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oumiche/impact-auto-plus-sub004/pkg/config"
)

func initTestConfig(t *testing.T) {
	t.Helper()
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})
}

func TestTokenRoundTrip(t *testing.T) {
	initTestConfig(t)

	tenantID := uint(7)
	token, err := GenerateTokenWithTenant("jane@example.com", 42, &tenantID, "Acme Fleet", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, uint(42), claims.UserID)
	require.NotNil(t, claims.TenantID)
	assert.Equal(t, uint(7), *claims.TenantID)
	assert.Equal(t, "Acme Fleet", claims.TenantName)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenWithoutTenant(t *testing.T) {
	initTestConfig(t)

	token, err := GenerateToken("jane@example.com", 42)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Nil(t, claims.TenantID)
	assert.Empty(t, claims.Role)
}

func TestTamperedTokenRejected(t *testing.T) {
	initTestConfig(t)

	token, err := GenerateToken("jane@example.com", 42)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	_, err = ValidateToken(tampered)
	assert.Error(t, err)
}

func TestWrongKeyRejected(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "key-one", ExpirationHours: 1})
	token, err := GenerateToken("jane@example.com", 42)
	require.NoError(t, err)

	Initialize(&config.JWTConfig{SigningKey: "key-two", ExpirationHours: 1})
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestUninitializedConfig(t *testing.T) {
	Initialize(nil)
	t.Cleanup(func() { initTestConfig(t) })

	_, err := GenerateToken("jane@example.com", 42)
	assert.Error(t, err)
	_, err = ValidateToken("whatever")
	assert.Error(t, err)
}
