package service

import (
	"context"
	"testing"
	"time"

	"timelock-vault/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupOperatorAuth(t *testing.T, secret string) *OperatorAuthService {
	t.Helper()
	hashSvc := NewArgon2HashService()
	hash, err := hashSvc.Hash(secret)
	require.NoError(t, err)

	tokenSvc := NewJWTTokenService("test-jwt-secret", time.Hour, "timelock-vault")
	return NewOperatorAuthService(
		config.OperatorConfig{Key: "ops-key", SecretHash: hash},
		hashSvc, tokenSvc, zerolog.Nop(),
	)
}

func TestOperatorAuth_Login(t *testing.T) {
	svc := setupOperatorAuth(t, "correct horse battery staple")

	token, expiry, err := svc.Login(context.Background(), "ops-key", "correct horse battery staple")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiry.After(time.Now()))
}

func TestOperatorAuth_WrongKey(t *testing.T) {
	svc := setupOperatorAuth(t, "secret")

	_, _, err := svc.Login(context.Background(), "not-the-key", "secret")
	assertAppError(t, err, "SEC_005")
}

func TestOperatorAuth_WrongSecret(t *testing.T) {
	svc := setupOperatorAuth(t, "secret")

	_, _, err := svc.Login(context.Background(), "ops-key", "guess")
	assertAppError(t, err, "SEC_005")
}

func TestOperatorAuth_NotConfigured(t *testing.T) {
	svc := NewOperatorAuthService(
		config.OperatorConfig{},
		NewArgon2HashService(),
		NewJWTTokenService("test-jwt-secret", time.Hour, "timelock-vault"),
		zerolog.Nop(),
	)

	_, _, err := svc.Login(context.Background(), "", "")
	assertAppError(t, err, "SEC_005")
}

func TestOperatorAuth_TokenCarriesOperator(t *testing.T) {
	svc := setupOperatorAuth(t, "secret")

	token, _, err := svc.Login(context.Background(), "ops-key", "secret")
	require.NoError(t, err)

	claims, err := NewJWTTokenService("test-jwt-secret", time.Hour, "timelock-vault").Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "ops-key", claims.OperatorKey)
}
