package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTTokenService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTTokenService("jwt-secret", time.Hour, "timelock-vault")

	token, expiry, err := svc.Generate("ops-key")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, 5*time.Second)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "ops-key", claims.OperatorKey)
}

func TestJWTTokenService_WrongSecret(t *testing.T) {
	token, _, err := NewJWTTokenService("secret-a", time.Hour, "timelock-vault").Generate("ops-key")
	require.NoError(t, err)

	_, err = NewJWTTokenService("secret-b", time.Hour, "timelock-vault").Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_Expired(t *testing.T) {
	svc := NewJWTTokenService("jwt-secret", -time.Minute, "timelock-vault")

	token, _, err := svc.Generate("ops-key")
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_RejectsUnsignedAlg(t *testing.T) {
	claims := jwt.MapClaims{"sub": "ops-key", "exp": time.Now().Add(time.Hour).Unix()}
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTTokenService("jwt-secret", time.Hour, "timelock-vault").Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_GarbageToken(t *testing.T) {
	_, err := NewJWTTokenService("jwt-secret", time.Hour, "timelock-vault").Validate("not.a.jwt")
	assert.Error(t, err)
}
