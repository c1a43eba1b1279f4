package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHMACSignatureService_SignAndVerify(t *testing.T) {
	svc := NewHMACSignatureService()

	payload := "POST|/api/v1/deposits|1717200000|nonce-1|{}"
	sig := svc.Sign("secret", payload)

	assert.Len(t, sig, 64, "hex-encoded sha256")
	assert.True(t, svc.Verify("secret", payload, sig))
	assert.False(t, svc.Verify("other-secret", payload, sig))
	assert.False(t, svc.Verify("secret", payload+"x", sig))
	assert.False(t, svc.Verify("secret", payload, ""))
}

func TestHMACSignatureService_Deterministic(t *testing.T) {
	svc := NewHMACSignatureService()
	assert.Equal(t, svc.Sign("k", "payload"), svc.Sign("k", "payload"))
	assert.NotEqual(t, svc.Sign("k1", "payload"), svc.Sign("k2", "payload"))
}

func TestBuildCanonicalString(t *testing.T) {
	svc := NewHMACSignatureService()
	got := svc.BuildCanonicalString("POST", "/api/v1/transfers", 1717200000, "n-1", `{"amount":5}`)
	assert.Equal(t, `POST|/api/v1/transfers|1717200000|n-1|{"amount":5}`, got)
}
