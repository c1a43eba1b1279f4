package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssetCodeRegex(t *testing.T) {
	valid := []string{"GOLD", "BTC", "USD-T", "ASSET_1", "X"}
	for _, s := range valid {
		assert.True(t, assetCodeRe.MatchString(s), "expected %q to be valid", s)
	}

	invalid := []string{"", "gold", "GOLD!", "A B", "TOO-LONG-ASSET-CODE-THAT-EXCEEDS-LIMIT", "<GOLD>"}
	for _, s := range invalid {
		assert.False(t, assetCodeRe.MatchString(s), "expected %q to be invalid", s)
	}
}

func TestSanitizeStruct(t *testing.T) {
	req := &TokenRequest{
		Key:    "  ops-key  ",
		Secret: "<script>x</script>",
	}
	SanitizeStruct(req)

	assert.Equal(t, "ops-key", req.Key)
	assert.NotContains(t, req.Secret, "<script>")
}

func TestSanitizeStruct_NestedStruct(t *testing.T) {
	req := &DepositRequest{
		Account: " 0c9e0e49-2c6c-4f8e-9d12-000000000000 ",
		Asset:   " GOLD ",
		Authorization: AuthorizationDTO{
			Nonce:     "  nonce-1  ",
			Signature: " sig ",
		},
	}
	SanitizeStruct(req)

	assert.Equal(t, "GOLD", req.Asset)
	assert.Equal(t, "nonce-1", req.Authorization.Nonce)
	assert.Equal(t, "sig", req.Authorization.Signature)
}

func TestSanitizeStruct_NonStructIsNoop(t *testing.T) {
	s := "  untouched  "
	SanitizeStruct(&s)
	assert.Equal(t, "  untouched  ", s)

	SanitizeStruct(nil)
}
