package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TransferAuthorization is a single-use, expiring capability produced by the
// external signer. It authorizes pulling Amount of Asset from Account into
// custody exactly once. The vault verifies the HMAC signature, deadline and
// nonce but never inspects the signer's key material.
type TransferAuthorization struct {
	Account   uuid.UUID `json:"account"`
	Asset     string    `json:"asset"`
	Amount    int64     `json:"amount"`
	Deadline  time.Time `json:"deadline"`
	Nonce     string    `json:"nonce"`
	Signature string    `json:"signature"` // lowercase hex HMAC-SHA256
}

// CanonicalString is the payload the signer commits to.
// Format: ACCOUNT|ASSET|AMOUNT|DEADLINE_UNIX|NONCE
func (t TransferAuthorization) CanonicalString() string {
	return fmt.Sprintf("%s|%s|%d|%d|%s",
		t.Account, t.Asset, t.Amount, t.Deadline.Unix(), t.Nonce)
}

// Covers reports whether the capability is scoped to exactly this
// account/asset/amount triple.
func (t TransferAuthorization) Covers(account uuid.UUID, asset string, amount int64) bool {
	return t.Account == account && t.Asset == asset && t.Amount == amount
}

// Expired reports whether the deadline has passed at the given instant.
func (t TransferAuthorization) Expired(now time.Time) bool {
	return now.After(t.Deadline)
}
