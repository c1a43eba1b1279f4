package ports

import (
	"context"
	"time"

	"timelock-vault/internal/core/domain"

	"github.com/google/uuid"
)

// --- Service Ports (Business Logic) ---

// VaultService is the core custody ledger: deposits, the all-assets
// withdrawal state machine, asset removal and the read-only query surface.
type VaultService interface {
	Deposit(ctx context.Context, req DepositRequest) (*DepositResult, error)
	WithdrawAll(ctx context.Context, account uuid.UUID) ([]domain.WithdrawalOutcome, error)
	RemoveAsset(ctx context.Context, account uuid.UUID, asset string) (int64, error)

	BalanceOf(ctx context.Context, account uuid.UUID, asset string) (int64, error)
	UnlockTime(ctx context.Context, account uuid.UUID) (time.Time, error)
	IsUnlocked(ctx context.Context, account uuid.UUID) (bool, error)
	ListAssets(ctx context.Context, account uuid.UUID) ([]string, error)
	ListBalances(ctx context.Context, account uuid.UUID) ([]string, []int64, error)
}

// DepositRequest holds validated input for a deposit.
type DepositRequest struct {
	Account       uuid.UUID
	Asset         string
	LockPeriod    time.Duration // hint; binding only on creation or re-arm
	Amount        int64
	Authorization domain.TransferAuthorization
}

// DepositResult is the outcome of a successful deposit.
type DepositResult struct {
	NewBalance int64
	UnlockTime time.Time
	Created    bool // a lock cycle was started (first deposit or re-arm)
}

// AuthService issues operator tokens for the admin surface.
type AuthService interface {
	Login(ctx context.Context, key, secret string) (string, time.Time, error) // token, expiry, error
}

// EventSink receives ledger events for recording and publication.
// Emission is best-effort: the ledger state, not the stream, is the source
// of truth, and a sink failure must never fail the originating operation.
type EventSink interface {
	Emit(ctx context.Context, ev domain.Event)
}

// SignatureService handles HMAC-SHA256 signing and verification.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
	BuildCanonicalString(method, path string, timestamp int64, nonce string, body string) string
}

// HashService handles secret hashing (Argon2id).
type HashService interface {
	Hash(secret string) (string, error)
	Verify(secret string, hash string) (bool, error)
}

// TokenService handles JWT token operations for operators.
type TokenService interface {
	Generate(operatorKey string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	OperatorKey string
}

// Clock supplies the current time. Every vault operation reads it exactly
// once and treats the value as immutable for the operation's duration.
type Clock interface {
	Now() time.Time
}
