package ports

import (
	"context"
	"time"

	"timelock-vault/internal/core/domain"

	"github.com/google/uuid"
)

// TransferPort abstracts the external settlement service that moves assets
// into and out of custody. The vault makes exactly one attempt per call;
// retries are the caller's concern.
type TransferPort interface {
	// PullInto moves the authorized quantity from the account into custody.
	// Any error means the deposit must not be persisted.
	PullInto(ctx context.Context, auth domain.TransferAuthorization) error
	// PushOut moves amount of asset back to the account. The boolean
	// distinguishes "call succeeded but the transfer was declined" from a
	// transport error; the coordinator treats both as failure.
	PushOut(ctx context.Context, account uuid.UUID, asset string, amount int64) (bool, error)
}

// AuthorizationVerifier validates a transfer authorization capability:
// scope, HMAC signature, deadline and single-use nonce. Verification
// consumes the nonce: a capability burns on its first attempt.
type AuthorizationVerifier interface {
	Verify(ctx context.Context, auth domain.TransferAuthorization, account uuid.UUID, asset string, amount int64) error
}

// PauseSwitch is the external administrative toggle. When paused, every
// state-mutating vault operation fails fast before touching state.
type PauseSwitch interface {
	IsPaused(ctx context.Context) (bool, error)
	SetPaused(ctx context.Context, paused bool) error
}

// EventPublisher pushes ledger events to the externally observable stream.
type EventPublisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}

// NonceStore manages single-use nonce consumption for replay prevention.
type NonceStore interface {
	// CheckAndSet atomically checks if the nonce exists, consuming it if
	// not. Returns true if the nonce was fresh.
	CheckAndSet(ctx context.Context, scope string, nonce string, ttl time.Duration) (bool, error)
}
