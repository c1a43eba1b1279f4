package ports

import (
	"context"
	"time"

	"timelock-vault/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LedgerRepository defines persistence for account lock-state, balances and
// the per-account asset registry. Methods accepting pgx.Tx are used inside
// transaction blocks for pessimistic locking.
type LedgerRepository interface {
	// GetAccount loads the full aggregate without locking.
	// Returns (nil, nil) when the account has no vault entry.
	GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	// GetAccountForUpdate loads the aggregate with row locks held. Must be
	// called within a transaction.
	GetAccountForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error)
	// CreateAccount inserts a new account entry.
	CreateAccount(ctx context.Context, tx pgx.Tx, acct *domain.Account) error
	// UpdateLock rewrites the lock window after a re-arm.
	UpdateLock(ctx context.Context, tx pgx.Tx, id uuid.UUID, createdAt time.Time, lockPeriod time.Duration) error
	// UpsertBalance writes an asset's balance and registry position.
	UpsertBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, asset string, position int, balance int64) error
	// ZeroBalances drains every asset balance for the account.
	ZeroBalances(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	// RestoreBalance writes back a drained balance after a failed transfer.
	RestoreBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, asset string, amount int64) error
	// RemoveAsset deletes the asset row, mirroring the in-memory
	// swap-with-last removal: moved (when non-empty) is the former tail
	// asset that now occupies position.
	RemoveAsset(ctx context.Context, tx pgx.Tx, id uuid.UUID, asset string, moved string, position int) error
}

// EventRepository persists the append-only ledger event stream.
type EventRepository interface {
	Append(ctx context.Context, ev domain.Event) error
	ListRecent(ctx context.Context, limit int) ([]domain.Event, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
