package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"timelock-vault/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LedgerRepo implements ports.LedgerRepository. The registry's asset order
// is mirrored in the position column of vault_assets, so a reloaded account
// rebuilds the exact in-memory ordering (swap-with-last removals included).
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// GetAccount fetches the account aggregate without locking.
func (r *LedgerRepo) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return r.loadAccount(ctx, r.pool, id, "")
}

// GetAccountForUpdate fetches the account aggregate with pessimistic locking.
// This MUST be called within a transaction.
func (r *LedgerRepo) GetAccountForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error) {
	return r.loadAccount(ctx, tx, id, " FOR UPDATE")
}

func (r *LedgerRepo) loadAccount(ctx context.Context, q rowQuerier, id uuid.UUID, locking string) (*domain.Account, error) {
	query := `SELECT id, created_at, lock_period_seconds FROM vault_accounts WHERE id = $1` + locking

	var (
		acctID      uuid.UUID
		createdAt   time.Time
		lockSeconds int64
	)
	err := q.QueryRow(ctx, query, id).Scan(&acctID, &createdAt, &lockSeconds)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get vault account: %w", err)
	}

	assetQuery := `SELECT asset, balance FROM vault_assets WHERE account_id = $1 ORDER BY position` + locking

	rows, err := q.Query(ctx, assetQuery, id)
	if err != nil {
		return nil, fmt.Errorf("get vault assets: %w", err)
	}
	defer rows.Close()

	var assets []domain.AssetBalance
	for rows.Next() {
		var ab domain.AssetBalance
		if err := rows.Scan(&ab.Asset, &ab.Amount); err != nil {
			return nil, fmt.Errorf("scan vault asset: %w", err)
		}
		assets = append(assets, ab)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vault assets: %w", err)
	}

	return domain.RestoreAccount(acctID, createdAt, time.Duration(lockSeconds)*time.Second, assets), nil
}

// CreateAccount inserts a new account entry within a transaction.
func (r *LedgerRepo) CreateAccount(ctx context.Context, tx pgx.Tx, acct *domain.Account) error {
	query := `INSERT INTO vault_accounts (id, created_at, lock_period_seconds) VALUES ($1, $2, $3)`

	_, err := tx.Exec(ctx, query, acct.ID, acct.CreatedAt, int64(acct.LockPeriod/time.Second))
	if err != nil {
		return fmt.Errorf("insert vault account: %w", err)
	}
	return nil
}

// UpdateLock rewrites the lock window after a re-arm.
func (r *LedgerRepo) UpdateLock(ctx context.Context, tx pgx.Tx, id uuid.UUID, createdAt time.Time, lockPeriod time.Duration) error {
	query := `UPDATE vault_accounts SET created_at = $1, lock_period_seconds = $2 WHERE id = $3`

	tag, err := tx.Exec(ctx, query, createdAt, int64(lockPeriod/time.Second), id)
	if err != nil {
		return fmt.Errorf("update vault lock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("vault account not found: %s", id)
	}
	return nil
}

// UpsertBalance writes an asset's balance and registry position.
func (r *LedgerRepo) UpsertBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, asset string, position int, balance int64) error {
	query := `INSERT INTO vault_assets (account_id, asset, position, balance)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_id, asset) DO UPDATE SET balance = EXCLUDED.balance`

	_, err := tx.Exec(ctx, query, id, asset, position, balance)
	if err != nil {
		return fmt.Errorf("upsert vault balance: %w", err)
	}
	return nil
}

// ZeroBalances drains every asset balance for the account. Registry rows
// stay in place; only the balance column is cleared.
func (r *LedgerRepo) ZeroBalances(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	query := `UPDATE vault_assets SET balance = 0 WHERE account_id = $1`

	_, err := tx.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("zero vault balances: %w", err)
	}
	return nil
}

// RestoreBalance writes back a drained balance after a failed transfer-out.
func (r *LedgerRepo) RestoreBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, asset string, amount int64) error {
	query := `UPDATE vault_assets SET balance = $1 WHERE account_id = $2 AND asset = $3`

	tag, err := tx.Exec(ctx, query, amount, id, asset)
	if err != nil {
		return fmt.Errorf("restore vault balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("vault asset not found: %s/%s", id, asset)
	}
	return nil
}

// RemoveAsset deletes the asset row and, when the in-memory registry moved
// the former tail into the deleted slot, rewrites that asset's position so
// the stored order keeps matching the registry.
func (r *LedgerRepo) RemoveAsset(ctx context.Context, tx pgx.Tx, id uuid.UUID, asset string, moved string, position int) error {
	deleteQuery := `DELETE FROM vault_assets WHERE account_id = $1 AND asset = $2`

	tag, err := tx.Exec(ctx, deleteQuery, id, asset)
	if err != nil {
		return fmt.Errorf("delete vault asset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("vault asset not found: %s/%s", id, asset)
	}

	if moved == "" {
		return nil
	}

	moveQuery := `UPDATE vault_assets SET position = $1 WHERE account_id = $2 AND asset = $3`

	if _, err := tx.Exec(ctx, moveQuery, position, id, moved); err != nil {
		return fmt.Errorf("reposition vault asset: %w", err)
	}
	return nil
}
