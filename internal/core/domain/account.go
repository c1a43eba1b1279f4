package domain

import (
	"time"

	"github.com/google/uuid"
)

// AssetBalance pairs an asset identifier with a held quantity.
type AssetBalance struct {
	Asset  string
	Amount int64
}

// Account is the per-account vault aggregate: one lock window covering every
// asset the account holds, plus the registry of assets ever held with a
// non-zero balance. An account entry is created on first deposit and is
// never deleted afterwards.
type Account struct {
	ID         uuid.UUID
	CreatedAt  time.Time
	LockPeriod time.Duration

	registry *AssetRegistry
	balances map[string]int64
	nonZero  int // count of assets with balance > 0, kept in step with balances
}

// NewAccount creates a fresh aggregate with an armed lock and no holdings.
func NewAccount(id uuid.UUID, createdAt time.Time, lockPeriod time.Duration) *Account {
	return &Account{
		ID:         id,
		CreatedAt:  createdAt,
		LockPeriod: lockPeriod,
		registry:   NewAssetRegistry(),
		balances:   make(map[string]int64),
	}
}

// RestoreAccount rebuilds an aggregate from persisted state. Assets must be
// given in registry enumeration order.
func RestoreAccount(id uuid.UUID, createdAt time.Time, lockPeriod time.Duration, assets []AssetBalance) *Account {
	a := NewAccount(id, createdAt, lockPeriod)
	for _, ab := range assets {
		a.registry.Register(ab.Asset)
		if ab.Amount != 0 {
			a.balances[ab.Asset] = ab.Amount
			a.nonZero++
		}
	}
	return a
}

// UnlockTime returns the instant the lock window elapses.
func (a *Account) UnlockTime() time.Time {
	return a.CreatedAt.Add(a.LockPeriod)
}

// Unlocked reports whether the lock has elapsed at the given instant.
func (a *Account) Unlocked(now time.Time) bool {
	return !now.Before(a.UnlockTime())
}

// AllBalancesZero reports whether every registered asset is fully drained.
func (a *Account) AllBalancesZero() bool {
	return a.nonZero == 0
}

// Rearm restarts the lock cycle with a fresh start time and period.
// Callers must only do this when the account is fully drained and expired.
func (a *Account) Rearm(now time.Time, lockPeriod time.Duration) {
	a.CreatedAt = now
	a.LockPeriod = lockPeriod
}

// Balance returns the held quantity of an asset, 0 for unknown assets.
func (a *Account) Balance(asset string) int64 {
	return a.balances[asset]
}

// RegisterAsset adds the asset to the registry if it is not already a
// member. Membership, not a zero balance, decides: an asset drained to zero
// but never removed stays registered and is not re-appended.
func (a *Account) RegisterAsset(asset string) bool {
	return a.registry.Register(asset)
}

// Credit adds quantity to the asset's balance and returns the new balance.
func (a *Account) Credit(asset string, quantity int64) int64 {
	a.setBalance(asset, a.balances[asset]+quantity)
	return a.balances[asset]
}

// ZeroAll drains every balance and returns the pre-drain snapshot in
// registry enumeration order, including drained assets.
func (a *Account) ZeroAll() []AssetBalance {
	snapshot := a.Holdings()
	for _, ab := range snapshot {
		a.setBalance(ab.Asset, 0)
	}
	return snapshot
}

// Restore writes back a previously drained balance (compensation after a
// failed transfer-out).
func (a *Account) Restore(asset string, amount int64) {
	a.setBalance(asset, amount)
}

// RemoveAsset drains the asset and deletes its registry entry.
// Returns the forfeited amount plus the registry swap bookkeeping needed to
// mirror the removal in storage.
func (a *Account) RemoveAsset(asset string) (amount int64, position int, moved string, ok bool) {
	position, moved, ok = a.registry.Remove(asset)
	if !ok {
		return 0, 0, "", false
	}
	amount = a.balances[asset]
	a.setBalance(asset, 0)
	delete(a.balances, asset)
	return amount, position, moved, true
}

// Assets returns the registered asset identifiers in enumeration order.
func (a *Account) Assets() []string {
	return a.registry.List()
}

// Holdings returns the registered assets with their balances, in
// enumeration order. Drained assets appear with amount 0.
func (a *Account) Holdings() []AssetBalance {
	assets := a.registry.List()
	out := make([]AssetBalance, len(assets))
	for i, asset := range assets {
		out[i] = AssetBalance{Asset: asset, Amount: a.balances[asset]}
	}
	return out
}

// Registry exposes the underlying registry for position lookups.
func (a *Account) Registry() *AssetRegistry {
	return a.registry
}

// setBalance maintains the nonZero counter across zero transitions.
func (a *Account) setBalance(asset string, amount int64) {
	prev := a.balances[asset]
	switch {
	case prev == 0 && amount != 0:
		a.nonZero++
	case prev != 0 && amount == 0:
		a.nonZero--
	}
	if amount == 0 {
		delete(a.balances, asset)
		return
	}
	a.balances[asset] = amount
}
