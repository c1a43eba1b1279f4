package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies a ledger event on the append-only stream.
type EventType string

const (
	EventAccountCreated EventType = "ACCOUNT_CREATED"
	EventDeposited      EventType = "DEPOSITED"
	EventWithdrawn      EventType = "WITHDRAWN"
	EventWithdrawFailed EventType = "WITHDRAW_FAILED"
	EventAssetRemoved   EventType = "ASSET_REMOVED"
)

// Event is a single entry on the vault's observable event stream.
// Fields not meaningful for a given type are left at their zero value.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Type       EventType `json:"type"`
	Account    uuid.UUID `json:"account"`
	Asset      string    `json:"asset,omitempty"`
	Amount     int64     `json:"amount,omitempty"`
	NewBalance int64     `json:"new_balance,omitempty"`
	StartTime  time.Time `json:"start_time,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewAccountCreated records the start (or restart) of a lock cycle.
func NewAccountCreated(account uuid.UUID, startTime time.Time) Event {
	return Event{
		ID:         uuid.New(),
		Type:       EventAccountCreated,
		Account:    account,
		StartTime:  startTime,
		OccurredAt: startTime,
	}
}

// NewDeposited records a successful deposit with the resulting balance.
func NewDeposited(account uuid.UUID, asset string, amount, newBalance int64, at time.Time) Event {
	return Event{
		ID:         uuid.New(),
		Type:       EventDeposited,
		Account:    account,
		Asset:      asset,
		Amount:     amount,
		NewBalance: newBalance,
		OccurredAt: at,
	}
}

// NewWithdrawn records a successful transfer-out of one asset.
func NewWithdrawn(account uuid.UUID, asset string, amount int64, at time.Time) Event {
	return Event{
		ID:         uuid.New(),
		Type:       EventWithdrawn,
		Account:    account,
		Asset:      asset,
		Amount:     amount,
		OccurredAt: at,
	}
}

// NewWithdrawFailed records a failed transfer-out whose balance was restored.
func NewWithdrawFailed(account uuid.UUID, asset string, amount int64, reason string, at time.Time) Event {
	return Event{
		ID:         uuid.New(),
		Type:       EventWithdrawFailed,
		Account:    account,
		Asset:      asset,
		Amount:     amount,
		Reason:     reason,
		OccurredAt: at,
	}
}

// NewAssetRemoved records an asset removal and the forfeited amount.
func NewAssetRemoved(account uuid.UUID, asset string, amount int64, at time.Time) Event {
	return Event{
		ID:         uuid.New(),
		Type:       EventAssetRemoved,
		Account:    account,
		Asset:      asset,
		Amount:     amount,
		OccurredAt: at,
	}
}
