package service

import (
	"sync"

	"github.com/google/uuid"
)

// AccountLocker serializes state-mutating calls per account. Deposit,
// withdrawal and removal all run a read -> external transfer -> mutate
// sequence; the lock must be held across the whole call, not released
// around the transfer step. Calls for different accounts proceed in
// parallel.
//
// Entries are never reclaimed: vault entries themselves live forever, so
// the lock set grows with the account set.
type AccountLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewAccountLocker creates an empty locker.
func NewAccountLocker() *AccountLocker {
	return &AccountLocker{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// Lock acquires the account's mutex and returns the release function.
// Callers must defer the release so every exit path unlocks.
func (l *AccountLocker) Lock(account uuid.UUID) func() {
	l.mu.Lock()
	m, ok := l.locks[account]
	if !ok {
		m = &sync.Mutex{}
		l.locks[account] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
