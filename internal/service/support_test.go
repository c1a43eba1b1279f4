package service

import (
	"context"
	"sync"
	"time"

	"timelock-vault/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// fakeClock implements ports.Clock with a controllable instant.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeTx implements pgx.Tx with staged writes: mutations apply on Commit and
// vanish on Rollback, mirroring the atomic-or-nothing deposit contract.
type fakeTx struct {
	pgx.Tx
	staged    []func()
	committed bool
}

func (t *fakeTx) Commit(_ context.Context) error {
	for _, apply := range t.staged {
		apply()
	}
	t.staged = nil
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(_ context.Context) error {
	if !t.committed {
		t.staged = nil
	}
	return nil
}

// storedAccount is the fake's persisted row set for one account.
type storedAccount struct {
	createdAt  time.Time
	lockPeriod time.Duration
	assets     []domain.AssetBalance // ordered by registry position
}

// fakeLedgerRepo is an in-memory LedgerRepository with transactional
// semantics via fakeTx staging.
type fakeLedgerRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*storedAccount
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{accounts: make(map[uuid.UUID]*storedAccount)}
}

// fakeTransactor implements ports.DBTransactor producing fakeTx instances.
type fakeTransactor struct{}

func (fakeTransactor) Begin(_ context.Context) (pgx.Tx, error) {
	return &fakeTx{}, nil
}

func (r *fakeLedgerRepo) restore(id uuid.UUID) *domain.Account {
	st, ok := r.accounts[id]
	if !ok {
		return nil
	}
	assets := make([]domain.AssetBalance, len(st.assets))
	copy(assets, st.assets)
	return domain.RestoreAccount(id, st.createdAt, st.lockPeriod, assets)
}

func (r *fakeLedgerRepo) GetAccount(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.restore(id), nil
}

func (r *fakeLedgerRepo) GetAccountForUpdate(_ context.Context, _ pgx.Tx, id uuid.UUID) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.restore(id), nil
}

func (r *fakeLedgerRepo) CreateAccount(_ context.Context, tx pgx.Tx, acct *domain.Account) error {
	id, createdAt, lockPeriod := acct.ID, acct.CreatedAt, acct.LockPeriod
	r.stage(tx, func() {
		r.accounts[id] = &storedAccount{createdAt: createdAt, lockPeriod: lockPeriod}
	})
	return nil
}

func (r *fakeLedgerRepo) UpdateLock(_ context.Context, tx pgx.Tx, id uuid.UUID, createdAt time.Time, lockPeriod time.Duration) error {
	r.stage(tx, func() {
		if st, ok := r.accounts[id]; ok {
			st.createdAt = createdAt
			st.lockPeriod = lockPeriod
		}
	})
	return nil
}

func (r *fakeLedgerRepo) UpsertBalance(_ context.Context, tx pgx.Tx, id uuid.UUID, asset string, position int, balance int64) error {
	r.stage(tx, func() {
		st, ok := r.accounts[id]
		if !ok {
			return
		}
		for position >= len(st.assets) {
			st.assets = append(st.assets, domain.AssetBalance{})
		}
		st.assets[position] = domain.AssetBalance{Asset: asset, Amount: balance}
	})
	return nil
}

func (r *fakeLedgerRepo) ZeroBalances(_ context.Context, tx pgx.Tx, id uuid.UUID) error {
	r.stage(tx, func() {
		st, ok := r.accounts[id]
		if !ok {
			return
		}
		for i := range st.assets {
			st.assets[i].Amount = 0
		}
	})
	return nil
}

func (r *fakeLedgerRepo) RestoreBalance(_ context.Context, tx pgx.Tx, id uuid.UUID, asset string, amount int64) error {
	r.stage(tx, func() {
		st, ok := r.accounts[id]
		if !ok {
			return
		}
		for i := range st.assets {
			if st.assets[i].Asset == asset {
				st.assets[i].Amount = amount
				return
			}
		}
	})
	return nil
}

func (r *fakeLedgerRepo) RemoveAsset(_ context.Context, tx pgx.Tx, id uuid.UUID, asset string, moved string, position int) error {
	r.stage(tx, func() {
		st, ok := r.accounts[id]
		if !ok {
			return
		}
		last := len(st.assets) - 1
		if moved != "" && position <= last {
			st.assets[position] = st.assets[last]
		}
		st.assets = st.assets[:last]
	})
	return nil
}

func (r *fakeLedgerRepo) stage(tx pgx.Tx, apply func()) {
	ft := tx.(*fakeTx)
	ft.staged = append(ft.staged, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		apply()
	})
}

// recordingSink implements ports.EventSink, collecting emitted events for
// assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *recordingSink) Emit(_ context.Context, ev domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) ofType(t domain.EventType) []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Event
	for _, ev := range s.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// balance reads a committed balance directly, bypassing the service.
func (r *fakeLedgerRepo) balance(id uuid.UUID, asset string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.accounts[id]
	if !ok {
		return 0
	}
	for _, ab := range st.assets {
		if ab.Asset == asset {
			return ab.Amount
		}
	}
	return 0
}
