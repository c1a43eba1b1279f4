package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"timelock-vault/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Ledger Repo ---

// acctState is the persisted form of an account: lock metadata plus the
// asset rows in registry enumeration order.
type acctState struct {
	createdAt  time.Time
	lockPeriod time.Duration
	assets     []domain.AssetBalance
}

type inMemoryLedgerRepo struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*acctState
}

func newInMemoryLedgerRepo() *inMemoryLedgerRepo {
	return &inMemoryLedgerRepo{accounts: make(map[uuid.UUID]*acctState)}
}

func (r *inMemoryLedgerRepo) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.restore(id), nil
}

func (r *inMemoryLedgerRepo) GetAccountForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.restore(id), nil
}

// restore rebuilds a detached aggregate; callers hold the mutex.
func (r *inMemoryLedgerRepo) restore(id uuid.UUID) *domain.Account {
	st, ok := r.accounts[id]
	if !ok {
		return nil
	}
	assets := make([]domain.AssetBalance, len(st.assets))
	copy(assets, st.assets)
	return domain.RestoreAccount(id, st.createdAt, st.lockPeriod, assets)
}

func (r *inMemoryLedgerRepo) CreateAccount(ctx context.Context, tx pgx.Tx, acct *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[acct.ID]; exists {
		return fmt.Errorf("account already exists")
	}
	r.accounts[acct.ID] = &acctState{
		createdAt:  acct.CreatedAt,
		lockPeriod: acct.LockPeriod,
	}
	return nil
}

func (r *inMemoryLedgerRepo) UpdateLock(ctx context.Context, tx pgx.Tx, id uuid.UUID, createdAt time.Time, lockPeriod time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.accounts[id]
	if !ok {
		return fmt.Errorf("account not found")
	}
	st.createdAt = createdAt
	st.lockPeriod = lockPeriod
	return nil
}

func (r *inMemoryLedgerRepo) UpsertBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, asset string, position int, balance int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.accounts[id]
	if !ok {
		return fmt.Errorf("account not found")
	}
	for i := range st.assets {
		if st.assets[i].Asset == asset {
			st.assets[i].Amount = balance
			return nil
		}
	}
	st.assets = append(st.assets, domain.AssetBalance{Asset: asset, Amount: balance})
	return nil
}

func (r *inMemoryLedgerRepo) ZeroBalances(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.accounts[id]
	if !ok {
		return fmt.Errorf("account not found")
	}
	for i := range st.assets {
		st.assets[i].Amount = 0
	}
	return nil
}

func (r *inMemoryLedgerRepo) RestoreBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, asset string, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.accounts[id]
	if !ok {
		return fmt.Errorf("account not found")
	}
	for i := range st.assets {
		if st.assets[i].Asset == asset {
			st.assets[i].Amount = amount
			return nil
		}
	}
	return fmt.Errorf("asset not found")
}

func (r *inMemoryLedgerRepo) RemoveAsset(ctx context.Context, tx pgx.Tx, id uuid.UUID, asset string, moved string, position int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.accounts[id]
	if !ok {
		return fmt.Errorf("account not found")
	}
	idx := -1
	for i := range st.assets {
		if st.assets[i].Asset == asset {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("asset not found")
	}
	// Mirror the registry's swap-with-last removal.
	last := len(st.assets) - 1
	st.assets[idx] = st.assets[last]
	st.assets = st.assets[:last]
	return nil
}

// --- In-Memory Event Repo ---

type inMemoryEventRepo struct {
	mu     sync.RWMutex
	events []domain.Event
}

func newInMemoryEventRepo() *inMemoryEventRepo {
	return &inMemoryEventRepo{}
}

func (r *inMemoryEventRepo) Append(ctx context.Context, ev domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *inMemoryEventRepo) ListRecent(ctx context.Context, limit int) ([]domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Event{}
	for i := len(r.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.events[i])
	}
	return out, nil
}

// all returns the full stream in append order.
func (r *inMemoryEventRepo) all() []domain.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Event, len(r.events))
	copy(out, r.events)
	return out
}

// ofType returns the events of one type in append order.
func (r *inMemoryEventRepo) ofType(et domain.EventType) []domain.Event {
	var out []domain.Event
	for _, ev := range r.all() {
		if ev.Type == et {
			out = append(out, ev)
		}
	}
	return out
}

// --- Fake Settlement ---

// fakeSettlement always accepts transfers unless an asset has been marked
// as declined or failing.
type fakeSettlement struct {
	mu       sync.Mutex
	declined map[string]bool
	failing  map[string]error
	pulls    int
	pushes   int
}

func newFakeSettlement() *fakeSettlement {
	return &fakeSettlement{
		declined: make(map[string]bool),
		failing:  make(map[string]error),
	}
}

func (f *fakeSettlement) PullInto(ctx context.Context, auth domain.TransferAuthorization) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failing[auth.Asset]; err != nil {
		return err
	}
	if f.declined[auth.Asset] {
		return fmt.Errorf("settlement pull declined")
	}
	f.pulls++
	return nil
}

func (f *fakeSettlement) PushOut(ctx context.Context, account uuid.UUID, asset string, amount int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failing[asset]; err != nil {
		return false, err
	}
	if f.declined[asset] {
		return false, nil
	}
	f.pushes++
	return true, nil
}

func (f *fakeSettlement) decline(asset string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.declined[asset] = true
}

// --- Mutable Clock ---

type testClock struct {
	mu  sync.RWMutex
	now time.Time
}

func newTestClock(start time.Time) *testClock {
	return &testClock{now: start}
}

func (c *testClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// --- In-Memory Transactor ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
