package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"timelock-vault/internal/core/domain"
	"timelock-vault/internal/core/ports"
	"timelock-vault/internal/core/ports/mocks"
	"timelock-vault/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var testStart = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

type vaultTestDeps struct {
	svc       *VaultServiceImpl
	repo      *fakeLedgerRepo
	clock     *fakeClock
	transfers *mocks.MockTransferPort
	authz     *mocks.MockAuthorizationVerifier
	pause     *mocks.MockPauseSwitch
	events    *recordingSink
	ctrl      *gomock.Controller
}

func setupVaultService(t *testing.T) *vaultTestDeps {
	ctrl := gomock.NewController(t)
	d := &vaultTestDeps{
		repo:      newFakeLedgerRepo(),
		clock:     newFakeClock(testStart),
		transfers: mocks.NewMockTransferPort(ctrl),
		authz:     mocks.NewMockAuthorizationVerifier(ctrl),
		pause:     mocks.NewMockPauseSwitch(ctrl),
		events:    &recordingSink{},
		ctrl:      ctrl,
	}
	d.svc = NewVaultService(
		d.repo, fakeTransactor{}, d.transfers, d.authz,
		d.pause, d.events, d.clock, zerolog.Nop(),
	)
	return d
}

func (d *vaultTestDeps) running() {
	d.pause.EXPECT().IsPaused(gomock.Any()).Return(false, nil).AnyTimes()
}

func depositReq(account uuid.UUID, asset string, amount int64, period time.Duration) ports.DepositRequest {
	return ports.DepositRequest{
		Account:    account,
		Asset:      asset,
		LockPeriod: period,
		Amount:     amount,
		Authorization: domain.TransferAuthorization{
			Account: account,
			Asset:   asset,
			Amount:  amount,
			Nonce:   uuid.NewString(),
		},
	}
}

// seedDeposit performs a successful deposit through the service.
func seedDeposit(t *testing.T, d *vaultTestDeps, account uuid.UUID, asset string, amount int64, period time.Duration) {
	t.Helper()
	d.authz.EXPECT().Verify(gomock.Any(), gomock.Any(), account, asset, amount).Return(nil)
	d.transfers.EXPECT().PullInto(gomock.Any(), gomock.Any()).Return(nil)
	_, err := d.svc.Deposit(context.Background(), depositReq(account, asset, amount, period))
	require.NoError(t, err)
}

func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

// ==================== Deposit ====================

func TestVaultService_Deposit_CreatesAccount(t *testing.T) {
	d := setupVaultService(t)
	d.running()

	account := uuid.New()
	req := depositReq(account, "GOLD", 100, 24*time.Hour)

	d.authz.EXPECT().Verify(gomock.Any(), req.Authorization, account, "GOLD", int64(100)).Return(nil)
	d.transfers.EXPECT().PullInto(gomock.Any(), req.Authorization).Return(nil)

	result, err := d.svc.Deposit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(100), result.NewBalance)
	assert.True(t, result.Created)
	assert.Equal(t, testStart.Add(24*time.Hour), result.UnlockTime)

	created := d.events.ofType(domain.EventAccountCreated)
	require.Len(t, created, 1, "exactly one creation event on first deposit")
	assert.Equal(t, testStart, created[0].StartTime)

	deposited := d.events.ofType(domain.EventDeposited)
	require.Len(t, deposited, 1)
	assert.Equal(t, int64(100), deposited[0].NewBalance)
}

func TestVaultService_Deposit_InvalidAmount(t *testing.T) {
	d := setupVaultService(t)
	d.running()

	_, err := d.svc.Deposit(context.Background(), depositReq(uuid.New(), "GOLD", 0, time.Hour))
	assertAppError(t, err, "VLT_001")
	assert.Zero(t, d.events.count())
}

func TestVaultService_Deposit_InvalidAsset(t *testing.T) {
	d := setupVaultService(t)
	d.running()

	_, err := d.svc.Deposit(context.Background(), depositReq(uuid.New(), "", 100, time.Hour))
	assertAppError(t, err, "VLT_002")
}

func TestVaultService_Deposit_InvalidLockPeriodLeavesNoTrace(t *testing.T) {
	d := setupVaultService(t)
	d.running()

	account := uuid.New()
	req := depositReq(account, "GOLD", 100, 0)
	d.authz.EXPECT().Verify(gomock.Any(), gomock.Any(), account, "GOLD", int64(100)).Return(nil)

	_, err := d.svc.Deposit(context.Background(), req)
	assertAppError(t, err, "VLT_003")

	acct, err := d.repo.GetAccount(context.Background(), account)
	require.NoError(t, err)
	assert.Nil(t, acct, "failed deposit must not create the account")
	assert.Zero(t, d.events.count())
}

func TestVaultService_Deposit_Paused(t *testing.T) {
	d := setupVaultService(t)
	d.pause.EXPECT().IsPaused(gomock.Any()).Return(true, nil)

	_, err := d.svc.Deposit(context.Background(), depositReq(uuid.New(), "GOLD", 100, time.Hour))
	assertAppError(t, err, "VLT_007")
}

func TestVaultService_Deposit_Unauthorized(t *testing.T) {
	d := setupVaultService(t)
	d.running()

	account := uuid.New()
	d.authz.EXPECT().Verify(gomock.Any(), gomock.Any(), account, "GOLD", int64(100)).
		Return(apperror.ErrUnauthorized())

	_, err := d.svc.Deposit(context.Background(), depositReq(account, "GOLD", 100, time.Hour))
	assertAppError(t, err, "SEC_001")
}

func TestVaultService_Deposit_TransferFailureIsAtomic(t *testing.T) {
	d := setupVaultService(t)
	d.running()

	account := uuid.New()
	d.authz.EXPECT().Verify(gomock.Any(), gomock.Any(), account, "GOLD", int64(100)).Return(nil)
	d.transfers.EXPECT().PullInto(gomock.Any(), gomock.Any()).Return(errors.New("settlement refused"))

	_, err := d.svc.Deposit(context.Background(), depositReq(account, "GOLD", 100, time.Hour))
	assertAppError(t, err, "VLT_008")

	acct, err := d.repo.GetAccount(context.Background(), account)
	require.NoError(t, err)
	assert.Nil(t, acct, "account creation must roll back with the failed transfer")
	assert.Zero(t, d.events.count())
}

func TestVaultService_Deposit_Additive(t *testing.T) {
	d := setupVaultService(t)
	d.running()

	account := uuid.New()
	seedDeposit(t, d, account, "GOLD", 100, 24*time.Hour)

	d.authz.EXPECT().Verify(gomock.Any(), gomock.Any(), account, "GOLD", int64(50)).Return(nil)
	d.transfers.EXPECT().PullInto(gomock.Any(), gomock.Any()).Return(nil)

	result, err := d.svc.Deposit(context.Background(), depositReq(account, "GOLD", 50, 24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(150), result.NewBalance)
	assert.False(t, result.Created)

	deposited := d.events.ofType(domain.EventDeposited)
	require.Len(t, deposited, 2)
	assert.Equal(t, int64(150), deposited[1].NewBalance)

	balance, err := d.svc.BalanceOf(context.Background(), account, "GOLD")
	require.NoError(t, err)
	assert.Equal(t, int64(150), balance)
}

func TestVaultService_Deposit_NoRearmWhileHolding(t *testing.T) {
	d := setupVaultService(t)
	d.running()

	account := uuid.New()
	seedDeposit(t, d, account, "GOLD", 100, time.Hour)

	// Lock expired but a balance is still non-zero: no re-arm.
	d.clock.Advance(2 * time.Hour)
	d.authz.EXPECT().Verify(gomock.Any(), gomock.Any(), account, "SILVER", int64(10)).Return(nil)
	d.transfers.EXPECT().PullInto(gomock.Any(), gomock.Any()).Return(nil)

	result, err := d.svc.Deposit(context.Background(), depositReq(account, "SILVER", 10, 10*time.Hour))
	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.Equal(t, testStart.Add(time.Hour), result.UnlockTime, "lock window untouched")
	require.Len(t, d.events.ofType(domain.EventAccountCreated), 1)
}

func TestVaultService_Deposit_RearmWhenDrainedAndExpired(t *testing.T) {
	d := setupVaultService(t)
	d.running()

	account := uuid.New()
	seedDeposit(t, d, account, "GOLD", 100, time.Hour)

	d.clock.Advance(2 * time.Hour)
	d.transfers.EXPECT().PushOut(gomock.Any(), account, "GOLD", int64(100)).Return(true, nil)
	_, err := d.svc.WithdrawAll(context.Background(), account)
	require.NoError(t, err)

	d.clock.Advance(time.Hour)
	rearmTime := d.clock.Now()
	d.authz.EXPECT().Verify(gomock.Any(), gomock.Any(), account, "GOLD", int64(40)).Return(nil)
	d.transfers.EXPECT().PullInto(gomock.Any(), gomock.Any()).Return(nil)

	result, err := d.svc.Deposit(context.Background(), depositReq(account, "GOLD", 40, 30*time.Minute))
	require.NoError(t, err)
	assert.True(t, result.Created, "drained and expired account re-arms")
	assert.Equal(t, rearmTime.Add(30*time.Minute), result.UnlockTime)

	created := d.events.ofType(domain.EventAccountCreated)
	require.Len(t, created, 2)
	assert.Equal(t, rearmTime, created[1].StartTime)
}

func TestVaultService_Deposit_DrainedAssetNotReRegistered(t *testing.T) {
	d := setupVaultService(t)
	d.running()

	account := uuid.New()
	seedDeposit(t, d, account, "GOLD", 100, time.Hour)

	d.clock.Advance(2 * time.Hour)
	d.transfers.EXPECT().PushOut(gomock.Any(), account, "GOLD", int64(100)).Return(true, nil)
	_, err := d.svc.WithdrawAll(context.Background(), account)
	require.NoError(t, err)

	// Drained to zero but never removed: the registry entry persists and
	// a re-deposit must not duplicate it.
	d.authz.EXPECT().Verify(gomock.Any(), gomock.Any(), account, "GOLD", int64(5)).Return(nil)
	d.transfers.EXPECT().PullInto(gomock.Any(), gomock.Any()).Return(nil)
	_, err = d.svc.Deposit(context.Background(), depositReq(account, "GOLD", 5, time.Hour))
	require.NoError(t, err)

	assets, err := d.svc.ListAssets(context.Background(), account)
	require.NoError(t, err)
	assert.Equal(t, []string{"GOLD"}, assets)
}

// ==================== Queries ====================

func TestVaultService_BalanceOf_UnknownDefaultsToZero(t *testing.T) {
	d := setupVaultService(t)

	balance, err := d.svc.BalanceOf(context.Background(), uuid.New(), "GOLD")
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestVaultService_UnlockTime_NoAccount(t *testing.T) {
	d := setupVaultService(t)

	_, err := d.svc.UnlockTime(context.Background(), uuid.New())
	assertAppError(t, err, "VLT_004")
}

func TestVaultService_IsUnlocked_UnknownIsFalse(t *testing.T) {
	d := setupVaultService(t)

	unlocked, err := d.svc.IsUnlocked(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, unlocked)
}

func TestVaultService_IsUnlocked_Boundary(t *testing.T) {
	d := setupVaultService(t)
	d.running()

	account := uuid.New()
	seedDeposit(t, d, account, "GOLD", 10, time.Hour)

	unlocked, err := d.svc.IsUnlocked(context.Background(), account)
	require.NoError(t, err)
	assert.False(t, unlocked)

	d.clock.Advance(time.Hour)
	unlocked, err = d.svc.IsUnlocked(context.Background(), account)
	require.NoError(t, err)
	assert.True(t, unlocked, "unlock instant itself counts as unlocked")
}

func TestVaultService_ListBalances_ParallelSequences(t *testing.T) {
	d := setupVaultService(t)
	d.running()

	account := uuid.New()
	seedDeposit(t, d, account, "GOLD", 100, time.Hour)
	seedDeposit(t, d, account, "SILVER", 50, time.Hour)

	assets, amounts, err := d.svc.ListBalances(context.Background(), account)
	require.NoError(t, err)
	assert.Equal(t, []string{"GOLD", "SILVER"}, assets)
	assert.Equal(t, []int64{100, 50}, amounts)
}

func TestVaultService_ListAssets_UnknownAccountIsEmpty(t *testing.T) {
	d := setupVaultService(t)

	assets, err := d.svc.ListAssets(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, assets)
}
