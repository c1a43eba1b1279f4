package service

import (
	"context"
	"fmt"
	"time"

	"timelock-vault/internal/core/domain"
	"timelock-vault/internal/core/ports"
	"timelock-vault/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// VaultServiceImpl implements ports.VaultService: the per-account
// multi-asset time-locked custody ledger.
//
// Serialization is layered: an in-process per-account mutex held for the
// full duration of every state-mutating call, plus SELECT ... FOR UPDATE
// row locks inside the database transaction. The external transfer call is
// the only suspending step and always happens under both.
type VaultServiceImpl struct {
	ledgerRepo ports.LedgerRepository
	transactor ports.DBTransactor
	transfers  ports.TransferPort
	authz      ports.AuthorizationVerifier
	pause      ports.PauseSwitch
	events     ports.EventSink
	clock      ports.Clock
	locker     *AccountLocker
	log        zerolog.Logger
}

// NewVaultService creates a new VaultServiceImpl.
func NewVaultService(
	ledgerRepo ports.LedgerRepository,
	transactor ports.DBTransactor,
	transfers ports.TransferPort,
	authz ports.AuthorizationVerifier,
	pause ports.PauseSwitch,
	events ports.EventSink,
	clock ports.Clock,
	log zerolog.Logger,
) *VaultServiceImpl {
	return &VaultServiceImpl{
		ledgerRepo: ledgerRepo,
		transactor: transactor,
		transfers:  transfers,
		authz:      authz,
		pause:      pause,
		events:     events,
		clock:      clock,
		locker:     NewAccountLocker(),
		log:        log,
	}
}

// Deposit pulls quantity of an asset into custody under the account's lock.
// The first deposit creates the account's vault entry; a deposit into a
// fully drained and expired entry re-arms the lock. All state mutations
// commit atomically with the transfer: a failed pull leaves no trace.
func (s *VaultServiceImpl) Deposit(ctx context.Context, req ports.DepositRequest) (*ports.DepositResult, error) {
	unlock := s.locker.Lock(req.Account)
	defer unlock()

	if err := s.checkPaused(ctx); err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.Asset == "" {
		return nil, apperror.ErrInvalidAsset()
	}

	// The current time is read once and holds for the whole operation.
	now := s.clock.Now()

	if err := s.authz.Verify(ctx, req.Authorization, req.Account, req.Asset, req.Amount); err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	acct, err := s.ledgerRepo.GetAccountForUpdate(ctx, dbTx, req.Account)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock account: %w", err))
	}

	var armed bool
	switch {
	case acct == nil:
		if req.LockPeriod <= 0 {
			return nil, apperror.ErrInvalidLockPeriod()
		}
		acct = domain.NewAccount(req.Account, now, req.LockPeriod)
		if err := s.ledgerRepo.CreateAccount(ctx, dbTx, acct); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create account: %w", err))
		}
		armed = true
	case acct.AllBalancesZero() && acct.Unlocked(now):
		// Fully drained and expired: this deposit starts a new lock cycle.
		if req.LockPeriod <= 0 {
			return nil, apperror.ErrInvalidLockPeriod()
		}
		acct.Rearm(now, req.LockPeriod)
		if err := s.ledgerRepo.UpdateLock(ctx, dbTx, acct.ID, acct.CreatedAt, acct.LockPeriod); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("re-arm lock: %w", err))
		}
		armed = true
	}

	acct.RegisterAsset(req.Asset)
	newBalance := acct.Credit(req.Asset, req.Amount)

	// One attempt, inside the open transaction: a failed pull rolls back
	// every mutation above.
	if err := s.transfers.PullInto(ctx, req.Authorization); err != nil {
		s.log.Warn().Err(err).
			Str("account", req.Account.String()).
			Str("asset", req.Asset).
			Int64("amount", req.Amount).
			Msg("deposit transfer failed")
		return nil, apperror.ErrTransferFailed(err)
	}

	position := acct.Registry().Position(req.Asset)
	if err := s.ledgerRepo.UpsertBalance(ctx, dbTx, acct.ID, req.Asset, position, newBalance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("write balance: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	if armed {
		s.events.Emit(ctx, domain.NewAccountCreated(acct.ID, now))
	}
	s.events.Emit(ctx, domain.NewDeposited(acct.ID, req.Asset, req.Amount, newBalance, now))

	s.log.Info().
		Str("account", acct.ID.String()).
		Str("asset", req.Asset).
		Int64("amount", req.Amount).
		Int64("new_balance", newBalance).
		Bool("armed", armed).
		Msg("deposit accepted")

	return &ports.DepositResult{
		NewBalance: newBalance,
		UnlockTime: acct.UnlockTime(),
		Created:    armed,
	}, nil
}

// BalanceOf returns the held quantity, 0 for unknown account/asset pairs.
func (s *VaultServiceImpl) BalanceOf(ctx context.Context, account uuid.UUID, asset string) (int64, error) {
	acct, err := s.ledgerRepo.GetAccount(ctx, account)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if acct == nil {
		return 0, nil
	}
	return acct.Balance(asset), nil
}

// UnlockTime returns when the account's lock elapses.
func (s *VaultServiceImpl) UnlockTime(ctx context.Context, account uuid.UUID) (time.Time, error) {
	acct, err := s.ledgerRepo.GetAccount(ctx, account)
	if err != nil {
		return time.Time{}, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if acct == nil {
		return time.Time{}, apperror.ErrNoAccount()
	}
	return acct.UnlockTime(), nil
}

// IsUnlocked reports whether the lock has elapsed; false for unknown accounts.
func (s *VaultServiceImpl) IsUnlocked(ctx context.Context, account uuid.UUID) (bool, error) {
	acct, err := s.ledgerRepo.GetAccount(ctx, account)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if acct == nil {
		return false, nil
	}
	return acct.Unlocked(s.clock.Now()), nil
}

// ListAssets returns the registered asset identifiers in enumeration order.
func (s *VaultServiceImpl) ListAssets(ctx context.Context, account uuid.UUID) ([]string, error) {
	acct, err := s.ledgerRepo.GetAccount(ctx, account)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if acct == nil {
		return []string{}, nil
	}
	return acct.Assets(), nil
}

// ListBalances returns parallel asset/amount sequences in the same order.
func (s *VaultServiceImpl) ListBalances(ctx context.Context, account uuid.UUID) ([]string, []int64, error) {
	acct, err := s.ledgerRepo.GetAccount(ctx, account)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if acct == nil {
		return []string{}, []int64{}, nil
	}

	holdings := acct.Holdings()
	assets := make([]string, len(holdings))
	amounts := make([]int64, len(holdings))
	for i, h := range holdings {
		assets[i] = h.Asset
		amounts[i] = h.Amount
	}
	return assets, amounts, nil
}

// checkPaused fails fast when the administrative toggle is off.
func (s *VaultServiceImpl) checkPaused(ctx context.Context) error {
	paused, err := s.pause.IsPaused(ctx)
	if err != nil {
		// Custody safety: an unreadable switch blocks mutations.
		return apperror.InternalError(fmt.Errorf("read pause switch: %w", err))
	}
	if paused {
		return apperror.ErrSystemPaused()
	}
	return nil
}
