package service

import (
	"context"
	"fmt"

	"timelock-vault/internal/core/domain"
	"timelock-vault/pkg/apperror"

	"github.com/google/uuid"
)

// WithdrawAll drives the all-assets withdrawal state machine, terminal in
// one call:
//
//  1. Precondition: the account must exist and its lock must have elapsed.
//  2. Snapshot phase: read every registered balance, zero them all, and
//     COMMIT before any transfer is attempted. A reentrant call during a
//     transfer can no longer observe or drain a stale balance.
//  3. Transfer phase: push each non-zero snapshot amount out. A failure is
//     contained to its asset: the balance is restored in a compensating
//     write and reported, never raised. One blocklisting asset must not
//     trap the rest of the account.
func (s *VaultServiceImpl) WithdrawAll(ctx context.Context, account uuid.UUID) ([]domain.WithdrawalOutcome, error) {
	unlock := s.locker.Lock(account)
	defer unlock()

	if err := s.checkPaused(ctx); err != nil {
		return nil, err
	}
	now := s.clock.Now()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	acct, err := s.ledgerRepo.GetAccountForUpdate(ctx, dbTx, account)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock account: %w", err))
	}
	if acct == nil {
		return nil, apperror.ErrNoAccount()
	}
	if !acct.Unlocked(now) {
		return nil, apperror.ErrStillLocked()
	}

	snapshot := acct.ZeroAll()
	if err := s.ledgerRepo.ZeroBalances(ctx, dbTx, account); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("zero balances: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit snapshot: %w", err))
	}

	outcomes := make([]domain.WithdrawalOutcome, 0, len(snapshot))
	for _, entry := range snapshot {
		if entry.Amount == 0 {
			continue
		}

		accepted, err := s.transfers.PushOut(ctx, account, entry.Asset, entry.Amount)
		if err == nil && accepted {
			s.events.Emit(ctx, domain.NewWithdrawn(account, entry.Asset, entry.Amount, now))
			outcomes = append(outcomes, domain.WithdrawalOutcome{
				Asset:  entry.Asset,
				Amount: entry.Amount,
				Status: domain.OutcomeWithdrawn,
			})
			continue
		}

		reason := "transfer declined by settlement"
		if err != nil {
			reason = err.Error()
		}
		s.restoreBalance(ctx, account, entry.Asset, entry.Amount)
		s.events.Emit(ctx, domain.NewWithdrawFailed(account, entry.Asset, entry.Amount, reason, now))
		outcomes = append(outcomes, domain.WithdrawalOutcome{
			Asset:  entry.Asset,
			Amount: entry.Amount,
			Status: domain.OutcomeFailed,
			Reason: reason,
		})

		s.log.Warn().
			Str("account", account.String()).
			Str("asset", entry.Asset).
			Int64("amount", entry.Amount).
			Str("reason", reason).
			Msg("withdrawal transfer failed, balance restored")
	}

	s.log.Info().
		Str("account", account.String()).
		Int("assets", len(outcomes)).
		Msg("withdrawal completed")

	return outcomes, nil
}

// RemoveAsset is the emergency escape hatch: it drains and deregisters one
// asset without waiting for the lock and WITHOUT transferring the amount
// back. The forfeited amount is carried on the AssetRemoved event so
// operators can reconcile custody.
func (s *VaultServiceImpl) RemoveAsset(ctx context.Context, account uuid.UUID, asset string) (int64, error) {
	unlock := s.locker.Lock(account)
	defer unlock()

	if err := s.checkPaused(ctx); err != nil {
		return 0, err
	}
	now := s.clock.Now()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	acct, err := s.ledgerRepo.GetAccountForUpdate(ctx, dbTx, account)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("lock account: %w", err))
	}
	if acct == nil {
		return 0, apperror.ErrNoAccount()
	}
	if acct.Balance(asset) == 0 {
		// Only an asset still held can be removed.
		return 0, apperror.ErrNoBalance()
	}

	amount, position, moved, ok := acct.RemoveAsset(asset)
	if !ok {
		return 0, apperror.ErrNoBalance()
	}
	if err := s.ledgerRepo.RemoveAsset(ctx, dbTx, account, asset, moved, position); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("remove asset: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.events.Emit(ctx, domain.NewAssetRemoved(account, asset, amount, now))

	s.log.Info().
		Str("account", account.String()).
		Str("asset", asset).
		Int64("forfeited", amount).
		Msg("asset removed, custody forfeited")

	return amount, nil
}

// restoreBalance writes back a drained amount after a failed transfer-out.
// A restore failure is unrecoverable bookkeeping damage; it is logged loudly
// but does not abort the remaining assets.
func (s *VaultServiceImpl) restoreBalance(ctx context.Context, account uuid.UUID, asset string, amount int64) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		s.log.Error().Err(err).
			Str("account", account.String()).
			Str("asset", asset).
			Int64("amount", amount).
			Msg("CANNOT RESTORE BALANCE: begin tx failed")
		return
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.ledgerRepo.RestoreBalance(ctx, dbTx, account, asset, amount); err != nil {
		s.log.Error().Err(err).
			Str("account", account.String()).
			Str("asset", asset).
			Int64("amount", amount).
			Msg("CANNOT RESTORE BALANCE: write failed")
		return
	}
	if err := dbTx.Commit(ctx); err != nil {
		s.log.Error().Err(err).
			Str("account", account.String()).
			Str("asset", asset).
			Int64("amount", amount).
			Msg("CANNOT RESTORE BALANCE: commit failed")
	}
}
