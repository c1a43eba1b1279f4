package service

import (
	"context"
	"time"

	"timelock-vault/internal/core/domain"
	"timelock-vault/internal/core/ports"
	"timelock-vault/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CapabilityVerifier implements ports.AuthorizationVerifier for HMAC-signed
// transfer authorizations. Pipeline: scope check -> deadline -> signature ->
// nonce consumption. The nonce burns at verification time, so a capability
// grants exactly one deposit attempt whatever the transfer outcome.
type CapabilityVerifier struct {
	secret     string
	nonceTTL   time.Duration
	sigSvc     ports.SignatureService
	nonceStore ports.NonceStore
	clock      ports.Clock
	log        zerolog.Logger
}

// NewCapabilityVerifier creates a new CapabilityVerifier.
func NewCapabilityVerifier(
	secret string,
	nonceTTL time.Duration,
	sigSvc ports.SignatureService,
	nonceStore ports.NonceStore,
	clock ports.Clock,
	log zerolog.Logger,
) *CapabilityVerifier {
	return &CapabilityVerifier{
		secret:     secret,
		nonceTTL:   nonceTTL,
		sigSvc:     sigSvc,
		nonceStore: nonceStore,
		clock:      clock,
		log:        log,
	}
}

// Verify validates the capability against the deposit it accompanies.
func (v *CapabilityVerifier) Verify(ctx context.Context, auth domain.TransferAuthorization, account uuid.UUID, asset string, amount int64) error {
	if !auth.Covers(account, asset, amount) {
		return apperror.ErrUnauthorized()
	}
	if auth.Nonce == "" || auth.Signature == "" {
		return apperror.ErrUnauthorized()
	}

	if auth.Expired(v.clock.Now()) {
		return apperror.ErrAuthorizationExpired()
	}

	if !v.sigSvc.Verify(v.secret, auth.CanonicalString(), auth.Signature) {
		return apperror.ErrUnauthorized()
	}

	fresh, err := v.nonceStore.CheckAndSet(ctx, account.String(), auth.Nonce, v.nonceTTL)
	if err != nil {
		v.log.Error().Err(err).Str("account", account.String()).Msg("nonce store unavailable, rejecting authorization")
		return apperror.InternalError(err)
	}
	if !fresh {
		return apperror.ErrAuthorizationReplayed()
	}

	return nil
}
