package service

import (
	"context"
	"crypto/subtle"
	"time"

	"timelock-vault/config"
	"timelock-vault/internal/core/ports"
	"timelock-vault/pkg/apperror"

	"github.com/rs/zerolog"
)

// OperatorAuthService implements ports.AuthService against the statically
// configured operator credentials. There is no operator registry: the admin
// surface has exactly one principal, defined in config.
type OperatorAuthService struct {
	cfg      config.OperatorConfig
	hashSvc  ports.HashService
	tokenSvc ports.TokenService
	log      zerolog.Logger
}

// NewOperatorAuthService creates a new OperatorAuthService.
func NewOperatorAuthService(
	cfg config.OperatorConfig,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	log zerolog.Logger,
) *OperatorAuthService {
	return &OperatorAuthService{
		cfg:      cfg,
		hashSvc:  hashSvc,
		tokenSvc: tokenSvc,
		log:      log,
	}
}

// Login verifies the operator key and secret and issues a JWT.
func (s *OperatorAuthService) Login(ctx context.Context, key, secret string) (string, time.Time, error) {
	if s.cfg.Key == "" || s.cfg.SecretHash == "" {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}
	if subtle.ConstantTimeCompare([]byte(key), []byte(s.cfg.Key)) != 1 {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	ok, err := s.hashSvc.Verify(secret, s.cfg.SecretHash)
	if err != nil {
		s.log.Error().Err(err).Msg("operator secret hash is unparseable")
		return "", time.Time{}, apperror.InternalError(err)
	}
	if !ok {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	token, expiry, err := s.tokenSvc.Generate(key)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(err)
	}

	s.log.Info().Str("operator", key).Msg("operator logged in")
	return token, expiry, nil
}
