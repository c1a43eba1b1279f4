package handler

import (
	"time"

	"timelock-vault/internal/adapter/http/dto"
	"timelock-vault/internal/core/domain"
	"timelock-vault/internal/core/ports"
	"timelock-vault/pkg/apperror"
	"timelock-vault/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// VaultHandler handles the state-mutating vault endpoints.
type VaultHandler struct {
	vaultSvc ports.VaultService
}

// NewVaultHandler creates a new VaultHandler.
func NewVaultHandler(vaultSvc ports.VaultService) *VaultHandler {
	return &VaultHandler{vaultSvc: vaultSvc}
}

// accountParam parses the :account path parameter.
func accountParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("account"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid account id"))
		return uuid.Nil, false
	}
	return id, true
}

// Deposit handles POST /api/v1/deposits.
func (h *VaultHandler) Deposit(c *gin.Context) {
	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	account, err := uuid.Parse(req.Account)
	if err != nil {
		response.Error(c, apperror.Validation("invalid account id"))
		return
	}

	result, err := h.vaultSvc.Deposit(c.Request.Context(), ports.DepositRequest{
		Account:    account,
		Asset:      req.Asset,
		LockPeriod: time.Duration(req.LockPeriodSeconds) * time.Second,
		Amount:     req.Amount,
		Authorization: domain.TransferAuthorization{
			Account:   account,
			Asset:     req.Asset,
			Amount:    req.Amount,
			Deadline:  time.Unix(req.Authorization.Deadline, 0).UTC(),
			Nonce:     req.Authorization.Nonce,
			Signature: req.Authorization.Signature,
		},
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.DepositResponse{
		Account:    account.String(),
		Asset:      req.Asset,
		NewBalance: result.NewBalance,
		UnlockTime: result.UnlockTime.UTC().Format(time.RFC3339),
		Created:    result.Created,
	})
}

// WithdrawAll handles POST /api/v1/accounts/:account/withdrawals.
func (h *VaultHandler) WithdrawAll(c *gin.Context) {
	account, ok := accountParam(c)
	if !ok {
		return
	}

	outcomes, err := h.vaultSvc.WithdrawAll(c.Request.Context(), account)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.WithdrawalOutcomeResponse, 0, len(outcomes))
	for _, o := range outcomes {
		items = append(items, dto.WithdrawalOutcomeResponse{
			Asset:  o.Asset,
			Amount: o.Amount,
			Status: string(o.Status),
			Reason: o.Reason,
		})
	}

	response.OK(c, dto.WithdrawalResponse{
		Account:  account.String(),
		Outcomes: items,
	})
}

// RemoveAsset handles DELETE /api/v1/accounts/:account/assets/:asset.
func (h *VaultHandler) RemoveAsset(c *gin.Context) {
	account, ok := accountParam(c)
	if !ok {
		return
	}
	asset := c.Param("asset")

	forfeited, err := h.vaultSvc.RemoveAsset(c.Request.Context(), account, asset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.RemoveAssetResponse{
		Account:         account.String(),
		Asset:           asset,
		ForfeitedAmount: forfeited,
	})
}
