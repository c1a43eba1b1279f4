package handler

import (
	"time"

	"timelock-vault/internal/adapter/http/dto"
	"timelock-vault/internal/core/ports"
	"timelock-vault/pkg/response"

	"github.com/gin-gonic/gin"
)

// QueryHandler handles the read-only account endpoints.
type QueryHandler struct {
	vaultSvc ports.VaultService
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(vaultSvc ports.VaultService) *QueryHandler {
	return &QueryHandler{vaultSvc: vaultSvc}
}

// BalanceOf handles GET /api/v1/accounts/:account/balances/:asset.
func (h *QueryHandler) BalanceOf(c *gin.Context) {
	account, ok := accountParam(c)
	if !ok {
		return
	}
	asset := c.Param("asset")

	balance, err := h.vaultSvc.BalanceOf(c.Request.Context(), account, asset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		Account: account.String(),
		Asset:   asset,
		Balance: balance,
	})
}

// UnlockTime handles GET /api/v1/accounts/:account/unlock-time.
func (h *QueryHandler) UnlockTime(c *gin.Context) {
	account, ok := accountParam(c)
	if !ok {
		return
	}

	unlockTime, err := h.vaultSvc.UnlockTime(c.Request.Context(), account)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.UnlockTimeResponse{
		Account:    account.String(),
		UnlockTime: unlockTime.UTC().Format(time.RFC3339),
	})
}

// Status handles GET /api/v1/accounts/:account/status.
func (h *QueryHandler) Status(c *gin.Context) {
	account, ok := accountParam(c)
	if !ok {
		return
	}

	unlocked, err := h.vaultSvc.IsUnlocked(c.Request.Context(), account)
	if err != nil {
		response.Error(c, err)
		return
	}

	status := dto.StatusResponse{
		Account:  account.String(),
		Unlocked: unlocked,
	}
	// Unknown accounts report locked with no unlock time.
	if unlockTime, err := h.vaultSvc.UnlockTime(c.Request.Context(), account); err == nil {
		status.UnlockTime = unlockTime.UTC().Format(time.RFC3339)
	}

	response.OK(c, status)
}

// ListAssets handles GET /api/v1/accounts/:account/assets.
func (h *QueryHandler) ListAssets(c *gin.Context) {
	account, ok := accountParam(c)
	if !ok {
		return
	}

	assets, err := h.vaultSvc.ListAssets(c.Request.Context(), account)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.AssetsResponse{
		Account: account.String(),
		Assets:  assets,
	})
}

// ListBalances handles GET /api/v1/accounts/:account/balances.
func (h *QueryHandler) ListBalances(c *gin.Context) {
	account, ok := accountParam(c)
	if !ok {
		return
	}

	assets, balances, err := h.vaultSvc.ListBalances(c.Request.Context(), account)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalancesResponse{
		Account:  account.String(),
		Assets:   assets,
		Balances: balances,
	})
}
