package dto

// AuthorizationDTO carries the signed transfer capability inside a deposit.
type AuthorizationDTO struct {
	Deadline  int64  `json:"deadline" binding:"required"` // Unix timestamp
	Nonce     string `json:"nonce" binding:"required,max=128"`
	Signature string `json:"signature" binding:"required,max=128"`
}

// DepositRequest is the request body for a deposit.
// Amount and lock period are validated by the service so that zero and
// negative values map to their ledger error codes, not a generic 400.
type DepositRequest struct {
	Account           string           `json:"account" binding:"required,uuid"`
	Asset             string           `json:"asset" binding:"omitempty,asset_code"`
	Amount            int64            `json:"amount"`
	LockPeriodSeconds int64            `json:"lock_period_seconds"`
	Authorization     AuthorizationDTO `json:"authorization" binding:"required"`
}

// DepositResponse is the response body for a successful deposit.
type DepositResponse struct {
	Account    string `json:"account"`
	Asset      string `json:"asset"`
	NewBalance int64  `json:"new_balance"`
	UnlockTime string `json:"unlock_time"` // RFC 3339
	Created    bool   `json:"created"`
}

// WithdrawalOutcomeResponse reports one asset's fate in a withdrawal.
type WithdrawalOutcomeResponse struct {
	Asset  string `json:"asset"`
	Amount int64  `json:"amount"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// WithdrawalResponse is the response body for a withdrawal.
type WithdrawalResponse struct {
	Account  string                      `json:"account"`
	Outcomes []WithdrawalOutcomeResponse `json:"outcomes"`
}

// RemoveAssetResponse is the response body for an asset removal.
type RemoveAssetResponse struct {
	Account         string `json:"account"`
	Asset           string `json:"asset"`
	ForfeitedAmount int64  `json:"forfeited_amount"`
}

// BalanceResponse is the response for a single-asset balance query.
type BalanceResponse struct {
	Account string `json:"account"`
	Asset   string `json:"asset"`
	Balance int64  `json:"balance"`
}

// UnlockTimeResponse is the response for an unlock-time query.
type UnlockTimeResponse struct {
	Account    string `json:"account"`
	UnlockTime string `json:"unlock_time"` // RFC 3339
}

// StatusResponse is the response for an account status query.
type StatusResponse struct {
	Account    string `json:"account"`
	Unlocked   bool   `json:"unlocked"`
	UnlockTime string `json:"unlock_time,omitempty"` // RFC 3339, empty when the account is unknown
}

// AssetsResponse is the response for an asset listing.
type AssetsResponse struct {
	Account string   `json:"account"`
	Assets  []string `json:"assets"`
}

// BalancesResponse returns every balance as parallel arrays, index-aligned
// with the registry order.
type BalancesResponse struct {
	Account  string   `json:"account"`
	Assets   []string `json:"assets"`
	Balances []int64  `json:"balances"`
}

// TokenRequest is the request body for operator login.
type TokenRequest struct {
	Key    string `json:"key" binding:"required,max=100"`
	Secret string `json:"secret" binding:"required,max=256"`
}

// TokenResponse is the response body for a successful operator login.
type TokenResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// PauseRequest is the request body for the pause switch.
type PauseRequest struct {
	Paused *bool `json:"paused" binding:"required"`
}

// PauseResponse is the response body after toggling the pause switch.
type PauseResponse struct {
	Paused bool `json:"paused"`
}

// EventResponse is a single ledger event in the admin event listing.
type EventResponse struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Account    string `json:"account"`
	Asset      string `json:"asset,omitempty"`
	Amount     int64  `json:"amount,omitempty"`
	NewBalance int64  `json:"new_balance,omitempty"`
	StartTime  string `json:"start_time,omitempty"`
	Reason     string `json:"reason,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

// EventListResponse wraps the admin event listing.
type EventListResponse struct {
	Items []EventResponse `json:"items"`
	Count int             `json:"count"`
}
