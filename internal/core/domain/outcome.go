package domain

// OutcomeStatus classifies the result of one asset's transfer during a
// full withdrawal.
type OutcomeStatus string

const (
	OutcomeWithdrawn OutcomeStatus = "WITHDRAWN"
	OutcomeFailed    OutcomeStatus = "FAILED"
)

// WithdrawalOutcome is the per-asset result of a withdrawAll call. A FAILED
// outcome means the asset's balance was restored and remains claimable; it
// never aborts the other assets in the same call.
type WithdrawalOutcome struct {
	Asset  string        `json:"asset"`
	Amount int64         `json:"amount"`
	Status OutcomeStatus `json:"status"`
	Reason string        `json:"reason,omitempty"`
}
