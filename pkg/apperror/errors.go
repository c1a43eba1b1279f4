package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Vault Business Logic (VLT) ----

func ErrInvalidAmount() *AppError {
	return New("VLT_001", "Deposit amount must be positive", http.StatusBadRequest)
}

func ErrInvalidAsset() *AppError {
	return New("VLT_002", "Asset identifier must not be empty", http.StatusBadRequest)
}

func ErrInvalidLockPeriod() *AppError {
	return New("VLT_003", "Lock period must be positive when arming an account", http.StatusBadRequest)
}

func ErrNoAccount() *AppError {
	return New("VLT_004", "Account has no vault entry", http.StatusNotFound)
}

func ErrStillLocked() *AppError {
	return New("VLT_005", "Account lock period has not elapsed", http.StatusConflict)
}

func ErrNoBalance() *AppError {
	return New("VLT_006", "Asset has no balance to remove", http.StatusConflict)
}

func ErrSystemPaused() *AppError {
	return New("VLT_007", "Vault operations are paused", http.StatusServiceUnavailable)
}

func ErrTransferFailed(err error) *AppError {
	return Wrap("VLT_008", "Asset transfer failed", http.StatusBadGateway, err)
}

// ---- Authorization & Authentication (SEC) ----

func ErrUnauthorized() *AppError {
	return New("SEC_001", "Transfer authorization rejected", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("SEC_002", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrAuthorizationExpired() *AppError {
	return New("SEC_003", "Transfer authorization deadline has passed", http.StatusForbidden)
}

func ErrAuthorizationReplayed() *AppError {
	return New("SEC_004", "Transfer authorization has already been used", http.StatusForbidden)
}

func ErrInvalidCredentials() *AppError {
	return New("SEC_005", "Invalid operator credentials", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error with a custom message.
func Validation(message string) *AppError {
	return New("VLT_000", message, http.StatusBadRequest)
}
