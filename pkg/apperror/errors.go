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

// ---- Wallet Business Logic (WAL) ----

func ErrMissingIdempotencyKey() *AppError {
	return New("WAL_001", "Missing Idempotency-Key header", http.StatusBadRequest)
}

func ErrReservedUser() *AppError {
	return New("WAL_002", "SYSTEM_TREASURY is reserved", http.StatusBadRequest)
}

func ErrInsufficientFunds() *AppError {
	return New("WAL_003", "Insufficient funds", http.StatusBadRequest)
}

func ErrAssetNotFound() *AppError {
	return New("WAL_004", "Asset type not found", http.StatusNotFound)
}

func ErrWalletNotFound() *AppError {
	return New("WAL_005", "Wallet not found for user/asset", http.StatusNotFound)
}

func ErrIdempotencyConflict() *AppError {
	return New("WAL_006", "Idempotency-Key already used with a different request", http.StatusConflict)
}

// Validation returns a 422 for malformed or out-of-range payload input.
func Validation(message string) *AppError {
	return New("WAL_007", message, http.StatusUnprocessableEntity)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// ErrLockTimeout signals a row-lock wait timeout. Retryable: the idempotency
// contract makes a client retry safe.
func ErrLockTimeout(err error) *AppError {
	return Wrap("SYS_002", "Lock acquisition timeout, retry the request", http.StatusServiceUnavailable, err)
}
