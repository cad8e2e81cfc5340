package errors

import (
	"errors"
	"fmt"
)

// Error types for different failure classes
type ErrorType string

const (
	ErrorTypeValidation        ErrorType = "validation"
	ErrorTypePrecondition      ErrorType = "precondition"
	ErrorTypeInsufficientFunds ErrorType = "insufficient_funds"
	ErrorTypeNotFound          ErrorType = "not_found"
	ErrorTypeConflict          ErrorType = "conflict"
	ErrorTypeAborted           ErrorType = "aborted"
	ErrorTypeInternal          ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type      ErrorType              `json:"type"`
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Cause     error                  `json:"-"`
	Retryable bool                   `json:"retryable"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// Error constructors
func NewValidationError(code, message string) *AppError {
	return &AppError{
		Type:      ErrorTypeValidation,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// NewPreconditionError reports a rejected action: actor jailed, cooldown
// active, target ineligible. No state is mutated when one is returned.
func NewPreconditionError(code, message string) *AppError {
	return &AppError{
		Type:      ErrorTypePrecondition,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

func NewInsufficientFundsError(message string) *AppError {
	return &AppError{
		Type:      ErrorTypeInsufficientFunds,
		Code:      "INSUFFICIENT_FUNDS",
		Message:   message,
		Retryable: false,
	}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:      ErrorTypeNotFound,
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("%s not found", resource),
		Retryable: false,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Type:      ErrorTypeConflict,
		Code:      "CONFLICT",
		Message:   message,
		Retryable: false,
	}
}

// NewAbortedError marks an attempt abandoned mid-resolution. Nothing from
// the attempt is committed after one is returned.
func NewAbortedError(message string) *AppError {
	return &AppError{
		Type:      ErrorTypeAborted,
		Code:      "ATTEMPT_ABORTED",
		Message:   message,
		Retryable: true,
	}
}

func NewInternalError(message string) *AppError {
	return &AppError{
		Type:      ErrorTypeInternal,
		Code:      "INTERNAL_ERROR",
		Message:   message,
		Retryable: true,
	}
}

// Predefined common errors
var (
	ErrInsufficientFunds = NewInsufficientFundsError("insufficient funds")
	ErrActorJailed       = NewPreconditionError("ACTOR_JAILED", "actor is in jail")
	ErrCooldownActive    = NewPreconditionError("COOLDOWN_ACTIVE", "crime cooldown has not expired")
	ErrNotJailed         = NewPreconditionError("NOT_JAILED", "actor is not in jail")
	ErrJailbreakUsed     = NewPreconditionError("JAILBREAK_USED", "already attempted a jailbreak this sentence")
	ErrCrimeDisabled     = NewValidationError("CRIME_DISABLED", "crime type is disabled")
	ErrUnknownCrime      = NewValidationError("UNKNOWN_CRIME", "unknown crime type")
	ErrBailDisabled      = NewPreconditionError("BAIL_DISABLED", "bail is disabled in this guild")
)

// Wrap wraps an error with a message using fmt.Errorf with %w
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsType checks if an error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// IsPrecondition reports whether err is a precondition rejection.
func IsPrecondition(err error) bool {
	return IsType(err, ErrorTypePrecondition)
}

// IsValidation reports whether err is a validation rejection.
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsInsufficientFunds reports whether err is a funds shortfall.
func IsInsufficientFunds(err error) bool {
	return IsType(err, ErrorTypeInsufficientFunds)
}
