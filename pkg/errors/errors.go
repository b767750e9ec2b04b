package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrPreconditionFailed = New("PRECONDITION_FAILED", http.StatusPreconditionFailed, "precondition failed")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")

	// Entitlement activation.
	ErrInvalidCode         = New("INVALID_CODE", http.StatusBadRequest, "invite code not recognised")
	ErrCodeAlreadyUsed     = New("CODE_ALREADY_USED", http.StatusConflict, "invite code already redeemed")
	ErrPaymentNotConfirmed = New("PAYMENT_NOT_CONFIRMED", http.StatusPaymentRequired, "payment not confirmed")
	ErrUpgradeRequired     = New("UPGRADE_REQUIRED", http.StatusPaymentRequired, "premium subscription required")

	// Progression and exam grading.
	ErrPillarLocked      = New("PILLAR_LOCKED", http.StatusForbidden, "pillar is locked")
	ErrInvalidTransition = New("INVALID_TRANSITION", http.StatusConflict, "action not allowed in the current exam step")
	ErrExamPending       = New("EXAM_PENDING", http.StatusConflict, "an exam submission is already pending review")
	ErrAlreadyGraded     = New("ALREADY_GRADED", http.StatusConflict, "exam submission already graded")
	ErrWrittenTooShort   = New("WRITTEN_TOO_SHORT", http.StatusBadRequest, "written answer below minimum length")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
