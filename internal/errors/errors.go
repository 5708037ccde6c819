package errors

import (
	"errors"
	"fmt"
)

// Kind identifies an error category that callers can render or map to a status code.
type Kind string

const (
	KindValidation         Kind = "VALIDATION_ERROR"
	KindNotFound           Kind = "NOT_FOUND"
	KindConflict           Kind = "CONFLICT"
	KindInvalidTransition  Kind = "INVALID_TRANSITION"
	KindExpired            Kind = "PROMO_EXPIRED"
	KindInactive           Kind = "PROMO_INACTIVE"
	KindUsageLimit         Kind = "PROMO_USAGE_LIMIT"
	KindMinimumNotMet      Kind = "PROMO_MINIMUM_NOT_MET"
	KindInsufficientPoints Kind = "INSUFFICIENT_POINTS"
	KindDuplicateReview    Kind = "DUPLICATE_REVIEW"
	KindNotEligible        Kind = "NOT_ELIGIBLE"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindForbidden          Kind = "FORBIDDEN"
	KindRateLimited        Kind = "RATE_LIMITED"
	KindInternal           Kind = "INTERNAL"
)

// AppError is the error type returned by the service layer.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError of the same kind. A target with a
// message must match the message as well.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// Sentinels for errors.Is checks.
var (
	ErrValidation         = &AppError{Kind: KindValidation}
	ErrNotFound           = &AppError{Kind: KindNotFound}
	ErrConflict           = &AppError{Kind: KindConflict}
	ErrInvalidTransition  = &AppError{Kind: KindInvalidTransition}
	ErrExpired            = &AppError{Kind: KindExpired}
	ErrInactive           = &AppError{Kind: KindInactive}
	ErrUsageLimit         = &AppError{Kind: KindUsageLimit}
	ErrMinimumNotMet      = &AppError{Kind: KindMinimumNotMet}
	ErrInsufficientPoints = &AppError{Kind: KindInsufficientPoints}
	ErrDuplicateReview    = &AppError{Kind: KindDuplicateReview}
	ErrNotEligible        = &AppError{Kind: KindNotEligible}
	ErrUnauthorized       = &AppError{Kind: KindUnauthorized, Message: "user is not authorized"}
	ErrForbidden          = &AppError{Kind: KindForbidden, Message: "operation is forbidden for user"}
)

func New(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func Validation(format string, args ...any) *AppError {
	return New(KindValidation, fmt.Sprintf(format, args...), nil)
}

func NotFound(entity string, id any) *AppError {
	return New(KindNotFound, fmt.Sprintf("%s %v not found", entity, id), nil)
}

func Conflict(format string, args ...any) *AppError {
	return New(KindConflict, fmt.Sprintf(format, args...), nil)
}

func InvalidTransition(from, to string) *AppError {
	return New(KindInvalidTransition, fmt.Sprintf("cannot transition booking from %s to %s", from, to), nil)
}

func InsufficientPoints(requested, available int64) *AppError {
	return New(KindInsufficientPoints, fmt.Sprintf("requested %d points but only %d available", requested, available), nil)
}

func NotEligible(format string, args ...any) *AppError {
	return New(KindNotEligible, fmt.Sprintf(format, args...), nil)
}

// KindOf returns the kind of the first AppError in the chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// GetAppError returns the first AppError in the chain, if any.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
