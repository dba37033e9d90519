package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindUnauthorized
	KindInvalidState
	KindQuotaExceeded
	KindInsufficientFunds
	KindValidation
	KindExternalFailure
)

var kindNames = map[Kind]string{
	KindUnknown:           "unknown",
	KindNotFound:          "not_found",
	KindUnauthorized:      "unauthorized",
	KindInvalidState:      "invalid_state",
	KindQuotaExceeded:     "quota_exceeded",
	KindInsufficientFunds: "insufficient_funds",
	KindValidation:        "validation_error",
	KindExternalFailure:   "external_failure",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// Error is a business error. Two errors match with errors.Is when their kinds match.
type Error struct {
	Kind      Kind
	Message   string
	Required  decimal.Decimal
	Available decimal.Decimal
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "not found"}
	ErrUnauthorized      = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrInvalidState      = &Error{Kind: KindInvalidState, Message: "invalid state"}
	ErrQuotaExceeded     = &Error{Kind: KindQuotaExceeded, Message: "quota exceeded"}
	ErrInsufficientFunds = &Error{Kind: KindInsufficientFunds, Message: "insufficient balance"}
	ErrValidation        = &Error{Kind: KindValidation, Message: "validation error"}
	ErrExternalFailure   = &Error{Kind: KindExternalFailure, Message: "external failure"}
)

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func NotFound(entity string, id int) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %d not found", entity, id)}
}

func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func InvalidState(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func QuotaExceeded(format string, args ...any) *Error {
	return &Error{Kind: KindQuotaExceeded, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func InsufficientFunds(required, available decimal.Decimal) *Error {
	return &Error{
		Kind:      KindInsufficientFunds,
		Message:   fmt.Sprintf("insufficient balance: required $%s, available $%s", required.StringFixed(2), available.StringFixed(2)),
		Required:  required,
		Available: available,
	}
}

func ExternalFailure(err error, format string, args ...any) *Error {
	return &Error{Kind: KindExternalFailure, Message: fmt.Sprintf(format, args...), Err: err}
}
