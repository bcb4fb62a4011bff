package apperr

import (
	"errors"
	"fmt"
)

// Stable error codes surfaced to callers. The UI layer translates these into
// messages; the core only guarantees the identifier and payload.
const (
	CodeInvalidInput         = "invalid_input"
	CodeBelowMinimumPrice    = "below_minimum_price"
	CodeInsufficientShares   = "insufficient_shares"
	CodeInvalidTransition    = "invalid_transition"
	CodeInvariantViolation   = "invariant_violation"
	CodeHasActiveInvestments = "has_active_investments"
	CodeNotFound             = "not_found"
	CodeForbidden            = "forbidden"
)

// Error is a typed application error with a stable code, an HTTP status and
// an optional details payload (remainder amounts, required minimums,
// investor counts).
type Error struct {
	Code    string
	Status  int
	Message string
	Details map[string]interface{}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithDetail returns a copy with the given detail attached.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	details := map[string]interface{}{}
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &Error{Code: e.Code, Status: e.Status, Message: e.Message, Details: details}
}

func newErr(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

func InvalidInput(message string) *Error {
	return newErr(CodeInvalidInput, 400, message)
}

func BelowMinimumPrice(price, minimum int64) *Error {
	e := newErr(CodeBelowMinimumPrice, 400, "Share price is below the platform minimum")
	return e.WithDetail("price", price).WithDetail("required_minimum", minimum)
}

func InsufficientShares(requested, available int64) *Error {
	e := newErr(CodeInsufficientShares, 409, "Not enough available shares")
	return e.WithDetail("requested", requested).WithDetail("available", available)
}

func InvalidTransition(from, to string) *Error {
	e := newErr(CodeInvalidTransition, 409, "Invalid state transition")
	return e.WithDetail("from", from).WithDetail("to", to)
}

func InvariantViolation(message string) *Error {
	return newErr(CodeInvariantViolation, 500, message)
}

func HasActiveInvestments(investorCount int64) *Error {
	e := newErr(CodeHasActiveInvestments, 409, "Proposal has active investments; deletion requires confirmation")
	return e.WithDetail("investor_count", investorCount)
}

func NotFound(what string) *Error {
	return newErr(CodeNotFound, 404, what+" not found")
}

func Forbidden(message string) *Error {
	return newErr(CodeForbidden, 403, message)
}

// As extracts an *Error from err, if it is one.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsCode reports whether err is an application error with the given code.
func IsCode(err error, code string) bool {
	if e, ok := As(err); ok {
		return e.Code == code
	}
	return false
}
