package domain

import (
	"errors"
	"fmt"
)

// Business-rule sentinels. Anything that does not match one of these is
// treated as an infrastructure failure by the persistence layer.
var (
	ErrNotFound              = errors.New("not found")
	ErrValidation            = errors.New("validation failed")
	ErrDuplicateRegistration = errors.New("duplicate vehicle registration")
	ErrHasDependents         = errors.New("entity has dependents")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrForbidden             = errors.New("forbidden")
	ErrInvalidCredentials    = errors.New("invalid credentials")
)

var ruleSentinels = []error{
	ErrNotFound,
	ErrValidation,
	ErrDuplicateRegistration,
	ErrHasDependents,
	ErrInvalidTransition,
	ErrForbidden,
	ErrInvalidCredentials,
}

// RuleError carries a human-readable message for a business-rule failure.
type RuleError struct {
	Kind    error
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

func (e *RuleError) Unwrap() error {
	return e.Kind
}

// NewRuleError builds a RuleError of the given kind.
func NewRuleError(kind error, format string, args ...any) *RuleError {
	return &RuleError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsBusinessError reports whether err is a business-rule failure rather
// than an infrastructure fault.
func IsBusinessError(err error) bool {
	if err == nil {
		return false
	}
	for _, sentinel := range ruleSentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// DuplicateRegistration reports a vehicle registration that already exists.
func DuplicateRegistration(regNumber string) error {
	return NewRuleError(ErrDuplicateRegistration, "Vehicle with registration %s already exists.", regNumber)
}

// NotFound reports a missing entity.
func NotFound(entity string, id any) error {
	return NewRuleError(ErrNotFound, "%s %v not found", entity, id)
}

// Invalid reports a payload validation failure.
func Invalid(format string, args ...any) error {
	return NewRuleError(ErrValidation, format, args...)
}
