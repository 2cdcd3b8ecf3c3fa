package types

import (
	"errors"
	"fmt"
)

// Table operation errors.
var (
	ErrNotFound    = errors.New("entity not found")
	ErrInvalidID   = errors.New("invalid entity ID")
	ErrInvalidData = errors.New("invalid entity data")
	ErrInvalidName = errors.New("invalid name")
)

// Pane and layout errors.
var (
	ErrRegistration        = errors.New("pane registration failed")
	ErrDuplicatePane       = errors.New("pane type already registered")
	ErrInvalidIdentifier   = errors.New("invalid pane identifier")
	ErrUnknownPane         = errors.New("unknown pane type")
	ErrFieldNotFound       = errors.New("field not found")
	ErrTypeMismatch        = errors.New("type mismatch")
	ErrOutOfRange          = errors.New("value out of range")
	ErrConstraintViolation = errors.New("layout constraint violated")
	ErrMediaRejected       = errors.New("media rejected by input")
)

// RegistrationError reports a pane type whose fields do not match its data
// schema. Only the offending registration fails; the registry is unchanged.
type RegistrationError struct {
	Identifier string
	DataKey    string
	Reason     string
	Err        error
}

func (e *RegistrationError) Error() string {
	if e.DataKey == "" {
		return fmt.Sprintf("register pane %s: %s", e.Identifier, e.Reason)
	}
	return fmt.Sprintf("register pane %s: field %q: %s", e.Identifier, e.DataKey, e.Reason)
}

// Unwrap returns ErrRegistration and, when set, the specific cause.
func (e *RegistrationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRegistration}
	}
	return []error{ErrRegistration, e.Err}
}

// ValidationError reports stored or about-to-be-stored data that fails
// structural or schema checks. Table and ID locate the row when known.
type ValidationError struct {
	Table  string
	ID     string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	msg := e.Reason
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	if e.ID != "" {
		return fmt.Sprintf("%s %s: %s", e.Table, e.ID, msg)
	}
	if e.Table != "" {
		return fmt.Sprintf("%s: %s", e.Table, msg)
	}
	return msg
}

// Unwrap returns both the sentinel and the underlying cause so that
// errors.Is matches ErrInvalidData as well as the cause.
func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidData}
	}
	return []error{ErrInvalidData, e.Err}
}

// ConstraintError reports a placement or grid resize that violates the
// layout invariants. The rejected request left state unchanged.
type ConstraintError struct {
	Op     string
	Reason string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *ConstraintError) Unwrap() error { return ErrConstraintViolation }
