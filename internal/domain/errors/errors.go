package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInvalidPrice         = errors.New("unit price must not be negative")
	ErrInvalidProduct       = errors.New("product id is required")
	ErrLineNotFound         = errors.New("cart line not found")
	ErrCartOverflow         = errors.New("cart quantity or total out of range")
	ErrInvalidCity          = errors.New("city is required")
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrAlreadyAuthenticated = errors.New("already authenticated")
	ErrAlreadyInitialized   = errors.New("session already initialized")
	ErrSuperseded           = errors.New("superseded by a later operation")
)

// AuthErrorKind classifies credential backend failures.
type AuthErrorKind string

const (
	AuthInvalidCredentials AuthErrorKind = "invalid_credentials"
	AuthNetwork            AuthErrorKind = "network"
	AuthMalformedSession   AuthErrorKind = "malformed_session"
	AuthRejected           AuthErrorKind = "rejected"
)

// AuthError is returned when sign-in or session checks fail.
type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("auth: %s", e.Kind)
	}
	return fmt.Sprintf("auth: %s: %v", e.Kind, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// NewAuthError wraps err with kind. Invalid credentials always unwrap to ErrInvalidCredentials.
func NewAuthError(kind AuthErrorKind, err error) *AuthError {
	if kind == AuthInvalidCredentials && err == nil {
		err = ErrInvalidCredentials
	}
	return &AuthError{Kind: kind, Err: err}
}

// ValidationError reports missing or invalid profile fields.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Add records a field problem and returns the receiver.
func (e *ValidationError) Add(field, problem string) *ValidationError {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = problem
	return e
}

// OrNil returns nil when no field was recorded.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// LocationErrorKind classifies geolocation failures.
type LocationErrorKind string

const (
	LocationPermissionDenied LocationErrorKind = "permission_denied"
	LocationTimeout          LocationErrorKind = "timeout"
	LocationUnavailable      LocationErrorKind = "unavailable"
)

// LocationError is returned when the current location cannot be resolved.
type LocationError struct {
	Kind LocationErrorKind
	Err  error
}

func (e *LocationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("location: %s", e.Kind)
	}
	return fmt.Sprintf("location: %s: %v", e.Kind, e.Err)
}

func (e *LocationError) Unwrap() error { return e.Err }

// StateError is returned when a store operation is rejected at the boundary.
type StateError struct {
	Op  string
	Err error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StateError) Unwrap() error { return e.Err }

// NewStateError builds a StateError for op.
func NewStateError(op string, err error) *StateError {
	return &StateError{Op: op, Err: err}
}
