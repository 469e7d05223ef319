package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"not found", ErrNotFound},
		{"invalid credentials", ErrInvalidCredentials},
		{"invalid quantity", ErrInvalidQuantity},
		{"invalid price", ErrInvalidPrice},
		{"invalid product", ErrInvalidProduct},
		{"line not found", ErrLineNotFound},
		{"invalid city", ErrInvalidCity},
		{"not authenticated", ErrNotAuthenticated},
		{"already authenticated", ErrAlreadyAuthenticated},
		{"already initialized", ErrAlreadyInitialized},
		{"superseded", ErrSuperseded},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !stdErrors.Is(tc.err, tc.err) {
				t.Fatalf("expected error to match itself: %v", tc.err)
			}
		})
	}
}

func TestAuthErrorUnwrapsInvalidCredentials(t *testing.T) {
	err := fmt.Errorf("sign in: %w", NewAuthError(AuthInvalidCredentials, nil))
	if !stdErrors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	var authErr *AuthError
	if !stdErrors.As(err, &authErr) || authErr.Kind != AuthInvalidCredentials {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestValidationErrorFields(t *testing.T) {
	var v ValidationError
	if v.OrNil() != nil {
		t.Fatal("expected nil for empty validation error")
	}
	v.Add("phone", "required").Add("name", "required")
	err := v.OrNil()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if err.Error() != "validation failed: name: required, phone: required" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestStateErrorWrapsSentinel(t *testing.T) {
	err := NewStateError("cart.add", ErrInvalidQuantity)
	if !stdErrors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected wrapped sentinel")
	}
	if err.Error() != "cart.add: quantity must be positive" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestLocationErrorMessage(t *testing.T) {
	err := &LocationError{Kind: LocationTimeout}
	if err.Error() != "location: timeout" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	wrapped := &LocationError{Kind: LocationUnavailable, Err: stdErrors.New("boom")}
	if !stdErrors.Is(wrapped, wrapped.Err) {
		t.Fatalf("expected unwrap to reach cause")
	}
}
