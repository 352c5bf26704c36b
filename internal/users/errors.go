package users

import "errors"

var (
	// ErrAccessDenied is returned by admin-only operations for non-admin callers.
	ErrAccessDenied = errors.New("access denied: admin only")
	// ErrUnauthenticated is returned when the caller carries no subject.
	ErrUnauthenticated = errors.New("caller identity missing")
	// ErrNotFound is returned when the referenced user record does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrInvalidArgument is returned for missing or malformed operation arguments.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ProviderError wraps a failed identity-provider call. Its message is the
// provider's own message.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string { return e.Err.Error() }
func (e *ProviderError) Unwrap() error { return e.Err }

// StoreError wraps a failed user-store call.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return "store " + e.Op + ": " + e.Err.Error() }
func (e *StoreError) Unwrap() error { return e.Err }
