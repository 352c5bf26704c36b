package identity

import (
	"context"
	"errors"
)

// Provider is the subset of user-pool administration the service relies on.
// Usernames are the users' email addresses.
type Provider interface {
	CreateUser(ctx context.Context, in CreateUserInput) error
	AddUserToGroup(ctx context.Context, username, group string) error
	RemoveUserFromGroup(ctx context.Context, username, group string) error
	GetUser(ctx context.Context, username string) (*Account, error)
	DeleteUser(ctx context.Context, username string) error
}

// CreateUserInput describes a new pool account. Email is marked verified.
type CreateUserInput struct {
	Username          string
	Email             string
	Name              string
	TemporaryPassword string
}

// Account is a pool account as reported by the provider.
type Account struct {
	Username string
	// Sub is the provider-assigned immutable identifier.
	Sub    string
	Email  string
	Name   string
	Status string
}

// ID returns the identifier used as the user record key.
func (a *Account) ID() string {
	if a.Sub != "" {
		return a.Sub
	}
	return a.Username
}

var (
	ErrUserExists    = errors.New("identity: user already exists")
	ErrUserNotFound  = errors.New("identity: user not found")
	ErrGroupNotFound = errors.New("identity: group not found")
	ErrThrottled     = errors.New("identity: request throttled")
)

// APIError carries the provider's own message while unwrapping to one of the
// sentinel errors above (or nil for unclassified failures).
type APIError struct {
	Op      string
	Code    string
	Message string
	Kind    error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Op + ": " + e.Code
}

func (e *APIError) Unwrap() error { return e.Kind }
