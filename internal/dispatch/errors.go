package dispatch

import (
	"errors"
	"fmt"

	"github.com/gokulstevee/appsync-rbac-lambda/internal/users"
)

// ErrorKind classifies a failed operation. It never reaches the wire body.
type ErrorKind string

const (
	KindNone             ErrorKind = ""
	KindAccessDenied     ErrorKind = "access_denied"
	KindUnauthenticated  ErrorKind = "unauthenticated"
	KindNotFound         ErrorKind = "not_found"
	KindBadRequest       ErrorKind = "bad_request"
	KindProvider         ErrorKind = "provider_error"
	KindStore            ErrorKind = "store_error"
	KindUnknownOperation ErrorKind = "unknown_operation"
	KindInternal         ErrorKind = "internal"
)

var (
	ErrUnknownOperation = errors.New("Unknown fieldName")
	ErrBadArguments     = errors.New("invalid arguments")
)

// PanicError carries a value recovered from a panicking operation. Its
// detail is logged but never returned to the caller.
type PanicError struct {
	Value interface{}
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// Kind classifies err using the errors returned by the user service.
func Kind(err error) ErrorKind {
	var (
		perr *users.ProviderError
		serr *users.StoreError
	)
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, users.ErrAccessDenied):
		return KindAccessDenied
	case errors.Is(err, users.ErrUnauthenticated):
		return KindUnauthenticated
	case errors.Is(err, users.ErrNotFound):
		return KindNotFound
	case errors.Is(err, users.ErrInvalidArgument), errors.Is(err, ErrBadArguments):
		return KindBadRequest
	case errors.Is(err, ErrUnknownOperation):
		return KindUnknownOperation
	case errors.As(err, &perr):
		return KindProvider
	case errors.As(err, &serr):
		return KindStore
	}
	return KindInternal
}
