package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gokulstevee/appsync-rbac-lambda/internal/models"
	"github.com/gokulstevee/appsync-rbac-lambda/internal/users"
	"github.com/gokulstevee/appsync-rbac-lambda/pkg/logger"
	"github.com/gokulstevee/appsync-rbac-lambda/pkg/metrics"
)

// Operation names, matching the GraphQL field names.
const (
	OpRegisterUser   = "registerUser"
	OpListUsers      = "listUsers"
	OpUpdateUserRole = "updateUserRole"
	OpMe             = "me"
)

const fallbackMessage = "Internal server error"

// Invocation is one resolver call, shaped like an AppSync direct Lambda
// resolver event.
type Invocation struct {
	Info      Info             `json:"info"`
	Arguments json.RawMessage  `json:"arguments,omitempty"`
	Identity  *models.Identity `json:"identity,omitempty"`
}

type Info struct {
	FieldName string `json:"fieldName"`
}

// Result is either an operation value or an error message. Only one of the
// two is ever serialised.
type Result struct {
	Value interface{}
	Error string
	Kind  ErrorKind
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool { return r.Kind == KindNone }

// Body returns what the caller receives: the value, or {"error": message}.
func (r Result) Body() interface{} {
	if r.OK() {
		return r.Value
	}
	return map[string]string{"error": r.Error}
}

func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Body())
}

// Dispatcher routes invocations to the user service.
type Dispatcher struct {
	svc *users.Service
	now func() time.Time
}

func New(svc *users.Service) *Dispatcher {
	return &Dispatcher{svc: svc, now: time.Now}
}

// Dispatch runs the named operation. It never returns a Go error: failures
// are logged here, once, and folded into the Result.
func (d *Dispatcher) Dispatch(ctx context.Context, inv Invocation) Result {
	op := inv.Info.FieldName
	start := d.now()
	value, err := d.route(ctx, op, inv)

	label := op
	if Kind(err) == KindUnknownOperation {
		label = "unknown"
	}
	metrics.OperationDuration.WithLabelValues(label).Observe(d.now().Sub(start).Seconds())

	if err == nil {
		metrics.OperationsTotal.WithLabelValues(label, "ok").Inc()
		return Result{Value: value}
	}

	kind := Kind(err)
	metrics.OperationsTotal.WithLabelValues(label, string(kind)).Inc()
	logger.WithFields(logger.Fields{
		"request_id": uuid.NewString(),
		"operation":  op,
		"caller":     callerSub(inv.Identity),
		"kind":       kind,
	}).Errorf("handler error: %v", err)
	return Result{Error: errorMessage(err), Kind: kind}
}

func (d *Dispatcher) route(ctx context.Context, op string, inv Invocation) (value interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			value, err = nil, &PanicError{Value: r}
		}
	}()

	switch op {
	case OpRegisterUser:
		var in users.RegisterInput
		if err := decodeArgs(inv.Arguments, &in); err != nil {
			return nil, err
		}
		if err := d.svc.RegisterUser(ctx, inv.Identity, in); err != nil {
			return nil, err
		}
		return true, nil
	case OpListUsers:
		return d.svc.ListUsers(ctx, inv.Identity)
	case OpUpdateUserRole:
		var in users.UpdateRoleInput
		if err := decodeArgs(inv.Arguments, &in); err != nil {
			return nil, err
		}
		if err := d.svc.UpdateUserRole(ctx, inv.Identity, in); err != nil {
			return nil, err
		}
		return true, nil
	case OpMe:
		return d.svc.Me(ctx, inv.Identity)
	}
	return nil, ErrUnknownOperation
}

func decodeArgs(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadArguments, err)
	}
	return nil
}

func errorMessage(err error) string {
	var perr *PanicError
	if errors.As(err, &perr) {
		return fallbackMessage
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallbackMessage
}

func callerSub(id *models.Identity) string {
	if id == nil {
		return ""
	}
	return id.Sub
}
