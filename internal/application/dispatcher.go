package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"weather-mcp-server/internal/domain"
)

// ErrorKind classifies a dispatch failure. The distinction between
// InputValidation (bad caller) and OutputValidation (bad integration) is
// deliberate: operators need to tell them apart at a glance.
type ErrorKind int

const (
	ErrUnknownTool ErrorKind = iota
	ErrInputValidation
	ErrOutputValidation
	ErrUpstream
	ErrInternal
)

// String returns the kind's label.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnknownTool:
		return "unknown_tool"
	case ErrInputValidation:
		return "input_validation"
	case ErrOutputValidation:
		return "output_validation"
	case ErrUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// DispatchError is the structured failure of one invocation. Violations
// is non-empty exactly for the validation kinds.
type DispatchError struct {
	Kind       ErrorKind
	Message    string
	Violations []domain.Violation
	Err        error
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Dispatcher routes validated tool calls to their handlers. Per
// invocation it runs the linear sequence lookup -> validate input ->
// call handler -> validate output; no state is carried across calls, so
// concurrent invocations need no coordination beyond the immutable
// store and registry.
type Dispatcher struct {
	store    *domain.SchemaStore
	registry *ToolRegistry
	timeout  time.Duration
	logger   *StructuredLogger
}

// NewDispatcher creates a dispatcher. The timeout bounds every handler
// call; validation itself is synchronous CPU work and is not subject
// to it.
func NewDispatcher(store *domain.SchemaStore, registry *ToolRegistry, timeout time.Duration, logger *StructuredLogger) *Dispatcher {
	if logger == nil {
		logger = NewStructuredLogger()
	}
	return &Dispatcher{
		store:    store,
		registry: registry,
		timeout:  timeout,
		logger:   logger,
	}
}

// Invoke executes tool name with the given raw arguments.
//
// The handler is guaranteed never to observe arguments that failed input
// validation, and the caller never receives a result that failed output
// validation. A nil arguments map is treated as an empty object.
func (d *Dispatcher) Invoke(ctx context.Context, name string, args map[string]interface{}) (map[string]interface{}, *DispatchError) {
	contract, handler, ok := d.registry.Lookup(name)
	if !ok {
		return nil, &DispatchError{
			Kind:    ErrUnknownTool,
			Message: fmt.Sprintf("unknown tool %q", name),
		}
	}

	if args == nil {
		args = map[string]interface{}{}
	}

	if result := domain.Validate(args, contract.InputSchema, d.store, ""); !result.Valid() {
		return nil, &DispatchError{
			Kind:       ErrInputValidation,
			Message:    fmt.Sprintf("arguments for %q failed input validation", name),
			Violations: result.Violations,
		}
	}

	callCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	raw, err := handler(callCtx, args)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &DispatchError{
				Kind:    ErrUpstream,
				Message: fmt.Sprintf("tool %q timed out after %s", name, d.timeout),
				Err:     err,
			}
		}
		return nil, &DispatchError{
			Kind:    ErrUpstream,
			Message: fmt.Sprintf("tool %q upstream call failed", name),
			Err:     err,
		}
	}

	if result := domain.Validate(raw, contract.OutputSchema, d.store, ""); !result.Valid() {
		// Contract breach on our side of the fence; log it in full
		// before surfacing.
		d.logger.LogError("handler result violates output schema", nil, map[string]interface{}{
			"tool":       name,
			"violations": result.Violations,
		})
		return nil, &DispatchError{
			Kind:       ErrOutputValidation,
			Message:    fmt.Sprintf("result of %q violates its output schema", name),
			Violations: result.Violations,
		}
	}

	return raw, nil
}
