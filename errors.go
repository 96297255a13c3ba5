package edgeidentity

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Sentinel errors for common extension error conditions.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrNotBooted indicates a request arrived before Boot completed.
	ErrNotBooted = errors.New("extension not booted")

	// ErrReservedNamespace indicates a request targeted a reserved namespace
	// (ECID, GAID or IDFA) through the customer identifier path.
	ErrReservedNamespace = errors.New("reserved namespace")

	// ErrMissingOrgID indicates no Experience Cloud org id is configured.
	ErrMissingOrgID = errors.New("missing org id")

	// ErrInvalidRequest indicates an inbound request payload was malformed.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrClosed indicates the extension has been closed.
	ErrClosed = errors.New("extension closed")
)

// Error kinds categorize errors by their type.
const (
	// KindValidation represents errors related to request validation.
	KindValidation = "validation"

	// KindStorage represents errors from the persistence backend.
	KindStorage = "storage"

	// KindConfiguration represents errors related to configuration.
	KindConfiguration = "configuration"

	// KindState represents requests that are not valid in the current lifecycle state.
	KindState = "state"

	// KindInternal represents internal errors.
	KindInternal = "internal"
)

// Error is a structured error type that wraps underlying errors with
// additional context about the operation that failed and the category of error.
//
// Error supports unwrapping, so errors.Is() and errors.As() see through it.
//
// Example usage:
//
//	err := &Error{
//		Op:   "Extension.RemoveIdentity",
//		Kind: KindValidation,
//		Err:  ErrReservedNamespace,
//	}
type Error struct {
	// Op is the operation that failed (e.g., "Extension.Boot").
	Op string

	// Kind categorizes the error (e.g., KindValidation, KindStorage).
	Kind string

	// Err is the underlying error that caused this error.
	Err error

	// Context provides additional debugging information (optional), such as the
	// namespace of a rejected identity.
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("edgeidentity: %s: %s", e.Op, e.Kind)
	}

	if len(e.Context) > 0 {
		return fmt.Sprintf("edgeidentity: %s (%s): %v [context: %+v]", e.Op, e.Kind, e.Err, e.Context)
	}

	return fmt.Sprintf("edgeidentity: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by Kind (and Op when the target sets one), and otherwise
// delegates to the underlying error.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}

	if t, ok := target.(*Error); ok {
		if t.Kind != "" && e.Kind == t.Kind {
			if t.Op == "" || e.Op == t.Op {
				return true
			}
		}
	}

	return errors.Is(e.Err, target)
}

// WithContext returns a copy of the error with the provided context merged in.
//
// Example:
//
//	err := NewValidationError("Extension.RemoveIdentity", ErrReservedNamespace)
//	err = err.WithContext(map[string]any{"namespace": "ECID"})
func (e *Error) WithContext(ctx map[string]any) *Error {
	newErr := *e
	merged := make(map[string]any, len(e.Context)+len(ctx))
	for k, v := range e.Context {
		merged[k] = v
	}
	for k, v := range ctx {
		merged[k] = v
	}
	newErr.Context = merged
	return &newErr
}

// NewValidationError creates a new Error with KindValidation.
func NewValidationError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindValidation, Err: err}
}

// NewStorageError creates a new Error with KindStorage.
func NewStorageError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindStorage, Err: err}
}

// NewConfigurationError creates a new Error with KindConfiguration.
func NewConfigurationError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindConfiguration, Err: err}
}

// NewStateError creates a new Error with KindState.
func NewStateError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindState, Err: err}
}

// NewInternalError creates a new Error with KindInternal.
func NewInternalError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindInternal, Err: err}
}

// CloseWithLog attempts to close the provided resource and logs any error
// at warning level. This is intended for use in defer statements to ensure
// cleanup errors are not silently ignored.
//
// If logger is nil, slog.Default() is used.
//
// Example usage:
//
//	defer edgeidentity.CloseWithLog(store, logger, "identity store")
func CloseWithLog(closer io.Closer, logger *slog.Logger, name string) {
	if closer == nil {
		return
	}

	if logger == nil {
		logger = slog.Default()
	}

	if err := closer.Close(); err != nil {
		logger.Warn("failed to close resource",
			"resource", name,
			"error", err)
	}
}
