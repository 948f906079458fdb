// Package errors provides structured error handling for snapshot construction.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrNilNode is returned when a snapshot is requested for an absent native
// node. A snapshot cannot be built from nothing.
var ErrNilNode = stderrors.New("native node is nil")

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindPrecondition indicates a fatal precondition failure, such as a nil root.
	KindPrecondition
	// KindFixture indicates a fixture that could not be loaded.
	KindFixture
	// KindConfig indicates invalid configuration.
	KindConfig
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindPrecondition:
		return "precondition"
	case KindFixture:
		return "fixture"
	case KindConfig:
		return "config"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// SnapshotError represents a structured error raised while observing UI state.
type SnapshotError struct {
	// Op is the operation that failed (e.g., "snapshot.BuildRoot").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Generation is the snapshot generation id, if one had started.
	Generation string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *SnapshotError) Error() string {
	if e.Generation != "" {
		return fmt.Sprintf("%s [%s] generation=%s: %v", e.Op, e.Kind, e.Generation, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *SnapshotError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "snapshot.BuildRoot").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// IsKind reports whether err wraps a SnapshotError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *SnapshotError
	if stderrors.As(err, &se) {
		return se.Kind == kind
	}
	if kind == KindPanic {
		var pe *PanicError
		return stderrors.As(err, &pe)
	}
	return false
}

// ErrorHandler receives errors reported by the snapshot subsystem.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *SnapshotError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
