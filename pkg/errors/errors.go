// Package errors provides structured error handling for the Loom library.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindSelfUse indicates a computed performed a tracked read of itself.
	KindSelfUse
	// KindCircular indicates a direct two-object dependency cycle.
	KindCircular
	// KindMissingCallback indicates a tracked read through a tracker that
	// has no recompute target.
	KindMissingCallback
	// KindOverflow indicates the recompute cascade exceeded the depth guard.
	KindOverflow
	// KindShape indicates an unsupported child or source value shape.
	KindShape
	// KindBinding indicates an element binding failure.
	KindBinding
	// KindConfig indicates a configuration error.
	KindConfig
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindSelfUse:
		return "self-use"
	case KindCircular:
		return "circular"
	case KindMissingCallback:
		return "missing-callback"
	case KindOverflow:
		return "overflow"
	case KindShape:
		return "shape"
	case KindBinding:
		return "binding"
	case KindConfig:
		return "config"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// LoomError represents a structured error in the Loom library.
type LoomError struct {
	// Op is the operation that failed (e.g., "state.Tracker.Use").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Object is the label of the state object involved, if applicable.
	Object string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *LoomError) Error() string {
	if e.Object != "" {
		return fmt.Sprintf("%s [%s] object=%s: %v", e.Op, e.Kind, e.Object, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *LoomError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "inspect.Server.ServeHTTP").
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

// ShapeError represents a value whose shape is not accepted at a binding
// or combinator boundary.
type ShapeError struct {
	// Op is the operation that rejected the value (e.g., "loom.Binder.New").
	Op string
	// Want describes the accepted shapes.
	Want string
	// Got is the rejected value.
	Got any
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: unsupported shape %T, want %s", e.Op, e.Got, e.Want)
}

// ErrorHandler receives errors reported by the Loom library.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *LoomError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
