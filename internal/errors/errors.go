// Package errors defines the coded error type shared by the store, the async
// core and the console.
package errors

import (
	"errors"
	"fmt"
)

// Code identifies a structured error type used across the application.
type Code string

const (
	CodeUnknown Code = "unknown"

	// Store errors
	CodeNotFound      Code = "not_found"
	CodeDuplicate     Code = "duplicate"
	CodeInvalidRecord Code = "invalid_record"
	CodeStoreFailed   Code = "store_failed"

	// Async core errors
	CodeOperationFailed Code = "operation_failed"
	CodeEffectFailed    Code = "effect_failed"

	CodeConfigurationError Code = "configuration_error"
)

// Error represents a structured error with a machine-readable code plus message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

// Unwrap returns the wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// New wraps an error with a code/message.
func New(code Code, msg string, err error) Error {
	return Error{Code: code, Message: msg, Err: err}
}

// CodeOf walks the error chain and returns the first structured code found.
func CodeOf(err error) Code {
	var structured Error
	if errors.As(err, &structured) {
		return structured.Code
	}
	return CodeUnknown
}

// IsCode reports whether the error (or its unwrap chain) matches the provided code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// FromPanic converts a recovered panic value into a coded error. Values that
// already are errors stay reachable through Unwrap.
func FromPanic(code Code, recovered any) Error {
	if err, ok := recovered.(error); ok {
		return New(code, "panic: "+err.Error(), err)
	}
	return New(code, "panic: "+stringify(recovered), nil)
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case interface{ String() string }:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
