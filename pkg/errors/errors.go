// Package errors provides a small typed-error vocabulary shared across
// soba's components. Every component-level failure in the orchestrator
// is expected to carry one of the codes below so the scheduler can decide
// propagation and exit status purely by switching on code, rather than
// string-matching error messages.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a BaseError.
type ErrorCode string

const (
	// CodeUnknown is used when no more specific code applies.
	CodeUnknown ErrorCode = "UNKNOWN"
	// CodeValidation marks a malformed request, config, or argument.
	CodeValidation ErrorCode = "VALIDATION"
	// CodeNotFound marks a missing resource (issue, PR, worktree, session).
	CodeNotFound ErrorCode = "NOT_FOUND"
	// CodeInternal marks a bug or unexpected invariant violation.
	CodeInternal ErrorCode = "INTERNAL"
	// CodeConflict marks a contended resource (label race, worktree in use).
	CodeConflict ErrorCode = "CONFLICT"
	// CodeTimeout marks an operation that exceeded its deadline.
	CodeTimeout ErrorCode = "TIMEOUT"
	// CodeExternal marks a failure in an external system (GitHub, tmux, git).
	CodeExternal ErrorCode = "EXTERNAL"
)

// BaseError is the common error shape carried through the codebase.
type BaseError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *BaseError) Error() string {
	prefix := ""
	switch e.Code {
	case CodeValidation:
		prefix = "validation error"
	case CodeNotFound:
		prefix = "not found"
	case CodeInternal:
		prefix = "internal error"
	case CodeConflict:
		prefix = "conflict"
	case CodeTimeout:
		prefix = "timeout"
	case CodeExternal:
		prefix = "external error"
	default:
		prefix = "error"
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As.
func (e *BaseError) Unwrap() error {
	return e.Cause
}

// NewBaseError builds a BaseError with an empty context map.
func NewBaseError(code ErrorCode, message string) *BaseError {
	return &BaseError{
		Code:    code,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

func NewValidationError(message string) *BaseError { return NewBaseError(CodeValidation, message) }
func NewNotFoundError(message string) *BaseError    { return NewBaseError(CodeNotFound, message) }
func NewInternalError(message string) *BaseError    { return NewBaseError(CodeInternal, message) }
func NewConflictError(message string) *BaseError    { return NewBaseError(CodeConflict, message) }
func NewTimeoutError(message string) *BaseError     { return NewBaseError(CodeTimeout, message) }
func NewExternalError(message string) *BaseError    { return NewBaseError(CodeExternal, message) }

// Wrap attaches message to err, preserving code and context when err is
// already a *BaseError, falling back to fmt.Errorf("%w") otherwise.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	var baseErr *BaseError
	if errors.As(err, &baseErr) {
		return &BaseError{
			Code:    baseErr.Code,
			Message: message,
			Cause:   err,
			Context: baseErr.Context,
		}
	}

	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with fmt.Sprintf-style formatting.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

func WrapValidation(err error, message string) error { return wrapAs(CodeValidation, err, message) }
func WrapNotFound(err error, message string) error    { return wrapAs(CodeNotFound, err, message) }
func WrapInternal(err error, message string) error    { return wrapAs(CodeInternal, err, message) }
func WrapConflict(err error, message string) error    { return wrapAs(CodeConflict, err, message) }
func WrapExternal(err error, message string) error    { return wrapAs(CodeExternal, err, message) }

func wrapAs(code ErrorCode, err error, message string) error {
	if err == nil {
		return nil
	}
	return &BaseError{
		Code:    code,
		Message: message,
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// WithContext attaches a key/value pair to err's Context, wrapping err in a
// BaseError first if it isn't one already.
func WithContext(err error, key string, value interface{}) error {
	if err == nil {
		return nil
	}

	var baseErr *BaseError
	if errors.As(err, &baseErr) {
		if baseErr.Context == nil {
			baseErr.Context = make(map[string]interface{})
		}
		baseErr.Context[key] = value
		return baseErr
	}

	return &BaseError{
		Code:    CodeUnknown,
		Message: err.Error(),
		Cause:   err,
		Context: map[string]interface{}{key: value},
	}
}

// GetCode returns err's code, or CodeUnknown if err isn't a *BaseError.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}

	var baseErr *BaseError
	if errors.As(err, &baseErr) {
		return baseErr.Code
	}

	return CodeUnknown
}

func IsCode(err error, code ErrorCode) bool { return GetCode(err) == code }

func IsValidationError(err error) bool { return IsCode(err, CodeValidation) }
func IsNotFoundError(err error) bool    { return IsCode(err, CodeNotFound) }
func IsInternalError(err error) bool    { return IsCode(err, CodeInternal) }
func IsConflictError(err error) bool    { return IsCode(err, CodeConflict) }
func IsTimeoutError(err error) bool     { return IsCode(err, CodeTimeout) }
func IsExternalError(err error) bool    { return IsCode(err, CodeExternal) }
