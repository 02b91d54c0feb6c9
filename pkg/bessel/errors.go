package bessel

import (
	"errors"
	"fmt"

	"github.com/roach88/besselx/pkg/kernel"
)

// ErrorCode categorizes fatal evaluation errors.
type ErrorCode string

const (
	// ErrCodeInvalidInput indicates a request rejected before any kernel call
	// (bad scaling, family or count, non-finite order or argument, z = 0 where
	// a K or Hankel kernel call would be made).
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrCodeKernelInvariant indicates the kernel broke its contract: it
	// reported an input error for arguments that passed validation, returned
	// an out-of-range status, or returned the wrong number of values.
	ErrCodeKernelInvariant ErrorCode = "KERNEL_INVARIANT"
)

// Error is a fatal evaluation error. No values accompany it.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Function is the public operation that failed (e.g. "ive", "hankel2").
	Function string

	// Message is a human-readable description.
	Message string

	// Underflow and Status carry the kernel's raw report for
	// ErrCodeKernelInvariant errors.
	Underflow int
	Status    kernel.Status
}

func (e *Error) Error() string {
	if e.Function != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Function, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInputError reports whether err is (or wraps) an input validation error.
func IsInputError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == ErrCodeInvalidInput
	}
	return false
}

// IsKernelInvariant reports whether err is (or wraps) a kernel contract violation.
func IsKernelInvariant(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == ErrCodeKernelInvariant
	}
	return false
}

func newInputError(function, format string, args ...any) *Error {
	return &Error{
		Code:     ErrCodeInvalidInput,
		Function: function,
		Message:  fmt.Sprintf(format, args...),
	}
}

func newInvariantError(function string, nz int, ierr kernel.Status, format string, args ...any) *Error {
	return &Error{
		Code:      ErrCodeKernelInvariant,
		Function:  function,
		Message:   fmt.Sprintf(format, args...),
		Underflow: nz,
		Status:    ierr,
	}
}
