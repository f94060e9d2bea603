package aio

import "fmt"

// ErrorCode classifies the failures this package reports.
type ErrorCode int

const (
	// ErrBindFailed indicates completion-port association or the initial
	// offset query failed. Fatal to the handle: no operation may be
	// submitted against it afterwards.
	ErrBindFailed ErrorCode = iota + 1

	// ErrNotSupported indicates a request shape this core does not
	// implement: anything other than exactly one buffer, or the FromEnd
	// disposition. Rejected synchronously with no state mutated.
	ErrNotSupported

	// ErrSystem indicates the backend refused a submission for a reason
	// other than "accepted, pending". Surfaced synchronously; no counters
	// are touched.
	ErrSystem

	// ErrRetrieval indicates the backend could not report a definite
	// result for a finished operation. Not fatal to the handle; surfaced
	// through the request's own callback.
	ErrRetrieval

	// ErrHandleClosed indicates a submission against a handle that is not
	// bound, or whose close protocol has begun.
	ErrHandleClosed
)

// String returns a human-readable name for the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrBindFailed:
		return "BindFailed"
	case ErrNotSupported:
		return "NotSupported"
	case ErrSystem:
		return "System"
	case ErrRetrieval:
		return "Retrieval"
	case ErrHandleClosed:
		return "HandleClosed"
	default:
		return fmt.Sprintf("Unknown(%d)", c)
	}
}

// OpError is the error type returned by submissions and delivered to
// completion callbacks. Err holds the underlying backend error, if any.
type OpError struct {
	Code ErrorCode
	Op   string
	Err  error
}

// Error implements the error interface.
func (e *OpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("aio %s: %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("aio %s: %s", e.Op, e.Code)
}

// Unwrap returns the underlying backend error.
func (e *OpError) Unwrap() error {
	return e.Err
}

// CodeOf extracts the ErrorCode from err, or 0 if err is not an *OpError.
func CodeOf(err error) ErrorCode {
	if oe, ok := err.(*OpError); ok {
		return oe.Code
	}
	return 0
}

func newBindError(err error) *OpError {
	return &OpError{Code: ErrBindFailed, Op: "bind", Err: err}
}

func newNotSupportedError(op string) *OpError {
	return &OpError{Code: ErrNotSupported, Op: op}
}

func newSystemError(op string, err error) *OpError {
	return &OpError{Code: ErrSystem, Op: op, Err: err}
}

func newRetrievalError(op string, err error) *OpError {
	return &OpError{Code: ErrRetrieval, Op: op, Err: err}
}

func newHandleClosedError(op string) *OpError {
	return &OpError{Code: ErrHandleClosed, Op: op}
}
