// Package aio implements asynchronous, offset-addressable file I/O on top of
// a completion-port style backend.
//
// Callers bind a file to a Loop, then submit non-blocking positional reads
// and writes against the resulting Handle. The handle tracks an implicit
// sequential position so back-to-back submissions stream through the file
// without the caller doing offset arithmetic, even when the backend completes
// operations out of order. Completions are delivered as per-request callbacks
// from the loop thread.
//
// The package follows a single-threaded cooperative model: all submission,
// dispatch and counter bookkeeping run on the goroutine driving Loop.Run.
// True concurrency exists only inside the System backend servicing the
// operations.
package aio

// Direction identifies whether a request reads from or writes to the file.
type Direction int

const (
	// DirRead is a read request.
	DirRead Direction = iota

	// DirWrite is a write request.
	DirWrite
)

// String returns a human-readable name for the direction.
func (d Direction) String() string {
	switch d {
	case DirRead:
		return "read"
	case DirWrite:
		return "write"
	default:
		return "unknown"
	}
}

// Disposition controls how the offset passed to a submission is interpreted.
type Disposition int

const (
	// FromStart treats the offset as absolute from the beginning of the file.
	FromStart Disposition = iota

	// FromCurrent treats the offset as a delta from the handle's tracked
	// position. The position is the one maintained by this package, advanced
	// at submission time; it is never re-queried from the backend.
	FromCurrent

	// FromEnd is reserved. Submissions using it are rejected with
	// ErrNotSupported.
	FromEnd
)

// ReadCallback receives the outcome of a read request.
//
// n is the number of bytes transferred into buf. If the backend could not
// report a definite result, n is -1 and err carries an ErrRetrieval code.
type ReadCallback func(req *Request, n int, buf []byte, err error)

// WriteCallback receives the outcome of a write request. Writes carry no
// buffer or byte count: outstanding-write accounting happens through the
// handle's queue-size counters, so the status is all a write caller needs.
type WriteCallback func(req *Request, err error)

// CloseCallback fires exactly once per handle, after the native file has been
// released and every outstanding request has been dispatched.
type CloseCallback func(h *Handle)
