package aio

import "io"

// File is the native resource a handle wraps. *os.File satisfies it; tests
// use in-memory implementations.
type File interface {
	io.ReaderAt
	io.WriterAt
	io.Seeker
	io.Closer
}

// Outcome reports how the backend accepted a submission.
type Outcome int

const (
	// Pending means the operation was accepted and will complete later
	// through the loop's completion queue.
	Pending Outcome = iota

	// Immediate means the operation finished inline. The completion is
	// still delivered through the loop (a completion-port posts a packet
	// even for synchronous success); only the queued-byte accounting
	// differs.
	Immediate
)

// System is the asynchronous I/O facility the core drives. Implementations
// service operations concurrently and hand finished requests back to the
// loop via Loop.Complete.
//
// osfs.System emulates asynchrony with a worker pool over *os.File; tests
// use aiotest.System for deterministic completion ordering.
type System interface {
	// Associate binds a native file to the loop's completion port.
	// Called once per handle, at bind time.
	Associate(port *Loop, f File) error

	// QueryOffset reports the file's current absolute offset. Called once
	// per handle, at bind time, to seed the tracked position.
	QueryOffset(f File) (int64, error)

	// StartRead initiates an asynchronous positional read. A non-nil error
	// means the operation was never started.
	StartRead(f File, req *Request, buf []byte, off int64) (Outcome, error)

	// StartWrite initiates an asynchronous positional write. A non-nil
	// error means the operation was never started.
	StartWrite(f File, req *Request, buf []byte, off int64) (Outcome, error)

	// RetrieveResult reports the result of a finished operation: the
	// transferred byte count and the operation's status. err is non-nil
	// only when the system cannot produce a definite result at all, in
	// which case n and status are meaningless.
	RetrieveResult(req *Request) (n int, status error, err error)
}
