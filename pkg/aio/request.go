package aio

// Request describes one in-flight read or write.
//
// The caller owns the Request's storage: this package never allocates or
// frees one. A Request is populated at submission, referenced by the backend
// while the operation is in flight, and relinquished back to the caller once
// its single completion callback has returned. It may then be reused for a
// new submission.
type Request struct {
	id     string
	dir    Direction
	handle *Handle // non-owning: the handle stays closable while requests drain
	buf    []byte
	offset int64

	// queuedBytes is the buffer length attributed to this request while it
	// is accepted but not yet completed; zero for inline completions.
	queuedBytes int64

	readCb  ReadCallback
	writeCb WriteCallback
}

// ID returns the request's unique identifier, assigned at submission.
// Useful for correlating log lines.
func (r *Request) ID() string {
	return r.id
}

// Direction reports whether this is a read or a write request.
func (r *Request) Direction() Direction {
	return r.dir
}

// Handle returns the handle the request was submitted against.
func (r *Request) Handle() *Handle {
	return r.handle
}

// Offset returns the resolved absolute offset the operation targets.
func (r *Request) Offset() int64 {
	return r.offset
}

// Buffer returns the single buffer the operation reads into or writes from.
func (r *Request) Buffer() []byte {
	return r.buf
}
