package aio

import (
	"github.com/google/uuid"

	"github.com/mrusso91/aiofile/internal/logger"
)

// ============================================================================
// Submission
// ============================================================================

// SubmitRead starts an asynchronous read into bufs[0] and returns without
// blocking. cb fires exactly once, from the loop thread, when the operation
// completes — even when the backend resolves it inline.
//
// Exactly one buffer is supported; FromEnd is not implemented. Both shapes
// are rejected synchronously with ErrNotSupported and no state mutated.
//
// Errors:
//   - ErrHandleClosed: handle not bound, or its close protocol has begun
//   - ErrNotSupported: buffer count != 1, or disposition is FromEnd
//   - ErrSystem: the backend refused the submission; no counters touched
func (h *Handle) SubmitRead(req *Request, off int64, disp Disposition, bufs [][]byte, cb ReadCallback) error {
	return h.submit(req, DirRead, off, disp, bufs, cb, nil)
}

// SubmitWrite starts an asynchronous write of bufs[0] and returns without
// blocking. Same contract and error set as SubmitRead.
func (h *Handle) SubmitWrite(req *Request, off int64, disp Disposition, bufs [][]byte, cb WriteCallback) error {
	return h.submit(req, DirWrite, off, disp, bufs, nil, cb)
}

// Read submits a sequential read at the tracked position, the streaming
// shorthand for SubmitRead(req, 0, FromCurrent, ...).
func (h *Handle) Read(req *Request, bufs [][]byte, cb ReadCallback) error {
	return h.submit(req, DirRead, 0, FromCurrent, bufs, cb, nil)
}

// Write submits a sequential write at the tracked position, the streaming
// shorthand for SubmitWrite(req, 0, FromCurrent, ...).
func (h *Handle) Write(req *Request, bufs [][]byte, cb WriteCallback) error {
	return h.submit(req, DirWrite, 0, FromCurrent, bufs, nil, cb)
}

// submit is the shared submission path, parameterized by direction.
func (h *Handle) submit(req *Request, dir Direction, off int64, disp Disposition,
	bufs [][]byte, readCb ReadCallback, writeCb WriteCallback) error {

	op := dir.String()

	if !h.submittable() {
		return newHandleClosedError(op)
	}

	// Vectored requests are not implemented.
	if len(bufs) != 1 {
		return newNotSupportedError(op)
	}

	var abs int64
	switch disp {
	case FromStart:
		abs = off
	case FromCurrent:
		abs = h.offset + off
	case FromEnd:
		// Deliberately unimplemented; see FromEnd.
		return newNotSupportedError(op)
	default:
		return newNotSupportedError(op)
	}

	buf := bufs[0]

	*req = Request{
		id:      uuid.New().String(),
		dir:     dir,
		handle:  h,
		buf:     buf,
		offset:  abs,
		readCb:  readCb,
		writeCb: writeCb,
	}

	// Advance the tracked position before handing the operation to the
	// backend. This reserves the logical byte range for this request: a
	// second streaming submission issued before the first completes
	// computes a disjoint region, whatever order the backend services
	// them in. It is a reservation, not a lock — concurrent use of the
	// same file outside this API is still unprotected.
	h.offset += int64(len(buf))

	var (
		outcome Outcome
		err     error
	)
	if dir == DirRead {
		outcome, err = h.loop.sys.StartRead(h.file, req, buf, abs)
	} else {
		outcome, err = h.loop.sys.StartWrite(h.file, req, buf, abs)
	}
	if err != nil {
		return newSystemError(op, err)
	}

	if outcome == Pending {
		req.queuedBytes = int64(len(buf))
		if dir == DirRead {
			h.readQueueSize += req.queuedBytes
		} else {
			h.writeQueueSize += req.queuedBytes
		}
	}

	h.reqsPending++
	if dir == DirRead {
		h.readsPending++
	} else {
		h.writesPending++
	}

	if m := h.loop.metrics; m != nil {
		m.ObserveSubmit(dir, len(buf), outcome == Immediate)
	}
	h.observeQueues()
	logger.Debug("Request submitted",
		"request", req.id, "direction", op, "offset", abs, "bytes", len(buf),
		"inline", outcome == Immediate)

	return nil
}
