package aio

import (
	"github.com/mrusso91/aiofile/internal/logger"
)

// handleFlags track a handle's lifecycle. They only ever accumulate.
type handleFlags uint8

const (
	flagBound handleFlags = 1 << iota
	flagShutting
	flagShut
	flagClosing
	flagClosed
)

func (f handleFlags) has(mask handleFlags) bool {
	return f&mask != 0
}

// Handle owns a bound native file and the bookkeeping for its in-flight
// requests. The zero value is unusable until bound with Loop.Bind.
//
// All fields are mutated only from the loop thread; see the package comment
// for the concurrency model.
type Handle struct {
	loop *Loop
	file File

	flags handleFlags

	// offset is the tracked sequential position. It advances at submission
	// time, by the submitted buffer's length, and is never touched by
	// completion. Advancing early reserves the logical byte range for the
	// request, so streaming submissions compute disjoint regions even when
	// the backend completes them out of order.
	offset int64

	// reqsPending counts every outstanding request of either direction,
	// plus one extra unit between shutdown being requested and the native
	// file being released.
	reqsPending   int
	readsPending  int
	writesPending int

	// Outstanding bytes accepted but not yet completed, per direction.
	readQueueSize  int64
	writeQueueSize int64

	closeCb CloseCallback
}

// Bind associates f with the loop's completion port and seeds the handle's
// tracked offset from the file's current position.
//
// On failure the handle is permanently unusable: no operation may be
// submitted against it. On success the handle counts toward the loop's
// liveness until its terminal close transition.
func (l *Loop) Bind(h *Handle, f File) error {
	if err := l.sys.Associate(l, f); err != nil {
		logger.Error("Completion port association failed", "error", err)
		return newBindError(err)
	}

	off, err := l.sys.QueryOffset(f)
	if err != nil {
		logger.Error("Initial offset query failed", "error", err)
		return newBindError(err)
	}

	h.loop = l
	h.file = f
	h.offset = off
	h.flags = flagBound

	l.ref()
	if l.metrics != nil {
		l.metrics.ObserveBind()
	}
	logger.Debug("Handle bound", "offset", off)

	return nil
}

// Offset returns the handle's tracked sequential position.
func (h *Handle) Offset() int64 {
	return h.offset
}

// Pending returns the outstanding request counts: total, reads, writes.
// The total may exceed reads+writes by one while the release step of the
// close protocol is in flight.
func (h *Handle) Pending() (total, reads, writes int) {
	return h.reqsPending, h.readsPending, h.writesPending
}

// QueueSizes returns the outstanding accepted-but-uncompleted byte counts
// for reads and writes.
func (h *Handle) QueueSizes() (read, write int64) {
	return h.readQueueSize, h.writeQueueSize
}

// submittable reports whether new requests may target this handle.
func (h *Handle) submittable() bool {
	return h.flags.has(flagBound) &&
		!h.flags.has(flagShutting|flagShut|flagClosing|flagClosed)
}

func (h *Handle) observeQueues() {
	if m := h.loop.metrics; m != nil {
		m.ObserveQueueDepth(h.readsPending, h.writesPending, h.readQueueSize, h.writeQueueSize)
	}
}
