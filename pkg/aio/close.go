package aio

import (
	"github.com/mrusso91/aiofile/internal/logger"
)

// ============================================================================
// Close state machine
// ============================================================================
//
// A handle moves Open → Shutting → Shut → Closing → Closed. Releasing the
// native file is gated on outstanding writes only; the terminal callback is
// gated on every outstanding request, of either direction, having been
// dispatched.

// Shutdown begins the close protocol: once every outstanding write has been
// dispatched, the native file is released and the handle refuses new
// submissions. Reads still in flight do not delay the release; they drain
// against the already-closed file and are dispatched normally.
//
// Shutdown never blocks and may be called at any time after a successful
// bind. Calling it again, or after Close, has no effect.
func (h *Handle) Shutdown() {
	if !h.flags.has(flagBound) || h.flags.has(flagShutting|flagShut) {
		return
	}

	h.flags |= flagShutting

	// The release itself holds one unit of the pending count, so the
	// terminal transition cannot fire between shutdown being requested
	// and the file actually being released.
	h.reqsPending++

	logger.Debug("Handle shutting down", "pendingWrites", h.writesPending)
	h.endgame()
}

// Close requests the full close of the handle. It implies Shutdown, and
// additionally arranges for cb to fire exactly once — after the native file
// has been released and every outstanding request has been dispatched. At
// that point the handle stops counting toward the loop's liveness.
//
// Close never blocks. In-flight operations are not aborted; there is no
// operation-level cancellation. Calling Close again has no effect.
func (h *Handle) Close(cb CloseCallback) {
	if !h.flags.has(flagBound) || h.flags.has(flagClosing) {
		return
	}

	h.closeCb = cb
	h.flags |= flagClosing

	if !h.flags.has(flagShutting | flagShut) {
		h.flags |= flagShutting
		h.reqsPending++
	}

	logger.Debug("Handle closing", "pending", h.reqsPending)
	h.endgame()
}

// endgame evaluates the two gated transitions of the close state machine.
// Called after every dispatched completion and after Shutdown/Close.
func (h *Handle) endgame() {
	if h.flags.has(flagShutting) && !h.flags.has(flagShut) && h.writesPending == 0 {
		h.releaseFile()
		h.reqsPending--
	}

	if h.flags.has(flagClosing) && !h.flags.has(flagClosed) && h.reqsPending == 0 {
		h.flags |= flagClosed

		if h.closeCb != nil {
			h.closeCb(h)
		}

		if m := h.loop.metrics; m != nil {
			m.ObserveClose()
		}
		h.loop.unref()
		logger.Debug("Handle closed")
	}
}

// releaseFile closes the native file and marks the handle shut. New
// submissions are refused from here on.
func (h *Handle) releaseFile() {
	if err := h.file.Close(); err != nil {
		logger.Warn("Closing native file failed", "error", err)
	}
	h.flags |= flagShut
	logger.Debug("Native file released", "pendingReads", h.readsPending)
}
