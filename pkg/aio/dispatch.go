package aio

// ============================================================================
// Completion dispatch
// ============================================================================

// dispatch reconciles one finished operation with its request: retrieves the
// result from the backend, fires the callback, then updates the pending
// counters and re-evaluates the close state machine. Runs on the loop thread.
//
// Completions may arrive in any order relative to submission; range
// correctness relies on the early offset advancement in submit, not on
// ordered delivery.
func (h *Handle) dispatch(req *Request) {
	if req.dir == DirRead {
		h.processRead(req)
	} else {
		h.processWrite(req)
	}
}

func (h *Handle) processRead(req *Request) {
	h.readQueueSize -= req.queuedBytes

	n, status, err := h.loop.sys.RetrieveResult(req)
	if err != nil {
		// No definite result. The callback still fires, with an error
		// sentinel for the transferred count.
		n = -1
		status = newRetrievalError("read", err)
	} else if status != nil {
		status = newSystemError("read", status)
	}

	if m := h.loop.metrics; m != nil {
		m.ObserveComplete(DirRead, n, status != nil)
	}

	if req.readCb != nil {
		req.readCb(req, n, req.buf, status)
	}

	h.readsPending--
	h.reqsPending--
	h.observeQueues()
	h.endgame()
}

func (h *Handle) processWrite(req *Request) {
	h.writeQueueSize -= req.queuedBytes

	n, status, err := h.loop.sys.RetrieveResult(req)
	if err != nil {
		status = newRetrievalError("write", err)
	} else if status != nil {
		status = newSystemError("write", status)
	}

	if m := h.loop.metrics; m != nil {
		m.ObserveComplete(DirWrite, n, status != nil)
	}

	// Write callbacks carry status only. Partial-write accounting is
	// already reflected through the queue-size bookkeeping above.
	if req.writeCb != nil {
		req.writeCb(req, status)
	}

	h.writesPending--
	h.reqsPending--
	h.observeQueues()
	h.endgame()
}
