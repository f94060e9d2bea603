package aio

// DefaultQueueDepth is the completion queue capacity used when LoopConfig
// leaves it unset. It bounds the number of completions the backend can post
// before dispatch drains them.
const DefaultQueueDepth = 1024

// LoopConfig holds configuration for a Loop.
type LoopConfig struct {
	// QueueDepth is the completion queue capacity. Default: 1024.
	QueueDepth int

	// Metrics receives bookkeeping observations. Nil disables metrics with
	// zero overhead.
	Metrics Metrics
}

// Loop is the runtime context the core runs inside: it owns the completion
// port shared by every bound handle, and the liveness count that keeps Run
// going while handles are alive.
//
// Bind, submission, and Run must all happen on one goroutine. The only
// cross-goroutine entry point is Complete, which backends call from their
// workers.
type Loop struct {
	sys         System
	completions chan *Request
	metrics     Metrics

	// handles counts live (bound, not yet terminally closed) handles.
	// Loop-thread only.
	handles int
}

// NewLoop creates a loop driving the given backend.
func NewLoop(sys System, cfg LoopConfig) *Loop {
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = DefaultQueueDepth
	}

	return &Loop{
		sys:         sys,
		completions: make(chan *Request, cfg.QueueDepth),
		metrics:     cfg.Metrics,
	}
}

// Complete hands a finished request back to the loop. Backends call this
// from any goroutine once an operation's result is retrievable; the loop
// dispatches it from Run or Poll.
func (l *Loop) Complete(req *Request) {
	l.completions <- req
}

// Run dispatches completions until no live handles remain. It returns after
// the last handle's terminal close transition, or immediately if nothing is
// bound.
func (l *Loop) Run() {
	for l.handles > 0 {
		req := <-l.completions
		req.handle.dispatch(req)
	}
}

// Poll dispatches at most one queued completion without blocking and
// reports whether it dispatched one.
func (l *Loop) Poll() bool {
	select {
	case req := <-l.completions:
		req.handle.dispatch(req)
		return true
	default:
		return false
	}
}

// Alive returns the number of live handles.
func (l *Loop) Alive() int {
	return l.handles
}

func (l *Loop) ref() {
	l.handles++
}

func (l *Loop) unref() {
	l.handles--
}
