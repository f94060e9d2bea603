package aio

// Metrics receives observations about handle and request bookkeeping.
//
// Implemented by pkg/metrics/prometheus. A nil Metrics in LoopConfig
// disables instrumentation with zero overhead; callers inside this package
// guard every use with a nil check.
type Metrics interface {
	// ObserveBind records a successful handle bind.
	ObserveBind()

	// ObserveSubmit records an accepted submission. inline is true when
	// the backend resolved the operation synchronously.
	ObserveSubmit(dir Direction, bytes int, inline bool)

	// ObserveComplete records a dispatched completion. transferred is -1
	// when the result could not be retrieved.
	ObserveComplete(dir Direction, transferred int, failed bool)

	// ObserveQueueDepth records the current pending-request and
	// queued-byte counters after a submission or dispatch.
	ObserveQueueDepth(pendingReads, pendingWrites int, readQueueBytes, writeQueueBytes int64)

	// ObserveClose records a terminal handle close.
	ObserveClose()
}
