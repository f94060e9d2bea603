// Package osfs emulates a completion-port asynchronous I/O facility over
// plain files, using a bounded queue and a pool of worker goroutines doing
// positional reads and writes. It is the production backend for pkg/aio.
package osfs

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/mrusso91/aiofile/internal/logger"
	"github.com/mrusso91/aiofile/pkg/aio"
)

// ErrQueueFull is returned from submissions when the worker queue cannot
// accept another operation. The caller sees it wrapped in an aio SystemError.
var ErrQueueFull = errors.New("osfs: submission queue full")

// Config holds configuration for the worker pool.
type Config struct {
	// Workers is the number of concurrent I/O workers. Default: 4.
	Workers int

	// QueueSize is the maximum number of accepted-but-unserviced
	// operations. Default: 256.
	QueueSize int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:   4,
		QueueSize: 256,
	}
}

type job struct {
	f   aio.File
	req *aio.Request
	buf []byte
	off int64
	dir aio.Direction
}

type result struct {
	n      int
	status error
}

// System services asynchronous operations with a worker pool. One System is
// shared by every handle bound to the same loop.
type System struct {
	queue     chan job
	workers   int
	wg        sync.WaitGroup
	stopCh    chan struct{}
	stoppedCh chan struct{}

	mu      sync.Mutex
	started bool
	port    *aio.Loop
	// results parks finished operations until the loop retrieves them.
	results map[*aio.Request]result
}

// New creates a System with the given configuration. Start must be called
// before binding handles.
func New(cfg Config) *System {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}

	return &System{
		queue:     make(chan job, cfg.QueueSize),
		workers:   cfg.Workers,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
		results:   make(map[*aio.Request]result),
	}
}

// Start launches the worker pool. Calling it again is a no-op.
func (s *System) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	logger.Debug("Starting I/O workers", "workers", s.workers)

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}

	go func() {
		s.wg.Wait()
		close(s.stoppedCh)
	}()
}

// Stop shuts the worker pool down, draining queued operations first. It
// waits up to timeout for the workers to finish.
func (s *System) Stop(timeout time.Duration) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	close(s.stopCh)

	select {
	case <-s.stoppedCh:
		logger.Debug("I/O workers stopped")
	case <-time.After(timeout):
		logger.Warn("I/O worker stop timed out")
	}
}

// Associate implements aio.System. The first call pins the loop; every
// handle on this System must share it.
func (s *System) Associate(port *aio.Loop, _ aio.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return errors.New("osfs: not started")
	}
	if s.port != nil && s.port != port {
		return errors.New("osfs: already associated with a different loop")
	}
	s.port = port
	return nil
}

// QueryOffset implements aio.System using the file's current seek position.
func (s *System) QueryOffset(f aio.File) (int64, error) {
	off, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("osfs: query offset: %w", err)
	}
	return off, nil
}

// StartRead implements aio.System. Operations are always accepted as
// pending; the worker pool never resolves inline.
func (s *System) StartRead(f aio.File, req *aio.Request, buf []byte, off int64) (aio.Outcome, error) {
	return s.enqueue(job{f: f, req: req, buf: buf, off: off, dir: aio.DirRead})
}

// StartWrite implements aio.System.
func (s *System) StartWrite(f aio.File, req *aio.Request, buf []byte, off int64) (aio.Outcome, error) {
	return s.enqueue(job{f: f, req: req, buf: buf, off: off, dir: aio.DirWrite})
}

func (s *System) enqueue(j job) (aio.Outcome, error) {
	select {
	case s.queue <- j:
		return aio.Pending, nil
	default:
		return aio.Pending, ErrQueueFull
	}
}

// RetrieveResult implements aio.System. Each parked result is consumed
// exactly once.
func (s *System) RetrieveResult(req *aio.Request) (int, error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.results[req]
	if !ok {
		return 0, nil, fmt.Errorf("osfs: no result recorded for request %s", req.ID())
	}
	delete(s.results, req)
	return r.n, r.status, nil
}

func (s *System) worker() {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopCh:
			s.drain()
			return
		case j := <-s.queue:
			s.service(j)
		}
	}
}

// drain services queued operations during shutdown so no accepted request
// goes uncompleted.
func (s *System) drain() {
	for {
		select {
		case j := <-s.queue:
			s.service(j)
		default:
			return
		}
	}
}

func (s *System) service(j job) {
	var (
		n   int
		err error
	)
	if j.dir == aio.DirRead {
		n, err = j.f.ReadAt(j.buf, j.off)
		// A short read at end of file still transferred n bytes.
		if errors.Is(err, io.EOF) && n > 0 {
			err = nil
		}
	} else {
		n, err = j.f.WriteAt(j.buf, j.off)
	}

	s.mu.Lock()
	s.results[j.req] = result{n: n, status: err}
	port := s.port
	s.mu.Unlock()

	port.Complete(j.req)
}
