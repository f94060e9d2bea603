package osfs_test

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/mrusso91/aiofile/pkg/aio"
	"github.com/mrusso91/aiofile/pkg/aio/aiotest"
	"github.com/mrusso91/aiofile/pkg/aio/osfs"
)

// blockingFile parks every ReadAt on a gate so tests can hold a worker busy
// at a known point.
type blockingFile struct {
	*aiotest.File
	entered chan struct{}
	release chan struct{}
}

func newBlockingFile(data []byte) *blockingFile {
	return &blockingFile{
		File:    aiotest.NewFile(data),
		entered: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
}

func (f *blockingFile) ReadAt(p []byte, off int64) (int, error) {
	f.entered <- struct{}{}
	<-f.release
	return f.File.ReadAt(p, off)
}

func drainLoop(t *testing.T, loop *aio.Loop, want int) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for dispatched := 0; dispatched < want; {
		if loop.Poll() {
			dispatched++
			continue
		}
		select {
		case <-deadline:
			t.Fatalf("timed out after dispatching %d of %d completions", dispatched, want)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestSystem_BindFailsBeforeStart(t *testing.T) {
	sys := osfs.New(osfs.DefaultConfig())
	loop := aio.NewLoop(sys, aio.LoopConfig{})

	var h aio.Handle
	err := loop.Bind(&h, aiotest.NewFile(nil))
	if aio.CodeOf(err) != aio.ErrBindFailed {
		t.Fatalf("expected ErrBindFailed before Start, got %v", err)
	}
}

func TestSystem_QueryOffsetUsesSeekPosition(t *testing.T) {
	sys := osfs.New(osfs.DefaultConfig())
	sys.Start()
	defer sys.Stop(5 * time.Second)

	loop := aio.NewLoop(sys, aio.LoopConfig{})

	var h aio.Handle
	if err := loop.Bind(&h, aiotest.NewFileAt(make([]byte, 100), 40)); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	if h.Offset() != 40 {
		t.Errorf("tracked offset = %d, want the file position 40", h.Offset())
	}
}

func TestSystem_ReadAndWriteRoundTrip(t *testing.T) {
	sys := osfs.New(osfs.DefaultConfig())
	sys.Start()
	defer sys.Stop(5 * time.Second)

	loop := aio.NewLoop(sys, aio.LoopConfig{})
	f := aiotest.NewFile([]byte("the quick brown fox"))

	var h aio.Handle
	if err := loop.Bind(&h, f); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	var wreq aio.Request
	var writeErr error
	err := h.SubmitWrite(&wreq, 4, aio.FromStart, [][]byte{[]byte("slick")}, func(r *aio.Request, err error) {
		writeErr = err
	})
	if err != nil {
		t.Fatalf("SubmitWrite failed: %v", err)
	}
	drainLoop(t, loop, 1)
	if writeErr != nil {
		t.Fatalf("write completed with error: %v", writeErr)
	}

	buf := make([]byte, 19)
	var rreq aio.Request
	var gotN int
	err = h.SubmitRead(&rreq, 0, aio.FromStart, [][]byte{buf}, func(r *aio.Request, n int, b []byte, err error) {
		gotN = n
		if err != nil {
			t.Errorf("read completed with error: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("SubmitRead failed: %v", err)
	}
	drainLoop(t, loop, 1)

	if gotN != 19 || string(buf) != "the slick brown fox" {
		t.Errorf("read back %q (%d bytes), want %q", buf[:gotN], gotN, "the slick brown fox")
	}
}

func TestSystem_ShortReadAtEndOfFile(t *testing.T) {
	sys := osfs.New(osfs.DefaultConfig())
	sys.Start()
	defer sys.Stop(5 * time.Second)

	loop := aio.NewLoop(sys, aio.LoopConfig{})

	var h aio.Handle
	if err := loop.Bind(&h, aiotest.NewFile(make([]byte, 10))); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	var req aio.Request
	var gotN int
	var gotErr error
	err := h.SubmitRead(&req, 6, aio.FromStart, [][]byte{make([]byte, 64)}, func(r *aio.Request, n int, b []byte, err error) {
		gotN, gotErr = n, err
	})
	if err != nil {
		t.Fatalf("SubmitRead failed: %v", err)
	}
	drainLoop(t, loop, 1)

	// Partial data at end of file is a successful short read.
	if gotN != 4 || gotErr != nil {
		t.Errorf("short read got (n=%d, err=%v), want (4, nil)", gotN, gotErr)
	}
}

func TestSystem_ReadPastEndOfFile(t *testing.T) {
	sys := osfs.New(osfs.DefaultConfig())
	sys.Start()
	defer sys.Stop(5 * time.Second)

	loop := aio.NewLoop(sys, aio.LoopConfig{})

	var h aio.Handle
	if err := loop.Bind(&h, aiotest.NewFile(make([]byte, 10))); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	var req aio.Request
	var gotErr error
	err := h.SubmitRead(&req, 100, aio.FromStart, [][]byte{make([]byte, 8)}, func(r *aio.Request, n int, b []byte, err error) {
		gotErr = err
	})
	if err != nil {
		t.Fatalf("SubmitRead failed: %v", err)
	}
	drainLoop(t, loop, 1)

	if aio.CodeOf(gotErr) != aio.ErrSystem || !errors.Is(gotErr, io.EOF) {
		t.Errorf("read past end got %v, want ErrSystem wrapping io.EOF", gotErr)
	}
}

func TestSystem_QueueOverflowRefusesSubmission(t *testing.T) {
	sys := osfs.New(osfs.Config{Workers: 1, QueueSize: 1})
	sys.Start()
	defer sys.Stop(5 * time.Second)

	loop := aio.NewLoop(sys, aio.LoopConfig{})
	f := newBlockingFile(make([]byte, 1024))

	var h aio.Handle
	if err := loop.Bind(&h, f); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	var reqs [3]aio.Request
	done := 0
	cb := func(*aio.Request, int, []byte, error) { done++ }

	// First operation: dequeued by the single worker, parked on the gate.
	if err := h.SubmitRead(&reqs[0], 0, aio.FromStart, [][]byte{make([]byte, 16)}, cb); err != nil {
		t.Fatalf("first SubmitRead failed: %v", err)
	}
	select {
	case <-f.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("worker never picked up the first operation")
	}

	// Second operation: fills the queue.
	if err := h.SubmitRead(&reqs[1], 16, aio.FromStart, [][]byte{make([]byte, 16)}, cb); err != nil {
		t.Fatalf("second SubmitRead failed: %v", err)
	}

	// Third operation: overflow, refused synchronously with no state change.
	err := h.SubmitRead(&reqs[2], 32, aio.FromStart, [][]byte{make([]byte, 16)}, cb)
	if aio.CodeOf(err) != aio.ErrSystem || !errors.Is(err, osfs.ErrQueueFull) {
		t.Fatalf("overflow got %v, want ErrSystem wrapping ErrQueueFull", err)
	}
	total, reads, _ := h.Pending()
	if total != 2 || reads != 2 {
		t.Errorf("pending after overflow = (%d,%d), want (2,2)", total, reads)
	}

	close(f.release)
	drainLoop(t, loop, 2)
	if done != 2 {
		t.Errorf("accepted operations dispatched = %d, want 2", done)
	}
}

func TestSystem_StopDrainsAcceptedWork(t *testing.T) {
	sys := osfs.New(osfs.Config{Workers: 2, QueueSize: 64})
	sys.Start()

	loop := aio.NewLoop(sys, aio.LoopConfig{})

	var h aio.Handle
	if err := loop.Bind(&h, aiotest.NewFile(make([]byte, 4096))); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	const n = 16
	var reqs [n]aio.Request
	done := 0
	for i := 0; i < n; i++ {
		err := h.SubmitRead(&reqs[i], int64(i*16), aio.FromStart, [][]byte{make([]byte, 16)}, func(*aio.Request, int, []byte, error) {
			done++
		})
		if err != nil {
			t.Fatalf("SubmitRead %d failed: %v", i, err)
		}
	}

	sys.Stop(5 * time.Second)
	drainLoop(t, loop, n)

	if done != n {
		t.Errorf("dispatched %d of %d accepted operations", done, n)
	}
}
