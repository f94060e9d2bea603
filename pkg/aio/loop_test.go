package aio_test

import (
	"testing"

	"github.com/mrusso91/aiofile/pkg/aio"
	"github.com/mrusso91/aiofile/pkg/aio/aiotest"
)

func TestLoop_RunReturnsWithNothingBound(t *testing.T) {
	loop := newTestLoop(aiotest.New())
	loop.Run() // must not block
}

func TestLoop_PollEmpty(t *testing.T) {
	loop := newTestLoop(aiotest.New())
	if loop.Poll() {
		t.Errorf("Poll dispatched on an empty loop")
	}
}

func TestLoop_RunDrivesUntilLastClose(t *testing.T) {
	sys := aiotest.New()
	loop := newTestLoop(sys)

	var h1, h2 aio.Handle
	if err := loop.Bind(&h1, aiotest.NewFile(nil)); err != nil {
		t.Fatalf("Bind h1 failed: %v", err)
	}
	if err := loop.Bind(&h2, aiotest.NewFile(nil)); err != nil {
		t.Fatalf("Bind h2 failed: %v", err)
	}
	if loop.Alive() != 2 {
		t.Fatalf("Alive = %d, want 2", loop.Alive())
	}

	var done int
	var r1, r2 aio.Request
	err := h1.Read(&r1, [][]byte{make([]byte, 8)}, func(*aio.Request, int, []byte, error) {
		done++
		h1.Close(nil)
	})
	if err != nil {
		t.Fatal(err)
	}
	err = h2.Read(&r2, [][]byte{make([]byte, 8)}, func(*aio.Request, int, []byte, error) {
		done++
		h2.Close(nil)
	})
	if err != nil {
		t.Fatal(err)
	}

	sys.CompleteAll()
	loop.Run()

	if done != 2 {
		t.Errorf("callbacks fired = %d, want 2", done)
	}
	if loop.Alive() != 0 {
		t.Errorf("Alive after Run = %d, want 0", loop.Alive())
	}
}
