package commands

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrusso91/aiofile/pkg/aio"
	"github.com/mrusso91/aiofile/pkg/aio/aiotest"
	"github.com/mrusso91/aiofile/pkg/aio/osfs"
)

// failingFile refuses every positional write.
type failingFile struct {
	*aiotest.File
	writeErr error
}

func (f *failingFile) WriteAt(p []byte, off int64) (int, error) {
	return 0, f.writeErr
}

func copyTestData(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i * 7)
	}
	return data
}

func TestCopier_CopiesAllBytes(t *testing.T) {
	data := copyTestData(100_000) // not a multiple of the chunk size
	src := aiotest.NewFile(data)
	dst := aiotest.NewFile(nil)

	sys := osfs.New(osfs.Config{Workers: 2, QueueSize: 32})
	sys.Start()
	defer sys.Stop(5 * time.Second)

	loop := aio.NewLoop(sys, aio.LoopConfig{})
	c := newCopier(loop, int64(len(data)), 4096, 4)

	require.NoError(t, c.run(src, dst))
	require.NoError(t, c.err)

	assert.Equal(t, data, dst.Bytes())
	assert.Equal(t, int64(len(data)), c.written)
	assert.Equal(t, 25, c.chunks)
	assert.Equal(t, 1, src.Closes)
	assert.Equal(t, 1, dst.Closes)
	assert.Equal(t, 0, loop.Alive())
}

func TestCopier_EmptySource(t *testing.T) {
	src := aiotest.NewFile(nil)
	dst := aiotest.NewFile(nil)

	sys := osfs.New(osfs.Config{Workers: 1, QueueSize: 8})
	sys.Start()
	defer sys.Stop(5 * time.Second)

	loop := aio.NewLoop(sys, aio.LoopConfig{})
	c := newCopier(loop, 0, 4096, 4)

	require.NoError(t, c.run(src, dst))
	require.NoError(t, c.err)

	assert.Zero(t, c.written)
	assert.Zero(t, c.chunks)
	assert.Equal(t, 1, src.Closes)
	assert.Equal(t, 1, dst.Closes)
	assert.Equal(t, 0, loop.Alive())
}

func TestCopier_WriteFailureStopsCopy(t *testing.T) {
	data := copyTestData(16_384)
	src := aiotest.NewFile(data)
	diskFull := errors.New("disk full")
	dst := &failingFile{File: aiotest.NewFile(nil), writeErr: diskFull}

	sys := osfs.New(osfs.Config{Workers: 2, QueueSize: 32})
	sys.Start()
	defer sys.Stop(5 * time.Second)

	loop := aio.NewLoop(sys, aio.LoopConfig{})
	c := newCopier(loop, int64(len(data)), 4096, 2)

	// run still returns nil: the binds succeeded, and the error belongs to
	// the pipeline, not the setup.
	require.NoError(t, c.run(src, dst))

	require.Error(t, c.err)
	assert.ErrorIs(t, c.err, diskFull)
	assert.Zero(t, c.written)

	// The failure drains through the close protocol: both handles released,
	// nothing left alive.
	assert.Equal(t, 1, src.Closes)
	assert.Equal(t, 1, dst.File.Closes)
	assert.Equal(t, 0, loop.Alive())
}

func TestCopier_ReadSubmissionRefused(t *testing.T) {
	data := copyTestData(8192)
	src := aiotest.NewFile(data)
	dst := aiotest.NewFile(nil)

	refused := errors.New("backend refused")
	sys := aiotest.New()
	sys.Inline = true
	sys.SubmitErr = refused

	loop := aio.NewLoop(sys, aio.LoopConfig{})
	c := newCopier(loop, int64(len(data)), 4096, 4)

	// The very first seeding read is refused before any pipeline is in
	// flight; the copier must record the error and drain cleanly instead of
	// retiring a slot it never started.
	require.NoError(t, c.run(src, dst))

	require.Error(t, c.err)
	assert.Equal(t, aio.ErrSystem, aio.CodeOf(c.err))
	assert.ErrorIs(t, c.err, refused)
	assert.Zero(t, c.written)
	assert.Equal(t, 1, src.Closes)
	assert.Equal(t, 1, dst.Closes)
	assert.Equal(t, 0, loop.Alive())
}
