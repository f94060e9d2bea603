package aiotest

import (
	"io"
	"sync"
)

// File is an in-memory aio.File. Safe for concurrent positional access, so
// it also backs osfs worker-pool tests.
type File struct {
	mu   sync.Mutex
	data []byte
	pos  int64

	// Closes counts Close calls, letting tests assert the release step
	// happened exactly once.
	Closes int
}

// NewFile creates a file with the given initial contents.
func NewFile(data []byte) *File {
	return &File{data: data}
}

// NewFileAt creates a file whose seek position starts at pos, for testing
// bind-time offset capture.
func NewFileAt(data []byte, pos int64) *File {
	return &File{data: data, pos: pos}
}

// Bytes returns a copy of the file's contents.
func (f *File) Bytes() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]byte(nil), f.data...)
}

// ReadAt implements io.ReaderAt.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if off >= int64(len(f.data)) {
		return 0, io.EOF
	}
	n := copy(p, f.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt implements io.WriterAt, growing the file as needed.
func (f *File) WriteAt(p []byte, off int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if end := off + int64(len(p)); end > int64(len(f.data)) {
		grown := make([]byte, end)
		copy(grown, f.data)
		f.data = grown
	}
	return copy(f.data[off:], p), nil
}

// Seek implements io.Seeker. Only io.SeekCurrent with zero offset is needed
// by the bind-time offset query; the rest behave conventionally.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch whence {
	case io.SeekStart:
		f.pos = offset
	case io.SeekCurrent:
		f.pos += offset
	case io.SeekEnd:
		f.pos = int64(len(f.data)) + offset
	}
	return f.pos, nil
}

// Close implements io.Closer.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closes++
	return nil
}
