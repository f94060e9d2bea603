// Package aiotest provides a deterministic aio.System for tests: accepted
// operations complete only when the test says so, in whatever order the test
// chooses, with injectable failures at every step of the contract.
package aiotest

import (
	"fmt"

	"github.com/mrusso91/aiofile/pkg/aio"
)

// Op is an operation the fake system has accepted but not yet completed.
type Op struct {
	Req *aio.Request
	Buf []byte
	Off int64
	Dir aio.Direction
}

type result struct {
	n         int
	status    error
	retrieval error
}

// System is a scriptable aio.System. It is not safe for concurrent use; the
// whole point is single-threaded, fully ordered tests.
type System struct {
	// Port is captured by Associate.
	Port *aio.Loop

	// InitialOffset is what QueryOffset reports.
	InitialOffset int64

	// AssociateErr / QueryErr make Bind fail.
	AssociateErr error
	QueryErr     error

	// SubmitErr makes the next StartRead/StartWrite fail, then resets.
	SubmitErr error

	// Inline makes submissions resolve immediately: the full buffer counts
	// as transferred and the completion is posted right away.
	Inline bool

	ops     []*Op
	results map[*aio.Request]result
}

// New creates an empty fake system.
func New() *System {
	return &System{results: make(map[*aio.Request]result)}
}

// Associate implements aio.System.
func (s *System) Associate(port *aio.Loop, _ aio.File) error {
	if s.AssociateErr != nil {
		return s.AssociateErr
	}
	s.Port = port
	return nil
}

// QueryOffset implements aio.System.
func (s *System) QueryOffset(_ aio.File) (int64, error) {
	if s.QueryErr != nil {
		return 0, s.QueryErr
	}
	return s.InitialOffset, nil
}

// StartRead implements aio.System.
func (s *System) StartRead(_ aio.File, req *aio.Request, buf []byte, off int64) (aio.Outcome, error) {
	return s.start(&Op{Req: req, Buf: buf, Off: off, Dir: aio.DirRead})
}

// StartWrite implements aio.System.
func (s *System) StartWrite(_ aio.File, req *aio.Request, buf []byte, off int64) (aio.Outcome, error) {
	return s.start(&Op{Req: req, Buf: buf, Off: off, Dir: aio.DirWrite})
}

func (s *System) start(op *Op) (aio.Outcome, error) {
	if s.SubmitErr != nil {
		err := s.SubmitErr
		s.SubmitErr = nil
		return aio.Pending, err
	}

	if s.Inline {
		s.results[op.Req] = result{n: len(op.Buf)}
		s.Port.Complete(op.Req)
		return aio.Immediate, nil
	}

	s.ops = append(s.ops, op)
	return aio.Pending, nil
}

// RetrieveResult implements aio.System.
func (s *System) RetrieveResult(req *aio.Request) (int, error, error) {
	r, ok := s.results[req]
	if !ok {
		return 0, nil, fmt.Errorf("aiotest: no result for request %s", req.ID())
	}
	delete(s.results, req)
	if r.retrieval != nil {
		return 0, nil, r.retrieval
	}
	return r.n, r.status, nil
}

// Ops returns the accepted, not-yet-completed operations in submission order.
func (s *System) Ops() []*Op {
	return append([]*Op(nil), s.ops...)
}

// Complete finishes op with the given transferred count and status, and
// posts it to the loop.
func (s *System) Complete(op *Op, n int, status error) {
	s.remove(op)
	s.results[op.Req] = result{n: n, status: status}
	s.Port.Complete(op.Req)
}

// CompleteNoResult finishes op but makes the result irretrievable, forcing a
// retrieval error on dispatch.
func (s *System) CompleteNoResult(op *Op, retrievalErr error) {
	s.remove(op)
	s.results[op.Req] = result{retrieval: retrievalErr}
	s.Port.Complete(op.Req)
}

// CompleteAll finishes every pending operation in submission order, each
// with a full transfer and a nil status.
func (s *System) CompleteAll() {
	for len(s.ops) > 0 {
		op := s.ops[0]
		s.Complete(op, len(op.Buf), nil)
	}
}

func (s *System) remove(op *Op) {
	for i, o := range s.ops {
		if o == op {
			s.ops = append(s.ops[:i], s.ops[i+1:]...)
			return
		}
	}
	panic(fmt.Sprintf("aiotest: completing unknown op for request %s", op.Req.ID()))
}
