// Package ops provides the set of io_uring operation futures this runtime
// supports: Nop/Yield, Read, Write, ReadAt, WriteAt, Open, Close, Fsync,
// Fdatasync, Fallocate, Socket, Accept, Send, Recv. Each one follows the
// same {fresh → submitted → completed} state machine, implemented once in
// Future[T] and specialized per opcode by a prepare closure and a result
// converter.
package ops

import (
	"syscall"

	"github.com/pawelgaczynski/giouring"

	"github.com/tangledbytes/reika/executor"
	"github.com/tangledbytes/reika/reactor"
)

// Future drives one io_uring submission through to completion and exposes
// its result as a (T, error) pair. It implements executor.Future, so any
// Future[T] can be installed directly into an executor.TaskStorage or
// executor.TaskPool.
//
// Future must not be copied after its first Poll — like the reactor
// Request it embeds, its address is handed to the kernel as a CQE
// identifier (see reactor.Request).
type Future[T any] struct {
	r         *reactor.Reactor
	req       reactor.Request
	submitted bool
	prepare   func(*giouring.SubmissionQueueEntry)
	convert   func(res int32) (T, error)

	value T
	err   error
}

// newFuture constructs a Future ready for its first Poll. prepare fills in
// the submission queue entry; convert turns a completed CQE's raw result
// into this operation's (T, error).
func newFuture[T any](r *reactor.Reactor, prepare func(*giouring.SubmissionQueueEntry), convert func(int32) (T, error)) *Future[T] {
	return &Future[T]{r: r, prepare: prepare, convert: convert}
}

// Poll implements executor.Future. The first call submits the operation;
// every call after that just checks whether the kernel has completed it
// yet, mirroring the teacher's own poll-then-submit-once-then-poll-again
// future shape (see the fs/io ops this package generalizes).
func (f *Future[T]) Poll(w executor.Waker) bool {
	if f.req.Done() {
		f.value, f.err = f.convert(f.req.Result())
		return true
	}
	if f.submitted {
		return false
	}
	if err := f.r.Submit(f.prepare, &f.req, w); err != nil {
		// Submission queue was full; retry on the next drain instead of
		// waiting for a completion that will never come for a request
		// that was never actually queued.
		w.Wake()
		return false
	}
	f.submitted = true
	return false
}

// Result returns this operation's outcome. It is only meaningful after
// Poll has returned true.
func (f *Future[T]) Result() (T, error) { return f.value, f.err }

// toError converts a raw CQE result into (n, nil) for res >= 0, or
// (zero, *reactor.OpError) for a negative `-errno` result.
func toError(op string, res int32) (int32, error) {
	if res < 0 {
		return 0, &reactor.OpError{Op: op, Errno: syscall.Errno(-res)}
	}
	return res, nil
}
