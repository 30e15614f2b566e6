package reactor

import (
	"fmt"
	"syscall"
)

// InitError reports that the kernel ring could not be created. It is
// unrecoverable: a reactor that fails to initialize never serves requests.
type InitError struct {
	Entries uint32
	Cause   error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("reika/reactor: failed to initialize ring with %d entries: %v", e.Entries, e.Cause)
}

func (e *InitError) Unwrap() error { return e.Cause }

// PushError reports that a Request could not be pushed onto the submission
// queue. It is recoverable: the caller may retry the submission once
// Flush has made room. Reactor.Submit returns it without retrying;
// ops.Future responds by waking its own task so the submission is tried
// again on the next drain.
type PushError struct {
	Cause error
}

func (e *PushError) Error() string {
	return fmt.Sprintf("reika/reactor: submission queue full: %v", e.Cause)
}

func (e *PushError) Unwrap() error { return e.Cause }

// OpError wraps the negated, negative result of a completion queue entry
// (a raw kernel errno) as a Go error. A zero or positive CQE result never
// produces an OpError; see Request.Result.
type OpError struct {
	Op    string
	Errno syscall.Errno
}

func (e *OpError) Error() string {
	return fmt.Sprintf("reika/reactor: %s: %v", e.Op, e.Errno)
}

func (e *OpError) Unwrap() error { return e.Errno }
