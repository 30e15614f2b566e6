package reactor

import (
	"unsafe"

	"github.com/tangledbytes/reika/executor"
)

// Request is the per-operation state a submitted io_uring entry needs
// after it leaves the submission queue: somewhere to stash the kernel's
// result and the Waker to invoke once that result is available.
//
// A Request's address IS the completion queue entry's user-data payload
// (see Reactor.Submit/flushCompletions) — the same intrusive-pointer trick
// executor.TaskHeader uses for its run queue. Callers embed a Request as a
// field of their own operation-future struct (see the ops package) so that
// submitting an operation never allocates anything beyond what the caller
// already owns.
type Request struct {
	result    int32
	done      bool
	submitted bool
	waker     executor.Waker
}

// Done reports whether the kernel has completed this request.
func (r *Request) Done() bool { return r.done }

// Result returns the raw CQE result. Negative values are `-errno`; callers
// typically pass this through toError before surfacing it. Result is only
// meaningful once Done reports true.
func (r *Request) Result() int32 { return r.result }

// reset clears a Request back to its pre-submission state, so the same
// struct can be resubmitted for a second operation (e.g. a multi-chunk
// copy reusing one Request per chunk).
func (r *Request) reset() {
	r.result = 0
	r.done = false
	r.submitted = false
}

// requestUserData encodes req's address as a CQE user-data payload. 0 is
// reserved for timeout markers (see Reactor.RunForNS), so a genuine
// *Request must never land at address zero — which a Go pointer to a live
// struct never does.
func requestUserData(req *Request) uint64 {
	return uint64(uintptr(unsafe.Pointer(req)))
}

// requestFromUserData reverses requestUserData. Callers must only invoke
// this on a user-data value known to have come from requestUserData (i.e.
// not 0), since it round-trips through unsafe.Pointer.
func requestFromUserData(data uint64) *Request {
	return (*Request)(unsafe.Pointer(uintptr(data)))
}
