package ops

import (
	"github.com/pawelgaczynski/giouring"

	"github.com/tangledbytes/reika/reactor"
)

// Yield returns a future that completes on the next reactor flush,
// without performing any real I/O. It is the one operation every worker
// loop can always make progress on, used to give other tasks a turn
// without blocking on anything — the Go equivalent of `yield_now` in the
// original async-executor this runtime generalizes.
func Yield(r *reactor.Reactor) *Future[int32] {
	return newFuture[int32](r, func(sqe *giouring.SubmissionQueueEntry) {
		sqe.PrepareNop()
	}, func(res int32) (int32, error) {
		return toError("nop", res)
	})
}
