package executor

// Waker is the handle a pending Future stashes away and invokes once
// whatever it's waiting on (a reactor completion, usually) becomes ready.
//
// Its only field is the task's header pointer — the same pointer already
// used as the run queue's intrusive link — so deriving a Waker from a
// TaskRef costs nothing: no allocation, no boxing, just a pointer copy. A
// Waker is safe to store anywhere (reactor.Request keeps one until its
// completion arrives), but calling Wake more than once for the same poll is
// a programmer error, not a no-op: the second call panics, because the
// task is already linked into the run queue (see TaskHeader.markQueued).
type Waker struct {
	h *TaskHeader
}

// wakerFor derives the Waker for a task. Called once per poll, by the
// per-future poll thunk, and handed to Future.Poll.
func wakerFor(t TaskRef) Waker {
	return Waker{h: t.h}
}

// Wake re-enqueues the task onto the executor it was last spawned on. It is
// a no-op if the task was never spawned (a Waker derived before the first
// Spawn should not occur in practice, but Wake tolerates it rather than
// panicking, since a future has no way to know whether it's been spawned
// yet).
func (w Waker) Wake() {
	if w.h == nil {
		return
	}
	owner := w.h.owner
	if owner == nil {
		return
	}
	owner.enqueue(taskRefFromHeader(w.h))
}
