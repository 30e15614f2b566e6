package executor

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// linkState is the debug-mode assertion state of a task, tracking which of
// the mutually-exclusive queues (run queue / free list / neither) currently
// owns it. Design notes in the spec this runtime is built from call this
// out as "strongly recommended" over a purely caller-enforced discipline,
// because it turns a double-enqueue programmer error into a panic instead
// of silent queue corruption.
type linkState uint32

const (
	linkFree linkState = iota
	linkQueued
	linkPolling
)

func (s linkState) String() string {
	switch s {
	case linkFree:
		return "free"
	case linkQueued:
		return "queued"
	case linkPolling:
		return "polling"
	default:
		return fmt.Sprintf("linkState(%d)", uint32(s))
	}
}

// TaskHeader carries everything the executor and task pool need to drive a
// task without knowing its concrete future type. It is embedded as the
// first field of every TaskStorage[F], which lets the poll/finalize thunks
// recover a typed *TaskStorage[F] from a bare *TaskHeader via unsafe.Pointer
// (the conversion is sound precisely because TaskHeader is always the first
// field — see pollThunk/finalizeThunk).
type TaskHeader struct {
	// queueNext links this task into the executor's run queue.
	queueNext *TaskHeader
	// poolNext links this task into its pool's free list.
	poolNext *TaskHeader

	// state is a debug-mode assertion of which queue (if any) owns this
	// task right now. It is not read by any scheduling decision.
	state atomic.Uint32

	// owner is the executor this task was last spawned/enqueued on. Wakers
	// re-enqueue onto this executor; it is nil until the first spawn.
	owner *Executor

	// pollFn advances the stored future by one step. Set by every Prepare;
	// for a given slot it is always the same pollThunk[F], so pool reuse
	// rewrites it with an identical value.
	pollFn func(TaskRef) bool

	// finalizeFn returns this task's slot to its pool's free list. nil for
	// standalone (non-pooled) tasks.
	finalizeFn func(poolPtr unsafe.Pointer, t TaskRef)
	// poolPtr is the owning *TaskPool[F], opaque here. nil for standalone
	// tasks; set together with finalizeFn.
	poolPtr unsafe.Pointer
}

// markQueued transitions the header into linkQueued, panicking if it was
// already there — the debug-mode assertion that catches a task being
// enqueued twice without an intervening drain. Re-entering from linkPolling
// is the expected "task woke itself during its own poll" path and is not a
// violation.
func (h *TaskHeader) markQueued() {
	if linkState(h.state.Swap(uint32(linkQueued))) == linkQueued {
		panic("reika/executor: task enqueued while already queued")
	}
}

// markPolling transitions the header into linkPolling. Called by the
// executor's drain loop immediately before invoking pollFn.
func (h *TaskHeader) markPolling() {
	h.state.Store(uint32(linkPolling))
}

// markFree transitions the header into linkFree. Called after a poll
// returns without re-enqueuing (pending, no synchronous wake) or after
// finalization.
func (h *TaskHeader) markFree() {
	h.state.Store(uint32(linkFree))
}

// TaskRef is a stable, copyable handle to a task's header. It is the
// currency of the executor's API: spawn, wake, and finalize all operate on
// TaskRef rather than a concrete *TaskStorage[F].
type TaskRef struct {
	h *TaskHeader
}

func taskRefFromHeader(h *TaskHeader) TaskRef { return TaskRef{h: h} }

// header returns the underlying TaskHeader.
func (t TaskRef) header() *TaskHeader { return t.h }

// Future is the minimal self-driving poll contract a task's stored value
// must implement. Unlike Rust's Future, there is no separate Context
// parameter: the Waker a poll needs is derived from the TaskRef by the
// poll thunk and handed to Poll directly, since the only thing a suspended
// operation ever does with "the current task's waker" is save it for
// later — see ops.Future and reactor.Request.
type Future interface {
	// Poll advances the future by one step. w.Wake re-enqueues the task
	// that owns this future. It may be called during Poll itself (the task
	// is then polled again in the next drain) or later, once progress is
	// possible, after Poll has returned false (pending).
	//
	// Poll returns true exactly when the future has completed; it is never
	// called again afterwards.
	Poll(w Waker) bool
}

// TaskStorage holds space for exactly one future of type F plus the header
// the executor needs to run it. The zero value is a valid, unprepared
// slot — see Prepare.
//
// TaskHeader MUST remain the first field: poll/finalize thunks rely on
// being able to cast a *TaskHeader back to *TaskStorage[F].
type TaskStorage[F Future] struct {
	TaskHeader
	future F
	ready  bool
}

// Prepare installs future into a standalone (non-pooled) TaskStorage and
// returns a TaskRef ready to spawn. Unlike TaskPool.Prepare this never
// fails: a standalone TaskStorage is not capacity-limited, but it also
// participates in no free list — once it completes it is not returned
// anywhere, and it runs again only if Prepare is called on it again.
func (s *TaskStorage[F]) Prepare(future F) TaskRef {
	s.future = future
	s.ready = false
	s.pollFn = pollThunk[F]
	s.finalizeFn = nil
	s.poolPtr = nil
	return taskRefFromHeader(&s.TaskHeader)
}

// pollThunk is the monomorphized poll function installed on every
// TaskHeader for futures of type F. It recovers the concrete storage via
// the first-field cast described on TaskStorage, polls the stored future,
// and reports whether it completed.
func pollThunk[F Future](t TaskRef) bool {
	s := (*TaskStorage[F])(unsafe.Pointer(t.header()))
	if s.ready {
		return true
	}
	if s.future.Poll(wakerFor(t)) {
		var zero F
		s.future = zero // drop in place
		s.ready = true
		return true
	}
	return false
}
