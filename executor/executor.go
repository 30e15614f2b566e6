package executor

import (
	"bytes"
	"runtime"
	"strconv"
)

// Executor drives a set of tasks to completion on a single goroutine. It
// owns no threads and spawns none; the caller decides which goroutine runs
// it, typically by dedicating one for the lifetime of a reika.Worker.
//
// An Executor must not be shared across goroutines. It is not safe to call
// Spawn, Run, or any other method from more than one goroutine, even with
// external synchronization around each individual call — the cheapness of
// the run queue depends on never needing a lock.
type Executor struct {
	queue     runQueue
	liveTasks int

	// affinityGID is the goroutine id Spawn or Run was first called from.
	// 0 means neither has been called yet.
	affinityGID int64
}

// Option configures an Executor at construction time. There are currently
// no Executor-level options; the type exists so New's signature doesn't
// have to change if one is added later, matching the closure-option shape
// used throughout this runtime.
type Option func(*Executor)

// New constructs an idle Executor with no live tasks.
func New(opts ...Option) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Spawn enqueues an already-prepared task for its first poll. It is the
// caller's responsibility to have produced ref via TaskStorage.Prepare or
// TaskPool.Prepare; Spawn itself only claims ownership and links it into
// the run queue.
func (e *Executor) Spawn(ref TaskRef) {
	e.checkAffinity()
	h := ref.header()
	h.owner = e
	e.liveTasks++
	h.markQueued()
	e.queue.enqueue(h)
}

// enqueue re-links an already-spawned task onto the run queue. Called by
// Waker.Wake; never called directly by user code.
func (e *Executor) enqueue(ref TaskRef) {
	h := ref.header()
	h.markQueued()
	e.queue.enqueue(h)
}

// Live reports the number of spawned tasks that have not yet completed.
func (e *Executor) Live() int { return e.liveTasks }

// Run drains the run queue repeatedly, polling every task observed in each
// drain, until no live tasks remain. After each drain that leaves live
// tasks behind, postDrain (if non-nil) is called once before the next
// drain — this is the hook a reactor uses to block for kernel completions
// and re-enqueue woken tasks.
//
// Run returns as soon as a drain leaves no live tasks; postDrain is not
// called after that final drain. While live tasks remain, Run keeps
// looping even if postDrain enqueues nothing. It returns after a single
// (empty) drain if there were no live tasks to begin with.
func (e *Executor) Run(postDrain func()) {
	e.checkAffinity()
	for {
		e.drainOnce()
		if e.liveTasks == 0 {
			return
		}
		if postDrain != nil {
			postDrain()
		}
	}
}

// drainOnce polls every task currently in the run queue exactly once.
func (e *Executor) drainOnce() {
	e.queue.drain(func(h *TaskHeader) {
		h.markPolling()
		done := h.pollFn(taskRefFromHeader(h))
		if done {
			e.liveTasks--
			if h.finalizeFn != nil {
				h.finalizeFn(h.poolPtr, taskRefFromHeader(h))
			} else {
				h.owner = nil
				h.markFree()
			}
			return
		}
		// If the poll produced a synchronous wake, markQueued already ran
		// (via Waker.Wake) and h is already linked back into next drain's
		// queue; h.state is linkQueued in that case, not linkPolling, so
		// leave it alone. Otherwise the task is genuinely idle until some
		// external waker fires later.
		if linkState(h.state.Load()) == linkPolling {
			h.markFree()
		}
	})
}

// checkAffinity captures the current goroutine id on first use and panics
// if a later call arrives from a different goroutine. The goroutine id is
// recovered by parsing the header line of runtime.Stack's output — the
// same technique the teacher's event loop uses to assert that loop-owned
// state is only ever touched from the loop's goroutine, since Go has no
// public goroutine-local storage to hang a thread_local-style guard off of.
func (e *Executor) checkAffinity() {
	gid := currentGoroutineID()
	if e.affinityGID == 0 {
		e.affinityGID = gid
		return
	}
	if e.affinityGID != gid {
		panic("reika/executor: Executor used from more than one goroutine")
	}
}

func currentGoroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	// Stack output always starts with "goroutine <id> [...]".
	const prefix = "goroutine "
	b = bytes.TrimPrefix(b, []byte(prefix))
	idEnd := bytes.IndexByte(b, ' ')
	if idEnd < 0 {
		return -1
	}
	id, err := strconv.ParseInt(string(b[:idEnd]), 10, 64)
	if err != nil {
		return -1
	}
	return id
}
