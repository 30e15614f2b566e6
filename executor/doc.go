// Package executor provides a single-threaded, allocation-free cooperative
// task executor built around intrusively-linked task nodes.
//
// # Architecture
//
// A task is a [TaskStorage] holding a future-like poll function plus the
// [TaskHeader] bookkeeping the executor needs to run it: an intrusive link
// used to splice the task into the run queue, a back-reference to the
// owning [Executor], and a pair of thunks (poll, finalize) that let the
// executor operate on the task without knowing its concrete future type.
//
// Tasks are never allocated individually by the executor. Either the caller
// owns a standalone [TaskStorage] value (typically a package-level var) or a
// [TaskPool] hands out slots from a fixed-capacity, pre-allocated backing
// array. Both paths produce a [TaskRef] — a stable, type-erased handle that
// is simultaneously the executor's queue entry, the pool's free-list entry,
// and the waker's payload.
//
// # Execution model
//
// [Executor.Run] repeatedly drains its run queue (LIFO; see runQueue),
// polling every task observed in that drain, finalizing and uncounting any
// that report readiness, then returns if no tasks remain live and otherwise
// invokes an optional post-drain hook (where a reactor gets a turn to block
// for kernel completions) before the next drain. There is no fairness guarantee beyond
// "every task enqueued at the start of a drain is polled during that drain".
//
// # Thread affinity
//
// An [Executor] is meant to be owned by exactly one goroutine for its
// entire life — there is no internal locking. The first call to
// [Executor.Spawn] or [Executor.Run] captures the calling goroutine's id,
// and a later Spawn or Run from another goroutine panics; see
// Executor.checkAffinity.
package executor
