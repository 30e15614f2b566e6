package executor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWaker_WakeNoOpBeforeSpawn(t *testing.T) {
	var s TaskStorage[*fakeFuture]
	ref := s.Prepare(&fakeFuture{})
	w := wakerFor(ref)
	require.NotPanics(t, func() { w.Wake() })
}

func TestWaker_WakeReenqueuesOntoOwningExecutor(t *testing.T) {
	e := New()
	var s TaskStorage[*fakeFuture]
	ff := &fakeFuture{pending: true}
	ref := s.Prepare(ff)
	e.Spawn(ref)

	// One drain: future reports pending and stashes its waker, task is not
	// re-queued.
	e.drainOnce()
	require.Equal(t, 1, ff.polls)
	require.Nil(t, e.queue.head)
	require.Equal(t, 1, e.Live())

	// Waking re-links the exact same header back onto the run queue.
	ff.wake()
	require.Same(t, &s.TaskHeader, e.queue.head)
}

func TestWaker_IsJustAPointerCopy(t *testing.T) {
	var s TaskStorage[*fakeFuture]
	ref := s.Prepare(&fakeFuture{})
	w1 := wakerFor(ref)
	w2 := wakerFor(ref)
	require.Equal(t, w1, w2)
}
