package executor

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExecutor_SpawnAndRunToCompletion(t *testing.T) {
	e := New()
	var s TaskStorage[*fakeFuture]
	ff := &fakeFuture{}
	e.Spawn(s.Prepare(ff))
	require.Equal(t, 1, e.Live())

	e.Run(nil)
	require.Equal(t, 1, ff.polls)
	require.Equal(t, 0, e.Live())
}

func TestExecutor_RunDrivesMultipleTasksOneRound(t *testing.T) {
	e := New()
	const n = 8
	var storages [n]TaskStorage[*fakeFuture]
	futures := make([]*fakeFuture, n)
	for i := range storages {
		futures[i] = &fakeFuture{}
		e.Spawn(storages[i].Prepare(futures[i]))
	}
	require.Equal(t, n, e.Live())

	e.Run(nil)
	require.Equal(t, 0, e.Live())
	for _, ff := range futures {
		require.Equal(t, 1, ff.polls)
	}
}

func TestExecutor_PostDrainDrivesPendingTaskToCompletion(t *testing.T) {
	e := New()
	var s TaskStorage[*fakeFuture]
	ff := &fakeFuture{pending: true}
	e.Spawn(s.Prepare(ff))

	calls := 0
	e.Run(func() {
		calls++
		// Simulate a reactor completion arriving: wake the task so the
		// next drain observes it and, this time, finds it ready.
		ff.pending = false
		ff.wake()
	})

	require.Equal(t, 1, calls)
	require.Equal(t, 2, ff.polls)
	require.Equal(t, 0, e.Live())
}

func TestExecutor_LiveCounterIncrementsAndDecrementsExactlyOnce(t *testing.T) {
	e := New()
	var s TaskStorage[*fakeFuture]
	ff := &fakeFuture{}
	before := e.Live()
	e.Spawn(s.Prepare(ff))
	require.Equal(t, before+1, e.Live())
	e.drainOnce()
	require.Equal(t, before, e.Live())
}

func TestExecutor_PooledTaskReturnsSlotOnCompletion(t *testing.T) {
	e := New()
	p := NewTaskPool[*fakeFuture](1)
	ref, err := p.Prepare(&fakeFuture{})
	require.NoError(t, err)
	e.Spawn(ref)
	require.Equal(t, 1, p.Live())

	e.Run(nil)
	require.Equal(t, 0, p.Live())

	_, err = p.Prepare(&fakeFuture{})
	require.NoError(t, err)
}

func TestExecutor_DoubleEnqueuePanics(t *testing.T) {
	e := New()
	var s TaskStorage[*fakeFuture]
	ref := s.Prepare(&fakeFuture{pending: true})
	e.Spawn(ref)

	require.Panics(t, func() {
		e.enqueue(ref)
	})
}

func TestExecutor_PanicsWhenUsedFromAnotherGoroutine(t *testing.T) {
	e := New()
	e.Run(nil) // captures this goroutine's id

	var wg sync.WaitGroup
	wg.Add(1)
	var paniced bool
	go func() {
		defer wg.Done()
		defer func() {
			if recover() != nil {
				paniced = true
			}
		}()
		e.Run(nil)
	}()
	wg.Wait()
	require.True(t, paniced)
}
