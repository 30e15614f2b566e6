//go:build linux

package reika

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tangledbytes/reika/executor"
	"github.com/tangledbytes/reika/ops"
)

// yieldOnceTask submits a single Nop/Yield operation and completes once
// the reactor reports it done — the smallest possible end-to-end exercise
// of Worker.Run driving the executor and reactor together.
type yieldOnceTask struct {
	w *Worker
	f *ops.Future[int32]
}

func (t *yieldOnceTask) Poll(waker executor.Waker) bool {
	if t.f == nil {
		t.f = ops.Yield(t.w.Reactor)
	}
	return t.f.Poll(waker)
}

func TestWorker_RunDrivesYieldToCompletion(t *testing.T) {
	w, err := New()
	require.NoError(t, err)
	defer w.Reactor.Close()

	task := &yieldOnceTask{w: w}
	var storage executor.TaskStorage[*yieldOnceTask]
	w.Spawn(storage.Prepare(task))

	require.NoError(t, w.Run(10_000))
	require.Equal(t, 0, w.Executor.Live())
}
