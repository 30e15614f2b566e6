//go:build linux

package reactor

import (
	"testing"

	"github.com/pawelgaczynski/giouring"
	"github.com/stretchr/testify/require"

	"github.com/tangledbytes/reika/executor"
)

func newTestReactor(ring kernelRing) *Reactor {
	cfg := resolveOptions(64, nil)
	return &Reactor{ring: ring, log: cfg.log}
}

func TestReactor_SubmitFailsWithoutIncrementingOutstanding(t *testing.T) {
	ring := &fakeRing{sqeCap: 1, sqeUsed: 1} // GetSQE always returns nil: SQ "full"
	r := newTestReactor(ring)

	var req Request
	err := r.Submit(func(*giouring.SubmissionQueueEntry) {}, &req, executor.Waker{})
	require.Error(t, err)
	require.IsType(t, &PushError{}, err)
	require.Equal(t, 0, r.Outstanding())
}

func TestReactor_SubmitIncrementsOutstanding(t *testing.T) {
	ring := &fakeRing{}
	r := newTestReactor(ring)

	var req Request
	err := r.Submit(func(sqe *giouring.SubmissionQueueEntry) {}, &req, executor.Waker{})
	require.NoError(t, err)
	require.Equal(t, 1, r.Outstanding())
	require.True(t, req.submitted)
}

func TestReactor_FlushCompletesRequestAndWakesTask(t *testing.T) {
	ring := &fakeRing{}
	r := newTestReactor(ring)

	var req Request
	require.NoError(t, r.Submit(func(*giouring.SubmissionQueueEntry) {}, &req, executor.Waker{}))

	ring.pending = append(ring.pending, &giouring.CompletionQueueEvent{
		UserData: requestUserData(&req),
		Res:      42,
	})

	require.NoError(t, r.Flush(1))
	require.True(t, req.Done())
	require.Equal(t, int32(42), req.Result())
	require.Equal(t, 0, r.Outstanding())
}

func TestReactor_FlushSkipsTimeoutMarkerCompletions(t *testing.T) {
	ring := &fakeRing{}
	r := newTestReactor(ring)

	ring.pending = append(ring.pending, &giouring.CompletionQueueEvent{
		UserData: 0,
		Res:      0,
	})

	require.NoError(t, r.Flush(0))
	require.Equal(t, 0, r.Outstanding())
}
