//go:build linux

package reactor

import (
	"github.com/pawelgaczynski/giouring"
)

// fakeRing is a scripted kernelRing used to exercise Reactor's
// submission/completion bookkeeping without a real kernel ring.
type fakeRing struct {
	sqeCap     int
	sqeUsed    int
	submitErrs []error
	submits    int
	pending    []*giouring.CompletionQueueEvent
	exited     bool
}

func (f *fakeRing) GetSQE() *giouring.SubmissionQueueEntry {
	if f.sqeCap > 0 && f.sqeUsed >= f.sqeCap {
		return nil
	}
	f.sqeUsed++
	return &giouring.SubmissionQueueEntry{}
}

func (f *fakeRing) SubmitAndWait(waitNr uint32) (uint, error) {
	f.submits++
	f.sqeUsed = 0
	if len(f.submitErrs) > 0 {
		err := f.submitErrs[0]
		f.submitErrs = f.submitErrs[1:]
		if err != nil {
			return 0, err
		}
	}
	return uint(len(f.pending)), nil
}

func (f *fakeRing) PeekBatchCQE(cqes []*giouring.CompletionQueueEvent) uint32 {
	n := copy(cqes, f.pending)
	f.pending = f.pending[n:]
	return uint32(n)
}

func (f *fakeRing) CQAdvance(n uint32) {}

func (f *fakeRing) QueueExit() { f.exited = true }
