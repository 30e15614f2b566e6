package reactor

import (
	"github.com/pawelgaczynski/giouring"
)

// kernelRing is the slice of *giouring.Ring this package actually calls.
// It exists so the EINTR/EBUSY/EAGAIN submit-and-wait recovery loop in
// flushSubmissions, and the completion-draining loop in flushCompletions,
// can run against a scripted fake in tests without a real kernel ring.
type kernelRing interface {
	GetSQE() *giouring.SubmissionQueueEntry
	SubmitAndWait(waitNr uint32) (uint, error)
	PeekBatchCQE(cqes []*giouring.CompletionQueueEvent) uint32
	CQAdvance(n uint32)
	QueueExit()
}

// giouringRing adapts *giouring.Ring to kernelRing. The method set already
// matches; this wrapper exists so call sites depend on the kernelRing
// interface rather than the concrete type, and so construction failures
// are surfaced as an InitError rather than a bare error.
type giouringRing struct {
	ring *giouring.Ring
}

func newGiouringRing(entries uint32, coopTaskrun, singleIssuer bool) (*giouringRing, error) {
	var params giouring.IOUringParams
	if coopTaskrun {
		params.Flags |= giouring.SetupCoopTaskrun
	}
	if singleIssuer {
		params.Flags |= giouring.SetupSingleIssuer
	}

	ring, err := giouring.CreateRingParams(entries, &params)
	if err != nil {
		return nil, err
	}
	return &giouringRing{ring: ring}, nil
}

func (r *giouringRing) GetSQE() *giouring.SubmissionQueueEntry { return r.ring.GetSQE() }

func (r *giouringRing) SubmitAndWait(waitNr uint32) (uint, error) {
	return r.ring.SubmitAndWait(waitNr)
}

func (r *giouringRing) PeekBatchCQE(cqes []*giouring.CompletionQueueEvent) uint32 {
	return r.ring.PeekBatchCQE(cqes)
}

func (r *giouringRing) CQAdvance(n uint32) { r.ring.CQAdvance(n) }

func (r *giouringRing) QueueExit() { r.ring.QueueExit() }
