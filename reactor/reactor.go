// Package reactor bridges io_uring completions to task wakeups.
//
// A Reactor owns exactly one kernel ring and is meant to live for as long
// as the goroutine that owns it — typically installed as the post-drain
// hook an executor.Executor calls between run-queue drains (see
// reika.Worker). Submitting an operation never blocks or enters the kernel;
// only Run (via Flush, without waiting) and RunForNS (which waits for
// completions) enter the kernel, and they do so on behalf of the whole
// executor, not per-operation.
package reactor

import (
	"bytes"
	"errors"
	"runtime"
	"strconv"

	"github.com/pawelgaczynski/giouring"
	"golang.org/x/sys/unix"

	"github.com/tangledbytes/reika/executor"
	"github.com/tangledbytes/reika/internal/rlog"
)

// Reactor submits io_uring operations and turns their completions into
// task wakeups. Like executor.Executor, it must only ever be touched from
// the single goroutine that owns it.
type Reactor struct {
	ring kernelRing
	log  rlog.Logger

	// outstanding counts requests that have been successfully pushed to
	// the submission queue and not yet completed. It does NOT count a
	// request whose GetSQE/push failed — see Submit.
	outstanding int

	affinityGID int64
}

// New creates a Reactor backed by a ring of the given size (typically 512
// or 1024 — larger rings amortize submit_and_wait syscalls across more
// in-flight operations at the cost of kernel memory).
func New(entries uint32, opts ...Option) (*Reactor, error) {
	cfg := resolveOptions(entries, opts)

	ring, err := newGiouringRing(cfg.entries, cfg.coopTaskrun, cfg.singleIssuer)
	if err != nil {
		return nil, &InitError{Entries: cfg.entries, Cause: err}
	}
	return &Reactor{
		ring: ring,
		log:  cfg.log,
	}, nil
}

// Close tears down the kernel ring. The Reactor must not be used
// afterwards.
func (r *Reactor) Close() {
	r.ring.QueueExit()
}

// Outstanding returns the number of submitted-but-not-yet-completed
// requests.
func (r *Reactor) Outstanding() int { return r.outstanding }

// Submit reserves a submission queue entry, lets prepare fill it in, tags
// it with req's address as user-data, and links req's Waker so
// flushCompletions can wake the right task later.
//
// Submit does not itself enter the kernel; the entry sits in the
// submission queue until the next Flush/Run. If the submission queue is
// currently full, Submit returns a *PushError and — per this runtime's
// resolution of the upstream "does a failed push still count as
// outstanding?" ambiguity — does NOT increment Outstanding, since nothing
// was actually queued for completion.
func (r *Reactor) Submit(prepare func(*giouring.SubmissionQueueEntry), req *Request, waker executor.Waker) error {
	sqe := r.ring.GetSQE()
	if sqe == nil {
		return &PushError{Cause: unix.EBUSY}
	}
	prepare(sqe)
	sqe.SetUserData(requestUserData(req))

	req.reset()
	req.submitted = true
	req.waker = waker
	r.outstanding++
	return nil
}

// Flush submits everything queued so far and drains whatever completions
// are already available, without blocking for more than `want` of them
// (0 means "don't block at all beyond what a single syscall picks up").
func (r *Reactor) Flush(want uint32) error {
	if _, _, err := r.flushSubmissions(want, 0, false); err != nil {
		return err
	}
	return r.flushCompletions(0)
}

// Run is the executor's post-drain hook: it opportunistically flushes
// whatever is ready without blocking, keeping the executor's drain loop
// responsive to newly-spawned tasks. Per this runtime's resolution of the
// upstream "silently swallowed Flush error" question, a Flush failure here
// is returned to the caller rather than discarded.
func (r *Reactor) Run() error {
	r.checkAffinity()
	return r.Flush(0)
}

// RunForNS blocks the calling goroutine until at least `ns` nanoseconds
// have elapsed, servicing completions (and therefore waking tasks) the
// whole time. It's meant for an executor with no other way to make
// progress: all live tasks are waiting on the reactor, and there's nothing
// useful to do except let the kernel tell us when something changes.
func (r *Reactor) RunForNS(ns uint32) error {
	r.checkAffinity()

	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return err
	}

	timeouts := 0
	etime := false

	for !etime {
		deadline := unix.NsecToTimespec(unix.TimespecToNsec(ts) + int64(ns))
		sqe := r.ring.GetSQE()
		if sqe == nil {
			var err error
			timeouts, etime, err = r.flushSubmissions(0, timeouts, etime)
			if err != nil {
				return err
			}
			sqe = r.ring.GetSQE()
			if sqe == nil {
				panic("reika/reactor: submission queue full immediately after a flush")
			}
		}
		sqe.PrepareTimeout(&deadline, 0, 0)
		sqe.SetUserData(0) // 0 is the reserved "this is a timeout marker" sentinel
		timeouts++

		var err error
		timeouts, etime, err = r.flushSubmissions(1, timeouts, etime)
		if err != nil {
			return err
		}
		newTimeouts, newEtime, err := r.flushCompletionsCountingTimeouts(0, timeouts, etime)
		if err != nil {
			return err
		}
		timeouts, etime = newTimeouts, newEtime
	}

	for timeouts > 0 {
		newTimeouts, _, err := r.flushCompletionsCountingTimeouts(0, timeouts, etime)
		if err != nil {
			return err
		}
		timeouts = newTimeouts
	}
	return nil
}

// flushSubmissions calls submit_and_wait, retrying on EINTR and, on
// EBUSY/EAGAIN, draining the completions already available to make room
// before retrying — exactly the recovery loop described for this runtime's
// reactor.
//
// timeouts and etime are RunForNS's running tally of outstanding timeout
// markers and whether one has fired; they're threaded through (not just
// read) because the EBUSY/EAGAIN recovery path below can itself reap a
// timeout-marker completion while making room, and the caller's tally has
// to reflect that or a later drain loop waiting for `timeouts` to reach
// zero would stall forever on a marker that was already consumed here.
func (r *Reactor) flushSubmissions(want uint32, timeouts int, etime bool) (int, bool, error) {
	for {
		_, err := r.ring.SubmitAndWait(want)
		if err == nil {
			return timeouts, etime, nil
		}
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EBUSY), errors.Is(err, unix.EAGAIN):
			newTimeouts, newEtime, ferr := r.flushCompletionsCountingTimeouts(1, timeouts, etime)
			if ferr != nil {
				return timeouts, etime, ferr
			}
			timeouts, etime = newTimeouts, newEtime
			continue
		default:
			r.log.Warning().Err(err).Log("submit_and_wait failed")
			return timeouts, etime, err
		}
	}
}

// flushCompletions drains completions until at least `want` requests have
// been completed or the completion queue is empty, whichever comes first.
// It never blocks: when the queue runs dry it returns even if fewer than
// `want` were collected (0 means "drain whatever's there").
func (r *Reactor) flushCompletions(want uint32) error {
	_, _, err := r.flushCompletionsCountingTimeouts(want, 0, false)
	return err
}

// flushCompletionsCountingTimeouts is flushCompletions plus RunForNS's
// timeout-marker bookkeeping (a zero user-data CQE is a timeout, not a
// real request, and ETIME on one of those is how RunForNS knows its
// deadline passed).
func (r *Reactor) flushCompletionsCountingTimeouts(want uint32, timeouts int, etime bool) (int, bool, error) {
	var cqes [64]*giouring.CompletionQueueEvent
	var collected uint32

	for {
		n := r.ring.PeekBatchCQE(cqes[:])
		for i := uint32(0); i < n; i++ {
			cqe := cqes[i]
			if cqe.UserData == 0 {
				timeouts--
				if cqe.Res == -int32(unix.ETIME) {
					etime = true
				}
				continue
			}
			req := requestFromUserData(cqe.UserData)
			req.result = cqe.Res
			req.done = true
			r.outstanding--
			req.waker.Wake()
			collected++
		}
		r.ring.CQAdvance(n)
		if n == 0 || collected >= want {
			return timeouts, etime, nil
		}
	}
}

// checkAffinity panics if Run/RunForNS is invoked from a goroutine other
// than the one that first called it — the same scheme executor.Executor
// uses, since a Reactor is equally goroutine-confined.
func (r *Reactor) checkAffinity() {
	gid := currentGoroutineID()
	if r.affinityGID == 0 {
		r.affinityGID = gid
		return
	}
	if r.affinityGID != gid {
		panic("reika/reactor: Reactor used from more than one goroutine")
	}
}

func currentGoroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
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
