// Package reika bundles a single-threaded executor.Executor with the
// reactor.Reactor that feeds it kernel completions, as the one pair of
// per-goroutine singletons this runtime needs. Where the runtime this
// module generalizes reached for a thread_local! per OS thread, Go
// programs instead construct one Worker per goroutine they intend to
// dedicate to it — see New and Worker.Run.
package reika

import (
	"runtime"

	"github.com/tangledbytes/reika/executor"
	"github.com/tangledbytes/reika/internal/affinity"
	"github.com/tangledbytes/reika/internal/rlog"
	"github.com/tangledbytes/reika/reactor"
)

// Worker owns one Executor and one Reactor for the lifetime of whichever
// goroutine calls Run. Like its two halves, a Worker must never be touched
// from more than one goroutine.
type Worker struct {
	Executor *executor.Executor
	Reactor  *reactor.Reactor

	// pinCPU is nil unless WithCPU was given; pinning happens in Run, not
	// New, since it's Run's caller's goroutine that needs to be pinned.
	pinCPU *int
}

// Option configures a Worker at construction time.
type Option func(*options)

type options struct {
	ringEntries uint32
	log         rlog.Logger
	execOpts    []executor.Option
	reactorOpts []reactor.Option
	cpu         *int
}

// WithRingEntries sets the reactor's ring size (default 1024).
func WithRingEntries(n uint32) Option {
	return func(o *options) { o.ringEntries = n }
}

// WithLogger installs a structured logger on the Worker's Reactor (the
// Executor has nothing to log — it carries no logger of its own).
func WithLogger(l rlog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithCPU pins the goroutine that calls Run to the given CPU, via
// runtime.LockOSThread + internal/affinity.Pin. This is the Go equivalent
// of replicating the whole runtime across CPUs, one instance per core,
// instead of sharing one runtime across cores.
func WithCPU(cpu int) Option {
	return func(o *options) { o.cpu = &cpu }
}

// New constructs a Worker. It does not start running anything; call
// Worker.Run from the goroutine that should own it.
func New(opts ...Option) (*Worker, error) {
	cfg := &options{ringEntries: 1024, log: rlog.Noop()}
	for _, opt := range opts {
		opt(cfg)
	}

	r, err := reactor.New(cfg.ringEntries,
		append([]reactor.Option{reactor.WithLogger(cfg.log), reactor.WithCoopTaskrun(), reactor.WithSingleIssuer()}, cfg.reactorOpts...)...)
	if err != nil {
		return nil, err
	}

	e := executor.New(cfg.execOpts...)

	return &Worker{Executor: e, Reactor: r, pinCPU: cfg.cpu}, nil
}

// Spawn enqueues ref for its first poll on this Worker's Executor.
func (w *Worker) Spawn(ref executor.TaskRef) { w.Executor.Spawn(ref) }

// Run drives the Worker's Executor until every spawned task has
// completed, using the Reactor's opportunistic Flush as the post-drain
// hook, followed by RunForNS(quantaNS) to block in the kernel whenever
// live tasks remain and the Reactor has requests outstanding — also when
// that Flush has just woken tasks that are waiting in the run queue.
//
// A Reactor error is recorded and returned once the Executor's Run
// returns; it does not stop the Executor, which keeps running rounds until
// its live tasks have completed.
func (w *Worker) Run(quantaNS uint32) error {
	if w.pinCPU != nil {
		runtime.LockOSThread()
		if err := affinity.Pin(*w.pinCPU); err != nil {
			return err
		}
	}

	var runErr error
	w.Executor.Run(func() {
		if err := w.Reactor.Run(); err != nil {
			runErr = err
			return
		}
		if w.Executor.Live() > 0 && w.Reactor.Outstanding() > 0 {
			if err := w.Reactor.RunForNS(quantaNS); err != nil {
				runErr = err
			}
		}
	})
	return runErr
}
