package reactor

import "github.com/tangledbytes/reika/internal/rlog"

// config holds the resolved state of every Option applied to a Reactor.
type config struct {
	entries      uint32
	log          rlog.Logger
	coopTaskrun  bool
	singleIssuer bool
}

// Option configures a Reactor at construction time.
type Option func(*config)

// WithLogger installs a structured logger. The default is rlog.Noop().
func WithLogger(l rlog.Logger) Option {
	return func(c *config) { c.log = l }
}

// WithCoopTaskrun enables IORING_SETUP_COOP_TASKRUN: the kernel defers
// waking the submitting task for completions until it would otherwise
// re-enter the kernel, which is a pure win for a reactor that's always
// about to call submit_and_wait again anyway.
func WithCoopTaskrun() Option {
	return func(c *config) { c.coopTaskrun = true }
}

// WithSingleIssuer enables IORING_SETUP_SINGLE_ISSUER: an optimization
// hint that only one thread will ever submit to this ring, which holds
// unconditionally for a Reactor given its goroutine-affinity contract.
func WithSingleIssuer() Option {
	return func(c *config) { c.singleIssuer = true }
}

// resolveOptions applies opts over a ring of the given entry count.
func resolveOptions(entries uint32, opts []Option) *config {
	c := &config{
		entries: entries,
		log:     rlog.Noop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}
