package executor

// fakeFuture is a minimal, fully-controllable Future for exercising the
// executor without any kernel/IO dependency. pending, when true, causes
// Poll to stash the Waker and report not-ready; flipping pending to false
// and invoking the stashed waker drives completion on the next drain.
type fakeFuture struct {
	pending bool
	polls   int
	waker   *Waker
}

func (f *fakeFuture) Poll(w Waker) bool {
	f.polls++
	if f.pending {
		f.waker = &w
		return false
	}
	return true
}

// wake invokes whatever Waker was captured by the most recent pending Poll,
// or is a no-op if none was captured.
func (f *fakeFuture) wake() {
	if f.waker != nil {
		f.waker.Wake()
	}
}
