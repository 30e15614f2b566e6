// Package affinity pins the calling goroutine's OS thread to a specific
// CPU. It supplements a feature the distilled specification dropped: the
// original runtime this module generalizes supported replicating its
// entire single-threaded runtime across CPUs, one pinned instance per
// core, instead of sharing one runtime across cores via work-stealing.
package affinity

import "golang.org/x/sys/unix"

// Pin binds the calling OS thread to cpu. The caller must have already
// called runtime.LockOSThread — Pin only sets the affinity mask of
// whichever thread is running when it's called, and Go will happily move
// an unlocked goroutine to a different thread moments later, silently
// undoing the pin.
func Pin(cpu int) error {
	var mask unix.CPUSet
	mask.Set(cpu)
	return unix.SchedSetaffinity(0, &mask)
}
