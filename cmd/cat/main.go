// Command cat prints a file's contents to stdout, driven entirely through
// one reika.Worker: open, a read loop, then close, each step an io_uring
// operation polled to completion before the next one is submitted.
//
// It is a literal translation of the original runtime's cat example —
// Go has no async/await, so the coroutine becomes an explicit state
// machine (see catTask.Poll) instead of a function suspended at await
// points, but the sequence of operations is unchanged.
package main

import (
	"fmt"
	"os"

	"github.com/tangledbytes/reika"
	"github.com/tangledbytes/reika/executor"
	"github.com/tangledbytes/reika/ops"
)

type catState int

const (
	catOpening catState = iota
	catReading
	catClosing
	catDone
)

type catTask struct {
	w    *reika.Worker
	path string

	state catState
	fd    int
	buf   [4096]byte

	open  *ops.Future[int32]
	read  *ops.Future[int32]
	close *ops.Future[int32]

	err error
}

func (t *catTask) Poll(waker executor.Waker) bool {
	for {
		switch t.state {
		case catOpening:
			if t.open == nil {
				open, err := ops.Open(t.w.Reactor, t.path, os.O_RDONLY, 0)
				if err != nil {
					t.err = err
					return true
				}
				t.open = open
			}
			if !t.open.Poll(waker) {
				return false
			}
			fd, err := t.open.Result()
			if err != nil {
				t.err = err
				return true
			}
			t.fd = int(fd)
			t.state = catReading

		case catReading:
			if t.read == nil {
				t.read = ops.Read(t.w.Reactor, t.fd, t.buf[:])
			}
			if !t.read.Poll(waker) {
				return false
			}
			n, err := t.read.Result()
			if err != nil {
				t.err = err
				t.state = catClosing
				continue
			}
			os.Stdout.Write(t.buf[:n])
			if int(n) < len(t.buf) {
				t.state = catClosing
				continue
			}
			t.read = nil

		case catClosing:
			if t.close == nil {
				t.close = ops.Close(t.w.Reactor, t.fd)
			}
			if !t.close.Poll(waker) {
				return false
			}
			_, err := t.close.Result()
			if err != nil && t.err == nil {
				t.err = err
			}
			t.state = catDone

		case catDone:
			return true
		}
	}
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: cat <path>")
		os.Exit(1)
	}

	w, err := reika.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to start worker:", err)
		os.Exit(1)
	}

	task := &catTask{w: w, path: os.Args[1]}
	var storage executor.TaskStorage[*catTask]
	w.Spawn(storage.Prepare(task))

	if err := w.Run(10_000); err != nil {
		fmt.Fprintln(os.Stderr, "reactor error:", err)
		os.Exit(1)
	}
	if task.err != nil {
		fmt.Fprintln(os.Stderr, "cat:", task.err)
		os.Exit(1)
	}
}
