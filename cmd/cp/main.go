// Command cp copies src to dest using one reika.Worker: open both files,
// then alternate read/write in 4096-byte chunks until the source is
// exhausted, then close both.
package main

import (
	"fmt"
	"os"

	"github.com/tangledbytes/reika"
	"github.com/tangledbytes/reika/executor"
	"github.com/tangledbytes/reika/ops"
)

type cpState int

const (
	cpOpeningSrc cpState = iota
	cpOpeningDest
	cpReading
	cpWriting
	cpClosingSrc
	cpClosingDest
	cpDone
)

type cpTask struct {
	w          *reika.Worker
	src, dest  string
	state      cpState
	srcFd      int
	destFd     int
	buf        [4096]byte
	readN      int32
	openSrc    *ops.Future[int32]
	openDest   *ops.Future[int32]
	read       *ops.Future[int32]
	write      *ops.Future[int32]
	closeSrc   *ops.Future[int32]
	closeDest  *ops.Future[int32]
	err        error
}

func (t *cpTask) Poll(waker executor.Waker) bool {
	for {
		switch t.state {
		case cpOpeningSrc:
			if t.openSrc == nil {
				openSrc, err := ops.Open(t.w.Reactor, t.src, os.O_RDONLY, 0)
				if err != nil {
					t.err = err
					return true
				}
				t.openSrc = openSrc
			}
			if !t.openSrc.Poll(waker) {
				return false
			}
			fd, err := t.openSrc.Result()
			if err != nil {
				t.err = err
				return true
			}
			t.srcFd = int(fd)
			t.state = cpOpeningDest

		case cpOpeningDest:
			if t.openDest == nil {
				openDest, err := ops.Open(t.w.Reactor, t.dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o777)
				if err != nil {
					t.err = err
					t.state = cpClosingSrc
					continue
				}
				t.openDest = openDest
			}
			if !t.openDest.Poll(waker) {
				return false
			}
			fd, err := t.openDest.Result()
			if err != nil {
				t.err = err
				t.state = cpClosingSrc
				continue
			}
			t.destFd = int(fd)
			t.state = cpReading

		case cpReading:
			if t.read == nil {
				t.read = ops.Read(t.w.Reactor, t.srcFd, t.buf[:])
			}
			if !t.read.Poll(waker) {
				return false
			}
			n, err := t.read.Result()
			t.read = nil
			if err != nil {
				t.err = err
				t.state = cpClosingDest
				continue
			}
			t.readN = n
			if n == 0 {
				t.state = cpClosingDest
				continue
			}
			t.state = cpWriting

		case cpWriting:
			if t.write == nil {
				t.write = ops.Write(t.w.Reactor, t.destFd, t.buf[:t.readN])
			}
			if !t.write.Poll(waker) {
				return false
			}
			_, err := t.write.Result()
			t.write = nil
			if err != nil {
				t.err = err
				t.state = cpClosingDest
				continue
			}
			if int(t.readN) < len(t.buf) {
				t.state = cpClosingDest
				continue
			}
			t.state = cpReading

		case cpClosingDest:
			if t.closeDest == nil {
				t.closeDest = ops.Close(t.w.Reactor, t.destFd)
			}
			if !t.closeDest.Poll(waker) {
				return false
			}
			_, err := t.closeDest.Result()
			if err != nil && t.err == nil {
				t.err = err
			}
			t.state = cpClosingSrc

		case cpClosingSrc:
			if t.closeSrc == nil {
				t.closeSrc = ops.Close(t.w.Reactor, t.srcFd)
			}
			if !t.closeSrc.Poll(waker) {
				return false
			}
			_, err := t.closeSrc.Result()
			if err != nil && t.err == nil {
				t.err = err
			}
			t.state = cpDone

		case cpDone:
			return true
		}
	}
}

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: cp <src> <dest>")
		os.Exit(1)
	}

	w, err := reika.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to start worker:", err)
		os.Exit(1)
	}

	task := &cpTask{w: w, src: os.Args[1], dest: os.Args[2]}
	var storage executor.TaskStorage[*cpTask]
	w.Spawn(storage.Prepare(task))

	if err := w.Run(10_000); err != nil {
		fmt.Fprintln(os.Stderr, "reactor error:", err)
		os.Exit(1)
	}
	if task.err != nil {
		fmt.Fprintln(os.Stderr, "cp:", task.err)
		os.Exit(1)
	}
}
