// Command tcpecho listens on 127.0.0.1:2310 and echoes back whatever each
// connected client sends, replicating the entire runtime — one
// reika.Worker, one listening socket, one connection pool — across every
// available CPU, each instance pinned to its own core via
// internal/affinity. This mirrors the original runtime's
// `#[reika::macros::entry(replicate = 2)]` tcpecho example; Go has no
// macro layer, so the replication loop and the fixed-capacity connection
// pool are spelled out directly instead of generated.
package main

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/tangledbytes/reika"
	"github.com/tangledbytes/reika/executor"
	"github.com/tangledbytes/reika/ops"
)

const (
	listenAddr = "127.0.0.1"
	listenPort = 2310
	poolSize   = 5000
)

// connTask echoes everything it reads back to the client until either side
// closes the connection.
type connTask struct {
	w  *reika.Worker
	fd int

	state connState
	buf   [1024]byte
	n     int32

	read  *ops.Future[int32]
	send  *ops.Future[int32]
	close *ops.Future[int32]
}

type connState int

const (
	connReading connState = iota
	connSending
	connClosing
	connDone
)

func (t *connTask) Poll(waker executor.Waker) bool {
	for {
		switch t.state {
		case connReading:
			if t.read == nil {
				t.read = ops.Recv(t.w.Reactor, t.fd, t.buf[:])
			}
			if !t.read.Poll(waker) {
				return false
			}
			n, err := t.read.Result()
			t.read = nil
			if err != nil || n == 0 {
				t.state = connClosing
				continue
			}
			t.n = n
			t.state = connSending

		case connSending:
			if t.send == nil {
				t.send = ops.Send(t.w.Reactor, t.fd, t.buf[:t.n])
			}
			if !t.send.Poll(waker) {
				return false
			}
			_, err := t.send.Result()
			t.send = nil
			if err != nil {
				t.state = connClosing
				continue
			}
			t.state = connReading

		case connClosing:
			if t.close == nil {
				t.close = ops.Close(t.w.Reactor, t.fd)
			}
			if !t.close.Poll(waker) {
				return false
			}
			t.close.Result()
			t.state = connDone

		case connDone:
			return true
		}
	}
}

// listener drives the accept loop: one Accept at a time, handing each new
// connection off to the pool.
type listener struct {
	w        *reika.Worker
	fd       int
	pool     *executor.TaskPool[*connTask]
	accept   *ops.Future[int32]
	exhausts int
}

func (l *listener) Poll(waker executor.Waker) bool {
	for {
		if l.accept == nil {
			l.accept = ops.Accept(l.w.Reactor, l.fd)
		}
		if !l.accept.Poll(waker) {
			return false
		}
		connFd, err := l.accept.Result()
		if err != nil {
			l.accept = nil
			fmt.Fprintln(os.Stderr, "accept:", err)
			continue
		}

		ref, err := l.pool.Prepare(&connTask{w: l.w, fd: int(connFd)})
		if err != nil {
			// Pool exhausted: yield the connection's turn and retry
			// rather than dropping it, mirroring the original's
			// "yield_now and try the spawn again" retry loop. The
			// completed accept future is kept, so the next poll reports
			// the same connFd again.
			l.exhausts++
			waker.Wake()
			return false
		}
		l.accept = nil
		l.w.Executor.Spawn(ref)
	}
}

func runWorker(cpu int, wg *sync.WaitGroup) {
	defer wg.Done()

	w, err := reika.New(reika.WithCPU(cpu))
	if err != nil {
		fmt.Fprintln(os.Stderr, "worker", cpu, "failed to start:", err)
		return
	}

	sockFd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		fmt.Fprintln(os.Stderr, "worker", cpu, "socket:", err)
		return
	}
	if err := unix.SetsockoptInt(sockFd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		fmt.Fprintln(os.Stderr, "worker", cpu, "setsockopt:", err)
		return
	}
	if err := unix.SetsockoptInt(sockFd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
		fmt.Fprintln(os.Stderr, "worker", cpu, "setsockopt reuseport:", err)
		return
	}
	addr := &unix.SockaddrInet4{Port: listenPort}
	copy(addr.Addr[:], []byte{127, 0, 0, 1})
	if err := unix.Bind(sockFd, addr); err != nil {
		fmt.Fprintln(os.Stderr, "worker", cpu, "bind:", err)
		return
	}
	if err := unix.Listen(sockFd, unix.SOMAXCONN); err != nil {
		fmt.Fprintln(os.Stderr, "worker", cpu, "listen:", err)
		return
	}

	pool := executor.NewTaskPool[*connTask](poolSize)
	l := &listener{w: w, fd: sockFd, pool: pool}
	var storage executor.TaskStorage[*listener]
	w.Spawn(storage.Prepare(l))

	if err := w.Run(10_000); err != nil {
		fmt.Fprintln(os.Stderr, "worker", cpu, "reactor error:", err)
	}
}

func main() {
	n := runtime.NumCPU()
	fmt.Printf("listening on %s:%d across %d worker(s)\n", listenAddr, listenPort, n)

	var wg sync.WaitGroup
	wg.Add(n)
	for cpu := 0; cpu < n; cpu++ {
		go runWorker(cpu, &wg)
	}
	wg.Wait()
}
