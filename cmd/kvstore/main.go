// Command kvstore is a minimal append-only key/value store built directly
// on the ops package: Put appends a length-prefixed record to a single
// active file and fsyncs it; Get looks up the in-memory index (rebuilt at
// startup by scanning the whole file) and reads the value back with
// ReadAt. It completes the storage layer the original runtime stubbed out
// with a bare `todo!()`.
package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"github.com/tangledbytes/reika"
	"github.com/tangledbytes/reika/executor"
	"github.com/tangledbytes/reika/ops"
)

// recordHeaderSize is the fixed-size prefix of every appended record: a
// key length and a value length (each uint32), followed by the key bytes
// and value bytes back to back. Rebuilding the index is just walking
// these headers front to back.
const recordHeaderSize = 8

type indexEntry struct {
	valuePos int64
	valueLen uint32
}

// store is the blocking, synchronous-looking facade kvstore's REPL uses;
// internally every operation is one small task driven to completion by a
// dedicated reika.Worker before the call returns. A long-lived server
// would instead spawn many of these tasks concurrently onto one shared
// Worker — kvstore's REPL is deliberately simple.
type store struct {
	w     *reika.Worker
	fd    int
	index map[string]indexEntry
	tail  int64
}

func openStore(w *reika.Worker, path string) (*store, error) {
	task := &openTask{w: w, path: path}
	runToCompletion(w, task)
	if task.err != nil {
		return nil, task.err
	}

	s := &store{w: w, fd: task.fd, index: make(map[string]indexEntry)}
	if err := s.rebuildIndex(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *store) rebuildIndex() error {
	var pos int64
	for {
		hdrTask := &readAtTask{w: s.w, fd: s.fd, n: recordHeaderSize, offset: pos}
		runToCompletion(s.w, hdrTask)
		if hdrTask.err != nil {
			return hdrTask.err
		}
		if hdrTask.n == 0 {
			break
		}
		keyLen := binary.LittleEndian.Uint32(hdrTask.buf[0:4])
		valueLen := binary.LittleEndian.Uint32(hdrTask.buf[4:8])

		bodyTask := &readAtTask{w: s.w, fd: s.fd, n: int(keyLen + valueLen), offset: pos + recordHeaderSize}
		runToCompletion(s.w, bodyTask)
		if bodyTask.err != nil {
			return bodyTask.err
		}
		key := string(bodyTask.buf[:keyLen])
		s.index[key] = indexEntry{
			valuePos: pos + recordHeaderSize + int64(keyLen),
			valueLen: valueLen,
		}
		pos += recordHeaderSize + int64(keyLen) + int64(valueLen)
	}
	s.tail = pos
	return nil
}

func (s *store) put(key, value string) error {
	buf := make([]byte, recordHeaderSize+len(key)+len(value))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(key)))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(value)))
	copy(buf[8:], key)
	copy(buf[8+len(key):], value)

	task := &writeAtTask{w: s.w, fd: s.fd, buf: buf, offset: s.tail}
	runToCompletion(s.w, task)
	if task.err != nil {
		return task.err
	}

	fsyncTask := &fsyncTask{w: s.w, fd: s.fd}
	runToCompletion(s.w, fsyncTask)
	if fsyncTask.err != nil {
		return fsyncTask.err
	}

	s.index[key] = indexEntry{valuePos: s.tail + recordHeaderSize + int64(len(key)), valueLen: uint32(len(value))}
	s.tail += int64(len(buf))
	return nil
}

func (s *store) get(key string) (string, bool, error) {
	entry, ok := s.index[key]
	if !ok {
		return "", false, nil
	}
	task := &readAtTask{w: s.w, fd: s.fd, n: int(entry.valueLen), offset: entry.valuePos}
	runToCompletion(s.w, task)
	if task.err != nil {
		return "", false, task.err
	}
	return string(task.buf[:task.n]), true, nil
}

// runToCompletion spawns a single task and drives the Worker until no live
// task remains, i.e. until that task has completed. kvstore never has more than one in-flight
// operation, so each call is its own tiny Run.
func runToCompletion[F executor.Future](w *reika.Worker, f F) {
	var storage executor.TaskStorage[F]
	w.Spawn(storage.Prepare(f))
	w.Run(10_000)
}

type openTask struct {
	w      *reika.Worker
	path   string
	future *ops.Future[int32]
	fd     int
	err    error
}

func (t *openTask) Poll(waker executor.Waker) bool {
	if t.future == nil {
		future, err := ops.Open(t.w.Reactor, t.path, os.O_RDWR|os.O_CREATE, 0o644)
		if err != nil {
			t.err = err
			return true
		}
		t.future = future
	}
	if !t.future.Poll(waker) {
		return false
	}
	fd, err := t.future.Result()
	t.fd, t.err = int(fd), err
	return true
}

type readAtTask struct {
	w      *reika.Worker
	fd     int
	n      int
	offset int64
	buf    [8192]byte
	future *ops.Future[int32]
	err    error
}

func (t *readAtTask) Poll(waker executor.Waker) bool {
	if t.future == nil {
		t.future = ops.ReadAt(t.w.Reactor, t.fd, t.buf[:t.n], t.offset)
	}
	if !t.future.Poll(waker) {
		return false
	}
	n, err := t.future.Result()
	t.n, t.err = int(n), err
	return true
}

type writeAtTask struct {
	w      *reika.Worker
	fd     int
	buf    []byte
	offset int64
	future *ops.Future[int32]
	err    error
}

func (t *writeAtTask) Poll(waker executor.Waker) bool {
	if t.future == nil {
		t.future = ops.WriteAt(t.w.Reactor, t.fd, t.buf, t.offset)
	}
	if !t.future.Poll(waker) {
		return false
	}
	_, err := t.future.Result()
	t.err = err
	return true
}

type fsyncTask struct {
	w      *reika.Worker
	fd     int
	future *ops.Future[int32]
	err    error
}

func (t *fsyncTask) Poll(waker executor.Waker) bool {
	if t.future == nil {
		t.future = ops.Fsync(t.w.Reactor, t.fd)
	}
	if !t.future.Poll(waker) {
		return false
	}
	_, err := t.future.Result()
	t.err = err
	return true
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: kvstore <path>")
		os.Exit(1)
	}

	w, err := reika.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to start worker:", err)
		os.Exit(1)
	}

	s, err := openStore(w, os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to open store:", err)
		os.Exit(1)
	}

	fmt.Println("commands: put <key> <value> | get <key> | quit")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.SplitN(strings.TrimSpace(scanner.Text()), " ", 3)
		if len(fields) == 0 || fields[0] == "" {
			continue
		}
		switch fields[0] {
		case "put":
			if len(fields) != 3 {
				fmt.Println("usage: put <key> <value>")
				continue
			}
			if err := s.put(fields[1], fields[2]); err != nil {
				fmt.Println("error:", err)
			}
		case "get":
			if len(fields) != 2 {
				fmt.Println("usage: get <key>")
				continue
			}
			value, ok, err := s.get(fields[1])
			if err != nil {
				fmt.Println("error:", err)
			} else if !ok {
				fmt.Println("(not found)")
			} else {
				fmt.Println(value)
			}
		case "quit":
			return
		default:
			fmt.Println("unknown command")
		}
	}
}
