package ops

import (
	"fmt"
	"strings"

	"github.com/pawelgaczynski/giouring"
	"golang.org/x/sys/unix"

	"github.com/tangledbytes/reika/reactor"
)

// Open opens pathname relative to the current working directory (AT_FDCWD)
// with the given flags/mode, returning the new file descriptor.
//
// pathname is rejected here, at construction time, if it contains an
// embedded NUL byte — a NUL-terminated copy is made instead of relying on
// the caller's string, and that copy is retained by the returned Future's
// prepare closure for as long as the Future itself lives, so it stays
// valid for the whole submission lifetime rather than just until Open
// returns.
func Open(r *reactor.Reactor, pathname string, flags int, mode uint32) (*Future[int32], error) {
	if strings.IndexByte(pathname, 0) >= 0 {
		return nil, fmt.Errorf("reika/ops: pathname %q contains a NUL byte", pathname)
	}
	path := append([]byte(pathname), 0)

	return newFuture[int32](r, func(sqe *giouring.SubmissionQueueEntry) {
		sqe.PrepareOpenat(unix.AT_FDCWD, string(path[:len(path)-1]), uint32(flags), mode)
	}, func(res int32) (int32, error) {
		return toError("openat", res)
	}), nil
}

// Close closes fd.
func Close(r *reactor.Reactor, fd int) *Future[int32] {
	return newFuture[int32](r, func(sqe *giouring.SubmissionQueueEntry) {
		sqe.PrepareClose(int32(fd))
	}, func(res int32) (int32, error) {
		return toError("close", res)
	})
}

// Fsync flushes fd's data and metadata to the underlying storage device.
func Fsync(r *reactor.Reactor, fd int) *Future[int32] {
	return newFuture[int32](r, func(sqe *giouring.SubmissionQueueEntry) {
		sqe.PrepareFsync(int32(fd), 0)
	}, func(res int32) (int32, error) {
		return toError("fsync", res)
	})
}

// Fdatasync flushes fd's data (and only as much metadata as is needed to
// retrieve that data) to the underlying storage device.
func Fdatasync(r *reactor.Reactor, fd int) *Future[int32] {
	return newFuture[int32](r, func(sqe *giouring.SubmissionQueueEntry) {
		sqe.PrepareFsync(int32(fd), giouring.FsyncDatasync)
	}, func(res int32) (int32, error) {
		return toError("fdatasync", res)
	})
}

// Fallocate preallocates len bytes of storage for fd starting at offset,
// using the given fallocate mode bits.
func Fallocate(r *reactor.Reactor, fd int, mode int, offset, length int64) *Future[int32] {
	return newFuture[int32](r, func(sqe *giouring.SubmissionQueueEntry) {
		sqe.PrepareFallocate(int32(fd), uint32(mode), uint64(offset), uint64(length))
	}, func(res int32) (int32, error) {
		return toError("fallocate", res)
	})
}
