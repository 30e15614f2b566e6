package ops

import (
	"unsafe"

	"github.com/pawelgaczynski/giouring"

	"github.com/tangledbytes/reika/reactor"
)

// noOffset is the sentinel io_uring uses for "use (and advance) the file's
// current offset" on Read/Write — the kernel casts it to a signed loff_t,
// producing -1.
const noOffset = ^uint64(0)

// Read reads into buf from fd's current file offset.
func Read(r *reactor.Reactor, fd int, buf []byte) *Future[int32] {
	return readAt(r, fd, buf, noOffset)
}

// ReadAt reads into buf starting at the given absolute file offset,
// leaving fd's own offset untouched.
func ReadAt(r *reactor.Reactor, fd int, buf []byte, offset int64) *Future[int32] {
	return readAt(r, fd, buf, uint64(offset))
}

func readAt(r *reactor.Reactor, fd int, buf []byte, offset uint64) *Future[int32] {
	var ptr unsafe.Pointer
	if len(buf) > 0 {
		ptr = unsafe.Pointer(&buf[0])
	}
	return newFuture[int32](r, func(sqe *giouring.SubmissionQueueEntry) {
		sqe.PrepareRead(int32(fd), ptr, uint32(len(buf)), offset)
	}, func(res int32) (int32, error) {
		return toError("read", res)
	})
}

// Write writes buf to fd at its current file offset.
func Write(r *reactor.Reactor, fd int, buf []byte) *Future[int32] {
	return writeAt(r, fd, buf, noOffset)
}

// WriteAt writes buf starting at the given absolute file offset, leaving
// fd's own offset untouched.
func WriteAt(r *reactor.Reactor, fd int, buf []byte, offset int64) *Future[int32] {
	return writeAt(r, fd, buf, uint64(offset))
}

func writeAt(r *reactor.Reactor, fd int, buf []byte, offset uint64) *Future[int32] {
	var ptr unsafe.Pointer
	if len(buf) > 0 {
		ptr = unsafe.Pointer(&buf[0])
	}
	return newFuture[int32](r, func(sqe *giouring.SubmissionQueueEntry) {
		sqe.PrepareWrite(int32(fd), ptr, uint32(len(buf)), offset)
	}, func(res int32) (int32, error) {
		return toError("write", res)
	})
}
