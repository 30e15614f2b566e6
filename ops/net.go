package ops

import (
	"unsafe"

	"github.com/pawelgaczynski/giouring"

	"github.com/tangledbytes/reika/reactor"
)

// Socket creates a new socket of the given domain/type/protocol, returning
// its file descriptor.
func Socket(r *reactor.Reactor, domain, typ, protocol int) *Future[int32] {
	return newFuture[int32](r, func(sqe *giouring.SubmissionQueueEntry) {
		sqe.PrepareSocket(int32(domain), int32(typ), int32(protocol), 0)
	}, func(res int32) (int32, error) {
		return toError("socket", res)
	})
}

// Accept accepts one pending connection on the listening socket fd,
// returning the new connection's file descriptor. The peer address is
// discarded (sockaddr is not populated) — this runtime never needed it
// beyond what Non-goals already excluded.
func Accept(r *reactor.Reactor, fd int) *Future[int32] {
	return newFuture[int32](r, func(sqe *giouring.SubmissionQueueEntry) {
		sqe.PrepareAccept(int32(fd), 0, nil, 0)
	}, func(res int32) (int32, error) {
		return toError("accept", res)
	})
}

// Send writes buf to the connected socket fd.
func Send(r *reactor.Reactor, fd int, buf []byte) *Future[int32] {
	var ptr unsafe.Pointer
	if len(buf) > 0 {
		ptr = unsafe.Pointer(&buf[0])
	}
	return newFuture[int32](r, func(sqe *giouring.SubmissionQueueEntry) {
		sqe.PrepareSend(int32(fd), ptr, uint32(len(buf)), 0)
	}, func(res int32) (int32, error) {
		return toError("send", res)
	})
}

// Recv reads from the connected socket fd into buf.
func Recv(r *reactor.Reactor, fd int, buf []byte) *Future[int32] {
	var ptr unsafe.Pointer
	if len(buf) > 0 {
		ptr = unsafe.Pointer(&buf[0])
	}
	return newFuture[int32](r, func(sqe *giouring.SubmissionQueueEntry) {
		sqe.PrepareRecv(int32(fd), ptr, uint32(len(buf)), 0)
	}, func(res int32) (int32, error) {
		return toError("recv", res)
	})
}
