// Package asyncio renders original_source/src/io.rs's impl_async_read!/
// impl_async_write! macros as a Go code pattern rather than codegen:
// spec.md §9 explicitly calls this out as "a code pattern, not a
// trait" — there is no generics-friendly way to express "any struct
// with a $reader field and a $registration field" in Go, so instead of
// a macro this package offers two free functions, PollRead and
// PollWrite, that a type embeds calls to from its own Poll method. Any
// netio type (e.g. TcpStream) follows the same pattern: hold a raw fd,
// a non-blocking read/write closure, and a *reactor.Registration, and
// delegate to these helpers.
package asyncio

import (
	"errors"

	"golang.org/x/sys/unix"

	"github.com/kelthar/nebula/internal/reactor"
	"github.com/kelthar/nebula/task"
)

// PollRead attempts one non-blocking read via readOnce. On
// EAGAIN/EWOULDBLOCK it registers cx.Waker for Read readiness on reg
// and reports pending=true. Any other error, including io.EOF-style
// zero-byte reads, is returned as-is with pending=false.
func PollRead(reg *reactor.Registration, cx *task.Context, readOnce func([]byte) (int, error), buf []byte) (n int, pending bool, err error) {
	n, err = readOnce(buf)
	if err == nil {
		return n, false, nil
	}
	if isWouldBlock(err) {
		reg.WakeWhen(reactor.Read, cx.Waker)
		return 0, true, nil
	}
	return 0, false, err
}

// PollWrite is PollRead's write-side counterpart.
func PollWrite(reg *reactor.Registration, cx *task.Context, writeOnce func([]byte) (int, error), buf []byte) (n int, pending bool, err error) {
	n, err = writeOnce(buf)
	if err == nil {
		return n, false, nil
	}
	if isWouldBlock(err) {
		reg.WakeWhen(reactor.Write, cx.Waker)
		return 0, true, nil
	}
	return 0, false, err
}

func isWouldBlock(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK)
}

// Result is the outcome of one read or write: the byte count plus any
// error (including a non-EAGAIN syscall failure).
type Result struct {
	N   int
	Err error
}

// ReadFuture adapts one PollRead call into a task.Future[Result], for
// callers that want a single read expressed as an awaitable rather
// than calling PollRead from their own Poll method directly.
type ReadFuture struct {
	Reg      *reactor.Registration
	ReadOnce func([]byte) (int, error)
	Buf      []byte

	result Result
	done   bool
}

func (f *ReadFuture) Poll(cx *task.Context) (Result, bool) {
	if f.done {
		return f.result, true
	}
	n, pending, err := PollRead(f.Reg, cx, f.ReadOnce, f.Buf)
	if pending {
		return Result{}, false
	}
	f.result, f.done = Result{N: n, Err: err}, true
	return f.result, true
}

// WriteFuture is ReadFuture's write-side counterpart.
type WriteFuture struct {
	Reg       *reactor.Registration
	WriteOnce func([]byte) (int, error)
	Buf       []byte

	result Result
	done   bool
}

func (f *WriteFuture) Poll(cx *task.Context) (Result, bool) {
	if f.done {
		return f.result, true
	}
	n, pending, err := PollWrite(f.Reg, cx, f.WriteOnce, f.Buf)
	if pending {
		return Result{}, false
	}
	f.result, f.done = Result{N: n, Err: err}, true
	return f.result, true
}
