package asyncio

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/kelthar/nebula/internal/reactor"
	"github.com/kelthar/nebula/task"
)

func TestPollReadReturnsPendingOnEAGAIN(t *testing.T) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC); err != nil {
		t.Fatalf("pipe2: %v", err)
	}
	defer unix.Close(fds[0])
	defer unix.Close(fds[1])
	if err := unix.SetNonblock(fds[0], true); err != nil {
		t.Fatalf("setnonblock: %v", err)
	}

	react := reactor.New()
	defer react.Close()
	reg, err := react.Register(fds[0])
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	cx := &task.Context{Waker: task.NewWaker(func() {})}
	buf := make([]byte, 16)
	_, pending, err := PollRead(reg, cx, func(b []byte) (int, error) { return unix.Read(fds[0], b) }, buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pending {
		t.Fatal("expected pending on an empty non-blocking pipe")
	}
}

func TestReadFutureResolvesOnData(t *testing.T) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC); err != nil {
		t.Fatalf("pipe2: %v", err)
	}
	defer unix.Close(fds[0])
	defer unix.Close(fds[1])
	if err := unix.SetNonblock(fds[0], true); err != nil {
		t.Fatalf("setnonblock: %v", err)
	}

	react := reactor.New()
	defer react.Close()
	reg, err := react.Register(fds[0])
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := unix.Write(fds[1], []byte("hi")); err != nil {
		t.Fatalf("write: %v", err)
	}

	buf := make([]byte, 16)
	rf := &ReadFuture{Reg: reg, Buf: buf, ReadOnce: func(b []byte) (int, error) { return unix.Read(fds[0], b) }}
	cx := &task.Context{Waker: task.NewWaker(func() {})}

	result, done := rf.Poll(cx)
	if !done {
		t.Fatal("expected the read to be ready since data was already written")
	}
	if result.Err != nil || string(buf[:result.N]) != "hi" {
		t.Fatalf("unexpected result: %+v", result)
	}
}
