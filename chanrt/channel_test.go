package chanrt

import (
	"testing"

	"github.com/kelthar/nebula/task"
)

func mustReady[T any](t *testing.T, fut task.Future[T], cx *task.Context) T {
	t.Helper()
	v, ok := fut.Poll(cx)
	if !ok {
		t.Fatal("expected the future to be ready")
	}
	return v
}

func TestUnboundedSendThenRecv(t *testing.T) {
	tx, rx := NewUnsyncUnbounded[int]()
	cx := &task.Context{Waker: task.NewWaker(func() {})}

	out := mustReady(t, tx.Send(1), cx)
	if out.Err != nil {
		t.Fatalf("unexpected send error: %v", out.Err)
	}

	rv := mustReady(t, rx.Recv(), cx)
	if !rv.Ok || rv.Value != 1 {
		t.Fatalf("unexpected recv: %+v", rv)
	}
}

func TestBoundedSendBlocksWhenFull(t *testing.T) {
	tx, rx := NewUnsyncBounded[int](1)
	cx := &task.Context{Waker: task.NewWaker(func() {})}

	mustReady(t, tx.Send(1), cx)

	second := tx.Send(2)
	if _, ok := second.Poll(cx); ok {
		t.Fatal("expected second send to block on a full, capacity-1 channel")
	}

	rv := mustReady(t, rx.Recv(), cx)
	if rv.Value != 1 {
		t.Fatalf("expected to drain the first value, got %+v", rv)
	}

	out := mustReady(t, second, cx)
	if out.Err != nil {
		t.Fatalf("expected the parked send to complete once space freed: %v", out.Err)
	}
}

func TestRecvOnClosedSenderReportsEndOfStream(t *testing.T) {
	tx, rx := NewUnsyncUnbounded[int]()
	tx.Close()

	cx := &task.Context{Waker: task.NewWaker(func() {})}
	rv := mustReady(t, rx.Recv(), cx)
	if rv.Ok {
		t.Fatal("expected Ok=false once all senders are gone")
	}
}

func TestSendOnClosedReceiverReportsSendError(t *testing.T) {
	tx, rx := NewUnsyncUnbounded[int]()
	rx.Close()

	cx := &task.Context{Waker: task.NewWaker(func() {})}
	out := mustReady(t, tx.Send(1), cx)
	if out.Err == nil || out.Err.Value != 1 {
		t.Fatalf("expected SendError carrying the undelivered value, got %+v", out.Err)
	}
}

func TestClonedSenderKeepsChannelOpen(t *testing.T) {
	tx, rx := NewUnsyncUnbounded[int]()
	tx2 := tx.Clone()
	tx.Close()

	cx := &task.Context{Waker: task.NewWaker(func() {})}
	mustReady(t, tx2.Send(5), cx)

	rv := mustReady(t, rx.Recv(), cx)
	if !rv.Ok || rv.Value != 5 {
		t.Fatalf("expected the surviving clone's send to succeed, got %+v", rv)
	}

	tx2.Close()
	rv2 := mustReady(t, rx.Recv(), cx)
	if rv2.Ok {
		t.Fatal("expected end-of-stream once every clone has closed")
	}
}
