package netio

import (
	"testing"

	"github.com/kelthar/nebula/runtime"
	"github.com/kelthar/nebula/task"
)

func TestResolveTCPAddrLiteralFastPath(t *testing.T) {
	fut, err := ResolveTCPAddr("127.0.0.1:9000")
	if err != nil {
		t.Fatalf("ResolveTCPAddr: %v", err)
	}
	cx := &task.Context{Waker: task.NewWaker(func() {})}
	result, done := fut.Poll(cx)
	if !done {
		t.Fatal("expected the literal-address fast path to resolve immediately")
	}
	if result.Err != nil || len(result.Addrs) != 1 || result.Addrs[0].Port != 9000 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestResolveTCPAddrHostnameUsesThreadPool(t *testing.T) {
	rt, err := runtime.New()
	if err != nil {
		t.Fatalf("runtime.New: %v", err)
	}
	defer rt.Close()

	fut, err := ResolveTCPAddr("localhost:9001")
	if err != nil {
		t.Fatalf("ResolveTCPAddr: %v", err)
	}
	got := runtime.BlockOn[ResolveResult](rt, fut)
	if got.Err != nil {
		t.Fatalf("unexpected resolution error: %v", got.Err)
	}
	if len(got.Addrs) == 0 {
		t.Fatal("expected at least one address for localhost")
	}
}
