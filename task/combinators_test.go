package task

import "testing"

func TestJoin2WaitsForBoth(t *testing.T) {
	a := &pendingOnce[int]{value: 1}
	b := &pendingOnce[string]{value: "b"}
	j := Join2[int, string](a, b)
	cx := &Context{Waker: NewWaker(func() {})}

	if _, done := j.Poll(cx); done {
		t.Fatal("expected pending while both sides are still pending")
	}
	out, done := j.Poll(cx)
	if !done {
		t.Fatal("expected both sides to resolve on the second poll")
	}
	if out.A != 1 || out.B != "b" {
		t.Fatalf("unexpected pair: %+v", out)
	}
}

func TestSelect2FirstReady(t *testing.T) {
	a := FutureFunc[int](func(cx *Context) (int, bool) { return 7, true })
	b := &pendingOnce[int]{value: 9}
	s := Select2[int, int](a, b)
	cx := &Context{Waker: NewWaker(func() {})}

	out, done := s.Poll(cx)
	if !done {
		t.Fatal("expected Select2 to resolve once one side is ready")
	}
	if !out.AOK || out.A != 7 {
		t.Fatalf("expected A side to win with 7, got %+v", out)
	}
}

func TestJoinAllPreservesOrder(t *testing.T) {
	futs := []Future[int]{
		&pendingOnce[int]{value: 1},
		FutureFunc[int](func(cx *Context) (int, bool) { return 2, true }),
		&pendingOnce[int]{value: 3},
	}
	j := JoinAll[int](futs)
	cx := &Context{Waker: NewWaker(func() {})}

	for {
		out, done := j.Poll(cx)
		if done {
			if len(out) != 3 || out[0] != 1 || out[1] != 2 || out[2] != 3 {
				t.Fatalf("expected [1 2 3], got %v", out)
			}
			return
		}
	}
}
