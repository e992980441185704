package task

import "testing"

func TestWakerWake(t *testing.T) {
	calls := 0
	w := NewWaker(func() { calls++ })
	if w.WasWoken() {
		t.Fatal("new waker should not report woken")
	}
	w.Wake()
	w.Wake()
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	if !w.WasWoken() {
		t.Fatal("expected WasWoken to be true after Wake")
	}
	w.Reset()
	if w.WasWoken() {
		t.Fatal("expected WasWoken to be false after Reset")
	}
}

func TestWakerNilFunc(t *testing.T) {
	w := NewWaker(nil)
	w.Wake() // must not panic, and a no-op callback does not flip the flag
	if w.WasWoken() {
		t.Fatal("expected WasWoken false when the underlying callback is nil")
	}
}

func TestWakerNilReceiver(t *testing.T) {
	var w *Waker
	w.Wake() // must not panic
	if w.WasWoken() {
		t.Fatal("nil waker should never report woken")
	}
	w.Reset() // must not panic
}
