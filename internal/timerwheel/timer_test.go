package timerwheel

import (
	"testing"
	"time"
)

func TestTimerFiresInDeadlineOrder(t *testing.T) {
	base := time.Unix(0, 0)
	now := base
	timer := New(func() time.Time { return now })

	var fired []string
	idLate := timer.Register(base.Add(2 * time.Second))
	idEarly := timer.Register(base.Add(time.Second))
	timer.SetWaker(idLate, func() { fired = append(fired, "late") })
	timer.SetWaker(idEarly, func() { fired = append(fired, "early") })

	now = base.Add(500 * time.Millisecond)
	timer.Tick()
	if len(fired) != 0 {
		t.Fatalf("expected nothing fired yet, got %v", fired)
	}

	now = base.Add(3 * time.Second)
	timer.Tick()
	if len(fired) != 2 || fired[0] != "early" || fired[1] != "late" {
		t.Fatalf("expected [early late], got %v", fired)
	}
}

func TestTimerTiesBrokenByInsertionOrder(t *testing.T) {
	base := time.Unix(0, 0)
	now := base.Add(time.Second)
	timer := New(func() time.Time { return now })

	var fired []int
	ids := make([]uint64, 3)
	for i := range ids {
		ids[i] = timer.Register(base)
	}
	for i, id := range ids {
		i := i
		timer.SetWaker(id, func() { fired = append(fired, i) })
	}

	timer.Tick()
	if len(fired) != 3 || fired[0] != 0 || fired[1] != 1 || fired[2] != 2 {
		t.Fatalf("expected entries to fire in registration order, got %v", fired)
	}
}

func TestTimerRemoveBeforeFiring(t *testing.T) {
	base := time.Unix(0, 0)
	now := base.Add(time.Second)
	timer := New(func() time.Time { return now })

	called := false
	id := timer.Register(base)
	timer.SetWaker(id, func() { called = true })
	timer.Remove(id)

	timer.Tick()
	if called {
		t.Fatal("expected removed entry not to fire")
	}
	if timer.Pending(id) {
		t.Fatal("expected Pending to be false after Remove")
	}
}

func TestNextDeadlineSaturatesAtZero(t *testing.T) {
	base := time.Unix(0, 0)
	now := base.Add(5 * time.Second)
	timer := New(func() time.Time { return now })
	timer.Register(base) // already in the past relative to now

	d, ok := timer.NextDeadline()
	if !ok {
		t.Fatal("expected a pending deadline")
	}
	if d != 0 {
		t.Fatalf("expected saturated zero duration, got %v", d)
	}
}

func TestNextDeadlineEmpty(t *testing.T) {
	timer := New(nil)
	if _, ok := timer.NextDeadline(); ok {
		t.Fatal("expected no deadline on an empty timer")
	}
}
