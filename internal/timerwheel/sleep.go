package timerwheel

import (
	"time"

	"github.com/kelthar/nebula/task"
)

// Sleep is the awaitable produced by sleep/sleep_until (spec.md §4.3).
// It implements task.Future[struct{}].
type Sleep struct {
	t          *Timer
	id         uint64
	registered bool
}

// NewSleep reserves a timer entry for deadline without registering a
// waker yet; the waker is attached on first Poll.
func NewSleep(t *Timer, deadline time.Time) *Sleep {
	return &Sleep{t: t, id: t.Register(deadline)}
}

// Poll implements task.Future[struct{}]. If the entry is still present
// in the Timer's map this is a (re-)poll before firing: the waker is
// stored/updated and Pending is returned. If the entry is absent, Tick
// already consumed it and the Sleep is Ready.
func (s *Sleep) Poll(cx *task.Context) (struct{}, bool) {
	if !s.t.Pending(s.id) {
		return struct{}{}, true
	}
	s.t.SetWaker(s.id, cx.Waker.Wake)
	s.registered = true
	return struct{}{}, false
}

// Cancel removes any lingering timer entry, as if the Sleep were
// dropped before firing (spec.md §4.3).
func (s *Sleep) Cancel() {
	s.t.Remove(s.id)
}
