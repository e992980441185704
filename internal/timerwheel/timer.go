// Package timerwheel implements the Timer subsystem of spec.md §4.3: an
// ordered (deadline, id) → waker map consulted by the executor to bound
// each Reactor.React call and to wake expired Sleeps on tick.
//
// The ordering structure is a container/heap, grounded on the teacher's
// own timerHeap in eventloop/loop.go — the only heap-backed scheduling
// structure present anywhere in the example pack, and the idiom this
// module follows rather than a hand-rolled balanced tree.
package timerwheel

import (
	"container/heap"
	"fmt"
	"time"

	"github.com/kelthar/nebula/nebulalog"
)

// entry is one pending deadline. id disambiguates equal deadlines,
// giving a total order matching insertion order (spec.md §3).
type entry struct {
	deadline time.Time
	id       uint64
	waker    func()
	index    int
	live     bool
}

type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].deadline.Equal(h[j].deadline) {
		return h[i].id < h[j].id
	}
	return h[i].deadline.Before(h[j].deadline)
}
func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *entryHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Timer is the ordered deadline map plus the monotonic id counter used
// to break ties.
type Timer struct {
	h      entryHeap
	byID   map[uint64]*entry
	nextID uint64
	now    func() time.Time
}

// New constructs an empty Timer. now is injectable for tests; pass nil
// to use time.Now.
func New(now func() time.Time) *Timer {
	if now == nil {
		now = time.Now
	}
	return &Timer{byID: make(map[uint64]*entry), now: now}
}

// Register reserves a new (deadline, id) entry with no waker yet —
// mirroring spec.md §4.3's "Value is Option<Waker> — None until the
// Sleep is first polled." It returns the id a Sleep uses to refer back
// to its entry.
func (t *Timer) Register(deadline time.Time) uint64 {
	t.nextID++
	id := t.nextID
	e := &entry{deadline: deadline, id: id, live: true}
	t.byID[id] = e
	heap.Push(&t.h, e)
	return id
}

// SetWaker stores or replaces the waker for a still-pending entry. It
// is a no-op if the entry has already fired or been removed.
func (t *Timer) SetWaker(id uint64, waker func()) {
	if e, ok := t.byID[id]; ok {
		e.waker = waker
	}
}

// Pending reports whether id still has an entry in the map (i.e. the
// corresponding Sleep has not yet resolved).
func (t *Timer) Pending(id uint64) bool {
	_, ok := t.byID[id]
	return ok
}

// Remove drops an entry without firing its waker — used when a Sleep
// is dropped before its deadline (spec.md §4.3: "Dropping a Sleep
// removes any lingering entry").
func (t *Timer) Remove(id uint64) {
	e, ok := t.byID[id]
	if !ok {
		return
	}
	delete(t.byID, id)
	if e.index >= 0 {
		heap.Remove(&t.h, e.index)
	}
}

// Tick repeatedly removes the first entry whose deadline is <= now and
// invokes its waker if set, stopping at the first future deadline
// (spec.md §4.3).
func (t *Timer) Tick() {
	now := t.now()
	fired := 0
	for t.h.Len() > 0 {
		e := t.h[0]
		if e.deadline.After(now) {
			break
		}
		heap.Pop(&t.h)
		delete(t.byID, e.id)
		fired++
		if e.waker != nil {
			e.waker()
		}
	}
	l := nebulalog.Global()
	if l.IsEnabled(nebulalog.LevelDebug) {
		l.Log(nebulalog.Entry{Level: nebulalog.LevelDebug, Category: "timer", Message: fmt.Sprintf("tick fired %d timers", fired)})
	}
}

// NextDeadline returns the duration until the earliest pending
// deadline, saturating at zero, and false if the map is empty
// (spec.md §4.3).
func (t *Timer) NextDeadline() (time.Duration, bool) {
	if t.h.Len() == 0 {
		return 0, false
	}
	d := t.h[0].deadline.Sub(t.now())
	if d < 0 {
		d = 0
	}
	return d, true
}
