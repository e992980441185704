// Package chanrt implements the bounded/unbounded channel primitive of
// spec.md §4.6, in both single-thread (executor-local) and cross-thread
// flavors. The single-thread variant is grounded on
// original_source/src/mpsc_unsync.rs (Rc-shared state, per-sender waker
// list keyed by sender id, last-sender-drop detection); the cross-thread
// variant on original_source/src/mpsc.rs (the same protocol guarded by
// a mutex). Go has no Rc/borrow-checker equivalent, so both variants
// share one implementation parameterized over a locker — a no-op for
// the single-thread case, a real sync.Mutex for the cross-thread case —
// rather than maintaining two divergent copies of the send/receive
// protocol.
package chanrt

import (
	"github.com/kelthar/nebula/nebulalog"
	"github.com/kelthar/nebula/task"
)

// logDebug emits a Debug-level channel-closed-transition entry via the
// process-wide nebulalog.Global() logger (spec.md's ambient logging
// stack: "channel-closed transitions ... at Debug").
func logDebug(msg string) {
	l := nebulalog.Global()
	if l.IsEnabled(nebulalog.LevelDebug) {
		l.Log(nebulalog.Entry{Level: nebulalog.LevelDebug, Category: "channel", Message: msg})
	}
}

type locker interface {
	Lock()
	Unlock()
}

type noopLocker struct{}

func (noopLocker) Lock()   {}
func (noopLocker) Unlock() {}

// SendError is returned by a Send that targets a channel whose
// receiver has gone away; it carries the value that could not be
// delivered (spec.md §7).
type SendError[T any] struct {
	Value T
}

func (e *SendError[T]) Error() string { return "nebula/chanrt: send on channel with no receiver" }

// senderWaker is one sender's parked waker, tagged by sender id so it
// can be updated in place and removed on that sender's Close
// (spec.md §3 invariant: "A sender waker list never contains
// duplicates for the same sender id").
type senderWaker struct {
	id    uint64
	waker *task.Waker
}

type channel[T any] struct {
	mu           locker
	buf          []T
	capacity     int // 0 means unbounded
	senderWakers []senderWaker
	recvWaker    *task.Waker
	recvGone     bool
	senderCount  int
	nextSenderID uint64
}

func newChannel[T any](capacity int, mu locker) (*Sender[T], *Receiver[T]) {
	ch := &channel[T]{capacity: capacity, mu: mu, senderCount: 1, nextSenderID: 1}
	return &Sender[T]{ch: ch, id: 1}, &Receiver[T]{ch: ch}
}

func (c *channel[T]) tryPush(v T) bool {
	if c.capacity > 0 && len(c.buf) >= c.capacity {
		return false
	}
	c.buf = append(c.buf, v)
	return true
}

func (c *channel[T]) wakeReceiver() {
	w := c.recvWaker
	c.recvWaker = nil
	if w != nil {
		w.Wake()
	}
}

// wakeOldestSender wakes (and removes) the first-registered sender
// waker, per spec.md §4.6's receive protocol ("wake the head sender
// waker ... implementation may wake all or the oldest").
func (c *channel[T]) wakeOldestSender() {
	if len(c.senderWakers) == 0 {
		return
	}
	w := c.senderWakers[0].waker
	c.senderWakers = c.senderWakers[1:]
	w.Wake()
}

func (c *channel[T]) setSenderWaker(id uint64, w *task.Waker) {
	for i := range c.senderWakers {
		if c.senderWakers[i].id == id {
			c.senderWakers[i].waker = w
			return
		}
	}
	c.senderWakers = append(c.senderWakers, senderWaker{id: id, waker: w})
}

func (c *channel[T]) removeSenderWaker(id uint64) {
	for i := range c.senderWakers {
		if c.senderWakers[i].id == id {
			c.senderWakers = append(c.senderWakers[:i], c.senderWakers[i+1:]...)
			return
		}
	}
}

func (c *channel[T]) wakeAllSenders() {
	pending := c.senderWakers
	c.senderWakers = nil
	for _, sw := range pending {
		sw.waker.Wake()
	}
}
