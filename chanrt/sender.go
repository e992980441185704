package chanrt

import "github.com/kelthar/nebula/task"

// Sender is one producer handle onto a channel. Clone produces an
// independent handle with its own sender id, mirroring
// original_source/src/mpsc_unsync.rs's Sender::clone.
type Sender[T any] struct {
	ch *channel[T]
	id uint64
}

// Clone returns a new Sender sharing the same underlying channel, with
// a fresh sender id so its waker bookkeeping stays independent of the
// original handle's.
func (s *Sender[T]) Clone() *Sender[T] {
	s.ch.mu.Lock()
	defer s.ch.mu.Unlock()
	s.ch.senderCount++
	s.ch.nextSenderID++
	return &Sender[T]{ch: s.ch, id: s.ch.nextSenderID}
}

// Close drops this sender handle. Once every clone has been closed the
// receiver is woken so its next Recv observes end-of-stream
// (spec.md §4.6: "a sender drop wakes the receiver").
func (s *Sender[T]) Close() {
	s.ch.mu.Lock()
	defer s.ch.mu.Unlock()
	s.ch.removeSenderWaker(s.id)
	s.ch.senderCount--
	if s.ch.senderCount == 0 {
		logDebug("last sender closed, waking receiver")
		s.ch.wakeReceiver()
	}
}

// Send returns a Future that implements spec.md §4.6's bounded send
// protocol (unbounded channels always succeed on the first non-blocking
// push, short-circuiting steps 3-4).
func (s *Sender[T]) Send(v T) task.Future[SendOutcome[T]] {
	return &sendFuture[T]{s: s, value: v}
}

// SendOutcome is Ready(Ok) when Err is nil, Ready(Err(SendError)) when
// the receiver was already gone.
type SendOutcome[T any] struct {
	Err *SendError[T]
}

type sendFuture[T any] struct {
	s       *Sender[T]
	value   T
	delivered bool
}

func (f *sendFuture[T]) Poll(cx *task.Context) (SendOutcome[T], bool) {
	if f.delivered {
		return SendOutcome[T]{}, true
	}
	c := f.s.ch
	c.mu.Lock()

	if c.recvGone {
		c.mu.Unlock()
		return SendOutcome[T]{Err: &SendError[T]{Value: f.value}}, true
	}
	if c.tryPush(f.value) {
		c.wakeReceiver()
		c.mu.Unlock()
		f.delivered = true
		return SendOutcome[T]{}, true
	}

	// Register before the retry to avoid the race where the receiver
	// drains between the first attempt and registration (spec.md §4.6
	// step 3).
	c.setSenderWaker(f.s.id, cx.Waker)

	if c.recvGone {
		c.removeSenderWaker(f.s.id)
		c.mu.Unlock()
		return SendOutcome[T]{Err: &SendError[T]{Value: f.value}}, true
	}
	if c.tryPush(f.value) {
		c.removeSenderWaker(f.s.id)
		c.wakeReceiver()
		c.mu.Unlock()
		f.delivered = true
		return SendOutcome[T]{}, true
	}
	c.mu.Unlock()
	return SendOutcome[T]{}, false
}
