package chanrt

import "github.com/kelthar/nebula/task"

// Receiver is the single consumer handle onto a channel.
type Receiver[T any] struct {
	ch *channel[T]
}

// RecvOutcome mirrors Option<T>: Ok is false iff the queue was empty
// and no senders remain (spec.md §4.6 invariant).
type RecvOutcome[T any] struct {
	Value T
	Ok    bool
}

// Recv returns a Future implementing spec.md §4.6's receive protocol.
func (r *Receiver[T]) Recv() task.Future[RecvOutcome[T]] {
	return &recvFuture[T]{r: r}
}

// Close marks the receiver gone; any parked senders are woken so their
// next poll observes SendError (spec.md §4.6: "a receiver drop wakes
// all senders").
func (r *Receiver[T]) Close() {
	r.ch.mu.Lock()
	defer r.ch.mu.Unlock()
	r.ch.recvGone = true
	logDebug("receiver closed, waking all senders")
	r.ch.wakeAllSenders()
}

type recvFuture[T any] struct {
	r        *Receiver[T]
	resolved bool
}

func (f *recvFuture[T]) Poll(cx *task.Context) (RecvOutcome[T], bool) {
	c := f.r.ch
	c.mu.Lock()

	if v, ok := f.tryPop(c); ok {
		c.mu.Unlock()
		return v, true
	}
	if c.senderCount == 0 {
		c.mu.Unlock()
		return RecvOutcome[T]{}, true
	}

	c.recvWaker = cx.Waker

	if v, ok := f.tryPop(c); ok {
		c.recvWaker = nil
		c.mu.Unlock()
		return v, true
	}
	if c.senderCount == 0 {
		c.recvWaker = nil
		c.mu.Unlock()
		return RecvOutcome[T]{}, true
	}
	c.mu.Unlock()
	return RecvOutcome[T]{}, false
}

func (f *recvFuture[T]) tryPop(c *channel[T]) (RecvOutcome[T], bool) {
	if len(c.buf) == 0 {
		return RecvOutcome[T]{}, false
	}
	v := c.buf[0]
	c.buf = c.buf[1:]
	c.wakeOldestSender()
	return RecvOutcome[T]{Value: v, Ok: true}, true
}
