package task

import "sync/atomic"

// Waker is a cloneable, thread-safe handle that a suspended Future uses
// to notify its executor it may be able to make progress. Invoking Wake
// is safe from any goroutine, including ones not owned by the executor
// that created the Waker (this is how cross-thread channel senders and
// blocking-pool completions signal the executor, per the wake-pipe
// design in the runtime package).
type Waker struct {
	wake func()
	woke atomic.Bool
}

// NewWaker builds a Waker around a callback. The callback is invoked at
// most... in practice it may be invoked multiple times (Wake is
// idempotent from the caller's perspective but the underlying callback
// decides how to coalesce repeats); callers that need exactly-once
// semantics should inspect WasWoken.
func NewWaker(wake func()) *Waker {
	return &Waker{wake: wake}
}

// Wake invokes the underlying callback and records that this Waker has
// fired at least once since the last Reset.
func (w *Waker) Wake() {
	if w == nil || w.wake == nil {
		return
	}
	w.woke.Store(true)
	w.wake()
}

// WasWoken reports whether Wake has been called since construction or
// the last Reset, without clearing the flag.
func (w *Waker) WasWoken() bool {
	return w != nil && w.woke.Load()
}

// Reset clears the woken flag, for reuse across poll cycles.
func (w *Waker) Reset() {
	if w != nil {
		w.woke.Store(false)
	}
}
