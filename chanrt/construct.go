package chanrt

import "sync"

// NewUnsyncBounded constructs an executor-local bounded channel: no
// locking, intended for communication between tasks on the same
// executor thread (spec.md §4.6 "Single-thread" variant).
func NewUnsyncBounded[T any](capacity int) (*Sender[T], *Receiver[T]) {
	return newChannel[T](capacity, noopLocker{})
}

// NewUnsyncUnbounded constructs an executor-local unbounded channel.
func NewUnsyncUnbounded[T any]() (*Sender[T], *Receiver[T]) {
	return newChannel[T](0, noopLocker{})
}

// NewSyncBounded constructs a cross-thread bounded channel, safe for a
// Sender living on a thread-pool worker to pair with a Receiver polled
// on the executor thread (spec.md §4.6 "Cross-thread" variant).
func NewSyncBounded[T any](capacity int) (*Sender[T], *Receiver[T]) {
	return newChannel[T](capacity, &sync.Mutex{})
}

// NewSyncUnbounded constructs a cross-thread unbounded channel.
func NewSyncUnbounded[T any]() (*Sender[T], *Receiver[T]) {
	return newChannel[T](0, &sync.Mutex{})
}
