package task

import "sync"

// JoinError wraps a panic recovered from a spawned computation or a
// blocking closure run on the thread pool. See SPEC_FULL.md's Open
// Question decision: panics are captured and surfaced here rather than
// swallowed.
type JoinError struct {
	Panic any
}

func (e *JoinError) Error() string {
	return "nebula: task panicked"
}

// Outcome is what a JoinHandle resolves to: either a value or a
// JoinError describing a recovered panic, never both.
type Outcome[T any] struct {
	Value T
	Err   *JoinError
}

// cell is the completion slot shared between a Task's adaptor and its
// JoinHandle. It transitions at most once from empty to filled
// (spec.md §3, §8 invariant), guarded by a mutex since JoinHandle and
// the task may be touched from different goroutines (e.g. a
// spawn_blocking completion arriving from a pool worker).
type cell[T any] struct {
	mu    sync.Mutex
	done  bool
	value T
	err   *JoinError
	waker *Waker
}

func (c *cell[T]) fill(v T, err *JoinError) {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		return
	}
	c.value, c.err, c.done = v, err, true
	w := c.waker
	c.waker = nil
	c.mu.Unlock()
	w.Wake()
}

func (c *cell[T]) poll(cx *Context) (Outcome[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		return Outcome[T]{Value: c.value, Err: c.err}, true
	}
	c.waker = cx.Waker
	return Outcome[T]{}, false
}

// JoinHandle is a completion awaitable paired with a Task at spawn
// time. It survives independently of the task; dropping a handle does
// not cancel the underlying computation (spec.md §3).
type JoinHandle[T any] struct {
	id  uint64
	res *cell[T]
}

// ID returns the underlying task's unique id.
func (h *JoinHandle[T]) ID() uint64 { return h.id }

// Poll returns the completed Outcome once available; otherwise it
// stores cx.Waker (replacing any previously stored one — only the most
// recent poller's waker is kept, per spec.md §4.5) and reports Pending.
func (h *JoinHandle[T]) Poll(cx *Context) (Outcome[T], bool) {
	return h.res.poll(cx)
}

// NewTask wraps fut in a completion adaptor and returns the Task ready
// for executor storage plus the paired JoinHandle. This is the Go
// rendering of spec.md §4.5's Task::new: the adaptor stores the
// produced value (or a recovered panic, wrapped as JoinError) into the
// JoinHandle's shared cell and wakes its awaiter on completion.
func NewTask[T any](id uint64, fut Future[T]) (*Task, *JoinHandle[T]) {
	c := &cell[T]{}
	tt := &completionAdaptor[T]{fut: fut, cell: c}
	return &Task{ID: id, fut: tt}, &JoinHandle[T]{id: id, res: c}
}

// completionAdaptor bridges a typed Future[T] into the type-erased
// anyFuture the executor stores, feeding completions (or recovered
// panics) into the shared cell.
type completionAdaptor[T any] struct {
	fut  Future[T]
	cell *cell[T]
}

func (a *completionAdaptor[T]) poll(cx *Context) (done bool) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			a.cell.fill(zero, &JoinError{Panic: r})
			done = true
		}
	}()
	v, ok := a.fut.Poll(cx)
	if ok {
		a.cell.fill(v, nil)
	}
	return ok
}

// Task is the executor's type-erased handle over a suspendable
// computation: a unique id plus a poll method, per spec.md §9's
// "capability set: poll, id, waker" guidance (the waker itself is
// constructed by the executor around the id, not stored on Task).
type Task struct {
	ID  uint64
	fut anyFuture
}

// Poll drives the underlying computation once. Returns true when it
// has completed.
func (t *Task) Poll(cx *Context) bool {
	return t.fut.poll(cx)
}
