package task

// rootAdaptor drives the root computation passed to block_on directly,
// per spec.md §4.1's option (a): "treat it as an ordinary task whose
// computation happens to outlive the driver." Unlike completionAdaptor
// it has no JoinHandle observer, so a panic is stashed for the driver
// to re-raise once it detects completion, rather than being wrapped as
// a JoinError nobody would read.
type rootAdaptor[T any] struct {
	fut   Future[T]
	value T
	done  bool
	panic any
}

func (r *rootAdaptor[T]) poll(cx *Context) (isDone bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.panic = rec
			r.done = true
			isDone = true
		}
	}()
	v, ok := r.fut.Poll(cx)
	if ok {
		r.value = v
		r.done = true
	}
	return ok
}

// RootTask wraps fut as the executor's root task, returning the Task
// for driver-loop storage and a getter that must only be called after
// the Task has reported completion (it panics with the root's own
// recovered panic, if any, rather than returning one).
func RootTask[T any](id uint64, fut Future[T]) (*Task, func() T) {
	ra := &rootAdaptor[T]{fut: fut}
	t := &Task{ID: id, fut: ra}
	get := func() T {
		if ra.panic != nil {
			panic(ra.panic)
		}
		return ra.value
	}
	return t, get
}
