package runtime

import (
	"time"

	"github.com/kelthar/nebula/internal/threadpool"
	"github.com/kelthar/nebula/internal/timerwheel"
	"github.com/kelthar/nebula/task"
)

// Spawn queues fut as a new task on the runtime bound to the calling
// goroutine, returning its JoinHandle (spec.md §4.1/§6). Returns
// ErrNoRuntime if no runtime is bound here.
func Spawn[T any](fut task.Future[T]) (*task.JoinHandle[T], error) {
	rt, err := currentRuntime()
	if err != nil {
		return nil, err
	}
	return SpawnOn(rt, fut), nil
}

// SpawnOn queues fut on rt explicitly, bypassing thread-binding lookup
// — used by code (including this package's own tests) that already
// holds a *Runtime reference rather than relying on the ambient
// thread-local binding.
func SpawnOn[T any](rt *Runtime, fut task.Future[T]) *task.JoinHandle[T] {
	id := rt.exec.allocID()
	t, handle := task.NewTask(id, fut)
	rt.exec.register(t)
	return handle
}

// SpawnBlocking runs fn on a thread-pool worker (spec.md §4.4),
// returning a JoinHandle that resolves with fn's return value. The
// handle's underlying task participates in the ordinary run
// queue/parked table machinery: it is polled like any other task, and
// its poll reports Ready once the worker signals completion via the
// wake pipe.
func SpawnBlocking[T any](fn func() T) (*task.JoinHandle[T], error) {
	rt, err := currentRuntime()
	if err != nil {
		return nil, err
	}
	return SpawnBlockingOn(rt, fn), nil
}

// SpawnBlockingOn is SpawnBlocking against an explicit Runtime.
func SpawnBlockingOn[T any](rt *Runtime, fn func() T) *task.JoinHandle[T] {
	id := rt.exec.allocID()
	t, handle := threadpool.NewBlockingTask(rt.exec.pool, id, fn)
	rt.exec.register(t)
	return handle
}

// Sleep returns an awaitable that resolves after d has elapsed,
// registered against the runtime bound to the calling goroutine
// (spec.md §4.3). Panics via ErrNoRuntime-wrapping is deliberately
// avoided — callers get an explicit error, consistent with this
// module's idiom of explicit error returns over the original's
// thread-local panic.
func Sleep(d time.Duration) (*timerwheel.Sleep, error) {
	rt, err := currentRuntime()
	if err != nil {
		return nil, err
	}
	return SleepOn(rt, d), nil
}

// SleepOn is Sleep against an explicit Runtime.
func SleepOn(rt *Runtime, d time.Duration) *timerwheel.Sleep {
	return timerwheel.NewSleep(rt.exec.timer, time.Now().Add(d))
}

// SleepUntil is Sleep's deadline-based counterpart (spec.md §4.3
// sleep_until).
func SleepUntil(deadline time.Time) (*timerwheel.Sleep, error) {
	rt, err := currentRuntime()
	if err != nil {
		return nil, err
	}
	return timerwheel.NewSleep(rt.exec.timer, deadline), nil
}
