package runtime

import (
	"math"

	"github.com/kelthar/nebula/internal/reactor"
	"github.com/kelthar/nebula/internal/threadpool"
	"github.com/kelthar/nebula/internal/timerwheel"
	"github.com/kelthar/nebula/nebulalog"
	"github.com/kelthar/nebula/task"
)

// executor holds spec.md §3's "Executor state": the run queue, parked
// table, current-task bookkeeping, and the collaborating Reactor/Timer/
// thread pool/wake-pipe. It is touched only from the owning goroutine,
// except through queue(), which is safe to call from the wake pipe's
// drain callback (itself invoked on the owning goroutine) and is the
// only path by which off-goroutine wakers reach this state indirectly
// (via wakePipe.notify, never by calling queue directly).
type executor struct {
	reactor *reactor.Reactor
	timer   *timerwheel.Timer
	pool    *threadpool.Pool
	wake    *wakePipe
	logger  nebulalog.Logger
	metrics *metricsCounters

	ownerGoroutine uint64

	nextID    uint64
	tasks     map[uint64]*task.Task
	wakers    map[uint64]*task.Waker
	runQueue  []uint64
	inQueue   map[uint64]bool
	parked    map[uint64]bool
	current   uint64
	renotified bool
}

func newExecutor(cfg *config, ownerGoroutine uint64) (*executor, error) {
	react := reactor.New()
	e := &executor{
		reactor:        react,
		timer:          timerwheel.New(nil),
		pool:           threadpool.New(cfg.threadPoolCap, cfg.threadPoolIdleTimeout),
		logger:         cfg.logger,
		metrics:        newMetricsCounters(cfg.metricsEnabled),
		ownerGoroutine: ownerGoroutine,
		tasks:          make(map[uint64]*task.Task),
		wakers:         make(map[uint64]*task.Waker),
		inQueue:        make(map[uint64]bool),
		parked:         make(map[uint64]bool),
	}
	wp, err := newWakePipe(react, e.onWakeIDs)
	if err != nil {
		return nil, err
	}
	e.wake = wp
	return e, nil
}

func (e *executor) onWakeIDs(ids []uint64) {
	for _, id := range ids {
		e.queue(id)
	}
}

func (e *executor) allocID() uint64 {
	e.nextID++
	return e.nextID
}

// wakerFor returns the persistent waker for a task id, constructing it
// on first use. The closure implements spec.md §4.1's cross-thread
// rule: same-goroutine callers enqueue directly, others write the id
// through the wake pipe.
func (e *executor) wakerFor(id uint64) *task.Waker {
	if w, ok := e.wakers[id]; ok {
		return w
	}
	w := task.NewWaker(func() {
		if goroutineID() == e.ownerGoroutine {
			e.queue(id)
			return
		}
		if err := e.wake.notify(id); err != nil {
			e.logger.Log(nebulalog.Entry{Level: nebulalog.LevelError, Category: "executor", TaskID: id, Message: "wake pipe notify failed", Err: err})
		}
	})
	e.wakers[id] = w
	return w
}

// queue implements spec.md §4.1's queue(id): self-notification during
// the task's own poll just sets the flag; otherwise move id from the
// parked table onto the back of the run queue, discarding notifications
// for unknown or already-queued ids.
func (e *executor) queue(id uint64) {
	if id == e.current {
		e.renotified = true
		return
	}
	if _, ok := e.tasks[id]; !ok {
		return
	}
	if e.inQueue[id] {
		return
	}
	delete(e.parked, id)
	e.inQueue[id] = true
	e.runQueue = append(e.runQueue, id)
	e.metrics.wakeupDelivered()
}

func (e *executor) popReady() uint64 {
	id := e.runQueue[0]
	e.runQueue = e.runQueue[1:]
	delete(e.inQueue, id)
	return id
}

// register adds t to the task table and places it directly on the run
// queue, matching spec.md §3's lifecycle: "created by spawn ...;
// placed on the run queue."
func (e *executor) register(t *task.Task) {
	e.tasks[t.ID] = t
	e.inQueue[t.ID] = true
	e.runQueue = append(e.runQueue, t.ID)
	e.metrics.spawned()
	e.logDebug(t.ID, "task spawned")
}

// logDebug emits a Debug-level task lifecycle entry through the
// Runtime's configured logger (spec.md's ambient logging stack: "task
// spawn/drop ... at Debug").
func (e *executor) logDebug(id uint64, msg string) {
	if e.logger.IsEnabled(nebulalog.LevelDebug) {
		e.logger.Log(nebulalog.Entry{Level: nebulalog.LevelDebug, Category: "executor", TaskID: id, Message: msg})
	}
}

// runReadyQueue drains the run queue, polling each ready task to
// completion-or-suspension, implementing spec.md §4.1 steps (a)-(e).
// It returns true as soon as the task with id rootID completes (the
// caller uses this to recognize when to stop driving block_on), and
// false once the run queue is empty without that happening.
func (e *executor) runReadyQueue(rootID uint64) (completedRoot bool) {
	for len(e.runQueue) > 0 {
		id := e.popReady()
		cx := &task.Context{Waker: e.wakerFor(id)}
		for {
			e.current = id
			e.renotified = false
			done := e.tasks[id].Poll(cx)
			if done {
				delete(e.tasks, id)
				delete(e.wakers, id)
				e.current = 0
				e.metrics.completed()
				e.logDebug(id, "task dropped")
				if id == rootID {
					return true
				}
				break
			}
			if !e.renotified {
				e.parked[id] = true
				e.current = 0
				break
			}
			// Self-wake: loop back and poll again without re-parking
			// (spec.md §4.1 step c).
		}
	}
	return false
}

// react computes the timeout from the Timer and blocks in the Reactor
// for up to that long, then ticks the Timer to wake expired sleepers
// (spec.md §4.1 steps f-h).
func (e *executor) react() error {
	timeoutMs := -1
	if d, ok := e.timer.NextDeadline(); ok {
		ms := d.Milliseconds()
		if ms > math.MaxInt32 {
			ms = math.MaxInt32
		}
		timeoutMs = int(ms)
	}
	if err := e.reactor.React(timeoutMs); err != nil {
		e.logger.Log(nebulalog.Entry{Level: nebulalog.LevelError, Category: "reactor", Message: "react failed", Err: err})
		return err
	}
	e.timer.Tick()
	return nil
}

func (e *executor) close() {
	e.pool.Close()
	e.wake.close()
	e.reactor.Close()
}
