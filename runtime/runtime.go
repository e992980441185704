// Package runtime implements the executor driver loop and the
// thread-bound Runtime handle described in spec.md §4.1 and §6:
// Runtime.New/BlockOn/Enter, and the free functions Spawn,
// SpawnBlocking, Sleep, and SleepUntil that operate on whichever
// Runtime is currently bound to the calling goroutine.
//
// Go has no OS-thread-local storage exposed to user code, and
// goroutines (not OS threads) are the unit Go programmers reason about
// for single-owner execution; this module follows the teacher's own
// precedent (eventloop's loopGoroutineID/isLoopThread) and binds a
// Runtime to a goroutine id rather than an OS thread id. See
// goroutineid.go and DESIGN.md.
package runtime

import (
	"sync"

	"github.com/kelthar/nebula/internal/reactor"
)

var bindings = struct {
	mu  sync.Mutex
	byG map[uint64]*Runtime
}{byG: make(map[uint64]*Runtime)}

func bind(gid uint64, rt *Runtime) bool {
	bindings.mu.Lock()
	defer bindings.mu.Unlock()
	if _, exists := bindings.byG[gid]; exists {
		return false
	}
	bindings.byG[gid] = rt
	return true
}

func unbind(gid uint64) {
	bindings.mu.Lock()
	defer bindings.mu.Unlock()
	delete(bindings.byG, gid)
}

func lookup(gid uint64) (*Runtime, bool) {
	bindings.mu.Lock()
	defer bindings.mu.Unlock()
	rt, ok := bindings.byG[gid]
	return rt, ok
}

// Runtime owns exactly one executor, running on the goroutine that
// called New (or later an Enter guard's goroutine — spec.md §6).
type Runtime struct {
	exec   *executor
	closed bool
}

// New constructs a Runtime and binds it to the calling goroutine.
// Returns ErrRuntimeExists if a Runtime is already bound here
// (spec.md §6/§7).
func New(opts ...Option) (*Runtime, error) {
	gid := goroutineID()
	cfg := resolveOptions(opts)
	exec, err := newExecutor(cfg, gid)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{exec: exec}
	if !bind(gid, rt) {
		exec.close()
		return nil, ErrRuntimeExists
	}
	return rt, nil
}

// Reactor exposes the Runtime's poll(2) event demultiplexer so
// components outside this package (netio's raw-socket TcpSocket/
// TcpStream) can register their own fds against the same Reactor the
// executor drives, per spec.md §9's "capability set" rendering of
// Registration rather than a closed-over private handle.
func (rt *Runtime) Reactor() *reactor.Reactor {
	return rt.exec.reactor
}

// Close tears down the Runtime's reactor, thread pool, and wake pipe,
// and unbinds it from its owning goroutine. Safe to call once; further
// calls are no-ops.
func (rt *Runtime) Close() {
	if rt.closed {
		return
	}
	rt.closed = true
	unbind(rt.exec.ownerGoroutine)
	rt.exec.close()
}

// Guard is returned by Enter; its Exit unbinds the Runtime from the
// goroutine that entered it.
type Guard struct {
	rt  *Runtime
	gid uint64
}

// Enter binds the calling goroutine to rt for the Guard's lifetime, so
// that Spawn/SpawnBlocking/Sleep find it. Panics if another runtime is
// already bound to this goroutine (spec.md §6 — explicitly a panic,
// not an error, matching "Runtime misuse ... panics" in §7).
func (rt *Runtime) Enter() *Guard {
	gid := goroutineID()
	if !bind(gid, rt) {
		panic(ErrRuntimeExists)
	}
	return &Guard{rt: rt, gid: gid}
}

// Exit unbinds the Runtime from the goroutine that entered it.
func (g *Guard) Exit() {
	unbind(g.gid)
}

func currentRuntime() (*Runtime, error) {
	rt, ok := lookup(goroutineID())
	if !ok {
		return nil, ErrNoRuntime
	}
	return rt, nil
}
