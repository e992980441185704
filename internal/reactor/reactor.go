// Package reactor implements the poll(2)-based I/O event demultiplexer
// described in spec.md §4.2: one slot per registered file descriptor,
// refcounted across possibly-many Registrations, with per-waiter
// interest tracking and idle-slot negation so an fd with no current
// waiters is skipped by poll(2) without losing its place in the table.
//
// The Reactor is not thread-safe — per spec.md §4.2 it is used only
// from the executor's single OS thread. Cross-thread wakeups are routed
// through a pipe(2) registered like any other fd; see runtime.wakePipe.
package reactor

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/kelthar/nebula/nebulalog"
	"github.com/kelthar/nebula/task"
)

// Interest is the set of readiness conditions a waiter cares about.
type Interest uint8

const (
	Read Interest = 1 << iota
	Write
)

var (
	// ErrClosed is returned by Register and React once the Reactor has
	// been closed.
	ErrClosed = errors.New("nebula/reactor: closed")
	// ErrFDNegative rejects an invalid fd at registration time.
	ErrFDNegative = errors.New("nebula/reactor: fd must be non-negative")
)

// waiter is one (registration, interest) pair parked on a slot, waiting
// for poll(2) to report readiness or an error/hangup condition.
type waiter struct {
	regID    uint64
	interest Interest
	waker    *task.Waker
	reg      *Registration
}

// slot tracks one registered fd: its live Registration count and the
// waiters currently parked on it. pollIdx indexes into Reactor.pfds.
type slot struct {
	fd       int
	refcount int
	waiters  []waiter
	pollIdx  int
}

func (s *slot) mask() int16 {
	var m int16
	for _, w := range s.waiters {
		if w.interest&Read != 0 {
			m |= unix.POLLIN
		}
		if w.interest&Write != 0 {
			m |= unix.POLLOUT
		}
	}
	return m
}

// Reactor is the fd registry plus the poll(2) driver.
type Reactor struct {
	pfds      []unix.PollFd
	slots     []*slot
	fdToSlot  map[int]int
	freeSlots []int
	nextRegID uint64
	closed    bool
}

// New constructs an empty Reactor.
func New() *Reactor {
	return &Reactor{fdToSlot: make(map[int]int)}
}

// Register returns a Registration tracking fd. Multiple Registrations
// for the same fd share one slot and one refcount (spec.md §3/§4.2).
func (r *Reactor) Register(fd int) (*Registration, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if fd < 0 {
		return nil, ErrFDNegative
	}
	r.nextRegID++
	id := r.nextRegID

	idx, ok := r.fdToSlot[fd]
	if ok {
		r.slots[idx].refcount++
	} else {
		idx = r.allocSlot(fd)
	}
	r.logDebug(fmt.Sprintf("registered fd %d (slot %d, refcount %d)", fd, idx, r.slots[idx].refcount))
	return &Registration{id: id, fd: fd, r: r, slotIdx: idx}, nil
}

// logDebug emits a Debug-level registration-churn entry via the
// process-wide nebulalog.Global() logger, guarded by IsEnabled so a
// disabled logger costs nothing beyond the check (spec.md's ambient
// logging stack: "reactor registration churn ... at Debug").
func (r *Reactor) logDebug(msg string) {
	l := nebulalog.Global()
	if l.IsEnabled(nebulalog.LevelDebug) {
		l.Log(nebulalog.Entry{Level: nebulalog.LevelDebug, Category: "reactor", Message: msg})
	}
}

func (r *Reactor) allocSlot(fd int) int {
	s := &slot{fd: fd, refcount: 1}
	var idx int
	if n := len(r.freeSlots); n > 0 {
		idx = r.freeSlots[n-1]
		r.freeSlots = r.freeSlots[:n-1]
		r.slots[idx] = s
		r.pfds[idx] = unix.PollFd{Fd: int32(-fd), Events: 0}
	} else {
		idx = len(r.slots)
		r.slots = append(r.slots, s)
		r.pfds = append(r.pfds, unix.PollFd{Fd: int32(-fd), Events: 0})
	}
	s.pollIdx = idx
	r.fdToSlot[fd] = idx
	return idx
}

// release decrements the slot's refcount, removing the slot from the
// table entirely once it reaches zero (spec.md Registration lifecycle).
func (r *Reactor) release(slotIdx int) {
	s := r.slots[slotIdx]
	s.refcount--
	if s.refcount > 0 {
		return
	}
	r.logDebug(fmt.Sprintf("released fd %d (slot %d)", s.fd, slotIdx))
	delete(r.fdToSlot, s.fd)
	r.slots[slotIdx] = nil
	r.pfds[slotIdx] = unix.PollFd{Fd: -1, Events: 0}
	r.freeSlots = append(r.freeSlots, slotIdx)
}

// activate ensures the slot's pollfd entry reflects its current waiter
// set: a positive fd with the OR of all waiter interests if any waiter
// remains, else the negated fd so poll(2) ignores the entry while its
// index stays reserved (spec.md §4.2 "Idle slots").
func (r *Reactor) activate(slotIdx int) {
	s := r.slots[slotIdx]
	if len(s.waiters) == 0 {
		r.pfds[slotIdx] = unix.PollFd{Fd: int32(-s.fd), Events: 0}
		return
	}
	r.pfds[slotIdx] = unix.PollFd{Fd: int32(s.fd), Events: s.mask()}
}

// React blocks in poll(2) for up to timeoutMs milliseconds (negative
// meaning indefinite), then dispatches wakers for every fd that
// reported readiness or an error/hangup condition, per spec.md §4.2's
// react(timeout) algorithm.
func (r *Reactor) React(timeoutMs int) error {
	if r.closed {
		return ErrClosed
	}
	if len(r.pfds) == 0 {
		// poll([], timeout) still blocks for the duration on Linux;
		// this is exactly the "no registrations, no timers" boundary
		// case from spec.md §8 — a cross-thread wake is the only
		// escape, but since the wake pipe itself is always registered
		// by the runtime before this is ever reached in practice we
		// simply perform the syscall as specified.
		_, err := unix.Poll(nil, timeoutMs)
		if err != nil && !errors.Is(err, unix.EINTR) {
			return fmt.Errorf("nebula/reactor: poll: %w", err)
		}
		return nil
	}

	n, err := unix.Poll(r.pfds, timeoutMs)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return nil
		}
		return fmt.Errorf("nebula/reactor: poll: %w", err)
	}
	if n == 0 {
		return nil
	}

	processed := 0
	for idx := range r.pfds {
		if processed >= n {
			break
		}
		revents := r.pfds[idx].Revents
		if revents == 0 {
			continue
		}
		processed++
		s := r.slots[idx]
		if s == nil {
			continue
		}
		r.dispatchSlot(s, revents)
		r.activate(idx)
	}
	return nil
}

const interesting = unix.POLLERR | unix.POLLHUP | unix.POLLNVAL

// drain walks s.waiters, invoking and removing any waiter whose
// interest bit matches revents, or which is an error/hangup condition
// (always woken regardless of interest), and reinserting the rest.
func (s *slot) drain(revents int16) []waiter {
	remaining := s.waiters[:0:0]
	for _, w := range s.waiters {
		fire := revents&interesting != 0
		if w.interest&Read != 0 && revents&unix.POLLIN != 0 {
			fire = true
		}
		if w.interest&Write != 0 && revents&unix.POLLOUT != 0 {
			fire = true
		}
		if fire {
			w.reg.fired = true
			w.waker.Wake()
			continue
		}
		remaining = append(remaining, w)
	}
	return remaining
}

func (r *Reactor) dispatchSlot(s *slot, revents int16) {
	s.waiters = s.drain(revents)
}

// Close releases the Reactor's internal state. It does not close any
// registered fds — those are owned by their registrants (spec.md §5
// resource discipline: "The executor never closes user-owned fds").
func (r *Reactor) Close() error {
	r.closed = true
	return nil
}
