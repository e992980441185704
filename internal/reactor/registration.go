package reactor

import "github.com/kelthar/nebula/task"

// Registration is a live reference to one fd's entry in the Reactor
// (spec.md GLOSSARY). Multiple Registrations may reference the same
// fd; dropping one (Close) decrements the fd's refcount and removes
// the slot once the count reaches zero.
type Registration struct {
	id      uint64
	fd      int
	r       *Reactor
	slotIdx int
	closed  bool
	fired   bool
}

// FD returns the registered file descriptor.
func (reg *Registration) FD() int { return reg.fd }

// WakeWhen arranges for w to be invoked the next time the fd becomes
// ready per interest, or reports an error/hangup condition. A second
// call for the same interest replaces the previously stored waker
// (spec.md §4.2: "the index-hint field lets repeat operations on the
// same Registration skip a linear scan" — here realized by keying the
// in-place update on (regID, interest) rather than appending).
func (reg *Registration) WakeWhen(interest Interest, w *task.Waker) {
	s := reg.r.slots[reg.slotIdx]
	for i := range s.waiters {
		if s.waiters[i].regID == reg.id && s.waiters[i].interest == interest {
			s.waiters[i].waker = w
			reg.r.activate(reg.slotIdx)
			return
		}
	}
	s.waiters = append(s.waiters, waiter{regID: reg.id, interest: interest, waker: w, reg: reg})
	reg.r.activate(reg.slotIdx)
}

// RemoveWakeWhen removes any waiter this Registration has parked for
// interest, if present, without invoking it.
func (reg *Registration) RemoveWakeWhen(interest Interest) {
	s := reg.r.slots[reg.slotIdx]
	for i := range s.waiters {
		if s.waiters[i].regID == reg.id && s.waiters[i].interest == interest {
			s.waiters = append(s.waiters[:i], s.waiters[i+1:]...)
			reg.r.activate(reg.slotIdx)
			return
		}
	}
}

// WasWoken reports whether this Registration's waiter entry has fired
// (and been removed) since the last ResetWoken, per spec.md §4.2.
func (reg *Registration) WasWoken() bool { return reg.fired }

// ResetWoken clears the fired flag, for reuse across poll cycles.
func (reg *Registration) ResetWoken() { reg.fired = false }

// Close drops this Registration, decrementing the fd's refcount. It
// does not close the fd itself (owned by the registrant).
func (reg *Registration) Close() error {
	if reg.closed {
		return nil
	}
	reg.closed = true
	s := reg.r.slots[reg.slotIdx]
	for i := range s.waiters {
		if s.waiters[i].regID == reg.id {
			s.waiters = append(s.waiters[:i], s.waiters[i+1:]...)
			break
		}
	}
	reg.r.activate(reg.slotIdx)
	reg.r.release(reg.slotIdx)
	return nil
}
