package reactor

import "github.com/kelthar/nebula/task"

// Readable reports whether reg's fd is currently known-readable: true
// if a previous WakeWhen(Read, ...) has already fired, otherwise it
// arranges for cx.Waker to be invoked on the next read-readiness (or
// error/hangup) event and returns false. This is the convenience
// awaitable named in SPEC_FULL.md's supplement of original_source's
// regfd.write_ready()/read_ready() helpers. Writable is used by netio's
// non-blocking connect state machine; asyncio's adaptors call WakeWhen
// directly instead.
//
// Per spec.md's fixed Open Question, readiness is NOT auto-rearmed:
// callers must call Readable again after consuming the notification to
// keep watching the fd.
func (reg *Registration) Readable(cx *task.Context) bool {
	return reg.awaitInterest(Read, cx)
}

// Writable is the write-interest counterpart of Readable.
func (reg *Registration) Writable(cx *task.Context) bool {
	return reg.awaitInterest(Write, cx)
}

func (reg *Registration) awaitInterest(interest Interest, cx *task.Context) bool {
	if reg.WasWoken() {
		reg.ResetWoken()
		reg.RemoveWakeWhen(interest)
		return true
	}
	reg.WakeWhen(interest, cx.Waker)
	return false
}
