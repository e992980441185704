package runtime

import "runtime"

// goroutineID returns the calling goroutine's numeric id, parsed out of
// runtime.Stack's header line. Go exposes no public current-goroutine-id
// API; this is the same technique the teacher's event loop uses
// (eventloop/loop.go getGoroutineID) to detect whether a call arrived
// on its own driver goroutine, and we reuse it here to approximate
// spec.md §6's "current thread" binding for Runtime::new/enter — an OS
// thread in the original design, a goroutine in this one, since Go
// goroutines (not OS threads) are the natural unit of single-owner
// execution here.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
