package runtime

import "github.com/kelthar/nebula/task"

// BlockOn drives fut to completion on the calling goroutine, which must
// be the one bound to rt, implementing spec.md §4.1's driver loop.
// Panics propagate out of BlockOn if fut itself panics (there is no
// JoinHandle observer for the root computation).
func BlockOn[T any](rt *Runtime, fut task.Future[T]) T {
	rootID := rt.exec.allocID()
	t, get := task.RootTask(rootID, fut)
	rt.exec.register(t)

	for {
		if rt.exec.runReadyQueue(rootID) {
			return get()
		}
		// react() logs its own failures; a poll(2) error does not
		// otherwise disturb the run queue (spec.md §7 propagation
		// policy), so the loop simply continues.
		_ = rt.exec.react()
	}
}
