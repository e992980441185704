package runtime

import "errors"

// Sentinel errors, in the style of the teacher's eventloop/errors.go
// (package-level errors.New values rather than ad hoc fmt.Errorf at
// each call site).
var (
	// ErrRuntimeExists is returned by New when a Runtime is already
	// bound to the calling goroutine (spec.md §6/§7 "AlreadyExists").
	ErrRuntimeExists = errors.New("nebula/runtime: a runtime is already bound to this thread")
	// ErrNoRuntime is returned by the free functions (Spawn,
	// SpawnBlocking, Sleep) when called outside any runtime context.
	ErrNoRuntime = errors.New("nebula/runtime: no runtime bound to this thread")
	// ErrClosed names a torn-down Runtime. No function in this package
	// returns it: Close unbinds the Runtime, so the free functions
	// called afterwards report ErrNoRuntime.
	ErrClosed = errors.New("nebula/runtime: runtime closed")
)
