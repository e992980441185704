package runtime

import (
	"testing"

	"github.com/kelthar/nebula/task"
)

func TestMetricsDisabledByDefault(t *testing.T) {
	rt, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer rt.Close()

	BlockOn[int](rt, task.FutureFunc[int](func(cx *task.Context) (int, bool) { return 1, true }))

	m := rt.Metrics()
	if m.TasksSpawned != 0 || m.TasksCompleted != 0 {
		t.Fatalf("expected zero counters without WithMetrics(true), got %+v", m)
	}
}

func TestMetricsCountsSpawnedAndCompleted(t *testing.T) {
	rt, err := New(WithMetrics(true))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer rt.Close()

	child := SpawnOn[int](rt, task.FutureFunc[int](func(cx *task.Context) (int, bool) { return 1, true }))
	root := task.FutureFunc[int](func(cx *task.Context) (int, bool) {
		out, ok := child.Poll(cx)
		return out.Value, ok
	})
	BlockOn[int](rt, root)

	m := rt.Metrics()
	// The root task plus the spawned child: two spawns, two completions.
	if m.TasksSpawned != 2 || m.TasksCompleted != 2 {
		t.Fatalf("expected 2 spawned and 2 completed, got %+v", m)
	}
}
