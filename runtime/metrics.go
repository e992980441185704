package runtime

import "sync/atomic"

// Metrics is a snapshot of the lightweight execution counters a
// Runtime constructed with WithMetrics(true) maintains. These are
// counters only, not the teacher's P-Square percentile estimator (see
// DESIGN.md for why that estimator was not carried over) — spec.md's
// Non-goals exclude a full observability layer, but the ambient stack
// still gets a minimal, cheap instrumentation surface.
type Metrics struct {
	TasksSpawned     uint64
	TasksCompleted   uint64
	WakeupsDelivered uint64
}

// metricsCounters backs Metrics with atomics, since Wake callbacks can
// fire from a thread-pool worker goroutine rather than the executor's
// own. When disabled every method is a no-op, so an instrument-free
// Runtime pays nothing beyond the enabled check.
type metricsCounters struct {
	enabled          bool
	tasksSpawned     atomic.Uint64
	tasksCompleted   atomic.Uint64
	wakeupsDelivered atomic.Uint64
}

func newMetricsCounters(enabled bool) *metricsCounters {
	return &metricsCounters{enabled: enabled}
}

func (m *metricsCounters) spawned() {
	if m.enabled {
		m.tasksSpawned.Add(1)
	}
}

func (m *metricsCounters) completed() {
	if m.enabled {
		m.tasksCompleted.Add(1)
	}
}

func (m *metricsCounters) wakeupDelivered() {
	if m.enabled {
		m.wakeupsDelivered.Add(1)
	}
}

func (m *metricsCounters) snapshot() Metrics {
	return Metrics{
		TasksSpawned:     m.tasksSpawned.Load(),
		TasksCompleted:   m.tasksCompleted.Load(),
		WakeupsDelivered: m.wakeupsDelivered.Load(),
	}
}

// Metrics returns a point-in-time snapshot of rt's counters. All
// fields are zero if rt was constructed without WithMetrics(true).
func (rt *Runtime) Metrics() Metrics {
	return rt.exec.metrics.snapshot()
}
