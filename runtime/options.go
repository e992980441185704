package runtime

import (
	"time"

	"github.com/kelthar/nebula/internal/threadpool"
	"github.com/kelthar/nebula/nebulalog"
)

// config holds resolved construction options, grounded on the
// teacher's loopOptions/resolveLoopOptions pattern in
// eventloop/options.go.
type config struct {
	threadPoolCap         int
	threadPoolIdleTimeout time.Duration
	logger                nebulalog.Logger
	metricsEnabled        bool
}

// Option configures a Runtime at construction time.
type Option interface {
	apply(*config)
}

type optionFunc func(*config)

func (f optionFunc) apply(c *config) { f(c) }

// WithThreadPoolCap overrides the blocking-pool's worker ceiling
// (spec.md §4.4 default: 16).
func WithThreadPoolCap(n int) Option {
	return optionFunc(func(c *config) { c.threadPoolCap = n })
}

// WithThreadPoolIdleTimeout overrides how long an idle pool worker
// survives before exiting.
func WithThreadPoolIdleTimeout(d time.Duration) Option {
	return optionFunc(func(c *config) { c.threadPoolIdleTimeout = d })
}

// WithLogger sets the sink for the Runtime's executor entries
// (task spawn/drop, wake and react failures), overriding
// nebulalog.Global() for those. The reactor, timer, thread pool, and
// channels always log through nebulalog.Global().
func WithLogger(l nebulalog.Logger) Option {
	return optionFunc(func(c *config) { c.logger = l })
}

// WithMetrics toggles lightweight counters (tasks spawned, tasks
// completed, wakeups delivered to the run queue) exposed via
// Runtime.Metrics.
func WithMetrics(enabled bool) Option {
	return optionFunc(func(c *config) { c.metricsEnabled = enabled })
}

func resolveOptions(opts []Option) *config {
	c := &config{
		threadPoolCap:         threadpool.DefaultCap,
		threadPoolIdleTimeout: threadpool.DefaultIdleTimeout,
		logger:                nebulalog.Global(),
	}
	for _, o := range opts {
		if o == nil {
			continue
		}
		o.apply(c)
	}
	return c
}
