package nebulalog

import (
	"github.com/joeycumines/logiface"
)

// Logiface adapts a github.com/joeycumines/logiface Logger[Event] into
// this package's Logger interface, letting callers route nebula's
// internal diagnostics (reactor registration churn, timer ticks,
// thread-pool worker lifecycle, channel closures) through any backend
// logiface supports — zerolog, logrus, or stumpy via the sibling
// logiface-* adapter packages in the wider example pack.
type Logiface struct {
	l *logiface.Logger[logiface.Event]
}

// NewLogiface wraps an already-constructed generic logiface Logger.
// Callers typically obtain one via (*logiface.Logger[E]).Logger() after
// building a typed logger with logiface.New.
func NewLogiface(l *logiface.Logger[logiface.Event]) *Logiface {
	return &Logiface{l: l}
}

func (a *Logiface) IsEnabled(level Level) bool {
	return a.l.Level() >= toLogifaceLevel(level)
}

func (a *Logiface) Log(e Entry) {
	var b *logiface.Builder[logiface.Event]
	switch e.Level {
	case LevelDebug:
		b = a.l.Debug()
	case LevelInfo:
		b = a.l.Info()
	case LevelWarn:
		b = a.l.Warning()
	default:
		b = a.l.Err()
	}
	b = b.Str("category", e.Category).Int("task_id", int(e.TaskID))
	if e.Err != nil {
		b = b.Err(e.Err)
	}
	b.Log(e.Message)
}

func toLogifaceLevel(l Level) logiface.Level {
	switch l {
	case LevelDebug:
		return logiface.LevelDebug
	case LevelInfo:
		return logiface.LevelInformational
	case LevelWarn:
		return logiface.LevelWarning
	default:
		return logiface.LevelError
	}
}
