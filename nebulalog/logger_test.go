package nebulalog

import "testing"

func TestDefaultLoggerRespectsLevel(t *testing.T) {
	l := NewDefaultLogger(LevelWarn)
	if l.IsEnabled(LevelDebug) {
		t.Fatal("expected debug to be disabled at warn level")
	}
	if !l.IsEnabled(LevelError) {
		t.Fatal("expected error to be enabled at warn level")
	}
}

func TestNoOpLoggerNeverEnabled(t *testing.T) {
	l := NoOp()
	for _, lvl := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		if l.IsEnabled(lvl) {
			t.Fatalf("expected noop logger to report %v disabled", lvl)
		}
	}
	l.Log(Entry{Level: LevelError, Message: "should not panic"})
}

func TestGlobalLoggerDefaultsToNoOp(t *testing.T) {
	prev := Global()
	defer SetLogger(prev)

	SetLogger(nil)
	if Global().IsEnabled(LevelError) {
		t.Fatal("expected Global to fall back to a no-op logger when none is set")
	}
}
