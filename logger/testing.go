package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestLogger records every entry in memory so tests can assert on diagnostics.
type TestLogger struct {
	Logger
	logs *observer.ObservedLogs
}

// NewTestLogger creates a debug-level logger backed by an in-memory observer.
func NewTestLogger() *TestLogger {
	core, logs := observer.New(zapcore.DebugLevel)
	return &TestLogger{
		Logger: &logger{zap: zap.New(core)},
		logs:   logs,
	}
}

// Entries returns all recorded entries.
func (t *TestLogger) Entries() []observer.LoggedEntry {
	return t.logs.All()
}

// Contains reports whether an entry with exactly this message was logged.
func (t *TestLogger) Contains(msg string) bool {
	return t.logs.FilterMessage(msg).Len() > 0
}

// CountAt returns the number of entries logged at level.
func (t *TestLogger) CountAt(level zapcore.Level) int {
	return t.logs.FilterLevelExact(level).Len()
}

// Reset drops recorded entries.
func (t *TestLogger) Reset() {
	t.logs.TakeAll()
}
