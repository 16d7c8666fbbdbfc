// Package diag provides a structured-logging façade over zap, used by opt to
// report pass activity (fold and peephole rewrite counts) without coupling
// it to a concrete sink. It never
// influences analysis results: a Logger is purely an observer.
package diag

import "go.uber.org/zap"

// Logger wraps a *zap.Logger for the sugared, low-frequency logging this
// library needs (one line per pass invocation, not per instruction).
type Logger struct {
	z *zap.Logger
}

// Nop returns a Logger that discards everything. Used as the default when a
// caller does not supply one, so logging never affects behavior or test
// determinism.
func Nop() Logger {
	return Logger{z: zap.NewNop()}
}

// New wraps an existing *zap.Logger. Passing nil is equivalent to Nop.
func New(z *zap.Logger) Logger {
	if z == nil {
		return Nop()
	}
	return Logger{z: z}
}

// Debugf logs a low-frequency debug message, e.g. pass summaries.
func (l Logger) Debugf(format string, args ...interface{}) {
	if l.z == nil {
		return
	}
	l.z.Sugar().Debugf(format, args...)
}

// Info logs a structured informational event with key/value fields.
func (l Logger) Info(msg string, fields ...zap.Field) {
	if l.z == nil {
		return
	}
	l.z.Info(msg, fields...)
}
