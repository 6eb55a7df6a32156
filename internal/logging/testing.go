// pattern: Imperative Shell

package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TestLogManager logs at debug level to a channel only.
type TestLogManager struct {
	sink    *ChannelSink
	base    *zap.Logger
	loggers scopeCache
}

func NewTestLogManager(size int) *TestLogManager {
	sink := NewChannelSink(size)
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), sink, zapcore.DebugLevel)
	return &TestLogManager{sink: sink, base: zap.New(core)}
}

func (m *TestLogManager) For(scope string) *ScopedLogger {
	return m.loggers.get(scope, func() *ScopedLogger {
		return newScopedLogger(m.base, zapcore.DebugLevel, scope)
	})
}

// Entries returns the logged entries.
func (m *TestLogManager) Entries() <-chan Entry {
	return m.sink.Entries()
}

// Drain returns the entries logged so far without blocking.
func (m *TestLogManager) Drain() []Entry {
	var out []Entry
	for {
		select {
		case e, ok := <-m.sink.Entries():
			if !ok {
				return out
			}
			out = append(out, e)
		default:
			return out
		}
	}
}

func (m *TestLogManager) Close() error {
	return m.sink.Close()
}
