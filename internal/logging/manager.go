// pattern: Imperative Shell

package logging

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds configuration for the Manager.
type Config struct {
	FilePath       string // rotated JSON log file
	MaxSizeMB      int
	MaxBackups     int
	MaxAgeDays     int
	Level          string // debug, info, warn or error
	ChannelBufSize int    // entries buffered for the TUI, default 1000
}

func (c *Config) applyDefaults() {
	if c.ChannelBufSize == 0 {
		c.ChannelBufSize = 1000
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 5
	}
	if c.MaxAgeDays == 0 {
		c.MaxAgeDays = 7
	}
}

// Manager writes every entry to a rotated file and to a channel the TUI
// log pane reads from.
type Manager struct {
	base    *zap.Logger
	sink    *ChannelSink
	file    *lumberjack.Logger
	level   zapcore.Level
	loggers scopeCache
}

// NewManager creates the log file directory and the zap cores.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.FilePath == "" {
		return nil, errors.New("logging: FilePath is required")
	}
	cfg.applyDefaults()

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil, err
	}

	file := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	sink := NewChannelSink(cfg.ChannelBufSize)

	enc := zapcore.NewJSONEncoder(encoderConfig())
	core := zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.AddSync(file), level),
		zapcore.NewCore(enc.Clone(), sink, level),
	)

	return &Manager{
		base:  zap.New(core),
		sink:  sink,
		file:  file,
		level: level,
	}, nil
}

// For returns the cached logger for scope.
func (m *Manager) For(scope string) *ScopedLogger {
	return m.loggers.get(scope, func() *ScopedLogger {
		return newScopedLogger(m.base, m.level, scope)
	})
}

// Entries returns the channel of parsed entries.
func (m *Manager) Entries() <-chan Entry {
	return m.sink.Entries()
}

// Sync flushes buffered entries.
func (m *Manager) Sync() error {
	return m.base.Sync()
}

// Close flushes and closes the file and the channel.
func (m *Manager) Close() error {
	_ = m.Sync()
	_ = m.sink.Close()
	return m.file.Close()
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.EpochTimeEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return cfg
}

// scopeCache memoizes loggers per scope.
type scopeCache struct {
	mu      sync.Mutex
	loggers map[string]*ScopedLogger
}

func (c *scopeCache) get(scope string, create func() *ScopedLogger) *ScopedLogger {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.loggers[scope]; ok {
		return l
	}
	if c.loggers == nil {
		c.loggers = make(map[string]*ScopedLogger)
	}
	l := create()
	c.loggers[scope] = l
	return l
}
