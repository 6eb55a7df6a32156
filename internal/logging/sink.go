// pattern: Imperative Shell

package logging

import (
	"encoding/json"
	"errors"
	"sync"
	"time"
)

var errSinkClosed = errors.New("logging: write to closed sink")

// ChannelSink is a zapcore.WriteSyncer that decodes each JSON line into
// an Entry and queues it. When the queue is full the oldest entry goes.
type ChannelSink struct {
	mu      sync.Mutex
	entries chan Entry
	closed  bool
}

func NewChannelSink(size int) *ChannelSink {
	size = max(size, 1)
	return &ChannelSink{entries: make(chan Entry, size)}
}

func (s *ChannelSink) Write(p []byte) (int, error) {
	e, err := decodeEntry(p)
	if err != nil {
		return len(p), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, errSinkClosed
	}
	for {
		select {
		case s.entries <- e:
			return len(p), nil
		default:
		}
		select {
		case <-s.entries:
		default:
		}
	}
}

func (s *ChannelSink) Sync() error { return nil }

// Close closes the channel. Further writes fail.
func (s *ChannelSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.entries)
	}
	return nil
}

func (s *ChannelSink) Entries() <-chan Entry {
	return s.entries
}

type rawEntry struct {
	TS     float64 `json:"ts"`
	Level  string  `json:"level"`
	Logger string  `json:"logger"`
	Msg    string  `json:"msg"`
}

var reservedKeys = []string{"ts", "level", "logger", "msg", "caller", "stacktrace"}

func decodeEntry(p []byte) (Entry, error) {
	var raw rawEntry
	if err := json.Unmarshal(p, &raw); err != nil {
		return Entry{}, err
	}
	var fields map[string]any
	if err := json.Unmarshal(p, &fields); err != nil {
		return Entry{}, err
	}
	for _, k := range reservedKeys {
		delete(fields, k)
	}

	e := Entry{
		Timestamp: time.Now(),
		Level:     NormalizeLevel(raw.Level),
		Scope:     raw.Logger,
		Message:   raw.Msg,
		Fields:    fields,
	}
	if e.Scope == "" {
		e.Scope = "app"
	}
	if raw.TS > 0 {
		sec := int64(raw.TS)
		e.Timestamp = time.Unix(sec, int64((raw.TS-float64(sec))*1e9))
	}
	return e, nil
}
