// pattern: Functional Core

package logging

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// Entry is one parsed log line as shown in the TUI.
type Entry struct {
	Timestamp time.Time
	Level     string // DEBUG, INFO, WARN or ERROR
	Scope     string
	Message   string
	Fields    map[string]any
}

// String formats the entry as "15:04:05 LEVEL [scope] message k=v".
// Fields are sorted by key.
func (e Entry) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s [%s] %s", e.Timestamp.Format("15:04:05"), e.Level, e.Scope, e.Message)
	for _, k := range slices.Sorted(maps.Keys(e.Fields)) {
		fmt.Fprintf(&sb, " %s=%v", k, e.Fields[k])
	}
	return sb.String()
}

// MatchesScope reports whether the entry belongs to prefix or one of its
// children. The empty prefix matches everything.
func (e Entry) MatchesScope(prefix string) bool {
	if prefix == "" || e.Scope == prefix {
		return true
	}
	return strings.HasPrefix(e.Scope, prefix+".")
}

// NormalizeLevel maps a level name to its upper-case form. Unknown names
// become INFO.
func NormalizeLevel(level string) string {
	switch strings.ToLower(level) {
	case "debug":
		return "DEBUG"
	case "warn", "warning":
		return "WARN"
	case "error", "dpanic", "panic", "fatal":
		return "ERROR"
	default:
		return "INFO"
	}
}
