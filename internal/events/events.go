// Package events holds the messages the runtime sends to the TUI.
package events

// CatalogReloadedMsg is sent after every catalog reload. Err is set when
// the reload failed and the previous catalog stays in place.
type CatalogReloadedMsg struct {
	Version uint64
	Err     error
}

// WebListenURLMsg is sent when the web server starts listening.
type WebListenURLMsg struct{ URL string }
