// pattern: Imperative Shell
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"linolayout/internal/instance"
)

// WatchConfig configures WatchLayout.
type WatchConfig struct {
	Layout    string
	Renderer  string
	Writer    io.Writer
	ErrWriter io.Writer
}

// liveMessage mirrors the messages of the live preview endpoint.
type liveMessage struct {
	Type   string `json:"type"`
	Error  string `json:"error"`
	Layout *struct {
		Name    string      `json:"name"`
		Title   string      `json:"title"`
		Version uint64      `json:"version"`
		Main    outlineNode `json:"main"`
	} `json:"layout"`
}

type outlineNode struct {
	Name     string        `json:"name"`
	Kind     string        `json:"kind"`
	Label    string        `json:"label"`
	Type     string        `json:"type"`
	Vertical bool          `json:"vertical"`
	Hidden   bool          `json:"hidden"`
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	Children []outlineNode `json:"children"`
}

// WatchLayout prints the outline of a served layout every time the server
// rebuilds it. Build errors go to ErrWriter and watching continues, since
// the next catalog edit may fix them. It returns nil when ctx is cancelled
// or the server goes away.
func WatchLayout(ctx context.Context, client *instance.Client, cfg WatchConfig) error {
	return client.Watch(ctx, cfg.Layout, cfg.Renderer, func(data []byte) error {
		var msg liveMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("failed to parse live message: %w", err)
		}
		switch {
		case msg.Type == "error":
			_, _ = fmt.Fprintf(cfg.ErrWriter, "error: %s\n", msg.Error)
		case msg.Layout != nil:
			_, _ = fmt.Fprintf(cfg.Writer, "== %s v%d: %s ==\n", msg.Layout.Name, msg.Layout.Version, msg.Layout.Title)
			writeOutline(cfg.Writer, msg.Layout.Main, 0)
		}
		return nil
	})
}

// writeOutline prints the same outline as the text endpoint.
func writeOutline(w io.Writer, n outlineNode, depth int) {
	var attrs []string
	if n.Kind == "panel" {
		dir := "horizontal"
		if n.Vertical {
			dir = "vertical"
		}
		attrs = append(attrs, dir)
	} else if n.Type != "" {
		attrs = append(attrs, n.Type)
	}
	if n.Width > 0 {
		attrs = append(attrs, fmt.Sprintf("%dx%d", n.Width, n.Height))
	}
	if n.Hidden {
		attrs = append(attrs, "hidden")
	}

	line := strings.Repeat("  ", depth) + "- " + n.Name
	if n.Label != "" && n.Label != n.Name {
		line += fmt.Sprintf(" %q", n.Label)
	}
	if len(attrs) > 0 {
		line += " (" + strings.Join(attrs, ", ") + ")"
	}
	_, _ = fmt.Fprintln(w, line)

	for _, c := range n.Children {
		writeOutline(w, c, depth+1)
	}
}
