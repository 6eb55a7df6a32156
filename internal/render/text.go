// pattern: Functional Core

package render

import (
	"fmt"
	"io"
	"strings"

	"linolayout/internal/layout"
)

// Text returns an indented outline of the handle's tree.
func Text(h *layout.Handle) string {
	var sb strings.Builder
	WriteText(&sb, h.Main())
	return sb.String()
}

// WriteText writes the outline of e and its descendants to w.
func WriteText(w io.Writer, e layout.Element) {
	writeText(w, e, 0)
}

func writeText(w io.Writer, e layout.Element, depth int) {
	indent := strings.Repeat("  ", depth)
	n, ok := e.(*Node)
	if !ok {
		fmt.Fprintf(w, "%s- %s\n", indent, e.Name())
		return
	}

	var attrs []string
	if n.IsPanel() {
		dir := "horizontal"
		if n.Vertical {
			dir = "vertical"
		}
		attrs = append(attrs, dir)
	} else if n.FieldType != "" {
		attrs = append(attrs, n.FieldType)
	}
	if n.Width() > 0 {
		attrs = append(attrs, fmt.Sprintf("%dx%d", n.Width(), n.Height()))
	}
	if n.Hidden() {
		attrs = append(attrs, "hidden")
	}

	line := indent + "- " + n.Name()
	if n.Label() != "" && n.Label() != n.Name() {
		line += fmt.Sprintf(" %q", n.Label())
	}
	if len(attrs) > 0 {
		line += " (" + strings.Join(attrs, ", ") + ")"
	}
	fmt.Fprintln(w, line)

	for _, c := range n.Children() {
		writeText(w, c, depth+1)
	}
}
