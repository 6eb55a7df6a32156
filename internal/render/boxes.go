// pattern: Functional Core

package render

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"linolayout/internal/layout"
)

// BoxStyles are the lipgloss styles used by Boxes.
type BoxStyles struct {
	Panel lipgloss.Style
	Title lipgloss.Style
	Field lipgloss.Style
}

// PlainBoxStyles returns uncoloured styles.
func PlainBoxStyles() BoxStyles {
	return BoxStyles{
		Panel: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()),
		Title: lipgloss.NewStyle().Bold(true),
		Field: lipgloss.NewStyle().Border(lipgloss.NormalBorder()),
	}
}

// Boxes draws the visible part of the handle's tree as nested boxes.
// Every panel gets a border, titled when it has a label. Hidden elements
// are left out.
func Boxes(h *layout.Handle, st BoxStyles) string {
	return drawBox(h.Main(), st)
}

func drawBox(e layout.Element, st BoxStyles) string {
	if e.Hidden() {
		return ""
	}
	n, ok := e.(*Node)
	if !ok || !n.IsPanel() {
		return drawField(e, st)
	}

	var parts []string
	for _, c := range n.Children() {
		if s := drawBox(c, st); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return ""
	}

	var body string
	if n.Vertical {
		body = lipgloss.JoinVertical(lipgloss.Left, parts...)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	}
	if n.Label() != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, st.Title.Render(n.Label()), body)
	}
	return st.Panel.Render(body)
}

func drawField(e layout.Element, st BoxStyles) string {
	label := e.Label()
	if label == "" {
		label = e.Name()
	}
	width := e.Width()
	if width <= 0 {
		width = ansi.StringWidth(label)
	}
	label = ansi.Truncate(label, width, "…")
	return st.Field.Width(width).Render(label)
}
