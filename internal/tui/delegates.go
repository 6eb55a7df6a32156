// pattern: Imperative Shell

package tui

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"linolayout/internal/catalog"
)

// layoutItem is one catalog entry in the layout list.
type layoutItem struct {
	name   string
	kind   string
	source string
	file   string
}

func (i layoutItem) Title() string { return i.name }

// Description returns "kind · source · file".
func (i layoutItem) Description() string {
	desc := i.kind
	if i.source != "" {
		desc += " · " + i.source
	}
	return desc + " · " + filepath.Base(i.file)
}

func (i layoutItem) FilterValue() string { return i.name }

// layoutDelegate renders layout items in two lines.
type layoutDelegate struct {
	styles *Styles
}

func newLayoutDelegate(styles *Styles) layoutDelegate {
	return layoutDelegate{styles: styles}
}

func (d layoutDelegate) Height() int  { return 2 }
func (d layoutDelegate) Spacing() int { return 0 }

func (d layoutDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

func (d layoutDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	li, ok := item.(layoutItem)
	if !ok {
		return
	}
	selected := index == m.Index()

	titleStyle := d.styles.InfoStyle()
	descStyle := d.styles.SubtitleStyle()
	indicator := "  "
	if selected {
		titleStyle = titleStyle.Bold(true).Foreground(lipgloss.Color(d.styles.flavor.Mauve().Hex))
		descStyle = descStyle.Foreground(lipgloss.Color(d.styles.flavor.Overlay0().Hex))
		indicator = titleStyle.Render("▸ ")
	}

	width := max(m.Width()-2, 1)
	title := titleStyle.Render(ansi.Truncate(li.Title(), width, "…"))
	desc := descStyle.Render(ansi.Truncate(li.Description(), width, "…"))
	_, _ = fmt.Fprintf(w, "%s%s\n  %s", indicator, title, desc)
}

// toListItems converts the catalog's layouts to list items.
func toListItems(c *catalog.Catalog) []list.Item {
	names := c.Names()
	items := make([]list.Item, 0, len(names))
	for _, name := range names {
		e, err := c.Lookup(name)
		if err != nil {
			continue
		}
		item := layoutItem{name: name, kind: e.Layout.Kind().Name, file: e.File}
		if ds := e.Layout.DataSource(); ds != nil {
			item.source = ds.Name()
		}
		items = append(items, item)
	}
	return items
}
