// pattern: Functional Core

package tui

// Region defines a rectangular area within the terminal.
type Region struct {
	X      int // Left position (0-indexed)
	Y      int // Top position (0-indexed)
	Width  int // Width in cells
	Height int // Height in lines
}

// Layout holds computed regions for all UI components.
type Layout struct {
	Header    Region // title + subtitle
	List      Region // layout list (left)
	Preview   Region // preview of the selected layout (right)
	Separator Region // between content and logs, when logs are open
	Logs      Region
	StatusBar Region
}

const (
	headerHeight    = 2 // Title + subtitle
	statusBarHeight = 1
	separatorHeight = 1 // Separator when log panel open
	minContent      = 4
	minListWidth    = 24
)

// ComputeLayout calculates regions based on terminal dimensions.
// The list takes 35% of the width. When logPanelOpen is true, the content
// area splits 40/60 vertically (content/logs).
func ComputeLayout(width, height int, logPanelOpen bool) Layout {
	available := max(height-headerHeight-statusBarHeight, minContent)

	contentHeight, logsHeight := available, 0
	if logPanelOpen {
		available = max(available-separatorHeight, minContent)
		contentHeight = int(float64(available) * 0.4)
		logsHeight = available - contentHeight
	}

	listWidth := min(max(int(float64(width)*0.35), minListWidth), width)

	y := 0
	header := Region{X: 0, Y: y, Width: width, Height: headerHeight}
	y += headerHeight

	list := Region{X: 0, Y: y, Width: listWidth, Height: contentHeight}
	preview := Region{X: listWidth, Y: y, Width: width - listWidth, Height: contentHeight}
	y += contentHeight

	var separator, logs Region
	if logPanelOpen {
		separator = Region{X: 0, Y: y, Width: width, Height: separatorHeight}
		y += separatorHeight
		logs = Region{X: 0, Y: y, Width: width, Height: logsHeight}
		y += logsHeight
	}

	return Layout{
		Header:    header,
		List:      list,
		Preview:   preview,
		Separator: separator,
		Logs:      logs,
		StatusBar: Region{X: 0, Y: y, Width: width, Height: statusBarHeight},
	}
}

// BodyHeight is the height of a pane below its one-line header.
func (r Region) BodyHeight() int {
	return max(r.Height-1, 1)
}
