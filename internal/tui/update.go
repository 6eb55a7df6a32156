// pattern: Imperative Shell

package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"linolayout/internal/events"
	"linolayout/internal/logging"
	"linolayout/internal/render"
)

// doubleCtrlCWindow is the maximum time between two ctrl+c presses to trigger quit.
const doubleCtrlCWindow = 500 * time.Millisecond

const reloadTimeout = 30 * time.Second

// logEntriesMsg delivers log entries from the logging channel.
type logEntriesMsg struct {
	entries []logging.Entry
}

// clearStatusMsg is sent after a timed delay to clear the status bar.
type clearStatusMsg struct{ message string }

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.statusLevel != StatusLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.statusSpinner, cmd = m.statusSpinner.Update(msg)
		return m, cmd

	case events.CatalogReloadedMsg:
		if msg.Err != nil {
			m.logger.Warn("catalog reload failed", "error", msg.Err)
			m.setStatus(StatusError, "Reload failed: "+msg.Err.Error())
			return m, nil
		}
		m.refreshLayouts()
		message := fmt.Sprintf("Catalog reloaded (v%d)", msg.Version)
		m.setStatus(StatusSuccess, message)
		return m, clearStatusAfter(message, 4*time.Second)

	case events.WebListenURLMsg:
		m.listenURLs = append(m.listenURLs, msg.URL)
		return m, nil

	case logEntriesMsg:
		m.addLogEntries(msg.entries)
		if m.logs != nil {
			return m, consumeLogEntries(m.logs.Entries())
		}
		return m, nil

	case clearStatusMsg:
		// Only clear if the message is still the one that scheduled this.
		if m.statusMessage == msg.message {
			m.setStatus(StatusInfo, "")
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlD:
		return m, tea.Quit
	case tea.KeyCtrlC:
		now := time.Now()
		if !m.lastCtrlCTime.IsZero() && now.Sub(m.lastCtrlCTime) <= doubleCtrlCWindow {
			return m, tea.Quit
		}
		m.lastCtrlCTime = now
		return m, nil
	case tea.KeyEscape:
		if m.statusLevel == StatusError {
			m.setStatus(StatusInfo, "")
		}
		return m, nil
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "r":
		if m.reload == nil {
			m.setStatus(StatusInfo, "Reloading is not available")
			return m, nil
		}
		m.logger.Info("catalog reload requested")
		m.setStatus(StatusLoading, "Reloading catalogs...")
		return m, tea.Batch(m.reloadCatalog(), m.statusSpinner.Tick)
	case "t":
		if m.mode == modeOutline {
			m.mode = modeBoxes
		} else {
			m.mode = modeOutline
		}
		m.updatePreview()
		return m, nil
	case "w":
		if m.renderer == "term" {
			m.renderer = "web"
		} else {
			m.renderer = "term"
		}
		m.updatePreview()
		return m, nil
	case "l", "L":
		m.logPanelOpen = !m.logPanelOpen
		m.resize()
		return m, nil
	case "J":
		m.preview.ScrollDown(1)
		return m, nil
	case "K":
		m.preview.ScrollUp(1)
		return m, nil
	}

	// Forward to list for navigation
	var cmd tea.Cmd
	m.layoutList, cmd = m.layoutList.Update(msg)
	if name := m.selectedName(); name != m.selected {
		m.selected = name
		m.updatePreview()
	}
	return m, cmd
}

// reloadCatalog runs the reload. Its outcome arrives through the store
// subscription as a CatalogReloadedMsg, so the command itself returns nothing.
func (m Model) reloadCatalog() tea.Cmd {
	reload := m.reload
	logger := m.logger
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
		defer cancel()
		if err := reload(ctx); err != nil {
			logger.Debug("reload returned error", "error", err)
		}
		return nil
	}
}

func clearStatusAfter(message string, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{message: message}
	})
}

func (m *Model) setStatus(level StatusLevel, message string) {
	m.statusLevel = level
	m.statusMessage = message
}

// resize recomputes pane sizes after a window or panel change.
func (m *Model) resize() {
	l := ComputeLayout(m.width, m.height, m.logPanelOpen)
	m.layoutList.SetSize(l.List.Width, l.List.BodyHeight())
	m.preview.Width = max(l.Preview.Width-2, 1)
	m.preview.Height = l.Preview.BodyHeight()
	m.logViewport.Width = l.Logs.Width
	m.logViewport.Height = l.Logs.BodyHeight()
	m.updatePreview()
	m.updateLogViewport()
}

// refreshLayouts reloads the list from the store, keeping the selection
// when the layout still exists.
func (m *Model) refreshLayouts() {
	if m.store == nil {
		return
	}
	items := toListItems(m.store.Catalog())
	m.layoutList.SetItems(items)
	for i, item := range items {
		if item.(layoutItem).name == m.selected {
			m.layoutList.Select(i)
			break
		}
	}
	m.selected = m.selectedName()
	m.updatePreview()
}

func (m Model) selectedName() string {
	if item, ok := m.layoutList.SelectedItem().(layoutItem); ok {
		return item.name
	}
	return ""
}

// updatePreview rebuilds the preview of the selected layout.
func (m *Model) updatePreview() {
	m.preview.SetContent(m.previewContent())
	m.preview.GotoTop()
}

func (m *Model) previewContent() string {
	m.previewErr = nil
	if m.store == nil || m.selected == "" {
		return m.styles.InfoStyle().Render("No layouts. Add catalogs to config.yaml.")
	}
	r, _ := render.ByName(m.renderer)
	c := m.store.Catalog()
	h, err := c.Build(m.selected, r)
	if err != nil {
		m.previewErr = err
		return m.styles.ErrorStyle().Render("Build failed") + "\n\n" + err.Error()
	}

	title := m.styles.TitleStyle().Render(h.Title(context.Background()))
	meta := fmt.Sprintf("%s · %s renderer · %s", h.Layout().Kind().Name, m.renderer, m.mode)
	if ws := h.Layout().WindowSize(); ws != nil {
		meta += fmt.Sprintf(" · window %d", ws.Width)
		if ws.Height > 0 {
			meta += fmt.Sprintf("x%d", ws.Height)
		}
	}
	header := title + "\n" + m.styles.SubtitleStyle().Render(meta) + "\n\n"

	if m.mode == modeBoxes {
		return header + render.Boxes(h, m.styles.BoxStyles())
	}
	return header + render.Text(h)
}

func (m *Model) addLogEntries(entries []logging.Entry) {
	m.logEntries = append(m.logEntries, entries...)
	if over := len(m.logEntries) - maxLogEntries; over > 0 {
		m.logEntries = append(m.logEntries[:0:0], m.logEntries[over:]...)
	}
	m.updateLogViewport()
}

func (m *Model) updateLogViewport() {
	if !m.logPanelOpen {
		return
	}
	m.logViewport.SetContent(m.renderLogEntries())
	m.logViewport.GotoBottom()
}
