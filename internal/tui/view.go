// pattern: Imperative Shell

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"linolayout/internal/logging"
)

// View renders the TUI.
func (m Model) View() string {
	layout := ComputeLayout(m.width, m.height, m.logPanelOpen)

	header := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.TitleStyle().Width(layout.Header.Width).Render("Lino Layout Browser"),
		m.styles.SubtitleStyle().Width(layout.Header.Width).Render(m.renderSubtitle()),
	)

	content := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderList(layout),
		m.renderPreview(layout),
	)

	parts := []string{header, content}
	if m.logPanelOpen {
		separator := m.styles.SeparatorStyle().
			Width(layout.Separator.Width).
			Render(strings.Repeat("─", layout.Separator.Width))
		parts = append(parts, separator, m.renderLogPanel(layout))
	}
	parts = append(parts, lipgloss.NewStyle().Width(layout.StatusBar.Width).Render(m.renderStatusBar(layout.StatusBar.Width)))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderSubtitle() string {
	var parts []string
	if m.store != nil {
		c := m.store.Catalog()
		parts = append(parts, fmt.Sprintf("%d layouts in %d files (v%d)", len(c.Names()), len(c.Files()), m.store.Version()))
	}
	parts = append(parts, m.listenURLs...)
	return strings.Join(parts, " · ")
}

func (m Model) renderList(layout Layout) string {
	header := m.styles.PanelHeaderStyle(true).Width(layout.List.Width).Render(" Layouts")
	var body string
	if len(m.layoutList.Items()) == 0 {
		body = m.styles.InfoStyle().Render("No layouts.")
	} else {
		body = m.layoutList.View()
	}
	body = lipgloss.NewStyle().
		Width(layout.List.Width).
		Height(layout.List.BodyHeight()).
		MaxHeight(layout.List.BodyHeight()).
		Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

func (m Model) renderPreview(layout Layout) string {
	title := " Preview"
	if m.selected != "" {
		title += ": " + m.selected
	}
	header := m.styles.PanelHeaderStyle(false).Width(layout.Preview.Width).Render(title)
	body := lipgloss.NewStyle().
		Width(layout.Preview.Width).
		Height(layout.Preview.BodyHeight()).
		PaddingLeft(2).
		Render(m.preview.View())
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

// renderStatusBar renders the status bar with operation feedback and help.
func (m Model) renderStatusBar(width int) string {
	var statusIcon string
	var messageStyle lipgloss.Style

	switch m.statusLevel {
	case StatusLoading:
		statusIcon = m.statusSpinner.View()
		messageStyle = m.styles.InfoStatusStyle()
	case StatusSuccess:
		statusIcon = m.styles.SuccessStyle().Render("✓")
		messageStyle = m.styles.SuccessStyle()
	case StatusError:
		statusIcon = m.styles.ErrorStyle().Render("✗")
		messageStyle = m.styles.ErrorStyle()
	default:
		messageStyle = m.styles.InfoStatusStyle()
	}

	var statusText string
	if statusIcon != "" {
		statusText = statusIcon + " " + messageStyle.Render(m.statusMessage)
	} else if m.statusMessage != "" {
		statusText = messageStyle.Render(m.statusMessage)
	}
	if m.statusLevel == StatusError {
		statusText += m.styles.HelpStyle().Render(" (esc to clear)")
	}

	help := m.styles.HelpStyle().Render("↑/↓: select • t: outline/boxes • w: web/term • r: reload • l: logs • q: quit")

	spacer := strings.Repeat(" ", max(width-lipgloss.Width(statusText)-lipgloss.Width(help)-2, 1))
	return lipgloss.JoinHorizontal(lipgloss.Bottom, statusText, spacer, help)
}

// renderLogEntry formats a single log entry for display.
func (m Model) renderLogEntry(entry logging.Entry) string {
	ts := m.styles.LogTimestampStyle().Render(entry.Timestamp.Format("15:04:05"))
	level := m.styles.LogLevelStyle(entry.Level).Render(fmt.Sprintf("%-5s", entry.Level))
	scope := m.styles.LogScopeStyle().Render("[" + entry.Scope + "]")
	return fmt.Sprintf("%s %s %s %s", ts, level, scope, entry.Message)
}

func (m Model) renderLogEntries() string {
	if len(m.logEntries) == 0 {
		return m.styles.InfoStyle().Render("No log entries")
	}
	lines := make([]string, len(m.logEntries))
	for i, e := range m.logEntries {
		lines[i] = m.renderLogEntry(e)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderLogPanel(layout Layout) string {
	header := m.styles.PanelHeaderStyle(false).Width(layout.Logs.Width).Render(fmt.Sprintf(" Logs (%d)", len(m.logEntries)))
	return lipgloss.JoinVertical(lipgloss.Left, header, m.logViewport.View())
}
