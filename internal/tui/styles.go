package tui

import (
	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"

	"linolayout/internal/render"
)

type Styles struct {
	flavor catppuccin.Flavor
}

func NewStyles(themeName string) *Styles {
	flavor := flavorFromName(themeName)
	return &Styles{flavor: flavor}
}

func flavorFromName(name string) catppuccin.Flavor {
	switch name {
	case "latte":
		return catppuccin.Latte
	case "frappe":
		return catppuccin.Frappe
	case "macchiato":
		return catppuccin.Macchiato
	case "mocha":
		return catppuccin.Mocha
	default:
		return catppuccin.Mocha
	}
}

func (s *Styles) color(c catppuccin.Color) lipgloss.Color {
	return lipgloss.Color(c.Hex)
}

func (s *Styles) TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(s.color(s.flavor.Mauve()))
}

func (s *Styles) SubtitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Subtext0()))
}

func (s *Styles) HelpStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Overlay0()))
}

func (s *Styles) InfoStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Text()))
}

func (s *Styles) AccentStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Teal()))
}

func (s *Styles) ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Red())).
		Bold(true)
}

func (s *Styles) SuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Green()))
}

func (s *Styles) InfoStatusStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Subtext1()))
}

// PanelHeaderStyle is the one-line header above a pane.
func (s *Styles) PanelHeaderStyle(focused bool) lipgloss.Style {
	st := lipgloss.NewStyle().Bold(true)
	if focused {
		return st.
			Foreground(s.color(s.flavor.Base())).
			Background(s.color(s.flavor.Mauve()))
	}
	return st.
		Foreground(s.color(s.flavor.Subtext0())).
		Background(s.color(s.flavor.Surface0()))
}

func (s *Styles) SeparatorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Surface1()))
}

func (s *Styles) LogTimestampStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.color(s.flavor.Overlay0()))
}

func (s *Styles) LogScopeStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.color(s.flavor.Lavender()))
}

// LogLevelStyle colours a level badge.
func (s *Styles) LogLevelStyle(level string) lipgloss.Style {
	st := lipgloss.NewStyle().Bold(true)
	switch level {
	case "DEBUG":
		return st.Foreground(s.color(s.flavor.Overlay1()))
	case "WARN":
		return st.Foreground(s.color(s.flavor.Yellow()))
	case "ERROR":
		return st.Foreground(s.color(s.flavor.Red()))
	default:
		return st.Foreground(s.color(s.flavor.Blue()))
	}
}

// BoxStyles returns the flavor's styles for the boxes preview.
func (s *Styles) BoxStyles() render.BoxStyles {
	return render.BoxStyles{
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(s.color(s.flavor.Surface2())),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(s.color(s.flavor.Mauve())),
		Field: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(s.color(s.flavor.Teal())).
			Foreground(s.color(s.flavor.Text())),
	}
}
