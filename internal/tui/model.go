package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"linolayout/internal/catalog"
	"linolayout/internal/config"
	"linolayout/internal/logging"
)

// maxLogEntries bounds the log panel history.
const maxLogEntries = 500

// StatusLevel selects the icon and colour of the status bar message.
type StatusLevel int

const (
	StatusInfo StatusLevel = iota
	StatusLoading
	StatusSuccess
	StatusError
)

type previewMode int

const (
	modeOutline previewMode = iota
	modeBoxes
)

func (p previewMode) String() string {
	if p == modeBoxes {
		return "boxes"
	}
	return "outline"
}

// LogSource provides scoped loggers and the entries they produce.
type LogSource interface {
	logging.LoggerProvider
	Entries() <-chan logging.Entry
}

// Options configure NewModel.
type Options struct {
	Config *config.Config
	Store  *catalog.Store
	// Reload loads the catalogs again and updates Store. The outcome
	// arrives as an events.CatalogReloadedMsg. Nil disables reloading.
	Reload func(ctx context.Context) error
	// Logs is optional.
	Logs LogSource
}

// Model is the layout browser: a list of catalog layouts next to a
// preview of the selected one.
type Model struct {
	width     int
	height    int
	themeName string
	styles    *Styles
	logger    *logging.ScopedLogger

	store  *catalog.Store
	reload func(ctx context.Context) error

	layoutList list.Model
	selected   string
	preview    viewport.Model
	mode       previewMode
	renderer   string
	// previewErr is the build error of the selected layout.
	previewErr error

	logs         LogSource
	logEntries   []logging.Entry
	logPanelOpen bool
	logViewport  viewport.Model

	listenURLs    []string
	statusLevel   StatusLevel
	statusMessage string
	statusSpinner spinner.Model
	lastCtrlCTime time.Time
}

// NewModel creates a new TUI model over the catalog in opts.Store.
func NewModel(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		def := config.DefaultConfig()
		cfg = &def
	}
	styles := NewStyles(cfg.Theme)

	layoutList := list.New(nil, newLayoutDelegate(styles), 0, 0)
	layoutList.SetShowTitle(false)
	layoutList.SetShowStatusBar(false)
	layoutList.SetFilteringEnabled(false)
	layoutList.SetShowHelp(false)

	logger := logging.NopLogger()
	if opts.Logs != nil {
		logger = opts.Logs.For("tui")
	}

	m := Model{
		themeName:     cfg.Theme,
		styles:        styles,
		logger:        logger,
		store:         opts.Store,
		reload:        opts.Reload,
		layoutList:    layoutList,
		preview:       viewport.New(0, 0),
		renderer:      "term",
		logs:          opts.Logs,
		logViewport:   viewport.New(0, 0),
		statusSpinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	m.refreshLayouts()
	return m
}

// Init returns the initial command to run.
func (m Model) Init() tea.Cmd {
	if m.logs == nil {
		return nil
	}
	return consumeLogEntries(m.logs.Entries())
}

// consumeLogEntries waits for one entry, then takes whatever else is
// already buffered.
func consumeLogEntries(ch <-chan logging.Entry) tea.Cmd {
	return func() tea.Msg {
		first, ok := <-ch
		if !ok {
			return nil
		}
		entries := []logging.Entry{first}
		for len(entries) < 100 {
			select {
			case e, ok := <-ch:
				if !ok {
					return logEntriesMsg{entries: entries}
				}
				entries = append(entries, e)
			default:
				return logEntriesMsg{entries: entries}
			}
		}
		return logEntriesMsg{entries: entries}
	}
}
