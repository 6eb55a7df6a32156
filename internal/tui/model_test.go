package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"linolayout/internal/catalog"
	"linolayout/internal/config"
	"linolayout/internal/events"
	"linolayout/internal/logging"
)

const shopYAML = `
sources:
  - name: shop.Products
    hidden: [id]
    fields:
      - {name: id, type: int}
      - {name: title, type: char}
      - {name: price, type: decimal}
layouts:
  - name: shop.Products.columns
    kind: columns
    source: shop.Products
    main: "*"
  - name: shop.Products.detail
    kind: detail
    source: shop.Products
    title: Product
    main: "title price"
`

func loadStore(t *testing.T, yaml string) (*catalog.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := catalog.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return catalog.NewStore(c), path
}

func newTestModel(t *testing.T, opts Options) Model {
	t.Helper()
	if opts.Store == nil {
		opts.Store, _ = loadStore(t, shopYAML)
	}
	m := NewModel(opts)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model)
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEscape}
		case "ctrl+c":
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		var updated tea.Model
		updated, cmd = m.Update(msg)
		m = updated.(Model)
	}
	return m, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestNewModel_SelectsFirstLayout(t *testing.T) {
	m := newTestModel(t, Options{})

	if m.selected != "shop.Products.columns" {
		t.Errorf("selected = %q, want shop.Products.columns", m.selected)
	}
	if len(m.layoutList.Items()) != 2 {
		t.Errorf("list has %d items, want 2", len(m.layoutList.Items()))
	}
	content := m.previewContent()
	for _, want := range []string{"- id (int, 8x1, hidden)", "- title (char, 20x1)", "columns · term renderer · outline"} {
		if !strings.Contains(content, want) {
			t.Errorf("preview missing %q:\n%s", want, content)
		}
	}
}

func TestNewModel_UsesConfigTheme(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Theme = "latte"
	m := NewModel(Options{Config: &cfg})
	if m.themeName != "latte" {
		t.Errorf("themeName = %q, want latte", m.themeName)
	}
}

func TestNewModel_WithoutStore(t *testing.T) {
	m := NewModel(Options{})
	if m.selected != "" {
		t.Errorf("selected = %q, want empty", m.selected)
	}
	if !strings.Contains(m.previewContent(), "No layouts") {
		t.Errorf("preview = %q, want the empty hint", m.previewContent())
	}
}

func TestUpdate_DownSelectsNextLayout(t *testing.T) {
	m, _ := press(t, newTestModel(t, Options{}), "down")

	if m.selected != "shop.Products.detail" {
		t.Fatalf("selected = %q, want shop.Products.detail", m.selected)
	}
	content := m.previewContent()
	if !strings.Contains(content, "Product") || !strings.Contains(content, "- price (decimal, 10x1)") {
		t.Errorf("preview does not show the detail layout:\n%s", content)
	}
}

func TestUpdate_ToggleMode(t *testing.T) {
	m, _ := press(t, newTestModel(t, Options{}), "t")
	if m.mode != modeBoxes {
		t.Fatalf("mode = %s, want boxes", m.mode)
	}
	if !strings.Contains(m.previewContent(), "╭") {
		t.Errorf("boxes preview has no rounded border:\n%s", m.previewContent())
	}

	m, _ = press(t, m, "t")
	if m.mode != modeOutline {
		t.Errorf("mode = %s, want outline", m.mode)
	}
}

func TestUpdate_ToggleRenderer(t *testing.T) {
	m, _ := press(t, newTestModel(t, Options{}), "w")
	if m.renderer != "web" {
		t.Fatalf("renderer = %q, want web", m.renderer)
	}
	content := m.previewContent()
	if !strings.Contains(content, "web renderer") {
		t.Errorf("preview meta does not name the web renderer:\n%s", content)
	}
	if strings.Contains(content, "20x1") {
		t.Errorf("web preview shows terminal dimensions:\n%s", content)
	}

	m, _ = press(t, m, "w")
	if m.renderer != "term" {
		t.Errorf("renderer = %q, want term", m.renderer)
	}
}

func TestUpdate_BuildErrorShownInPreview(t *testing.T) {
	store, _ := loadStore(t, strings.Replace(shopYAML, `main: "title price"`, `main: "title pricee"`, 1))
	m, _ := press(t, newTestModel(t, Options{Store: store}), "down")

	if m.previewErr == nil {
		t.Fatal("previewErr = nil, want build error")
	}
	content := m.previewContent()
	if !strings.Contains(content, "Build failed") || !strings.Contains(content, `did you mean "price"`) {
		t.Errorf("preview = %q, want build error with suggestion", content)
	}
}

func TestUpdate_Quit(t *testing.T) {
	_, cmd := press(t, newTestModel(t, Options{}), "q")
	if !isQuit(cmd) {
		t.Error("q did not quit")
	}
}

func TestUpdate_DoubleCtrlC(t *testing.T) {
	m, cmd := press(t, newTestModel(t, Options{}), "ctrl+c")
	if isQuit(cmd) {
		t.Fatal("single ctrl+c quit")
	}
	_, cmd = press(t, m, "ctrl+c")
	if !isQuit(cmd) {
		t.Error("double ctrl+c did not quit")
	}
}

func TestUpdate_ReloadUnavailable(t *testing.T) {
	m, cmd := press(t, newTestModel(t, Options{}), "r")
	if cmd != nil {
		t.Error("reload without a reload func returned a command")
	}
	if m.statusLevel != StatusInfo || !strings.Contains(m.statusMessage, "not available") {
		t.Errorf("status = %d %q", m.statusLevel, m.statusMessage)
	}
}

func TestUpdate_ReloadRunsReloadFunc(t *testing.T) {
	called := make(chan struct{}, 1)
	m, cmd := press(t, newTestModel(t, Options{Reload: func(context.Context) error {
		called <- struct{}{}
		return errors.New("boom")
	}}), "r")

	if m.statusLevel != StatusLoading {
		t.Errorf("statusLevel = %d, want loading", m.statusLevel)
	}
	if cmd == nil {
		t.Fatal("no command returned")
	}
	if msg := m.reloadCatalog()(); msg != nil {
		t.Errorf("reload command returned %T, want nil", msg)
	}
	select {
	case <-called:
	default:
		t.Error("reload func was not called")
	}
}

func TestUpdate_CatalogReloaded(t *testing.T) {
	store, path := loadStore(t, shopYAML)
	m, _ := press(t, newTestModel(t, Options{Store: store}), "down")

	renamed := strings.Replace(shopYAML, "title: Product", "title: Article", 1)
	renamed = strings.Replace(renamed, "  - name: shop.Products.columns\n    kind: columns\n    source: shop.Products\n    main: \"*\"\n", "", 1)
	if err := os.WriteFile(path, []byte(renamed), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := catalog.Load(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	store.Update(c, nil)

	updated, cmd := m.Update(events.CatalogReloadedMsg{Version: store.Version()})
	m = updated.(Model)

	if m.statusLevel != StatusSuccess || m.statusMessage != "Catalog reloaded (v2)" {
		t.Errorf("status = %d %q", m.statusLevel, m.statusMessage)
	}
	if cmd == nil {
		t.Error("no clear-status command scheduled")
	}
	if len(m.layoutList.Items()) != 1 || m.selected != "shop.Products.detail" {
		t.Errorf("after reload: %d items, selected %q", len(m.layoutList.Items()), m.selected)
	}
	if !strings.Contains(m.previewContent(), "Article") {
		t.Errorf("preview not rebuilt from the new catalog:\n%s", m.previewContent())
	}
}

func TestUpdate_CatalogReloadFailed(t *testing.T) {
	m := newTestModel(t, Options{})
	updated, _ := m.Update(events.CatalogReloadedMsg{Version: 1, Err: errors.New("shop.yaml: bad indent")})
	m = updated.(Model)

	if m.statusLevel != StatusError || !strings.Contains(m.statusMessage, "bad indent") {
		t.Fatalf("status = %d %q", m.statusLevel, m.statusMessage)
	}
	if !strings.Contains(m.View(), "esc to clear") {
		t.Error("error status has no clear hint")
	}

	m, _ = press(t, m, "esc")
	if m.statusLevel != StatusInfo || m.statusMessage != "" {
		t.Errorf("esc left status %d %q", m.statusLevel, m.statusMessage)
	}
}

func TestUpdate_ClearStatusOnlyMatchingMessage(t *testing.T) {
	m := newTestModel(t, Options{})
	m.setStatus(StatusSuccess, "newer")

	updated, _ := m.Update(clearStatusMsg{message: "older"})
	m = updated.(Model)
	if m.statusMessage != "newer" {
		t.Errorf("stale clear removed %q", m.statusMessage)
	}

	updated, _ = m.Update(clearStatusMsg{message: "newer"})
	m = updated.(Model)
	if m.statusMessage != "" {
		t.Errorf("statusMessage = %q, want cleared", m.statusMessage)
	}
}

func TestUpdate_LogEntries(t *testing.T) {
	logs := logging.NewTestLogManager(10)
	m := newTestModel(t, Options{Logs: logs})
	m, _ = press(t, m, "l")
	if !m.logPanelOpen {
		t.Fatal("log panel not open")
	}

	entries := make([]logging.Entry, maxLogEntries+5)
	for i := range entries {
		entries[i] = logging.Entry{Timestamp: time.Unix(0, 0), Level: "INFO", Scope: "catalog", Message: "loaded"}
	}
	entries[len(entries)-1].Message = "latest"

	updated, cmd := m.Update(logEntriesMsg{entries: entries})
	m = updated.(Model)

	if len(m.logEntries) != maxLogEntries {
		t.Errorf("kept %d entries, want %d", len(m.logEntries), maxLogEntries)
	}
	if cmd == nil {
		t.Error("log consumer not rescheduled")
	}
	if !strings.Contains(m.renderLogEntries(), "latest") {
		t.Error("latest entry not rendered")
	}
	if !strings.Contains(m.View(), "Logs (500)") {
		t.Error("log panel header missing from view")
	}
}

func TestInit_ConsumesLogEntries(t *testing.T) {
	logs := logging.NewTestLogManager(10)
	m := newTestModel(t, Options{Logs: logs})
	logs.For("catalog").Info("catalog loaded", "layouts", 2)

	cmd := m.Init()
	if cmd == nil {
		t.Fatal("Init returned nil")
	}
	msg, ok := cmd().(logEntriesMsg)
	if !ok || len(msg.entries) != 1 {
		t.Fatalf("Init command returned %#v", msg)
	}
	if msg.entries[0].Scope != "catalog" || msg.entries[0].Message != "catalog loaded" {
		t.Errorf("entry = %+v", msg.entries[0])
	}
}

func TestView_ShowsPanesAndHelp(t *testing.T) {
	m := newTestModel(t, Options{})
	updated, _ := m.Update(events.WebListenURLMsg{URL: "http://127.0.0.1:7411"})
	view := updated.(Model).View()

	for _, want := range []string{
		"Lino Layout Browser",
		"2 layouts in 1 files (v1)",
		"http://127.0.0.1:7411",
		" Layouts",
		" Preview: shop.Products.columns",
		"shop.Products.detail",
		"q: quit",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
