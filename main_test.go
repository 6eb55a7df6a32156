package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"linolayout/internal/catalog"
	"linolayout/internal/cli"
	"linolayout/internal/events"
	"linolayout/internal/logging"
)

const testCatalog = `
sources:
  - name: shop.Products
    fields:
      - {name: title, type: char}
      - {name: price, type: decimal}
layouts:
  - name: shop.Products.detail
    kind: detail
    source: shop.Products
    main: "title price"
`

func writeTestConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "catalogs"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "catalogs", "shop.yaml"), []byte(testCatalog), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := "log_level: debug\ncatalogs: [catalogs]\nweb: {bind: 127.0.0.1, port: 0}\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func drainEntries(lm *logging.Manager) []logging.Entry {
	_ = lm.Sync()
	var entries []logging.Entry
	for {
		select {
		case e := <-lm.Entries():
			entries = append(entries, e)
		default:
			return entries
		}
	}
}

func TestRuntimeLogsByScope(t *testing.T) {
	dir := writeTestConfigDir(t)
	rt, err := cli.OpenRuntime(context.Background(), dir)
	if err != nil {
		t.Fatalf("OpenRuntime() error = %v", err)
	}
	defer rt.Close()

	if err := rt.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	w := httptest.NewRecorder()
	rt.Web.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/layouts/shop.Products.detail", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET layout status = %d: %s", w.Code, w.Body)
	}

	seen := make(map[string]string)
	for _, e := range drainEntries(rt.Logs) {
		seen[e.Message] = e.Scope
	}
	for msg, scope := range map[string]string{
		"catalog loaded":   "app",
		"catalog reloaded": "app",
		"layout built":     "layout",
	} {
		if got, ok := seen[msg]; !ok || got != scope {
			t.Errorf("entry %q: scope = %q (logged %v), want %q", msg, got, ok, scope)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "linolayout.log")); err != nil {
		t.Errorf("log file was not created: %v", err)
	}
}

func TestForwardCatalogChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.yaml")
	if err := os.WriteFile(path, []byte(testCatalog), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := catalog.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	store := catalog.NewStore(c)

	var msgs []tea.Msg
	forwardCatalogChanges(store, func(msg tea.Msg) { msgs = append(msgs, msg) })

	boom := errors.New("boom")
	store.Update(nil, boom)
	store.Update(c, nil)

	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	failed, ok := msgs[0].(events.CatalogReloadedMsg)
	if !ok || !errors.Is(failed.Err, boom) || failed.Version != 1 {
		t.Errorf("first message = %#v, want failed reload at version 1", msgs[0])
	}
	reloaded, ok := msgs[1].(events.CatalogReloadedMsg)
	if !ok || reloaded.Err != nil || reloaded.Version != 2 {
		t.Errorf("second message = %#v, want reload to version 2", msgs[1])
	}
}
