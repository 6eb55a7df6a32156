package web

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"linolayout/internal/catalog"
	"linolayout/internal/logging"
)

const shopYAML = `
sources:
  - name: shop.Products
    hidden: [id]
    fields:
      - {name: id, type: int}
      - {name: title, type: char}
      - {name: category, type: choice, choices: [books, music, games]}
      - {name: price, type: decimal}
layouts:
  - name: shop.Products.detail
    kind: detail
    source: shop.Products
    title: Product
    main: "title category price"
  - name: shop.Products.broken
    kind: detail
    source: shop.Products
    main: "title categroy"
dashboard:
  - {layout: shop.Products.detail}
`

const detailText = "- main (horizontal)\n" +
	"  - title (char)\n" +
	"  - category (choice)\n" +
	"  - price (decimal)\n"

func writeCatalog(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "shop.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}
	return path
}

func loadCatalog(t *testing.T, content string) *catalog.Catalog {
	t.Helper()
	path := writeCatalog(t, t.TempDir(), content)
	c, err := catalog.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return c
}

func newTestServer(t *testing.T, cfg Config) (*Server, *catalog.Store) {
	t.Helper()
	store := catalog.NewStore(loadCatalog(t, shopYAML))
	logs := logging.NewTestLogManager(100)
	t.Cleanup(func() { _ = logs.Close() })
	return New(cfg, store, logs, nil), store
}

func TestServer_ListenServeShutdown(t *testing.T) {
	s, _ := newTestServer(t, Config{Bind: "127.0.0.1", Port: 0})

	ln, err := s.Listen()
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- s.Serve(ln) }()

	resp, err := http.Get("http://" + s.Addr() + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if resp.Header.Get(requestIDHeader) == "" {
		t.Error("response has no request ID")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := <-done; err != http.ErrServerClosed {
		t.Errorf("Serve() error = %v, want ErrServerClosed", err)
	}
}

func TestServer_AddrBeforeListen(t *testing.T) {
	s, _ := newTestServer(t, Config{Bind: "127.0.0.1", Port: 8123})
	if got := s.Addr(); got != "127.0.0.1:8123" {
		t.Errorf("Addr() = %q, want %q", got, "127.0.0.1:8123")
	}
}
