package web

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// readEvent reads one SSE event, returning its name and data.
func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var name, data string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read event: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			return name, data
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestHandleEvents(t *testing.T) {
	s, store := newTestServer(t, Config{})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/events error = %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	r := bufio.NewReader(resp.Body)
	name, data := readEvent(t, r)
	if name != "connected" || data != `{"version":1}` {
		t.Fatalf("first event = %s %s", name, data)
	}

	store.Update(loadCatalog(t, shopYAML), nil)
	name, data = readEvent(t, r)
	if name != eventReload || data != `{"layouts":2,"version":2}` {
		t.Errorf("reload event = %s %s", name, data)
	}

	store.Update(nil, errors.New("shop.yaml: bad indent"))
	name, data = readEvent(t, r)
	if name != eventReloadError || data != `{"error":"shop.yaml: bad indent","version":2}` {
		t.Errorf("error event = %s %s", name, data)
	}
}

func TestEventBroker_DropsWhenFull(t *testing.T) {
	b := newEventBroker()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for i := 0; i < 10; i++ {
		b.Publish(event{Name: eventReload})
	}
	if got := len(ch); got != cap(ch) {
		t.Errorf("buffered %d events, want %d", got, cap(ch))
	}

	b.Unsubscribe(ch)
	b.Publish(event{Name: eventReload})
	if got := len(ch); got != cap(ch) {
		t.Errorf("unsubscribed channel received an event")
	}
}
