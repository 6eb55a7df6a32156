// pattern: Imperative Shell

package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"linolayout/internal/catalog"
)

const (
	eventReload      = "reload"
	eventReloadError = "reload-error"
)

type event struct {
	Name string
	Data string
}

// eventBroker fans out catalog events to SSE and websocket subscribers.
type eventBroker struct {
	mu          sync.Mutex
	subscribers map[chan event]struct{}
}

func newEventBroker() *eventBroker {
	return &eventBroker{
		subscribers: make(map[chan event]struct{}),
	}
}

// Subscribe returns a buffered channel of events. The caller must call
// Unsubscribe when done.
func (b *eventBroker) Subscribe() chan event {
	ch := make(chan event, 4)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *eventBroker) Unsubscribe(ch chan event) {
	b.mu.Lock()
	delete(b.subscribers, ch)
	b.mu.Unlock()
}

// Publish never blocks. A subscriber whose buffer is full misses the event.
func (b *eventBroker) Publish(e event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		select {
		case ch <- e:
		default:
		}
	}
}

func (s *Server) publishChange(c catalog.Change) {
	if c.Err != nil {
		data, _ := json.Marshal(map[string]any{"version": c.Version, "error": c.Err.Error()})
		s.events.Publish(event{Name: eventReloadError, Data: string(data)})
		return
	}
	data, _ := json.Marshal(map[string]any{"version": c.Version, "layouts": len(c.Catalog.Names())})
	s.events.Publish(event{Name: eventReload, Data: string(data)})
}

// handleEvents is the SSE endpoint. It sends "connected" on open, then
// one event per catalog reload.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.events.Subscribe()
	defer s.events.Unsubscribe(ch)

	fmt.Fprintf(w, "event: connected\ndata: {\"version\":%d}\n\n", s.store.Version())
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case e := <-ch:
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Name, e.Data)
			flusher.Flush()
		}
	}
}
