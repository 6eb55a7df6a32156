// pattern: Imperative Shell

package web

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const liveWriteTimeout = 5 * time.Second

// LiveMessage is pushed to live preview clients: the layout on connect
// and after every catalog reload, or the error that prevented the build.
type LiveMessage struct {
	Type   string          `json:"type"` // "layout" or "error"
	Layout *LayoutResponse `json:"layout,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// handleLive upgrades to a websocket that streams a layout preview.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	renderer := r.URL.Query().Get("renderer")
	if _, err := s.store.Catalog().Lookup(name); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	// Do not use r.Context() after the upgrade.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"127.0.0.1:*", "localhost:*"},
	})
	if err != nil {
		s.logger.Error("websocket accept failed", "error", err)
		return
	}
	defer func() { _ = conn.CloseNow() }()

	ch := s.events.Subscribe()
	defer s.events.Unsubscribe(ch)

	ctx := conn.CloseRead(context.Background())
	log := requestLogger(r.Context(), s.logger).With("layout", name)
	log.Info("live preview connected")

	send := func() error {
		msg := LiveMessage{Type: "layout"}
		resp, err := s.buildLayout(ctx, name, renderer)
		if err != nil {
			msg = LiveMessage{Type: "error", Error: err.Error()}
		} else {
			msg.Layout = &resp
		}
		wctx, cancel := context.WithTimeout(ctx, liveWriteTimeout)
		defer cancel()
		return wsjson.Write(wctx, conn, msg)
	}

	if err := send(); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			log.Info("live preview disconnected")
			return
		case e := <-ch:
			if e.Name != eventReload && e.Name != eventReloadError {
				continue
			}
			if err := send(); err != nil {
				return
			}
		}
	}
}
