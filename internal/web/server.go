// pattern: Imperative Shell

package web

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"linolayout/internal/catalog"
	"linolayout/internal/logging"
	"linolayout/internal/tracing"
)

// Server serves the layout API.
type Server struct {
	httpServer *http.Server
	store      *catalog.Store
	logger     *logging.ScopedLogger
	buildLog   *logging.ScopedLogger
	tracer     *tracing.Provider
	roles      []string
	addr       string
	listener   net.Listener
	events     *eventBroker
	handler    http.Handler
}

// Config holds web server configuration.
type Config struct {
	Bind string
	Port int
	// Roles apply to /api/dashboard requests that do not name any.
	Roles []string
}

// New creates a web server over the catalogs of store. Catalog reloads are
// pushed to SSE and websocket clients. tracer may be nil.
func New(cfg Config, store *catalog.Store, logProvider logging.LoggerProvider, tracer *tracing.Provider) *Server {
	addr := fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port)
	s := &Server{
		store:    store,
		logger:   logProvider.For("web"),
		buildLog: logProvider.For("layout"),
		tracer:   tracer,
		roles:    cfg.Roles,
		addr:     addr,
		events:   newEventBroker(),
	}
	store.Subscribe(s.publishChange)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("GET /api/layouts", s.handleListLayouts)
	mux.HandleFunc("GET /api/layouts/{name}", s.handleGetLayout)
	mux.HandleFunc("GET /api/layouts/{name}/text", s.handleLayoutText)
	mux.HandleFunc("GET /api/layouts/{name}/live", s.handleLive)
	mux.HandleFunc("GET /api/choices/{path...}", s.handleChoices)
	mux.HandleFunc("GET /api/apchoices/{path...}", s.handleChoices)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)

	s.handler = s.instrument(mux)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          s.logger.StdLogger(),
	}
	return s
}

// Handler returns the instrumented router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Listen binds the configured address. Call Serve afterwards; the split
// lets callers learn the bound address of an ephemeral port first.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("web server listen: %w", err)
	}
	s.listener = ln
	return ln, nil
}

// Serve accepts connections on ln until the server stops.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("web server started", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Addr returns the bound address after Listen, the configured one before.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("web server shutting down")
	return s.httpServer.Shutdown(ctx)
}
