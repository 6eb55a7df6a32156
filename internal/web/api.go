// pattern: Imperative Shell

package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"linolayout/internal/catalog"
	"linolayout/internal/dashboard"
	"linolayout/internal/layout"
	"linolayout/internal/render"
	"linolayout/internal/tracing"
)

var errUnknownRenderer = errors.New("unknown renderer")

// LayoutSummary is one row of GET /api/layouts.
type LayoutSummary struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Source string `json:"source,omitempty"`
	Title  string `json:"title"`
	File   string `json:"file"`
}

// LayoutResponse is the element tree of a layout built by one renderer.
type LayoutResponse struct {
	Name        string             `json:"name"`
	Kind        string             `json:"kind"`
	Title       string             `json:"title"`
	Renderer    string             `json:"renderer"`
	Version     uint64             `json:"version"`
	Width       int                `json:"width"`
	Height      int                `json:"height"`
	Window      *layout.WindowSize `json:"window,omitempty"`
	Params      *ParamsResponse    `json:"params,omitempty"`
	StoreFields []layout.Field     `json:"store_fields"`
	Main        layout.Element     `json:"main"`
}

// ParamsResponse describes the values a parameter panel submits.
type ParamsResponse struct {
	URLParam string         `json:"url_param"`
	Fields   []layout.Field `json:"fields"`
}

// ChoicesResponse lists the choices of a field.
type ChoicesResponse struct {
	Count int         `json:"count"`
	Rows  []ChoiceRow `json:"rows"`
}

type ChoiceRow struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":  "ok",
		"version": s.store.Version(),
		"layouts": len(s.store.Catalog().Names()),
	}
	if err := s.store.LastError(); err != nil {
		resp["reload_error"] = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleListLayouts handles GET /api/layouts.
func (s *Server) handleListLayouts(w http.ResponseWriter, r *http.Request) {
	c := s.store.Catalog()
	result := make([]LayoutSummary, 0, len(c.Names()))
	for _, name := range c.Names() {
		e, err := c.Lookup(name)
		if err != nil {
			continue
		}
		result = append(result, summarize(r.Context(), e))
	}
	writeJSON(w, http.StatusOK, result)
}

func summarize(ctx context.Context, e *catalog.Entry) LayoutSummary {
	sum := LayoutSummary{
		Name:  e.Name,
		Kind:  e.Layout.Kind().Name,
		Title: e.Layout.Title(ctx),
		File:  e.File,
	}
	if ds := e.Layout.DataSource(); ds != nil {
		sum.Source = ds.Name()
	}
	return sum
}

// handleGetLayout handles GET /api/layouts/{name}?renderer=web|term.
// Returns 404 for unknown layouts, 400 for unknown renderers and 422
// when the layout fails to build.
func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	resp, err := s.buildLayout(r.Context(), r.PathValue("name"), r.URL.Query().Get("renderer"))
	if err != nil {
		s.writeBuildError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleLayoutText handles GET /api/layouts/{name}/text.
func (s *Server) handleLayoutText(w http.ResponseWriter, r *http.Request) {
	h, err := s.build(r.Context(), r.PathValue("name"), r.URL.Query().Get("renderer"))
	if err != nil {
		s.writeBuildError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(render.Text(h)))
}

func (s *Server) build(ctx context.Context, name, rendererName string) (h *layout.Handle, err error) {
	if rendererName == "" {
		rendererName = "web"
	}
	ctx, span := s.tracer.Start(ctx, "layout.build",
		tracing.LayoutKey.String(name),
		tracing.RendererKey.String(rendererName),
	)
	defer func() { tracing.End(span, err) }()

	r, ok := render.ByName(rendererName)
	if !ok {
		return nil, errUnknownRenderer
	}
	h, err = s.store.Catalog().Build(name, r)
	if err != nil {
		return nil, err
	}
	requestLogger(ctx, s.buildLog).Debug("layout built", "layout", name, "renderer", rendererName)
	return h, nil
}

func (s *Server) buildLayout(ctx context.Context, name, rendererName string) (LayoutResponse, error) {
	h, err := s.build(ctx, name, rendererName)
	if err != nil {
		return LayoutResponse{}, err
	}
	l := h.Layout()
	resp := LayoutResponse{
		Name:        name,
		Kind:        l.Kind().Name,
		Title:       h.Title(ctx),
		Renderer:    h.Renderer().HandleKey(),
		Version:     s.store.Version(),
		Width:       h.Width(),
		Height:      h.Height(),
		Window:      l.WindowSize(),
		StoreFields: h.StoreFields(),
		Main:        h.Main(),
	}
	if p := h.Params(); p != nil {
		resp.Params = &ParamsResponse{URLParam: p.URLParam, Fields: p.Fields}
	}
	return resp, nil
}

func (s *Server) writeBuildError(w http.ResponseWriter, r *http.Request, err error) {
	status := buildErrorStatus(err)
	if status >= http.StatusInternalServerError || status == http.StatusUnprocessableEntity {
		requestLogger(r.Context(), s.logger).Warn("layout build failed", "layout", r.PathValue("name"), "error", err)
	}
	writeError(w, status, err.Error())
}

func buildErrorStatus(err error) int {
	switch {
	case errors.Is(err, catalog.ErrUnknownLayout):
		return http.StatusNotFound
	case errors.Is(err, errUnknownRenderer):
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}

// handleChoices handles GET /api/choices/{app}/{Source}/{field} and the
// action parameter variant under /api/apchoices. The optional q filters
// by substring.
func (s *Server) handleChoices(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.PathValue("path"), "/"), "/")
	if len(parts) < 2 {
		writeError(w, http.StatusBadRequest, "want /<source>/<field>")
		return
	}
	field := parts[len(parts)-1]
	ds, err := s.store.Catalog().Source(strings.Join(parts[:len(parts)-1], "."))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	choices, ok := lookupChoices(ds, field)
	if !ok {
		writeError(w, http.StatusNotFound, "field "+field+" has no choices")
		return
	}

	q := strings.ToLower(r.URL.Query().Get("q"))
	resp := ChoicesResponse{Rows: []ChoiceRow{}}
	for _, c := range choices {
		if q != "" && !strings.Contains(strings.ToLower(c), q) {
			continue
		}
		resp.Rows = append(resp.Rows, ChoiceRow{Value: c, Text: c})
	}
	resp.Count = len(resp.Rows)
	writeJSON(w, http.StatusOK, resp)
}

func lookupChoices(ds layout.DataSource, name string) ([]string, bool) {
	if c, ok := ds.(interface{ Choices(string) ([]string, bool) }); ok {
		return c.Choices(name)
	}
	if f, ok := ds.DataElem(name); ok && len(f.Choices) > 0 {
		return f.Choices, true
	}
	return nil, false
}

// handleDashboard handles GET /api/dashboard?roles=a,b. Without roles the
// configured ones apply.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	roles := s.roles
	if q := r.URL.Query().Get("roles"); q != "" {
		roles = strings.Split(q, ",")
	}

	reg, err := dashboard.FromCatalog(s.store.Catalog(), render.Web())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	var sb strings.Builder
	if err := reg.Render(r.Context(), &sb, roles); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(sb.String()))
}

// writeJSON writes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
