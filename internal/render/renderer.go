// pattern: Functional Core

package render

import (
	"net/url"
	"strings"

	"linolayout/internal/layout"
)

// nullType marks fields that exist in some configurations only.
const nullType = "null"

// Config parameterises a Renderer.
type Config struct {
	// Key identifies the renderer in layout handle caches.
	Key       string
	URLPrefix string
	// DefaultFieldWidth applies to fields whose type has no entry in FieldWidths.
	DefaultFieldWidth int
	FieldWidths       map[string]int
}

// Renderer builds Node trees for layout handles.
type Renderer struct {
	cfg Config
}

// NewRenderer returns a renderer with the given configuration.
func NewRenderer(cfg Config) *Renderer {
	return &Renderer{cfg: cfg}
}

// Web returns the renderer behind the JSON API.
func Web() *Renderer {
	return NewRenderer(Config{Key: "web", URLPrefix: "/api"})
}

// Term returns the renderer used for terminal previews. Widths are in cells.
func Term() *Renderer {
	return NewRenderer(Config{
		Key:               "term",
		URLPrefix:         "/api",
		DefaultFieldWidth: 20,
		FieldWidths: map[string]int{
			"bool":    6,
			"date":    12,
			"int":     8,
			"decimal": 10,
			"fk":      24,
			"text":    40,
		},
	})
}

// ByName returns the stock renderer with the given key.
func ByName(name string) (*Renderer, bool) {
	switch name {
	case "web":
		return Web(), true
	case "term":
		return Term(), true
	default:
		return nil, false
	}
}

func (r *Renderer) HandleKey() string { return r.cfg.Key }

func (r *Renderer) CreatePanel(_ *layout.Handle, name string, vertical bool, children []layout.Element, opts layout.Options) (layout.Element, error) {
	n := newPanel(name, vertical, children)
	width, height := 0, 0
	for _, c := range children {
		if c.Hidden() {
			continue
		}
		ch := max(c.Height(), 1)
		if vertical {
			width = max(width, c.Width())
			height += ch
		} else {
			width += c.Width()
			height = max(height, ch)
		}
	}
	n.SetSize(width, height)
	n.Setup(opts)
	return n, nil
}

func (r *Renderer) CreateElement(h *layout.Handle, name string, opts layout.Options) ([]layout.Element, error) {
	f, ok := h.DataElem(name)
	if !ok {
		ds := h.Layout().DataSource()
		if ds != nil {
			return nil, &layout.UnknownElementError{
				Name:       name,
				Layout:     h.Layout().String(),
				Suggestion: layout.Suggest(name, fieldNames(ds)),
			}
		}
		f = layout.Field{Name: name}
	}
	if f.Type == nullType {
		return nil, nil
	}
	h.AddStoreField(f)

	if len(f.Languages) == 0 {
		return []layout.Element{r.field(h, name, f, "", opts)}, nil
	}
	elems := make([]layout.Element, 0, len(f.Languages))
	for _, lang := range f.Languages {
		elems = append(elems, r.field(h, name+"_"+lang, f, lang, opts))
	}
	return elems, nil
}

func (r *Renderer) field(h *layout.Handle, name string, f layout.Field, lang string, opts layout.Options) *Node {
	n := newField(name)
	n.FieldType = f.Type

	label := f.Label
	if label == "" {
		label = f.Name
	}
	if lang != "" {
		label += " (" + lang + ")"
	}
	n.SetLabel(label)

	width := r.cfg.DefaultFieldWidth
	if w, ok := r.cfg.FieldWidths[f.Type]; ok {
		width = w
	}
	n.SetSize(width, 1)
	if len(f.Choices) > 0 {
		n.ChoicesURL = h.ChoicesURL(f.Name, nil)
	}
	n.Setup(opts)
	return n
}

func (r *Renderer) BuildURL(parts []string, query url.Values) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	u := r.cfg.URLPrefix + "/" + strings.Join(escaped, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func fieldNames(ds layout.DataSource) []string {
	var names []string
	for _, f := range ds.WildcardFields() {
		names = append(names, f.Name)
	}
	if ps, ok := ds.(interface{ ParamNames() []string }); ok {
		names = append(names, ps.ParamNames()...)
	}
	return names
}
