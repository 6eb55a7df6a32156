// pattern: Functional Core

package layout

import (
	"context"
	"fmt"
	"maps"
	"net/url"
	"slices"
)

// reservedDataElems are never looked up on the layout itself.
var reservedDataElems = map[string]bool{"name": true, "label": true}

// Renderer turns descriptor names into widgets. Either constructor may
// return nothing to suppress an element in the current configuration.
//
// Renderers are called while the layout is locked for the build and must
// only use the Handle passed to them.
type Renderer interface {
	// HandleKey identifies the renderer in the layout's handle cache.
	HandleKey() string
	CreatePanel(h *Handle, name string, vertical bool, children []Element, opts Options) (Element, error)
	// CreateElement returns one element per physical field; a field with
	// several languages yields several elements.
	CreateElement(h *Handle, name string, opts Options) ([]Element, error)
	BuildURL(parts []string, query url.Values) string
}

// Handle is the element tree built from a Layout for one renderer.
type Handle struct {
	layout      *Layout
	renderer    Renderer
	hidden      map[string]bool
	names       map[string][]Element
	storeFields []Field
	params      *ParamStore
	building    []string // panels being defined, outermost first

	main   Element
	width  int
	height int
}

func newHandle(l *Layout, r Renderer) (*Handle, error) {
	h := &Handle{
		layout:   l,
		renderer: r,
		hidden:   maps.Clone(l.hidden),
		names:    make(map[string][]Element),
	}

	main, err := h.definePanel(mainName, Panel{Desc: l.main}, Options{})
	if err != nil {
		return nil, err
	}
	if main == nil {
		return nil, fmt.Errorf("%w %q for %s", ErrMissingMain, l.main, l)
	}
	h.main = main
	h.width = main.Width()
	h.height = main.Height()

	if setup := l.kind.Hooks.SetupHandle; setup != nil {
		if err := setup(h); err != nil {
			return nil, fmt.Errorf("setup %s: %w", l, err)
		}
	}

	for _, name := range slices.Sorted(maps.Keys(l.labels)) {
		elems, ok := h.names[name]
		if !ok {
			return nil, &UnknownElementError{
				Name:       name,
				Layout:     l.String(),
				Suggestion: Suggest(name, slices.Collect(maps.Keys(h.names))),
			}
		}
		for _, e := range elems {
			e.SetLabel(l.labels[name])
		}
	}
	return h, nil
}

func (h *Handle) String() string {
	return fmt.Sprintf("handle for %s", h.layout)
}

func (h *Handle) Layout() *Layout     { return h.layout }
func (h *Handle) Renderer() Renderer  { return h.renderer }
func (h *Handle) Main() Element       { return h.main }
func (h *Handle) Width() int          { return h.width }
func (h *Handle) Height() int         { return h.height }
func (h *Handle) Params() *ParamStore { return h.params }

// Hidden reports whether name is hidden in this handle, including names
// hidden by the wildcard expansion.
func (h *Handle) Hidden(name string) bool {
	return h.hidden[name]
}

// Walk visits every element of the tree depth-first, parents first.
func (h *Handle) Walk(fn func(Element)) {
	WalkElement(h.main, fn)
}

// Find returns the element registered under name. Names created by the
// renderer for unnamed rows are found by walking the tree.
func (h *Handle) Find(name string) (Element, bool) {
	if elems, ok := h.names[name]; ok && len(elems) > 0 {
		return elems[0], true
	}
	var found Element
	h.Walk(func(e Element) {
		if found == nil && e.Name() == name {
			found = e
		}
	})
	return found, found != nil
}

// Title returns the title of the underlying layout.
func (h *Handle) Title(ctx context.Context) string {
	return h.layout.Title(ctx)
}

// ChoicesURL returns the URL of the choices list for field.
func (h *Handle) ChoicesURL(field string, query url.Values) string {
	return h.layout.ChoicesURL(h.renderer, field, query)
}

// DataElem resolves name to a data element. Elements declared on the
// layout win over those of the data source.
func (h *Handle) DataElem(name string) (Field, bool) {
	if !reservedDataElems[name] {
		if f, ok := h.layout.dataElems[name]; ok {
			return f, true
		}
	}
	return h.layout.kind.elem(h.layout.ds, name)
}

// AddStoreField records a field the client has to load.
func (h *Handle) AddStoreField(f Field) {
	h.storeFields = append(h.storeFields, f)
}

// StoreFields returns the recorded store fields in creation order.
func (h *Handle) StoreFields() []Field {
	return slices.Clone(h.storeFields)
}

// definePanel builds a named (sub-)panel and registers it.
func (h *Handle) definePanel(name string, p Panel, opts Options) (Element, error) {
	if p.Desc == "" && !p.Dummy {
		return nil, nil
	}
	if i := slices.Index(h.building, name); i >= 0 {
		path := append(slices.Clone(h.building[i:]), name)
		return nil, &PanelCycleError{Path: path, Layout: h.layout.String()}
	}
	if _, ok := h.names[name]; ok {
		return nil, &DuplicateError{Name: name, Desc: p.Desc, Layout: h.layout.String()}
	}
	h.building = append(h.building, name)
	e, err := h.descToElem(name, p, opts)
	h.building = h.building[:len(h.building)-1]
	if err != nil || e == nil {
		return nil, err
	}
	h.names[name] = []Element{e}
	return e, nil
}

// descToElem converts a descriptor into an element. A lone child of a
// sub-panel is returned as is; main always gets a composite.
func (h *Handle) descToElem(elemName string, p Panel, opts Options) (Element, error) {
	if p.Dummy {
		return nil, nil
	}
	opts = p.Options.Merge(opts)
	desc := joinContinued(p.Desc)

	if containsWildcard(desc) {
		if elemName != mainName {
			return nil, fmt.Errorf("%s in %s: %w", elemName, h.layout, ErrWildcardOutsideMain)
		}
		var err error
		if desc, err = h.expandWildcard(desc); err != nil {
			return nil, err
		}
	}

	vertical := isVertical(desc)
	var children []Element
	if vertical {
		for i, line := range descriptorLines(desc) {
			e, err := h.descToElem(fmt.Sprintf("%s_%d", elemName, i+1), Panel{Desc: line}, Options{})
			if err != nil {
				return nil, err
			}
			if e != nil {
				children = append(children, e)
			}
		}
	} else {
		for _, tok := range descriptorTokens(desc) {
			elems, err := h.createElement(tok)
			if err != nil {
				return nil, err
			}
			children = append(children, elems...)
		}
	}

	if len(children) == 0 {
		return nil, nil
	}
	if len(children) == 1 && elemName != mainName {
		children[0].Setup(opts)
		return children[0], nil
	}
	return h.renderer.CreatePanel(h, elemName, vertical, children, opts)
}

// createElement builds the element(s) for one picture.
func (h *Handle) createElement(picture string) ([]Element, error) {
	name, opts, err := h.splitDesc(picture)
	if err != nil {
		return nil, err
	}
	if _, ok := h.names[name]; ok {
		return nil, &DuplicateError{Name: name, Desc: picture, Layout: h.layout.String()}
	}

	if p, ok := h.layout.lookupPanel(name); ok {
		e, err := h.definePanel(name, p, opts)
		if err != nil || e == nil {
			return nil, err
		}
		return []Element{e}, nil
	}

	elems, err := h.renderer.CreateElement(h, name, opts)
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return nil, nil
	}
	for _, e := range elems {
		if h.hidden[name] {
			e.SetHidden(true)
		}
		if setup := h.layout.kind.Hooks.SetupElement; setup != nil {
			setup(h, e)
		}
	}
	h.names[name] = elems
	return elems, nil
}

// splitDesc parses a picture and lets the data source adjust the options.
func (h *Handle) splitDesc(picture string) (string, Options, error) {
	name, opts, err := ParsePicture(picture)
	if err != nil {
		return "", Options{}, fmt.Errorf("%s: %w", h.layout, err)
	}
	if wo, ok := h.layout.ds.(WidgetOptioner); ok {
		opts = wo.WidgetOptions(name, opts)
	}
	return name, opts, nil
}
