// pattern: Functional Core

package layout

import (
	"context"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"
	"sync"
)

const generalPanel = "general"

// TitleFunc computes a layout's title for the current request.
type TitleFunc func(ctx context.Context, l *Layout) string

// Layout holds the descriptor templates of one form, column list or
// parameter panel. Handles built from it are cached per renderer. Once a
// handle exists the templates are frozen until Invalidate is called.
type Layout struct {
	kind       Kind
	main       string
	ds         DataSource
	panels     map[string]Panel
	hidden     map[string]bool
	labels     map[string]string
	dataElems  map[string]Field
	windowSize *WindowSize
	title      TitleFunc

	mu      sync.Mutex
	handles map[string]*Handle
}

// Option configures a Layout at construction time.
type Option func(*Layout)

// WithHidden hides the named elements by default.
func WithHidden(names ...string) Option {
	return func(l *Layout) {
		for _, n := range names {
			l.hidden[n] = true
		}
	}
}

// WithLabels overrides the labels of built elements.
func WithLabels(labels map[string]string) Option {
	return func(l *Layout) {
		maps.Copy(l.labels, labels)
	}
}

// WithWindowSize overrides the kind's default window size.
func WithWindowSize(ws WindowSize) Option {
	return func(l *Layout) {
		l.windowSize = &ws
	}
}

// WithTitle sets the function computing the layout title.
func WithTitle(fn TitleFunc) Option {
	return func(l *Layout) {
		l.title = fn
	}
}

// WithPanel defines a named sub-panel.
func WithPanel(name string, p Panel) Option {
	return func(l *Layout) {
		l.panels[name] = p
	}
}

// New creates a layout of the given kind.
func New(kind Kind, main string, ds DataSource, opts ...Option) (*Layout, error) {
	if main == "" {
		return nil, fmt.Errorf("cannot create %s layout without main: %w", kind.Name, ErrMissingMain)
	}
	if kind.RequireDataSource && ds == nil {
		return nil, fmt.Errorf("%s layout: %w", kind.Name, ErrNoDataSource)
	}

	l := &Layout{
		kind:      kind,
		main:      main,
		ds:        ds,
		panels:    make(map[string]Panel),
		hidden:    make(map[string]bool),
		labels:    make(map[string]string),
		dataElems: make(map[string]Field),
		handles:   make(map[string]*Handle),
	}
	for _, opt := range opts {
		opt(l)
	}
	for name := range l.panels {
		if err := validatePanelName(name); err != nil {
			return nil, err
		}
	}
	if ds != nil {
		for _, n := range ds.HiddenElements() {
			l.hidden[n] = true
		}
	}
	return l, nil
}

func (l *Layout) String() string {
	ds := "None"
	if l.ds != nil {
		ds = l.ds.Name()
	}
	return fmt.Sprintf("%s layout on %s", l.kind.Name, ds)
}

func (l *Layout) Kind() Kind             { return l.kind }
func (l *Layout) DataSource() DataSource { return l.ds }

// Main returns the current main template.
func (l *Layout) Main() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.main
}

// Panel returns the named sub-panel template.
func (l *Layout) Panel(name string) (Panel, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.panels[name]
	return p, ok
}

// PanelNames returns the names of all sub-panels, sorted.
func (l *Layout) PanelNames() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Sorted(maps.Keys(l.panels))
}

// HiddenElements returns the layout's hidden names, sorted. Names hidden
// by a wildcard expansion are tracked per handle, see Handle.Hidden.
func (l *Layout) HiddenElements() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Sorted(maps.Keys(l.hidden))
}

// Labels returns a copy of the label overrides.
func (l *Layout) Labels() map[string]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return maps.Clone(l.labels)
}

// WindowSize returns the explicit window size or the kind's default.
func (l *Layout) WindowSize() *WindowSize {
	if l.windowSize != nil {
		return l.windowSize
	}
	return l.kind.WindowSize
}

// Title returns the layout title for the current request.
func (l *Layout) Title(ctx context.Context) string {
	if l.title != nil {
		return l.title(ctx, l)
	}
	if l.ds != nil {
		return l.ds.Name()
	}
	return l.kind.Name
}

// Update replaces the template of main or of an existing panel.
func (l *Layout) Update(name, desc string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkMutable(); err != nil {
		return err
	}
	if name == mainName {
		if desc == "" {
			return fmt.Errorf("%s: %w", l, ErrMissingMain)
		}
		l.main = desc
		return nil
	}
	p, ok := l.panels[name]
	if !ok {
		return &UnknownElementError{Name: name, Layout: l.String(), Suggestion: Suggest(name, l.panelNamesLocked())}
	}
	p.Desc = desc
	l.panels[name] = p
	return nil
}

// AddPanel defines a new named panel. An empty template is ignored.
func (l *Layout) AddPanel(name, desc, label string, opts Options) error {
	if err := validatePanelName(name); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkMutable(); err != nil {
		return err
	}
	return l.addPanelLocked(name, desc, label, opts)
}

// AddTabPanel adds a panel and references it from main. A vertical main
// first moves into a "general" panel so that main becomes a row of tabs.
func (l *Layout) AddTabPanel(name, desc, label string, opts Options) error {
	if err := validatePanelName(name); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkMutable(); err != nil {
		return err
	}

	vertical := isVertical(l.main)
	if vertical {
		if _, ok := l.panels[generalPanel]; ok {
			return fmt.Errorf("%s has both a vertical main and a panel called %q: %w", l, generalPanel, ErrDuplicatePanel)
		}
	}
	if desc != "" {
		if err := l.checkNewPanelLocked(name); err != nil {
			return err
		}
		if vertical && name == generalPanel {
			return fmt.Errorf("%s already has a panel %q: %w", l, name, ErrDuplicatePanel)
		}
	}

	if vertical {
		l.panels[generalPanel] = Panel{Desc: l.main}
		l.main = generalPanel + " " + name
		l.labels[generalPanel] = "General"
	} else {
		l.main += " " + name
	}
	return l.addPanelLocked(name, desc, label, opts)
}

// RemoveElement removes the given names from main.
func (l *Layout) RemoveElement(names ...string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkMutable(); err != nil {
		return err
	}
	for _, name := range names {
		l.main = removeToken(l.main, name)
	}
	return nil
}

// SetDataElem registers a data element on the layout itself. It takes
// precedence over the data source's element of the same name.
func (l *Layout) SetDataElem(name string, f Field) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkMutable(); err != nil {
		return err
	}
	l.dataElems[name] = f
	return nil
}

// ChoicesURL returns the URL where the client fetches the choices of field.
func (l *Layout) ChoicesURL(r Renderer, field string, query url.Values) string {
	parts := []string{l.kind.ChoicesPath}
	if parts[0] == "" {
		parts[0] = "choices"
	}
	if l.ds != nil {
		parts = append(parts, strings.Split(l.ds.Name(), ".")...)
	}
	parts = append(parts, field)
	return r.BuildURL(parts, query)
}

// Handle returns the handle for r, building it on first use.
func (l *Layout) Handle(r Renderer) (*Handle, error) {
	key := r.HandleKey()
	if key == "" {
		return nil, fmt.Errorf("%s: %w", l, ErrNoHandleKey)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if h, ok := l.handles[key]; ok {
		return h, nil
	}
	h, err := newHandle(l, r)
	if err != nil {
		return nil, err
	}
	l.handles[key] = h
	return h, nil
}

// Invalidate drops all cached handles and unfreezes the layout.
func (l *Layout) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.handles)
}

func (l *Layout) checkMutable() error {
	if len(l.handles) > 0 {
		return fmt.Errorf("%s: %w", l, ErrFrozen)
	}
	return nil
}

func (l *Layout) addPanelLocked(name, desc, label string, opts Options) error {
	if desc == "" {
		return nil
	}
	if err := l.checkNewPanelLocked(name); err != nil {
		return err
	}
	l.panels[name] = Panel{Desc: desc, Options: opts}
	if label != "" {
		l.labels[name] = label
	}
	return nil
}

func (l *Layout) checkNewPanelLocked(name string) error {
	if _, ok := l.panels[name]; ok || name == mainName {
		return fmt.Errorf("%s already has a panel %q: %w", l, name, ErrDuplicatePanel)
	}
	return nil
}

func (l *Layout) panelNamesLocked() []string {
	names := slices.Collect(maps.Keys(l.panels))
	return append(names, mainName)
}

// lookupPanel must be called with l.mu held.
func (l *Layout) lookupPanel(name string) (Panel, bool) {
	p, ok := l.panels[name]
	return p, ok
}

func validatePanelName(name string) error {
	if name == "" || strings.ContainsAny(name, " \t\r\n") {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return nil
}

// removeToken drops every picture naming name from desc, keeping lines.
func removeToken(desc, name string) string {
	lines := strings.Split(desc, "\n")
	for i, line := range lines {
		fields := strings.Fields(line)
		kept := fields[:0]
		for _, f := range fields {
			n, _, _ := strings.Cut(f, ":")
			if n != name {
				kept = append(kept, f)
			}
		}
		lines[i] = strings.Join(kept, " ")
	}
	return strings.Join(lines, "\n")
}
