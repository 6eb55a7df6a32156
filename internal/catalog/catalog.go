// pattern: Imperative Shell

// Package catalog loads layouts and data sources from YAML and TOML files.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"linolayout/internal/layout"
	"linolayout/internal/sqlsource"
)

var (
	ErrUnknownLayout     = errors.New("unknown layout")
	ErrUnknownSource     = errors.New("unknown data source")
	ErrUnknownKind       = errors.New("unknown layout kind")
	ErrDuplicateName     = errors.New("duplicate name")
	ErrUnsupportedFormat = errors.New("unsupported catalog format")
)

// Entry is one named layout of a catalog.
type Entry struct {
	Name   string
	File   string
	Layout *layout.Layout
}

// Catalog is an immutable set of layouts and the sources they describe.
// Reloading produces a new Catalog.
type Catalog struct {
	files   []string
	sources map[string]layout.DataSource
	entries map[string]*Entry
	board   []DashboardSpec
}

// Load reads every catalog file in paths. Directories contribute their
// *.yaml, *.yml and *.toml files in name order. Sources may be referenced
// across files.
func Load(ctx context.Context, paths ...string) (*Catalog, error) {
	files, err := expandPaths(paths)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		files:   files,
		sources: make(map[string]layout.DataSource),
		entries: make(map[string]*Entry),
	}

	decoded := make([]File, len(files))
	for i, name := range files {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, err
		}
		if decoded[i], err = DecodeFile(name, data); err != nil {
			return nil, err
		}
	}

	for i, f := range decoded {
		for _, spec := range f.Sources {
			if err := c.addSource(ctx, files[i], spec); err != nil {
				return nil, fmt.Errorf("%s: source %q: %w", files[i], spec.Name, err)
			}
		}
	}
	for i, f := range decoded {
		for _, spec := range f.Layouts {
			if err := c.addLayout(files[i], spec); err != nil {
				return nil, fmt.Errorf("%s: layout %q: %w", files[i], spec.Name, err)
			}
		}
	}
	for i, f := range decoded {
		for _, d := range f.Dashboard {
			if _, err := c.Lookup(d.Layout); err != nil {
				return nil, fmt.Errorf("%s: dashboard: %w", files[i], err)
			}
			c.board = append(c.board, d)
		}
	}
	return c, nil
}

// Dashboard returns the dashboard entries in declaration order.
func (c *Catalog) Dashboard() []DashboardSpec {
	return slices.Clone(c.board)
}

// Files returns the files the catalog was loaded from.
func (c *Catalog) Files() []string {
	return slices.Clone(c.files)
}

// Names returns the layout names, sorted.
func (c *Catalog) Names() []string {
	return slices.Sorted(maps.Keys(c.entries))
}

// SourceNames returns the data source names, sorted.
func (c *Catalog) SourceNames() []string {
	return slices.Sorted(maps.Keys(c.sources))
}

// Lookup returns the named layout. The error suggests a close name.
func (c *Catalog) Lookup(name string) (*Entry, error) {
	if e, ok := c.entries[name]; ok {
		return e, nil
	}
	return nil, notFound(ErrUnknownLayout, name, c.Names())
}

// Source returns the named data source.
func (c *Catalog) Source(name string) (layout.DataSource, error) {
	if ds, ok := c.sources[name]; ok {
		return ds, nil
	}
	return nil, notFound(ErrUnknownSource, name, c.SourceNames())
}

// Build returns the handle of the named layout for r.
func (c *Catalog) Build(name string, r layout.Renderer) (*layout.Handle, error) {
	e, err := c.Lookup(name)
	if err != nil {
		return nil, err
	}
	return e.Layout.Handle(r)
}

// Check builds every layout with every renderer and joins the failures.
func (c *Catalog) Check(renderers ...layout.Renderer) error {
	var errs []error
	for _, name := range c.Names() {
		for _, r := range renderers {
			if _, err := c.Build(name, r); err != nil {
				errs = append(errs, fmt.Errorf("%s (%s): %w", name, r.HandleKey(), err))
			}
		}
	}
	return errors.Join(errs...)
}

func (c *Catalog) addSource(ctx context.Context, file string, spec SourceSpec) error {
	if spec.Name == "" {
		return fmt.Errorf("missing name: %w", layout.ErrInvalidName)
	}
	if _, ok := c.sources[spec.Name]; ok {
		return ErrDuplicateName
	}

	fields, hidden := spec.Fields, spec.Hidden
	if spec.SQLite != nil {
		path := spec.SQLite.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(filepath.Dir(file), path)
		}
		table, err := sqlsource.Open(ctx, path, spec.SQLite.Table, spec.Name, spec.MasterKey)
		if err != nil {
			return err
		}
		fields = mergeFields(table.WildcardFields(), spec.Fields)
		hidden = slices.Concat(table.HiddenElements(), spec.Hidden)
		if err := table.Close(); err != nil {
			return err
		}
	}

	c.sources[spec.Name] = NewStaticSource(spec.Name, spec.MasterKey, fields, spec.Params, hidden)
	return nil
}

func (c *Catalog) addLayout(file string, spec LayoutSpec) error {
	if spec.Name == "" {
		return fmt.Errorf("missing name: %w", layout.ErrInvalidName)
	}
	if _, ok := c.entries[spec.Name]; ok {
		return ErrDuplicateName
	}

	kind, ok := layout.KindByName(spec.Kind)
	if !ok {
		return notFound(ErrUnknownKind, spec.Kind, layout.KindNames())
	}

	var ds layout.DataSource
	if spec.Source != "" {
		var err error
		if ds, err = c.Source(spec.Source); err != nil {
			return err
		}
	}

	opts := []layout.Option{
		layout.WithHidden(spec.Hidden...),
		layout.WithLabels(spec.Labels),
	}
	if spec.Window != nil {
		opts = append(opts, layout.WithWindowSize(*spec.Window))
	}
	if spec.Title != "" {
		title := spec.Title
		opts = append(opts, layout.WithTitle(func(context.Context, *layout.Layout) string { return title }))
	}
	for name, p := range spec.Panels {
		if p.Dummy {
			opts = append(opts, layout.WithPanel(name, layout.DummyPanel()))
		}
	}

	l, err := layout.New(kind, spec.Main, ds, opts...)
	if err != nil {
		return err
	}
	for _, name := range slices.Sorted(maps.Keys(spec.Panels)) {
		p := spec.Panels[name]
		if p.Dummy {
			continue
		}
		if err := l.AddPanel(name, p.Desc, p.Label, p.options()); err != nil {
			return err
		}
	}
	for _, tab := range spec.Tabs {
		if err := l.AddTabPanel(tab.Name, tab.Desc, tab.Label, layout.Options{}); err != nil {
			return err
		}
	}
	if err := l.RemoveElement(spec.Remove...); err != nil {
		return err
	}
	for _, f := range spec.DataElems {
		if err := l.SetDataElem(f.Name, f); err != nil {
			return err
		}
	}

	c.entries[spec.Name] = &Entry{Name: spec.Name, File: file, Layout: l}
	return nil
}

func notFound(sentinel error, name string, candidates []string) error {
	if s := layout.Suggest(name, candidates); s != "" {
		return fmt.Errorf("%w %q (did you mean %q?)", sentinel, name, s)
	}
	return fmt.Errorf("%w %q", sentinel, name)
}

func expandPaths(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && IsCatalogFile(e.Name()) {
				add(filepath.Join(p, e.Name()))
			}
		}
	}
	return files, nil
}
