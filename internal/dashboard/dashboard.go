// pattern: Imperative Shell

// Package dashboard renders the ordered list of items shown on the
// start page, filtered by the roles of the viewer.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"linolayout/internal/catalog"
	"linolayout/internal/layout"
	"linolayout/internal/render"
)

var ErrDuplicateItem = errors.New("duplicate dashboard item")

// Item is one block of the dashboard.
type Item interface {
	Name() string
	// Width is the share of the available width in percent, 0 for full.
	Width() int
	Allowed(roles []string) bool
	Render(ctx context.Context, w io.Writer) error
}

// ItemOption configures the common fields of an item.
type ItemOption func(*base)

// WithWidth sets the width in percent.
func WithWidth(percent int) ItemOption {
	return func(b *base) { b.width = percent }
}

// WithRoles restricts the item to viewers having one of roles.
func WithRoles(roles ...string) ItemOption {
	return func(b *base) { b.roles = roles }
}

type base struct {
	name  string
	width int
	roles []string
}

func newBase(name string, opts []ItemOption) base {
	b := base{name: name}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) Name() string { return b.name }
func (b *base) Width() int   { return b.width }

func (b *base) Allowed(roles []string) bool {
	if len(b.roles) == 0 {
		return true
	}
	for _, r := range roles {
		if slices.Contains(b.roles, r) {
			return true
		}
	}
	return false
}

// LayoutItem shows the outline of a layout under a heading.
type LayoutItem struct {
	base
	layout      *layout.Layout
	renderer    layout.Renderer
	headerLevel int
}

// NewLayoutItem returns an item for l. A headerLevel of 0 omits the heading.
func NewLayoutItem(name string, l *layout.Layout, r layout.Renderer, headerLevel int, opts ...ItemOption) *LayoutItem {
	return &LayoutItem{
		base:        newBase(name, opts),
		layout:      l,
		renderer:    r,
		headerLevel: headerLevel,
	}
}

// Render writes nothing when the layout has no visible element.
func (i *LayoutItem) Render(ctx context.Context, w io.Writer) error {
	h, err := i.layout.Handle(i.renderer)
	if err != nil {
		return err
	}

	visible := 0
	h.Walk(func(e layout.Element) {
		if !e.Hidden() && len(e.Children()) == 0 {
			visible++
		}
	})
	if visible == 0 {
		return nil
	}

	if i.headerLevel > 0 {
		if _, err := fmt.Fprintf(w, "%s %s\n\n", strings.Repeat("#", i.headerLevel), h.Title(ctx)); err != nil {
			return err
		}
	}
	render.WriteText(w, h.Main())
	return nil
}

// FuncItem renders through a function.
type FuncItem struct {
	base
	fn func(ctx context.Context, w io.Writer) error
}

func NewFuncItem(name string, fn func(ctx context.Context, w io.Writer) error, opts ...ItemOption) *FuncItem {
	return &FuncItem{base: newBase(name, opts), fn: fn}
}

func (i *FuncItem) Render(ctx context.Context, w io.Writer) error {
	return i.fn(ctx, w)
}

// Registry keeps dashboard items in registration order.
type Registry struct {
	items []Item
}

// Add appends item. Names are unique.
func (r *Registry) Add(item Item) error {
	if slices.ContainsFunc(r.items, func(i Item) bool { return i.Name() == item.Name() }) {
		return fmt.Errorf("%w %q", ErrDuplicateItem, item.Name())
	}
	r.items = append(r.items, item)
	return nil
}

// Items returns the registered items.
func (r *Registry) Items() []Item {
	return slices.Clone(r.items)
}

// Allowed returns the items visible to a viewer with roles.
func (r *Registry) Allowed(roles []string) []Item {
	var out []Item
	for _, i := range r.items {
		if i.Allowed(roles) {
			out = append(out, i)
		}
	}
	return out
}

// Render writes the allowed items separated by blank lines. A failing
// item does not stop the others; the failures are joined.
func (r *Registry) Render(ctx context.Context, w io.Writer, roles []string) error {
	var errs []error
	first := true
	for _, item := range r.Allowed(roles) {
		var sb strings.Builder
		if err := item.Render(ctx, &sb); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", item.Name(), err))
			continue
		}
		if sb.Len() == 0 {
			continue
		}
		if !first {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		first = false
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return errors.Join(errs...)
}

// FromCatalog builds the registry declared by c's dashboard entries.
func FromCatalog(c *catalog.Catalog, r layout.Renderer) (*Registry, error) {
	reg := &Registry{}
	for _, d := range c.Dashboard() {
		e, err := c.Lookup(d.Layout)
		if err != nil {
			return nil, err
		}
		item := NewLayoutItem(e.Name, e.Layout, r, d.Level(), WithWidth(d.Width), WithRoles(d.Roles...))
		if err := reg.Add(item); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
