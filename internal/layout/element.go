// pattern: Functional Core

package layout

// Element is a widget produced by a renderer: either a leaf field or a
// composite panel holding children.
type Element interface {
	Name() string
	Children() []Element
	Width() int
	Height() int
	Hidden() bool
	SetHidden(bool)
	Label() string
	SetLabel(string)
	// Setup applies options passed down from the enclosing descriptor.
	Setup(Options)
}

// Declarable is implemented by elements that can be declared as
// standalone variables by the client, as action parameter fields are.
type Declarable interface {
	SetDeclared(bool)
}

// Box is a minimal Element. Renderers embed it in their own widget types.
type Box struct {
	name          string
	label         string
	hidden        bool
	width         int
	height        int
	requiredRoles []string
	children      []Element
}

// NewBox returns a box with the given name and children.
func NewBox(name string, children ...Element) *Box {
	return &Box{name: name, children: children}
}

func (b *Box) Name() string          { return b.name }
func (b *Box) Children() []Element   { return b.children }
func (b *Box) Width() int            { return b.width }
func (b *Box) Height() int           { return b.height }
func (b *Box) Hidden() bool          { return b.hidden }
func (b *Box) SetHidden(hidden bool) { b.hidden = hidden }
func (b *Box) Label() string         { return b.label }
func (b *Box) SetLabel(label string) { b.label = label }
func (b *Box) RequiredRoles() []string {
	return b.requiredRoles
}

// SetSize overrides width and height. Zero values are ignored.
func (b *Box) SetSize(width, height int) {
	if width > 0 {
		b.width = width
	}
	if height > 0 {
		b.height = height
	}
}

func (b *Box) Setup(o Options) {
	b.SetSize(o.Width, o.Height)
	if o.Label != "" {
		b.label = o.Label
	}
	if len(o.RequiredRoles) > 0 {
		b.requiredRoles = append([]string(nil), o.RequiredRoles...)
	}
}

// WalkElement visits e and its descendants depth-first, parents first.
func WalkElement(e Element, fn func(Element)) {
	if e == nil {
		return
	}
	fn(e)
	for _, c := range e.Children() {
		WalkElement(c, fn)
	}
}

// SetChildren replaces the box's children.
func (b *Box) SetChildren(children []Element) {
	b.children = children
}
