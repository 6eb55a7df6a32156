// pattern: Functional Core

package layout

import "strings"

// Options are the sizing and presentation options forwarded to a renderer
// when it creates an element.
type Options struct {
	Width         int
	Height        int
	Label         string
	RequiredRoles []string
}

// Merge returns o overlaid with the non-zero fields of other.
func (o Options) Merge(other Options) Options {
	if other.Width != 0 {
		o.Width = other.Width
	}
	if other.Height != 0 {
		o.Height = other.Height
	}
	if other.Label != "" {
		o.Label = other.Label
	}
	if len(other.RequiredRoles) > 0 {
		o.RequiredRoles = append([]string(nil), other.RequiredRoles...)
	}
	return o
}

// IsZero reports whether no option is set.
func (o Options) IsZero() bool {
	return o.Width == 0 && o.Height == 0 && o.Label == "" && len(o.RequiredRoles) == 0
}

// Panel is a named template plus the options its composite should get.
// Use it when a plain descriptor string is not enough. A Dummy panel
// exists in some configurations only and resolves to nothing here.
type Panel struct {
	Desc    string
	Options Options
	Dummy   bool
}

// NewPanel returns a panel with the given template and label.
func NewPanel(desc, label string, opts Options) Panel {
	if label != "" {
		opts.Label = label
	}
	return Panel{Desc: desc, Options: opts}
}

// DummyPanel returns a placeholder panel that never yields an element.
func DummyPanel() Panel {
	return Panel{Dummy: true}
}

// Replace rewrites every occurrence of old in the panel's template.
func (p *Panel) Replace(old, new string) {
	p.Desc = strings.ReplaceAll(p.Desc, old, new)
}

// WindowSize is the preferred window size in characters and lines.
// AutoHeight means the height adapts to the content.
type WindowSize struct {
	Width      int  `json:"width" yaml:"width" toml:"width"`
	Height     int  `json:"height,omitempty" yaml:"height" toml:"height"`
	AutoHeight bool `json:"auto_height,omitempty" yaml:"auto_height" toml:"auto_height"`
}
