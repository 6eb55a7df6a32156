// pattern: Functional Core

package layout

import "strings"

// ptrSuffix marks the parent link of a multi-table inheritance child.
const ptrSuffix = "_ptr"

// Field describes one data element offered by a data source.
type Field struct {
	Name      string   `json:"name" yaml:"name" toml:"name"`
	Label     string   `json:"label,omitempty" yaml:"label" toml:"label"`
	Type      string   `json:"type,omitempty" yaml:"type" toml:"type"`
	Virtual   bool     `json:"virtual,omitempty" yaml:"virtual" toml:"virtual"`
	Languages []string `json:"languages,omitempty" yaml:"languages" toml:"languages"`
	Choices   []string `json:"choices,omitempty" yaml:"choices" toml:"choices"`
}

// DataSource is the table or action a layout describes.
type DataSource interface {
	// Name is the dotted "app.Name" identifier used in titles and URLs.
	Name() string
	DataElem(name string) (Field, bool)
	// WildcardFields lists the candidates for "*" in declaration order.
	WildcardFields() []Field
	// MasterKey names the field linking to the master record, or "".
	MasterKey() string
	HiddenElements() []string
}

// ParamSource is implemented by data sources that declare parameter fields.
type ParamSource interface {
	ParamElem(name string) (Field, bool)
}

// WidgetOptioner lets a data source adjust the options of an element
// before the renderer sees them.
type WidgetOptioner interface {
	WidgetOptions(name string, opts Options) Options
}

// useAsWildcard reports whether f may be added by a "*" expansion.
func useAsWildcard(f Field, kind Kind, ds DataSource) bool {
	if strings.HasSuffix(f.Name, ptrSuffix) {
		return false
	}
	if f.Virtual {
		return false
	}
	if kind.ExcludeMasterKey && ds != nil && f.Name == ds.MasterKey() {
		return false
	}
	return true
}
