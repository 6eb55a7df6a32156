// pattern: Functional Core

package render

import (
	"encoding/json"

	"linolayout/internal/layout"
)

// Node kinds.
const (
	KindField = "field"
	KindPanel = "panel"
)

// Node is the widget both stock renderers produce.
type Node struct {
	*layout.Box
	Kind       string
	Vertical   bool
	FieldType  string
	ChoicesURL string
	Declared   bool
}

func newField(name string) *Node {
	return &Node{Box: layout.NewBox(name), Kind: KindField}
}

func newPanel(name string, vertical bool, children []layout.Element) *Node {
	return &Node{Box: layout.NewBox(name, children...), Kind: KindPanel, Vertical: vertical}
}

func (n *Node) SetDeclared(d bool) { n.Declared = d }

// IsPanel reports whether the node has children of its own.
func (n *Node) IsPanel() bool { return n.Kind == KindPanel }

type nodeJSON struct {
	Name          string           `json:"name"`
	Kind          string           `json:"kind"`
	Label         string           `json:"label,omitempty"`
	Type          string           `json:"type,omitempty"`
	Vertical      bool             `json:"vertical,omitempty"`
	Hidden        bool             `json:"hidden,omitempty"`
	Width         int              `json:"width,omitempty"`
	Height        int              `json:"height,omitempty"`
	Declared      bool             `json:"declared,omitempty"`
	ChoicesURL    string           `json:"choices_url,omitempty"`
	RequiredRoles []string         `json:"required_roles,omitempty"`
	Children      []layout.Element `json:"children,omitempty"`
}

func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(nodeJSON{
		Name:          n.Name(),
		Kind:          n.Kind,
		Label:         n.Label(),
		Type:          n.FieldType,
		Vertical:      n.Vertical,
		Hidden:        n.Hidden(),
		Width:         n.Width(),
		Height:        n.Height(),
		Declared:      n.Declared,
		ChoicesURL:    n.ChoicesURL,
		RequiredRoles: n.RequiredRoles(),
		Children:      n.Children(),
	})
}
