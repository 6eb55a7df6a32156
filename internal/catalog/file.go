// pattern: Functional Core

package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"linolayout/internal/layout"
)

// File is the decoded content of one catalog file.
type File struct {
	Sources []SourceSpec `yaml:"sources" toml:"sources"`
	Layouts []LayoutSpec `yaml:"layouts" toml:"layouts"`
	// Dashboard lists the layouts shown on the dashboard, in order.
	Dashboard []DashboardSpec `yaml:"dashboard" toml:"dashboard"`
}

type SourceSpec struct {
	Name      string         `yaml:"name" toml:"name"`
	MasterKey string         `yaml:"master_key" toml:"master_key"`
	Hidden    []string       `yaml:"hidden" toml:"hidden"`
	Fields    []layout.Field `yaml:"fields" toml:"fields"`
	Params    []layout.Field `yaml:"params" toml:"params"`
	SQLite    *SQLiteSpec    `yaml:"sqlite" toml:"sqlite"`
}

// SQLiteSpec points a source at a table. A relative path is resolved
// against the catalog file's directory.
type SQLiteSpec struct {
	Path  string `yaml:"path" toml:"path"`
	Table string `yaml:"table" toml:"table"`
}

type LayoutSpec struct {
	Name      string               `yaml:"name" toml:"name"`
	Kind      string               `yaml:"kind" toml:"kind"`
	Source    string               `yaml:"source" toml:"source"`
	Title     string               `yaml:"title" toml:"title"`
	Main      string               `yaml:"main" toml:"main"`
	Panels    map[string]PanelSpec `yaml:"panels" toml:"panels"`
	Hidden    []string             `yaml:"hidden" toml:"hidden"`
	Labels    map[string]string    `yaml:"labels" toml:"labels"`
	Window    *layout.WindowSize   `yaml:"window" toml:"window"`
	Tabs      []TabSpec            `yaml:"tabs" toml:"tabs"`
	Remove    []string             `yaml:"remove" toml:"remove"`
	DataElems []layout.Field       `yaml:"data_elems" toml:"data_elems"`
}

type PanelSpec struct {
	Desc          string   `yaml:"desc" toml:"desc"`
	Label         string   `yaml:"label" toml:"label"`
	Width         int      `yaml:"width" toml:"width"`
	Height        int      `yaml:"height" toml:"height"`
	RequiredRoles []string `yaml:"required_roles" toml:"required_roles"`
	Dummy         bool     `yaml:"dummy" toml:"dummy"`
}

// UnmarshalYAML accepts a bare string as shorthand for {desc: ...}.
func (p *PanelSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*p = PanelSpec{Desc: value.Value}
		return nil
	}
	type plain PanelSpec
	return value.Decode((*plain)(p))
}

func (p PanelSpec) options() layout.Options {
	return layout.Options{Width: p.Width, Height: p.Height, RequiredRoles: p.RequiredRoles}
}

// DashboardSpec places a layout on the dashboard. HeaderLevel defaults
// to 2; 0 omits the heading.
type DashboardSpec struct {
	Layout      string   `yaml:"layout" toml:"layout"`
	HeaderLevel *int     `yaml:"header_level" toml:"header_level"`
	Width       int      `yaml:"width" toml:"width"`
	Roles       []string `yaml:"roles" toml:"roles"`
}

// Level returns the effective header level.
func (d DashboardSpec) Level() int {
	if d.HeaderLevel == nil {
		return 2
	}
	return *d.HeaderLevel
}

type TabSpec struct {
	Name  string `yaml:"name" toml:"name"`
	Desc  string `yaml:"desc" toml:"desc"`
	Label string `yaml:"label" toml:"label"`
}

// IsCatalogFile reports whether path has a catalog file extension.
func IsCatalogFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".toml":
		return true
	}
	return false
}

// DecodeFile decodes data according to the extension of name. Unknown
// keys are rejected.
func DecodeFile(name string, data []byte) (File, error) {
	var f File
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return File{}, fmt.Errorf("%s: %w", name, err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return File{}, fmt.Errorf("%s: %w", name, err)
		}
	default:
		return File{}, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}
	return f, nil
}
