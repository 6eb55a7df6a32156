// pattern: Functional Core

package catalog

import (
	"slices"

	"linolayout/internal/layout"
)

// StaticSource is a data source declared in a catalog file.
type StaticSource struct {
	name   string
	master string
	fields []layout.Field
	params []layout.Field
	hidden []string
}

// NewStaticSource returns a source with the given fields and parameters,
// in declaration order.
func NewStaticSource(name, masterKey string, fields, params []layout.Field, hidden []string) *StaticSource {
	return &StaticSource{
		name:   name,
		master: masterKey,
		fields: slices.Clone(fields),
		params: slices.Clone(params),
		hidden: slices.Clone(hidden),
	}
}

func (s *StaticSource) Name() string                   { return s.name }
func (s *StaticSource) MasterKey() string              { return s.master }
func (s *StaticSource) WildcardFields() []layout.Field { return s.fields }
func (s *StaticSource) HiddenElements() []string       { return s.hidden }

func (s *StaticSource) DataElem(name string) (layout.Field, bool) {
	return lookup(s.fields, name)
}

func (s *StaticSource) ParamElem(name string) (layout.Field, bool) {
	return lookup(s.params, name)
}

// ParamNames lists the declared parameters.
func (s *StaticSource) ParamNames() []string {
	names := make([]string, len(s.params))
	for i, p := range s.params {
		names[i] = p.Name
	}
	return names
}

// Choices returns the choices of a field or parameter.
func (s *StaticSource) Choices(name string) ([]string, bool) {
	if f, ok := s.DataElem(name); ok && len(f.Choices) > 0 {
		return f.Choices, true
	}
	if f, ok := s.ParamElem(name); ok && len(f.Choices) > 0 {
		return f.Choices, true
	}
	return nil, false
}

func lookup(fields []layout.Field, name string) (layout.Field, bool) {
	i := slices.IndexFunc(fields, func(f layout.Field) bool { return f.Name == name })
	if i < 0 {
		return layout.Field{}, false
	}
	return fields[i], true
}

// mergeFields overlays declared on base. Declared fields replace base
// fields of the same name and are appended otherwise.
func mergeFields(base, declared []layout.Field) []layout.Field {
	out := slices.Clone(base)
	for _, d := range declared {
		if i := slices.IndexFunc(out, func(f layout.Field) bool { return f.Name == d.Name }); i >= 0 {
			out[i] = d
			continue
		}
		out = append(out, d)
	}
	return out
}
