// pattern: Functional Core

package layout

import (
	"maps"
	"slices"
)

// Hooks customise handle construction for a kind of layout.
type Hooks struct {
	// SetupHandle runs once the main element exists, before labels are applied.
	SetupHandle func(h *Handle) error
	// SetupElement runs for every leaf element the renderer creates.
	SetupElement func(h *Handle, e Element)
}

// Kind configures what distinguishes form, column and parameter layouts.
type Kind struct {
	Name string
	// JoinSeparator joins the names a wildcard expands to.
	JoinSeparator string
	WindowSize    *WindowSize
	// ExcludeMasterKey keeps the master key out of wildcard expansions.
	ExcludeMasterKey  bool
	RequireDataSource bool
	// URLParamName is the query parameter that carries submitted values.
	URLParamName string
	// ChoicesPath is the first URL segment of choices lookups.
	ChoicesPath string
	// ElemSource resolves a name to a data element. Nil means DataSource.DataElem.
	ElemSource func(ds DataSource, name string) (Field, bool)
	Hooks      Hooks
}

const (
	paramValuesParam = "pv"
	fieldValuesParam = "fv"
)

var (
	FormKind   = Kind{Name: "form", JoinSeparator: "\n", ChoicesPath: "choices"}
	DetailKind = Kind{Name: "detail", JoinSeparator: "\n", ChoicesPath: "choices"}
	InsertKind = Kind{Name: "insert", JoinSeparator: "\n", ChoicesPath: "choices"}

	ColumnsKind = Kind{
		Name:              "columns",
		JoinSeparator:     " ",
		ExcludeMasterKey:  true,
		RequireDataSource: true,
		ChoicesPath:       "choices",
	}

	ParamsKind = Kind{
		Name:          "params",
		JoinSeparator: " ",
		URLParamName:  paramValuesParam,
		ChoicesPath:   "choices",
		ElemSource:    paramElem,
		Hooks:         Hooks{SetupHandle: setupParamStore},
	}

	ActionParamsKind = Kind{
		Name:          "action_params",
		JoinSeparator: "\n",
		WindowSize:    &WindowSize{Width: 50, AutoHeight: true},
		URLParamName:  fieldValuesParam,
		ChoicesPath:   "apchoices",
		ElemSource:    paramElem,
		Hooks: Hooks{
			SetupHandle:  setupParamStore,
			SetupElement: declareElement,
		},
	}
)

var kinds = map[string]Kind{
	FormKind.Name:         FormKind,
	DetailKind.Name:       DetailKind,
	InsertKind.Name:       InsertKind,
	ColumnsKind.Name:      ColumnsKind,
	ParamsKind.Name:       ParamsKind,
	ActionParamsKind.Name: ActionParamsKind,
}

// KindByName looks up one of the predefined kinds.
func KindByName(name string) (Kind, bool) {
	k, ok := kinds[name]
	return k, ok
}

// KindNames lists the predefined kinds, sorted.
func KindNames() []string {
	return slices.Sorted(maps.Keys(kinds))
}

func (k Kind) elem(ds DataSource, name string) (Field, bool) {
	if ds == nil {
		return Field{}, false
	}
	if k.ElemSource != nil {
		return k.ElemSource(ds, name)
	}
	return ds.DataElem(name)
}

func (k Kind) separator() string {
	if k.JoinSeparator == "" {
		return " "
	}
	return k.JoinSeparator
}

func paramElem(ds DataSource, name string) (Field, bool) {
	ps, ok := ds.(ParamSource)
	if !ok {
		return Field{}, false
	}
	return ps.ParamElem(name)
}

// ParamStore lists the parameter fields a parameter panel submits.
type ParamStore struct {
	URLParam string
	Fields   []Field
}

func setupParamStore(h *Handle) error {
	h.params = &ParamStore{
		URLParam: h.layout.kind.URLParamName,
		Fields:   h.StoreFields(),
	}
	return nil
}

func declareElement(_ *Handle, e Element) {
	if d, ok := e.(Declarable); ok {
		d.SetDeclared(true)
	}
}
