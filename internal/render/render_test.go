package render

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"linolayout/internal/layout"
)

type source struct {
	name   string
	fields []layout.Field
	master string
}

func (s *source) Name() string                   { return s.name }
func (s *source) WildcardFields() []layout.Field { return s.fields }
func (s *source) MasterKey() string              { return s.master }
func (s *source) HiddenElements() []string       { return nil }

func (s *source) DataElem(name string) (layout.Field, bool) {
	for _, f := range s.fields {
		if f.Name == name {
			return f, true
		}
	}
	return layout.Field{}, false
}

func enrolments() *source {
	return &source{
		name: "courses.Enrolments",
		fields: []layout.Field{
			{Name: "pupil", Label: "Pupil", Type: "fk"},
			{Name: "course", Type: "fk"},
			{Name: "start_date", Label: "Start", Type: "date"},
			{Name: "state", Label: "State", Type: "choice", Choices: []string{"draft", "confirmed"}},
			{Name: "title", Label: "Title", Languages: []string{"en", "de"}},
			{Name: "invoice", Type: "null"},
			{Name: "secret", Label: "Secret"},
		},
	}
}

func build(t *testing.T, r *Renderer, kind layout.Kind, main string, opts ...layout.Option) *layout.Handle {
	t.Helper()
	l, err := layout.New(kind, main, enrolments(), opts...)
	if err != nil {
		t.Fatalf("layout.New() error = %v", err)
	}
	h, err := l.Handle(r)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	return h
}

func TestCreateElement_UnknownField(t *testing.T) {
	l, err := layout.New(layout.FormKind, "pupil cuorse", enrolments())
	if err != nil {
		t.Fatal(err)
	}
	_, err = l.Handle(Web())

	var ue *layout.UnknownElementError
	if !errors.As(err, &ue) {
		t.Fatalf("Handle() error = %v, want *UnknownElementError", err)
	}
	if ue.Suggestion != "course" {
		t.Errorf("suggestion = %q, want %q", ue.Suggestion, "course")
	}
}

func TestCreateElement_FreeFormWithoutSource(t *testing.T) {
	l, err := layout.New(layout.FormKind, "anything goes", nil)
	if err != nil {
		t.Fatal(err)
	}
	h, err := l.Handle(Web())
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(h.Main().Children()) != 2 {
		t.Errorf("children = %d, want 2", len(h.Main().Children()))
	}
}

func TestCreateElement_NullFieldSuppressed(t *testing.T) {
	h := build(t, Web(), layout.FormKind, "pupil invoice")
	if _, ok := h.Find("invoice"); ok {
		t.Error("null field should be suppressed")
	}
	if got := len(h.Main().Children()); got != 1 {
		t.Errorf("children = %d, want 1", got)
	}
}

func TestCreateElement_Languages(t *testing.T) {
	h := build(t, Web(), layout.FormKind, "title pupil")

	var names []string
	for _, c := range h.Main().Children() {
		names = append(names, c.Name()+"="+c.Label())
	}
	want := "title_en=Title (en),title_de=Title (de),pupil=Pupil"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("children = %q, want %q", got, want)
	}
}

func TestCreateElement_ChoicesURL(t *testing.T) {
	h := build(t, Web(), layout.DetailKind, "state pupil")
	e, _ := h.Find("state")
	if got := e.(*Node).ChoicesURL; got != "/api/choices/courses/Enrolments/state" {
		t.Errorf("ChoicesURL = %q", got)
	}
	p, _ := h.Find("pupil")
	if p.(*Node).ChoicesURL != "" {
		t.Error("fields without choices should have no choices URL")
	}
}

func TestCreateElement_StoreFields(t *testing.T) {
	h := build(t, Web(), layout.FormKind, "pupil course")
	fields := h.StoreFields()
	if len(fields) != 2 || fields[0].Name != "pupil" || fields[1].Name != "course" {
		t.Errorf("StoreFields = %+v", fields)
	}
}

func TestCreatePanel_Sizes(t *testing.T) {
	tests := []struct {
		name       string
		main       string
		wantWidth  int
		wantHeight int
	}{
		{name: "horizontal sums widths", main: "pupil start_date", wantWidth: 36, wantHeight: 1},
		{name: "vertical stacks rows", main: "pupil\nstart_date", wantWidth: 24, wantHeight: 2},
		{name: "explicit picture wins", main: "pupil:10 start_date:5", wantWidth: 15, wantHeight: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := build(t, Term(), layout.FormKind, tt.main)
			if h.Width() != tt.wantWidth || h.Height() != tt.wantHeight {
				t.Errorf("size = %dx%d, want %dx%d", h.Width(), h.Height(), tt.wantWidth, tt.wantHeight)
			}
		})
	}
}

func TestNode_MarshalJSON(t *testing.T) {
	h := build(t, Web(), layout.FormKind, "pupil secret", layout.WithHidden("secret"))

	data, err := json.Marshal(h.Main())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got struct {
		Name     string `json:"name"`
		Kind     string `json:"kind"`
		Children []struct {
			Name   string `json:"name"`
			Label  string `json:"label"`
			Type   string `json:"type"`
			Hidden bool   `json:"hidden"`
		} `json:"children"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.Name != "main" || got.Kind != KindPanel {
		t.Errorf("root = %s/%s, want main/panel", got.Name, got.Kind)
	}
	if len(got.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(got.Children))
	}
	if got.Children[0].Label != "Pupil" || got.Children[0].Type != "fk" {
		t.Errorf("first child = %+v", got.Children[0])
	}
	if !got.Children[1].Hidden {
		t.Error("secret should be marked hidden")
	}
}

func TestText(t *testing.T) {
	h := build(t, Web(), layout.DetailKind, "pupil course\nstate", layout.WithHidden("course"))

	want := `- main (vertical)
  - main_1 (horizontal)
    - pupil "Pupil" (fk)
    - course (fk, hidden)
  - state "State" (choice)
`
	if got := Text(h); got != want {
		t.Errorf("Text() =\n%s\nwant\n%s", got, want)
	}
}

func TestBoxes(t *testing.T) {
	h := build(t, Term(), layout.DetailKind, "pupil secret\nstart_date",
		layout.WithHidden("secret"),
		layout.WithLabels(map[string]string{"main": "Enrolment"}),
	)

	out := ansi.Strip(Boxes(h, PlainBoxStyles()))
	for _, want := range []string{"Enrolment", "Pupil", "Start"} {
		if !strings.Contains(out, want) {
			t.Errorf("Boxes() output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Secret") {
		t.Errorf("Boxes() should not draw hidden fields:\n%s", out)
	}
}

func TestBoxes_UnlabelledPanelsBordered(t *testing.T) {
	h := build(t, Term(), layout.DetailKind, "pupil start_date\nstate")

	out := ansi.Strip(Boxes(h, PlainBoxStyles()))
	// main and its first row; the lone state row unwraps to the field
	if got := strings.Count(out, "╭"); got != 2 {
		t.Errorf("rounded borders = %d, want 2:\n%s", got, out)
	}
	if got := strings.Count(out, "┌"); got != 3 {
		t.Errorf("field borders = %d, want 3:\n%s", got, out)
	}
}

func TestBuildURL(t *testing.T) {
	r := Web()
	got := r.BuildURL([]string{"choices", "a b", "x"}, map[string][]string{"q": {"1"}})
	if got != "/api/choices/a%20b/x?q=1" {
		t.Errorf("BuildURL = %q", got)
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"web", "term"} {
		r, ok := ByName(name)
		if !ok || r.HandleKey() != name {
			t.Errorf("ByName(%q) = %v, %v", name, r, ok)
		}
	}
	if _, ok := ByName("extjs"); ok {
		t.Error("ByName(extjs) should fail")
	}
}
