package sqlsource

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"linolayout/internal/layout"
	"linolayout/internal/render"
)

func createDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "demo.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE courses (id INTEGER PRIMARY KEY, name VARCHAR(100))`,
		`CREATE TABLE enrolments (
			id INTEGER PRIMARY KEY,
			pupil_id INTEGER REFERENCES pupils(id),
			course_id INTEGER REFERENCES courses(id),
			start_date DATE,
			remark TEXT,
			amount DECIMAL(10,2),
			confirmed BOOLEAN
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("Exec(%q) error = %v", stmt, err)
		}
	}
	return path
}

func TestOpen_ReadsColumns(t *testing.T) {
	path := createDB(t)

	s, err := Open(context.Background(), path, "enrolments", "courses.Enrolments", "course")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	var got []string
	for _, f := range s.WildcardFields() {
		got = append(got, f.Name+":"+f.Type)
	}
	want := "id:int,pupil:fk,course:fk,start_date:date,remark:text,amount:decimal,confirmed:bool"
	if strings.Join(got, ",") != want {
		t.Errorf("fields = %q, want %q", strings.Join(got, ","), want)
	}

	if hidden := s.HiddenElements(); len(hidden) != 1 || hidden[0] != "id" {
		t.Errorf("HiddenElements = %v, want [id]", hidden)
	}
	if s.MasterKey() != "course" {
		t.Errorf("MasterKey = %q, want %q", s.MasterKey(), "course")
	}
	if f, ok := s.DataElem("pupil"); !ok || f.Type != "fk" {
		t.Errorf("DataElem(pupil) = %+v, %v", f, ok)
	}
}

func TestOpen_UnknownTable(t *testing.T) {
	path := createDB(t)

	if _, err := Open(context.Background(), path, "nosuch", "x.Y", ""); err == nil {
		t.Fatal("Open() should fail for a missing table")
	}
}

func TestOpen_VirtualFieldsSkippedByWildcard(t *testing.T) {
	path := createDB(t)

	s, err := Open(context.Background(), path, "courses", "courses.Courses", "",
		WithVirtual(layout.Field{Name: "enrolment_count", Type: "int"}),
		WithHidden("name"),
	)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	l, err := layout.New(layout.ColumnsKind, "*", s)
	if err != nil {
		t.Fatal(err)
	}
	h, err := l.Handle(render.Web())
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	want := "- main (horizontal)\n  - id (int, hidden)\n  - name (char, hidden)\n"
	if got := render.Text(h); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}

	f, ok := s.DataElem("enrolment_count")
	if !ok || !f.Virtual {
		t.Errorf("virtual field = %+v, %v", f, ok)
	}
	if hidden := s.HiddenElements(); strings.Join(hidden, ",") != "id,name" {
		t.Errorf("HiddenElements = %v", hidden)
	}
}

func TestColumnType(t *testing.T) {
	tests := map[string]string{
		"INTEGER":       "int",
		"VARCHAR(20)":   "char",
		"TEXT":          "text",
		"DATE":          "date",
		"DATETIME":      "date",
		"BOOLEAN":       "bool",
		"DECIMAL(10,2)": "decimal",
		"REAL":          "decimal",
		"BLOB":          "blob",
		"":              "",
	}
	for decl, want := range tests {
		if got := columnType(decl); got != want {
			t.Errorf("columnType(%q) = %q, want %q", decl, got, want)
		}
	}
}
