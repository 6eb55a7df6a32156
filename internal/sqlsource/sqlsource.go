// pattern: Imperative Shell

// Package sqlsource derives layout data sources from SQLite tables.
package sqlsource

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"linolayout/internal/layout"
)

const fkSuffix = "_id"

// Source is a layout.DataSource whose fields are the columns of a table.
type Source struct {
	name   string
	table  string
	db     *sql.DB
	fields []layout.Field
	master string
	hidden []string
}

// Option configures a Source.
type Option func(*Source)

// WithVirtual adds computed fields that have no column.
func WithVirtual(fields ...layout.Field) Option {
	return func(s *Source) {
		for _, f := range fields {
			f.Virtual = true
			s.fields = append(s.fields, f)
		}
	}
}

// WithHidden hides the named fields in addition to the primary key.
func WithHidden(names ...string) Option {
	return func(s *Source) {
		s.hidden = append(s.hidden, names...)
	}
}

// Open reads the columns of table from the database at path. Foreign key
// columns named "<x>_id" become fk fields named "<x>".
func Open(ctx context.Context, path, table, name, masterKey string, opts ...Option) (*Source, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	s := &Source{name: name, table: table, db: db, master: masterKey}
	if err := s.load(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Source) load(ctx context.Context) error {
	fks, err := s.foreignKeys(ctx)
	if err != nil {
		return err
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(s.table)))
	if err != nil {
		return fmt.Errorf("table_info %s: %w", s.table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid     int
			column  string
			decl    string
			notNull int
			dflt    any
			pk      int
		)
		if err := rows.Scan(&cid, &column, &decl, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("scan table_info %s: %w", s.table, err)
		}

		f := layout.Field{Name: column, Type: columnType(decl)}
		if fks[column] {
			f.Name = strings.TrimSuffix(column, fkSuffix)
			f.Type = "fk"
		}
		if pk > 0 {
			s.hidden = append(s.hidden, f.Name)
		}
		s.fields = append(s.fields, f)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read table_info %s: %w", s.table, err)
	}
	if len(s.fields) == 0 {
		return fmt.Errorf("table %q not found or has no columns", s.table)
	}
	return nil
}

func (s *Source) foreignKeys(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", quoteIdent(s.table)))
	if err != nil {
		return nil, fmt.Errorf("foreign_key_list %s: %w", s.table, err)
	}
	defer rows.Close()

	fks := make(map[string]bool)
	for rows.Next() {
		var (
			id, seq                   int
			table, from               string
			to                        sql.NullString
			onUpdate, onDelete, match string
		)
		if err := rows.Scan(&id, &seq, &table, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, fmt.Errorf("scan foreign_key_list %s: %w", s.table, err)
		}
		fks[from] = true
	}
	return fks, rows.Err()
}

func (s *Source) Name() string                   { return s.name }
func (s *Source) Table() string                  { return s.table }
func (s *Source) MasterKey() string              { return s.master }
func (s *Source) WildcardFields() []layout.Field { return s.fields }
func (s *Source) HiddenElements() []string       { return s.hidden }

func (s *Source) DataElem(name string) (layout.Field, bool) {
	for _, f := range s.fields {
		if f.Name == name {
			return f, true
		}
	}
	return layout.Field{}, false
}

// Close releases the database handle.
func (s *Source) Close() error {
	return s.db.Close()
}

// columnType maps a declared SQLite column type to a field type.
func columnType(decl string) string {
	d := strings.ToLower(decl)
	switch {
	case strings.Contains(d, "bool"):
		return "bool"
	case strings.Contains(d, "int"):
		return "int"
	case strings.HasPrefix(d, "date"), strings.Contains(d, "time"):
		return "date"
	case strings.Contains(d, "char"), strings.Contains(d, "clob"):
		return "char"
	case strings.Contains(d, "text"):
		return "text"
	case strings.Contains(d, "real"), strings.Contains(d, "floa"), strings.Contains(d, "doub"),
		strings.Contains(d, "dec"), strings.Contains(d, "num"):
		return "decimal"
	case strings.Contains(d, "blob"):
		return "blob"
	default:
		return d
	}
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
