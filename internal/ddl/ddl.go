// Package ddl defines a small, backend-agnostic model for SQL DDL and helpers
// to derive table definitions from generated datasets.
//
// The goal of this package is to stay generic: it does not assume any specific
// SQL dialect. In particular, it:
//
//   - Does not quote identifiers; it emits TableDef.FQN and ColumnDef.Name as-is.
//   - Renders the portable IF NOT EXISTS guard only when TableDef.IfNotExists
//     is set; a dialect without that clause (SQL Server) leaves it unset and
//     wraps the plain statement in its own existence check.
//
// Sink backends (internal/sink/postgres, ...) adapt this model to their
// dialect by passing their MapType function to FromDataset.
package ddl

import (
	"fmt"
	"strings"
	"time"

	"synthgen/internal/dataset"
)

// Logical column types, the dialect-independent vocabulary every sink's
// MapType function accepts.
const (
	TypeInt    = "int"
	TypeFloat  = "float"
	TypeString = "string"
	TypeDate   = "date"
)

// ColumnDef describes a single column in a table definition. Name is the
// logical column name (unquoted; quoting happens at render time if a backend
// needs it) and SQLType the already-mapped dialect type.
type ColumnDef struct {
	Name     string
	SQLType  string
	Nullable bool
}

// TableDef holds the target table name and an ordered list of columns. The
// name is expected in dotted form ("schema.table") where the dialect uses
// schemas and is emitted as-is.
type TableDef struct {
	FQN         string
	IfNotExists bool
	Columns     []ColumnDef
}

// LogicalType reports the dialect-independent type of a generated column: the
// declared kind and representation, demoted to "string" whenever the cells
// mix representations. A date column carrying a numeric missing code, or a
// float column carrying a textual missing literal, cannot live in a typed SQL
// column, so the whole column falls back to text.
func LogicalType(col *dataset.Column) string {
	base := declaredType(col)
	if base == TypeString {
		return base
	}
	for _, v := range col.Values {
		if v == nil {
			continue
		}
		if !cellFits(base, v) {
			return TypeString
		}
	}
	return base
}

// LogicalTypes returns the logical type of every column, in column order.
func LogicalTypes(ds *dataset.Dataset) []string {
	cols := ds.Columns()
	out := make([]string, len(cols))
	for i, col := range cols {
		out[i] = LogicalType(col)
	}
	return out
}

func declaredType(col *dataset.Column) string {
	switch col.Kind {
	case dataset.Date:
		if col.Repr == dataset.ReprString {
			return TypeString
		}
		return TypeDate
	case dataset.Continuous:
		if col.Repr == dataset.ReprInt {
			return TypeInt
		}
		return TypeFloat
	default:
		switch col.Repr {
		case dataset.ReprInt:
			return TypeInt
		case dataset.ReprFloat:
			return TypeFloat
		default:
			return TypeString
		}
	}
}

func cellFits(logical string, v any) bool {
	switch logical {
	case TypeInt:
		_, ok := v.(int)
		return ok
	case TypeFloat:
		switch v.(type) {
		case float64, int:
			return true
		}
		return false
	case TypeDate:
		_, ok := v.(time.Time)
		return ok
	}
	return true
}

// FromDataset builds a table definition for a generated dataset, mapping each
// column's logical type through the backend's dialect table. Every column is
// nullable: missing cells are part of the data model, not an anomaly.
func FromDataset(table string, ds *dataset.Dataset, mapType func(string) string) (TableDef, error) {
	if strings.TrimSpace(table) == "" {
		return TableDef{}, fmt.Errorf("ddl: table name is required")
	}
	if mapType == nil {
		return TableDef{}, fmt.Errorf("ddl: mapType must not be nil")
	}
	cols := ds.Columns()
	if len(cols) == 0 {
		return TableDef{}, fmt.Errorf("ddl: dataset has no columns")
	}

	defs := make([]ColumnDef, 0, len(cols))
	for _, col := range cols {
		defs = append(defs, ColumnDef{
			Name:     col.Name,
			SQLType:  mapType(LogicalType(col)),
			Nullable: true,
		})
	}
	return TableDef{FQN: table, Columns: defs}, nil
}

// BuildCreateTableSQL renders a CREATE TABLE statement from a TableDef.
//
// Rules:
//
//   - t.FQN must be non-empty; it is emitted verbatim as the table name.
//
//   - Each column must have a non-empty Name and SQLType and is rendered as
//
//     <Name> <SQLType> [NOT NULL]
//
//     where NOT NULL is added when Nullable == false.
//
//   - The resulting statement has the form:
//
//     CREATE TABLE [IF NOT EXISTS] <FQN> (
//     <col1-def>,
//     <col2-def>,
//     ...
//     );
//
// This function does not attempt to be fully portable or exhaustive; it is a
// simple, deterministic baseline that backends can wrap or replace with
// dialect-specific builders.
func BuildCreateTableSQL(t TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", name)
		}

		var sb strings.Builder
		sb.WriteString(name)
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		cols = append(cols, sb.String())
	}

	head := "CREATE TABLE "
	if t.IfNotExists {
		head = "CREATE TABLE IF NOT EXISTS "
	}
	stmt := fmt.Sprintf(
		"%s%s (\n  %s\n);",
		head,
		fqn,
		strings.Join(cols, ",\n  "),
	)
	return stmt, nil
}
