// Package dataset holds the in-memory synthetic dataset: an insertion-ordered
// collection of equal-length columns with positional row correspondence.
// Columns are appended whole, never partially; a name already present is the
// caller's signal to skip, which keeps dataset builds idempotent.
package dataset

import "fmt"

// Kind is the generation type of a column.
type Kind int

const (
	Categorical Kind = iota
	Continuous
	Date
)

func (k Kind) String() string {
	switch k {
	case Categorical:
		return "categorical"
	case Continuous:
		return "continuous"
	case Date:
		return "date"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// KindFromString maps the metadata type spelling onto a Kind.
func KindFromString(s string) (Kind, bool) {
	switch s {
	case "categorical":
		return Categorical, true
	case "continuous":
		return Continuous, true
	case "date":
		return Date, true
	}
	return 0, false
}

// Column is one generated column. Values hold whatever stage the column is
// in: raw draws, injected missing codes, contaminated cells, and finally the
// coerced representation. Once added to a Dataset a column is not mutated
// again.
type Column struct {
	Name   string
	Kind   Kind
	Repr   string // declared output representation, see Coerce
	Values []any
}

// Dataset is the growing output table.
type Dataset struct {
	rows  int
	order []string
	cols  map[string]*Column
}

// New returns an empty dataset of the given row count.
func New(rows int) *Dataset {
	return &Dataset{rows: rows, cols: map[string]*Column{}}
}

// Rows is the shared row count every column must match.
func (d *Dataset) Rows() int { return d.rows }

// Len is the number of columns added so far.
func (d *Dataset) Len() int { return len(d.order) }

// Has reports whether a column of that name was already added.
func (d *Dataset) Has(name string) bool {
	_, ok := d.cols[name]
	return ok
}

// Get returns a column by name.
func (d *Dataset) Get(name string) (*Column, bool) {
	c, ok := d.cols[name]
	return c, ok
}

// Add appends a finished column. Duplicate names and length mismatches are
// rejected; callers check Has first when they want the idempotent skip.
func (d *Dataset) Add(c *Column) error {
	if c == nil || c.Name == "" {
		return fmt.Errorf("dataset: column without a name")
	}
	if _, ok := d.cols[c.Name]; ok {
		return fmt.Errorf("dataset: column %q already present", c.Name)
	}
	if len(c.Values) != d.rows {
		return fmt.Errorf("dataset: column %q has %d values, want %d", c.Name, len(c.Values), d.rows)
	}
	d.cols[c.Name] = c
	d.order = append(d.order, c.Name)
	return nil
}

// Names returns the column names in insertion order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Columns returns the columns in insertion order.
func (d *Dataset) Columns() []*Column {
	out := make([]*Column, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.cols[name])
	}
	return out
}

// Row materializes one row across all columns, in column order. It is the
// shape sinks feed to their bulk-write APIs.
func (d *Dataset) Row(i int) []any {
	out := make([]any, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.cols[name].Values[i])
	}
	return out
}
