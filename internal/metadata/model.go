// Package metadata models the generator's two input tables: "variables" (one
// row per output column) and "variable details" (zero or more rows per
// variable describing categories, ranges, missing codes and contamination
// rules). It loads them from CSV or JSON, lints them, and rewrites
// scope-qualified names into a single-scope view.
package metadata

import (
	"strings"

	"synthgen/internal/dataset"
	"synthgen/internal/weights"
)

// Survival role spellings. Entry is the anchor column; Event and Death are
// the pair the competing-risk censoring rule applies to. Other role names
// (dropout, followup, ...) are generated but carry no special rule.
const (
	RoleEntry = "entry"
	RoleEvent = "event"
	RoleDeath = "death"
)

// Derivation marks a variable computed from others rather than generated.
// The generators skip derived variables; DependsOn lists the bracketed names
// referenced by the script.
type Derivation struct {
	Script    string
	DependsOn []string
}

// VariableSpec is one row of the variables table. Type, Dist and Role keep
// their metadata spelling; unknown spellings degrade at generation time
// rather than failing the load.
type VariableSpec struct {
	Name string
	Type string // "categorical", "continuous", "date"
	Repr string // output representation, see dataset.Coerce

	// Distribution family and its two parameters. Meaning by family:
	// normal: mean/sd; exponential: rate/-; gompertz: shape/rate.
	Dist           string
	Param1, Param2 float64

	// Range is the valid-bounds bracket notation for continuous and date
	// variables without detail rows carrying one.
	Range string

	// Survival parameters. Role empty means not a survival column. Offsets
	// are days relative to the anchor column. EventProb below 1 leaves the
	// role's date missing for the non-event share of rows; the loaders
	// default it to 1 when unset.
	Role                 string
	Anchor               string
	MinOffset, MaxOffset int
	EventProb            float64

	// Derived is nil for raw variables.
	Derived *Derivation
}

// Kind maps the metadata type spelling onto the dataset kind.
func (v *VariableSpec) Kind() (dataset.Kind, bool) {
	return dataset.KindFromString(strings.ToLower(strings.TrimSpace(v.Type)))
}

// DetailRow is one row of the variable-details table, foreign-keyed to a
// variable by name.
type DetailRow struct {
	Variable   string
	Code       string
	Value      string
	Proportion float64
	HasProp    bool
}

// Set is the loaded pair of tables. Variables keep their table order, which
// is also the generation order.
type Set struct {
	Variables []VariableSpec
	Details   []DetailRow

	byName map[string]int
}

// NewSet builds a Set and its name index. The first occurrence of a
// duplicated name wins; the linter reports the duplicates.
func NewSet(vars []VariableSpec, details []DetailRow) *Set {
	s := &Set{Variables: vars, Details: details, byName: map[string]int{}}
	for i, v := range vars {
		if _, ok := s.byName[v.Name]; !ok {
			s.byName[v.Name] = i
		}
	}
	return s
}

// Variable returns the spec for name.
func (s *Set) Variable(name string) (*VariableSpec, bool) {
	i, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return &s.Variables[i], true
}

// DetailsFor returns the detail rows of one variable, in table order.
func (s *Set) DetailsFor(name string) []DetailRow {
	var out []DetailRow
	for _, d := range s.Details {
		if d.Variable == name {
			out = append(out, d)
		}
	}
	return out
}

// WeightRows converts one variable's detail rows into the resolver's input
// shape.
func (s *Set) WeightRows(name string) []weights.Row {
	details := s.DetailsFor(name)
	out := make([]weights.Row, 0, len(details))
	for _, d := range details {
		out = append(out, weights.Row{
			Code:       d.Code,
			Value:      d.Value,
			Proportion: d.Proportion,
			HasProp:    d.HasProp,
		})
	}
	return out
}
