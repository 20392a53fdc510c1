// Package weights resolves the detail rows of one variable into normalized
// sampling weights: a valid-category share, a missing-code share, and the
// contamination rows passed through untouched.
package weights

import (
	"fmt"
	"math"
	"strings"

	"synthgen/internal/notation"
)

// SumTolerance is the accepted deviation of a declared proportion sum from
// 1.0. One constant, applied on every path: beyond it the whole vector is
// rescaled by 1/sum; within it declared values are kept as-is.
const SumTolerance = 0.001

// Row is one detail-metadata row as the resolver sees it.
type Row struct {
	Code       string  // raw code token (category, bracket range, special marker)
	Value      string  // optional literal value or sub-range
	Proportion float64 // meaningful only when HasProp
	HasProp    bool
}

// Category is one weighted outcome of the resolution. For valid rows Code is
// the category code to draw; for missing rows Value carries the literal (or
// enumerable literal set) to write and Code keeps the raw row code.
type Category struct {
	Code   string
	Value  string
	Weight float64
}

// Resolved is the output of Resolve.
type Resolved struct {
	Valid   []Category
	Missing []Category
	Contam  []Row // independent per-rule probabilities, not population shares

	// Rescaled is set when the declared sum missed 1.0 beyond SumTolerance
	// and all weights were multiplied by 1/sum. DeclaredSum keeps the sum as
	// found, for the caller's warning.
	Rescaled    bool
	DeclaredSum float64
}

// Empty reports that no population rows were found at all, signalling the
// caller to fall back to its default population.
func (r Resolved) Empty() bool { return len(r.Valid)+len(r.Missing) == 0 }

// ValidShare is the fraction of rows to fill with valid draws.
func (r Resolved) ValidShare() float64 {
	s := 0.0
	for _, c := range r.Valid {
		s += c.Weight
	}
	return s
}

// MissingShare is the fraction of rows to fill with missing codes.
func (r Resolved) MissingShare() float64 {
	s := 0.0
	for _, c := range r.Missing {
		s += c.Weight
	}
	return s
}

// Resolve partitions rows by the code-prefix conventions and normalizes the
// population proportions.
//
// Partition: codes starting with the contamination prefix become Contam rows
// (returned untouched); codes starting with the missing prefix become
// missing categories; everything else is a valid category, except rows whose
// code encodes a transform rule (function references, "otherwise"), which
// are dropped from generation entirely.
//
// Weighting: rows without a declared proportion share the leftover
// 1 − sum(declared) equally (so all-undeclared input comes out uniform).
// When the combined sum still misses 1.0 beyond SumTolerance, every weight
// is rescaled by 1/sum and Rescaled is set; the caller warns, never fails.
// A single declared proportion above 1.0 or below 0 is an invalid call and
// returns an error.
func Resolve(rows []Row) (Resolved, error) {
	var out Resolved

	type member struct {
		cat     Category
		missing bool
		hasProp bool
	}
	var pop []member

	for _, row := range rows {
		code := strings.TrimSpace(row.Code)
		if code == "" {
			continue
		}
		if row.HasProp {
			if row.Proportion > 1.0 {
				return Resolved{}, fmt.Errorf("weights: proportion %v for %q above 1.0", row.Proportion, code)
			}
			if row.Proportion < 0 {
				return Resolved{}, fmt.Errorf("weights: negative proportion %v for %q", row.Proportion, code)
			}
		}

		switch {
		case strings.HasPrefix(code, notation.ContamPrefix):
			out.Contam = append(out.Contam, row)
			continue
		case strings.HasPrefix(code, notation.MissPrefix):
			lit := strings.TrimSpace(row.Value)
			if lit == "" {
				lit = strings.TrimPrefix(code, notation.MissPrefix)
			}
			pop = append(pop, member{
				cat:     Category{Code: code, Value: lit, Weight: row.Proportion},
				missing: true,
				hasProp: row.HasProp,
			})
		default:
			if d, err := notation.Parse(code, notation.Numeric); err == nil && d.Transform() {
				continue
			}
			pop = append(pop, member{
				cat:     Category{Code: code, Value: strings.TrimSpace(row.Value), Weight: row.Proportion},
				hasProp: row.HasProp,
			})
		}
	}

	if len(pop) == 0 {
		return out, nil
	}

	declared := 0.0
	undeclared := 0
	for _, m := range pop {
		if m.hasProp {
			declared += m.cat.Weight
		} else {
			undeclared++
		}
	}
	if undeclared > 0 {
		share := math.Max(0, 1.0-declared) / float64(undeclared)
		for i := range pop {
			if !pop[i].hasProp {
				pop[i].cat.Weight = share
			}
		}
	}

	sum := 0.0
	for _, m := range pop {
		sum += m.cat.Weight
	}
	out.DeclaredSum = sum
	if sum > 0 && math.Abs(sum-1.0) > SumTolerance {
		for i := range pop {
			pop[i].cat.Weight /= sum
		}
		out.Rescaled = true
	}

	for _, m := range pop {
		if m.missing {
			out.Missing = append(out.Missing, m.cat)
		} else {
			out.Valid = append(out.Valid, m.cat)
		}
	}
	return out, nil
}
