package generate

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"synthgen/internal/dataset"
	"synthgen/internal/notation"
)

// Params is the explicit-scalar request shape: what one variable's metadata
// would say, passed as literal arguments. Missingness and contamination only
// exist as detail metadata, so a Params population is fully valid.
type Params struct {
	Name string
	Kind dataset.Kind
	Repr string

	// Categorical population. Weights may be empty for uniform.
	Codes   []string
	Weights []float64

	// Continuous or date population. Zero bounds select the default
	// population window.
	Dist             string
	Param1, Param2   float64
	Min, Max         float64
	MinDate, MaxDate time.Time
}

// FromParams generates a column from explicit parameters instead of loaded
// metadata tables.
func FromParams(rng *rand.Rand, p Params, n int, ds *dataset.Dataset) (Result, error) {
	res := Result{Name: p.Name}
	if n <= 0 {
		return res, fmt.Errorf("generate %q: row count %d: %w", p.Name, n, ErrInvalidCall)
	}
	if strings.TrimSpace(p.Name) == "" {
		return res, fmt.Errorf("generate: empty column name: %w", ErrInvalidCall)
	}
	if ds.Has(p.Name) {
		res.Outcome = SkippedExists
		return res, nil
	}
	for _, w := range p.Weights {
		if w < 0 || w > 1 {
			return res, fmt.Errorf("generate %q: weight %v outside [0,1]: %w", p.Name, w, ErrInvalidCall)
		}
	}

	pl := plan{
		name:       p.Name,
		kind:       p.Kind,
		repr:       p.Repr,
		dist:       strings.ToLower(strings.TrimSpace(p.Dist)),
		param1:     p.Param1,
		param2:     p.Param2,
		validShare: 1,
	}

	switch p.Kind {
	case dataset.Categorical:
		if len(p.Codes) == 0 {
			applyDefault(&pl, &res)
			break
		}
		uniform := 1 / float64(len(p.Codes))
		for i, code := range p.Codes {
			w := uniform
			if i < len(p.Weights) {
				w = p.Weights[i]
			}
			pl.cats = append(pl.cats, newCatPop(code, w))
		}
	case dataset.Continuous:
		d := notation.Descriptor{
			Kind: notation.KindRange,
			Min:  p.Min, Max: p.Max,
			MinIncl: true, MaxIncl: true,
		}
		if p.Min == 0 && p.Max == 0 {
			applyDefault(&pl, &res)
			break
		}
		pl.pops = append(pl.pops, subPop{weight: 1, desc: d})
	case dataset.Date:
		if p.MinDate.IsZero() && p.MaxDate.IsZero() {
			applyDefault(&pl, &res)
			break
		}
		pl.pops = append(pl.pops, subPop{weight: 1, desc: notation.Descriptor{
			Kind:    notation.KindDateRange,
			MinDate: p.MinDate, MaxDate: p.MaxDate,
		}})
	default:
		res.Outcome = SkippedUnknown
		res.warnf("kind %v for %q is not generatable", p.Kind, p.Name)
		return res, nil
	}

	return run(rng, pl, n, ds, res)
}
