package generate

import (
	"math"
	"time"

	"synthgen/internal/dataset"
	"synthgen/internal/notation"
)

// Default populations, applied when a variable carries no usable population
// metadata: partial metadata still yields output, with a warning.
const (
	defaultMin  = 0.0
	defaultMax  = 100.0
	defaultSpan = defaultMax - defaultMin
)

var (
	defaultCodes   = []string{"1", "2"}
	defaultMinDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	defaultMaxDate = time.Date(2009, time.December, 31, 0, 0, 0, 0, time.UTC)
)

func applyDefault(p *plan, res *Result) {
	p.defaulted = true
	res.Defaulted = true
	switch p.kind {
	case dataset.Categorical:
		for _, code := range defaultCodes {
			p.cats = append(p.cats, catPop{code: code, weight: 1 / float64(len(defaultCodes))})
		}
	case dataset.Continuous:
		p.pops = append(p.pops, subPop{weight: 1, desc: notation.Descriptor{
			Kind: notation.KindRange,
			Min:  defaultMin, Max: defaultMax,
			MinIncl: true, MaxIncl: true,
		}})
	case dataset.Date:
		p.pops = append(p.pops, subPop{weight: 1, desc: notation.Descriptor{
			Kind:    notation.KindDateRange,
			MinDate: defaultMinDate, MaxDate: defaultMaxDate,
		}})
	}
	res.warnf("no usable population metadata for %q; default %s population applies", p.name, p.kind)
}

// normalDefaults centers an unparameterized normal on its range: mean at the
// midpoint, three sigma to each bound.
func normalDefaults(min, max float64) (mean, sd float64) {
	if math.IsInf(min, -1) || math.IsInf(max, 1) {
		return 0, 1
	}
	return (min + max) / 2, (max - min) / 6
}

// exponentialDefaultRate puts the unclipped mean one fifth of the span above
// the lower bound.
func exponentialDefaultRate(min, max float64) float64 {
	if math.IsInf(max, 1) || max <= min {
		return 1
	}
	return 5 / (max - min)
}

// finiteBounds substitutes a fixed-width window for infinite bounds, for the
// draws that need finite support.
func finiteBounds(min, max float64) (float64, float64) {
	switch {
	case math.IsInf(min, -1) && math.IsInf(max, 1):
		return defaultMin, defaultMax
	case math.IsInf(min, -1):
		return max - defaultSpan, max
	case math.IsInf(max, 1):
		return min, min + defaultSpan
	}
	return min, max
}
