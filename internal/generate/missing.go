package generate

import (
	"math/rand"

	"synthgen/internal/notation"
	"synthgen/internal/sample"
	"synthgen/internal/weights"
)

// applyMissing fills the slots after the valid prefix with missing-code
// draws, assigned by weight per slot. Returns the number of slots filled.
//
// A numeric literal comes out as a number, so a date column carries its
// missing codes in numeric form untouched until final coercion; an
// enumerable literal set draws one member per slot.
func applyMissing(rng *rand.Rand, values []any, missing []weights.Category, nValid int) int {
	k := len(values) - nValid
	if k <= 0 {
		return 0
	}
	if len(missing) == 0 {
		// A rounding gap with no declared codes: empty cells.
		for i := nValid; i < len(values); i++ {
			values[i] = nil
		}
		return k
	}

	ws := make([]float64, len(missing))
	for i, m := range missing {
		ws[i] = m.Weight
	}
	for i := nValid; i < len(values); i++ {
		m := missing[sample.WeightedIndex(rng, ws)]
		values[i] = missingValue(rng, m.Value)
	}
	return k
}

// missingValue materializes one missing-code literal.
func missingValue(rng *rand.Rand, lit string) any {
	d, err := notation.Parse(lit, notation.Numeric)
	if err != nil {
		return lit
	}
	switch d.Kind {
	case notation.KindSingle:
		return d.Value
	case notation.KindIntSet:
		return d.Set[rng.Intn(len(d.Set))]
	}
	return lit
}
