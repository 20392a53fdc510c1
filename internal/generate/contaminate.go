package generate

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"synthgen/internal/dataset"
	"synthgen/internal/notation"
	"synthgen/internal/sample"
	"synthgen/internal/weights"
)

// UnderSupplyPolicy selects what happens when a contamination rule requests
// more rows than remain untouched.
type UnderSupplyPolicy int

// BestEffort contaminates the whole remaining pool and records the shortfall
// on the Result; a rule never fails a build. It is the zero value and the
// only implemented policy.
const BestEffort UnderSupplyPolicy = iota

// applyContamination overwrites valid slots rule by rule, in declaration
// order. Indices come off one shuffled pool, so no index is touched twice in
// a call and rules never overlap.
func applyContamination(rng *rand.Rand, p *plan, valid []any, res *Result) {
	if len(p.contam) == 0 || len(valid) == 0 {
		return
	}
	pool := rng.Perm(len(valid))
	next := 0
	for _, rule := range p.contam {
		if !rule.HasProp || rule.Proportion <= 0 {
			res.warnf("contamination rule %q for %q has no proportion; rule skipped", rule.Code, p.name)
			continue
		}
		k := int(math.Round(rule.Proportion * float64(len(valid))))
		if k == 0 {
			continue
		}
		if remaining := len(pool) - next; k > remaining {
			res.warnf("contamination rule %q for %q wants %d rows, %d untouched remain", rule.Code, p.name, k, remaining)
			switch p.policy {
			case BestEffort:
				res.Shortfall += k - remaining
				k = remaining
			}
		}
		vals, ok := contaminants(rng, p, rule, k, res)
		if !ok {
			continue
		}
		for _, v := range vals {
			valid[pool[next]] = v
			next++
		}
		res.Contaminated += len(vals)
	}
}

// contaminants generates k values for one rule: a uniform draw inside the
// rule's declared sub-range when it has one, a generic implausible value
// otherwise. A false return means the rule cannot produce values for this
// column kind.
func contaminants(rng *rand.Rand, p *plan, rule weights.Row, k int, res *Result) ([]any, bool) {
	if sub := strings.TrimSpace(rule.Value); sub != "" {
		hint := notation.Numeric
		if p.kind == dataset.Date {
			hint = notation.DateHint
		}
		d, err := notation.Parse(sub, hint)
		if err == nil {
			if vals, ok := subRangeDraw(rng, d, k); ok {
				return vals, true
			}
		}
		res.warnf("contamination rule %q for %q: sub-range %q unusable; implausible values apply", rule.Code, p.name, sub)
	}
	return implausible(rng, p, rule, k, res)
}

func subRangeDraw(rng *rand.Rand, d notation.Descriptor, k int) ([]any, bool) {
	out := make([]any, k)
	switch d.Kind {
	case notation.KindRange:
		for i, v := range sample.Uniform(rng, d.Min, d.Max, k) {
			out[i] = v
		}
	case notation.KindIntSet:
		for i, m := range sample.IntSet(rng, d.Set, k) {
			out[i] = m
		}
	case notation.KindSingle:
		for i := range out {
			out[i] = d.Value
		}
	case notation.KindDateRange:
		if d.MaxDate.IsZero() {
			return nil, false
		}
		for i, t := range sample.UniformDate(rng, d.MinDate, d.MaxDate, k) {
			out[i] = t
		}
	default:
		return nil, false
	}
	return out, true
}

// implausible produces generic out-of-range values: far below or above the
// valid bounds for numeric columns, 1 to 100 years outside the window for
// date columns. The side comes from the rule's code suffix; anything not
// named "below" contaminates upward.
func implausible(rng *rand.Rand, p *plan, rule weights.Row, k int, res *Result) ([]any, bool) {
	below := strings.Contains(rule.Code, "below")
	out := make([]any, k)

	switch p.kind {
	case dataset.Continuous:
		min, max := p.numericBounds()
		span := max - min
		if span <= 0 {
			span = defaultSpan
		}
		var vals []float64
		if below {
			vals = sample.Uniform(rng, min-2*span, min-span, k)
		} else {
			vals = sample.Uniform(rng, max+span, max+2*span, k)
		}
		for i, v := range vals {
			out[i] = v
		}
	case dataset.Date:
		min, max := p.dateBounds()
		for i := range out {
			years := 1 + rng.Intn(100)
			if below {
				out[i] = min.AddDate(-years, 0, 0)
			} else {
				out[i] = max.AddDate(years, 0, 0)
			}
		}
	default:
		// No notion of "out of range" for categorical codes; only an
		// explicit sub-range can contaminate them.
		res.warnf("contamination rule %q for %q needs a sub-range on a categorical column; rule skipped", rule.Code, p.name)
		return nil, false
	}
	return out, true
}

// numericBounds is the plan's overall valid range, with infinite sides
// substituted by the fixed default window.
func (p *plan) numericBounds() (float64, float64) {
	min, max := math.Inf(1), math.Inf(-1)
	for _, sp := range p.pops {
		switch sp.desc.Kind {
		case notation.KindRange:
			min = math.Min(min, sp.desc.Min)
			max = math.Max(max, sp.desc.Max)
		case notation.KindIntSet:
			if n := len(sp.desc.Set); n > 0 {
				min = math.Min(min, float64(sp.desc.Set[0]))
				max = math.Max(max, float64(sp.desc.Set[n-1]))
			}
		case notation.KindSingle:
			min = math.Min(min, sp.desc.Value)
			max = math.Max(max, sp.desc.Value)
		}
	}
	if min > max {
		return defaultMin, defaultMax
	}
	return finiteBounds(min, max)
}

func (p *plan) dateBounds() (time.Time, time.Time) {
	var min, max time.Time
	for _, sp := range p.pops {
		if sp.desc.Kind != notation.KindDateRange {
			continue
		}
		if min.IsZero() || sp.desc.MinDate.Before(min) {
			min = sp.desc.MinDate
		}
		hi := sp.desc.MaxDate
		if hi.IsZero() {
			hi = sp.desc.MinDate
		}
		if hi.After(max) {
			max = hi
		}
	}
	if min.IsZero() {
		return defaultMinDate, defaultMaxDate
	}
	return min, max
}
