// Package generate turns variable metadata into dataset columns: population
// sampling, missing-code substitution, contamination injection and final
// representation coercion. Two explicit entry points exist — FromMetadata
// resolves everything from the loaded metadata tables, FromParams takes the
// population as literal arguments — and both reduce to the same plan.
package generate

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"synthgen/internal/dataset"
	"synthgen/internal/metadata"
	"synthgen/internal/notation"
	"synthgen/internal/sample"
	"synthgen/internal/weights"
)

// ErrInvalidCall marks caller mistakes that abort one generation call: a
// non-positive row count or a declared proportion above 1.0. Everything else
// degrades to a warning on the Result.
var ErrInvalidCall = errors.New("invalid generation call")

// Outcome says what one generation call did to the dataset.
type Outcome int

const (
	Built               Outcome = iota
	SkippedUnknown              // name absent from the metadata, or type not generatable
	SkippedExists               // column already present
	SkippedDerived              // derived variables are never populated directly
	SkippedNoCategories         // categorical variable with no valid categories
)

func (o Outcome) String() string {
	switch o {
	case Built:
		return "built"
	case SkippedUnknown:
		return "skipped-unknown"
	case SkippedExists:
		return "skipped-exists"
	case SkippedDerived:
		return "skipped-derived"
	case SkippedNoCategories:
		return "skipped-no-categories"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Result reports one generation call. A no-op carries its reason in Outcome
// and possibly Warnings; it is never an error.
type Result struct {
	Name    string
	Outcome Outcome

	Valid        int // rows drawn from the valid population
	Missing      int // rows assigned a missing code
	Contaminated int // rows overwritten by contamination rules
	Shortfall    int // contamination rows requested beyond the untouched pool

	Defaulted bool // default population used
	Warnings  []string
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// catPop is one weighted categorical outcome. set is non-nil when the code
// materialized to an enumerated integer set; each draw then picks a member.
type catPop struct {
	code   string
	weight float64
	set    []int
}

func newCatPop(code string, weight float64) catPop {
	cp := catPop{code: code, weight: weight}
	if d, err := notation.Parse(code, notation.Numeric); err == nil && d.Kind == notation.KindIntSet {
		cp.set = d.Set
	}
	return cp
}

// subPop is one weighted slice of a continuous or date population.
type subPop struct {
	weight float64
	desc   notation.Descriptor
}

// plan is the recipe both entry points reduce to.
type plan struct {
	name string
	kind dataset.Kind
	repr string

	dist           string
	param1, param2 float64

	cats []catPop // categorical population
	pops []subPop // continuous and date population

	validShare float64
	missing    []weights.Category
	contam     []weights.Row
	policy     UnderSupplyPolicy

	defaulted bool
}

// FromMetadata generates the named column from the metadata tables into ds.
// No-ops: unknown name or type, column already present, derived variable,
// categorical with no valid categories. Missing detail metadata falls back
// to the default population with a warning.
func FromMetadata(rng *rand.Rand, set *metadata.Set, name string, n int, ds *dataset.Dataset) (Result, error) {
	res := Result{Name: name}
	if n <= 0 {
		return res, fmt.Errorf("generate %q: row count %d: %w", name, n, ErrInvalidCall)
	}
	v, ok := set.Variable(name)
	if !ok {
		res.Outcome = SkippedUnknown
		res.warnf("no metadata for %q", name)
		return res, nil
	}
	if ds.Has(name) {
		res.Outcome = SkippedExists
		return res, nil
	}
	if v.Derived != nil {
		res.Outcome = SkippedDerived
		return res, nil
	}
	kind, ok := v.Kind()
	if !ok {
		res.Outcome = SkippedUnknown
		res.warnf("unknown type %q for %q; column skipped", v.Type, name)
		return res, nil
	}

	rows := set.WeightRows(name)
	resolved, err := weights.Resolve(rows)
	if err != nil {
		return res, fmt.Errorf("generate %q: %v: %w", name, err, ErrInvalidCall)
	}
	p, ok := assemble(v, kind, resolved, len(rows) > 0, &res)
	if !ok {
		return res, nil
	}
	return run(rng, p, n, ds, res)
}

// assemble turns a variable spec and its resolved detail rows into a plan.
// A false return means the call is a no-op with the reason already on res.
func assemble(v *metadata.VariableSpec, kind dataset.Kind, resolved weights.Resolved, hadRows bool, res *Result) (plan, bool) {
	p := plan{
		name:       v.Name,
		kind:       kind,
		repr:       v.Repr,
		dist:       v.Dist,
		param1:     v.Param1,
		param2:     v.Param2,
		validShare: resolved.ValidShare(),
		missing:    resolved.Missing,
		contam:     resolved.Contam,
	}
	if resolved.Rescaled {
		res.warnf("proportions for %q sum to %.4g; renormalized", v.Name, resolved.DeclaredSum)
	}

	switch kind {
	case dataset.Categorical:
		for _, c := range resolved.Valid {
			p.cats = append(p.cats, newCatPop(c.Code, c.Weight))
		}
		if len(p.cats) == 0 {
			if hadRows {
				res.Outcome = SkippedNoCategories
				res.warnf("no valid categories for %q; column skipped", v.Name)
				return p, false
			}
			p.validShare = 1
			applyDefault(&p, res)
		}

	case dataset.Continuous, dataset.Date:
		hint := notation.Numeric
		if kind == dataset.Date {
			hint = notation.DateHint
		}
		for _, c := range resolved.Valid {
			d, err := notation.Parse(c.Code, hint)
			if err != nil {
				res.warnf("range %q for %q: %v; row ignored", c.Code, v.Name, err)
				continue
			}
			if !usableDesc(kind, d.Kind) {
				res.warnf("range %q for %q does not fit a %s variable; row ignored", c.Code, v.Name, kind)
				continue
			}
			p.pops = append(p.pops, subPop{weight: c.Weight, desc: d})
		}
		if len(p.pops) == 0 && v.Range != "" {
			d, err := notation.Parse(v.Range, hint)
			switch {
			case err != nil:
				res.warnf("range %q for %q: %v; default population applies", v.Range, v.Name, err)
			case !usableDesc(kind, d.Kind):
				res.warnf("range %q for %q does not fit a %s variable; default population applies", v.Range, v.Name, kind)
			default:
				p.pops = append(p.pops, subPop{weight: 1, desc: d})
			}
		}
		if len(p.pops) == 0 {
			if !hadRows {
				p.validShare = 1
			}
			applyDefault(&p, res)
		}
	}
	return p, true
}

// usableDesc reports whether a parsed descriptor can serve as a population
// slice for the column kind: numeric shapes for continuous, date ranges for
// date columns.
func usableDesc(kind dataset.Kind, dk notation.Kind) bool {
	if kind == dataset.Date {
		return dk == notation.KindDateRange
	}
	return dk == notation.KindRange || dk == notation.KindIntSet || dk == notation.KindSingle
}

// run executes a plan: draw the valid prefix, inject missingness and
// contamination, coerce, append.
func run(rng *rand.Rand, p plan, n int, ds *dataset.Dataset, res Result) (Result, error) {
	nValid := int(math.Floor(float64(n) * p.validShare))
	if nValid > n {
		nValid = n
	}
	if nValid < 0 {
		nValid = 0
	}

	values := make([]any, n)
	switch p.kind {
	case dataset.Categorical:
		fillCategorical(rng, p, values[:nValid])
	case dataset.Continuous:
		fillContinuous(rng, p, values[:nValid])
	case dataset.Date:
		fillDate(rng, p, values[:nValid])
	}

	res.Valid = nValid
	res.Missing = applyMissing(rng, values, p.missing, nValid)
	applyContamination(rng, &p, values[:nValid], &res)

	col := &dataset.Column{Name: p.name, Kind: p.kind, Repr: p.repr, Values: values}
	dataset.Coerce(col)
	if err := ds.Add(col); err != nil {
		return res, fmt.Errorf("generate %q: %w", p.name, err)
	}
	res.Outcome = Built
	return res, nil
}

func fillCategorical(rng *rand.Rand, p plan, out []any) {
	codes := make([]string, len(p.cats))
	ws := make([]float64, len(p.cats))
	sets := map[string][]int{}
	for i, c := range p.cats {
		codes[i] = c.code
		ws[i] = c.weight
		if len(c.set) > 0 {
			sets[c.code] = c.set
		}
	}
	for i, code := range sample.Categorical(rng, codes, ws, len(out)) {
		if set, ok := sets[code]; ok {
			out[i] = set[rng.Intn(len(set))]
		} else {
			out[i] = code
		}
	}
}

// fillContinuous draws the valid prefix: a sub-population per slot by
// weight, then the variable's distribution inside that sub-population. The
// prefix is shuffled when more than one sub-population contributed, so the
// layout carries no grouping artifact.
func fillContinuous(rng *rand.Rand, p plan, out []any) {
	counts := popCounts(rng, p.pops, len(out))
	filled := 0
	for i, sp := range p.pops {
		if counts[i] == 0 {
			continue
		}
		for _, v := range drawContinuous(rng, p, sp.desc, counts[i]) {
			out[filled] = v
			filled++
		}
	}
	if len(p.pops) > 1 {
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
}

func fillDate(rng *rand.Rand, p plan, out []any) {
	counts := popCounts(rng, p.pops, len(out))
	filled := 0
	for i, sp := range p.pops {
		if counts[i] == 0 {
			continue
		}
		for _, d := range drawDates(rng, p, sp.desc, counts[i]) {
			out[filled] = d
			filled++
		}
	}
	if len(p.pops) > 1 {
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
}

func popCounts(rng *rand.Rand, pops []subPop, n int) []int {
	ws := make([]float64, len(pops))
	for i, sp := range pops {
		ws[i] = sp.weight
	}
	counts := make([]int, len(pops))
	for i := 0; i < n; i++ {
		counts[sample.WeightedIndex(rng, ws)]++
	}
	return counts
}

func drawContinuous(rng *rand.Rand, p plan, d notation.Descriptor, k int) []float64 {
	switch d.Kind {
	case notation.KindSingle:
		vals := make([]float64, k)
		for i := range vals {
			vals[i] = d.Value
		}
		return vals
	case notation.KindIntSet:
		vals := make([]float64, k)
		for i, m := range sample.IntSet(rng, d.Set, k) {
			vals[i] = float64(m)
		}
		return vals
	}

	switch p.dist {
	case "normal":
		mean, sd := p.param1, p.param2
		if mean == 0 && sd == 0 {
			mean, sd = normalDefaults(d.Min, d.Max)
		}
		return sample.Normal(rng, mean, sd, d.Min, d.Max, k)
	case "exponential":
		rate := p.param1
		if rate <= 0 {
			rate = exponentialDefaultRate(d.Min, d.Max)
		}
		min := d.Min
		if math.IsInf(min, -1) {
			min, _ = finiteBounds(d.Min, d.Max)
		}
		return sample.Exponential(rng, rate, min, d.Max, k)
	}
	min, max := finiteBounds(d.Min, d.Max)
	return sample.Uniform(rng, min, max, k)
}

func drawDates(rng *rand.Rand, p plan, d notation.Descriptor, k int) []time.Time {
	if d.MaxDate.IsZero() {
		// Open upper bound means one fixed date.
		return sample.FixedDate(d.MinDate, k)
	}
	if p.dist == "gompertz" {
		return sample.GompertzDate(rng, d.MinDate, p.param1, p.param2, d.MaxDate, k)
	}
	return sample.UniformDate(rng, d.MinDate, d.MaxDate, k)
}
