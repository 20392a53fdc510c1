package generate

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"synthgen/internal/dataset"
	"synthgen/internal/metadata"
	"synthgen/internal/survival"
)

// Options tunes one dataset build.
type Options struct {
	// Workers above 1 generates independent variables concurrently; the
	// survival group always runs after them, serialized.
	Workers int
}

// BuildResult is the orchestration outcome: the dataset plus per-variable
// results and the flattened warning list.
type BuildResult struct {
	Dataset  *dataset.Dataset
	Results  []Result
	Warnings []string
}

func (b *BuildResult) collect(res Result, err error) {
	if err != nil {
		res.Warnings = append(res.Warnings, err.Error())
	}
	b.Results = append(b.Results, res)
	b.Warnings = append(b.Warnings, res.Warnings...)
}

// Cells is the number of generated cells across all built columns.
func (b *BuildResult) Cells() int {
	cells := 0
	for _, r := range b.Results {
		if r.Outcome == Built {
			cells += r.Valid + r.Missing
		}
	}
	return cells
}

// Build generates every variable of the metadata set in table order, then
// the survival role group. One seed governs the whole run. Per-variable
// failures become warnings; only an invalid row count fails the build.
func Build(ctx context.Context, seed int64, set *metadata.Set, n int, opts Options) (*BuildResult, error) {
	if n <= 0 {
		return nil, fmt.Errorf("build: row count %d: %w", n, ErrInvalidCall)
	}
	rng := rand.New(rand.NewSource(seed))
	ds := dataset.New(n)
	out := &BuildResult{Dataset: ds}

	group, hasSurvival := survival.GroupRoles(set)

	var plain []*metadata.VariableSpec
	for i := range set.Variables {
		v := &set.Variables[i]
		if hasSurvival && v.Role != "" {
			continue
		}
		plain = append(plain, v)
	}

	if opts.Workers > 1 {
		buildParallel(ctx, seed, set, plain, n, ds, opts, out)
	} else {
		for _, v := range plain {
			if err := ctx.Err(); err != nil {
				res := Result{Name: v.Name}
				res.warnf("build canceled: %v; column skipped", err)
				out.collect(res, nil)
				continue
			}
			res, err := FromMetadata(rng, set, v.Name, n, ds)
			out.collect(res, err)
		}
	}

	if hasSurvival {
		buildSurvival(ctx, rng, set, group, n, ds, out)
	}
	return out, nil
}

// buildSurvival generates the role group: the entry column first through the
// regular path, every other role anchored on it, then the censoring pass.
// Role columns stay uncoerced until after censoring so the ordering
// comparisons see dates, not output representations.
func buildSurvival(ctx context.Context, rng *rand.Rand, set *metadata.Set, g survival.Group, n int, ds *dataset.Dataset, out *BuildResult) {
	if g.Entry == nil {
		for _, v := range g.Others {
			res := Result{Name: v.Name}
			res.warnf("role %q declared but the set has no entry column; column skipped", v.Role)
			out.collect(res, nil)
		}
		return
	}
	if err := ctx.Err(); err != nil {
		res := Result{Name: g.Entry.Name}
		res.warnf("build canceled: %v; survival group skipped", err)
		out.collect(res, nil)
		for _, v := range g.Others {
			r := Result{Name: v.Name}
			r.warnf("build canceled: %v; column skipped", err)
			out.collect(r, nil)
		}
		return
	}

	res, err := FromMetadata(rng, set, g.Entry.Name, n, ds)
	out.collect(res, err)
	entryCol, ok := ds.Get(g.Entry.Name)
	if !ok {
		for _, v := range g.Others {
			r := Result{Name: v.Name}
			r.warnf("entry column %q was not generated; column skipped", g.Entry.Name)
			out.collect(r, nil)
		}
		return
	}

	var added []*dataset.Column
	for _, v := range g.Others {
		if err := ctx.Err(); err != nil {
			r := Result{Name: v.Name}
			r.warnf("build canceled: %v; column skipped", err)
			out.collect(r, nil)
			continue
		}
		if ds.Has(v.Name) {
			out.collect(Result{Name: v.Name, Outcome: SkippedExists}, nil)
			continue
		}
		values, events := survival.Anchored(rng, entryCol.Values, v)
		col := &dataset.Column{Name: v.Name, Kind: dataset.Date, Repr: v.Repr, Values: values}
		if err := ds.Add(col); err != nil {
			out.collect(Result{Name: v.Name}, err)
			continue
		}
		added = append(added, col)
		out.collect(Result{Name: v.Name, Outcome: Built, Valid: events, Missing: n - events}, nil)
	}

	st := survival.Censor(ds, g)
	if st.PreEntry+st.PostDeath > 0 {
		log.Printf("generate: censored %d pre-entry dates and %d events preceded by death", st.PreEntry, st.PostDeath)
	}
	for _, col := range added {
		dataset.Coerce(col)
	}
}
