package generate

import (
	"context"
	"math/rand"

	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"synthgen/internal/dataset"
	"synthgen/internal/metadata"
)

// piece is one worker's finished column on its way to the assembler.
type piece struct {
	idx int
	col *dataset.Column
	res Result
	err error
}

// buildParallel generates independent variables with a bounded worker pool.
// Each worker draws from its own name-keyed child source, so scheduling
// cannot change the output, and hands its finished column to the one
// assembler goroutine, which appends in metadata order. A canceled context
// turns the remaining variables into skip-and-warn no-ops; a column is
// appended whole or not at all.
func buildParallel(ctx context.Context, seed int64, set *metadata.Set, vars []*metadata.VariableSpec, n int, ds *dataset.Dataset, opts Options, out *BuildResult) {
	existing := map[string]bool{}
	for _, name := range ds.Names() {
		existing[name] = true
	}

	ch := make(chan piece, len(vars))
	done := make(chan struct{})
	go func() {
		defer close(done)
		pending := map[int]piece{}
		next := 0
		for pc := range ch {
			pending[pc.idx] = pc
			for {
				cur, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++
				if cur.col != nil {
					if ds.Has(cur.col.Name) {
						cur.res = Result{Name: cur.col.Name, Outcome: SkippedExists}
					} else if err := ds.Add(cur.col); err != nil && cur.err == nil {
						cur.err = err
					}
				}
				out.collect(cur.res, cur.err)
			}
		}
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, v := range vars {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				res := Result{Name: v.Name}
				res.warnf("build canceled: %v; column skipped", err)
				ch <- piece{idx: i, res: res}
				return nil
			}
			if existing[v.Name] {
				ch <- piece{idx: i, res: Result{Name: v.Name, Outcome: SkippedExists}}
				return nil
			}
			child := rand.New(rand.NewSource(childSeed(seed, v.Name)))
			scratch := dataset.New(n)
			res, err := FromMetadata(child, set, v.Name, n, scratch)
			pc := piece{idx: i, res: res, err: err}
			if col, ok := scratch.Get(v.Name); ok {
				pc.col = col
			}
			ch <- pc
			return nil
		})
	}
	_ = g.Wait()
	close(ch)
	<-done
}

// childSeed derives one variable's seed from the build seed. The derivation
// is name-keyed, so adding or removing a variable does not shift any other
// column's draws.
func childSeed(seed int64, name string) int64 {
	return seed ^ int64(xxh3.HashString(name))
}
