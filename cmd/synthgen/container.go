// Package main wires one generation run end-to-end: build the dataset from
// the metadata set, aggregate per-column results and warnings, then hand the
// dataset to the configured sink. This file keeps the CLI layer thin: it
// depends only on the sink abstraction and never imports database drivers or
// backend-specific packages directly.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"synthgen/internal/config"
	"synthgen/internal/dataset"
	"synthgen/internal/generate"
	"synthgen/internal/metadata"
	"synthgen/internal/metrics"
	"synthgen/internal/sink"
)

// counters holds run statistics. All fields are updated atomically; use the
// helper methods when possible instead of manipulating counters directly.
type counters struct {
	built        atomic.Int64 // columns added to the dataset
	skipped      atomic.Int64 // columns skipped (derived, duplicate, unknown)
	valid        atomic.Int64 // cells drawn from the valid population
	missing      atomic.Int64 // cells assigned a missing code
	contaminated atomic.Int64 // cells overwritten by contamination rules
	shortfall    atomic.Int64 // contamination rows requested beyond supply
	written      atomic.Int64 // rows written to the sink
}

// runtimeConfig contains the resolved concurrency and warning configuration
// for a run. Values are derived from the run config with optional environment
// variable overrides (12-factor style).
type runtimeConfig struct {
	workers    int
	warningCap int
}

// Function variables used to introduce test seams.
// In production these point to real implementations; tests can override them.
var (
	newWriterFn = func(ctx context.Context, cfg sink.Config) (sink.Writer, error) {
		return sink.New(ctx, cfg)
	}

	buildFn = generate.Build
)

// run executes a full metadata → dataset → sink pass.
//
// Per-variable problems never abort the run; they surface as warnings, capped
// at runtime.warning_cap verbatim messages. Only an invalid row count, a sink
// that cannot be opened, or a failed write is fatal. The dataset fingerprint
// is always logged so reruns with one seed can be compared at a glance.
func run(ctx context.Context, cfg config.Config, set *metadata.Set, jobName string) error {
	rt := newRuntimeConfig(cfg)
	runID := uuid.NewString()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
		log.Printf("seed: none configured; using clock seed %d", seed)
	}

	log.Printf("run %s: job=%s variables=%d rows=%d workers=%d warning_cap=%d",
		runID, jobName, len(set.Variables), cfg.Rows, rt.workers, rt.warningCap)

	var stats counters
	warnings := newWarnAgg(rt.warningCap)
	start := time.Now()

	res, err := buildFn(ctx, seed, set, cfg.Rows, generate.Options{Workers: rt.workers})
	metrics.RecordStep(jobName, "build", err, time.Since(start))
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}

	outcomes := map[string]int64{}
	for _, r := range res.Results {
		outcomes[r.Outcome.String()]++
		if r.Outcome == generate.Built {
			stats.built.Add(1)
		} else {
			stats.skipped.Add(1)
		}
		stats.valid.Add(int64(r.Valid))
		stats.missing.Add(int64(r.Missing))
		stats.contaminated.Add(int64(r.Contaminated))
		stats.shortfall.Add(int64(r.Shortfall))
	}
	for outcome, cols := range outcomes {
		metrics.RecordColumns(jobName, outcome, cols)
	}
	metrics.RecordCells(jobName, "valid", stats.valid.Load())
	metrics.RecordCells(jobName, "missing", stats.missing.Load())
	metrics.RecordCells(jobName, "contaminated", stats.contaminated.Load())
	metrics.RecordCells(jobName, "shortfall", stats.shortfall.Load())

	for _, w := range res.Warnings {
		warnings.add(w)
	}
	warnings.logSummary()

	log.Printf("dataset: rows=%d columns=%d fingerprint=%016x",
		res.Dataset.Rows(), res.Dataset.Len(), dataset.Fingerprint(res.Dataset))

	if cfg.Sink.Kind == "" {
		log.Printf("sink: none configured; dataset not written")
		logGlobalSummary(&stats, time.Since(start))
		return nil
	}

	w, err := newWriterFn(ctx, sinkConfig(cfg.Sink))
	if err != nil {
		return fmt.Errorf("init sink: %w", err)
	}
	defer w.Close()

	writeStart := time.Now()
	n, err := w.Write(ctx, res.Dataset)
	metrics.RecordStep(jobName, "write", err, time.Since(writeStart))
	if err != nil {
		return fmt.Errorf("sink %s: %w", cfg.Sink.Kind, err)
	}
	stats.written.Add(n)
	metrics.RecordRows(jobName, n)

	elapsed := time.Since(writeStart)
	var rate int64
	if secs := elapsed.Seconds(); secs > 0 {
		rate = int64(float64(n) / secs)
	}
	log.Printf("sink: wrote %s rows to %s in %s (%s rows/s)",
		humanize.Comma(n), cfg.Sink.Kind, elapsed.Truncate(time.Millisecond), humanize.Comma(rate))

	logGlobalSummary(&stats, time.Since(start))
	return nil
}

// newRuntimeConfig resolves the runtime configuration for a run using the
// run config and environment-variable fallbacks.
func newRuntimeConfig(cfg config.Config) runtimeConfig {
	return runtimeConfig{
		workers:    pickInt(cfg.Runtime.Workers, getenvInt("SYNTHGEN_WORKERS", 1)),
		warningCap: pickInt(cfg.Runtime.WarningCap, getenvInt("SYNTHGEN_WARNING_CAP", 5)),
	}
}

// sinkConfig maps the run-file sink section onto the sink factory config.
func sinkConfig(s config.Sink) sink.Config {
	return sink.Config{
		Kind:            s.Kind,
		Path:            s.Path,
		DSN:             s.DSN,
		Table:           s.Table,
		AutoCreateTable: s.AutoCreateTable,
		Options:         s.Options,
	}
}

// logGlobalSummary prints final aggregated statistics for the run.
//
// Conservation invariant for built columns:
//
//	cells_valid + cells_missing == rows × columns_built
//
// Contaminated cells overwrite valid ones in place, so they are a subset of
// cells_valid, not an addition to the total.
func logGlobalSummary(c *counters, elapsed time.Duration) {
	log.Printf(
		"summary: columns_built=%d columns_skipped=%d cells_valid=%s cells_missing=%s cells_contaminated=%s contamination_shortfall=%d rows_written=%s elapsed=%s",
		c.built.Load(),
		c.skipped.Load(),
		humanize.Comma(c.valid.Load()),
		humanize.Comma(c.missing.Load()),
		humanize.Comma(c.contaminated.Load()),
		c.shortfall.Load(),
		humanize.Comma(c.written.Load()),
		elapsed.Truncate(time.Millisecond),
	)
}

// ----------------------------------------------------------------------------
// Small helpers
// ----------------------------------------------------------------------------

// getenvInt reads an int from environment, returning def when unset/invalid.
func getenvInt(k string, def int) int {
	if s := os.Getenv(k); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}

// pickInt chooses the first positive value 'a', otherwise returns 'b'.
func pickInt(a, b int) int {
	if a > 0 {
		return a
	}
	return b
}

// warnAgg aggregates warnings, keeping the first limit messages verbatim and
// counting the rest.
type warnAgg struct {
	mu    sync.Mutex
	limit int
	count int
	first []string
}

func newWarnAgg(limit int) *warnAgg {
	return &warnAgg{limit: limit}
}

func (a *warnAgg) add(msg string) {
	a.mu.Lock()
	if a.count < a.limit {
		a.first = append(a.first, msg)
	}
	a.count++
	a.mu.Unlock()
}

// logSummary prints the aggregated warnings. Only the first limit messages
// are shown.
func (a *warnAgg) logSummary() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.count == 0 {
		return
	}
	log.Printf("warnings: %d (showing first %d)", a.count, len(a.first))
	for i, s := range a.first {
		log.Printf("  #%03d: %s", i+1, s)
	}
}
