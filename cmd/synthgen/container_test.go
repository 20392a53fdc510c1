package main

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"synthgen/internal/config"
	"synthgen/internal/dataset"
	"synthgen/internal/metadata"
	"synthgen/internal/sink"
)

/*
Unit tests for the pure helpers and the run orchestration in container.go.

We cover:
  - getenvInt / pickInt: env parsing and defaulting
  - warnAgg: capped aggregation semantics (limit, first N, total count)
  - sinkConfig: run-file sink section → sink factory config mapping
  - applyOverrides / reportIssues: flag and env folding, strict mode
  - run: fake-writer seam (happy path, no sink, init failure, write failure)

The real sink backends are covered by their own package tests and by the
end-to-end tests in container_e2e_test.go.
*/

// testSet is a two-variable metadata set small enough for fast runs.
func testSet() *metadata.Set {
	return metadata.NewSet(
		[]metadata.VariableSpec{
			{Name: "sex", Type: "categorical", Repr: "int"},
			{Name: "bmi", Type: "continuous", Repr: "float", Range: "[12,60]"},
		},
		[]metadata.DetailRow{
			{Variable: "sex", Code: "1", Value: "male", Proportion: 0.5, HasProp: true},
			{Variable: "sex", Code: "2", Value: "female", Proportion: 0.5, HasProp: true},
		},
	)
}

type fakeWriter struct {
	rows     int
	writes   int
	closed   bool
	writeErr error
}

func (f *fakeWriter) Write(_ context.Context, ds *dataset.Dataset) (int64, error) {
	f.writes++
	f.rows = ds.Rows()
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return int64(ds.Rows()), nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestGetenvIntAndPickInt(t *testing.T) {
	_ = os.Unsetenv("SYNTHGEN_TEST_INT")
	if v := getenvInt("SYNTHGEN_TEST_INT", 7); v != 7 {
		t.Fatalf("getenvInt unset = %d, want 7", v)
	}
	t.Setenv("SYNTHGEN_TEST_INT", "42")
	if v := getenvInt("SYNTHGEN_TEST_INT", 7); v != 42 {
		t.Fatalf("getenvInt set = %d, want 42", v)
	}
	if v := pickInt(5, 9); v != 5 {
		t.Fatalf("pickInt(5,9) = %d, want 5", v)
	}
	if v := pickInt(0, 9); v != 9 {
		t.Fatalf("pickInt(0,9) = %d, want 9", v)
	}
}

func TestWarnAgg(t *testing.T) {
	t.Parallel()

	agg := newWarnAgg(2)
	for _, msg := range []string{"a", "b", "c", "d", "e"} {
		agg.add(msg)
	}
	if agg.count != 5 {
		t.Fatalf("count = %d, want 5", agg.count)
	}
	if len(agg.first) != 2 || agg.first[0] != "a" || agg.first[1] != "b" {
		t.Fatalf("first = %v, want [a b]", agg.first)
	}
}

func TestSinkConfig(t *testing.T) {
	t.Parallel()

	in := config.Sink{
		Kind:            "sqlite",
		Path:            "ignored.csv",
		DSN:             "synth.db",
		Table:           "people",
		AutoCreateTable: true,
		Options:         config.Options{"batch_size": float64(100)},
	}
	got := sinkConfig(in)
	if got.Kind != "sqlite" || got.DSN != "synth.db" || got.Table != "people" ||
		got.Path != "ignored.csv" || !got.AutoCreateTable {
		t.Fatalf("sinkConfig mapped %+v to %+v", in, got)
	}
	if got.Options.Int("batch_size", 0) != 100 {
		t.Fatalf("options not carried through: %+v", got.Options)
	}
}

func TestApplyOverrides(t *testing.T) {
	t.Setenv("SYNTHGEN_DSN", "postgres://env/dsn")

	cfg := config.Config{Scope: "study1", Rows: 100, Seed: 1}
	applyOverrides(&cfg, "study2", 500, 9, "out.csv", 4)

	if cfg.Scope != "study2" || cfg.Rows != 500 || cfg.Seed != 9 || cfg.Runtime.Workers != 4 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Sink.Kind != "csvfile" || cfg.Sink.Path != "out.csv" {
		t.Fatalf("-out did not force the csvfile sink: %+v", cfg.Sink)
	}
	if cfg.Sink.DSN != "postgres://env/dsn" {
		t.Fatalf("env DSN fallback not applied: %q", cfg.Sink.DSN)
	}

	// Zero-valued flags keep the config values, and an existing sink kind and
	// DSN are preserved.
	cfg = config.Config{
		Scope: "study1", Rows: 100, Seed: 1,
		Sink: config.Sink{Kind: "postgres", DSN: "postgres://file/dsn"},
	}
	applyOverrides(&cfg, "", 0, 0, "other.csv", 0)
	if cfg.Scope != "study1" || cfg.Rows != 100 || cfg.Seed != 1 {
		t.Fatalf("zero flags overwrote config: %+v", cfg)
	}
	if cfg.Sink.Kind != "postgres" || cfg.Sink.DSN != "postgres://file/dsn" {
		t.Fatalf("existing sink settings overwritten: %+v", cfg.Sink)
	}
	if cfg.Sink.Path != "other.csv" {
		t.Fatalf("out path not applied: %q", cfg.Sink.Path)
	}
}

func TestReportIssues(t *testing.T) {
	t.Parallel()

	warn := []config.Issue{{Severity: config.SeverityWarning, Path: "seed", Message: "w"}}
	errs := []config.Issue{{Severity: config.SeverityError, Path: "rows", Message: "e"}}

	if reportIssues(nil, false) {
		t.Fatal("no issues reported as fatal")
	}
	if reportIssues(warn, false) {
		t.Fatal("warning reported as fatal without strict")
	}
	if !reportIssues(warn, true) {
		t.Fatal("warning not fatal in strict mode")
	}
	if !reportIssues(errs, false) {
		t.Fatal("error not fatal")
	}
}

func TestRunWithFakeWriter(t *testing.T) {
	fake := &fakeWriter{}
	orig := newWriterFn
	newWriterFn = func(_ context.Context, cfg sink.Config) (sink.Writer, error) {
		if cfg.Kind != "fake" {
			t.Errorf("writer kind = %q; want fake", cfg.Kind)
		}
		return fake, nil
	}
	defer func() { newWriterFn = orig }()

	cfg := config.Config{Rows: 50, Seed: 3, Sink: config.Sink{Kind: "fake"}}
	if err := run(context.Background(), cfg, testSet(), "testjob"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if fake.writes != 1 || fake.rows != 50 {
		t.Fatalf("writer saw writes=%d rows=%d; want one write of 50 rows", fake.writes, fake.rows)
	}
	if !fake.closed {
		t.Fatal("writer was not closed")
	}
}

func TestRunNoSink(t *testing.T) {
	orig := newWriterFn
	newWriterFn = func(_ context.Context, cfg sink.Config) (sink.Writer, error) {
		t.Errorf("writer constructed for empty sink kind: %+v", cfg)
		return nil, errors.New("unreachable")
	}
	defer func() { newWriterFn = orig }()

	cfg := config.Config{Rows: 20, Seed: 3}
	if err := run(context.Background(), cfg, testSet(), "testjob"); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRunBuildError(t *testing.T) {
	t.Parallel()

	cfg := config.Config{Rows: 0, Seed: 3}
	if err := run(context.Background(), cfg, testSet(), "testjob"); err == nil {
		t.Fatal("run with zero rows: got nil error")
	}
}

func TestRunSinkErrors(t *testing.T) {
	orig := newWriterFn
	defer func() { newWriterFn = orig }()

	newWriterFn = func(_ context.Context, _ sink.Config) (sink.Writer, error) {
		return nil, errors.New("boom")
	}
	cfg := config.Config{Rows: 20, Seed: 3, Sink: config.Sink{Kind: "fake"}}
	err := run(context.Background(), cfg, testSet(), "testjob")
	if err == nil || !strings.Contains(err.Error(), "init sink") {
		t.Fatalf("init failure not surfaced: %v", err)
	}

	fake := &fakeWriter{writeErr: errors.New("disk full")}
	newWriterFn = func(_ context.Context, _ sink.Config) (sink.Writer, error) {
		return fake, nil
	}
	err = run(context.Background(), cfg, testSet(), "testjob")
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("write failure not surfaced: %v", err)
	}
	if !fake.closed {
		t.Fatal("writer not closed after write failure")
	}
}
