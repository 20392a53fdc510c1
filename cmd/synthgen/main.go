package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"synthgen/internal/config"
	"synthgen/internal/metadata"
	"synthgen/internal/metrics"
	"synthgen/internal/metrics/datadog"
	"synthgen/internal/metrics/prompush"

	// register all backends with the sink factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "synthgen/internal/sink/all"
)

// main is the entry point for the generator binary. It loads the run config,
// lints it together with the metadata tables, optionally initializes a
// metrics backend, and executes the run.
func main() {
	var (
		cfgPath           string
		scopeFlg          string
		rowsFlg           int
		seedFlg           int64
		outFlg            string
		workersFlg        int
		metricsBackendFlg string
		pushGatewayURLFlg string
		validate          bool
		strict            bool
	)

	flag.StringVar(&cfgPath, "config", "configs/sample.json", "run config JSON path")
	flag.StringVar(&scopeFlg, "scope", "", "scope override (empty keeps the config value)")
	flag.IntVar(&rowsFlg, "rows", 0, "row count override (0 keeps the config value)")
	flag.Int64Var(&seedFlg, "seed", 0, "seed override (0 keeps the config value)")
	flag.StringVar(&outFlg, "out", "", "CSV output path override; forces the csvfile sink when no sink kind is set")
	flag.IntVar(&workersFlg, "workers", 0, "parallel column workers override (0 keeps the config value)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (pushgateway, datadog, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and metadata, then exit")
	flag.BoolVar(&strict, "strict", false, "treat validation warnings as errors")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	// Best-effort .env loading so DSNs and metrics settings can live outside
	// the run file.
	_ = godotenv.Load()

	f, err := os.Open(cfgPath)
	if err != nil {
		fatalf("open config: %v", err)
	}
	defer f.Close()

	var cfg config.Config
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		fatalf("decode config: %v", err)
	}
	applyOverrides(&cfg, scopeFlg, rowsFlg, seedFlg, outFlg, workersFlg)

	// Validate run config.
	if reportIssues(config.Validate(cfg), strict) {
		log.Printf("configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}

	set, err := metadata.Load(cfg.Metadata)
	if err != nil {
		fatalf("load metadata: %v", err)
	}
	scoped, scopeIssues := metadata.ForScope(set, cfg.Scope)
	hasError := reportIssues(scopeIssues, strict)
	if reportIssues(metadata.Validate(scoped), strict) {
		hasError = true
	}
	if hasError {
		log.Printf("metadata is invalid: %v", cfgPath)
		os.Exit(1)
	}

	// If validate flag is set, only validate and exit
	if validate {
		log.Printf("configuration and metadata are valid: %v", cfgPath)
		os.Exit(0)
	}

	// Decide metrics backend: flag → env → default.
	backendName := metricsBackendFlg
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	jobName := cfg.Job
	if jobName == "" {
		jobName = "synthgen"
	}
	switch backendName {
	case "pushgateway":
		// Decide Pushgateway URL: flag → env → default.
		gwURL := pushGatewayURLFlg
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}

		b, err := prompush.NewBackend(jobName, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
		} else {
			log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, jobName)
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
		}

	case "datadog":
		addr := os.Getenv("DD_AGENT_ADDR")
		if addr == "" {
			addr = "127.0.0.1:8125"
		}
		b, err := datadog.NewBackend(datadog.Config{Addr: addr, Namespace: "synthgen."})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
		} else {
			log.Printf("metrics: addr=%v, backend=%v, job_name=%v", addr, backendName, jobName)
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
		}

	case "", "none":
		// metrics disabled; nop backend remains
		if *verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	ctx := context.Background()
	start := time.Now()

	if *verbose {
		log.Printf("run: scope=%q rows=%d seed=%d sink=%s workers=%d",
			cfg.Scope, cfg.Rows, cfg.Seed, cfg.Sink.Kind, cfg.Runtime.Workers)
	}

	if err := run(ctx, cfg, scoped, jobName); err != nil {
		log.Fatalf("%v", err)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// applyOverrides folds non-zero flag values into the loaded config and fills
// the sink DSN from the environment when the run file leaves it empty.
func applyOverrides(cfg *config.Config, scope string, rows int, seed int64, out string, workers int) {
	if scope != "" {
		cfg.Scope = scope
	}
	if rows > 0 {
		cfg.Rows = rows
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if workers > 0 {
		cfg.Runtime.Workers = workers
	}
	if out != "" {
		cfg.Sink.Path = out
		if cfg.Sink.Kind == "" {
			cfg.Sink.Kind = "csvfile"
		}
	}
	if cfg.Sink.DSN == "" {
		cfg.Sink.DSN = os.Getenv("SYNTHGEN_DSN")
	}
}

// reportIssues prints every issue to stderr and reports whether any of them
// should stop the run. Warnings stop the run only in strict mode.
func reportIssues(issues []config.Issue, strict bool) bool {
	fatal := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError || strict {
			fatal = true
		}
	}
	return fatal
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
