// Package config provides configuration models and helpers for generator runs.
//
// This file adds a lightweight linter/validator for Config values. It
// performs static checks over a decoded Config and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding.
//
// Path is a dotted path into the config (e.g. "sink.kind",
// "metadata.variables"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue carries SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate performs static validation / linting of a Config.
//
// It does not mutate the config. Instead it returns a slice of Issue values.
// Callers may decide whether to treat warnings as fatal or not.
func Validate(c Config) []Issue {
	var issues []Issue

	if c.Rows <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "rows",
			Message:  fmt.Sprintf("rows=%d; the row count must be positive", c.Rows),
		})
	}
	if c.Seed == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "seed",
			Message:  "seed=0 seeds from the clock; the run will not be reproducible",
		})
	}
	issues = append(issues, validateMetadata(c.Metadata)...)
	issues = append(issues, validateSink(c.Sink)...)
	issues = append(issues, validateRuntime(c.Runtime)...)

	return issues
}

// validateMetadata validates the metadata intake settings.
func validateMetadata(m Metadata) []Issue {
	var issues []Issue

	if strings.TrimSpace(m.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metadata.kind",
			Message:  "metadata.kind must not be empty",
		})
		return issues
	}

	switch m.Kind {
	case "csv":
		if strings.TrimSpace(m.Variables) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metadata.variables",
				Message:  "csv metadata requires a non-empty variables path",
			})
		}
		if strings.TrimSpace(m.Details) == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "metadata.details",
				Message:  "no details path; every variable falls back to its default population",
			})
		}
	case "json":
		if strings.TrimSpace(m.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metadata.path",
				Message:  "json metadata requires a non-empty document path",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metadata.kind",
			Message:  fmt.Sprintf("unknown metadata kind %q; want csv or json", m.Kind),
		})
	}

	return issues
}

// validateSink validates sink configuration. An empty kind is legal: the run
// generates and fingerprints without writing anywhere.
func validateSink(s Sink) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		return issues
	}

	known := map[string]struct{}{
		"csvfile":  {},
		"postgres": {},
		"mysql":    {},
		"mssql":    {},
		"sqlite":   {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "sink.kind",
			Message:  fmt.Sprintf("unknown sink kind %q; ensure a matching writer is registered", s.Kind),
		})
	}

	switch s.Kind {
	case "csvfile":
		if strings.TrimSpace(s.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "sink.path",
				Message:  "csvfile sink requires a non-empty path",
			})
		}
	case "postgres", "mysql", "mssql", "sqlite":
		if strings.TrimSpace(s.DSN) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "sink.dsn",
				Message:  "sql sink requires a non-empty dsn (or SYNTHGEN_DSN in the environment)",
			})
		}
		if strings.TrimSpace(s.Table) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "sink.table",
				Message:  "sql sink requires a non-empty table",
			})
		}
	}

	return issues
}

// validateRuntime validates RuntimeConfig for obvious misconfigurations.
func validateRuntime(r RuntimeConfig) []Issue {
	var issues []Issue

	if r.Workers < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.workers",
			Message:  "workers must not be negative",
		})
	}
	if r.WarningCap < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.warning_cap",
			Message:  "warning_cap must not be negative",
		})
	}

	return issues
}
