// Package config defines the canonical, JSON-serializable configuration model
// for a generator run. It is intentionally small, explicit, and dependency-
// free so that run files can be loaded from disk (or other sources) and passed
// through the program without additional glue code.
//
// Design goals:
//
//  1. Stability: Changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: Field names in Go mirror the JSON structure used in run files
//     under configs/*.json.
//  3. Minimalism: No third-party config libraries; decoding is performed by the
//     standard library, with a light Options helper for typed access.
//
// Example (trimmed):
//
//	{
//	  "job":   "demo",
//	  "scope": "study1",
//	  "rows":  5000,
//	  "seed":  42,
//	  "metadata": { "kind": "csv", "variables": "vars.csv", "details": "details.csv" },
//	  "sink":     { "kind": "csvfile", "path": "out.csv" }
//	}
package config

import "encoding/json"

// Config describes one generator run. It is the top-level object decoded
// from a run file.
type Config struct {
	// Job names the run for logs and metrics grouping. Optional; the CLI
	// substitutes a generated identifier when empty.
	Job string `json:"job"`

	// Scope selects which scope qualified variable names resolve against.
	// Empty means bare names only.
	Scope string `json:"scope"`

	// Rows is the number of synthetic individuals to generate. Must be
	// positive.
	Rows int `json:"rows"`

	// Seed drives every draw of the run. Zero means "seed from the clock",
	// which makes the run non-reproducible; validation warns about it.
	Seed int64 `json:"seed"`

	// Metadata locates the variables and variable-details tables.
	Metadata Metadata `json:"metadata"`

	// Sink describes where the finished dataset is written.
	Sink Sink `json:"sink"`

	Runtime RuntimeConfig `json:"runtime"`
}

// RuntimeConfig controls parallelism and warning aggregation.
type RuntimeConfig struct {
	// Workers is the number of parallel column workers; 0 or 1 runs the
	// sequential builder.
	Workers int `json:"workers"`

	// WarningCap limits how many warnings are kept verbatim before the rest
	// are only counted.
	WarningCap int `json:"warning_cap"`
}

// Metadata locates the metadata tables on disk.
type Metadata struct {
	// Kind selects the intake format: "csv" (two files) or "json" (one
	// document with both arrays).
	Kind string `json:"kind"`

	// Variables and Details are the two CSV paths for kind "csv".
	Variables string `json:"variables"`
	Details   string `json:"details"`

	// Path is the document path for kind "json".
	Path string `json:"path"`

	// Options carries intake-specific settings. For CSV, typical keys:
	//   comma (string, single character), header_map (object of old→new names)
	Options Options `json:"options"`
}

// Sink selects where the dataset is persisted.
type Sink struct {
	// Kind selects the writer implementation: "csvfile", "postgres",
	// "sqlite", "mysql", "mssql". Empty means generate only (no output,
	// useful with -validate or for fingerprint checks).
	Kind string `json:"kind"`

	// Path is the target file for the "csvfile" kind.
	Path string `json:"path"`

	// DSN is the connection string for the SQL kinds.
	DSN string `json:"dsn"`

	// Table is the target table name for the SQL kinds.
	Table string `json:"table"`

	// AutoCreateTable makes SQL sinks create the target table from the
	// dataset's column types before writing.
	AutoCreateTable bool `json:"auto_create_table"`

	// Options carries sink-specific settings. For csvfile, typical keys:
	//   header (bool), comma (string, single character)
	Options Options `json:"options"`
}

// Options is a small helper to fetch typed values from arbitrary JSON maps
// without introducing third-party configuration libraries. It purposefully
// performs only minimal type coercion and returns provided defaults when a key
// is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers are decoded as
// float64 by encoding/json, so this method accepts float64 and casts to int.
// If the value is neither float64 nor int, def is returned.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. This is useful for single-character settings such as a
// CSV delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// whose values are strings. Non-string values are ignored. Returns an empty map
// when the key is missing or the value is not an object.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// UnmarshalJSON implements json.Unmarshaler so that a missing or null "options"
// object in JSON decodes to a non-nil, empty Options map. This simplifies call
// sites by removing the need to nil-check Options values.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
