// Package sink contains the backend-agnostic contract for dataset output.
//
// A Writer persists one finished dataset: a CSV file, a database table, or
// anything else a backend package implements. Concrete backends live in
// subpackages and register themselves with this package's factory at init
// time; importing sink/all (even blankly) makes every built-in kind available
// without coupling callers to specific backends.
package sink

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"synthgen/internal/config"
	"synthgen/internal/dataset"
)

// Config carries everything a backend needs to open its destination. Fields
// are a union across backends; each kind documents which ones it reads.
type Config struct {
	// Kind selects the registered backend, e.g. "csvfile" or "postgres".
	Kind string

	// Path is the destination file for file-based sinks.
	Path string

	// DSN, Table configure database sinks.
	DSN   string
	Table string

	// AutoCreateTable asks a database sink to issue the bootstrap DDL derived
	// from the dataset before writing.
	AutoCreateTable bool

	// Options carries backend-specific settings (batch sizes, delimiters).
	Options config.Options
}

// Writer persists a dataset. Write reports the number of rows written; a
// partial write returns the count alongside the error.
type Writer interface {
	Write(ctx context.Context, ds *dataset.Dataset) (int64, error)
	Close() error
}

// Factory constructs a Writer for one Config.
type Factory func(ctx context.Context, cfg Config) (Writer, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for a sink kind. It is
// typically called from backend packages' init() functions.
func Register(kind string, fn Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = fn
}

// New opens a Writer for cfg.Kind. Unregistered kinds return an error naming
// the kind so misconfiguration is obvious.
func New(ctx context.Context, cfg Config) (Writer, error) {
	regMu.RLock()
	fn, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported sink.kind=%s", cfg.Kind)
	}
	return fn(ctx, cfg)
}

// ListKinds returns a sorted snapshot of the registered sink kinds.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
