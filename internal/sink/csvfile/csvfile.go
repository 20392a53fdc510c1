// Package csvfile implements a file-based sink: the dataset is written as a
// delimited text file with a header row. It is the default output for local
// runs and the only sink with no external service behind it.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"synthgen/internal/dataset"
	"synthgen/internal/sink"
)

// Kind is the registry name of this backend.
const Kind = "csvfile"

func init() {
	sink.Register(Kind, func(ctx context.Context, cfg sink.Config) (sink.Writer, error) {
		return New(cfg)
	})
}

// Writer writes datasets to one CSV file per Write call.
type Writer struct {
	path   string
	comma  rune
	header bool
}

// New validates the configuration and returns a Writer. Recognized options:
// "comma" (single-character delimiter, default ',') and "header" (emit the
// column-name row, default true).
func New(cfg sink.Config) (*Writer, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("csvfile: path is required")
	}
	return &Writer{
		path:   cfg.Path,
		comma:  cfg.Options.Rune("comma", ','),
		header: cfg.Options.Bool("header", true),
	}, nil
}

// Write creates (or truncates) the target file and writes the header plus one
// record per dataset row. Cells render in their canonical text form: dates as
// ISO days, floats in shortest round-trip notation, missing cells empty.
func (w *Writer) Write(ctx context.Context, ds *dataset.Dataset) (int64, error) {
	f, err := os.Create(w.path)
	if err != nil {
		return 0, fmt.Errorf("csvfile: create %s: %w", w.path, err)
	}

	cw := csv.NewWriter(f)
	cw.Comma = w.comma

	if w.header {
		if err := cw.Write(ds.Names()); err != nil {
			f.Close()
			return 0, fmt.Errorf("csvfile: write header: %w", err)
		}
	}

	var written int64
	record := make([]string, ds.Len())
	for i := 0; i < ds.Rows(); i++ {
		// Check for cancellation between rows, not per cell.
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				f.Close()
				return written, err
			}
		}
		for j, cell := range ds.Row(i) {
			record[j] = dataset.CellString(cell)
		}
		if err := cw.Write(record); err != nil {
			f.Close()
			return written, fmt.Errorf("csvfile: write row %d: %w", i, err)
		}
		written++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return written, fmt.Errorf("csvfile: flush: %w", err)
	}
	if err := f.Close(); err != nil {
		return written, fmt.Errorf("csvfile: close %s: %w", w.path, err)
	}
	return written, nil
}

// Close is a no-op; each Write owns its file handle.
func (w *Writer) Close() error { return nil }
