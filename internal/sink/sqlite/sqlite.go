// Package sqlite implements a dataset sink backed by SQLite via database/sql
// and the modernc driver (pure Go, no cgo). SQLite has no dedicated bulk-load
// API like Postgres COPY, so rows go through a prepared INSERT inside a single
// transaction, which keeps performance acceptable for generated volumes.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"synthgen/internal/dataset"
	"synthgen/internal/ddl"
	"synthgen/internal/sink"

	_ "modernc.org/sqlite"
)

// Kind is the registry name of this backend.
const Kind = "sqlite"

func init() {
	sink.Register(Kind, func(ctx context.Context, cfg sink.Config) (sink.Writer, error) {
		return New(ctx, cfg)
	})
}

// MapType maps a logical column type into a SQLite column type. SQLite is
// dynamically typed, so the mapping prefers canonical affinities; dates are
// stored as ISO-8601 TEXT.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case ddl.TypeInt:
		return "INTEGER"
	case ddl.TypeFloat:
		return "REAL"
	case ddl.TypeDate:
		return "TEXT"
	default:
		return "TEXT"
	}
}

// Writer is a SQLite-backed sink.Writer.
type Writer struct {
	db  *sql.DB
	cfg sink.Config
}

// New opens the SQLite database named by the DSN and pings it so invalid
// paths fail fast. DSNs pass straight to database/sql, e.g.
//
//	"file:synth.db?cache=shared"
//	"synth.db"
func New(ctx context.Context, cfg sink.Config) (*Writer, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlite: DSN is required")
	}
	if strings.TrimSpace(cfg.Table) == "" {
		return nil, fmt.Errorf("sqlite: table is required")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	return &Writer{db: db, cfg: cfg}, nil
}

// Write bootstraps the table when configured and inserts every dataset row
// through one prepared statement in one transaction.
func (w *Writer) Write(ctx context.Context, ds *dataset.Dataset) (int64, error) {
	if w.cfg.AutoCreateTable {
		if err := w.ensureTable(ctx, ds); err != nil {
			return 0, err
		}
	}

	columns := ds.Names()
	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		w.cfg.Table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	logical := ddl.LogicalTypes(ds)
	var inserted int64
	for i := 0; i < ds.Rows(); i++ {
		row := ds.Row(i)
		for j := range row {
			row[j] = toSQLValue(logical[j], row[j])
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return inserted, fmt.Errorf("sqlite: insert row %d: %w", i, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

func (w *Writer) ensureTable(ctx context.Context, ds *dataset.Dataset) error {
	def, err := ddl.FromDataset(w.cfg.Table, ds, MapType)
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	def.IfNotExists = true
	stmt, err := ddl.BuildCreateTableSQL(def)
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	if _, err := w.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("sqlite: create table %s: %w", w.cfg.Table, err)
	}
	return nil
}

// Close closes the database handle.
func (w *Writer) Close() error {
	return w.db.Close()
}

// toSQLValue prepares one cell for binding. Dates and text columns render to
// their canonical string form (SQLite stores dates as TEXT); ints and floats
// bind natively; nil stays nil and becomes NULL.
func toSQLValue(logical string, v any) any {
	if v == nil {
		return nil
	}
	switch logical {
	case ddl.TypeDate, ddl.TypeString:
		return dataset.CellString(v)
	}
	return v
}
