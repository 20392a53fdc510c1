// Package mysql implements a dataset sink for MySQL and MariaDB via
// database/sql and go-sql-driver. MySQL has no COPY protocol, so rows are
// written as batched multi-row INSERT statements inside one transaction; the
// batch size is tunable through sink options.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"synthgen/internal/dataset"
	"synthgen/internal/ddl"
	"synthgen/internal/sink"

	_ "github.com/go-sql-driver/mysql"
)

// Kind is the registry name of this backend.
const Kind = "mysql"

// defaultBatchSize is the number of rows per INSERT statement. 500 rows of a
// handful of columns stays well under the default max_allowed_packet.
const defaultBatchSize = 500

func init() {
	sink.Register(Kind, func(ctx context.Context, cfg sink.Config) (sink.Writer, error) {
		return New(ctx, cfg)
	})
}

// MapType maps a logical column type into a MySQL column type.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case ddl.TypeInt:
		return "BIGINT"
	case ddl.TypeFloat:
		return "DOUBLE"
	case ddl.TypeDate:
		return "DATE"
	default:
		return "TEXT"
	}
}

// Writer is a MySQL-backed sink.Writer.
type Writer struct {
	db        *sql.DB
	cfg       sink.Config
	batchSize int
}

// New opens a connection pool for the DSN and pings it so bad credentials
// fail at startup rather than mid-run. DSNs use go-sql-driver form, e.g.
//
//	"user:pass@tcp(db.internal:3306)/synth"
func New(ctx context.Context, cfg sink.Config) (*Writer, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("mysql: DSN is required")
	}
	if strings.TrimSpace(cfg.Table) == "" {
		return nil, fmt.Errorf("mysql: table is required")
	}
	batch := cfg.Options.Int("batch_size", defaultBatchSize)
	if batch < 1 {
		return nil, fmt.Errorf("mysql: batch_size must be positive, got %d", batch)
	}

	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}

	return &Writer{db: db, cfg: cfg, batchSize: batch}, nil
}

// Write bootstraps the table when configured and inserts the dataset in
// multi-row batches inside a single transaction.
func (w *Writer) Write(ctx context.Context, ds *dataset.Dataset) (int64, error) {
	if w.cfg.AutoCreateTable {
		if err := w.ensureTable(ctx, ds); err != nil {
			return 0, err
		}
	}

	columns := ds.Names()
	logical := ddl.LogicalTypes(ds)

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mysql: begin tx: %w", err)
	}

	var inserted int64
	for start := 0; start < ds.Rows(); start += w.batchSize {
		end := start + w.batchSize
		if end > ds.Rows() {
			end = ds.Rows()
		}
		stmt, args := buildBatchInsert(w.cfg.Table, columns, logical, ds, start, end)
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			_ = tx.Rollback()
			return inserted, fmt.Errorf("mysql: insert rows %d..%d: %w", start, end-1, err)
		}
		inserted += int64(end - start)
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("mysql: commit: %w", err)
	}
	return inserted, nil
}

func (w *Writer) ensureTable(ctx context.Context, ds *dataset.Dataset) error {
	def, err := ddl.FromDataset(w.cfg.Table, ds, MapType)
	if err != nil {
		return fmt.Errorf("mysql: %w", err)
	}
	def.IfNotExists = true
	stmt, err := ddl.BuildCreateTableSQL(def)
	if err != nil {
		return fmt.Errorf("mysql: %w", err)
	}
	if _, err := w.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("mysql: create table %s: %w", w.cfg.Table, err)
	}
	return nil
}

// Close closes the connection pool.
func (w *Writer) Close() error {
	return w.db.Close()
}

// buildBatchInsert renders one multi-row INSERT for rows [start, end) and
// the flattened bind arguments that go with it.
func buildBatchInsert(table string, columns, logical []string, ds *dataset.Dataset, start, end int) (string, []any) {
	group := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	groups := make([]string, 0, end-start)
	args := make([]any, 0, (end-start)*len(columns))
	for i := start; i < end; i++ {
		groups = append(groups, group)
		for j, v := range ds.Row(i) {
			args = append(args, toSQLValue(logical[j], v))
		}
	}
	stmt := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s",
		table,
		strings.Join(columns, ", "),
		strings.Join(groups, ", "),
	)
	return stmt, args
}

// toSQLValue prepares one cell for binding. Text columns render to their
// canonical string form; ints, floats and dates bind natively; nil stays nil
// and becomes NULL.
func toSQLValue(logical string, v any) any {
	if v == nil {
		return nil
	}
	if logical == ddl.TypeString {
		return dataset.CellString(v)
	}
	return v
}
