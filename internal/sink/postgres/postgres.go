// Package postgres implements a dataset sink backed by PostgreSQL using pgx
// v5. It performs an optional CREATE TABLE bootstrap derived from the dataset
// and then a single COPY into the target table, which is the fastest insert
// path Postgres offers.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"synthgen/internal/dataset"
	"synthgen/internal/ddl"
	"synthgen/internal/sink"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Kind is the registry name of this backend.
const Kind = "postgres"

func init() {
	sink.Register(Kind, func(ctx context.Context, cfg sink.Config) (sink.Writer, error) {
		return New(ctx, cfg)
	})
}

// MapType maps a logical column type into a Postgres SQL type.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case ddl.TypeInt:
		return "BIGINT"
	case ddl.TypeFloat:
		return "DOUBLE PRECISION"
	case ddl.TypeDate:
		return "DATE"
	default:
		return "TEXT"
	}
}

// Writer is a Postgres-backed sink.Writer.
type Writer struct {
	pool *pgxpool.Pool
	cfg  sink.Config
}

// New opens a connection pool for the configured DSN. The pool connects
// lazily; DSN problems beyond parse errors surface on the first Write.
func New(ctx context.Context, cfg sink.Config) (*Writer, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("postgres: DSN is required")
	}
	if strings.TrimSpace(cfg.Table) == "" {
		return nil, fmt.Errorf("postgres: table is required")
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: pgxpool: %w", err)
	}
	return &Writer{pool: pool, cfg: cfg}, nil
}

// Write bootstraps the table when configured and copies every dataset row
// into it. Returns the row count reported by COPY.
func (w *Writer) Write(ctx context.Context, ds *dataset.Dataset) (int64, error) {
	if w.cfg.AutoCreateTable {
		if err := w.ensureTable(ctx, ds); err != nil {
			return 0, err
		}
	}

	logical := ddl.LogicalTypes(ds)
	rows := make([][]any, 0, ds.Rows())
	for i := 0; i < ds.Rows(); i++ {
		row := ds.Row(i)
		for j := range row {
			row[j] = toSQLValue(logical[j], row[j])
		}
		rows = append(rows, row)
	}

	n, err := w.pool.CopyFrom(ctx, splitFQN(w.cfg.Table), ds.Names(), pgx.CopyFromRows(rows))
	if err != nil {
		return n, fmt.Errorf("postgres: copy into %s: %w", w.cfg.Table, err)
	}
	return n, nil
}

func (w *Writer) ensureTable(ctx context.Context, ds *dataset.Dataset) error {
	def, err := ddl.FromDataset(w.cfg.Table, ds, MapType)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	def.IfNotExists = true
	stmt, err := ddl.BuildCreateTableSQL(def)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	if _, err := w.pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("postgres: create table %s: %w", w.cfg.Table, err)
	}
	return nil
}

// Close releases the connection pool.
func (w *Writer) Close() error {
	w.pool.Close()
	return nil
}

// toSQLValue prepares one cell for COPY. Text columns render through the
// canonical cell formatting; typed columns pass through so pgx encodes them
// natively. nil stays nil and becomes NULL.
func toSQLValue(logical string, v any) any {
	if v == nil {
		return nil
	}
	if logical == ddl.TypeString {
		return dataset.CellString(v)
	}
	return v
}

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
// If no dot is present, returns {"table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}
