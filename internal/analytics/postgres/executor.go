package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/analytics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type txStarter interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type ExecutorConfig struct {
	QueryTimeout time.Duration
	MaxRows      int
}

// Executor runs generated queries inside a READ ONLY transaction that is
// always rolled back, so the server rejects any write the text contains.
type Executor struct {
	pool txStarter
	cfg  ExecutorConfig
}

func NewExecutor(pool txStarter, cfg ExecutorConfig) *Executor {
	return &Executor{pool: pool, cfg: cfg}
}

var _ analytics.QueryExecutor = (*Executor)(nil)

func (e *Executor) Execute(ctx context.Context, query string) (*analytics.QueryResult, error) {
	ctx, cancel := internal.WithTimeout(ctx, e.cfg.QueryTimeout)
	defer cancel()

	tx, err := e.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("analytics: begin read-only tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if e.cfg.QueryTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL statement_timeout = %d", e.cfg.QueryTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return nil, fmt.Errorf("analytics: set statement timeout: %w", err)
		}
	}

	rows, err := tx.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("analytics: query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	result := &analytics.QueryResult{Columns: make([]string, len(fields))}
	for i, fd := range fields {
		result.Columns[i] = fd.Name
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("analytics: scan row: %w", err)
		}
		result.Rows = append(result.Rows, normalizeRow(values))
		if e.cfg.MaxRows > 0 && len(result.Rows) >= e.cfg.MaxRows {
			break
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics: read rows: %w", err)
	}

	return result, nil
}

func normalizeRow(values []any) []any {
	row := make([]any, len(values))
	for i, v := range values {
		switch val := v.(type) {
		case nil:
			row[i] = nil
		case []byte:
			row[i] = string(val)
		case time.Time:
			row[i] = val.Format(time.RFC3339Nano)
		case [16]byte:
			row[i] = uuid.UUID(val).String()
		case pgtype.Numeric:
			f, err := val.Float64Value()
			if err != nil || !f.Valid {
				row[i] = nil
			} else {
				row[i] = f.Float64
			}
		default:
			row[i] = val
		}
	}
	return row
}
