package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"querymap/internal/config"
	"querymap/internal/mapping"
)

var ErrRowLimit = errors.New("row limit exceeded")

// Executor runs declared queries against a *sql.DB and returns the first
// result set as records. It is the SQL side of intercept.Executor. Queries
// are trusted here; CheckOperations vets them once at registration.
type Executor struct {
	db      *sql.DB
	timeout time.Duration
	maxRows int
}

func NewExecutor(db *sql.DB, q config.QueryConfig) *Executor {
	return &Executor{
		db:      db,
		timeout: q.Timeout,
		maxRows: q.MaxRows,
	}
}

func (e *Executor) QueryRecords(ctx context.Context, query string) ([]mapping.Record, error) {
	if e.db == nil {
		return nil, errors.New("database connection unavailable")
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows, e.maxRows)
}

func (e *Executor) Ping(ctx context.Context) error {
	if e.db == nil {
		return errors.New("database connection unavailable")
	}
	return e.db.PingContext(ctx)
}

// scanRecords reads the current result set only, keyed by the column names
// the driver reports. Byte slices become strings.
func scanRecords(rows *sql.Rows, limit int) ([]mapping.Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	cells := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range cells {
		dest[i] = &cells[i]
	}

	recs := []mapping.Record{}
	for rows.Next() {
		if limit > 0 && len(recs) == limit {
			return nil, ErrRowLimit
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		rec := make(mapping.Record, len(cols))
		for i, col := range cols {
			if b, ok := cells[i].([]byte); ok {
				rec[col] = string(b)
			} else {
				rec[col] = cells[i]
			}
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}
