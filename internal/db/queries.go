package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Run struct {
	ID         int64
	Storefront string
	UpdatedAt  string
	Active     bool
	ItemCount  int64
	Error      string
	Payload    string
}

const createRun = `INSERT INTO runs (storefront, updated_at, active, item_count, error, payload)
VALUES (?, ?, ?, ?, ?, ?)`

type CreateRunParams struct {
	Storefront string
	UpdatedAt  string
	Active     bool
	ItemCount  int64
	Error      string
	Payload    string
}

func (q *Queries) CreateRun(ctx context.Context, arg CreateRunParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createRun,
		arg.Storefront,
		arg.UpdatedAt,
		arg.Active,
		arg.ItemCount,
		arg.Error,
		arg.Payload,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const listRuns = `SELECT id, storefront, updated_at, active, item_count, error, payload
FROM runs
WHERE (?1 = '' OR storefront = ?1)
ORDER BY id DESC
LIMIT ?2`

type ListRunsParams struct {
	// Storefront filters runs to a single storefront, empty lists every storefront.
	Storefront string
	Limit      int64
}

func (q *Queries) ListRuns(ctx context.Context, arg ListRunsParams) ([]Run, error) {
	rows, err := q.db.QueryContext(ctx, listRuns, arg.Storefront, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Run
	for rows.Next() {
		var i Run
		err := rows.Scan(
			&i.ID,
			&i.Storefront,
			&i.UpdatedAt,
			&i.Active,
			&i.ItemCount,
			&i.Error,
			&i.Payload,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const pruneRuns = `DELETE FROM runs
WHERE storefront = ?1
AND id NOT IN (
    SELECT id FROM runs WHERE storefront = ?1 ORDER BY id DESC LIMIT ?2
)`

type PruneRunsParams struct {
	Storefront string
	Keep       int64
}

func (q *Queries) PruneRuns(ctx context.Context, arg PruneRunsParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, pruneRuns, arg.Storefront, arg.Keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
