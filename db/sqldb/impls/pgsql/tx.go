package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/zeptools/docoverlay/db/sqldb"
)

type Tx struct {
	tx pgx.Tx
}

// Ensure pgsql.Tx implements sqldb.Tx
var _ sqldb.Tx = (*Tx)(nil)

func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *Tx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

func (t *Tx) Exec(ctx context.Context, query string, args ...any) (sqldb.Result, error) {
	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &Result{tag: tag}, nil
}

func (t *Tx) QueryRow(ctx context.Context, query string, args ...any) sqldb.Row {
	return &Row{row: t.tx.QueryRow(ctx, query, args...)}
}

type Row struct {
	row pgx.Row
}

func (r *Row) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return sqldb.ErrNoRows
	}
	return err
}

type Result struct {
	tag pgconn.CommandTag
}

func (r *Result) RowsAffected() (int64, error) {
	return r.tag.RowsAffected(), nil
}
