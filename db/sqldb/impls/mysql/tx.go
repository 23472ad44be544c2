package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/zeptools/docoverlay/db/sqldb"
)

type Tx struct {
	tx *sql.Tx
}

// Ensure mysql.Tx implements sqldb.Tx interface
var _ sqldb.Tx = (*Tx)(nil)

func (t *Tx) Commit(_ context.Context) error {
	return t.tx.Commit()
}

func (t *Tx) Rollback(_ context.Context) error {
	return t.tx.Rollback()
}

func (t *Tx) Exec(ctx context.Context, query string, args ...any) (sqldb.Result, error) {
	result, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &Result{result: result}, nil
}

func (t *Tx) QueryRow(ctx context.Context, query string, args ...any) sqldb.Row {
	return &Row{row: t.tx.QueryRowContext(ctx, query, args...)}
}

// Row maps sql.ErrNoRows to sqldb.ErrNoRows.
type Row struct {
	row *sql.Row
}

func (r *Row) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return sqldb.ErrNoRows
	}
	return err
}
