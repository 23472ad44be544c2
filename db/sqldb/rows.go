package sqldb

import "errors"

type Row interface {
	Scan(dest ...any) error
}

type Result interface {
	RowsAffected() (int64, error)
}

// ErrNoRows is returned by Row.Scan when the query selected nothing, whatever the driver.
var ErrNoRows = errors.New("sqldb: no rows in result set")
