// Package sqlstore persists reference counters as rows of a SQL table.
package sqlstore

import (
	"context"
	"fmt"
	"log"

	"github.com/pkg/errors"

	"github.com/zeptools/docoverlay/db/sqldb"
	"github.com/zeptools/docoverlay/refnum"
)

const DefaultTable = "doc_ref_counters"

type TxBeginner interface {
	BeginTx(ctx context.Context) (sqldb.Tx, error)
}

// Store keeps one row (category, month, serial) per counter key. Each Advance
// is one transaction holding the row lock from SELECT ... FOR UPDATE to COMMIT.
type Store struct {
	DB     TxBeginner
	DBType string // "mysql" or "pgsql"
	Table  string
}

var (
	_ refnum.Store  = (*Store)(nil)
	_ refnum.Peeker = (*Store)(nil)
)

func New(db TxBeginner, dbType string, table string) (*Store, error) {
	if table == "" {
		table = DefaultTable
	}
	if !sqldb.IdentifierRegexp.MatchString(table) {
		return nil, fmt.Errorf("invalid counter table name: %q", table)
	}
	if _, ok := insertIfAbsent[dbType]; !ok {
		return nil, fmt.Errorf("unsupported database type for counters: %s", dbType)
	}
	return &Store{DB: db, DBType: dbType, Table: table}, nil
}

var insertIfAbsent = map[string]string{
	"mysql": "INSERT IGNORE INTO %s (category, month, serial) VALUES (?, '', 0)",
	"pgsql": "INSERT INTO %s (category, month, serial) VALUES (?, '', 0) ON CONFLICT (category) DO NOTHING",
}

func (s *Store) stmt(format string) string {
	return sqldb.Rebind(s.DBType, fmt.Sprintf(format, s.Table))
}

// EnsureTable creates the counter table when it does not exist.
func (s *Store) EnsureTable(ctx context.Context) error {
	return s.inTx(ctx, func(tx sqldb.Tx) error {
		_, err := tx.Exec(ctx, s.stmt(
			"CREATE TABLE IF NOT EXISTS %s ("+
				"category VARCHAR(64) NOT NULL PRIMARY KEY, "+
				"month VARCHAR(3) NOT NULL DEFAULT '', "+
				"serial INTEGER NOT NULL DEFAULT 0)",
		))
		return err
	})
}

func (s *Store) Advance(ctx context.Context, key string, fn func(refnum.Counter) refnum.Counter) (refnum.Counter, error) {
	var next refnum.Counter
	err := s.inTx(ctx, func(tx sqldb.Tx) error {
		if _, err := tx.Exec(ctx, s.stmt(insertIfAbsent[s.DBType]), key); err != nil {
			return errors.Wrap(err, "create counter row")
		}
		var cur refnum.Counter
		err := tx.QueryRow(ctx, s.stmt("SELECT month, serial FROM %s WHERE category = ? FOR UPDATE"), key).
			Scan(&cur.Month, &cur.Serial)
		if err != nil {
			return &refnum.CounterStateError{Key: key, Message: "read failed", Cause: err}
		}
		if err = cur.Validate(key); err != nil {
			return err
		}
		next = fn(cur)
		res, err := tx.Exec(ctx, s.stmt("UPDATE %s SET month = ?, serial = ? WHERE category = ?"), next.Month, next.Serial, key)
		if err != nil {
			return errors.Wrap(err, "update counter row")
		}
		if n, err := res.RowsAffected(); err == nil && n != 1 {
			return &refnum.CounterStateError{Key: key, Message: fmt.Sprintf("update touched %d rows", n)}
		}
		return nil
	})
	if err != nil {
		return refnum.Counter{}, err
	}
	return next, nil
}

func (s *Store) Peek(ctx context.Context, key string) (refnum.Counter, bool, error) {
	var (
		c     refnum.Counter
		found bool
	)
	err := s.inTx(ctx, func(tx sqldb.Tx) error {
		err := tx.QueryRow(ctx, s.stmt("SELECT month, serial FROM %s WHERE category = ?"), key).Scan(&c.Month, &c.Serial)
		if errors.Is(err, sqldb.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return c.Validate(key)
	})
	return c, found, err
}

// inTx commits when fn succeeds and rolls back otherwise.
func (s *Store) inTx(ctx context.Context, fn func(tx sqldb.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx)
	if err != nil {
		return errors.Wrap(err, "begin counter transaction")
	}
	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			log.Printf("[WARN][REFNUM] rollback failed: %v", rbErr)
		}
		return err
	}
	return errors.Wrap(tx.Commit(ctx), "commit counter transaction")
}
