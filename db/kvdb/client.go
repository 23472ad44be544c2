package kvdb

import (
	"context"
	"errors"
)

type Client interface {
	Init() error
	Close() error
	GetConf() *Conf

	Get(ctx context.Context, key string) (string, bool, error) // val, found, err

	// Transact reads key, passes its value to fn and stores fn's result, all
	// optimistically: if key is modified by anyone else in between, the whole
	// read-compute-write is retried. An error from fn aborts without writing.
	// Returns the stored value, or ErrTxConflict once retries are exhausted.
	Transact(ctx context.Context, key string, fn func(val string, found bool) (string, error)) (string, error)
}

var ErrTxConflict = errors.New("kvdb: transaction conflict, retries exhausted")
