package sqldb

import (
	"context"
)

type Client interface {
	Init() error
	Close() error
	GetConf() *Conf
	Ping(ctx context.Context) error
	BeginTx(ctx context.Context) (Tx, error)
}
