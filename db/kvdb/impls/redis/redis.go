package redis

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/zeptools/docoverlay/db/kvdb"

	lowimpl "github.com/redis/go-redis/v9"
)

// MaxTxRetries bounds the WATCH/MULTI retry loop of Transact.
const MaxTxRetries = 16

type Client struct {
	Conf *kvdb.Conf

	// implementation details, not exported
	internal *lowimpl.Client
}

// Ensure redis.Client implements kvdb.Client interface
var _ kvdb.Client = (*Client)(nil)

func (c *Client) Init() error {
	c.internal = lowimpl.NewClient(&lowimpl.Options{
		Addr:     fmt.Sprintf("%s:%d", c.Conf.Host, c.Conf.Port),
		Password: c.Conf.PW,
		DB:       c.Conf.DB,
	})
	log.Println("[INFO] redis internal initialized")
	return nil
}

func (c *Client) Close() error {
	if c.internal == nil {
		return nil
	}
	return c.internal.Close()
}

func (c *Client) GetConf() *kvdb.Conf {
	return c.Conf
}

func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.internal.Get(ctx, key).Result()
	if errors.Is(err, lowimpl.Nil) {
		return "", false, nil // redis.Nil -> ok: false, err: nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *Client) Transact(ctx context.Context, key string, fn func(string, bool) (string, error)) (string, error) {
	var stored string
	txf := func(tx *lowimpl.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		found := true
		if errors.Is(err, lowimpl.Nil) {
			val, found = "", false
		} else if err != nil {
			return err
		}
		next, err := fn(val, found)
		if err != nil {
			return err
		}
		// MULTI/EXEC only runs if key is untouched since WATCH
		_, err = tx.TxPipelined(ctx, func(pipe lowimpl.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		if err != nil {
			return err
		}
		stored = next
		return nil
	}
	for i := 0; i < MaxTxRetries; i++ {
		err := c.internal.Watch(ctx, txf, key)
		if err == nil {
			return stored, nil
		}
		if errors.Is(err, lowimpl.TxFailedErr) {
			continue // optimistic lock lost
		}
		return "", err
	}
	return "", kvdb.ErrTxConflict
}
