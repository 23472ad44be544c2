// Package kvstore persists reference counters in a key-value database.
package kvstore

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/zeptools/docoverlay/db/kvdb"
	"github.com/zeptools/docoverlay/refnum"
)

const DefaultPrefix = "docoverlay:counter:"

// Store keeps each counter as a JSON string under Prefix+key.
// The critical section is the client's optimistic transaction on that key.
type Store struct {
	Client kvdb.Client
	Prefix string
}

var (
	_ refnum.Store  = (*Store)(nil)
	_ refnum.Peeker = (*Store)(nil)
)

func New(client kvdb.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{Client: client, Prefix: prefix}
}

func (s *Store) Advance(ctx context.Context, key string, fn func(refnum.Counter) refnum.Counter) (refnum.Counter, error) {
	var next refnum.Counter
	_, err := s.Client.Transact(ctx, s.Prefix+key, func(val string, found bool) (string, error) {
		cur, err := decode(key, val, found)
		if err != nil {
			return "", err
		}
		next = fn(cur)
		b, err := json.Marshal(next)
		if err != nil {
			return "", errors.Wrap(err, "encode counter")
		}
		return string(b), nil
	})
	if err != nil {
		var stateErr *refnum.CounterStateError
		if errors.As(err, &stateErr) {
			return refnum.Counter{}, err
		}
		return refnum.Counter{}, errors.Wrapf(err, "advance counter %s", key)
	}
	return next, nil
}

func (s *Store) Peek(ctx context.Context, key string) (refnum.Counter, bool, error) {
	val, found, err := s.Client.Get(ctx, s.Prefix+key)
	if err != nil {
		return refnum.Counter{}, false, errors.Wrapf(err, "read counter %s", key)
	}
	c, err := decode(key, val, found)
	return c, found, err
}

func decode(key, val string, found bool) (refnum.Counter, error) {
	var c refnum.Counter
	if !found {
		return c, nil
	}
	if err := json.Unmarshal([]byte(val), &c); err != nil {
		return refnum.Counter{}, &refnum.CounterStateError{Key: key, Message: "decode failed", Cause: err}
	}
	if err := c.Validate(key); err != nil {
		return refnum.Counter{}, err
	}
	return c, nil
}
