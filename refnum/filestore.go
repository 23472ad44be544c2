package refnum

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/pkg/errors"

	"github.com/zeptools/docoverlay/locks/keylocks"
)

var regexKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// FileStore keeps one small JSON file per key under Dir, e.g. offer_serial.json.
//
// Goroutines of one process are serialized with a per-key mutex; processes are
// serialized with an advisory lock on <key>.lock where the platform supports it.
// Records are replaced with write-to-temp + rename, so a crash mid-write leaves
// the previous record in place.
type FileStore struct {
	Dir   string
	locks sync.Map // map[string]*sync.Mutex
}

var (
	_ Store  = (*FileStore)(nil)
	_ Peeker = (*FileStore)(nil)
)

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create counter dir %s", dir)
	}
	return &FileStore{Dir: dir}, nil
}

func (s *FileStore) Path(key string) string {
	return filepath.Join(s.Dir, key+".json")
}

func (s *FileStore) Advance(ctx context.Context, key string, fn func(Counter) Counter) (Counter, error) {
	if !regexKey.MatchString(key) {
		return Counter{}, errors.Errorf("invalid counter key %q", key)
	}
	if err := ctx.Err(); err != nil {
		return Counter{}, err
	}

	release := keylocks.Lock(&s.locks, key)
	defer release()
	unlock, err := lockFile(filepath.Join(s.Dir, key+".lock"))
	if err != nil {
		return Counter{}, errors.Wrapf(err, "lock counter %s", key)
	}
	defer unlock()

	cur, _, err := s.read(key)
	if err != nil {
		return Counter{}, err
	}
	next := fn(cur)
	if err = s.write(key, next); err != nil {
		return Counter{}, err
	}
	return next, nil
}

func (s *FileStore) Peek(_ context.Context, key string) (Counter, bool, error) {
	if !regexKey.MatchString(key) {
		return Counter{}, false, errors.Errorf("invalid counter key %q", key)
	}
	return s.read(key)
}

func (s *FileStore) read(key string) (Counter, bool, error) {
	data, err := os.ReadFile(s.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return Counter{}, false, nil
	}
	if err != nil {
		return Counter{}, false, &CounterStateError{Key: key, Message: "read failed", Cause: err}
	}
	var c Counter
	if err = json.Unmarshal(data, &c); err != nil {
		return Counter{}, false, &CounterStateError{Key: key, Message: "decode failed", Cause: err}
	}
	if err = c.Validate(key); err != nil {
		return Counter{}, false, err
	}
	return c, true, nil
}

func (s *FileStore) write(key string, c Counter) error {
	data, err := json.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encode counter")
	}
	tmp, err := os.CreateTemp(s.Dir, "."+key+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "write counter %s", key)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName) // no-op after a successful rename
	}()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "write counter %s", key)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "sync counter %s", key)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "close counter %s", key)
	}
	if err = os.Rename(tmpName, s.Path(key)); err != nil {
		return errors.Wrapf(err, "replace counter %s", key)
	}
	return nil
}
