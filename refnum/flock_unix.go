//go:build unix

package refnum

import (
	"log"
	"os"

	"golang.org/x/sys/unix"
)

// lockFile takes an exclusive advisory lock on path, creating it if needed.
func lockFile(path string) (unlock func(), err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	fd := int(f.Fd())
	for {
		err = unix.Flock(fd, unix.LOCK_EX)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return func() {
		if err := unix.Flock(fd, unix.LOCK_UN); err != nil {
			log.Printf("[WARN][REFNUM] unlock %s: %v", path, err)
		}
		if err := f.Close(); err != nil {
			log.Printf("[WARN][REFNUM] close %s: %v", path, err)
		}
	}, nil
}
