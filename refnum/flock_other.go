//go:build !unix

package refnum

// lockFile is a no-op where flock is unavailable; FileStore then relies on its
// in-process mutex and a single writing process.
func lockFile(string) (func(), error) {
	return func() {}, nil
}
