package keylocks

import "sync"

// Lock blocks until the mutex for key in lockStore is held.
// lockStore is map[string]*sync.Mutex; entries are created on first use and never removed.
// Wrap the returned release func in a deferred call.
func Lock(lockStore *sync.Map, key string) (release func()) {
	v, _ := lockStore.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
