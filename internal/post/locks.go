package post

import "sync"

// KeyedLock serializes transitions per record, so overlapping scheduler
// ticks or an in-flight ingest never run two transitions against the same
// record concurrently. Keys are media file names; lock entries are never
// evicted, which is fine at the scale of one bakery's photo stream.
type KeyedLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyedLock creates an empty KeyedLock.
func NewKeyedLock() *KeyedLock {
	return &KeyedLock{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for key and returns the unlock function.
func (k *KeyedLock) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
