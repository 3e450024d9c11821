package services

import "sync"

// keyLocks serialises read-modify-write cycles on one store key inside this
// process. Other processes sharing the backend still race; last write wins.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var collectionLocks = &keyLocks{locks: make(map[string]*sync.Mutex)}

func (k *keyLocks) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
