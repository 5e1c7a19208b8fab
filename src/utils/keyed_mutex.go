package utils

import "sync"

// KeyedMutex serializes work per string key. Used to guard the
// check-then-write sections for a (registration, checkpoint) pair and for
// per-event invitation issuance. Mutexes are kept for the process lifetime;
// the key space (registrations × checkpoints) is small enough that this is
// not a leak concern.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *KeyedMutex) Lock(key string) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()
	l.Lock()
}

func (k *KeyedMutex) Unlock(key string) {
	k.mu.Lock()
	l := k.locks[key]
	k.mu.Unlock()
	if l != nil {
		l.Unlock()
	}
}
