package services

import "sync"

// keyedMutex serializes read-modify-write operations per aggregate id.
type keyedMutex struct {
	locks sync.Map
}

// Lock acquires the mutex for key and returns its unlock func.
func (k *keyedMutex) Lock(key string) func() {
	v, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
