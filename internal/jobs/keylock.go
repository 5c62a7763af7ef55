package jobs

import "sync"

// keyedMutex serializes work per key. Entries are dropped once no goroutine holds or
// waits on them.
type keyedMutex struct {
	edit    sync.Mutex
	waiters map[string]int
	mutexes map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		waiters: make(map[string]int),
		mutexes: make(map[string]*sync.Mutex),
	}
}

func (m *keyedMutex) Lock(key string) {
	m.edit.Lock()
	mu, ok := m.mutexes[key]
	if !ok {
		mu = &sync.Mutex{}
		m.mutexes[key] = mu
	}
	m.waiters[key]++
	m.edit.Unlock()

	mu.Lock()
}

func (m *keyedMutex) Unlock(key string) {
	m.edit.Lock()
	defer m.edit.Unlock()

	mu, ok := m.mutexes[key]
	if !ok {
		return
	}
	mu.Unlock()

	m.waiters[key]--
	if m.waiters[key] == 0 {
		delete(m.mutexes, key)
		delete(m.waiters, key)
	}
}

func (m *keyedMutex) size() int {
	m.edit.Lock()
	defer m.edit.Unlock()
	return len(m.mutexes)
}
