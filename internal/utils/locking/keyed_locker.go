package locking

import (
	"slices"
	"sync"
)

// KeyedLocker hands out one mutex per key. Locks for several keys are always
// taken in sorted order so two callers with overlapping key sets cannot deadlock.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

// NewKeyedLocker creates an empty locker.
func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[string]*refMutex)}
}

// Lock acquires every key and returns the matching unlock function.
// Duplicate keys are collapsed.
func (l *KeyedLocker) Lock(keys ...string) (unlock func()) {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	held := make([]*refMutex, 0, len(sorted))
	for _, k := range sorted {
		m := l.acquire(k)
		m.Lock()
		held = append(held, m)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
			l.release(sorted[i])
		}
	}
}

func (l *KeyedLocker) acquire(key string) *refMutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[key]
	if !ok {
		m = &refMutex{}
		l.locks[key] = m
	}
	m.refs++
	return m
}

func (l *KeyedLocker) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m := l.locks[key]
	m.refs--
	if m.refs == 0 {
		delete(l.locks, key)
	}
}

// Size returns the number of keys currently referenced.
func (l *KeyedLocker) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
