package shared

import (
	"fmt"
	"sync"
)

// BookingLockKey builds the critical-section key for one booking.
func BookingLockKey(kind, bookingID string) string {
	return fmt.Sprintf("booking:%s:%s:lock", kind, bookingID)
}

// KeyedMutex serializes work per key. The reconciler takes the booking's
// lock before its multi-collection fan-out so two reconciliations on the
// same booking can never interleave their writes.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex constructs an empty lock set.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock blocks until the key's lock is held and returns the unlock func.
func (m *KeyedMutex) Lock(key string) func() {
	m.mu.Lock()
	entry, ok := m.locks[key]
	if !ok {
		entry = &keyedLock{}
		m.locks[key] = entry
	}
	entry.refs++
	m.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		m.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(m.locks, key)
		}
		m.mu.Unlock()
	}
}
