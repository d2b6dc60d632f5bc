package shared

import (
	"sync"
	"testing"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	m := NewKeyedMutex()
	key := BookingLockKey("ticket", "42")

	const workers = 8
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := m.Lock(key)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()
	if counter != workers {
		t.Fatalf("counter %d, want %d", counter, workers)
	}
	// All references released, the entry must be gone.
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.locks) != 0 {
		t.Fatalf("expected lock map to be empty, has %d entries", len(m.locks))
	}
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	m := NewKeyedMutex()
	unlockA := m.Lock(BookingLockKey("ticket", "1"))
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := m.Lock(BookingLockKey("umrah", "1"))
		unlockB()
		close(done)
	}()
	<-done
}
