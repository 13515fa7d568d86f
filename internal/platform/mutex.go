package platform

import "sync"

// Mutex wraps a sync.Mutex, implementing mqtt.Mutex. It is not reentrant,
// matching the spec's mutex contract.
type Mutex struct {
	mu sync.Mutex
}

// NewMutex returns a ready-to-use Mutex.
func NewMutex() *Mutex {
	return &Mutex{}
}

// Lock acquires the mutex.
func (m *Mutex) Lock() { m.mu.Lock() }

// Unlock releases the mutex.
func (m *Mutex) Unlock() { m.mu.Unlock() }
