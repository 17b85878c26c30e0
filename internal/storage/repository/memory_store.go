package repository

import (
	"context"
	"sync"
)

// memoryBackend is the shared persistence behind one or more MemoryStores.
// Each MemoryStore attached to it models one execution context (one browser
// tab): a write is visible to every attached store immediately, but change
// notifications only reach the *other* stores, matching the contract that a
// process observes its own writes through reads, not events.
type memoryBackend struct {
	mu     sync.RWMutex
	values map[string][]byte
	stores map[*MemoryStore]struct{}
	wg     sync.WaitGroup
}

// MemoryStore is an in-process Store implementation. It backs tests and the
// degraded mode used when Redis is unreachable at startup.
type MemoryStore struct {
	backend *memoryBackend

	mu      sync.Mutex
	subs    map[string]map[int]func([]byte)
	nextSub int
}

// NewMemoryStore creates a store on a fresh private backend.
func NewMemoryStore() *MemoryStore {
	backend := &memoryBackend{
		values: make(map[string][]byte),
		stores: make(map[*MemoryStore]struct{}),
	}
	return backend.open()
}

// Sibling attaches a second store to the same backend, simulating another
// execution context sharing the durable slot.
func (s *MemoryStore) Sibling() *MemoryStore {
	return s.backend.open()
}

func (b *memoryBackend) open() *MemoryStore {
	store := &MemoryStore{
		backend: b,
		subs:    make(map[string]map[int]func([]byte)),
	}

	b.mu.Lock()
	b.stores[store] = struct{}{}
	b.mu.Unlock()
	return store
}

// Read returns the value stored under key.
func (s *MemoryStore) Read(_ context.Context, key string) ([]byte, bool) {
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()

	raw, ok := s.backend.values[key]
	if !ok {
		return nil, false
	}
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return cp, true
}

// Write stores value under key. Stores attached to the same backend are
// notified asynchronously; this store is not.
func (s *MemoryStore) Write(_ context.Context, key string, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)

	s.backend.mu.Lock()
	s.backend.values[key] = cp
	s.backend.mu.Unlock()

	s.backend.notify(s, key, cp)
	return nil
}

// Delete removes the value stored under key. Sibling stores hear a nil
// payload.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.backend.mu.Lock()
	delete(s.backend.values, key)
	s.backend.mu.Unlock()

	s.backend.notify(s, key, nil)
	return nil
}

// Subscribe registers fn for changes on key made by sibling stores.
func (s *MemoryStore) Subscribe(key string, fn func([]byte)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subs[key] == nil {
		s.subs[key] = make(map[int]func([]byte))
	}
	id := s.nextSub
	s.nextSub++
	s.subs[key][id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[key], id)
	}
}

// Close detaches the store from its backend and waits for in-flight
// notifications.
func (s *MemoryStore) Close() error {
	s.backend.mu.Lock()
	delete(s.backend.stores, s)
	s.backend.mu.Unlock()

	s.mu.Lock()
	s.subs = make(map[string]map[int]func([]byte))
	s.mu.Unlock()

	s.backend.wg.Wait()
	return nil
}

// notify fans the new value out to subscribers on every attached store
// except the writer.
func (b *memoryBackend) notify(origin *MemoryStore, key string, value []byte) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for store := range b.stores {
		if store == origin {
			continue
		}
		store.mu.Lock()
		for _, fn := range store.subs[key] {
			fn := fn
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				fn(value)
			}()
		}
		store.mu.Unlock()
	}
}
