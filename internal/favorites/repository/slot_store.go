package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/tair/storefront/internal/favorites/domain"
	storage "github.com/tair/storefront/internal/storage/domain"
)

// SlotKey is the storage key holding the persisted favorites.
const SlotKey = "favorites"

// SlotStore implements FavoritesStore over a durable slot. Entries keep
// insertion order in the persisted slice; set semantics are enforced on
// toggle.
type SlotStore struct {
	slot storage.Slot[[]domain.Entry]

	mu      sync.RWMutex
	entries []domain.Entry
	subs    map[int]func()
	nextSub int

	unwatch func()
}

// NewSlotStore creates a favorites store and hydrates it from the slot.
func NewSlotStore(ctx context.Context, store storage.Store) *SlotStore {
	s := &SlotStore{
		slot: storage.NewSlot[[]domain.Entry](store, SlotKey),
		subs: make(map[int]func()),
	}

	entries, _ := s.slot.Load(ctx)
	s.entries = dedupe(entries)

	s.unwatch = s.slot.Watch(func(entries []domain.Entry, _ bool) {
		s.mu.Lock()
		s.entries = dedupe(entries)
		s.mu.Unlock()
		s.notify()
	})

	return s
}

// Toggle inserts the entry if absent and removes it if present.
func (s *SlotStore) Toggle(entry domain.Entry) error {
	if entry.ProductID == 0 {
		return fmt.Errorf("invalid product id")
	}

	s.mu.Lock()
	next := make([]domain.Entry, 0, len(s.entries)+1)
	removed := false
	for _, e := range s.entries {
		if e.ProductID == entry.ProductID {
			removed = true
			continue
		}
		next = append(next, e)
	}
	if !removed {
		next = append(next, entry)
	}

	err := s.slot.Save(context.Background(), next)
	if err == nil {
		s.entries = next
	}
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to persist favorites: %w", err)
	}
	s.notify()
	return nil
}

// Items returns a copy of the favorite entries.
func (s *SlotStore) Items() []domain.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Count returns the set size.
func (s *SlotStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Contains reports whether productID is favorited.
func (s *SlotStore) Contains(productID uint) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if e.ProductID == productID {
			return true
		}
	}
	return false
}

// Subscribe registers fn for favorites changes.
func (s *SlotStore) Subscribe(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Close stops listening for remote edits.
func (s *SlotStore) Close() {
	if s.unwatch != nil {
		s.unwatch()
	}
}

func (s *SlotStore) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fn := range s.subs {
		fn := fn
		go fn()
	}
}

// dedupe keeps the first occurrence of each product id. Stored values are
// written deduplicated; this guards against hand-edited or stale payloads.
func dedupe(entries []domain.Entry) []domain.Entry {
	seen := make(map[uint]struct{}, len(entries))
	out := make([]domain.Entry, 0, len(entries))
	for _, e := range entries {
		if e.ProductID == 0 {
			continue
		}
		if _, dup := seen[e.ProductID]; dup {
			continue
		}
		seen[e.ProductID] = struct{}{}
		out = append(out, e)
	}
	return out
}
