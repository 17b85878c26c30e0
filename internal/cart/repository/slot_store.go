package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/tair/storefront/internal/cart/domain"
	storage "github.com/tair/storefront/internal/storage/domain"
	"github.com/tair/storefront/pkg/logger"
)

// SlotKey is the storage key holding the persisted cart.
const SlotKey = "cart"

// SlotStore implements CartStore over a durable slot. It keeps an in-memory
// snapshot for synchronous reads and writes every mutation through to the
// slot before committing, so a failed persist leaves the cart untouched.
type SlotStore struct {
	slot storage.Slot[[]domain.Line]

	mu       sync.RWMutex
	lines    []domain.Line
	hydrated bool
	subs     map[int]func()
	nextSub  int

	unwatch func()
}

// NewSlotStore creates a cart store and hydrates it from the slot. A missing
// or undecodable stored value degrades to an empty cart.
func NewSlotStore(ctx context.Context, store storage.Store) *SlotStore {
	s := &SlotStore{
		slot: storage.NewSlot[[]domain.Line](store, SlotKey),
		subs: make(map[int]func()),
	}

	lines, _ := s.slot.Load(ctx)
	s.lines = sanitize(lines)
	s.hydrated = true

	// Edits from other processes sharing the slot replace the snapshot
	// wholesale: last physical write wins, no merge.
	s.unwatch = s.slot.Watch(func(lines []domain.Line, _ bool) {
		s.mu.Lock()
		s.lines = sanitize(lines)
		s.mu.Unlock()
		s.notify()
	})

	return s
}

// Add increments the line for productID, inserting it if absent.
func (s *SlotStore) Add(productID uint, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: got %d", domain.ErrInvalidQuantity, quantity)
	}

	s.mu.Lock()
	next := clone(s.lines)
	found := false
	for i := range next {
		if next[i].ProductID == productID {
			next[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		next = append(next, domain.Line{ProductID: productID, Quantity: quantity})
	}
	err := s.commitLocked(next)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// SetQuantity replaces the quantity of a line. Zero removes the line;
// negative values are rejected.
func (s *SlotStore) SetQuantity(productID uint, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("%w: got %d", domain.ErrNegativeQuantity, quantity)
	}

	s.mu.Lock()
	next := clone(s.lines)
	idx := -1
	for i := range next {
		if next[i].ProductID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return domain.ErrLineNotFound
	}
	if quantity == 0 {
		next = append(next[:idx], next[idx+1:]...)
	} else {
		next[idx].Quantity = quantity
	}
	err := s.commitLocked(next)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// Remove deletes the line for productID. Removing an absent line is a no-op.
func (s *SlotStore) Remove(productID uint) error {
	s.mu.Lock()
	next := clone(s.lines)
	idx := -1
	for i := range next {
		if next[i].ProductID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	next = append(next[:idx], next[idx+1:]...)
	err := s.commitLocked(next)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// Clear empties the cart.
func (s *SlotStore) Clear() error {
	s.mu.Lock()
	err := s.commitLocked([]domain.Line{})
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// Items returns a copy of the cart lines.
func (s *SlotStore) Items() []domain.Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.lines)
}

// ItemCount returns the sum of quantities, not the number of lines.
func (s *SlotStore) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, line := range s.lines {
		total += line.Quantity
	}
	return total
}

// IsEmpty reports whether the cart has no lines.
func (s *SlotStore) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines) == 0
}

// Hydrated reports whether the initial slot load has finished.
func (s *SlotStore) Hydrated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hydrated
}

// Subscribe registers fn for cart changes.
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

// commitLocked persists next and, only on success, makes it the snapshot.
// Callers hold mu.
func (s *SlotStore) commitLocked(next []domain.Line) error {
	if err := s.slot.Save(context.Background(), next); err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to persist cart")
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	s.lines = next
	return nil
}

func (s *SlotStore) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fn := range s.subs {
		fn := fn
		go fn()
	}
}

func clone(lines []domain.Line) []domain.Line {
	next := make([]domain.Line, len(lines))
	copy(next, lines)
	return next
}

// sanitize drops lines a well-formed cart can never contain. Stored values
// that fail the schema degrade to the empty default per line, not per cart.
func sanitize(lines []domain.Line) []domain.Line {
	out := make([]domain.Line, 0, len(lines))
	for _, line := range lines {
		if line.Quantity >= 1 {
			out = append(out, line)
		}
	}
	return out
}
