package domain

import (
	"context"
	"encoding/json"
)

// Slot is a typed view over a single store key with a JSON codec.
//
// Corrupt or schema-mismatched stored values are treated as absent, never as
// errors: Load reports absent and callers use their documented default.
type Slot[T any] struct {
	store Store
	key   string
}

// NewSlot creates a typed slot over key.
func NewSlot[T any](store Store, key string) Slot[T] {
	return Slot[T]{store: store, key: key}
}

// Key returns the slot's storage key.
func (s Slot[T]) Key() string {
	return s.key
}

// Load reads and decodes the slot value. The second return value reports
// whether a decodable value was present.
func (s Slot[T]) Load(ctx context.Context) (T, bool) {
	var value T

	raw, ok := s.store.Read(ctx, s.key)
	if !ok {
		return value, false
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		// Corrupt payload degrades to absent
		var zero T
		return zero, false
	}
	return value, true
}

// Save encodes and durably stores value.
func (s Slot[T]) Save(ctx context.Context, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.store.Write(ctx, s.key, raw)
}

// Clear removes the stored value.
func (s Slot[T]) Clear(ctx context.Context) error {
	return s.store.Delete(ctx, s.key)
}

// Watch subscribes fn to slot changes. fn receives the decoded value and a
// presence flag; deletions and undecodable payloads are delivered as absent.
func (s Slot[T]) Watch(fn func(value T, present bool)) (unsubscribe func()) {
	return s.store.Subscribe(s.key, func(raw []byte) {
		var value T
		if raw == nil {
			fn(value, false)
			return
		}
		if err := json.Unmarshal(raw, &value); err != nil {
			var zero T
			fn(zero, false)
			return
		}
		fn(value, true)
	})
}
