package domain_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storage "github.com/tair/storefront/internal/storage/domain"
	"github.com/tair/storefront/internal/storage/repository"
)

type preferences struct {
	Theme    string `json:"theme"`
	PageSize int    `json:"page_size"`
}

// TestSlotRoundtrip saves a typed value and loads it back.
func TestSlotRoundtrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := repository.NewMemoryStore()
	defer store.Close()

	slot := storage.NewSlot[preferences](store, "prefs")
	assert.Equal(t, "prefs", slot.Key())

	_, ok := slot.Load(ctx)
	assert.False(t, ok)

	want := preferences{Theme: "dark", PageSize: 20}
	require.NoError(t, slot.Save(ctx, want))

	got, ok := slot.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

// TestSlotCorruptValueDegradesToAbsent verifies that an undecodable stored
// value reads as absent rather than erroring, so a hand-edited or stale
// payload falls back to the default state.
func TestSlotCorruptValueDegradesToAbsent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := repository.NewMemoryStore()
	defer store.Close()

	require.NoError(t, store.Write(ctx, "prefs", []byte(`{"theme": not-json`)))

	slot := storage.NewSlot[preferences](store, "prefs")
	got, ok := slot.Load(ctx)
	assert.False(t, ok)
	assert.Zero(t, got)
}

// TestSlotClear removes the stored value.
func TestSlotClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := repository.NewMemoryStore()
	defer store.Close()

	slot := storage.NewSlot[preferences](store, "prefs")
	require.NoError(t, slot.Save(ctx, preferences{Theme: "light"}))
	require.NoError(t, slot.Clear(ctx))

	_, ok := slot.Load(ctx)
	assert.False(t, ok)
}

// TestSlotWatch verifies watch delivery from a sibling context: decoded
// values arrive as present, deletes and corrupt payloads arrive as absent.
func TestSlotWatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := repository.NewMemoryStore()
	defer store.Close()

	sibling := store.Sibling()
	defer sibling.Close()

	slot := storage.NewSlot[preferences](store, "prefs")
	remote := storage.NewSlot[preferences](sibling, "prefs")

	type observation struct {
		value   preferences
		present bool
	}

	var mu sync.Mutex
	var seen []observation

	unwatch := slot.Watch(func(value preferences, present bool) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, observation{value: value, present: present})
	})
	defer unwatch()

	require.NoError(t, remote.Save(ctx, preferences{Theme: "dark", PageSize: 50}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.True(t, seen[0].present)
	assert.Equal(t, preferences{Theme: "dark", PageSize: 50}, seen[0].value)
	mu.Unlock()

	require.NoError(t, remote.Clear(ctx))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.False(t, seen[1].present)
	assert.Zero(t, seen[1].value)
	mu.Unlock()

	// A corrupt remote write also surfaces as absent.
	require.NoError(t, sibling.Write(ctx, "prefs", []byte(`broken`)))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 3
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.False(t, seen[2].present)
	mu.Unlock()
}
