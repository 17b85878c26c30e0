package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/storefront/internal/cart/domain"
	"github.com/tair/storefront/internal/cart/repository"
	storagerepo "github.com/tair/storefront/internal/storage/repository"
)

func newCart(t *testing.T) (*repository.SlotStore, *storagerepo.MemoryStore) {
	t.Helper()

	store := storagerepo.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	cart := repository.NewSlotStore(context.Background(), store)
	t.Cleanup(cart.Close)
	return cart, store
}

// TestCartAdd covers adding: a new line, incrementing an existing line, and
// rejecting non-positive quantities without mutating the cart.
func TestCartAdd(t *testing.T) {
	t.Parallel()

	cart, _ := newCart(t)
	assert.True(t, cart.Hydrated())
	assert.True(t, cart.IsEmpty())

	require.NoError(t, cart.Add(7, 2))
	require.NoError(t, cart.Add(9, 1))
	require.NoError(t, cart.Add(7, 3))

	assert.Equal(t, []domain.Line{
		{ProductID: 7, Quantity: 5},
		{ProductID: 9, Quantity: 1},
	}, cart.Items())
	assert.Equal(t, 6, cart.ItemCount())
	assert.False(t, cart.IsEmpty())

	err := cart.Add(7, 0)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	err = cart.Add(7, -1)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Equal(t, 6, cart.ItemCount(), "rejected input must not mutate the cart")
}

// TestCartSetQuantity covers replacing a quantity, removing via zero, and the
// two failure modes: negative quantity and missing line.
func TestCartSetQuantity(t *testing.T) {
	t.Parallel()

	cart, _ := newCart(t)
	require.NoError(t, cart.Add(7, 2))
	require.NoError(t, cart.Add(9, 4))

	require.NoError(t, cart.SetQuantity(7, 10))
	assert.Equal(t, 14, cart.ItemCount())

	// Zero removes the line entirely.
	require.NoError(t, cart.SetQuantity(7, 0))
	assert.Equal(t, []domain.Line{{ProductID: 9, Quantity: 4}}, cart.Items())

	err := cart.SetQuantity(9, -1)
	require.ErrorIs(t, err, domain.ErrNegativeQuantity)

	err = cart.SetQuantity(7, 1)
	require.ErrorIs(t, err, domain.ErrLineNotFound)
}

// TestCartRemove verifies line removal and that removing an absent line is a
// no-op.
func TestCartRemove(t *testing.T) {
	t.Parallel()

	cart, _ := newCart(t)
	require.NoError(t, cart.Add(7, 2))

	require.NoError(t, cart.Remove(7))
	assert.True(t, cart.IsEmpty())

	require.NoError(t, cart.Remove(7))
	assert.True(t, cart.IsEmpty())
}

// TestCartClear empties the cart and the backing slot.
func TestCartClear(t *testing.T) {
	t.Parallel()

	cart, store := newCart(t)
	require.NoError(t, cart.Add(7, 2))
	require.NoError(t, cart.Clear())

	assert.True(t, cart.IsEmpty())
	assert.Equal(t, 0, cart.ItemCount())

	// A fresh store over the same slot sees the cleared state.
	reloaded := repository.NewSlotStore(context.Background(), store.Sibling())
	defer reloaded.Close()
	assert.True(t, reloaded.IsEmpty())
}

// TestCartSurvivesReload verifies the cart persists across store instances,
// the way a cart survives a page reload.
func TestCartSurvivesReload(t *testing.T) {
	t.Parallel()

	cart, store := newCart(t)
	require.NoError(t, cart.Add(7, 2))
	require.NoError(t, cart.Add(9, 1))

	reloaded := repository.NewSlotStore(context.Background(), store.Sibling())
	defer reloaded.Close()

	assert.True(t, reloaded.Hydrated())
	assert.Equal(t, cart.Items(), reloaded.Items())
	assert.Equal(t, 3, reloaded.ItemCount())
}

// TestCartCorruptSlotDegradesToEmpty verifies that an undecodable stored
// cart hydrates as empty instead of failing.
func TestCartCorruptSlotDegradesToEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storagerepo.NewMemoryStore()
	defer store.Close()

	require.NoError(t, store.Write(ctx, repository.SlotKey, []byte(`{broken`)))

	cart := repository.NewSlotStore(ctx, store)
	defer cart.Close()

	assert.True(t, cart.Hydrated())
	assert.True(t, cart.IsEmpty())
}

// TestCartCrossContextUpdate verifies that an edit in one context reaches a
// cart in another context, replacing its snapshot wholesale.
func TestCartCrossContextUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storagerepo.NewMemoryStore()
	defer store.Close()

	cartA := repository.NewSlotStore(ctx, store)
	defer cartA.Close()

	cartB := repository.NewSlotStore(ctx, store.Sibling())
	defer cartB.Close()

	notified := make(chan struct{}, 8)
	unsub := cartA.Subscribe(func() {
		notified <- struct{}{}
	})
	defer unsub()

	require.NoError(t, cartB.Add(7, 2))

	select {
	case <-notified:
	case <-time.After(time.Second):
		t.Fatal("no cross-context notification")
	}

	require.Eventually(t, func() bool {
		return cartA.ItemCount() == 2
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, cartB.Items(), cartA.Items())
}
