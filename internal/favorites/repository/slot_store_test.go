package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/storefront/internal/favorites/domain"
	"github.com/tair/storefront/internal/favorites/repository"
	storagerepo "github.com/tair/storefront/internal/storage/repository"
)

func newFavorites(t *testing.T) (*repository.SlotStore, *storagerepo.MemoryStore) {
	t.Helper()

	store := storagerepo.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	favorites := repository.NewSlotStore(context.Background(), store)
	t.Cleanup(favorites.Close)
	return favorites, store
}

// TestFavoritesToggleIsAnInvolution verifies the core toggle contract:
// applying it twice returns the store to its prior state.
func TestFavoritesToggleIsAnInvolution(t *testing.T) {
	t.Parallel()

	favorites, _ := newFavorites(t)
	entry := domain.Entry{ProductID: 7, Name: "Mug", Price: 12.5}

	require.NoError(t, favorites.Toggle(entry))
	assert.True(t, favorites.Contains(7))
	assert.Equal(t, 1, favorites.Count())

	require.NoError(t, favorites.Toggle(entry))
	assert.False(t, favorites.Contains(7))
	assert.Equal(t, 0, favorites.Count())
}

// TestFavoritesToggleRejectsZeroProduct verifies invalid entries never reach
// the stored set.
func TestFavoritesToggleRejectsZeroProduct(t *testing.T) {
	t.Parallel()

	favorites, _ := newFavorites(t)
	require.Error(t, favorites.Toggle(domain.Entry{ProductID: 0}))
	assert.Equal(t, 0, favorites.Count())
}

// TestFavoritesOrderIsStable verifies entries enumerate in insertion order
// and that removal does not reorder the rest.
func TestFavoritesOrderIsStable(t *testing.T) {
	t.Parallel()

	favorites, _ := newFavorites(t)
	require.NoError(t, favorites.Toggle(domain.Entry{ProductID: 1, Name: "A"}))
	require.NoError(t, favorites.Toggle(domain.Entry{ProductID: 2, Name: "B"}))
	require.NoError(t, favorites.Toggle(domain.Entry{ProductID: 3, Name: "C"}))

	require.NoError(t, favorites.Toggle(domain.Entry{ProductID: 2}))

	items := favorites.Items()
	require.Len(t, items, 2)
	assert.Equal(t, uint(1), items[0].ProductID)
	assert.Equal(t, uint(3), items[1].ProductID)
}

// TestFavoritesSurvivesReload verifies persistence across store instances.
func TestFavoritesSurvivesReload(t *testing.T) {
	t.Parallel()

	favorites, store := newFavorites(t)
	require.NoError(t, favorites.Toggle(domain.Entry{ProductID: 7, Name: "Mug", Price: 12.5}))

	reloaded := repository.NewSlotStore(context.Background(), store.Sibling())
	defer reloaded.Close()

	assert.True(t, reloaded.Contains(7))
	assert.Equal(t, favorites.Items(), reloaded.Items())
}

// TestFavoritesHydrationDeduplicates verifies a stored payload with
// duplicate or invalid entries degrades to a well-formed set on load.
func TestFavoritesHydrationDeduplicates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storagerepo.NewMemoryStore()
	defer store.Close()

	raw := []byte(`[{"product_id":7,"name":"Mug"},{"product_id":7,"name":"Mug again"},{"product_id":0},{"product_id":9}]`)
	require.NoError(t, store.Write(ctx, repository.SlotKey, raw))

	favorites := repository.NewSlotStore(ctx, store)
	defer favorites.Close()

	items := favorites.Items()
	require.Len(t, items, 2)
	assert.Equal(t, uint(7), items[0].ProductID)
	assert.Equal(t, "Mug", items[0].Name, "first occurrence wins")
	assert.Equal(t, uint(9), items[1].ProductID)
}

// TestFavoritesCrossContextUpdate verifies a toggle in one context reaches a
// store in another context.
func TestFavoritesCrossContextUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storagerepo.NewMemoryStore()
	defer store.Close()

	favoritesA := repository.NewSlotStore(ctx, store)
	defer favoritesA.Close()

	favoritesB := repository.NewSlotStore(ctx, store.Sibling())
	defer favoritesB.Close()

	notified := make(chan struct{}, 8)
	unsub := favoritesA.Subscribe(func() {
		notified <- struct{}{}
	})
	defer unsub()

	require.NoError(t, favoritesB.Toggle(domain.Entry{ProductID: 7, Name: "Mug"}))

	select {
	case <-notified:
	case <-time.After(time.Second):
		t.Fatal("no cross-context notification")
	}

	require.Eventually(t, func() bool {
		return favoritesA.Contains(7)
	}, time.Second, 10*time.Millisecond)
}
