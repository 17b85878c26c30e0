package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/storefront/internal/storage/repository"
)

// TestMemoryStoreReadWrite covers the basic value lifecycle on a single
// store: absent, written, overwritten, deleted.
func TestMemoryStoreReadWrite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := repository.NewMemoryStore()
	defer store.Close()

	_, ok := store.Read(ctx, "cart")
	assert.False(t, ok)

	require.NoError(t, store.Write(ctx, "cart", []byte(`[{"product_id":1}]`)))

	raw, ok := store.Read(ctx, "cart")
	require.True(t, ok)
	assert.Equal(t, []byte(`[{"product_id":1}]`), raw)

	require.NoError(t, store.Write(ctx, "cart", []byte(`[]`)))
	raw, ok = store.Read(ctx, "cart")
	require.True(t, ok)
	assert.Equal(t, []byte(`[]`), raw)

	require.NoError(t, store.Delete(ctx, "cart"))
	_, ok = store.Read(ctx, "cart")
	assert.False(t, ok)
}

// TestMemoryStoreSiblingSeesWrites verifies that stores on the same backend
// share values immediately, like two tabs over one durable storage area.
func TestMemoryStoreSiblingSeesWrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := repository.NewMemoryStore()
	defer store.Close()

	sibling := store.Sibling()
	defer sibling.Close()

	require.NoError(t, store.Write(ctx, "auth", []byte(`{"id":1}`)))

	raw, ok := sibling.Read(ctx, "auth")
	require.True(t, ok)
	assert.Equal(t, []byte(`{"id":1}`), raw)
}

// TestMemoryStoreNotificationFanout checks the change notification contract:
// siblings are notified of writes and deletes, the writer itself never is.
func TestMemoryStoreNotificationFanout(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := repository.NewMemoryStore()
	defer store.Close()

	sibling := store.Sibling()
	defer sibling.Close()

	var mu sync.Mutex
	var siblingGot [][]byte
	writerNotified := false

	unsubSibling := sibling.Subscribe("favorites", func(value []byte) {
		mu.Lock()
		defer mu.Unlock()
		siblingGot = append(siblingGot, value)
	})
	defer unsubSibling()

	unsubWriter := store.Subscribe("favorites", func([]byte) {
		mu.Lock()
		defer mu.Unlock()
		writerNotified = true
	})
	defer unsubWriter()

	require.NoError(t, store.Write(ctx, "favorites", []byte(`[1,2]`)))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(siblingGot) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []byte(`[1,2]`), siblingGot[0])
	assert.False(t, writerNotified, "the writing store must observe its own writes through reads, not events")
	mu.Unlock()

	// A delete reaches the sibling as a nil payload.
	require.NoError(t, store.Delete(ctx, "favorites"))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(siblingGot) == 2
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Nil(t, siblingGot[1])
	assert.False(t, writerNotified)
	mu.Unlock()
}

// TestMemoryStoreUnsubscribe verifies an unsubscribed listener stops
// receiving change notifications.
func TestMemoryStoreUnsubscribe(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := repository.NewMemoryStore()
	defer store.Close()

	sibling := store.Sibling()
	defer sibling.Close()

	var mu sync.Mutex
	calls := 0

	unsub := sibling.Subscribe("auth", func([]byte) {
		mu.Lock()
		defer mu.Unlock()
		calls++
	})

	require.NoError(t, store.Write(ctx, "auth", []byte(`1`)))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 1
	}, time.Second, 10*time.Millisecond)

	unsub()
	require.NoError(t, store.Write(ctx, "auth", []byte(`2`)))

	assert.Never(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls > 1
	}, 200*time.Millisecond, 20*time.Millisecond)
}

// TestMemoryStoreClosedStoreIsSilent verifies a closed store no longer hears
// sibling writes.
func TestMemoryStoreClosedStoreIsSilent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := repository.NewMemoryStore()
	sibling := store.Sibling()
	defer sibling.Close()

	notified := make(chan struct{}, 1)
	store.Subscribe("cart", func([]byte) {
		notified <- struct{}{}
	})

	require.NoError(t, store.Close())
	require.NoError(t, sibling.Write(ctx, "cart", []byte(`[]`)))

	select {
	case <-notified:
		t.Fatal("closed store received a notification")
	case <-time.After(200 * time.Millisecond):
	}
}
