package session_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/storefront/internal/session"
	"github.com/tair/storefront/internal/session/domain"
	storagerepo "github.com/tair/storefront/internal/storage/repository"
)

func waitResolved(t *testing.T, m *session.Manager) domain.Snapshot {
	t.Helper()

	require.Eventually(t, func() bool {
		return m.Snapshot().Resolved()
	}, time.Second, 10*time.Millisecond)
	return m.Snapshot()
}

// TestManagerBootstrapAnonymous verifies a fresh store resolves to an
// anonymous session.
func TestManagerBootstrapAnonymous(t *testing.T) {
	t.Parallel()

	store := storagerepo.NewMemoryStore()
	defer store.Close()

	m := session.NewManager(store)
	defer m.Close()

	assert.Equal(t, domain.PhaseUnknown, m.Snapshot().Phase)

	m.Bootstrap(context.Background())

	snap := waitResolved(t, m)
	assert.Equal(t, domain.PhaseAnonymous, snap.Phase)
	assert.Nil(t, snap.Identity)
}

// TestManagerBootstrapRehydrates verifies a persisted identity is restored
// on bootstrap.
func TestManagerBootstrapRehydrates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storagerepo.NewMemoryStore()
	defer store.Close()

	identity := domain.Identity{ID: 1, Username: "ada", Role: domain.RoleUser}
	raw, err := json.Marshal(identity)
	require.NoError(t, err)
	require.NoError(t, store.Write(ctx, session.SlotKey, raw))

	m := session.NewManager(store)
	defer m.Close()
	m.Bootstrap(ctx)

	snap := waitResolved(t, m)
	assert.Equal(t, domain.PhaseAuthenticated, snap.Phase)
	require.NotNil(t, snap.Identity)
	assert.Equal(t, identity, *snap.Identity)
}

// TestManagerBootstrapCorruptSlot verifies an undecodable persisted identity
// resolves to anonymous instead of failing.
func TestManagerBootstrapCorruptSlot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storagerepo.NewMemoryStore()
	defer store.Close()

	require.NoError(t, store.Write(ctx, session.SlotKey, []byte(`{"id": broken`)))

	m := session.NewManager(store)
	defer m.Close()
	m.Bootstrap(ctx)

	snap := waitResolved(t, m)
	assert.Equal(t, domain.PhaseAnonymous, snap.Phase)
}

// TestManagerSignInSignOut walks the full transition cycle and checks each
// state is persisted for the next bootstrap.
func TestManagerSignInSignOut(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storagerepo.NewMemoryStore()
	defer store.Close()

	m := session.NewManager(store)
	defer m.Close()
	m.Bootstrap(ctx)
	waitResolved(t, m)

	identity := domain.Identity{ID: 1, Username: "ada", Role: domain.RoleUser}
	require.NoError(t, m.SignIn(ctx, identity))

	snap := m.Snapshot()
	assert.Equal(t, domain.PhaseAuthenticated, snap.Phase)
	require.NotNil(t, snap.Identity)
	assert.Equal(t, "ada", snap.Identity.Username)

	// A second manager over the same slot rehydrates the signed-in identity.
	m2 := session.NewManager(store.Sibling())
	defer m2.Close()
	m2.Bootstrap(ctx)
	snap2 := waitResolved(t, m2)
	assert.Equal(t, domain.PhaseAuthenticated, snap2.Phase)

	require.NoError(t, m.SignOut(ctx))
	assert.Equal(t, domain.PhaseAnonymous, m.Snapshot().Phase)

	_, ok := store.Read(ctx, session.SlotKey)
	assert.False(t, ok, "sign-out must clear the persisted identity")
}

// TestManagerSubscribe verifies subscribers hear transitions and that
// unsubscribing stops delivery.
func TestManagerSubscribe(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storagerepo.NewMemoryStore()
	defer store.Close()

	m := session.NewManager(store)
	defer m.Close()
	m.Bootstrap(ctx)
	waitResolved(t, m)

	var mu sync.Mutex
	var phases []domain.Phase

	unsub := m.Subscribe(func(snap domain.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		phases = append(phases, snap.Phase)
	})

	identity := domain.Identity{ID: 1, Username: "ada", Role: domain.RoleUser}
	require.NoError(t, m.SignIn(ctx, identity))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(phases) == 1 && phases[0] == domain.PhaseAuthenticated
	}, time.Second, 10*time.Millisecond)

	unsub()
	require.NoError(t, m.SignOut(ctx))

	assert.Never(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(phases) > 1
	}, 200*time.Millisecond, 20*time.Millisecond)
}

// TestManagerCrossContextTransition verifies that signing in from another
// context moves a resolved session here too.
func TestManagerCrossContextTransition(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storagerepo.NewMemoryStore()
	defer store.Close()

	m := session.NewManager(store)
	defer m.Close()
	m.Bootstrap(ctx)
	waitResolved(t, m)

	other := session.NewManager(store.Sibling())
	defer other.Close()
	other.Bootstrap(ctx)
	waitResolved(t, other)

	identity := domain.Identity{ID: 1, Username: "ada", Role: domain.RoleUser}
	require.NoError(t, other.SignIn(ctx, identity))

	require.Eventually(t, func() bool {
		snap := m.Snapshot()
		return snap.Phase == domain.PhaseAuthenticated &&
			snap.Identity != nil && snap.Identity.Username == "ada"
	}, time.Second, 10*time.Millisecond)

	// And signing out elsewhere signs out here.
	require.NoError(t, other.SignOut(ctx))

	require.Eventually(t, func() bool {
		return m.Snapshot().Phase == domain.PhaseAnonymous
	}, time.Second, 10*time.Millisecond)
}

// TestManagerCloseDropsPendingBootstrap verifies a bootstrap resolving after
// Close does not resurrect the session.
func TestManagerCloseDropsPendingBootstrap(t *testing.T) {
	t.Parallel()

	store := storagerepo.NewMemoryStore()
	defer store.Close()

	m := session.NewManager(store)
	m.Close()
	m.Bootstrap(context.Background())

	assert.Never(t, func() bool {
		return m.Snapshot().Resolved()
	}, 200*time.Millisecond, 20*time.Millisecond)
}
