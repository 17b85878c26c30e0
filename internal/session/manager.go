package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/tair/storefront/internal/session/domain"
	storage "github.com/tair/storefront/internal/storage/domain"
	"github.com/tair/storefront/pkg/logger"
)

// SlotKey is the storage key holding the persisted identity.
const SlotKey = "auth"

// Manager owns the session lifecycle: it rehydrates the persisted identity
// asynchronously on bootstrap, exposes the current snapshot, and persists
// sign-in/sign-out transitions.
type Manager struct {
	slot storage.Slot[domain.Identity]

	mu      sync.RWMutex
	snap    domain.Snapshot
	subs    map[int]func(domain.Snapshot)
	nextSub int
	closed  bool

	unwatch func()
}

// NewManager creates a session manager over the given store. The session
// starts in PhaseUnknown; call Bootstrap to begin rehydration.
func NewManager(store storage.Store) *Manager {
	m := &Manager{
		slot: storage.NewSlot[domain.Identity](store, SlotKey),
		snap: domain.Snapshot{Phase: domain.PhaseUnknown},
		subs: make(map[int]func(domain.Snapshot)),
	}

	// Another process signing in or out on the shared slot moves this
	// session too, once it has resolved locally.
	m.unwatch = m.slot.Watch(func(identity domain.Identity, present bool) {
		m.mu.Lock()
		if m.closed || !m.snap.Resolved() {
			m.mu.Unlock()
			return
		}
		if present {
			m.setLocked(domain.Snapshot{Phase: domain.PhaseAuthenticated, Identity: &identity})
		} else {
			m.setLocked(domain.Snapshot{Phase: domain.PhaseAnonymous})
		}
		m.mu.Unlock()
	})

	return m
}

// Bootstrap starts asynchronous rehydration of the persisted identity. The
// session is Loading until the attempt resolves. A pending bootstrap is not
// cancellable, but its result is dropped if the manager was closed first.
func (m *Manager) Bootstrap(ctx context.Context) {
	m.mu.Lock()
	m.setLocked(domain.Snapshot{Phase: domain.PhaseLoading})
	m.mu.Unlock()

	go func() {
		identity, present := m.slot.Load(ctx)

		m.mu.Lock()
		defer m.mu.Unlock()
		if m.closed {
			return
		}
		if present {
			m.setLocked(domain.Snapshot{Phase: domain.PhaseAuthenticated, Identity: &identity})
			logger.Info(ctx).Str("username", identity.Username).Msg("Session rehydrated")
		} else {
			m.setLocked(domain.Snapshot{Phase: domain.PhaseAnonymous})
			logger.Debug(ctx).Msg("No persisted session, starting anonymous")
		}
	}()
}

// Snapshot returns the current session state.
func (m *Manager) Snapshot() domain.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

// Subscribe registers fn for session changes and returns an unsubscribe
// function. fn is invoked with the snapshot current at each transition.
func (m *Manager) Subscribe(fn func(domain.Snapshot)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// SignIn persists the identity and transitions to Authenticated.
func (m *Manager) SignIn(ctx context.Context, identity domain.Identity) error {
	if err := m.slot.Save(ctx, identity); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	m.mu.Lock()
	m.setLocked(domain.Snapshot{Phase: domain.PhaseAuthenticated, Identity: &identity})
	m.mu.Unlock()
	return nil
}

// SignOut clears the persisted identity and transitions to Anonymous.
func (m *Manager) SignOut(ctx context.Context) error {
	if err := m.slot.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	m.mu.Lock()
	m.setLocked(domain.Snapshot{Phase: domain.PhaseAnonymous})
	m.mu.Unlock()
	return nil
}

// Close tears the manager down. A bootstrap still in flight resolves into
// the void.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.subs = make(map[int]func(domain.Snapshot))
	m.mu.Unlock()

	if m.unwatch != nil {
		m.unwatch()
	}
}

// setLocked replaces the snapshot and notifies subscribers. Callers hold mu.
func (m *Manager) setLocked(snap domain.Snapshot) {
	m.snap = snap
	for _, fn := range m.subs {
		fn := fn
		go fn(snap)
	}
}
