package guard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tair/storefront/internal/session/domain"
	"github.com/tair/storefront/internal/session/guard"
)

// TestDecide covers the guard rules in order: unresolved sessions wait,
// anonymous visitors go to sign-in, missing roles are denied, everything
// else renders.
func TestDecide(t *testing.T) {
	t.Parallel()

	shopper := &domain.Identity{ID: 1, Username: "ada", Role: domain.RoleUser}
	admin := &domain.Identity{ID: 2, Username: "root", Role: domain.RoleAdmin}

	testCases := []struct {
		name     string
		snap     domain.Snapshot
		required []string
		want     guard.Kind
	}{
		{
			name: "unknown session waits",
			snap: domain.Snapshot{Phase: domain.PhaseUnknown},
			want: guard.Wait,
		},
		{
			name: "loading session waits, never redirects",
			snap: domain.Snapshot{Phase: domain.PhaseLoading},
			want: guard.Wait,
		},
		{
			name:     "loading session waits even for role-gated routes",
			snap:     domain.Snapshot{Phase: domain.PhaseLoading},
			required: []string{domain.RoleAdmin},
			want:     guard.Wait,
		},
		{
			name: "anonymous visitor redirects to sign-in",
			snap: domain.Snapshot{Phase: domain.PhaseAnonymous},
			want: guard.RedirectToSignIn,
		},
		{
			name: "authenticated shopper renders",
			snap: domain.Snapshot{Phase: domain.PhaseAuthenticated, Identity: shopper},
			want: guard.Render,
		},
		{
			name:     "shopper without required role is denied",
			snap:     domain.Snapshot{Phase: domain.PhaseAuthenticated, Identity: shopper},
			required: []string{domain.RoleAdmin},
			want:     guard.RedirectDenied,
		},
		{
			name:     "admin passes the role gate",
			snap:     domain.Snapshot{Phase: domain.PhaseAuthenticated, Identity: admin},
			required: []string{domain.RoleAdmin},
			want:     guard.Render,
		},
		{
			name:     "any of several roles suffices",
			snap:     domain.Snapshot{Phase: domain.PhaseAuthenticated, Identity: shopper},
			required: []string{domain.RoleAdmin, domain.RoleUser},
			want:     guard.Render,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := guard.Decide(tc.snap, tc.required)
			assert.Equal(t, tc.want, got.Kind)
		})
	}
}

// TestDecideReasons verifies redirects carry a human-readable reason for the
// target page to display.
func TestDecideReasons(t *testing.T) {
	t.Parallel()

	anonymous := guard.Decide(domain.Snapshot{Phase: domain.PhaseAnonymous}, nil)
	assert.Equal(t, "Please sign in to continue", anonymous.Reason)

	shopper := &domain.Identity{ID: 1, Username: "ada", Role: domain.RoleUser}
	denied := guard.Decide(
		domain.Snapshot{Phase: domain.PhaseAuthenticated, Identity: shopper},
		[]string{domain.RoleAdmin},
	)
	assert.Equal(t, "Access Denied", denied.Reason)
}
