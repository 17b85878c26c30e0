// Package guard decides whether a protected view may render. The decision is
// a pure function of the session snapshot and the capabilities a route
// requires, so it is testable without any HTTP machinery; thin adapters at
// the delivery boundary turn decisions into responses and must re-invoke
// Decide on every session change.
package guard

import "github.com/tair/storefront/internal/session/domain"

// Kind classifies a guard decision.
type Kind int

const (
	// Render allows the protected view.
	Render Kind = iota
	// Wait means the session has not resolved yet; show a neutral loading
	// state and re-evaluate, never redirect.
	Wait
	// RedirectToSignIn sends an anonymous visitor to the sign-in page.
	RedirectToSignIn
	// RedirectDenied sends an authenticated visitor without the required
	// role back home.
	RedirectDenied
)

// Decision is the outcome of a guard evaluation.
type Decision struct {
	Kind   Kind
	Reason string
}

// Decide evaluates the guard rules in order:
//
//  1. An unresolved session yields Wait. Loading is a third truth value;
//     deciding "unauthenticated" here would cause spurious redirects on slow
//     rehydration.
//  2. An anonymous session yields RedirectToSignIn with a human-readable
//     reason.
//  3. A resolved identity lacking a required role yields RedirectDenied.
//  4. Otherwise Render.
func Decide(snap domain.Snapshot, required []string) Decision {
	if !snap.Resolved() {
		return Decision{Kind: Wait}
	}

	if snap.Phase == domain.PhaseAnonymous {
		return Decision{
			Kind:   RedirectToSignIn,
			Reason: "Please sign in to continue",
		}
	}

	if len(required) > 0 && !hasRole(snap.Identity, required) {
		return Decision{
			Kind:   RedirectDenied,
			Reason: "Access Denied",
		}
	}

	return Decision{Kind: Render}
}

func hasRole(identity *domain.Identity, required []string) bool {
	if identity == nil {
		return false
	}
	for _, role := range required {
		if identity.Role == role {
			return true
		}
	}
	return false
}
