package middleware

import (
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tair/storefront/internal/session"
	sessiondomain "github.com/tair/storefront/internal/session/domain"
	"github.com/tair/storefront/internal/session/guard"
)

// Paths the guard redirects to.
const (
	SignInPath = "/auth/signin"
	DeniedPath = "/"
)

// resolveTimeout bounds how long a request waits for the auth session to
// finish loading before giving up and telling the client to retry.
const resolveTimeout = 5 * time.Second

// SessionGuard protects a route with the auth session. Rendering is held
// until the session has resolved; an anonymous visitor is sent to sign-in
// and a resolved identity missing a required role is bounced to the home
// page with an explanation.
func SessionGuard(manager *session.Manager, requiredRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap := waitResolved(manager, resolveTimeout)

		decision := guard.Decide(snap, requiredRoles)
		switch decision.Kind {
		case guard.Wait:
			c.Set("Retry-After", "1")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"page":    "loading",
				"message": "Restoring your session",
			})
		case guard.RedirectToSignIn:
			return c.Redirect(SignInPath+"?message="+url.QueryEscape(decision.Reason), fiber.StatusFound)
		case guard.RedirectDenied:
			return c.Redirect(DeniedPath+"?message="+url.QueryEscape(decision.Reason), fiber.StatusFound)
		}

		if snap.Identity != nil {
			c.Locals("user_id", snap.Identity.ID)
			c.Locals("username", snap.Identity.Username)
			c.Locals("role", snap.Identity.Role)
		}

		return c.Next()
	}
}

// waitResolved blocks until the session leaves its loading phase or the
// timeout fires. The snapshot is returned as-is on timeout; the caller then
// sees an unresolved phase and renders the loading state.
func waitResolved(manager *session.Manager, timeout time.Duration) sessiondomain.Snapshot {
	snap := manager.Snapshot()
	if snap.Resolved() {
		return snap
	}

	resolved := make(chan sessiondomain.Snapshot, 1)
	unsubscribe := manager.Subscribe(func(s sessiondomain.Snapshot) {
		if s.Resolved() {
			select {
			case resolved <- s:
			default:
			}
		}
	})
	defer unsubscribe()

	// The snapshot may have resolved between the first check and the
	// subscription.
	if snap = manager.Snapshot(); snap.Resolved() {
		return snap
	}

	select {
	case s := <-resolved:
		return s
	case <-time.After(timeout):
		return manager.Snapshot()
	}
}
