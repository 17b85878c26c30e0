package domain

import "context"

// Role types
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity represents the authenticated shopper
type Identity struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// IsAdmin checks if the identity has the admin role
func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Phase is the resolution state of the session.
//
// A session starts Unknown, enters Loading while the persisted identity is
// being rehydrated, and resolves to Authenticated or Anonymous. Loading is a
// third truth value: consumers must not decide "unauthenticated" before the
// phase has resolved.
type Phase string

const (
	PhaseUnknown       Phase = "unknown"
	PhaseLoading       Phase = "loading"
	PhaseAuthenticated Phase = "authenticated"
	PhaseAnonymous     Phase = "anonymous"
)

// Snapshot is an immutable view of the session at a point in time. Identity
// is non-nil exactly when Phase is PhaseAuthenticated.
type Snapshot struct {
	Phase    Phase     `json:"phase"`
	Identity *Identity `json:"identity,omitempty"`
}

// Resolved reports whether the rehydration attempt has finished.
func (s Snapshot) Resolved() bool {
	return s.Phase == PhaseAuthenticated || s.Phase == PhaseAnonymous
}

// SessionManager is the session lifecycle surface the use cases depend on.
type SessionManager interface {
	Snapshot() Snapshot
	SignIn(ctx context.Context, identity Identity) error
	SignOut(ctx context.Context) error
}
