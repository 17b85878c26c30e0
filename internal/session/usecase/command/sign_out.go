package command

import (
	"context"

	"github.com/tair/storefront/internal/session/domain"
)

// SignOutCommand represents the command to sign the current shopper out
type SignOutCommand struct{}

// SignOutHandler handles the sign-out command
type SignOutHandler struct {
	manager domain.SessionManager
}

// NewSignOutHandler creates a new sign-out handler
func NewSignOutHandler(manager domain.SessionManager) *SignOutHandler {
	return &SignOutHandler{manager: manager}
}

// Handle executes the sign-out command
func (h *SignOutHandler) Handle(ctx context.Context, _ SignOutCommand) error {
	return h.manager.SignOut(ctx)
}
