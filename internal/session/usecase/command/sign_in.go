package command

import (
	"context"
	"fmt"

	"github.com/tair/storefront/internal/session/domain"
	"github.com/tair/storefront/pkg/auth"
)

// SignInCommand represents the command to sign a shopper in
type SignInCommand struct {
	Username string
	Password string
}

// SignInResponse represents the response after a successful sign-in
type SignInResponse struct {
	Token    string          `json:"token"`
	Identity domain.Identity `json:"identity"`
}

// SignInHandler handles the sign-in command
type SignInHandler struct {
	accounts domain.AccountRepository
	manager  domain.SessionManager
}

// NewSignInHandler creates a new sign-in handler
func NewSignInHandler(accounts domain.AccountRepository, manager domain.SessionManager) *SignInHandler {
	return &SignInHandler{accounts: accounts, manager: manager}
}

// Handle executes the sign-in command
func (h *SignInHandler) Handle(ctx context.Context, cmd SignInCommand) (*SignInResponse, error) {
	// Validation
	if cmd.Username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if cmd.Password == "" {
		return nil, fmt.Errorf("password is required")
	}

	account, err := h.accounts.FindByUsername(cmd.Username)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	if !account.IsActive {
		return nil, fmt.Errorf("account is deactivated")
	}

	if !auth.CheckPassword(account.PasswordHash, cmd.Password) {
		return nil, fmt.Errorf("invalid credentials")
	}

	token, err := auth.GenerateToken(account.ID, account.Username, account.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	identity := account.Identity()
	if err := h.manager.SignIn(ctx, identity); err != nil {
		return nil, err
	}

	return &SignInResponse{
		Token:    token,
		Identity: identity,
	}, nil
}
