package command

import (
	"fmt"
	"time"

	"github.com/tair/storefront/internal/session/domain"
	"github.com/tair/storefront/pkg/auth"
)

// RegisterAccountCommand represents the command to register a shopper
type RegisterAccountCommand struct {
	Username string
	Email    string
	Password string
	FullName string
	Role     string
}

// RegisterAccountHandler handles account registration
type RegisterAccountHandler struct {
	accounts domain.AccountRepository
}

// NewRegisterAccountHandler creates a new register account handler
func NewRegisterAccountHandler(accounts domain.AccountRepository) *RegisterAccountHandler {
	return &RegisterAccountHandler{accounts: accounts}
}

// Handle executes the register account command
func (h *RegisterAccountHandler) Handle(cmd RegisterAccountCommand) (*domain.Account, error) {
	// Validation
	if cmd.Username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if cmd.Email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if len(cmd.Password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters")
	}
	if cmd.FullName == "" {
		return nil, fmt.Errorf("full name is required")
	}
	if cmd.Role == "" {
		cmd.Role = domain.RoleUser
	}
	if cmd.Role != domain.RoleUser && cmd.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("invalid role: %s", cmd.Role)
	}

	if _, err := h.accounts.FindByUsername(cmd.Username); err == nil {
		return nil, fmt.Errorf("username already exists")
	}
	if _, err := h.accounts.FindByEmail(cmd.Email); err == nil {
		return nil, fmt.Errorf("email already exists")
	}

	hash, err := auth.HashPassword(cmd.Password)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		Username:     cmd.Username,
		Email:        cmd.Email,
		PasswordHash: hash,
		FullName:     cmd.FullName,
		Role:         cmd.Role,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := h.accounts.Create(account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}
