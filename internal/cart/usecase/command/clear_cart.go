package command

import "github.com/tair/storefront/internal/cart/domain"

// ClearCartCommand represents the command to empty the cart
type ClearCartCommand struct{}

// ClearCartHandler handles the clear cart command
type ClearCartHandler struct {
	cart domain.CartStore
}

// NewClearCartHandler creates a new clear cart handler
func NewClearCartHandler(cart domain.CartStore) *ClearCartHandler {
	return &ClearCartHandler{cart: cart}
}

// Handle executes the clear cart command
func (h *ClearCartHandler) Handle(_ ClearCartCommand) error {
	return h.cart.Clear()
}
