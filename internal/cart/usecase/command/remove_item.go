package command

import (
	"fmt"

	"github.com/tair/storefront/internal/cart/domain"
)

// RemoveItemCommand represents the command to remove a product from the cart
type RemoveItemCommand struct {
	ProductID uint
}

// RemoveItemHandler handles the remove item command
type RemoveItemHandler struct {
	cart domain.CartStore
}

// NewRemoveItemHandler creates a new remove item handler
func NewRemoveItemHandler(cart domain.CartStore) *RemoveItemHandler {
	return &RemoveItemHandler{cart: cart}
}

// Handle executes the remove item command
func (h *RemoveItemHandler) Handle(cmd RemoveItemCommand) error {
	if cmd.ProductID == 0 {
		return fmt.Errorf("invalid product id")
	}

	return h.cart.Remove(cmd.ProductID)
}
