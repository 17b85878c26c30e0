package command

import (
	"fmt"

	"github.com/tair/storefront/internal/cart/domain"
)

// AddItemCommand represents the command to add a product to the cart
type AddItemCommand struct {
	ProductID uint
	Quantity  int
}

// AddItemHandler handles the add item command
type AddItemHandler struct {
	cart domain.CartStore
}

// NewAddItemHandler creates a new add item handler
func NewAddItemHandler(cart domain.CartStore) *AddItemHandler {
	return &AddItemHandler{cart: cart}
}

// Handle executes the add item command
func (h *AddItemHandler) Handle(cmd AddItemCommand) error {
	// Validation
	if cmd.ProductID == 0 {
		return fmt.Errorf("invalid product id")
	}
	if cmd.Quantity == 0 {
		cmd.Quantity = 1
	}

	return h.cart.Add(cmd.ProductID, cmd.Quantity)
}
