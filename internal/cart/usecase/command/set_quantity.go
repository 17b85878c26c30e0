package command

import (
	"fmt"

	"github.com/tair/storefront/internal/cart/domain"
)

// SetQuantityCommand represents the command to change a line's quantity
type SetQuantityCommand struct {
	ProductID uint
	Quantity  int
}

// SetQuantityHandler handles the set quantity command
type SetQuantityHandler struct {
	cart domain.CartStore
}

// NewSetQuantityHandler creates a new set quantity handler
func NewSetQuantityHandler(cart domain.CartStore) *SetQuantityHandler {
	return &SetQuantityHandler{cart: cart}
}

// Handle executes the set quantity command. Quantity 0 removes the line.
func (h *SetQuantityHandler) Handle(cmd SetQuantityCommand) error {
	if cmd.ProductID == 0 {
		return fmt.Errorf("invalid product id")
	}

	return h.cart.SetQuantity(cmd.ProductID, cmd.Quantity)
}
