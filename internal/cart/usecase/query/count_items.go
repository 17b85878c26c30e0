package query

import "github.com/tair/storefront/internal/cart/domain"

// CountItemsQuery represents the query for the cart badge count
type CountItemsQuery struct{}

// CountItemsHandler handles the count items query
type CountItemsHandler struct {
	cart domain.CartStore
}

// NewCountItemsHandler creates a new count items handler
func NewCountItemsHandler(cart domain.CartStore) *CountItemsHandler {
	return &CountItemsHandler{cart: cart}
}

// Handle executes the count items query. The count is the sum of
// quantities, not the number of lines.
func (h *CountItemsHandler) Handle(_ CountItemsQuery) int {
	return h.cart.ItemCount()
}
