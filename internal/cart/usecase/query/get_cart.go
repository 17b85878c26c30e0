package query

import "github.com/tair/storefront/internal/cart/domain"

// GetCartQuery represents the query for the current cart contents
type GetCartQuery struct{}

// GetCartResult carries the cart lines and the derived totals
type GetCartResult struct {
	Items     []domain.Line `json:"items"`
	ItemCount int           `json:"item_count"`
	IsEmpty   bool          `json:"is_empty"`
}

// GetCartHandler handles the get cart query
type GetCartHandler struct {
	cart domain.CartStore
}

// NewGetCartHandler creates a new get cart handler
func NewGetCartHandler(cart domain.CartStore) *GetCartHandler {
	return &GetCartHandler{cart: cart}
}

// Handle executes the get cart query
func (h *GetCartHandler) Handle(_ GetCartQuery) GetCartResult {
	return GetCartResult{
		Items:     h.cart.Items(),
		ItemCount: h.cart.ItemCount(),
		IsEmpty:   h.cart.IsEmpty(),
	}
}
