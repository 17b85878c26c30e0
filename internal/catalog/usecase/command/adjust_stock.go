package command

import (
	"fmt"

	"github.com/tair/storefront/internal/catalog/domain"
)

// AdjustStockCommand applies a relative stock change, typically a decrement
// when an order is fulfilled.
type AdjustStockCommand struct {
	ProductID uint
	Delta     int
}

// AdjustStockHandler handles stock adjustment command
type AdjustStockHandler struct {
	repo domain.ProductRepository
}

// NewAdjustStockHandler creates a new adjust stock handler
func NewAdjustStockHandler(repo domain.ProductRepository) *AdjustStockHandler {
	return &AdjustStockHandler{repo: repo}
}

// Handle executes the adjust stock command
func (h *AdjustStockHandler) Handle(cmd AdjustStockCommand) error {
	if cmd.ProductID == 0 {
		return fmt.Errorf("product id is required")
	}
	if cmd.Delta == 0 {
		return nil
	}

	if err := h.repo.AdjustStock(cmd.ProductID, cmd.Delta); err != nil {
		return fmt.Errorf("failed to adjust stock: %w", err)
	}

	return nil
}
