package query

import (
	"fmt"

	"github.com/tair/storefront/internal/catalog/domain"
)

// ListProductsQuery represents the query to list products
type ListProductsQuery struct {
	Limit  int
	Offset int
	Search string // Optional: free-text filter on name and description
}

// ListProductsHandler handles list products query
type ListProductsHandler struct {
	repo domain.ProductRepository
}

// NewListProductsHandler creates a new list products handler
func NewListProductsHandler(repo domain.ProductRepository) *ListProductsHandler {
	return &ListProductsHandler{repo: repo}
}

// Handle executes the list products query
func (h *ListProductsHandler) Handle(query ListProductsQuery) ([]domain.Product, error) {
	var products []domain.Product
	var err error

	if query.Limit <= 0 {
		query.Limit = 50
	}

	if query.Search != "" {
		products, err = h.repo.Search(query.Search, query.Limit, query.Offset)
	} else {
		products, err = h.repo.FindAll(query.Limit, query.Offset)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}
