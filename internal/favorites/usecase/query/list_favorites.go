package query

import "github.com/tair/storefront/internal/favorites/domain"

// ListFavoritesQuery represents the query for the favorites list
type ListFavoritesQuery struct{}

// ListFavoritesResult carries the entries and the derived count
type ListFavoritesResult struct {
	Items []domain.Entry `json:"items"`
	Count int            `json:"count"`
}

// ListFavoritesHandler handles the list favorites query
type ListFavoritesHandler struct {
	favorites domain.FavoritesStore
}

// NewListFavoritesHandler creates a new list favorites handler
func NewListFavoritesHandler(favorites domain.FavoritesStore) *ListFavoritesHandler {
	return &ListFavoritesHandler{favorites: favorites}
}

// Handle executes the list favorites query
func (h *ListFavoritesHandler) Handle(_ ListFavoritesQuery) ListFavoritesResult {
	return ListFavoritesResult{
		Items: h.favorites.Items(),
		Count: h.favorites.Count(),
	}
}
