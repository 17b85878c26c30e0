package command

import (
	"fmt"

	"github.com/tair/storefront/internal/favorites/domain"
)

// ToggleFavoriteCommand represents the command to toggle a favorite
type ToggleFavoriteCommand struct {
	ProductID uint
	Name      string
	Price     float64
	ImageURL  string
}

// ToggleFavoriteHandler handles the toggle favorite command
type ToggleFavoriteHandler struct {
	favorites domain.FavoritesStore
}

// NewToggleFavoriteHandler creates a new toggle favorite handler
func NewToggleFavoriteHandler(favorites domain.FavoritesStore) *ToggleFavoriteHandler {
	return &ToggleFavoriteHandler{favorites: favorites}
}

// Handle executes the toggle favorite command and reports whether the
// product is favorited afterwards.
func (h *ToggleFavoriteHandler) Handle(cmd ToggleFavoriteCommand) (bool, error) {
	if cmd.ProductID == 0 {
		return false, fmt.Errorf("invalid product id")
	}

	if err := h.favorites.Toggle(domain.Entry{
		ProductID: cmd.ProductID,
		Name:      cmd.Name,
		Price:     cmd.Price,
		ImageURL:  cmd.ImageURL,
	}); err != nil {
		return false, err
	}

	return h.favorites.Contains(cmd.ProductID), nil
}
