//go:build wireinject
// +build wireinject

package cart

import (
	"github.com/google/wire"

	httpDelivery "github.com/tair/storefront/internal/cart/delivery/http"
	"github.com/tair/storefront/internal/cart/domain"
	"github.com/tair/storefront/internal/cart/usecase/command"
	"github.com/tair/storefront/internal/cart/usecase/query"
)

// Command Handlers Providers
func ProvideAddItemHandler(cart domain.CartStore) *command.AddItemHandler {
	return command.NewAddItemHandler(cart)
}

func ProvideSetQuantityHandler(cart domain.CartStore) *command.SetQuantityHandler {
	return command.NewSetQuantityHandler(cart)
}

func ProvideRemoveItemHandler(cart domain.CartStore) *command.RemoveItemHandler {
	return command.NewRemoveItemHandler(cart)
}

func ProvideClearCartHandler(cart domain.CartStore) *command.ClearCartHandler {
	return command.NewClearCartHandler(cart)
}

// Query Handlers Providers
func ProvideGetCartHandler(cart domain.CartStore) *query.GetCartHandler {
	return query.NewGetCartHandler(cart)
}

func ProvideCountItemsHandler(cart domain.CartStore) *query.CountItemsHandler {
	return query.NewCountItemsHandler(cart)
}

// Wire sets
var CommandHandlerSet = wire.NewSet(
	ProvideAddItemHandler,
	ProvideSetQuantityHandler,
	ProvideRemoveItemHandler,
	ProvideClearCartHandler,
)

var QueryHandlerSet = wire.NewSet(
	ProvideGetCartHandler,
	ProvideCountItemsHandler,
)

var AllHandlersSet = wire.NewSet(
	CommandHandlerSet,
	QueryHandlerSet,
)

// InitializeCartHandler initializes the HTTP handler with all dependencies
func InitializeCartHandler(store domain.CartStore) (*httpDelivery.CartHandler, error) {
	wire.Build(
		AllHandlersSet,
		httpDelivery.NewCartHandler,
	)
	return nil, nil
}
