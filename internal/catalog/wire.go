//go:build wireinject
// +build wireinject

package catalog

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	httpDelivery "github.com/tair/storefront/internal/catalog/delivery/http"
	"github.com/tair/storefront/internal/catalog/domain"
	"github.com/tair/storefront/internal/catalog/repository"
	"github.com/tair/storefront/internal/catalog/usecase/command"
	"github.com/tair/storefront/internal/catalog/usecase/query"
)

// ProvideProductRepository provides the product repository
func ProvideProductRepository(db *gorm.DB) domain.ProductRepository {
	return repository.NewGormProductRepository(db)
}

// Command Handlers Providers
func ProvideCreateProductHandler(repo domain.ProductRepository) *command.CreateProductHandler {
	return command.NewCreateProductHandler(repo)
}

func ProvideUpdateProductHandler(repo domain.ProductRepository) *command.UpdateProductHandler {
	return command.NewUpdateProductHandler(repo)
}

func ProvideDeleteProductHandler(repo domain.ProductRepository) *command.DeleteProductHandler {
	return command.NewDeleteProductHandler(repo)
}

func ProvideAdjustStockHandler(repo domain.ProductRepository) *command.AdjustStockHandler {
	return command.NewAdjustStockHandler(repo)
}

// Query Handlers Providers
func ProvideGetProductHandler(repo domain.ProductRepository) *query.GetProductHandler {
	return query.NewGetProductHandler(repo)
}

func ProvideListProductsHandler(repo domain.ProductRepository) *query.ListProductsHandler {
	return query.NewListProductsHandler(repo)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideProductRepository,
)

var CommandHandlerSet = wire.NewSet(
	ProvideCreateProductHandler,
	ProvideUpdateProductHandler,
	ProvideDeleteProductHandler,
	ProvideAdjustStockHandler,
)

var QueryHandlerSet = wire.NewSet(
	ProvideGetProductHandler,
	ProvideListProductsHandler,
)

var AllHandlersSet = wire.NewSet(
	RepositorySet,
	CommandHandlerSet,
	QueryHandlerSet,
)

// InitializeCatalogHandler initializes the HTTP handler with all dependencies
func InitializeCatalogHandler(db *gorm.DB) (*httpDelivery.CatalogHandler, error) {
	wire.Build(
		AllHandlersSet,
		httpDelivery.NewCatalogHandler,
	)
	return nil, nil
}
