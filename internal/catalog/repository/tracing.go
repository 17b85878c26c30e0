package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tair/storefront/internal/catalog/domain"
)

var tracer = otel.Tracer("catalog-repository")

// GormProductRepositoryWithTracing wraps GormProductRepository with tracing
type GormProductRepositoryWithTracing struct {
	*GormProductRepository
}

// NewGormProductRepositoryWithTracing creates a new repository with tracing
func NewGormProductRepositoryWithTracing(db *gorm.DB) *GormProductRepositoryWithTracing {
	return &GormProductRepositoryWithTracing{
		GormProductRepository: NewGormProductRepository(db),
	}
}

// FindByIDWithContext looks up a product under a repository span
func (r *GormProductRepositoryWithTracing) FindByIDWithContext(ctx context.Context, id uint) (*domain.Product, error) {
	_, span := tracer.Start(ctx, "repository.FindByID",
		trace.WithAttributes(
			attribute.Int("product.id", int(id)),
		),
	)
	defer span.End()

	product, err := r.GormProductRepository.FindByID(id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("product.name", product.Name),
		attribute.Bool("product.is_active", product.IsActive),
	)
	return product, nil
}

// SearchWithContext runs a catalog search under a repository span
func (r *GormProductRepositoryWithTracing) SearchWithContext(ctx context.Context, term string, limit, offset int) ([]domain.Product, error) {
	_, span := tracer.Start(ctx, "repository.Search",
		trace.WithAttributes(
			attribute.String("query.term", term),
			attribute.Int("query.limit", limit),
			attribute.Int("query.offset", offset),
		),
	)
	defer span.End()

	products, err := r.GormProductRepository.Search(term, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(products)))
	return products, nil
}

// AdjustStockWithContext applies a stock delta under a repository span
func (r *GormProductRepositoryWithTracing) AdjustStockWithContext(ctx context.Context, id uint, delta int) error {
	_, span := tracer.Start(ctx, "repository.AdjustStock",
		trace.WithAttributes(
			attribute.Int("product.id", int(id)),
			attribute.Int("stock.delta", delta),
		),
	)
	defer span.End()

	err := r.GormProductRepository.AdjustStock(id, delta)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
