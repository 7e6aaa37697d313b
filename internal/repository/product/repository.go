package product

import (
	"context"

	"pos-admin/internal/domain"
)

// Repository persists catalog items in the products table.
type Repository interface {
	List(ctx context.Context) ([]domain.Item, error)
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Item, error)
	Create(ctx context.Context, item domain.Item) (*domain.Item, error)
	Update(ctx context.Context, item domain.Item) (*domain.Item, error)
	Delete(ctx context.Context, id string) error
	Upsert(ctx context.Context, item domain.Item) (*domain.Item, error)
}
