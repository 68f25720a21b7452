package repository

import (
	"context"

	"github.com/richland-auto/inventory-api/internal/domain/entity"
)

// ProductFilter narrows product listings. Zero values mean "no filter".
type ProductFilter struct {
	Query      string // matches name or SKU, case-insensitive
	CategoryID string
	Status     string
	Limit      int
	Offset     int
}

// ProductRepository is the persistence port for Product (DIP).
// UpdateQuantity exists for the ledger alone; catalog code never calls it.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// GetForUpdate locks the product row (SELECT FOR UPDATE) so balance
	// reads and writes serialize per product. Only valid inside a tx.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	UpdateQuantity(ctx context.Context, id string, quantity int64) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	ListLowStock(ctx context.Context) ([]*entity.Product, error)
	CountByCategory(ctx context.Context, categoryID string) (int64, error)
}
