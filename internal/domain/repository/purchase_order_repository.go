package repository

import (
	"context"

	"github.com/richland-auto/inventory-api/internal/domain/entity"
)

// PurchaseOrderFilter narrows order listings (newest first).
type PurchaseOrderFilter struct {
	Status     string
	SupplierID string
	Limit      int
	Offset     int
}

// PurchaseOrderRepository is the persistence port for PurchaseOrder and its
// line items. Get and List hydrate items.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	// UpdateStatus persists po.Status with compare-and-set semantics: the
	// write applies only while the stored status still equals previous,
	// otherwise ErrConflict. Keeps concurrent transitions single-winner.
	UpdateStatus(ctx context.Context, po *entity.PurchaseOrder, previous string) error
	AddItem(ctx context.Context, poID string, item *entity.PurchaseOrderItem) error
	RemoveItem(ctx context.Context, poID, itemID string) error
	List(ctx context.Context, filter PurchaseOrderFilter) ([]*entity.PurchaseOrder, error)
	// CountOpenByProduct backs the deactivation guard: products on draft or
	// submitted orders cannot be deactivated.
	CountOpenByProduct(ctx context.Context, productID string) (int64, error)
}
