package purchasing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/richland-auto/inventory-api/internal/application/audit"
	"github.com/richland-auto/inventory-api/internal/application/dto"
	"github.com/richland-auto/inventory-api/internal/application/ledger"
	"github.com/richland-auto/inventory-api/internal/application/ports"
	"github.com/richland-auto/inventory-api/internal/domain"
	"github.com/richland-auto/inventory-api/internal/domain/entity"
	"github.com/richland-auto/inventory-api/internal/domain/repository"
)

// UseCase drives purchase orders from draft to completion. Completing an
// order books one stock-in per line item through the ledger, all inside a
// single database transaction: either every line lands or none does.
type UseCase struct {
	txRunner     ports.TxRunner
	orderRepo    repository.PurchaseOrderRepository
	supplierRepo repository.SupplierRepository
	productRepo  repository.ProductRepository
	ledgerUC     *ledger.UseCase
}

// NewUseCase builds the use case.
func NewUseCase(
	txRunner ports.TxRunner,
	orderRepo repository.PurchaseOrderRepository,
	supplierRepo repository.SupplierRepository,
	productRepo repository.ProductRepository,
	ledgerUC *ledger.UseCase,
) *UseCase {
	return &UseCase{
		txRunner:     txRunner,
		orderRepo:    orderRepo,
		supplierRepo: supplierRepo,
		productRepo:  productRepo,
		ledgerUC:     ledgerUC,
	}
}

// Create opens a draft order for a supplier, optionally with initial lines.
func (uc *UseCase) Create(ctx context.Context, actor entity.Actor, input dto.CreatePurchaseOrderRequest) (*entity.PurchaseOrder, error) {
	if !actor.HasRole(entity.RoleOwner, entity.RoleAdmin, entity.RoleStockManager) {
		return nil, fmt.Errorf("create purchase order requires a catalog role: %w", domain.ErrForbidden)
	}

	supplier, err := uc.supplierRepo.GetByID(ctx, input.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, fmt.Errorf("supplier %s does not exist: %w", input.SupplierID, domain.ErrValidation)
	}

	items := make([]entity.PurchaseOrderItem, 0, len(input.Items))
	for _, it := range input.Items {
		item, err := uc.buildItem(ctx, it.ProductID, it.Quantity)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	now := time.Now()
	id := uuid.New().String()
	po := &entity.PurchaseOrder{
		ID:         id,
		Number:     orderNumber(id),
		SupplierID: supplier.ID,
		Supplier:   supplier.Name,
		Status:     entity.POStatusDraft,
		Items:      items,
		CreatedBy:  actor.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = uc.txRunner.Run(ctx, func(r ports.TxRepos) error {
		if err := r.Orders.Create(ctx, po); err != nil {
			return err
		}
		changes := []entity.FieldChange{
			{Field: "status", New: entity.POStatusDraft},
			{Field: "supplier_id", New: supplier.ID},
		}
		for _, it := range po.Items {
			changes = append(changes, entity.FieldChange{Field: "item_added", New: itemLabel(it)})
		}
		return audit.Record(ctx, r.Audit, actor, entity.AuditEntityPurchaseOrder, po.ID, changes, now)
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}

// buildItem validates a requested line against the catalog.
func (uc *UseCase) buildItem(ctx context.Context, productID string, quantity int64) (*entity.PurchaseOrderItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("line quantity %d must be positive: %w", quantity, domain.ErrValidation)
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("product %s does not exist: %w", productID, domain.ErrValidation)
	}
	if !product.IsActive() {
		return nil, fmt.Errorf("product %s is deactivated: %w", product.SKU, domain.ErrConflict)
	}
	return &entity.PurchaseOrderItem{
		ID:        uuid.New().String(),
		ProductID: product.ID,
		SKU:       product.SKU,
		Name:      product.Name,
		Quantity:  quantity,
	}, nil
}

func itemLabel(it entity.PurchaseOrderItem) string {
	return fmt.Sprintf("%s x%d", it.SKU, it.Quantity)
}

// orderNumber derives the human reference from the order id.
func orderNumber(id string) string {
	compact := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	return "PO-" + compact[:8]
}

// AddItem appends a line to a draft.
func (uc *UseCase) AddItem(ctx context.Context, actor entity.Actor, orderID string, input dto.PurchaseOrderItemRequest) (*entity.PurchaseOrder, error) {
	if !actor.HasRole(entity.RoleOwner, entity.RoleAdmin, entity.RoleStockManager) {
		return nil, fmt.Errorf("edit purchase order requires a catalog role: %w", domain.ErrForbidden)
	}

	item, err := uc.buildItem(ctx, input.ProductID, input.Quantity)
	if err != nil {
		return nil, err
	}

	var updated *entity.PurchaseOrder
	err = uc.txRunner.Run(ctx, func(r ports.TxRepos) error {
		po, err := uc.load(ctx, r, orderID)
		if err != nil {
			return err
		}
		if !po.Editable() {
			return fmt.Errorf("order %s is %s, lines are frozen: %w", po.Number, po.Status, domain.ErrInvalidOperation)
		}
		if err := r.Orders.AddItem(ctx, po.ID, item); err != nil {
			return err
		}
		po.Items = append(po.Items, *item)
		updated = po
		return audit.Record(ctx, r.Audit, actor, entity.AuditEntityPurchaseOrder, po.ID,
			[]entity.FieldChange{{Field: "item_added", New: itemLabel(*item)}}, time.Now())
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveItem drops a line from a draft.
func (uc *UseCase) RemoveItem(ctx context.Context, actor entity.Actor, orderID, itemID string) (*entity.PurchaseOrder, error) {
	if !actor.HasRole(entity.RoleOwner, entity.RoleAdmin, entity.RoleStockManager) {
		return nil, fmt.Errorf("edit purchase order requires a catalog role: %w", domain.ErrForbidden)
	}

	var updated *entity.PurchaseOrder
	err := uc.txRunner.Run(ctx, func(r ports.TxRepos) error {
		po, err := uc.load(ctx, r, orderID)
		if err != nil {
			return err
		}
		if !po.Editable() {
			return fmt.Errorf("order %s is %s, lines are frozen: %w", po.Number, po.Status, domain.ErrInvalidOperation)
		}

		idx := -1
		for i, it := range po.Items {
			if it.ID == itemID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("order line %s: %w", itemID, domain.ErrNotFound)
		}
		removed := po.Items[idx]

		if err := r.Orders.RemoveItem(ctx, po.ID, itemID); err != nil {
			return err
		}
		po.Items = append(po.Items[:idx], po.Items[idx+1:]...)
		updated = po
		return audit.Record(ctx, r.Audit, actor, entity.AuditEntityPurchaseOrder, po.ID,
			[]entity.FieldChange{{Field: "item_removed", Old: itemLabel(removed)}}, time.Now())
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Submit moves a draft with lines to submitted.
func (uc *UseCase) Submit(ctx context.Context, actor entity.Actor, orderID string) (*entity.PurchaseOrder, error) {
	if !actor.HasRole(entity.RoleOwner, entity.RoleAdmin, entity.RoleStockManager) {
		return nil, fmt.Errorf("submit purchase order requires a catalog role: %w", domain.ErrForbidden)
	}
	return uc.transition(ctx, actor, orderID, func(po *entity.PurchaseOrder) error { return po.Submit() })
}

// Cancel closes an open order without touching stock.
func (uc *UseCase) Cancel(ctx context.Context, actor entity.Actor, orderID string) (*entity.PurchaseOrder, error) {
	if !actor.HasRole(entity.RoleOwner, entity.RoleAdmin, entity.RoleStockManager) {
		return nil, fmt.Errorf("cancel purchase order requires a catalog role: %w", domain.ErrForbidden)
	}
	return uc.transition(ctx, actor, orderID, func(po *entity.PurchaseOrder) error { return po.Cancel() })
}

// transition applies an entity state change and persists it with
// compare-and-set, auditing the status flip.
func (uc *UseCase) transition(ctx context.Context, actor entity.Actor, orderID string,
	apply func(*entity.PurchaseOrder) error) (*entity.PurchaseOrder, error) {

	var updated *entity.PurchaseOrder
	err := uc.txRunner.Run(ctx, func(r ports.TxRepos) error {
		po, err := uc.load(ctx, r, orderID)
		if err != nil {
			return err
		}
		previous := po.Status
		if err := apply(po); err != nil {
			return err
		}
		now := time.Now()
		po.UpdatedAt = now
		if err := r.Orders.UpdateStatus(ctx, po, previous); err != nil {
			return err
		}
		updated = po
		return audit.Record(ctx, r.Audit, actor, entity.AuditEntityPurchaseOrder, po.ID,
			[]entity.FieldChange{{Field: "status", Old: previous, New: po.Status}}, now)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Complete books every line as a stock-in and closes the order. Any line
// failure (missing or deactivated product) rolls the whole completion back,
// including the status flip.
func (uc *UseCase) Complete(ctx context.Context, actor entity.Actor, orderID string) (*entity.PurchaseOrder, error) {
	if !actor.HasRole(entity.RoleOwner, entity.RoleStockManager) {
		return nil, fmt.Errorf("complete purchase order requires owner or stock manager: %w", domain.ErrForbidden)
	}

	var completed *entity.PurchaseOrder
	err := uc.txRunner.Run(ctx, func(r ports.TxRepos) error {
		po, err := uc.load(ctx, r, orderID)
		if err != nil {
			return err
		}
		previous := po.Status
		if err := po.Complete(); err != nil {
			return err
		}

		now := time.Now()
		po.UpdatedAt = now
		// CAS first: a concurrent completion loses here and rolls back
		// before any stock lands.
		if err := r.Orders.UpdateStatus(ctx, po, previous); err != nil {
			return err
		}

		note := fmt.Sprintf("Received on purchase order %s.", po.Number)
		for _, item := range po.Items {
			if _, err := uc.ledgerUC.StockInTx(ctx, r, actor, item.ProductID, item.Quantity, po.ID, note, now); err != nil {
				return fmt.Errorf("line %s: %w", item.SKU, err)
			}
		}

		completed = po
		return audit.Record(ctx, r.Audit, actor, entity.AuditEntityPurchaseOrder, po.ID,
			[]entity.FieldChange{{Field: "status", Old: previous, New: po.Status}}, now)
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

func (uc *UseCase) load(ctx context.Context, r ports.TxRepos, orderID string) (*entity.PurchaseOrder, error) {
	po, err := r.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, fmt.Errorf("purchase order %s: %w", orderID, domain.ErrNotFound)
	}
	return po, nil
}

// Get returns one order with its lines.
func (uc *UseCase) Get(ctx context.Context, orderID string) (*entity.PurchaseOrder, error) {
	po, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, fmt.Errorf("purchase order %s: %w", orderID, domain.ErrNotFound)
	}
	return po, nil
}

// List returns filtered orders, newest first.
func (uc *UseCase) List(ctx context.Context, filter repository.PurchaseOrderFilter) ([]*entity.PurchaseOrder, error) {
	if filter.Status != "" {
		switch filter.Status {
		case entity.POStatusDraft, entity.POStatusSubmitted, entity.POStatusCompleted, entity.POStatusCancelled:
		default:
			return nil, fmt.Errorf("order status %q: %w", filter.Status, domain.ErrValidation)
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return uc.orderRepo.List(ctx, filter)
}
