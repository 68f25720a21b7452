package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/richland-auto/inventory-api/internal/domain"
	"github.com/richland-auto/inventory-api/internal/domain/entity"
	"github.com/richland-auto/inventory-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo implements the PurchaseOrderRepository port on
// PostgreSQL (works with pool or tx).
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository builds the persistence adapter for purchase
// orders and their line items.
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// Create persists the order header and all its line items.
func (r *PurchaseOrderRepo) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (id, number, supplier_id, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		po.ID, po.Number, po.SupplierID, po.Status, po.CreatedBy, po.CreatedAt, po.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert purchase order: %w", err)
	}
	for i := range po.Items {
		if err := r.AddItem(ctx, po.ID, &po.Items[i]); err != nil {
			return err
		}
	}
	return nil
}

// GetByID fetches one order with its items hydrated.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	query := `
		SELECT po.id, po.number, po.supplier_id, s.name, po.status, po.created_by, po.created_at, po.updated_at
		FROM purchase_orders po JOIN suppliers s ON s.id = po.supplier_id
		WHERE po.id = $1`
	var po entity.PurchaseOrder
	err := r.q.QueryRow(ctx, query, id).Scan(
		&po.ID, &po.Number, &po.SupplierID, &po.Supplier, &po.Status,
		&po.CreatedBy, &po.CreatedAt, &po.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	items, err := r.loadItems(ctx, []string{po.ID})
	if err != nil {
		return nil, err
	}
	po.Items = items[po.ID]
	return &po, nil
}

// UpdateStatus persists po.Status only while the stored status still equals
// previous. A lost race surfaces as ErrConflict so the caller's transaction
// rolls back; concurrent transitions get exactly one winner.
func (r *PurchaseOrderRepo) UpdateStatus(ctx context.Context, po *entity.PurchaseOrder, previous string) error {
	query := `
		UPDATE purchase_orders SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2`
	cmd, err := r.q.Exec(ctx, query, po.ID, previous, po.Status, po.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update purchase order status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("order %s is no longer %s: %w", po.Number, previous, domain.ErrConflict)
	}
	return nil
}

// AddItem persists one line item.
func (r *PurchaseOrderRepo) AddItem(ctx context.Context, poID string, item *entity.PurchaseOrderItem) error {
	query := `
		INSERT INTO purchase_order_items (id, purchase_order_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(ctx, query, item.ID, poID, item.ProductID, item.Quantity)
	if err != nil {
		return fmt.Errorf("insert purchase order item: %w", err)
	}
	return nil
}

// RemoveItem deletes one line item from a draft order.
func (r *PurchaseOrderRepo) RemoveItem(ctx context.Context, poID, itemID string) error {
	cmd, err := r.q.Exec(ctx,
		`DELETE FROM purchase_order_items WHERE id = $1 AND purchase_order_id = $2`,
		itemID, poID,
	)
	if err != nil {
		return fmt.Errorf("delete purchase order item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("item %s not on order %s: %w", itemID, poID, domain.ErrNotFound)
	}
	return nil
}

// List returns orders matching filter, newest first, items hydrated.
func (r *PurchaseOrderRepo) List(ctx context.Context, filter repository.PurchaseOrderFilter) ([]*entity.PurchaseOrder, error) {
	query := `
		SELECT po.id, po.number, po.supplier_id, s.name, po.status, po.created_by, po.created_at, po.updated_at
		FROM purchase_orders po JOIN suppliers s ON s.id = po.supplier_id`

	var conds []string
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("po.status = $%d", len(args)))
	}
	if filter.SupplierID != "" {
		args = append(args, filter.SupplierID)
		conds = append(conds, fmt.Sprintf("po.supplier_id = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY po.created_at DESC LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()

	var orders []*entity.PurchaseOrder
	var ids []string
	for rows.Next() {
		var po entity.PurchaseOrder
		if err := rows.Scan(
			&po.ID, &po.Number, &po.SupplierID, &po.Supplier, &po.Status,
			&po.CreatedBy, &po.CreatedAt, &po.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		orders = append(orders, &po)
		ids = append(ids, po.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, po := range orders {
		po.Items = items[po.ID]
	}
	return orders, nil
}

// CountOpenByProduct counts draft or submitted order lines holding the
// product. Backs the deactivation guard.
func (r *PurchaseOrderRepo) CountOpenByProduct(ctx context.Context, productID string) (int64, error) {
	const query = `
		SELECT COUNT(*)
		FROM purchase_order_items i
		JOIN purchase_orders po ON po.id = i.purchase_order_id
		WHERE i.product_id = $1 AND po.status IN ('draft', 'submitted')`
	var count int64
	if err := r.q.QueryRow(ctx, query, productID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count open orders by product: %w", err)
	}
	return count, nil
}

// loadItems fetches line items for the given order ids in one query,
// grouped by order. Product SKU and name ride along for display.
func (r *PurchaseOrderRepo) loadItems(ctx context.Context, ids []string) (map[string][]entity.PurchaseOrderItem, error) {
	const query = `
		SELECT i.id, i.purchase_order_id, i.product_id, p.sku, p.name, i.quantity
		FROM purchase_order_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.purchase_order_id = ANY($1::uuid[])
		ORDER BY p.sku ASC`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("list purchase order items: %w", err)
	}
	defer rows.Close()

	items := make(map[string][]entity.PurchaseOrderItem, len(ids))
	for rows.Next() {
		var poID string
		var item entity.PurchaseOrderItem
		if err := rows.Scan(&item.ID, &poID, &item.ProductID, &item.SKU, &item.Name, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan purchase order item: %w", err)
		}
		items[poID] = append(items[poID], item)
	}
	return items, rows.Err()
}
