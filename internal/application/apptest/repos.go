package apptest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/richland-auto/inventory-api/internal/domain"
	"github.com/richland-auto/inventory-api/internal/domain/entity"
	"github.com/richland-auto/inventory-api/internal/domain/repository"
)

// ── Products ──────────────────────────────────────────────────────────────

// ProductRepo is the in-memory repository.ProductRepository.
type ProductRepo struct {
	store *Store
}

var _ repository.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.SKU == product.SKU {
			return domain.ErrDuplicate
		}
	}
	s.products[product.ID] = cloneProduct(product)
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	return cloneProduct(p), nil
}

func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.SKU == sku {
			return cloneProduct(p), nil
		}
	}
	return nil, nil
}

// GetForUpdate behaves like GetByID; the fake runner's transaction lock
// already serializes whole transactions.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

// Update writes every column except quantity, like the SQL statement.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.products[product.ID]
	if !ok {
		return fmt.Errorf("product %s: %w", product.ID, domain.ErrNotFound)
	}
	stored.SKU = product.SKU
	stored.Name = product.Name
	stored.CategoryID = product.CategoryID
	stored.CategoryName = product.CategoryName
	stored.Price = product.Price
	stored.ReorderLevel = product.ReorderLevel
	stored.Status = product.Status
	stored.UpdatedAt = product.UpdatedAt
	return nil
}

func (r *ProductRepo) UpdateQuantity(ctx context.Context, id string, quantity int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.products[id]
	if !ok {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	stored.Quantity = quantity
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *ProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Product
	q := strings.ToLower(filter.Query)
	for _, p := range s.products {
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.SKU), q) {
			continue
		}
		if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, cloneProduct(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, filter.Limit, filter.Offset), nil
}

func (r *ProductRepo) ListLowStock(ctx context.Context) ([]*entity.Product, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Product
	for _, p := range s.products {
		if p.IsActive() && p.IsLowStock() {
			out = append(out, cloneProduct(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity < out[j].Quantity
		}
		return out[i].SKU < out[j].SKU
	})
	return out, nil
}

func (r *ProductRepo) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, p := range s.products {
		if p.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

// ── Categories ────────────────────────────────────────────────────────────

// CategoryRepo is the in-memory repository.CategoryRepository.
type CategoryRepo struct {
	store *Store
}

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

func (r *CategoryRepo) Create(ctx context.Context, category *entity.Category) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.Name == category.Name {
			return domain.ErrDuplicate
		}
	}
	cp := *category
	s.categories[category.ID] = &cp
	return nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *CategoryRepo) GetByName(ctx context.Context, name string) (*entity.Category, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *CategoryRepo) List(ctx context.Context) ([]*entity.Category, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.Category, 0, len(s.categories))
	for _, c := range s.categories {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete enforces the products foreign key like the RESTRICT constraint.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.CategoryID == id {
			return domain.ErrConflict
		}
	}
	delete(s.categories, id)
	return nil
}

// ── Suppliers ─────────────────────────────────────────────────────────────

// SupplierRepo is the in-memory repository.SupplierRepository.
type SupplierRepo struct {
	store *Store
}

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

func (r *SupplierRepo) Create(ctx context.Context, supplier *entity.Supplier) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sup := range s.suppliers {
		if sup.Name == supplier.Name {
			return domain.ErrDuplicate
		}
	}
	cp := *supplier
	s.suppliers[supplier.ID] = &cp
	return nil
}

func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	sup, ok := s.suppliers[id]
	if !ok {
		return nil, nil
	}
	cp := *sup
	return &cp, nil
}

func (r *SupplierRepo) GetByName(ctx context.Context, name string) (*entity.Supplier, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sup := range s.suppliers {
		if sup.Name == name {
			cp := *sup
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *SupplierRepo) Update(ctx context.Context, supplier *entity.Supplier) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.suppliers[supplier.ID]; !ok {
		return fmt.Errorf("supplier %s: %w", supplier.ID, domain.ErrNotFound)
	}
	for _, sup := range s.suppliers {
		if sup.ID != supplier.ID && sup.Name == supplier.Name {
			return domain.ErrDuplicate
		}
	}
	cp := *supplier
	s.suppliers[supplier.ID] = &cp
	return nil
}

func (r *SupplierRepo) List(ctx context.Context, limit, offset int) ([]*entity.Supplier, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.Supplier, 0, len(s.suppliers))
	for _, sup := range s.suppliers {
		cp := *sup
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

// ── Stock ledger ──────────────────────────────────────────────────────────

// TransactionRepo is the in-memory repository.TransactionRepository.
type TransactionRepo struct {
	store *Store
}

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

func (r *TransactionRepo) Append(ctx context.Context, tx *entity.StockTransaction) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTxSeq++
	tx.Sequence = s.nextTxSeq
	s.transactions = append(s.transactions, cloneTransaction(tx))
	return nil
}

func (r *TransactionRepo) List(ctx context.Context, filter repository.TransactionFilter) ([]*entity.StockTransaction, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.StockTransaction
	for _, t := range s.transactions {
		if filter.ProductID != "" && t.ProductID != filter.ProductID {
			continue
		}
		if filter.Kind != "" && t.Kind != filter.Kind {
			continue
		}
		if filter.ActorID != "" && t.ActorID != filter.ActorID {
			continue
		}
		if filter.From != nil && t.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && t.CreatedAt.After(*filter.To) {
			continue
		}
		out = append(out, cloneTransaction(t))
	}
	if filter.Ascending {
		sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].Sequence > out[j].Sequence })
	}
	return page(out, filter.Limit, filter.Offset), nil
}

func (r *TransactionRepo) SumDeltas(ctx context.Context, productID string) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum int64
	for _, t := range s.transactions {
		if t.ProductID == productID {
			sum += t.Delta()
		}
	}
	return sum, nil
}

func (r *TransactionRepo) Balances(ctx context.Context) ([]repository.LedgerBalance, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]repository.LedgerBalance, 0, len(s.products))
	for _, p := range s.products {
		b := repository.LedgerBalance{ProductID: p.ID, SKU: p.SKU, Cached: p.Quantity}
		for _, t := range s.transactions {
			if t.ProductID == p.ID {
				b.Computed += t.Delta()
			}
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

// ── Audit trail ───────────────────────────────────────────────────────────

// AuditRepo is the in-memory repository.AuditRepository.
type AuditRepo struct {
	store *Store
}

var _ repository.AuditRepository = (*AuditRepo)(nil)

func (r *AuditRepo) Append(ctx context.Context, entries []*entity.AuditEntry) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.nextAuditSeq++
		e.Sequence = s.nextAuditSeq
		s.auditEntries = append(s.auditEntries, cloneAuditEntry(e))
	}
	return nil
}

func (r *AuditRepo) List(ctx context.Context, filter repository.AuditFilter) ([]*entity.AuditEntry, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.AuditEntry
	for _, e := range s.auditEntries {
		if filter.EntityType != "" && e.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != "" && e.EntityID != filter.EntityID {
			continue
		}
		if filter.ActorID != "" && e.ActorID != filter.ActorID {
			continue
		}
		if filter.From != nil && e.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.CreatedAt.After(*filter.To) {
			continue
		}
		out = append(out, cloneAuditEntry(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence > out[j].Sequence })
	return page(out, filter.Limit, filter.Offset), nil
}

func (r *AuditRepo) ListEntityPage(ctx context.Context, entityType, entityID string, afterSeq int64, limit int) ([]*entity.AuditEntry, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.AuditEntry
	for _, e := range s.auditEntries {
		if e.EntityType == entityType && e.EntityID == entityID && e.Sequence > afterSeq {
			out = append(out, cloneAuditEntry(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *AuditRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.auditEntries[:0]
	var deleted int64
	for _, e := range s.auditEntries {
		if e.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.auditEntries = kept
	return deleted, nil
}

// ── Purchase orders ───────────────────────────────────────────────────────

// OrderRepo is the in-memory repository.PurchaseOrderRepository.
type OrderRepo struct {
	store *Store
}

var _ repository.PurchaseOrderRepository = (*OrderRepo)(nil)

func (r *OrderRepo) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, stored := range s.orders {
		if stored.Number == po.Number {
			return domain.ErrDuplicate
		}
	}
	s.orders[po.ID] = cloneOrder(po)
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	po, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	return cloneOrder(po), nil
}

// UpdateStatus applies the compare-and-set the SQL layer does: the write
// lands only while the stored status still equals previous.
func (r *OrderRepo) UpdateStatus(ctx context.Context, po *entity.PurchaseOrder, previous string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.orders[po.ID]
	if !ok || stored.Status != previous {
		return fmt.Errorf("order %s is no longer %s: %w", po.Number, previous, domain.ErrConflict)
	}
	stored.Status = po.Status
	stored.UpdatedAt = po.UpdatedAt
	return nil
}

func (r *OrderRepo) AddItem(ctx context.Context, poID string, item *entity.PurchaseOrderItem) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.orders[poID]
	if !ok {
		return fmt.Errorf("purchase order %s: %w", poID, domain.ErrNotFound)
	}
	stored.Items = append(stored.Items, *item)
	return nil
}

func (r *OrderRepo) RemoveItem(ctx context.Context, poID, itemID string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.orders[poID]
	if !ok {
		return fmt.Errorf("purchase order %s: %w", poID, domain.ErrNotFound)
	}
	for i, it := range stored.Items {
		if it.ID == itemID {
			stored.Items = append(stored.Items[:i], stored.Items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("item %s not on order %s: %w", itemID, poID, domain.ErrNotFound)
}

func (r *OrderRepo) List(ctx context.Context, filter repository.PurchaseOrderFilter) ([]*entity.PurchaseOrder, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.PurchaseOrder
	for _, po := range s.orders {
		if filter.Status != "" && po.Status != filter.Status {
			continue
		}
		if filter.SupplierID != "" && po.SupplierID != filter.SupplierID {
			continue
		}
		out = append(out, cloneOrder(po))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, filter.Limit, filter.Offset), nil
}

func (r *OrderRepo) CountOpenByProduct(ctx context.Context, productID string) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, po := range s.orders {
		if !po.IsOpen() {
			continue
		}
		for _, it := range po.Items {
			if it.ProductID == productID {
				n++
				break
			}
		}
	}
	return n, nil
}

// page applies limit/offset the way the SQL queries do.
func page[T any](in []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(in) {
			return nil
		}
		in = in[offset:]
	}
	if limit > 0 && len(in) > limit {
		in = in[:limit]
	}
	return in
}
