// Package apptest provides in-memory repository fakes for use case tests.
// A Store holds all state; the fake TxRunner serializes transactions over
// it and rolls the whole store back when the closure fails, mirroring the
// commit/rollback and row-lock behavior the use cases rely on.
package apptest

import (
	"context"
	"sync"

	"github.com/richland-auto/inventory-api/internal/application/ports"
	"github.com/richland-auto/inventory-api/internal/domain/entity"
)

// Store is the shared in-memory state behind every fake repository.
type Store struct {
	mu sync.Mutex

	products   map[string]*entity.Product
	categories map[string]*entity.Category
	suppliers  map[string]*entity.Supplier
	orders     map[string]*entity.PurchaseOrder

	transactions []*entity.StockTransaction
	auditEntries []*entity.AuditEntry

	nextTxSeq    int64
	nextAuditSeq int64

	// txMu serializes whole transactions, standing in for the per-row
	// locks the SQL layer takes with SELECT FOR UPDATE.
	txMu sync.Mutex
}

// Fakes bundles a store with one fake of each repository plus the runner,
// ready to hand to use case constructors.
type Fakes struct {
	Store        *Store
	TxRunner     *TxRunner
	Products     *ProductRepo
	Categories   *CategoryRepo
	Suppliers    *SupplierRepo
	Transactions *TransactionRepo
	Audit        *AuditRepo
	Orders       *OrderRepo
}

// New builds an empty store with its fakes.
func New() *Fakes {
	s := &Store{
		products:   make(map[string]*entity.Product),
		categories: make(map[string]*entity.Category),
		suppliers:  make(map[string]*entity.Supplier),
		orders:     make(map[string]*entity.PurchaseOrder),
	}
	return &Fakes{
		Store:        s,
		TxRunner:     &TxRunner{store: s},
		Products:     &ProductRepo{store: s},
		Categories:   &CategoryRepo{store: s},
		Suppliers:    &SupplierRepo{store: s},
		Transactions: &TransactionRepo{store: s},
		Audit:        &AuditRepo{store: s},
		Orders:       &OrderRepo{store: s},
	}
}

// Repos returns the fakes bound as a transaction view. The fakes are
// stateless over the store, so the same instances serve both roles.
func (f *Fakes) Repos() ports.TxRepos {
	return ports.TxRepos{
		Products:     f.Products,
		Categories:   f.Categories,
		Suppliers:    f.Suppliers,
		Transactions: f.Transactions,
		Audit:        f.Audit,
		Orders:       f.Orders,
	}
}

// SeedProduct puts a product into the store as-is.
func (f *Fakes) SeedProduct(p *entity.Product) {
	f.Store.mu.Lock()
	defer f.Store.mu.Unlock()
	f.Store.products[p.ID] = cloneProduct(p)
}

// SeedCategory puts a category into the store as-is.
func (f *Fakes) SeedCategory(c *entity.Category) {
	f.Store.mu.Lock()
	defer f.Store.mu.Unlock()
	cp := *c
	f.Store.categories[c.ID] = &cp
}

// SeedSupplier puts a supplier into the store as-is.
func (f *Fakes) SeedSupplier(s *entity.Supplier) {
	f.Store.mu.Lock()
	defer f.Store.mu.Unlock()
	cp := *s
	f.Store.suppliers[s.ID] = &cp
}

// SeedOrder puts a purchase order into the store as-is.
func (f *Fakes) SeedOrder(po *entity.PurchaseOrder) {
	f.Store.mu.Lock()
	defer f.Store.mu.Unlock()
	f.Store.orders[po.ID] = cloneOrder(po)
}

// Product returns the stored product, bypassing the repository.
func (f *Fakes) Product(id string) *entity.Product {
	f.Store.mu.Lock()
	defer f.Store.mu.Unlock()
	p, ok := f.Store.products[id]
	if !ok {
		return nil
	}
	return cloneProduct(p)
}

// AllTransactions returns the ledger rows in append order.
func (f *Fakes) AllTransactions() []*entity.StockTransaction {
	f.Store.mu.Lock()
	defer f.Store.mu.Unlock()
	out := make([]*entity.StockTransaction, len(f.Store.transactions))
	copy(out, f.Store.transactions)
	return out
}

// AllAuditEntries returns the audit trail in append order.
func (f *Fakes) AllAuditEntries() []*entity.AuditEntry {
	f.Store.mu.Lock()
	defer f.Store.mu.Unlock()
	out := make([]*entity.AuditEntry, len(f.Store.auditEntries))
	copy(out, f.Store.auditEntries)
	return out
}

// TxRunner serializes transactions over the store and restores the
// pre-transaction snapshot when fn fails.
type TxRunner struct {
	store *Store
}

var _ ports.TxRunner = (*TxRunner)(nil)

// Run executes fn against the shared store under the transaction lock.
func (r *TxRunner) Run(ctx context.Context, fn func(ports.TxRepos) error) error {
	r.store.txMu.Lock()
	defer r.store.txMu.Unlock()

	snap := r.store.snapshot()
	err := fn(ports.TxRepos{
		Products:     &ProductRepo{store: r.store},
		Categories:   &CategoryRepo{store: r.store},
		Suppliers:    &SupplierRepo{store: r.store},
		Transactions: &TransactionRepo{store: r.store},
		Audit:        &AuditRepo{store: r.store},
		Orders:       &OrderRepo{store: r.store},
	})
	if err != nil {
		r.store.restore(snap)
	}
	return err
}

type storeSnapshot struct {
	products     map[string]*entity.Product
	categories   map[string]*entity.Category
	suppliers    map[string]*entity.Supplier
	orders       map[string]*entity.PurchaseOrder
	transactions []*entity.StockTransaction
	auditEntries []*entity.AuditEntry
	nextTxSeq    int64
	nextAuditSeq int64
}

func (s *Store) snapshot() storeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := storeSnapshot{
		products:     make(map[string]*entity.Product, len(s.products)),
		categories:   make(map[string]*entity.Category, len(s.categories)),
		suppliers:    make(map[string]*entity.Supplier, len(s.suppliers)),
		orders:       make(map[string]*entity.PurchaseOrder, len(s.orders)),
		transactions: make([]*entity.StockTransaction, len(s.transactions)),
		auditEntries: make([]*entity.AuditEntry, len(s.auditEntries)),
		nextTxSeq:    s.nextTxSeq,
		nextAuditSeq: s.nextAuditSeq,
	}
	for id, p := range s.products {
		snap.products[id] = cloneProduct(p)
	}
	for id, c := range s.categories {
		cp := *c
		snap.categories[id] = &cp
	}
	for id, sup := range s.suppliers {
		cp := *sup
		snap.suppliers[id] = &cp
	}
	for id, po := range s.orders {
		snap.orders[id] = cloneOrder(po)
	}
	// Ledger and audit rows are append-only and never mutated, so copying
	// the slices is enough.
	copy(snap.transactions, s.transactions)
	copy(snap.auditEntries, s.auditEntries)
	return snap
}

func (s *Store) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = snap.products
	s.categories = snap.categories
	s.suppliers = snap.suppliers
	s.orders = snap.orders
	s.transactions = snap.transactions
	s.auditEntries = snap.auditEntries
	s.nextTxSeq = snap.nextTxSeq
	s.nextAuditSeq = snap.nextAuditSeq
}

func cloneProduct(p *entity.Product) *entity.Product {
	cp := *p
	return &cp
}

func cloneOrder(po *entity.PurchaseOrder) *entity.PurchaseOrder {
	cp := *po
	cp.Items = make([]entity.PurchaseOrderItem, len(po.Items))
	copy(cp.Items, po.Items)
	return &cp
}

func cloneTransaction(t *entity.StockTransaction) *entity.StockTransaction {
	cp := *t
	return &cp
}

func cloneAuditEntry(e *entity.AuditEntry) *entity.AuditEntry {
	cp := *e
	return &cp
}
