package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richland-auto/inventory-api/internal/application/apptest"
	"github.com/richland-auto/inventory-api/internal/application/catalog"
	"github.com/richland-auto/inventory-api/internal/application/dto"
	"github.com/richland-auto/inventory-api/internal/application/ledger"
	"github.com/richland-auto/inventory-api/internal/domain"
	"github.com/richland-auto/inventory-api/internal/domain/entity"
	"github.com/richland-auto/inventory-api/internal/domain/repository"
	"github.com/richland-auto/inventory-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Test helpers
// ──────────────────────────────────────────────────────────────────────────────

var (
	admin    = entity.Actor{ID: "u-admin", Username: "admin", Role: entity.RoleAdmin}
	owner    = entity.Actor{ID: "u-owner", Username: "owner", Role: entity.RoleOwner}
	stockman = entity.Actor{ID: "u-stockman", Username: "stockman", Role: entity.RoleStockManager}
	salesman = entity.Actor{ID: "u-sales", Username: "sales", Role: entity.RoleSalesman}
)

func ptr[T any](v T) *T { return &v }

func newProductUC(f *apptest.Fakes) *catalog.ProductUseCase {
	ledgerUC := ledger.NewUseCase(f.TxRunner, f.Transactions, f.Products, nil, logger.NewNop())
	return catalog.NewProductUseCase(f.TxRunner, f.Products, f.Categories, f.Orders, ledgerUC)
}

func seedCategory(f *apptest.Fakes, id, name string) {
	now := time.Now()
	f.SeedCategory(&entity.Category{ID: id, Name: name, CreatedAt: now, UpdatedAt: now})
}

func batteryRequest() dto.CreateProductRequest {
	return dto.CreateProductRequest{
		SKU:          "BAT-001",
		Name:         "Motolite Gold Battery",
		CategoryID:   "c-batteries",
		Price:        decimal.RequireFromString("4500.00"),
		ReorderLevel: 5,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

// A fresh product starts at quantity zero with every non-default field audited.
func TestProductCreate(t *testing.T) {
	f := apptest.New()
	seedCategory(f, "c-batteries", "Batteries")
	uc := newProductUC(f)

	p, err := uc.Create(context.Background(), admin, batteryRequest())
	require.NoError(t, err)

	assert.Equal(t, "BAT-001", p.SKU)
	assert.Equal(t, "Batteries", p.CategoryName)
	assert.Equal(t, int64(0), p.Quantity, "quantity starts at zero without initial stock")
	assert.Equal(t, entity.ProductStatusActive, p.Status)

	fields := map[string]string{}
	for _, e := range f.AllAuditEntries() {
		assert.Equal(t, entity.AuditEntityProduct, e.EntityType)
		assert.Equal(t, p.ID, e.EntityID)
		assert.Empty(t, e.OldValue, "creation entries carry no old value")
		fields[e.Field] = e.NewValue
	}
	assert.Equal(t, map[string]string{
		"sku":           "BAT-001",
		"name":          "Motolite Gold Battery",
		"category_id":   "c-batteries",
		"price":         "4500.00",
		"reorder_level": "5",
	}, fields)
}

// Initial stock is booked through the ledger, not written onto the row.
func TestProductCreate_InitialQuantityGoesThroughLedger(t *testing.T) {
	f := apptest.New()
	seedCategory(f, "c-batteries", "Batteries")
	uc := newProductUC(f)

	req := batteryRequest()
	req.InitialQuantity = 20
	p, err := uc.Create(context.Background(), admin, req)
	require.NoError(t, err)
	assert.Equal(t, int64(20), p.Quantity)

	rows := f.AllTransactions()
	require.Len(t, rows, 1, "initial stock must land as a ledger row")
	assert.Equal(t, entity.TransactionIn, rows[0].Kind)
	assert.Equal(t, int64(20), rows[0].Quantity)
	assert.Equal(t, int64(20), rows[0].Balance)
	assert.Equal(t, "Initial stock on product creation.", rows[0].Note)

	assert.Equal(t, int64(20), f.Product(p.ID).Quantity)
}

// Duplicate SKUs are refused whether the holder is active or deactivated.
func TestProductCreate_DuplicateSKU(t *testing.T) {
	f := apptest.New()
	seedCategory(f, "c-batteries", "Batteries")
	uc := newProductUC(f)

	ctx := context.Background()
	first, err := uc.Create(ctx, admin, batteryRequest())
	require.NoError(t, err)

	_, err = uc.Create(ctx, admin, batteryRequest())
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.Deactivate(ctx, owner, first.ID)
	require.NoError(t, err)
	_, err = uc.Create(ctx, admin, batteryRequest())
	assert.ErrorIs(t, err, domain.ErrValidation, "deactivated products still hold their SKU")
}

func TestProductCreate_Rejections(t *testing.T) {
	f := apptest.New()
	seedCategory(f, "c-batteries", "Batteries")
	uc := newProductUC(f)
	ctx := context.Background()

	req := batteryRequest()
	req.Price = decimal.RequireFromString("-1")
	_, err := uc.Create(ctx, admin, req)
	assert.ErrorIs(t, err, domain.ErrValidation, "negative price")

	req = batteryRequest()
	req.CategoryID = "c-ghost"
	_, err = uc.Create(ctx, admin, req)
	assert.ErrorIs(t, err, domain.ErrValidation, "unknown category")

	req = batteryRequest()
	req.SKU = "   "
	_, err = uc.Create(ctx, admin, req)
	assert.ErrorIs(t, err, domain.ErrValidation, "blank sku")

	_, err = uc.Create(ctx, salesman, batteryRequest())
	assert.ErrorIs(t, err, domain.ErrForbidden, "salesman cannot create products")
}

// A price of zero is legitimate (giveaways, promo items).
func TestProductCreate_ZeroPrice(t *testing.T) {
	f := apptest.New()
	seedCategory(f, "c-accessories", "Accessories")
	uc := newProductUC(f)

	_, err := uc.Create(context.Background(), admin, dto.CreateProductRequest{
		SKU:        "STK-001",
		Name:       "Promo Sticker",
		CategoryID: "c-accessories",
		Price:      decimal.Zero,
	})
	assert.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Update
// ──────────────────────────────────────────────────────────────────────────────

// Updates audit one entry per touched field with old and new values.
func TestProductUpdate_AuditsTouchedFields(t *testing.T) {
	f := apptest.New()
	seedCategory(f, "c-batteries", "Batteries")
	uc := newProductUC(f)
	ctx := context.Background()

	p, err := uc.Create(ctx, admin, batteryRequest())
	require.NoError(t, err)
	created := len(f.AllAuditEntries())

	updated, err := uc.Update(ctx, admin, p.ID, dto.UpdateProductRequest{
		Name:  ptr("Motolite Gold Battery 12V"),
		Price: ptr(decimal.RequireFromString("4750.00")),
	})
	require.NoError(t, err)
	assert.Equal(t, "Motolite Gold Battery 12V", updated.Name)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("4750.00")))

	entries := f.AllAuditEntries()[created:]
	require.Len(t, entries, 2)
	byField := map[string]*entity.AuditEntry{}
	for _, e := range entries {
		byField[e.Field] = e
	}
	require.Contains(t, byField, "name")
	assert.Equal(t, "Motolite Gold Battery", byField["name"].OldValue)
	assert.Equal(t, "Motolite Gold Battery 12V", byField["name"].NewValue)
	require.Contains(t, byField, "price")
	assert.Equal(t, "4500.00", byField["price"].OldValue)
	assert.Equal(t, "4750.00", byField["price"].NewValue)
}

// Naming quantity on an update is refused outright; stock moves through the
// ledger alone.
func TestProductUpdate_QuantityIsUntouchable(t *testing.T) {
	f := apptest.New()
	seedCategory(f, "c-batteries", "Batteries")
	uc := newProductUC(f)
	ctx := context.Background()

	p, err := uc.Create(ctx, admin, batteryRequest())
	require.NoError(t, err)

	_, err = uc.Update(ctx, owner, p.ID, dto.UpdateProductRequest{Quantity: ptr(int64(100))})
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
	assert.Equal(t, int64(0), f.Product(p.ID).Quantity)
}

// Submitting the same values again writes nothing.
func TestProductUpdate_NoOp(t *testing.T) {
	f := apptest.New()
	seedCategory(f, "c-batteries", "Batteries")
	uc := newProductUC(f)
	ctx := context.Background()

	p, err := uc.Create(ctx, admin, batteryRequest())
	require.NoError(t, err)
	created := len(f.AllAuditEntries())

	_, err = uc.Update(ctx, admin, p.ID, dto.UpdateProductRequest{
		Name: ptr("Motolite Gold Battery"),
	})
	require.NoError(t, err)
	assert.Len(t, f.AllAuditEntries(), created, "no-op updates must not audit")
}

func TestProductUpdate_UnknownProduct(t *testing.T) {
	f := apptest.New()
	uc := newProductUC(f)

	_, err := uc.Update(context.Background(), admin, "p-ghost", dto.UpdateProductRequest{
		Name: ptr("anything"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Deactivate / Reactivate
// ──────────────────────────────────────────────────────────────────────────────

func TestProductDeactivateReactivate(t *testing.T) {
	f := apptest.New()
	seedCategory(f, "c-batteries", "Batteries")
	uc := newProductUC(f)
	ctx := context.Background()

	p, err := uc.Create(ctx, admin, batteryRequest())
	require.NoError(t, err)

	deactivated, err := uc.Deactivate(ctx, stockman, p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ProductStatusDeactivated, deactivated.Status)

	_, err = uc.Deactivate(ctx, stockman, p.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidOperation, "already deactivated")

	restored, err := uc.Reactivate(ctx, owner, p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ProductStatusActive, restored.Status)

	var flips []*entity.AuditEntry
	for _, e := range f.AllAuditEntries() {
		if e.Field == "status" {
			flips = append(flips, e)
		}
	}
	require.Len(t, flips, 2)
	assert.Equal(t, "active", flips[0].OldValue)
	assert.Equal(t, "deactivated", flips[0].NewValue)
	assert.Equal(t, "deactivated", flips[1].OldValue)
	assert.Equal(t, "active", flips[1].NewValue)
}

// Products sitting on open purchase orders cannot be deactivated.
func TestProductDeactivate_BlockedByOpenOrder(t *testing.T) {
	f := apptest.New()
	seedCategory(f, "c-batteries", "Batteries")
	uc := newProductUC(f)
	ctx := context.Background()

	p, err := uc.Create(ctx, admin, batteryRequest())
	require.NoError(t, err)

	now := time.Now()
	f.SeedOrder(&entity.PurchaseOrder{
		ID:         "po-1",
		Number:     "PO-00000001",
		SupplierID: "s-global",
		Status:     entity.POStatusSubmitted,
		Items: []entity.PurchaseOrderItem{
			{ID: "poi-1", ProductID: p.ID, SKU: p.SKU, Name: p.Name, Quantity: 10},
		},
		CreatedAt: now,
		UpdatedAt: now,
	})

	_, err = uc.Deactivate(ctx, owner, p.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, entity.ProductStatusActive, f.Product(p.ID).Status)
}

// Status changes are owner or stock manager territory; admin runs the
// catalog but does not pull products from the shelf.
func TestProductStatus_RoleGate(t *testing.T) {
	f := apptest.New()
	seedCategory(f, "c-batteries", "Batteries")
	uc := newProductUC(f)
	ctx := context.Background()

	p, err := uc.Create(ctx, admin, batteryRequest())
	require.NoError(t, err)

	_, err = uc.Deactivate(ctx, admin, p.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Deactivate(ctx, salesman, p.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ──────────────────────────────────────────────────────────────────────────────
// Listing
// ──────────────────────────────────────────────────────────────────────────────

func TestProductList_StatusValidation(t *testing.T) {
	f := apptest.New()
	uc := newProductUC(f)

	_, err := uc.List(context.Background(), repository.ProductFilter{Status: "retired"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// LowStock reports only active products at or below their reorder level.
func TestProductLowStock(t *testing.T) {
	f := apptest.New()
	now := time.Now()
	seed := func(id, sku string, qty, reorder int64, status string) {
		f.SeedProduct(&entity.Product{
			ID: id, SKU: sku, Name: sku, CategoryID: "c-1",
			Price: decimal.NewFromInt(100), Quantity: qty, ReorderLevel: reorder,
			Status: status, CreatedAt: now, UpdatedAt: now,
		})
	}
	// AAA is low, BBB healthy, CCC low but off the shelf, DDD exactly at
	// its reorder level.
	seed("p-1", "AAA-001", 2, 5, entity.ProductStatusActive)
	seed("p-2", "BBB-001", 50, 5, entity.ProductStatusActive)
	seed("p-3", "CCC-001", 0, 5, entity.ProductStatusDeactivated)
	seed("p-4", "DDD-001", 5, 5, entity.ProductStatusActive)

	uc := newProductUC(f)
	low, err := uc.LowStock(context.Background())
	require.NoError(t, err)

	skus := make([]string, 0, len(low))
	for _, p := range low {
		skus = append(skus, p.SKU)
	}
	assert.Equal(t, []string{"AAA-001", "DDD-001"}, skus)
}
