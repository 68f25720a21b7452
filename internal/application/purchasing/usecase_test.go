package purchasing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richland-auto/inventory-api/internal/application/apptest"
	"github.com/richland-auto/inventory-api/internal/application/dto"
	"github.com/richland-auto/inventory-api/internal/application/ledger"
	"github.com/richland-auto/inventory-api/internal/application/purchasing"
	"github.com/richland-auto/inventory-api/internal/domain"
	"github.com/richland-auto/inventory-api/internal/domain/entity"
	"github.com/richland-auto/inventory-api/pkg/logger"
)

var (
	stockman = entity.Actor{ID: "u-stockman", Username: "stockman", Role: entity.RoleStockManager}
	admin    = entity.Actor{ID: "u-admin", Username: "admin", Role: entity.RoleAdmin}
	salesman = entity.Actor{ID: "u-sales", Username: "sales", Role: entity.RoleSalesman}
)

func newUseCase(f *apptest.Fakes) *purchasing.UseCase {
	ledgerUC := ledger.NewUseCase(f.TxRunner, f.Transactions, f.Products, nil, logger.NewNop())
	return purchasing.NewUseCase(f.TxRunner, f.Orders, f.Suppliers, f.Products, ledgerUC)
}

// seedShop stores one supplier and two active products with zero stock.
func seedShop(f *apptest.Fakes) {
	now := time.Now()
	f.SeedSupplier(&entity.Supplier{
		ID: "s-global", Name: "Global Auto Parts", CreatedAt: now, UpdatedAt: now,
	})
	f.SeedProduct(&entity.Product{
		ID: "p-brake", SKU: "BRK-001", Name: "Brembo Brake Pad Set",
		CategoryID: "c-braking", Price: decimal.RequireFromString("1800.00"),
		Status: entity.ProductStatusActive, CreatedAt: now, UpdatedAt: now,
	})
	f.SeedProduct(&entity.Product{
		ID: "p-oil", SKU: "OIL-001", Name: "Shell Helix 1L",
		CategoryID: "c-fluids", Price: decimal.RequireFromString("350.00"),
		Status: entity.ProductStatusActive, CreatedAt: now, UpdatedAt: now,
	})
}

func draftWithLines(t *testing.T, f *apptest.Fakes, uc *purchasing.UseCase) *entity.PurchaseOrder {
	t.Helper()
	po, err := uc.Create(context.Background(), stockman, dto.CreatePurchaseOrderRequest{
		SupplierID: "s-global",
		Items: []dto.PurchaseOrderItemRequest{
			{ProductID: "p-brake", Quantity: 10},
			{ProductID: "p-oil", Quantity: 5},
		},
	})
	require.NoError(t, err)
	return po
}

// ──────────────────────────────────────────────────────────────────────────────
// Creating and editing drafts
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_StartsAsDraft(t *testing.T) {
	f := apptest.New()
	seedShop(f)
	uc := newUseCase(f)

	po := draftWithLines(t, f, uc)
	assert.Equal(t, entity.POStatusDraft, po.Status)
	assert.Regexp(t, `^PO-[0-9A-F]{8}$`, po.Number)
	assert.Len(t, po.Items, 2)
	assert.Equal(t, "Global Auto Parts", po.Supplier)
	assert.Equal(t, "BRK-001", po.Items[0].SKU, "lines carry the product snapshot")
}

func TestCreate_UnknownSupplier(t *testing.T) {
	f := apptest.New()
	seedShop(f)
	uc := newUseCase(f)

	_, err := uc.Create(context.Background(), stockman, dto.CreatePurchaseOrderRequest{
		SupplierID: "s-ghost",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreate_RejectsBadLines(t *testing.T) {
	f := apptest.New()
	seedShop(f)
	uc := newUseCase(f)
	ctx := context.Background()

	_, err := uc.Create(ctx, stockman, dto.CreatePurchaseOrderRequest{
		SupplierID: "s-global",
		Items:      []dto.PurchaseOrderItemRequest{{ProductID: "p-brake", Quantity: 0}},
	})
	assert.ErrorIs(t, err, domain.ErrValidation, "zero quantity line")

	_, err = uc.Create(ctx, stockman, dto.CreatePurchaseOrderRequest{
		SupplierID: "s-global",
		Items:      []dto.PurchaseOrderItemRequest{{ProductID: "p-ghost", Quantity: 3}},
	})
	assert.ErrorIs(t, err, domain.ErrValidation, "unknown product line")
}

func TestAddRemoveItem_DraftOnly(t *testing.T) {
	f := apptest.New()
	seedShop(f)
	uc := newUseCase(f)
	ctx := context.Background()

	po := draftWithLines(t, f, uc)
	po, err := uc.RemoveItem(ctx, stockman, po.ID, po.Items[1].ID)
	require.NoError(t, err)
	require.Len(t, po.Items, 1)

	po, err = uc.AddItem(ctx, stockman, po.ID, dto.PurchaseOrderItemRequest{
		ProductID: "p-oil", Quantity: 8,
	})
	require.NoError(t, err)
	require.Len(t, po.Items, 2)

	_, err = uc.Submit(ctx, stockman, po.ID)
	require.NoError(t, err)

	_, err = uc.AddItem(ctx, stockman, po.ID, dto.PurchaseOrderItemRequest{
		ProductID: "p-brake", Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOperation, "submitted lines are frozen")
}

// ──────────────────────────────────────────────────────────────────────────────
// State machine
// ──────────────────────────────────────────────────────────────────────────────

func TestSubmit_RequiresLineItems(t *testing.T) {
	f := apptest.New()
	seedShop(f)
	uc := newUseCase(f)

	po, err := uc.Create(context.Background(), stockman, dto.CreatePurchaseOrderRequest{
		SupplierID: "s-global",
	})
	require.NoError(t, err)

	_, err = uc.Submit(context.Background(), stockman, po.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
}

func TestComplete_DraftIsNotCompletable(t *testing.T) {
	f := apptest.New()
	seedShop(f)
	uc := newUseCase(f)

	po := draftWithLines(t, f, uc)
	_, err := uc.Complete(context.Background(), stockman, po.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
	assert.Empty(t, f.AllTransactions())
}

func TestCancel_TerminalStatesStay(t *testing.T) {
	f := apptest.New()
	seedShop(f)
	uc := newUseCase(f)
	ctx := context.Background()

	po := draftWithLines(t, f, uc)
	_, err := uc.Cancel(ctx, stockman, po.ID)
	require.NoError(t, err)

	_, err = uc.Cancel(ctx, stockman, po.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidOperation, "cancelled is terminal")

	_, err = uc.Submit(ctx, stockman, po.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
}

// ──────────────────────────────────────────────────────────────────────────────
// Completion
// ──────────────────────────────────────────────────────────────────────────────

// Completing books one stock-in per line in one unit: both balances rise,
// both ledger rows reference the order, and the status flip is audited.
func TestComplete_BooksEveryLine(t *testing.T) {
	f := apptest.New()
	seedShop(f)
	uc := newUseCase(f)
	ctx := context.Background()

	po := draftWithLines(t, f, uc)
	_, err := uc.Submit(ctx, stockman, po.ID)
	require.NoError(t, err)

	completed, err := uc.Complete(ctx, stockman, po.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusCompleted, completed.Status)

	assert.Equal(t, int64(10), f.Product("p-brake").Quantity)
	assert.Equal(t, int64(5), f.Product("p-oil").Quantity)

	txs := f.AllTransactions()
	require.Len(t, txs, 2)
	for _, tx := range txs {
		assert.Equal(t, entity.TransactionIn, tx.Kind)
		assert.Equal(t, po.ID, tx.Reference, "ledger rows must point back at the order")
		assert.Contains(t, tx.Note, po.Number)
	}

	var statusFlips int
	for _, e := range f.AllAuditEntries() {
		if e.EntityType == entity.AuditEntityPurchaseOrder && e.Field == "status" &&
			e.NewValue == entity.POStatusCompleted {
			statusFlips++
		}
	}
	assert.Equal(t, 1, statusFlips)
}

func TestComplete_Twice(t *testing.T) {
	f := apptest.New()
	seedShop(f)
	uc := newUseCase(f)
	ctx := context.Background()

	po := draftWithLines(t, f, uc)
	_, err := uc.Submit(ctx, stockman, po.ID)
	require.NoError(t, err)
	_, err = uc.Complete(ctx, stockman, po.ID)
	require.NoError(t, err)

	_, err = uc.Complete(ctx, stockman, po.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
	assert.Len(t, f.AllTransactions(), 2, "second completion must not book again")
}

// A line whose product was deactivated after submission sinks the whole
// completion: no stock lands, the order stays submitted.
func TestComplete_DeactivatedLineRollsEverythingBack(t *testing.T) {
	f := apptest.New()
	seedShop(f)
	uc := newUseCase(f)
	ctx := context.Background()

	po := draftWithLines(t, f, uc)
	_, err := uc.Submit(ctx, stockman, po.ID)
	require.NoError(t, err)

	oil := f.Product("p-oil")
	oil.Status = entity.ProductStatusDeactivated
	f.SeedProduct(oil)

	_, err = uc.Complete(ctx, stockman, po.ID)
	require.ErrorIs(t, err, domain.ErrConflict)

	assert.Equal(t, int64(0), f.Product("p-brake").Quantity,
		"the valid line must roll back with the bad one")
	assert.Equal(t, int64(0), f.Product("p-oil").Quantity)
	assert.Empty(t, f.AllTransactions())

	stored, err := uc.Get(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusSubmitted, stored.Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Role gates
// ──────────────────────────────────────────────────────────────────────────────

func TestRoleGates(t *testing.T) {
	f := apptest.New()
	seedShop(f)
	uc := newUseCase(f)
	ctx := context.Background()

	_, err := uc.Create(ctx, salesman, dto.CreatePurchaseOrderRequest{SupplierID: "s-global"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	po := draftWithLines(t, f, uc)
	_, err = uc.Submit(ctx, admin, po.ID)
	require.NoError(t, err, "admins may submit")

	_, err = uc.Complete(ctx, admin, po.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden, "completion is owner or stock manager only")

	_, err = uc.Complete(ctx, stockman, po.ID)
	require.NoError(t, err)
}
