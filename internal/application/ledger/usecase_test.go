package ledger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richland-auto/inventory-api/internal/application/apptest"
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
	stockman = entity.Actor{ID: "u-stockman", Username: "stockman", Role: entity.RoleStockManager}
	owner    = entity.Actor{ID: "u-owner", Username: "owner", Role: entity.RoleOwner}
	salesman = entity.Actor{ID: "u-sales", Username: "sales", Role: entity.RoleSalesman}
)

// notifierStub records which products were flagged low.
type notifierStub struct {
	mu    sync.Mutex
	calls []string
}

func (n *notifierStub) NotifyLowStock(_ context.Context, p *entity.Product) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, p.ID)
}

func (n *notifierStub) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

func newUseCase(f *apptest.Fakes, notifier ledger.AlertNotifier) *ledger.UseCase {
	return ledger.NewUseCase(f.TxRunner, f.Transactions, f.Products, notifier, logger.NewNop())
}

// seedBattery stores an active product with the given balance and reorder level.
func seedBattery(f *apptest.Fakes, quantity, reorderLevel int64) *entity.Product {
	now := time.Now()
	p := &entity.Product{
		ID:           "p-battery",
		SKU:          "BAT-001",
		Name:         "Motolite Gold Battery",
		CategoryID:   "c-batteries",
		CategoryName: "Batteries",
		Price:        decimal.RequireFromString("4500.00"),
		Quantity:     quantity,
		ReorderLevel: reorderLevel,
		Status:       entity.ProductStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.SeedProduct(p)
	return p
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock movements
// ──────────────────────────────────────────────────────────────────────────────

// A stock-in raises the balance and lands as a ledger row carrying it.
func TestStockIn_RaisesBalance(t *testing.T) {
	f := apptest.New()
	seedBattery(f, 0, 5)
	uc := newUseCase(f, nil)

	tx, err := uc.StockIn(context.Background(), stockman, ledger.MovementInput{
		ProductID: "p-battery",
		Quantity:  50,
		Note:      "Delivery from Global Auto Parts",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.TransactionIn, tx.Kind)
	assert.Equal(t, int64(50), tx.Quantity)
	assert.Equal(t, int64(50), tx.Balance, "row must carry the resulting balance")
	assert.Equal(t, "BAT-001", tx.SKU)
	assert.Equal(t, stockman.ID, tx.ActorID)

	assert.Equal(t, int64(50), f.Product("p-battery").Quantity,
		"cached quantity must match the ledger")
}

// A stock-out lowers the balance.
func TestStockOut_LowersBalance(t *testing.T) {
	f := apptest.New()
	seedBattery(f, 50, 5)
	uc := newUseCase(f, nil)

	tx, err := uc.StockOut(context.Background(), stockman, ledger.MovementInput{
		ProductID: "p-battery",
		Quantity:  20,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.TransactionOut, tx.Kind)
	assert.Equal(t, int64(30), tx.Balance)
	assert.Equal(t, int64(30), f.Product("p-battery").Quantity)
}

// Every movement audits the quantity change with before and after values.
func TestMovement_AuditsQuantityChange(t *testing.T) {
	f := apptest.New()
	seedBattery(f, 10, 5)
	uc := newUseCase(f, nil)

	_, err := uc.StockIn(context.Background(), stockman, ledger.MovementInput{
		ProductID: "p-battery",
		Quantity:  15,
	})
	require.NoError(t, err)

	entries := f.AllAuditEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, entity.AuditEntityProduct, entries[0].EntityType)
	assert.Equal(t, "p-battery", entries[0].EntityID)
	assert.Equal(t, "quantity", entries[0].Field)
	assert.Equal(t, "10", entries[0].OldValue)
	assert.Equal(t, "25", entries[0].NewValue)
	assert.Equal(t, stockman.ID, entries[0].ActorID)
}

// Overdraw fails with insufficient stock and leaves no trace: no ledger row,
// no audit row, quantity untouched.
func TestStockOut_Overdraw_LeavesNoTrace(t *testing.T) {
	f := apptest.New()
	seedBattery(f, 10, 5)
	uc := newUseCase(f, nil)

	_, err := uc.StockOut(context.Background(), stockman, ledger.MovementInput{
		ProductID: "p-battery",
		Quantity:  11,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, int64(10), f.Product("p-battery").Quantity)
	assert.Empty(t, f.AllTransactions(), "failed movements must not append rows")
	assert.Empty(t, f.AllAuditEntries())
}

// Taking the balance to exactly zero is allowed.
func TestStockOut_ToZero(t *testing.T) {
	f := apptest.New()
	seedBattery(f, 10, 0)
	uc := newUseCase(f, nil)

	tx, err := uc.StockOut(context.Background(), stockman, ledger.MovementInput{
		ProductID: "p-battery",
		Quantity:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), tx.Balance)
}

// Zero and negative quantities are rejected before touching the store.
func TestMovement_NonPositiveQuantity(t *testing.T) {
	f := apptest.New()
	seedBattery(f, 10, 5)
	uc := newUseCase(f, nil)

	for _, qty := range []int64{0, -3} {
		_, err := uc.StockIn(context.Background(), stockman, ledger.MovementInput{
			ProductID: "p-battery",
			Quantity:  qty,
		})
		assert.ErrorIs(t, err, domain.ErrValidation, "quantity %d must be rejected", qty)
	}
	assert.Empty(t, f.AllTransactions())
}

// Unknown products fail with not found.
func TestMovement_UnknownProduct(t *testing.T) {
	f := apptest.New()
	uc := newUseCase(f, nil)

	_, err := uc.StockIn(context.Background(), stockman, ledger.MovementInput{
		ProductID: "p-ghost",
		Quantity:  5,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Deactivated products take no movements in either direction.
func TestMovement_DeactivatedProduct(t *testing.T) {
	f := apptest.New()
	p := seedBattery(f, 10, 5)
	p.Status = entity.ProductStatusDeactivated
	f.SeedProduct(p)
	uc := newUseCase(f, nil)

	_, err := uc.StockIn(context.Background(), stockman, ledger.MovementInput{
		ProductID: "p-battery", Quantity: 5,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = uc.StockOut(context.Background(), stockman, ledger.MovementInput{
		ProductID: "p-battery", Quantity: 5,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// Two concurrent stock-outs race for the last unit; exactly one wins and the
// balance never goes negative.
func TestStockOut_ConcurrentLastUnit_OneWinner(t *testing.T) {
	f := apptest.New()
	seedBattery(f, 1, 0)
	uc := newUseCase(f, nil)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.StockOut(context.Background(), stockman, ledger.MovementInput{
				ProductID: "p-battery",
				Quantity:  1,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var won, lost int
	for err := range errs {
		if err == nil {
			won++
		} else {
			require.ErrorIs(t, err, domain.ErrInsufficientStock)
			lost++
		}
	}
	assert.Equal(t, 1, won, "exactly one stock-out must win the last unit")
	assert.Equal(t, 1, lost)
	assert.Equal(t, int64(0), f.Product("p-battery").Quantity)
	assert.Len(t, f.AllTransactions(), 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Low-stock alerts
// ──────────────────────────────────────────────────────────────────────────────

// An out-movement that lands at or below the reorder level notifies once.
func TestNotify_OutMovementAtReorderLevel(t *testing.T) {
	f := apptest.New()
	seedBattery(f, 6, 5)
	notifier := &notifierStub{}
	uc := newUseCase(f, notifier)

	_, err := uc.StockOut(context.Background(), stockman, ledger.MovementInput{
		ProductID: "p-battery", Quantity: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, notifier.count())
}

// Movements that stay above the reorder level stay silent.
func TestNotify_StaysSilentAboveReorderLevel(t *testing.T) {
	f := apptest.New()
	seedBattery(f, 50, 5)
	notifier := &notifierStub{}
	uc := newUseCase(f, notifier)

	_, err := uc.StockOut(context.Background(), stockman, ledger.MovementInput{
		ProductID: "p-battery", Quantity: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, notifier.count())
}

// Stock-ins never alert, even when the balance is still low afterwards.
func TestNotify_StockInNeverAlerts(t *testing.T) {
	f := apptest.New()
	seedBattery(f, 0, 5)
	notifier := &notifierStub{}
	uc := newUseCase(f, notifier)

	_, err := uc.StockIn(context.Background(), stockman, ledger.MovementInput{
		ProductID: "p-battery", Quantity: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, notifier.count(), "restocking must not page anyone")
}

// ──────────────────────────────────────────────────────────────────────────────
// Reconciliation
// ──────────────────────────────────────────────────────────────────────────────

// A product whose cache matches its ledger reconciles clean.
func TestReconcileProduct_Clean(t *testing.T) {
	f := apptest.New()
	seedBattery(f, 0, 5)
	uc := newUseCase(f, nil)

	_, err := uc.StockIn(context.Background(), stockman, ledger.MovementInput{
		ProductID: "p-battery", Quantity: 10,
	})
	require.NoError(t, err)

	resp, err := uc.ReconcileProduct(context.Background(), owner, "p-battery")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Checked)
	assert.Empty(t, resp.Faults)
}

// Drifting the cache behind the ledger's back surfaces an integrity fault.
// The check reports; it never corrects.
func TestReconcileProduct_DriftedCache(t *testing.T) {
	f := apptest.New()
	seedBattery(f, 0, 5)
	uc := newUseCase(f, nil)

	_, err := uc.StockIn(context.Background(), stockman, ledger.MovementInput{
		ProductID: "p-battery", Quantity: 10,
	})
	require.NoError(t, err)
	require.NoError(t, f.Products.UpdateQuantity(context.Background(), "p-battery", 99))

	resp, err := uc.ReconcileProduct(context.Background(), owner, "p-battery")
	require.ErrorIs(t, err, domain.ErrIntegrityFault)

	require.NotNil(t, resp)
	require.Len(t, resp.Faults, 1)
	assert.Equal(t, int64(99), resp.Faults[0].Cached)
	assert.Equal(t, int64(10), resp.Faults[0].Computed)
	assert.Equal(t, "BAT-001", resp.Faults[0].SKU)

	assert.Equal(t, int64(99), f.Product("p-battery").Quantity,
		"reconciliation must not rewrite the cache")
}

// The sweep checks every product, reports faults and still returns nil.
func TestReconcileAll_SweepsWithoutFailing(t *testing.T) {
	f := apptest.New()
	seedBattery(f, 0, 5)
	now := time.Now()
	f.SeedProduct(&entity.Product{
		ID: "p-oil", SKU: "OIL-001", Name: "Shell Helix 1L",
		CategoryID: "c-fluids", Price: decimal.RequireFromString("350.00"),
		Quantity: 0, Status: entity.ProductStatusActive, CreatedAt: now, UpdatedAt: now,
	})
	uc := newUseCase(f, nil)

	_, err := uc.StockIn(context.Background(), stockman, ledger.MovementInput{
		ProductID: "p-battery", Quantity: 10,
	})
	require.NoError(t, err)
	require.NoError(t, f.Products.UpdateQuantity(context.Background(), "p-oil", 7))

	resp, err := uc.ReconcileAll(context.Background(), owner)
	require.NoError(t, err, "the sweep itself must not fail on findings")
	assert.Equal(t, 2, resp.Checked)
	require.Len(t, resp.Faults, 1)
	assert.Equal(t, "OIL-001", resp.Faults[0].SKU)
	assert.Equal(t, int64(7), resp.Faults[0].Cached)
	assert.Equal(t, int64(0), resp.Faults[0].Computed)
}

// Reconciliation is owner/admin territory.
func TestReconcile_RequiresManagementRole(t *testing.T) {
	f := apptest.New()
	seedBattery(f, 0, 5)
	uc := newUseCase(f, nil)

	_, err := uc.ReconcileProduct(context.Background(), salesman, "p-battery")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.ReconcileAll(context.Background(), salesman)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ──────────────────────────────────────────────────────────────────────────────
// Listing
// ──────────────────────────────────────────────────────────────────────────────

// List rejects unknown kinds and returns rows newest first.
func TestList_FiltersAndOrder(t *testing.T) {
	f := apptest.New()
	seedBattery(f, 0, 5)
	uc := newUseCase(f, nil)

	ctx := context.Background()
	_, err := uc.StockIn(ctx, stockman, ledger.MovementInput{ProductID: "p-battery", Quantity: 10})
	require.NoError(t, err)
	_, err = uc.StockOut(ctx, stockman, ledger.MovementInput{ProductID: "p-battery", Quantity: 4})
	require.NoError(t, err)

	_, err = uc.List(ctx, repository.TransactionFilter{Kind: "swap"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	rows, err := uc.List(ctx, repository.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, entity.TransactionOut, rows[0].Kind, "newest first")
	assert.Equal(t, int64(6), rows[0].Balance)

	outs, err := uc.List(ctx, repository.TransactionFilter{Kind: entity.TransactionOut})
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, int64(4), outs[0].Quantity)
}
