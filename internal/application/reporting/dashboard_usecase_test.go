package reporting_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richland-auto/inventory-api/internal/application/apptest"
	"github.com/richland-auto/inventory-api/internal/application/reporting"
	"github.com/richland-auto/inventory-api/internal/domain/entity"
	"github.com/richland-auto/inventory-api/internal/domain/repository"
)

// analyticsStub serves canned aggregates; err fails every call.
type analyticsStub struct {
	totals repository.InventoryTotals
	counts repository.MovementCounts
	err    error
}

func (s *analyticsStub) GetInventoryTotals(context.Context) (repository.InventoryTotals, error) {
	return s.totals, s.err
}

func (s *analyticsStub) GetMovementCounts(context.Context, time.Time, time.Time) (repository.MovementCounts, error) {
	return s.counts, s.err
}

func TestDashboard_AssemblesSummary(t *testing.T) {
	f := apptest.New()
	now := time.Now()
	f.SeedProduct(&entity.Product{
		ID: "p-brake", SKU: "BRK-001", Name: "Brembo Brake Pad Set",
		Price: decimal.RequireFromString("1800.00"), Quantity: 2, ReorderLevel: 5,
		Status: entity.ProductStatusActive, CreatedAt: now, UpdatedAt: now,
	})

	stub := &analyticsStub{
		totals: repository.InventoryTotals{
			TotalProducts:  1,
			ActiveProducts: 1,
			LowStockCount:  1,
			StockValue:     decimal.RequireFromString("3600.00"),
		},
		counts: repository.MovementCounts{StockIns: 3, StockOuts: 1, UnitsIn: 40, UnitsOut: 20},
	}
	uc := reporting.NewDashboardUseCase(stub, f.Products)

	summary, err := uc.GetSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), summary.TotalProducts)
	assert.Equal(t, int64(1), summary.LowStockCount)
	assert.True(t, summary.StockValue.Equal(decimal.RequireFromString("3600.00")))
	assert.Equal(t, int64(3), summary.Activity.StockIns)
	require.Len(t, summary.LowStock, 1)
	assert.Equal(t, "BRK-001", summary.LowStock[0].SKU)
	assert.True(t, summary.LowStock[0].LowStock)
	require.Len(t, summary.Recent, 1)
}

func TestDashboard_PropagatesQueryErrors(t *testing.T) {
	f := apptest.New()
	stub := &analyticsStub{err: errors.New("connection reset")}
	uc := reporting.NewDashboardUseCase(stub, f.Products)

	_, err := uc.GetSummary(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dashboard")
}
