// Package reporting holds the read-only views over the catalog and the
// ledger: dashboard aggregates, CSV and PDF exports, and the bulk CSV
// import. Nothing here mutates stock; imports delegate to the catalog.
package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/richland-auto/inventory-api/internal/application/dto"
	"github.com/richland-auto/inventory-api/internal/domain/entity"
	"github.com/richland-auto/inventory-api/internal/domain/repository"
)

const (
	dashboardActivityDays = 30 // ledger window shown on the dashboard
	dashboardRecentCount  = 5  // newest products shown on the dashboard
)

// DashboardUseCase builds the home-screen summary.
//
// Data sources: AnalyticsRepository for the aggregate counters and
// ProductRepository for the low-stock watchlist and recent additions.
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	productRepo   repository.ProductRepository
}

// NewDashboardUseCase builds the use case.
func NewDashboardUseCase(
	analyticsRepo repository.AnalyticsRepository,
	productRepo repository.ProductRepository,
) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, productRepo: productRepo}
}

// GetSummary assembles the dashboard payload.
//
// Four queries run in parallel:
//  1. GetInventoryTotals          → product counters + stock value
//  2. GetMovementCounts(30 days)  → ledger activity
//  3. ListLowStock                → watchlist
//  4. List(newest 5)              → recent additions
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardResponse, error) {
	now := time.Now()
	since := now.AddDate(0, 0, -dashboardActivityDays)

	// ── Goroutines to parallelize the 4 DB queries ────────────────────────────
	type totalsResult struct {
		totals repository.InventoryTotals
		err    error
	}
	type movementsResult struct {
		counts repository.MovementCounts
		err    error
	}
	type productsResult struct {
		products []*entity.Product
		err      error
	}

	totalsCh := make(chan totalsResult, 1)
	movementsCh := make(chan movementsResult, 1)
	lowStockCh := make(chan productsResult, 1)
	recentCh := make(chan productsResult, 1)

	go func() {
		totals, err := uc.analyticsRepo.GetInventoryTotals(ctx)
		totalsCh <- totalsResult{totals, err}
	}()
	go func() {
		counts, err := uc.analyticsRepo.GetMovementCounts(ctx, since, now)
		movementsCh <- movementsResult{counts, err}
	}()
	go func() {
		products, err := uc.productRepo.ListLowStock(ctx)
		lowStockCh <- productsResult{products, err}
	}()
	go func() {
		products, err := uc.productRepo.List(ctx, repository.ProductFilter{
			Limit: dashboardRecentCount,
		})
		recentCh <- productsResult{products, err}
	}()

	totals := <-totalsCh
	movements := <-movementsCh
	lowStock := <-lowStockCh
	recent := <-recentCh

	if totals.err != nil {
		return nil, fmt.Errorf("dashboard: inventory totals: %w", totals.err)
	}
	if movements.err != nil {
		return nil, fmt.Errorf("dashboard: movement counts: %w", movements.err)
	}
	if lowStock.err != nil {
		return nil, fmt.Errorf("dashboard: low stock list: %w", lowStock.err)
	}
	if recent.err != nil {
		return nil, fmt.Errorf("dashboard: recent products: %w", recent.err)
	}

	return &dto.DashboardResponse{
		TotalProducts:  totals.totals.TotalProducts,
		ActiveProducts: totals.totals.ActiveProducts,
		LowStockCount:  totals.totals.LowStockCount,
		StockValue:     totals.totals.StockValue.Round(2),
		Activity: dto.MovementActivity{
			StockIns:  movements.counts.StockIns,
			StockOuts: movements.counts.StockOuts,
			UnitsIn:   movements.counts.UnitsIn,
			UnitsOut:  movements.counts.UnitsOut,
		},
		LowStock: dto.NewProductListResponse(lowStock.products),
		Recent:   dto.NewProductListResponse(recent.products),
	}, nil
}
