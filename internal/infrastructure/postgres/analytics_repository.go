package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/richland-auto/inventory-api/internal/domain/entity"
	"github.com/richland-auto/inventory-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo runs the read-only aggregate queries behind the dashboard.
type AnalyticsRepo struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository builds the analytics adapter.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepo {
	return &AnalyticsRepo{pool: pool}
}

// GetInventoryTotals returns catalog counters and the stock value of active
// products. COALESCE keeps an empty catalog at zero instead of NULL.
func (r *AnalyticsRepo) GetInventoryTotals(ctx context.Context) (repository.InventoryTotals, error) {
	const query = `
	SELECT
	    COUNT(*)                                                               AS total_products,
	    COUNT(*) FILTER (WHERE status = $1)                                    AS active_products,
	    COUNT(*) FILTER (WHERE status = $1 AND quantity <= reorder_level)      AS low_stock_count,
	    COALESCE(SUM(price * quantity) FILTER (WHERE status = $1), 0)          AS stock_value
	FROM products`

	var totals repository.InventoryTotals
	err := r.pool.QueryRow(ctx, query, entity.ProductStatusActive).Scan(
		&totals.TotalProducts,
		&totals.ActiveProducts,
		&totals.LowStockCount,
		&totals.StockValue,
	)
	if err != nil {
		return repository.InventoryTotals{}, fmt.Errorf("analytics.GetInventoryTotals: %w", err)
	}
	return totals, nil
}

// GetMovementCounts tallies ledger rows and units moved in the period.
func (r *AnalyticsRepo) GetMovementCounts(ctx context.Context, from, to time.Time) (repository.MovementCounts, error) {
	const query = `
	SELECT
	    COUNT(*) FILTER (WHERE kind = 'in')                  AS stock_ins,
	    COUNT(*) FILTER (WHERE kind = 'out')                 AS stock_outs,
	    COALESCE(SUM(quantity) FILTER (WHERE kind = 'in'), 0)  AS units_in,
	    COALESCE(SUM(quantity) FILTER (WHERE kind = 'out'), 0) AS units_out
	FROM stock_transactions
	WHERE created_at BETWEEN $1 AND $2`

	var counts repository.MovementCounts
	err := r.pool.QueryRow(ctx, query, from, to).Scan(
		&counts.StockIns,
		&counts.StockOuts,
		&counts.UnitsIn,
		&counts.UnitsOut,
	)
	if err != nil {
		return repository.MovementCounts{}, fmt.Errorf("analytics.GetMovementCounts: %w", err)
	}
	return counts, nil
}
