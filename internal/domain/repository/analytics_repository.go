package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// InventoryTotals is the raw aggregate row behind the dashboard.
type InventoryTotals struct {
	TotalProducts  int64
	ActiveProducts int64
	LowStockCount  int64           // active products at or below reorder level
	StockValue     decimal.Decimal // sum(price * quantity) over active products
}

// MovementCounts tallies ledger activity over a period.
type MovementCounts struct {
	StockIns  int64
	StockOuts int64
	UnitsIn   int64
	UnitsOut  int64
}

// AnalyticsRepository holds the read-only aggregate queries behind the
// dashboard. Implementations never modify data.
type AnalyticsRepository interface {
	GetInventoryTotals(ctx context.Context) (InventoryTotals, error)
	GetMovementCounts(ctx context.Context, from, to time.Time) (MovementCounts, error)
}
