package dto

import "github.com/shopspring/decimal"

// MovementActivity tallies ledger activity for the dashboard period.
type MovementActivity struct {
	StockIns  int64 `json:"stock_ins"`
	StockOuts int64 `json:"stock_outs"`
	UnitsIn   int64 `json:"units_in"`
	UnitsOut  int64 `json:"units_out"`
}

// DashboardResponse is the home-screen summary: catalog totals, stock value,
// low-stock watchlist and recent additions.
type DashboardResponse struct {
	TotalProducts  int64             `json:"total_products"`
	ActiveProducts int64             `json:"active_products"`
	LowStockCount  int64             `json:"low_stock_count"`
	StockValue     decimal.Decimal   `json:"stock_value"`
	Activity       MovementActivity  `json:"activity_30d"`
	LowStock       []ProductResponse `json:"low_stock"`
	Recent         []ProductResponse `json:"recent_products"`
}
