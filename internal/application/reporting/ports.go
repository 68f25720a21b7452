package reporting

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/richland-auto/inventory-api/internal/domain/entity"
)

// InventoryReportData is everything the inventory PDF needs.
type InventoryReportData struct {
	ShopName    string
	GeneratedAt time.Time
	Products    []*entity.Product
	TotalValue  decimal.Decimal
}

// MovementsReportData is everything the stock movement PDF needs.
type MovementsReportData struct {
	ShopName     string
	GeneratedAt  time.Time
	From         time.Time
	To           time.Time
	Kind         string // empty means both directions
	Transactions []*entity.StockTransaction
}

// ReportPDFGenerator renders the read-only reports. The maroto adapter
// implements it.
type ReportPDFGenerator interface {
	GenerateInventoryPDF(ctx context.Context, data InventoryReportData) ([]byte, error)
	GenerateMovementsPDF(ctx context.Context, data MovementsReportData) ([]byte, error)
}
