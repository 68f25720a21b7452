package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product statuses. Products are never hard-deleted once created; they are
// deactivated and keep their ledger history.
const (
	ProductStatusActive      = "active"
	ProductStatusDeactivated = "deactivated"
)

// Product is a catalog item identified by SKU. Quantity is the cached
// on-hand count derived from the stock ledger; nothing outside the ledger
// writes it.
type Product struct {
	ID           string
	SKU          string // unique across the catalog, active or not
	Name         string
	CategoryID   string
	CategoryName string // denormalized for listings and exports
	Price        decimal.Decimal
	Quantity     int64
	ReorderLevel int64
	Status       string // active, deactivated
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive reports whether the product can take stock movements and appear
// on purchase orders.
func (p *Product) IsActive() bool { return p.Status == ProductStatusActive }

// IsLowStock reports whether on-hand has fallen to or below the reorder level.
func (p *Product) IsLowStock() bool { return p.Quantity <= p.ReorderLevel }

// StockValue returns price times on-hand quantity.
func (p *Product) StockValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(p.Quantity))
}
