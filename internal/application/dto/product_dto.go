package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/richland-auto/inventory-api/internal/domain/entity"
)

// CreateProductRequest is the body for POST /api/products.
// InitialQuantity, when positive, is booked as a stock-in through the
// ledger, never written to the product row directly.
type CreateProductRequest struct {
	SKU             string          `json:"sku" validate:"required,max=100"`
	Name            string          `json:"name" validate:"required,max=200"`
	CategoryID      string          `json:"category_id" validate:"required,uuid4"`
	Price           decimal.Decimal `json:"price"`
	ReorderLevel    int64           `json:"reorder_level" validate:"omitempty,min=0"`
	InitialQuantity int64           `json:"initial_quantity" validate:"omitempty,min=0"`
}

// UpdateProductRequest is the body for PUT /api/products/:id. Nil fields
// stay unchanged. Quantity is accepted only so the use case can reject it
// explicitly: on-hand moves through the ledger alone.
type UpdateProductRequest struct {
	Name         *string          `json:"name" validate:"omitempty,max=200"`
	CategoryID   *string          `json:"category_id" validate:"omitempty,uuid4"`
	Price        *decimal.Decimal `json:"price"`
	ReorderLevel *int64           `json:"reorder_level" validate:"omitempty,min=0"`
	Quantity     *int64           `json:"quantity"`
}

// ProductResponse is the wire shape of a product.
type ProductResponse struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int64           `json:"quantity"`
	ReorderLevel int64           `json:"reorder_level"`
	Status       string          `json:"status"`
	LowStock     bool            `json:"low_stock"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewProductResponse maps the entity to its wire shape.
func NewProductResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		Price:        p.Price,
		Quantity:     p.Quantity,
		ReorderLevel: p.ReorderLevel,
		Status:       p.Status,
		LowStock:     p.IsActive() && p.IsLowStock(),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// NewProductListResponse maps a slice of products.
func NewProductListResponse(products []*entity.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, NewProductResponse(p))
	}
	return out
}
