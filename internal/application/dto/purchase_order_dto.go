package dto

import (
	"time"

	"github.com/richland-auto/inventory-api/internal/domain/entity"
)

// PurchaseOrderItemRequest is one requested line on an order.
type PurchaseOrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Quantity  int64  `json:"quantity" validate:"required,min=1"`
}

// CreatePurchaseOrderRequest is the body for POST /api/purchase-orders.
// Items may be empty; drafts can be filled in later.
type CreatePurchaseOrderRequest struct {
	SupplierID string                     `json:"supplier_id" validate:"required,uuid4"`
	Items      []PurchaseOrderItemRequest `json:"items" validate:"omitempty,dive"`
}

// PurchaseOrderItemResponse is the wire shape of one line.
type PurchaseOrderItemResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	SKU       string `json:"sku,omitempty"`
	Name      string `json:"name,omitempty"`
	Quantity  int64  `json:"quantity"`
}

// PurchaseOrderResponse is the wire shape of an order.
type PurchaseOrderResponse struct {
	ID         string                      `json:"id"`
	Number     string                      `json:"number"`
	SupplierID string                      `json:"supplier_id"`
	Supplier   string                      `json:"supplier,omitempty"`
	Status     string                      `json:"status"`
	Items      []PurchaseOrderItemResponse `json:"items"`
	CreatedBy  string                      `json:"created_by"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`
}

// NewPurchaseOrderResponse maps the entity to its wire shape.
func NewPurchaseOrderResponse(po *entity.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseOrderItemResponse, 0, len(po.Items))
	for _, it := range po.Items {
		items = append(items, PurchaseOrderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			SKU:       it.SKU,
			Name:      it.Name,
			Quantity:  it.Quantity,
		})
	}
	return PurchaseOrderResponse{
		ID:         po.ID,
		Number:     po.Number,
		SupplierID: po.SupplierID,
		Supplier:   po.Supplier,
		Status:     po.Status,
		Items:      items,
		CreatedBy:  po.CreatedBy,
		CreatedAt:  po.CreatedAt,
		UpdatedAt:  po.UpdatedAt,
	}
}

// NewPurchaseOrderListResponse maps a slice of orders.
func NewPurchaseOrderListResponse(orders []*entity.PurchaseOrder) []PurchaseOrderResponse {
	out := make([]PurchaseOrderResponse, 0, len(orders))
	for _, po := range orders {
		out = append(out, NewPurchaseOrderResponse(po))
	}
	return out
}
