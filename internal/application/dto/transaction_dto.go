package dto

import (
	"time"

	"github.com/richland-auto/inventory-api/internal/domain/entity"
)

// RecordTransactionRequest is the body for POST /api/transactions.
type RecordTransactionRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Kind      string `json:"kind" validate:"required,oneof=in out"`
	Quantity  int64  `json:"quantity" validate:"required,min=1"`
	Reference string `json:"reference" validate:"omitempty,max=200"`
	Note      string `json:"note" validate:"omitempty,max=500"`
}

// TransactionResponse is the wire shape of one ledger row.
type TransactionResponse struct {
	ID        string    `json:"id"`
	Sequence  int64     `json:"sequence"`
	ProductID string    `json:"product_id"`
	SKU       string    `json:"sku,omitempty"`
	Kind      string    `json:"kind"`
	Quantity  int64     `json:"quantity"`
	Balance   int64     `json:"balance"`
	Reference string    `json:"reference,omitempty"`
	Note      string    `json:"note,omitempty"`
	ActorID   string    `json:"actor_id"`
	ActorName string    `json:"actor_name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTransactionResponse maps the entity to its wire shape.
func NewTransactionResponse(t *entity.StockTransaction) TransactionResponse {
	return TransactionResponse{
		ID:        t.ID,
		Sequence:  t.Sequence,
		ProductID: t.ProductID,
		SKU:       t.SKU,
		Kind:      t.Kind,
		Quantity:  t.Quantity,
		Balance:   t.Balance,
		Reference: t.Reference,
		Note:      t.Note,
		ActorID:   t.ActorID,
		ActorName: t.ActorName,
		CreatedAt: t.CreatedAt,
	}
}

// NewTransactionListResponse maps a slice of ledger rows.
func NewTransactionListResponse(txs []*entity.StockTransaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, NewTransactionResponse(t))
	}
	return out
}

// ReconciliationFinding reports one product whose cached quantity disagrees
// with the ledger.
type ReconciliationFinding struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Cached    int64  `json:"cached"`
	Computed  int64  `json:"computed"`
}

// ReconciliationResponse is the result of a reconciliation sweep.
type ReconciliationResponse struct {
	Checked   int                     `json:"checked"`
	Faults    []ReconciliationFinding `json:"faults"`
	CheckedAt time.Time               `json:"checked_at"`
}
