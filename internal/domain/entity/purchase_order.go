package entity

import (
	"fmt"
	"time"

	"github.com/richland-auto/inventory-api/internal/domain"
)

// Purchase order statuses. Completed and cancelled are terminal.
const (
	POStatusDraft     = "draft"
	POStatusSubmitted = "submitted"
	POStatusCompleted = "completed"
	POStatusCancelled = "cancelled"
)

// PurchaseOrder tracks incoming stock from a supplier through
// draft -> submitted -> completed, or cancellation from any open state.
// Completion is the only path that books stock into the ledger.
type PurchaseOrder struct {
	ID         string
	Number     string // human reference, e.g. PO-3F2A9C41
	SupplierID string
	Supplier   string // denormalized name for listings
	Status     string
	Items      []PurchaseOrderItem
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PurchaseOrderItem is one ordered line. Quantity is always > 0.
type PurchaseOrderItem struct {
	ID        string
	ProductID string
	SKU       string // denormalized
	Name      string // denormalized
	Quantity  int64
}

// IsOpen reports whether the order still blocks product deactivation.
func (po *PurchaseOrder) IsOpen() bool {
	return po.Status == POStatusDraft || po.Status == POStatusSubmitted
}

// Editable reports whether line items may still change.
func (po *PurchaseOrder) Editable() bool { return po.Status == POStatusDraft }

// Submit moves a draft with at least one line to submitted.
func (po *PurchaseOrder) Submit() error {
	if po.Status != POStatusDraft {
		return fmt.Errorf("submit %s order %s: %w", po.Status, po.Number, domain.ErrInvalidOperation)
	}
	if len(po.Items) == 0 {
		return fmt.Errorf("submit order %s without line items: %w", po.Number, domain.ErrInvalidOperation)
	}
	po.Status = POStatusSubmitted
	return nil
}

// Complete moves a submitted order to its terminal completed state. The
// caller is responsible for booking one stock-in per line in the same
// transaction.
func (po *PurchaseOrder) Complete() error {
	if po.Status != POStatusSubmitted {
		return fmt.Errorf("complete %s order %s: %w", po.Status, po.Number, domain.ErrInvalidOperation)
	}
	po.Status = POStatusCompleted
	return nil
}

// Cancel closes an open order without booking stock.
func (po *PurchaseOrder) Cancel() error {
	if !po.IsOpen() {
		return fmt.Errorf("cancel %s order %s: %w", po.Status, po.Number, domain.ErrInvalidOperation)
	}
	po.Status = POStatusCancelled
	return nil
}
