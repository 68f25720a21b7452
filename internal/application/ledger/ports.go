package ledger

import (
	"context"

	"github.com/richland-auto/inventory-api/internal/domain/entity"
)

// AlertNotifier publishes a low-stock notification after a ledger commit
// leaves a product at or below its reorder level. Implementations must not
// block the request path; the queue dispatcher satisfies this.
type AlertNotifier interface {
	NotifyLowStock(ctx context.Context, product *entity.Product)
}
