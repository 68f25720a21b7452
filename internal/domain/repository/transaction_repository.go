package repository

import (
	"context"
	"time"

	"github.com/richland-auto/inventory-api/internal/domain/entity"
)

// TransactionFilter narrows ledger listings. Nil time bounds mean unbounded.
// Ascending orders oldest first, which keeps offset paging stable on the
// append-only table; the default is newest first for display.
type TransactionFilter struct {
	ProductID string
	Kind      string
	ActorID   string
	From      *time.Time
	To        *time.Time
	Ascending bool
	Limit     int
	Offset    int
}

// LedgerBalance pairs a product's cached quantity with the sum of its
// ledger deltas. Raw query result; the use case turns it into findings.
type LedgerBalance struct {
	ProductID string
	SKU       string
	Cached    int64
	Computed  int64
}

// TransactionRepository is the persistence port for the stock ledger.
// Append-only: no update or delete methods exist.
type TransactionRepository interface {
	Append(ctx context.Context, tx *entity.StockTransaction) error
	List(ctx context.Context, filter TransactionFilter) ([]*entity.StockTransaction, error)
	// SumDeltas recomputes on-hand for one product from the ledger.
	SumDeltas(ctx context.Context, productID string) (int64, error)
	// Balances returns cached vs ledger-computed quantities for every
	// product, for reconciliation sweeps.
	Balances(ctx context.Context) ([]LedgerBalance, error)
}
