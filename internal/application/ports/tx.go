package ports

import (
	"context"

	"github.com/richland-auto/inventory-api/internal/domain/repository"
)

// TxRepos bundles the repositories bound to one database transaction.
// Use cases receive it from TxRunner.Run and must not hold it past the
// closure.
type TxRepos struct {
	Products     repository.ProductRepository
	Categories   repository.CategoryRepository
	Suppliers    repository.SupplierRepository
	Transactions repository.TransactionRepository
	Audit        repository.AuditRepository
	Orders       repository.PurchaseOrderRepository
}

// TxRunner runs fn inside a single database transaction: commit when fn
// returns nil, full rollback otherwise. It backs every multi-write flow
// (ledger appends, catalog mutations with audit, order completion).
type TxRunner interface {
	Run(ctx context.Context, fn func(r TxRepos) error) error
}
