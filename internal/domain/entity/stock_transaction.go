package entity

import "time"

// Stock transaction kinds.
const (
	TransactionIn  = "in"  // receiving: purchases, returns, found stock
	TransactionOut = "out" // issuing: sales, damage, shrinkage
)

// StockTransaction is one append-only ledger row. The ledger is the source
// of truth for on-hand quantities; rows are never updated or deleted.
// Sequence is assigned by the store and totally orders the ledger.
type StockTransaction struct {
	ID        string
	Sequence  int64
	ProductID string
	SKU       string // denormalized for exports
	Kind      string // in, out
	Quantity  int64  // always > 0; direction comes from Kind
	Balance   int64  // on-hand after applying this row
	Reference string // optional: purchase order id, sale id
	Note      string
	ActorID   string
	ActorName string
	CreatedAt time.Time
}

// Delta is the signed quantity this row applies to the balance.
func (t *StockTransaction) Delta() int64 {
	if t.Kind == TransactionOut {
		return -t.Quantity
	}
	return t.Quantity
}

// ValidTransactionKind reports whether s is a known ledger kind.
func ValidTransactionKind(s string) bool {
	return s == TransactionIn || s == TransactionOut
}
