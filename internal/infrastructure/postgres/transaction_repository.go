package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/richland-auto/inventory-api/internal/domain/entity"
	"github.com/richland-auto/inventory-api/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo implements the stock ledger port on PostgreSQL (works
// with pool or tx). The table is append-only; this type exposes no update
// or delete.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository builds the persistence adapter for the ledger.
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Append inserts one ledger row and fills tx.Sequence from the store.
func (r *TransactionRepo) Append(ctx context.Context, tx *entity.StockTransaction) error {
	query := `
		INSERT INTO stock_transactions (id, product_id, sku, kind, quantity, balance, reference, note, actor_id, actor_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		tx.ID, tx.ProductID, tx.SKU, tx.Kind, tx.Quantity, tx.Balance,
		tx.Reference, tx.Note, tx.ActorID, tx.ActorName, tx.CreatedAt,
	).Scan(&tx.Sequence)
	if err != nil {
		return fmt.Errorf("insert stock transaction: %w", err)
	}
	return nil
}

// List returns ledger rows matching filter.
func (r *TransactionRepo) List(ctx context.Context, filter repository.TransactionFilter) ([]*entity.StockTransaction, error) {
	query := `
		SELECT id, seq, product_id, sku, kind, quantity, balance, reference, note, actor_id, actor_name, created_at
		FROM stock_transactions`

	var conds []string
	var args []any
	if filter.ProductID != "" {
		args = append(args, filter.ProductID)
		conds = append(conds, fmt.Sprintf("product_id = $%d", len(args)))
	}
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		conds = append(conds, fmt.Sprintf("kind = $%d", len(args)))
	}
	if filter.ActorID != "" {
		args = append(args, filter.ActorID)
		conds = append(conds, fmt.Sprintf("actor_id = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	order := "DESC"
	if filter.Ascending {
		order = "ASC"
	}
	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY seq %s LIMIT $%d", order, len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock transactions: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockTransaction
	for rows.Next() {
		var t entity.StockTransaction
		if err := rows.Scan(
			&t.ID, &t.Sequence, &t.ProductID, &t.SKU, &t.Kind, &t.Quantity,
			&t.Balance, &t.Reference, &t.Note, &t.ActorID, &t.ActorName, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock transaction: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

// SumDeltas recomputes one product's on-hand from its ledger rows.
func (r *TransactionRepo) SumDeltas(ctx context.Context, productID string) (int64, error) {
	const query = `
		SELECT COALESCE(SUM(CASE WHEN kind = 'in' THEN quantity ELSE -quantity END), 0)
		FROM stock_transactions
		WHERE product_id = $1`
	var sum int64
	if err := r.q.QueryRow(ctx, query, productID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum ledger deltas: %w", err)
	}
	return sum, nil
}

// Balances pairs every product's cached quantity with its ledger sum, for
// the reconciliation sweep. Products with no ledger rows compute to zero.
func (r *TransactionRepo) Balances(ctx context.Context) ([]repository.LedgerBalance, error) {
	const query = `
		SELECT
		    p.id,
		    p.sku,
		    p.quantity                                                                   AS cached,
		    COALESCE(SUM(CASE WHEN t.kind = 'in' THEN t.quantity ELSE -t.quantity END), 0) AS computed
		FROM products p
		LEFT JOIN stock_transactions t ON t.product_id = p.id
		GROUP BY p.id, p.sku, p.quantity
		ORDER BY p.sku ASC`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ledger balances: %w", err)
	}
	defer rows.Close()

	var list []repository.LedgerBalance
	for rows.Next() {
		var b repository.LedgerBalance
		if err := rows.Scan(&b.ProductID, &b.SKU, &b.Cached, &b.Computed); err != nil {
			return nil, fmt.Errorf("scan ledger balance: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}
