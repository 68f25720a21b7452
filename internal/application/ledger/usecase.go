package ledger

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/richland-auto/inventory-api/internal/application/audit"
	"github.com/richland-auto/inventory-api/internal/application/ports"
	"github.com/richland-auto/inventory-api/internal/domain"
	"github.com/richland-auto/inventory-api/internal/domain/entity"
	"github.com/richland-auto/inventory-api/internal/domain/repository"
	"github.com/richland-auto/inventory-api/pkg/logger"
)

// UseCase appends stock movements to the ledger. Every append locks the
// product row (SELECT FOR UPDATE), writes the transaction with its resulting
// balance, refreshes the cached quantity and audits the change, all in one
// database transaction. The ledger is the only writer of on-hand quantities.
type UseCase struct {
	txRunner    ports.TxRunner
	txRepo      repository.TransactionRepository
	productRepo repository.ProductRepository
	notifier    AlertNotifier // optional; nil disables alerts
	log         *logger.Logger
}

// NewUseCase builds the use case. notifier may be nil.
func NewUseCase(txRunner ports.TxRunner, txRepo repository.TransactionRepository,
	productRepo repository.ProductRepository, notifier AlertNotifier, log *logger.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, txRepo: txRepo, productRepo: productRepo, notifier: notifier, log: log}
}

// MovementInput is the application-level input for one ledger append.
type MovementInput struct {
	ProductID string
	Quantity  int64
	Reference string
	Note      string
}

// StockIn books received stock and returns the appended transaction.
func (uc *UseCase) StockIn(ctx context.Context, actor entity.Actor, input MovementInput) (*entity.StockTransaction, error) {
	return uc.record(ctx, actor, entity.TransactionIn, input)
}

// StockOut books issued stock. Fails with ErrInsufficientStock when the
// request exceeds the current balance, leaving everything untouched.
func (uc *UseCase) StockOut(ctx context.Context, actor entity.Actor, input MovementInput) (*entity.StockTransaction, error) {
	return uc.record(ctx, actor, entity.TransactionOut, input)
}

func (uc *UseCase) record(ctx context.Context, actor entity.Actor, kind string, input MovementInput) (*entity.StockTransaction, error) {
	if strings.TrimSpace(input.ProductID) == "" {
		return nil, fmt.Errorf("movement without product: %w", domain.ErrValidation)
	}
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("movement quantity %d must be positive: %w", input.Quantity, domain.ErrValidation)
	}

	var (
		recorded *entity.StockTransaction
		product  *entity.Product
	)
	err := uc.txRunner.Run(ctx, func(r ports.TxRepos) error {
		p, err := r.Products.GetForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("product %s: %w", input.ProductID, domain.ErrNotFound)
		}
		tx, err := uc.apply(ctx, r, actor, p, kind, input.Quantity, input.Reference, input.Note, time.Now())
		if err != nil {
			return err
		}
		recorded, product = tx, p
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notifyIfLow(ctx, kind, product)
	return recorded, nil
}

// StockInTx books a stock-in against the caller's transaction repos. Order
// completion calls it once per line item so all lines commit or roll back
// as one unit. The product row is locked here.
func (uc *UseCase) StockInTx(ctx context.Context, r ports.TxRepos, actor entity.Actor,
	productID string, quantity int64, reference, note string, now time.Time) (*entity.StockTransaction, error) {

	if quantity <= 0 {
		return nil, fmt.Errorf("movement quantity %d must be positive: %w", quantity, domain.ErrValidation)
	}
	p, err := r.Products.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
	}
	return uc.apply(ctx, r, actor, p, entity.TransactionIn, quantity, reference, note, now)
}

// apply writes one ledger row plus the cache and audit updates. The caller
// holds the row lock on p.
func (uc *UseCase) apply(ctx context.Context, r ports.TxRepos, actor entity.Actor,
	p *entity.Product, kind string, quantity int64, reference, note string, now time.Time) (*entity.StockTransaction, error) {

	if !p.IsActive() {
		return nil, fmt.Errorf("product %s is deactivated: %w", p.SKU, domain.ErrConflict)
	}

	oldBalance := p.Quantity
	var newBalance int64
	switch kind {
	case entity.TransactionIn:
		newBalance = oldBalance + quantity
	case entity.TransactionOut:
		if quantity > oldBalance {
			return nil, fmt.Errorf("stock out of %d exceeds balance %d on %s: %w",
				quantity, oldBalance, p.SKU, domain.ErrInsufficientStock)
		}
		newBalance = oldBalance - quantity
	default:
		return nil, fmt.Errorf("movement kind %q: %w", kind, domain.ErrValidation)
	}

	tx := &entity.StockTransaction{
		ID:        uuid.New().String(),
		ProductID: p.ID,
		SKU:       p.SKU,
		Kind:      kind,
		Quantity:  quantity,
		Balance:   newBalance,
		Reference: reference,
		Note:      note,
		ActorID:   actor.ID,
		ActorName: actor.Username,
		CreatedAt: now,
	}
	if err := r.Transactions.Append(ctx, tx); err != nil {
		return nil, err
	}
	if err := r.Products.UpdateQuantity(ctx, p.ID, newBalance); err != nil {
		return nil, err
	}

	change := entity.FieldChange{
		Field: "quantity",
		Old:   strconv.FormatInt(oldBalance, 10),
		New:   strconv.FormatInt(newBalance, 10),
	}
	if err := audit.Record(ctx, r.Audit, actor, entity.AuditEntityProduct, p.ID,
		[]entity.FieldChange{change}, now); err != nil {
		return nil, err
	}

	p.Quantity = newBalance
	p.UpdatedAt = now
	return tx, nil
}

// notifyIfLow hands the product to the alert pipeline when an out-movement
// left it at or below its reorder level.
func (uc *UseCase) notifyIfLow(ctx context.Context, kind string, p *entity.Product) {
	if uc.notifier == nil || p == nil || kind != entity.TransactionOut {
		return
	}
	if p.IsActive() && p.IsLowStock() {
		uc.notifier.NotifyLowStock(ctx, p)
	}
}

// List returns filtered ledger rows, newest first.
func (uc *UseCase) List(ctx context.Context, filter repository.TransactionFilter) ([]*entity.StockTransaction, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Kind != "" && !entity.ValidTransactionKind(filter.Kind) {
		return nil, fmt.Errorf("transaction kind %q: %w", filter.Kind, domain.ErrValidation)
	}
	return uc.txRepo.List(ctx, filter)
}

// ListByProduct returns a product's recent ledger rows, newest first.
func (uc *UseCase) ListByProduct(ctx context.Context, productID string, limit int) ([]*entity.StockTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	return uc.txRepo.List(ctx, repository.TransactionFilter{ProductID: productID, Limit: limit})
}
