package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/richland-auto/inventory-api/internal/application/audit"
	"github.com/richland-auto/inventory-api/internal/application/dto"
	"github.com/richland-auto/inventory-api/internal/application/ledger"
	"github.com/richland-auto/inventory-api/internal/application/ports"
	"github.com/richland-auto/inventory-api/internal/domain"
	"github.com/richland-auto/inventory-api/internal/domain/entity"
	"github.com/richland-auto/inventory-api/internal/domain/repository"
)

// ProductUseCase owns product master data. It validates, persists and audits
// catalog changes; on-hand quantity is out of its reach and moves through
// the ledger use case only.
type ProductUseCase struct {
	txRunner     ports.TxRunner
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	orderRepo    repository.PurchaseOrderRepository
	ledgerUC     *ledger.UseCase
}

// NewProductUseCase builds the use case.
func NewProductUseCase(
	txRunner ports.TxRunner,
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	orderRepo repository.PurchaseOrderRepository,
	ledgerUC *ledger.UseCase,
) *ProductUseCase {
	return &ProductUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		orderRepo:    orderRepo,
		ledgerUC:     ledgerUC,
	}
}

// Create registers a product with quantity zero and audits every non-default
// field. A positive InitialQuantity is booked as a stock-in through the
// ledger inside the same transaction.
func (uc *ProductUseCase) Create(ctx context.Context, actor entity.Actor, input dto.CreateProductRequest) (*entity.Product, error) {
	if !actor.HasRole(entity.RoleOwner, entity.RoleAdmin, entity.RoleStockManager) {
		return nil, fmt.Errorf("create product requires a catalog role: %w", domain.ErrForbidden)
	}

	sku := strings.TrimSpace(input.SKU)
	name := strings.TrimSpace(input.Name)
	if sku == "" || name == "" {
		return nil, fmt.Errorf("sku and name are required: %w", domain.ErrValidation)
	}
	if input.Price.IsNegative() {
		return nil, fmt.Errorf("price %s must not be negative: %w", input.Price, domain.ErrValidation)
	}
	if input.ReorderLevel < 0 || input.InitialQuantity < 0 {
		return nil, fmt.Errorf("reorder level and initial quantity must not be negative: %w", domain.ErrValidation)
	}

	category, err := uc.categoryRepo.GetByID(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, fmt.Errorf("category %s does not exist: %w", input.CategoryID, domain.ErrValidation)
	}

	if existing, err := uc.productRepo.GetBySKU(ctx, sku); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("sku %s already exists: %w", sku, domain.ErrValidation)
	}

	now := time.Now()
	product := &entity.Product{
		ID:           uuid.New().String(),
		SKU:          sku,
		Name:         name,
		CategoryID:   category.ID,
		CategoryName: category.Name,
		Price:        input.Price,
		Quantity:     0,
		ReorderLevel: input.ReorderLevel,
		Status:       entity.ProductStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = uc.txRunner.Run(ctx, func(r ports.TxRepos) error {
		if err := r.Products.Create(ctx, product); err != nil {
			return err
		}
		if err := audit.Record(ctx, r.Audit, actor, entity.AuditEntityProduct, product.ID,
			creationChanges(product), now); err != nil {
			return err
		}
		if input.InitialQuantity > 0 {
			if _, err := uc.ledgerUC.StockInTx(ctx, r, actor, product.ID, input.InitialQuantity,
				"", "Initial stock on product creation.", now); err != nil {
				return err
			}
			product.Quantity = input.InitialQuantity
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// creationChanges lists the audit rows for a fresh product: one per
// non-default field.
func creationChanges(p *entity.Product) []entity.FieldChange {
	changes := []entity.FieldChange{
		{Field: "sku", New: p.SKU},
		{Field: "name", New: p.Name},
		{Field: "category_id", New: p.CategoryID},
	}
	if !p.Price.IsZero() {
		changes = append(changes, entity.FieldChange{Field: "price", New: p.Price.String()})
	}
	if p.ReorderLevel != 0 {
		changes = append(changes, entity.FieldChange{Field: "reorder_level", New: strconv.FormatInt(p.ReorderLevel, 10)})
	}
	return changes
}

// Update applies partial changes and audits each touched field. A request
// naming quantity is refused outright.
func (uc *ProductUseCase) Update(ctx context.Context, actor entity.Actor, id string, input dto.UpdateProductRequest) (*entity.Product, error) {
	if !actor.HasRole(entity.RoleOwner, entity.RoleAdmin, entity.RoleStockManager) {
		return nil, fmt.Errorf("update product requires a catalog role: %w", domain.ErrForbidden)
	}
	if input.Quantity != nil {
		return nil, fmt.Errorf("quantity only changes through stock transactions: %w", domain.ErrInvalidOperation)
	}

	var updated *entity.Product
	err := uc.txRunner.Run(ctx, func(r ports.TxRepos) error {
		p, err := r.Products.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
		}

		now := time.Now()
		var changes []entity.FieldChange

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return fmt.Errorf("name must not be empty: %w", domain.ErrValidation)
			}
			if name != p.Name {
				changes = append(changes, entity.FieldChange{Field: "name", Old: p.Name, New: name})
				p.Name = name
			}
		}
		if input.CategoryID != nil && *input.CategoryID != p.CategoryID {
			category, err := r.Categories.GetByID(ctx, *input.CategoryID)
			if err != nil {
				return err
			}
			if category == nil {
				return fmt.Errorf("category %s does not exist: %w", *input.CategoryID, domain.ErrValidation)
			}
			changes = append(changes, entity.FieldChange{Field: "category_id", Old: p.CategoryID, New: category.ID})
			p.CategoryID = category.ID
			p.CategoryName = category.Name
		}
		if input.Price != nil && !input.Price.Equal(p.Price) {
			if input.Price.IsNegative() {
				return fmt.Errorf("price %s must not be negative: %w", input.Price, domain.ErrValidation)
			}
			changes = append(changes, entity.FieldChange{Field: "price", Old: p.Price.String(), New: input.Price.String()})
			p.Price = *input.Price
		}
		if input.ReorderLevel != nil && *input.ReorderLevel != p.ReorderLevel {
			if *input.ReorderLevel < 0 {
				return fmt.Errorf("reorder level must not be negative: %w", domain.ErrValidation)
			}
			changes = append(changes, entity.FieldChange{
				Field: "reorder_level",
				Old:   strconv.FormatInt(p.ReorderLevel, 10),
				New:   strconv.FormatInt(*input.ReorderLevel, 10),
			})
			p.ReorderLevel = *input.ReorderLevel
		}

		updated = p
		if len(changes) == 0 {
			return nil // no-op update, nothing to persist or audit
		}

		p.UpdatedAt = now
		if err := r.Products.Update(ctx, p); err != nil {
			return err
		}
		return audit.Record(ctx, r.Audit, actor, entity.AuditEntityProduct, p.ID, changes, now)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Deactivate soft-deletes a product. Open purchase orders block it.
func (uc *ProductUseCase) Deactivate(ctx context.Context, actor entity.Actor, id string) (*entity.Product, error) {
	return uc.setStatus(ctx, actor, id, entity.ProductStatusDeactivated)
}

// Reactivate restores a deactivated product.
func (uc *ProductUseCase) Reactivate(ctx context.Context, actor entity.Actor, id string) (*entity.Product, error) {
	return uc.setStatus(ctx, actor, id, entity.ProductStatusActive)
}

func (uc *ProductUseCase) setStatus(ctx context.Context, actor entity.Actor, id, status string) (*entity.Product, error) {
	if !actor.HasRole(entity.RoleOwner, entity.RoleStockManager) {
		return nil, fmt.Errorf("product status changes require owner or stock manager: %w", domain.ErrForbidden)
	}

	if status == entity.ProductStatusDeactivated {
		open, err := uc.orderRepo.CountOpenByProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		if open > 0 {
			return nil, fmt.Errorf("product is on %d open purchase order(s): %w", open, domain.ErrConflict)
		}
	}

	var updated *entity.Product
	err := uc.txRunner.Run(ctx, func(r ports.TxRepos) error {
		p, err := r.Products.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
		}
		if p.Status == status {
			return fmt.Errorf("product %s is already %s: %w", p.SKU, status, domain.ErrInvalidOperation)
		}

		now := time.Now()
		change := entity.FieldChange{Field: "status", Old: p.Status, New: status}
		p.Status = status
		p.UpdatedAt = now
		if err := r.Products.Update(ctx, p); err != nil {
			return err
		}
		if err := audit.Record(ctx, r.Audit, actor, entity.AuditEntityProduct, p.ID,
			[]entity.FieldChange{change}, now); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Get returns one product by id.
func (uc *ProductUseCase) Get(ctx context.Context, id string) (*entity.Product, error) {
	p, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

// List returns filtered products, newest first.
func (uc *ProductUseCase) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	if filter.Status != "" &&
		filter.Status != entity.ProductStatusActive &&
		filter.Status != entity.ProductStatusDeactivated {
		return nil, fmt.Errorf("status %q: %w", filter.Status, domain.ErrValidation)
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return uc.productRepo.List(ctx, filter)
}

// LowStock returns active products at or below their reorder level.
func (uc *ProductUseCase) LowStock(ctx context.Context) ([]*entity.Product, error) {
	return uc.productRepo.ListLowStock(ctx)
}
