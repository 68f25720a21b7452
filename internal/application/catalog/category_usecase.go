package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/richland-auto/inventory-api/internal/application/audit"
	"github.com/richland-auto/inventory-api/internal/application/ports"
	"github.com/richland-auto/inventory-api/internal/domain"
	"github.com/richland-auto/inventory-api/internal/domain/entity"
	"github.com/richland-auto/inventory-api/internal/domain/repository"
)

// CategoryUseCase owns the category list.
type CategoryUseCase struct {
	txRunner     ports.TxRunner
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
}

// NewCategoryUseCase builds the use case.
func NewCategoryUseCase(txRunner ports.TxRunner, categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository) *CategoryUseCase {
	return &CategoryUseCase{txRunner: txRunner, categoryRepo: categoryRepo, productRepo: productRepo}
}

// Create adds a category with a unique, non-empty name.
func (uc *CategoryUseCase) Create(ctx context.Context, actor entity.Actor, name string) (*entity.Category, error) {
	if !actor.HasRole(entity.RoleOwner, entity.RoleAdmin, entity.RoleStockManager) {
		return nil, fmt.Errorf("create category requires a catalog role: %w", domain.ErrForbidden)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("category name is required: %w", domain.ErrValidation)
	}

	if existing, err := uc.categoryRepo.GetByName(ctx, name); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("category %q already exists: %w", name, domain.ErrConflict)
	}

	now := time.Now()
	category := &entity.Category{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := uc.txRunner.Run(ctx, func(r ports.TxRepos) error {
		if err := r.Categories.Create(ctx, category); err != nil {
			return err
		}
		return audit.Record(ctx, r.Audit, actor, entity.AuditEntityCategory, category.ID,
			[]entity.FieldChange{{Field: "name", New: name}}, now)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes an empty category. Categories still referenced by products
// stay.
func (uc *CategoryUseCase) Delete(ctx context.Context, actor entity.Actor, id string) error {
	if !actor.HasRole(entity.RoleOwner, entity.RoleAdmin, entity.RoleStockManager) {
		return fmt.Errorf("delete category requires a catalog role: %w", domain.ErrForbidden)
	}

	return uc.txRunner.Run(ctx, func(r ports.TxRepos) error {
		category, err := r.Categories.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if category == nil {
			return fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
		}

		count, err := r.Products.CountByCategory(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("category %q still has %d product(s): %w", category.Name, count, domain.ErrConflict)
		}

		if err := r.Categories.Delete(ctx, id); err != nil {
			return err
		}
		return audit.Record(ctx, r.Audit, actor, entity.AuditEntityCategory, id,
			[]entity.FieldChange{{Field: "deleted", Old: category.Name}}, time.Now())
	})
}

// List returns all categories ordered by name.
func (uc *CategoryUseCase) List(ctx context.Context) ([]*entity.Category, error) {
	return uc.categoryRepo.List(ctx)
}
