package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/richland-auto/inventory-api/internal/application/audit"
	"github.com/richland-auto/inventory-api/internal/application/dto"
	"github.com/richland-auto/inventory-api/internal/application/ports"
	"github.com/richland-auto/inventory-api/internal/domain"
	"github.com/richland-auto/inventory-api/internal/domain/entity"
	"github.com/richland-auto/inventory-api/internal/domain/repository"
)

// SupplierUseCase owns supplier master data.
type SupplierUseCase struct {
	txRunner     ports.TxRunner
	supplierRepo repository.SupplierRepository
}

// NewSupplierUseCase builds the use case.
func NewSupplierUseCase(txRunner ports.TxRunner, supplierRepo repository.SupplierRepository) *SupplierUseCase {
	return &SupplierUseCase{txRunner: txRunner, supplierRepo: supplierRepo}
}

// Create registers a supplier with a unique name.
func (uc *SupplierUseCase) Create(ctx context.Context, actor entity.Actor, input dto.CreateSupplierRequest) (*entity.Supplier, error) {
	if !actor.HasRole(entity.RoleOwner, entity.RoleAdmin, entity.RoleStockManager) {
		return nil, fmt.Errorf("create supplier requires a catalog role: %w", domain.ErrForbidden)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("supplier name is required: %w", domain.ErrValidation)
	}

	if existing, err := uc.supplierRepo.GetByName(ctx, name); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("supplier %q already exists: %w", name, domain.ErrConflict)
	}

	now := time.Now()
	supplier := &entity.Supplier{
		ID:            uuid.New().String(),
		Name:          name,
		ContactPerson: strings.TrimSpace(input.ContactPerson),
		Email:         strings.TrimSpace(input.Email),
		Phone:         strings.TrimSpace(input.Phone),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := uc.txRunner.Run(ctx, func(r ports.TxRepos) error {
		if err := r.Suppliers.Create(ctx, supplier); err != nil {
			return err
		}
		return audit.Record(ctx, r.Audit, actor, entity.AuditEntitySupplier, supplier.ID,
			supplierCreationChanges(supplier), now)
	})
	if err != nil {
		return nil, err
	}
	return supplier, nil
}

func supplierCreationChanges(s *entity.Supplier) []entity.FieldChange {
	changes := []entity.FieldChange{{Field: "name", New: s.Name}}
	if s.ContactPerson != "" {
		changes = append(changes, entity.FieldChange{Field: "contact_person", New: s.ContactPerson})
	}
	if s.Email != "" {
		changes = append(changes, entity.FieldChange{Field: "email", New: s.Email})
	}
	if s.Phone != "" {
		changes = append(changes, entity.FieldChange{Field: "phone", New: s.Phone})
	}
	return changes
}

// Update applies partial changes and audits each touched field.
func (uc *SupplierUseCase) Update(ctx context.Context, actor entity.Actor, id string, input dto.UpdateSupplierRequest) (*entity.Supplier, error) {
	if !actor.HasRole(entity.RoleOwner, entity.RoleAdmin, entity.RoleStockManager) {
		return nil, fmt.Errorf("update supplier requires a catalog role: %w", domain.ErrForbidden)
	}

	supplier, err := uc.supplierRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, fmt.Errorf("supplier %s: %w", id, domain.ErrNotFound)
	}

	var changes []entity.FieldChange
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("supplier name is required: %w", domain.ErrValidation)
		}
		if name != supplier.Name {
			if existing, err := uc.supplierRepo.GetByName(ctx, name); err != nil {
				return nil, err
			} else if existing != nil && existing.ID != id {
				return nil, fmt.Errorf("supplier %q already exists: %w", name, domain.ErrConflict)
			}
			changes = append(changes, entity.FieldChange{Field: "name", Old: supplier.Name, New: name})
			supplier.Name = name
		}
	}
	if input.ContactPerson != nil && *input.ContactPerson != supplier.ContactPerson {
		changes = append(changes, entity.FieldChange{Field: "contact_person", Old: supplier.ContactPerson, New: *input.ContactPerson})
		supplier.ContactPerson = *input.ContactPerson
	}
	if input.Email != nil && *input.Email != supplier.Email {
		changes = append(changes, entity.FieldChange{Field: "email", Old: supplier.Email, New: *input.Email})
		supplier.Email = *input.Email
	}
	if input.Phone != nil && *input.Phone != supplier.Phone {
		changes = append(changes, entity.FieldChange{Field: "phone", Old: supplier.Phone, New: *input.Phone})
		supplier.Phone = *input.Phone
	}

	if len(changes) == 0 {
		return supplier, nil
	}

	now := time.Now()
	supplier.UpdatedAt = now
	err = uc.txRunner.Run(ctx, func(r ports.TxRepos) error {
		if err := r.Suppliers.Update(ctx, supplier); err != nil {
			return err
		}
		return audit.Record(ctx, r.Audit, actor, entity.AuditEntitySupplier, supplier.ID, changes, now)
	})
	if err != nil {
		return nil, err
	}
	return supplier, nil
}

// Get returns one supplier by id.
func (uc *SupplierUseCase) Get(ctx context.Context, id string) (*entity.Supplier, error) {
	s, err := uc.supplierRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("supplier %s: %w", id, domain.ErrNotFound)
	}
	return s, nil
}

// List returns suppliers ordered by name.
func (uc *SupplierUseCase) List(ctx context.Context, limit, offset int) ([]*entity.Supplier, error) {
	if limit <= 0 {
		limit = 50
	}
	return uc.supplierRepo.List(ctx, limit, offset)
}
