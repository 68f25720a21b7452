package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/richland-auto/inventory-api/internal/application/dto"
	"github.com/richland-auto/inventory-api/internal/domain"
	"github.com/richland-auto/inventory-api/internal/domain/entity"
)

// ReconcileProduct recomputes one product's balance from the ledger and
// compares it with the cached quantity. A mismatch comes back as an
// IntegrityFault; the check never corrects data.
func (uc *UseCase) ReconcileProduct(ctx context.Context, actor entity.Actor, productID string) (*dto.ReconciliationResponse, error) {
	if !actor.HasRole(entity.RoleOwner, entity.RoleAdmin) {
		return nil, fmt.Errorf("reconciliation requires owner or admin: %w", domain.ErrForbidden)
	}

	p, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
	}

	computed, err := uc.txRepo.SumDeltas(ctx, productID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ReconciliationResponse{
		Checked:   1,
		Faults:    []dto.ReconciliationFinding{},
		CheckedAt: time.Now(),
	}
	if p.Quantity == computed {
		return resp, nil
	}

	fault := &domain.IntegrityFault{ProductID: p.ID, SKU: p.SKU, Cached: p.Quantity, Computed: computed}
	uc.logFault(p.ID, p.SKU, p.Quantity, computed)
	resp.Faults = append(resp.Faults, dto.ReconciliationFinding{
		ProductID: p.ID, SKU: p.SKU, Cached: p.Quantity, Computed: computed,
	})
	return resp, fault
}

// ReconcileAll sweeps every product and reports mismatches without failing
// the sweep. Each fault is logged at error level.
func (uc *UseCase) ReconcileAll(ctx context.Context, actor entity.Actor) (*dto.ReconciliationResponse, error) {
	if !actor.HasRole(entity.RoleOwner, entity.RoleAdmin) {
		return nil, fmt.Errorf("reconciliation requires owner or admin: %w", domain.ErrForbidden)
	}

	balances, err := uc.txRepo.Balances(ctx)
	if err != nil {
		return nil, err
	}
	resp := &dto.ReconciliationResponse{
		Checked:   len(balances),
		Faults:    []dto.ReconciliationFinding{},
		CheckedAt: time.Now(),
	}
	for _, b := range balances {
		if b.Cached == b.Computed {
			continue
		}
		uc.logFault(b.ProductID, b.SKU, b.Cached, b.Computed)
		resp.Faults = append(resp.Faults, dto.ReconciliationFinding(b))
	}
	return resp, nil
}

func (uc *UseCase) logFault(productID, sku string, cached, computed int64) {
	uc.log.Error().
		Str("product_id", productID).
		Str("sku", sku).
		Int64("cached", cached).
		Int64("computed", computed).
		Msg("ledger reconciliation mismatch")
}
