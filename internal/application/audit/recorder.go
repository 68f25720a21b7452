package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/richland-auto/inventory-api/internal/domain"
	"github.com/richland-auto/inventory-api/internal/domain/entity"
	"github.com/richland-auto/inventory-api/internal/domain/repository"
)

// Record appends one audit row per field change, attributed to the actor.
// Callers pass the tx-bound repository so the trail commits or rolls back
// with the mutation it describes. An empty change set is a caller bug.
func Record(ctx context.Context, repo repository.AuditRepository, actor entity.Actor,
	entityType, entityID string, changes []entity.FieldChange, now time.Time) error {

	if len(changes) == 0 {
		return fmt.Errorf("audit record for %s %s without changes: %w", entityType, entityID, domain.ErrValidation)
	}
	if entityType == "" || entityID == "" {
		return fmt.Errorf("audit record missing entity reference: %w", domain.ErrValidation)
	}

	entries := make([]*entity.AuditEntry, 0, len(changes))
	for _, c := range changes {
		entries = append(entries, &entity.AuditEntry{
			ID:         uuid.New().String(),
			EntityType: entityType,
			EntityID:   entityID,
			Field:      c.Field,
			OldValue:   c.Old,
			NewValue:   c.New,
			ActorID:    actor.ID,
			ActorName:  actor.Username,
			CreatedAt:  now,
		})
	}
	return repo.Append(ctx, entries)
}
