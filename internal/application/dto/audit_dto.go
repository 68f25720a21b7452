package dto

import (
	"time"

	"github.com/richland-auto/inventory-api/internal/domain/entity"
)

// AuditEntryResponse is the wire shape of one audit row.
type AuditEntryResponse struct {
	ID         string    `json:"id"`
	Sequence   int64     `json:"sequence"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Field      string    `json:"field"`
	OldValue   string    `json:"old_value"`
	NewValue   string    `json:"new_value"`
	ActorID    string    `json:"actor_id"`
	ActorName  string    `json:"actor_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewAuditEntryResponse maps the entity to its wire shape.
func NewAuditEntryResponse(e *entity.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:         e.ID,
		Sequence:   e.Sequence,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Field:      e.Field,
		OldValue:   e.OldValue,
		NewValue:   e.NewValue,
		ActorID:    e.ActorID,
		ActorName:  e.ActorName,
		CreatedAt:  e.CreatedAt,
	}
}

// NewAuditListResponse maps a slice of audit rows.
func NewAuditListResponse(entries []*entity.AuditEntry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, NewAuditEntryResponse(e))
	}
	return out
}
