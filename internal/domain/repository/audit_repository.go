package repository

import (
	"context"
	"time"

	"github.com/richland-auto/inventory-api/internal/domain/entity"
)

// AuditFilter narrows audit listings (newest first).
type AuditFilter struct {
	EntityType string
	EntityID   string
	ActorID    string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// AuditRepository is the persistence port for the audit trail.
// Append-only through the application; DeleteOlderThan exists solely for
// the out-of-band retention rotation binary.
type AuditRepository interface {
	Append(ctx context.Context, entries []*entity.AuditEntry) error
	List(ctx context.Context, filter AuditFilter) ([]*entity.AuditEntry, error)
	// ListEntityPage returns up to limit entries for one entity with
	// sequence greater than afterSeq, oldest first. Feeds the history
	// iterator; the sequence cursor keeps iteration restartable.
	ListEntityPage(ctx context.Context, entityType, entityID string, afterSeq int64, limit int) ([]*entity.AuditEntry, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
