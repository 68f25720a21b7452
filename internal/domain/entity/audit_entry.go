package entity

import "time"

// Audited entity types.
const (
	AuditEntityProduct       = "product"
	AuditEntityCategory      = "category"
	AuditEntitySupplier      = "supplier"
	AuditEntityPurchaseOrder = "purchase_order"
)

// AuditEntry records one field-level change. Entries are append-only: the
// trail offers no update or delete. Creations use an empty OldValue.
type AuditEntry struct {
	ID         string
	Sequence   int64 // store-assigned, orders the trail
	EntityType string
	EntityID   string
	Field      string
	OldValue   string
	NewValue   string
	ActorID    string
	ActorName  string
	CreatedAt  time.Time
}

// FieldChange is one before/after pair handed to the audit recorder.
type FieldChange struct {
	Field string
	Old   string
	New   string
}
