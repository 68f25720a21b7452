package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/richland-auto/inventory-api/internal/domain/entity"
	"github.com/richland-auto/inventory-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo implements the audit trail port on PostgreSQL (works with pool
// or tx). Append-only from the application's point of view; DeleteOlderThan
// exists for the retention rotation binary alone.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository builds the persistence adapter for the audit trail.
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Append inserts the entries in order, filling each Sequence from the store.
func (r *AuditRepo) Append(ctx context.Context, entries []*entity.AuditEntry) error {
	const query = `
		INSERT INTO audit_entries (id, entity_type, entity_id, field, old_value, new_value, actor_id, actor_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING seq`
	for _, e := range entries {
		err := r.q.QueryRow(ctx, query,
			e.ID, e.EntityType, e.EntityID, e.Field, e.OldValue, e.NewValue,
			e.ActorID, e.ActorName, e.CreatedAt,
		).Scan(&e.Sequence)
		if err != nil {
			return fmt.Errorf("insert audit entry: %w", err)
		}
	}
	return nil
}

// List returns audit entries matching filter, newest first.
func (r *AuditRepo) List(ctx context.Context, filter repository.AuditFilter) ([]*entity.AuditEntry, error) {
	query := `
		SELECT id, seq, entity_type, entity_id, field, old_value, new_value, actor_id, actor_name, created_at
		FROM audit_entries`

	var conds []string
	var args []any
	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		conds = append(conds, fmt.Sprintf("entity_type = $%d", len(args)))
	}
	if filter.EntityID != "" {
		args = append(args, filter.EntityID)
		conds = append(conds, fmt.Sprintf("entity_id = $%d", len(args)))
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
	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY seq DESC LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()
	return scanAuditEntries(rows)
}

// ListEntityPage returns up to limit entries for one entity with sequence
// greater than afterSeq, oldest first. The cursor makes history iteration
// restartable without losing or repeating entries.
func (r *AuditRepo) ListEntityPage(ctx context.Context, entityType, entityID string, afterSeq int64, limit int) ([]*entity.AuditEntry, error) {
	const query = `
		SELECT id, seq, entity_type, entity_id, field, old_value, new_value, actor_id, actor_name, created_at
		FROM audit_entries
		WHERE entity_type = $1 AND entity_id = $2 AND seq > $3
		ORDER BY seq ASC
		LIMIT $4`
	rows, err := r.q.Query(ctx, query, entityType, entityID, afterSeq, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit history page: %w", err)
	}
	defer rows.Close()
	return scanAuditEntries(rows)
}

// DeleteOlderThan removes entries created before cutoff and reports how
// many went. Only the auditrotate binary calls this.
func (r *AuditRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM audit_entries WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete audit entries: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func scanAuditEntries(rows pgx.Rows) ([]*entity.AuditEntry, error) {
	var list []*entity.AuditEntry
	for rows.Next() {
		var e entity.AuditEntry
		if err := rows.Scan(
			&e.ID, &e.Sequence, &e.EntityType, &e.EntityID, &e.Field,
			&e.OldValue, &e.NewValue, &e.ActorID, &e.ActorName, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
