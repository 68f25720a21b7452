package audit

import (
	"context"
	"fmt"

	"github.com/richland-auto/inventory-api/internal/domain"
	"github.com/richland-auto/inventory-api/internal/domain/entity"
	"github.com/richland-auto/inventory-api/internal/domain/repository"
)

// historyPageSize is how many rows an iterator fetches per round trip.
const historyPageSize = 100

// UseCase serves read access to the audit trail.
type UseCase struct {
	auditRepo repository.AuditRepository
}

// NewUseCase builds the use case.
func NewUseCase(auditRepo repository.AuditRepository) *UseCase {
	return &UseCase{auditRepo: auditRepo}
}

// List returns filtered entries, newest first. Owner and admin only.
func (uc *UseCase) List(ctx context.Context, actor entity.Actor, filter repository.AuditFilter) ([]*entity.AuditEntry, error) {
	if !actor.HasRole(entity.RoleOwner, entity.RoleAdmin) {
		return nil, fmt.Errorf("audit list requires owner or admin: %w", domain.ErrForbidden)
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return uc.auditRepo.List(ctx, filter)
}

// History returns an iterator over one entity's trail, oldest first.
// Owner and admin only.
func (uc *UseCase) History(actor entity.Actor, entityType, entityID string) (*HistoryIterator, error) {
	if !actor.HasRole(entity.RoleOwner, entity.RoleAdmin) {
		return nil, fmt.Errorf("audit history requires owner or admin: %w", domain.ErrForbidden)
	}
	if entityType == "" || entityID == "" {
		return nil, fmt.Errorf("audit history missing entity reference: %w", domain.ErrValidation)
	}
	return &HistoryIterator{
		repo:       uc.auditRepo,
		entityType: entityType,
		entityID:   entityID,
		pageSize:   historyPageSize,
	}, nil
}

// HistoryIterator walks an entity's audit trail oldest-first, fetching rows
// lazily one page at a time. Usage mirrors pgx rows:
//
//	for it.Next(ctx) { use(it.Entry()) }
//	if err := it.Err(); err != nil { ... }
//
// Reset rewinds to the start. Entries appended after iteration began may
// surface; the sequence cursor guarantees no entry repeats or is skipped.
type HistoryIterator struct {
	repo       repository.AuditRepository
	entityType string
	entityID   string
	pageSize   int

	afterSeq int64
	buf      []*entity.AuditEntry
	pos      int
	done     bool
	err      error
}

// Next advances to the following entry, loading the next page when the
// buffer runs out. Returns false at the end of the trail or on error.
func (it *HistoryIterator) Next(ctx context.Context) bool {
	if it.err != nil {
		return false
	}
	if it.pos < len(it.buf) {
		it.afterSeq = it.buf[it.pos].Sequence
		it.pos++
		return true
	}
	if it.done {
		return false
	}

	page, err := it.repo.ListEntityPage(ctx, it.entityType, it.entityID, it.afterSeq, it.pageSize)
	if err != nil {
		it.err = err
		return false
	}
	if len(page) == 0 {
		it.done = true
		return false
	}
	if len(page) < it.pageSize {
		it.done = true
	}
	it.buf = page
	it.pos = 1
	it.afterSeq = page[0].Sequence
	return true
}

// Entry returns the current entry. Only valid after Next returned true.
func (it *HistoryIterator) Entry() *entity.AuditEntry {
	if it.pos == 0 || it.pos > len(it.buf) {
		return nil
	}
	return it.buf[it.pos-1]
}

// Err reports the first repository error hit during iteration.
func (it *HistoryIterator) Err() error { return it.err }

// Reset rewinds the iterator to the oldest entry.
func (it *HistoryIterator) Reset() {
	it.afterSeq = 0
	it.buf = nil
	it.pos = 0
	it.done = false
	it.err = nil
}
