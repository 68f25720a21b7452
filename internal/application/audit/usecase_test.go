package audit_test

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richland-auto/inventory-api/internal/application/apptest"
	"github.com/richland-auto/inventory-api/internal/application/audit"
	"github.com/richland-auto/inventory-api/internal/domain"
	"github.com/richland-auto/inventory-api/internal/domain/entity"
	"github.com/richland-auto/inventory-api/internal/domain/repository"
)

var (
	owner    = entity.Actor{ID: "u-owner", Username: "owner", Role: entity.RoleOwner}
	salesman = entity.Actor{ID: "u-sales", Username: "sales", Role: entity.RoleSalesman}
)

// record appends n single-field entries for one product, in order.
func record(t *testing.T, f *apptest.Fakes, productID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		err := audit.Record(context.Background(), f.Audit, owner,
			entity.AuditEntityProduct, productID,
			[]entity.FieldChange{{
				Field: "price",
				Old:   strconv.Itoa(i),
				New:   strconv.Itoa(i + 1),
			}}, time.Now())
		require.NoError(t, err)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Recorder
// ──────────────────────────────────────────────────────────────────────────────

func TestRecord_OneRowPerChange(t *testing.T) {
	f := apptest.New()

	changes := []entity.FieldChange{
		{Field: "name", Old: "Brake Pad", New: "Brake Pad Set"},
		{Field: "price", Old: "1500", New: "1800"},
	}
	err := audit.Record(context.Background(), f.Audit, owner,
		entity.AuditEntityProduct, "p-brake", changes, time.Now())
	require.NoError(t, err)

	entries := f.AllAuditEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "name", entries[0].Field)
	assert.Equal(t, "Brake Pad", entries[0].OldValue)
	assert.Equal(t, "Brake Pad Set", entries[0].NewValue)
	assert.Equal(t, owner.ID, entries[0].ActorID)
	assert.Equal(t, owner.Username, entries[0].ActorName)
	assert.Less(t, entries[0].Sequence, entries[1].Sequence)
}

func TestRecord_EmptyChangeSet(t *testing.T) {
	f := apptest.New()

	err := audit.Record(context.Background(), f.Audit, owner,
		entity.AuditEntityProduct, "p-brake", nil, time.Now())
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, f.AllAuditEntries())
}

func TestRecord_MissingEntityReference(t *testing.T) {
	f := apptest.New()

	err := audit.Record(context.Background(), f.Audit, owner,
		"", "p-brake", []entity.FieldChange{{Field: "name", New: "x"}}, time.Now())
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ──────────────────────────────────────────────────────────────────────────────
// History iterator
// ──────────────────────────────────────────────────────────────────────────────

// The iterator walks the trail oldest first across page boundaries without
// skipping or repeating entries.
func TestHistory_SpansPages(t *testing.T) {
	f := apptest.New()
	uc := audit.NewUseCase(f.Audit)
	const total = 250 // two full pages of 100 plus a short tail

	record(t, f, "p-brake", total)

	it, err := uc.History(owner, entity.AuditEntityProduct, "p-brake")
	require.NoError(t, err)

	ctx := context.Background()
	var seen int
	var lastSeq int64
	for it.Next(ctx) {
		e := it.Entry()
		require.NotNil(t, e)
		assert.Greater(t, e.Sequence, lastSeq, "oldest first, strictly increasing")
		assert.Equal(t, strconv.Itoa(seen), e.OldValue, "entries arrive in write order")
		lastSeq = e.Sequence
		seen++
	}
	require.NoError(t, it.Err())
	assert.Equal(t, total, seen)
}

func TestHistory_ResetRestarts(t *testing.T) {
	f := apptest.New()
	uc := audit.NewUseCase(f.Audit)
	record(t, f, "p-brake", 7)

	it, err := uc.History(owner, entity.AuditEntityProduct, "p-brake")
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.True(t, it.Next(ctx))
	}
	assert.Equal(t, "2", it.Entry().OldValue)

	it.Reset()
	require.True(t, it.Next(ctx))
	assert.Equal(t, "0", it.Entry().OldValue, "reset must rewind to the oldest entry")

	var seen int
	for it.Next(ctx) {
		seen++
	}
	require.NoError(t, it.Err())
	assert.Equal(t, 6, seen, "the remaining six after the first")
}

func TestHistory_SkipsOtherEntities(t *testing.T) {
	f := apptest.New()
	uc := audit.NewUseCase(f.Audit)
	record(t, f, "p-brake", 3)
	record(t, f, "p-oil", 2)

	it, err := uc.History(owner, entity.AuditEntityProduct, "p-oil")
	require.NoError(t, err)

	ctx := context.Background()
	var seen int
	for it.Next(ctx) {
		assert.Equal(t, "p-oil", it.Entry().EntityID)
		seen++
	}
	require.NoError(t, it.Err())
	assert.Equal(t, 2, seen)
}

func TestHistory_EmptyTrail(t *testing.T) {
	f := apptest.New()
	uc := audit.NewUseCase(f.Audit)

	it, err := uc.History(owner, entity.AuditEntityProduct, "p-ghost")
	require.NoError(t, err)
	assert.False(t, it.Next(context.Background()))
	assert.NoError(t, it.Err())
	assert.Nil(t, it.Entry())
}

// ──────────────────────────────────────────────────────────────────────────────
// Listing and access
// ──────────────────────────────────────────────────────────────────────────────

func TestList_NewestFirstWithFilter(t *testing.T) {
	f := apptest.New()
	uc := audit.NewUseCase(f.Audit)
	record(t, f, "p-brake", 4)

	other := entity.Actor{ID: "u-other", Username: "other", Role: entity.RoleAdmin}
	err := audit.Record(context.Background(), f.Audit, other,
		entity.AuditEntityCategory, "c-braking",
		[]entity.FieldChange{{Field: "name", New: "Braking System"}}, time.Now())
	require.NoError(t, err)

	entries, err := uc.List(context.Background(), owner, repository.AuditFilter{
		EntityType: entity.AuditEntityProduct,
		EntityID:   "p-brake",
	})
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, "3", entries[0].OldValue, "newest first")

	byActor, err := uc.List(context.Background(), owner, repository.AuditFilter{ActorID: "u-other"})
	require.NoError(t, err)
	require.Len(t, byActor, 1)
	assert.Equal(t, entity.AuditEntityCategory, byActor[0].EntityType)
}

func TestAudit_RequiresManagementRole(t *testing.T) {
	f := apptest.New()
	uc := audit.NewUseCase(f.Audit)

	_, err := uc.List(context.Background(), salesman, repository.AuditFilter{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.History(salesman, entity.AuditEntityProduct, "p-brake")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// Entries committed while an iterator is mid-flight surface on later pages;
// nothing already seen repeats.
func TestHistory_AppendsDuringIteration(t *testing.T) {
	f := apptest.New()
	uc := audit.NewUseCase(f.Audit)
	record(t, f, "p-brake", 150)

	it, err := uc.History(owner, entity.AuditEntityProduct, "p-brake")
	require.NoError(t, err)

	ctx := context.Background()
	seen := make(map[string]bool)
	var count int
	for it.Next(ctx) {
		e := it.Entry()
		key := fmt.Sprintf("%d", e.Sequence)
		require.False(t, seen[key], "sequence %s repeated", key)
		seen[key] = true
		count++
		if count == 100 {
			record(t, f, "p-brake", 10) // lands after the first page was read
		}
	}
	require.NoError(t, it.Err())
	assert.Equal(t, 160, count)
}
