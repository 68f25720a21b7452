package catalog_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richland-auto/inventory-api/internal/application/apptest"
	"github.com/richland-auto/inventory-api/internal/application/catalog"
	"github.com/richland-auto/inventory-api/internal/application/dto"
	"github.com/richland-auto/inventory-api/internal/domain"
	"github.com/richland-auto/inventory-api/internal/domain/entity"
)

func newCategoryUC(f *apptest.Fakes) *catalog.CategoryUseCase {
	return catalog.NewCategoryUseCase(f.TxRunner, f.Categories, f.Products)
}

func TestCategoryCreate(t *testing.T) {
	f := apptest.New()
	uc := newCategoryUC(f)
	ctx := context.Background()

	c, err := uc.Create(ctx, admin, "  Braking System ")
	require.NoError(t, err)
	assert.Equal(t, "Braking System", c.Name, "names are trimmed")

	entries := f.AllAuditEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, entity.AuditEntityCategory, entries[0].EntityType)
	assert.Equal(t, "name", entries[0].Field)
	assert.Equal(t, "Braking System", entries[0].NewValue)
}

func TestCategoryCreate_Rejections(t *testing.T) {
	f := apptest.New()
	uc := newCategoryUC(f)
	ctx := context.Background()

	_, err := uc.Create(ctx, admin, "Braking System")
	require.NoError(t, err)

	_, err = uc.Create(ctx, admin, "Braking System")
	assert.ErrorIs(t, err, domain.ErrConflict, "duplicate name")

	_, err = uc.Create(ctx, admin, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation, "blank name")

	_, err = uc.Create(ctx, salesman, "Fluids")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// Categories with products stay; the delete reports the conflict.
func TestCategoryDelete_BlockedByProducts(t *testing.T) {
	f := apptest.New()
	catUC := newCategoryUC(f)
	prodUC := newProductUC(f)
	ctx := context.Background()

	c, err := catUC.Create(ctx, admin, "Batteries")
	require.NoError(t, err)

	req := batteryRequest()
	req.CategoryID = c.ID
	_, err = prodUC.Create(ctx, admin, req)
	require.NoError(t, err)

	err = catUC.Delete(ctx, admin, c.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	remaining, err := catUC.List(ctx)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestCategoryDelete_EmptyCategory(t *testing.T) {
	f := apptest.New()
	uc := newCategoryUC(f)
	ctx := context.Background()

	c, err := uc.Create(ctx, admin, "Seasonal")
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, owner, c.ID))

	remaining, err := uc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	entries := f.AllAuditEntries()
	last := entries[len(entries)-1]
	assert.Equal(t, "deleted", last.Field)
	assert.Equal(t, "Seasonal", last.OldValue)
}

func TestCategoryDelete_Unknown(t *testing.T) {
	f := apptest.New()
	uc := newCategoryUC(f)

	err := uc.Delete(context.Background(), admin, "c-ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCategoryList_OrderedByName(t *testing.T) {
	f := apptest.New()
	uc := newCategoryUC(f)
	ctx := context.Background()

	for _, name := range []string{"Tires & Wheels", "Accessories", "Engine Parts"} {
		_, err := uc.Create(ctx, admin, name)
		require.NoError(t, err)
	}

	list, err := uc.List(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(list))
	for _, c := range list {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Accessories", "Engine Parts", "Tires & Wheels"}, names)
}

// Keeps decimal imported alongside the shared product helpers.
var _ = decimal.Zero
var _ = dto.CreateProductRequest{}
