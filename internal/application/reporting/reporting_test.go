package reporting_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richland-auto/inventory-api/internal/application/apptest"
	"github.com/richland-auto/inventory-api/internal/application/catalog"
	"github.com/richland-auto/inventory-api/internal/application/dto"
	"github.com/richland-auto/inventory-api/internal/application/ledger"
	"github.com/richland-auto/inventory-api/internal/application/reporting"
	"github.com/richland-auto/inventory-api/internal/domain"
	"github.com/richland-auto/inventory-api/internal/domain/entity"
	"github.com/richland-auto/inventory-api/internal/domain/repository"
	"github.com/richland-auto/inventory-api/pkg/logger"
)

var stockman = entity.Actor{ID: "u-stockman", Username: "stockman", Role: entity.RoleStockManager}

// shop bundles one store with the use cases the reporting tests exercise.
type shop struct {
	fakes    *apptest.Fakes
	products *catalog.ProductUseCase
	export   *reporting.ExportUseCase
	imports  *reporting.ImportUseCase
	pdf      *pdfStub
}

func newShop() *shop {
	f := apptest.New()
	ledgerUC := ledger.NewUseCase(f.TxRunner, f.Transactions, f.Products, nil, logger.NewNop())
	productUC := catalog.NewProductUseCase(f.TxRunner, f.Products, f.Categories, f.Orders, ledgerUC)
	categoryUC := catalog.NewCategoryUseCase(f.TxRunner, f.Categories, f.Products)
	pdf := &pdfStub{}
	return &shop{
		fakes:    f,
		products: productUC,
		export:   reporting.NewExportUseCase(f.Products, f.Transactions, pdf, "Rich Land Auto Supply"),
		imports:  reporting.NewImportUseCase(f.Products, f.Categories, productUC, categoryUC),
		pdf:      pdf,
	}
}

type pdfStub struct {
	inventory *reporting.InventoryReportData
	movements *reporting.MovementsReportData
}

func (s *pdfStub) GenerateInventoryPDF(_ context.Context, data reporting.InventoryReportData) ([]byte, error) {
	s.inventory = &data
	return []byte("%PDF-inventory"), nil
}

func (s *pdfStub) GenerateMovementsPDF(_ context.Context, data reporting.MovementsReportData) ([]byte, error) {
	s.movements = &data
	return []byte("%PDF-movements"), nil
}

func (s *shop) seedCategory(id, name string) {
	now := time.Now()
	s.fakes.SeedCategory(&entity.Category{ID: id, Name: name, CreatedAt: now, UpdatedAt: now})
}

func (s *shop) createProduct(t *testing.T, sku, name, categoryID, price string, qty int64) {
	t.Helper()
	_, err := s.products.Create(context.Background(), stockman, dto.CreateProductRequest{
		SKU:             sku,
		Name:            name,
		CategoryID:      categoryID,
		Price:           decimal.RequireFromString(price),
		ReorderLevel:    5,
		InitialQuantity: qty,
	})
	require.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// CSV export
// ──────────────────────────────────────────────────────────────────────────────

func TestInventoryCSV_HeaderAndRows(t *testing.T) {
	s := newShop()
	s.seedCategory("c-braking", "Braking System")
	s.createProduct(t, "BRK-001", "Brembo Brake Pad Set", "c-braking", "1800.00", 30)

	var buf bytes.Buffer
	require.NoError(t, s.export.InventoryCSV(context.Background(), &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "SKU,Name,Category,Price,Quantity,Reorder Level,Status,Date Updated", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "BRK-001,Brembo Brake Pad Set,Braking System,1800.00,30,5,active,"),
		"row was %q", lines[1])
}

func TestTransactionsCSV_FiltersByKind(t *testing.T) {
	s := newShop()
	s.seedCategory("c-braking", "Braking System")
	s.createProduct(t, "BRK-001", "Brembo Brake Pad Set", "c-braking", "1800.00", 50)

	ledgerUC := ledger.NewUseCase(s.fakes.TxRunner, s.fakes.Transactions, s.fakes.Products, nil, logger.NewNop())
	p := s.fakes.AllTransactions()[0].ProductID
	_, err := ledgerUC.StockOut(context.Background(), stockman, ledger.MovementInput{ProductID: p, Quantity: 20})
	require.NoError(t, err)

	var buf bytes.Buffer
	err = s.export.TransactionsCSV(context.Background(), &buf, repository.TransactionFilter{
		Kind: entity.TransactionOut,
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2, "header plus the single out-movement")
	assert.Contains(t, lines[1], ",out,20,30,")

	err = s.export.TransactionsCSV(context.Background(), &buf, repository.TransactionFilter{Kind: "swap"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ──────────────────────────────────────────────────────────────────────────────
// CSV import
// ──────────────────────────────────────────────────────────────────────────────

// Exporting the catalog and importing the file into an empty shop
// reproduces the product set, SKU by SKU, including quantities booked
// through the ledger.
func TestExportImport_RoundTrip(t *testing.T) {
	src := newShop()
	src.seedCategory("c-braking", "Braking System")
	src.seedCategory("c-fluids", "Fluids & Chemicals")
	src.createProduct(t, "BRK-001", "Brembo Brake Pad Set", "c-braking", "1800.00", 30)
	src.createProduct(t, "OIL-001", "Shell Helix 1L", "c-fluids", "350.00", 12)
	src.createProduct(t, "OIL-002", "Gear Oil 80W-90", "c-fluids", "420.50", 0)

	var file bytes.Buffer
	require.NoError(t, src.export.InventoryCSV(context.Background(), &file))

	dst := newShop()
	result, err := dst.imports.ImportProductsCSV(context.Background(), stockman, &file)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Created)
	assert.Zero(t, result.Skipped)
	assert.Zero(t, result.Failed)

	ctx := context.Background()
	for _, sku := range []string{"BRK-001", "OIL-001", "OIL-002"} {
		orig, err := src.fakes.Products.GetBySKU(ctx, sku)
		require.NoError(t, err)
		imported, err := dst.fakes.Products.GetBySKU(ctx, sku)
		require.NoError(t, err)
		require.NotNil(t, imported, "sku %s missing after import", sku)

		assert.Equal(t, orig.Name, imported.Name, sku)
		assert.Equal(t, orig.CategoryName, imported.CategoryName, sku)
		assert.True(t, orig.Price.Equal(imported.Price), "%s price %s vs %s", sku, orig.Price, imported.Price)
		assert.Equal(t, orig.Quantity, imported.Quantity, sku)
		assert.Equal(t, orig.ReorderLevel, imported.ReorderLevel, sku)
	}

	// Imported opening stock went through the ledger, not a raw write.
	sum, err := dst.fakes.Transactions.SumDeltas(ctx, mustID(t, dst, "BRK-001"))
	require.NoError(t, err)
	assert.Equal(t, int64(30), sum)
}

func mustID(t *testing.T, s *shop, sku string) string {
	t.Helper()
	p, err := s.fakes.Products.GetBySKU(context.Background(), sku)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.ID
}

// Importing the same file again skips every row; nothing is overwritten.
func TestImport_ExistingSKUsSkipped(t *testing.T) {
	src := newShop()
	src.seedCategory("c-braking", "Braking System")
	src.createProduct(t, "BRK-001", "Brembo Brake Pad Set", "c-braking", "1800.00", 30)

	var file bytes.Buffer
	require.NoError(t, src.export.InventoryCSV(context.Background(), &file))
	again := bytes.NewReader(file.Bytes())

	result, err := src.imports.ImportProductsCSV(context.Background(), stockman, again)
	require.NoError(t, err)
	assert.Zero(t, result.Created)
	assert.Equal(t, 1, result.Skipped)

	p, err := src.fakes.Products.GetBySKU(context.Background(), "BRK-001")
	require.NoError(t, err)
	assert.Equal(t, int64(30), p.Quantity, "re-import must not double the stock")
}

func TestImport_BadRowsReportedWithoutStoppingTheFile(t *testing.T) {
	s := newShop()
	file := strings.NewReader(
		"SKU,Name,Category,Price,Quantity\n" +
			"BRK-001,Brake Pad,Braking System,1800.00,10\n" +
			",No SKU Row,Braking System,9.00,1\n" +
			"OIL-001,Shell Helix 1L,Fluids,not-a-price,2\n" +
			"OIL-002,Gear Oil,Fluids,420.50,4\n")

	result, err := s.imports.ImportProductsCSV(context.Background(), stockman, file)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 3, result.Errors[0].Line)
	assert.Equal(t, 4, result.Errors[1].Line)
}

func TestImport_MissingColumn(t *testing.T) {
	s := newShop()
	file := strings.NewReader("SKU,Name,Price\nBRK-001,Brake Pad,1800.00\n")

	_, err := s.imports.ImportProductsCSV(context.Background(), stockman, file)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// Latin-1 exports from the old desktop tooling still import: the file is
// not valid UTF-8, so the reader falls back to ISO 8859-1.
func TestImport_Latin1Fallback(t *testing.T) {
	s := newShop()
	// "Bujía NGK" with í encoded as 0xED.
	raw := append([]byte("SKU,Name,Category,Price\nSPK-001,Buj"), 0xED)
	raw = append(raw, []byte("a NGK,Encendido,95.00\n")...)

	result, err := s.imports.ImportProductsCSV(context.Background(), stockman, bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, 1, result.Created)

	p, err := s.fakes.Products.GetBySKU(context.Background(), "SPK-001")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Bujía NGK", p.Name)
}

func TestImport_RequiresCatalogRole(t *testing.T) {
	s := newShop()
	salesman := entity.Actor{ID: "u-sales", Username: "sales", Role: entity.RoleSalesman}

	_, err := s.imports.ImportProductsCSV(context.Background(), salesman, strings.NewReader("SKU,Name,Category,Price\n"))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ──────────────────────────────────────────────────────────────────────────────
// PDF reports
// ──────────────────────────────────────────────────────────────────────────────

func TestInventoryPDF_TotalsStockValue(t *testing.T) {
	s := newShop()
	s.seedCategory("c-braking", "Braking System")
	s.seedCategory("c-fluids", "Fluids & Chemicals")
	s.createProduct(t, "BRK-001", "Brembo Brake Pad Set", "c-braking", "1800.00", 2)
	s.createProduct(t, "OIL-001", "Shell Helix 1L", "c-fluids", "350.00", 3)

	doc, filename, err := s.export.InventoryPDF(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, doc)
	assert.Regexp(t, `^inventory_report_\d{4}-\d{2}-\d{2}\.pdf$`, filename)

	require.NotNil(t, s.pdf.inventory)
	assert.Equal(t, "Rich Land Auto Supply", s.pdf.inventory.ShopName)
	assert.Len(t, s.pdf.inventory.Products, 2)
	// 2*1800 + 3*350
	assert.True(t, s.pdf.inventory.TotalValue.Equal(decimal.RequireFromString("4650.00")),
		"total was %s", s.pdf.inventory.TotalValue)
}

func TestMovementsPDF_RangeValidation(t *testing.T) {
	s := newShop()
	from := time.Now()
	to := from.AddDate(0, 0, -1)

	_, _, err := s.export.MovementsPDF(context.Background(), from, to, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = s.export.MovementsPDF(context.Background(), time.Time{}, time.Time{}, "swap")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestMovementsPDF_PassesLedgerRows(t *testing.T) {
	s := newShop()
	s.seedCategory("c-braking", "Braking System")
	s.createProduct(t, "BRK-001", "Brembo Brake Pad Set", "c-braking", "1800.00", 50)

	ledgerUC := ledger.NewUseCase(s.fakes.TxRunner, s.fakes.Transactions, s.fakes.Products, nil, logger.NewNop())
	id := mustID(t, s, "BRK-001")
	_, err := ledgerUC.StockOut(context.Background(), stockman, ledger.MovementInput{ProductID: id, Quantity: 20})
	require.NoError(t, err)

	_, filename, err := s.export.MovementsPDF(context.Background(), time.Time{}, time.Time{}, entity.TransactionOut)
	require.NoError(t, err)
	assert.Contains(t, filename, "stock_movements_")

	require.NotNil(t, s.pdf.movements)
	require.Len(t, s.pdf.movements.Transactions, 1, "only out-movements in a filtered report")
	assert.Equal(t, entity.TransactionOut, s.pdf.movements.Transactions[0].Kind)
}
