// Package pdf renders the printable inventory and stock movement reports.
//
// A4 page layout, both reports:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Shop name          │  Report title + generated at  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLE: one row per product / ledger transaction             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: row count + stock value (inventory only)            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	mentity "github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/richland-auto/inventory-api/internal/application/reporting"
	"github.com/richland-auto/inventory-api/internal/domain/entity"
)

// ── Color palette ─────────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 128, Green: 32, Blue: 32}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 190, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ reporting.ReportPDFGenerator = (*MarotoReportGenerator)(nil)

// MarotoReportGenerator implements reporting.ReportPDFGenerator using Maroto v2.
type MarotoReportGenerator struct{}

// NewMarotoReportGenerator builds the generator.
func NewMarotoReportGenerator() *MarotoReportGenerator { return &MarotoReportGenerator{} }

// GenerateInventoryPDF renders the full catalog snapshot and returns the
// document bytes.
func (g *MarotoReportGenerator) GenerateInventoryPDF(_ context.Context, data reporting.InventoryReportData) ([]byte, error) {
	m := maroto.New(reportConfig(data.ShopName, "Inventory Report"))

	m.AddRows(headerRow(data.ShopName, "INVENTORY REPORT", data.GeneratedAt.Format("02 Jan 2006 15:04")))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(inventoryTableHeader())
	for _, r := range inventoryRows(data.Products) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(inventoryTotalsRow(len(data.Products), data.TotalValue.StringFixed(2)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate inventory report: %w", err)
	}
	return doc.GetBytes(), nil
}

// GenerateMovementsPDF renders ledger activity for the period and returns
// the document bytes.
func (g *MarotoReportGenerator) GenerateMovementsPDF(_ context.Context, data reporting.MovementsReportData) ([]byte, error) {
	m := maroto.New(reportConfig(data.ShopName, "Stock Movement Report"))

	subtitle := fmt.Sprintf("%s — %s", data.From.Format("02 Jan 2006"), data.To.Format("02 Jan 2006"))
	if data.Kind != "" {
		subtitle += "  (" + strings.ToUpper(data.Kind) + " only)"
	}
	m.AddRows(headerRow(data.ShopName, "STOCK MOVEMENT REPORT", subtitle))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(movementsTableHeader())
	for _, r := range movementRows(data.Transactions) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(row.New(8).Add(col.New(12).Add(
		text.New(fmt.Sprintf("%d transaction(s) in period", len(data.Transactions)), props.Text{
			Size: 8, Align: align.Right, Color: colorGray, Top: 2,
		}),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate movements report: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Sections ──────────────────────────────────────────────────────────────────

func reportConfig(shopName, title string) *mentity.Config {
	return config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle(title, true).
		WithAuthor(shopName, true).
		Build()
}

// headerRow: shop name (left), report title and timestamp (right).
func headerRow(shopName, title, subtitle string) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(shopName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Auto Parts & Supplies", props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(subtitle, props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func inventoryTableHeader() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2,
		}))
	}
	return row.New(8).Add(
		h("SKU", 2, align.Left),
		h("Name", 3, align.Left),
		h("Category", 2, align.Left),
		h("Price", 2, align.Right),
		h("Qty", 1, align.Right),
		h("Reorder", 1, align.Right),
		h("Status", 1, align.Center),
	)
}

// inventoryRows: one row per product. Quantities at or below the reorder
// level render in the alert color.
func inventoryRows(products []*entity.Product) []core.Row {
	result := make([]core.Row, 0, len(products))
	for _, p := range products {
		qtyColor := colorGray
		if p.IsActive() && p.IsLowStock() {
			qtyColor = colorAlert
		}
		result = append(result, row.New(6).Add(
			col.New(2).Add(text.New(p.SKU, props.Text{Size: 7.5, Top: 1})),
			col.New(3).Add(text.New(p.Name, props.Text{Size: 7.5, Top: 1})),
			col.New(2).Add(text.New(p.CategoryName, props.Text{Size: 7.5, Top: 1, Color: colorGray})),
			col.New(2).Add(text.New(formatMoney(p.Price.StringFixed(2)), props.Text{
				Size: 7.5, Align: align.Right, Top: 1,
			})),
			col.New(1).Add(text.New(strconv.FormatInt(p.Quantity, 10), props.Text{
				Size: 7.5, Align: align.Right, Top: 1, Color: qtyColor, Style: fontstyle.Bold,
			})),
			col.New(1).Add(text.New(strconv.FormatInt(p.ReorderLevel, 10), props.Text{
				Size: 7.5, Align: align.Right, Top: 1, Color: colorGray,
			})),
			col.New(1).Add(text.New(p.Status, props.Text{
				Size: 7, Align: align.Center, Top: 1, Color: colorGray,
			})),
		))
	}
	return result
}

// inventoryTotalsRow: product count and total stock value, right-aligned.
func inventoryTotalsRow(count int, totalValue string) core.Row {
	return row.New(10).Add(
		col.New(6).Add(text.New(fmt.Sprintf("%d product(s)", count), props.Text{
			Size: 8, Top: 2, Color: colorGray,
		})),
		col.New(6).Add(text.New("Total stock value: "+formatMoney(totalValue), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 1,
		})),
	)
}

func movementsTableHeader() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2,
		}))
	}
	return row.New(8).Add(
		h("Date", 2, align.Left),
		h("SKU", 2, align.Left),
		h("Kind", 1, align.Center),
		h("Qty", 1, align.Right),
		h("Balance", 1, align.Right),
		h("Reference", 2, align.Left),
		h("By", 3, align.Left),
	)
}

// movementRows: one row per ledger transaction, stock-outs in the alert color.
func movementRows(transactions []*entity.StockTransaction) []core.Row {
	result := make([]core.Row, 0, len(transactions))
	for _, t := range transactions {
		kindColor := colorPrimary
		if t.Kind == entity.TransactionOut {
			kindColor = colorAlert
		}
		result = append(result, row.New(6).Add(
			col.New(2).Add(text.New(t.CreatedAt.Format("02 Jan 15:04"), props.Text{Size: 7.5, Top: 1})),
			col.New(2).Add(text.New(t.SKU, props.Text{Size: 7.5, Top: 1})),
			col.New(1).Add(text.New(strings.ToUpper(t.Kind), props.Text{
				Size: 7.5, Align: align.Center, Top: 1, Color: kindColor, Style: fontstyle.Bold,
			})),
			col.New(1).Add(text.New(strconv.FormatInt(t.Quantity, 10), props.Text{
				Size: 7.5, Align: align.Right, Top: 1,
			})),
			col.New(1).Add(text.New(strconv.FormatInt(t.Balance, 10), props.Text{
				Size: 7.5, Align: align.Right, Top: 1, Color: colorGray,
			})),
			col.New(2).Add(text.New(t.Reference, props.Text{Size: 7, Top: 1, Color: colorGray})),
			col.New(3).Add(text.New(t.ActorName, props.Text{Size: 7.5, Top: 1})),
		))
	}
	return result
}

// ── helpers ───────────────────────────────────────────────────────────────────

// formatMoney inserts thousands separators into a fixed-decimal string.
// E.g. "4500.00" → "4,500.00", "1250000.50" → "1,250,000.50"
func formatMoney(s string) string {
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	if n <= 3 {
		if frac != "" {
			return intPart + "." + frac
		}
		return intPart
	}
	buf := make([]byte, 0, n+n/3+len(frac)+1)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	if frac != "" {
		buf = append(buf, '.')
		buf = append(buf, frac...)
	}
	return string(buf)
}
