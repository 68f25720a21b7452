package reporting

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/richland-auto/inventory-api/internal/domain"
	"github.com/richland-auto/inventory-api/internal/domain/entity"
	"github.com/richland-auto/inventory-api/internal/domain/repository"
)

// exportPageSize is how many rows each repository round trip fetches
// while streaming an export.
const exportPageSize = 500

var inventoryCSVHeader = []string{
	"SKU", "Name", "Category", "Price", "Quantity", "Reorder Level", "Status", "Date Updated",
}

var transactionsCSVHeader = []string{
	"Sequence", "Date", "SKU", "Kind", "Quantity", "Balance", "Reference", "Note", "Actor",
}

// ExportUseCase produces the read-only inventory and movement reports.
// It never mutates anything.
type ExportUseCase struct {
	productRepo repository.ProductRepository
	txRepo      repository.TransactionRepository
	generator   ReportPDFGenerator
	shopName    string
}

func NewExportUseCase(
	productRepo repository.ProductRepository,
	txRepo repository.TransactionRepository,
	generator ReportPDFGenerator,
	shopName string,
) *ExportUseCase {
	return &ExportUseCase{
		productRepo: productRepo,
		txRepo:      txRepo,
		generator:   generator,
		shopName:    shopName,
	}
}

// InventoryCSV streams the full catalog to w, one row per product.
func (uc *ExportUseCase) InventoryCSV(ctx context.Context, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(inventoryCSVHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	offset := 0
	for {
		page, err := uc.productRepo.List(ctx, repository.ProductFilter{
			Limit:  exportPageSize,
			Offset: offset,
		})
		if err != nil {
			return fmt.Errorf("listing products for export: %w", err)
		}
		for _, p := range page {
			row := []string{
				p.SKU,
				p.Name,
				p.CategoryName,
				p.Price.StringFixed(2),
				strconv.FormatInt(p.Quantity, 10),
				strconv.FormatInt(p.ReorderLevel, 10),
				p.Status,
				p.UpdatedAt.Format("2006-01-02 15:04"),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("writing csv row: %w", err)
			}
		}
		if len(page) < exportPageSize {
			break
		}
		offset += exportPageSize
	}

	cw.Flush()
	return cw.Error()
}

// TransactionsCSV streams ledger rows matching filter to w, oldest first.
func (uc *ExportUseCase) TransactionsCSV(ctx context.Context, w io.Writer, filter repository.TransactionFilter) error {
	if filter.Kind != "" && !entity.ValidTransactionKind(filter.Kind) {
		return fmt.Errorf("unknown transaction kind %q: %w", filter.Kind, domain.ErrValidation)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(transactionsCSVHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	filter.Ascending = true
	filter.Limit = exportPageSize
	filter.Offset = 0
	for {
		page, err := uc.txRepo.List(ctx, filter)
		if err != nil {
			return fmt.Errorf("listing transactions for export: %w", err)
		}
		for _, t := range page {
			row := []string{
				strconv.FormatInt(t.Sequence, 10),
				t.CreatedAt.Format("2006-01-02 15:04"),
				t.SKU,
				t.Kind,
				strconv.FormatInt(t.Quantity, 10),
				strconv.FormatInt(t.Balance, 10),
				t.Reference,
				t.Note,
				t.ActorName,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("writing csv row: %w", err)
			}
		}
		if len(page) < exportPageSize {
			break
		}
		filter.Offset += exportPageSize
	}

	cw.Flush()
	return cw.Error()
}

// InventoryPDF renders the current catalog as a PDF and returns the
// document bytes plus a suggested filename.
func (uc *ExportUseCase) InventoryPDF(ctx context.Context) ([]byte, string, error) {
	products, err := uc.collectProducts(ctx)
	if err != nil {
		return nil, "", err
	}

	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.StockValue())
	}

	now := time.Now()
	doc, err := uc.generator.GenerateInventoryPDF(ctx, InventoryReportData{
		ShopName:    uc.shopName,
		GeneratedAt: now,
		Products:    products,
		TotalValue:  total,
	})
	if err != nil {
		return nil, "", fmt.Errorf("generating inventory pdf: %w", err)
	}

	filename := fmt.Sprintf("inventory_report_%s.pdf", now.Format("2006-01-02"))
	return doc, filename, nil
}

// MovementsPDF renders the ledger activity between from and to. A zero
// range defaults to the last 30 days.
func (uc *ExportUseCase) MovementsPDF(ctx context.Context, from, to time.Time, kind string) ([]byte, string, error) {
	if kind != "" && !entity.ValidTransactionKind(kind) {
		return nil, "", fmt.Errorf("unknown transaction kind %q: %w", kind, domain.ErrValidation)
	}

	now := time.Now()
	if to.IsZero() {
		to = now
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	if from.After(to) {
		return nil, "", fmt.Errorf("range start %s is after end %s: %w",
			from.Format("2006-01-02"), to.Format("2006-01-02"), domain.ErrValidation)
	}

	var transactions []*entity.StockTransaction
	filter := repository.TransactionFilter{
		Kind:      kind,
		From:      &from,
		To:        &to,
		Ascending: true,
		Limit:     exportPageSize,
		Offset:    0,
	}
	for {
		page, err := uc.txRepo.List(ctx, filter)
		if err != nil {
			return nil, "", fmt.Errorf("listing transactions for report: %w", err)
		}
		transactions = append(transactions, page...)
		if len(page) < exportPageSize {
			break
		}
		filter.Offset += exportPageSize
	}

	doc, err := uc.generator.GenerateMovementsPDF(ctx, MovementsReportData{
		ShopName:     uc.shopName,
		GeneratedAt:  now,
		From:         from,
		To:           to,
		Kind:         kind,
		Transactions: transactions,
	})
	if err != nil {
		return nil, "", fmt.Errorf("generating movements pdf: %w", err)
	}

	filename := fmt.Sprintf("stock_movements_%s_%s.pdf", from.Format("2006-01-02"), to.Format("2006-01-02"))
	return doc, filename, nil
}

func (uc *ExportUseCase) collectProducts(ctx context.Context) ([]*entity.Product, error) {
	var products []*entity.Product
	offset := 0
	for {
		page, err := uc.productRepo.List(ctx, repository.ProductFilter{
			Limit:  exportPageSize,
			Offset: offset,
		})
		if err != nil {
			return nil, fmt.Errorf("listing products: %w", err)
		}
		products = append(products, page...)
		if len(page) < exportPageSize {
			break
		}
		offset += exportPageSize
	}
	return products, nil
}
