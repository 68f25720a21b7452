package reporting

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/richland-auto/inventory-api/internal/application/catalog"
	"github.com/richland-auto/inventory-api/internal/application/dto"
	"github.com/richland-auto/inventory-api/internal/domain"
	"github.com/richland-auto/inventory-api/internal/domain/entity"
	"github.com/richland-auto/inventory-api/internal/domain/repository"
)

// importColumns are the headers the bulk import requires. Extra columns,
// such as Status or Date Updated from our own export, are ignored.
var importColumns = []string{"sku", "name", "category", "price"}

// ImportUseCase loads products in bulk from a CSV file. Rows go through
// the regular catalog create path, so every imported product is audited
// and its opening stock lands in the ledger like any other stock-in.
type ImportUseCase struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	productUC    *catalog.ProductUseCase
	categoryUC   *catalog.CategoryUseCase
}

func NewImportUseCase(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	productUC *catalog.ProductUseCase,
	categoryUC *catalog.CategoryUseCase,
) *ImportUseCase {
	return &ImportUseCase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		productUC:    productUC,
		categoryUC:   categoryUC,
	}
}

// ImportProductsCSV reads products from r and creates the ones whose SKU
// is not taken yet. Existing SKUs are counted as skipped, malformed rows
// as failed; neither stops the rest of the file. Files that are not
// valid UTF-8 are retried as Latin-1 before parsing.
func (uc *ImportUseCase) ImportProductsCSV(ctx context.Context, actor entity.Actor, r io.Reader) (*dto.ImportResult, error) {
	if !actor.HasRole(entity.RoleOwner, entity.RoleAdmin, entity.RoleStockManager) {
		return nil, fmt.Errorf("role %s cannot import products: %w", actor.Role, domain.ErrForbidden)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading import file: %w", err)
	}
	var src io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		src = transform.NewReader(bytes.NewReader(data), charmap.ISO8859_1.NewDecoder())
	}

	reader := csv.NewReader(src)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("import file is empty: %w", domain.ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range importColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("import file is missing column %q: %w", col, domain.ErrValidation)
		}
	}

	result := &dto.ImportResult{}
	line := 1
	for {
		line++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, dto.ImportRowError{Line: line, Message: err.Error()})
			continue
		}

		created, skipped, rowErr := uc.importRow(ctx, actor, idx, record)
		switch {
		case rowErr != nil && isRowError(rowErr):
			result.Failed++
			result.Errors = append(result.Errors, dto.ImportRowError{Line: line, Message: rowErr.Error()})
		case rowErr != nil:
			// Infrastructure failure: abort, the caller should retry the file.
			return nil, fmt.Errorf("import stopped at line %d: %w", line, rowErr)
		case created:
			result.Created++
		case skipped:
			result.Skipped++
		}
	}

	return result, nil
}

func (uc *ImportUseCase) importRow(ctx context.Context, actor entity.Actor, idx map[string]int, record []string) (created, skipped bool, err error) {
	sku := field(record, idx, "sku")
	if sku == "" {
		return false, false, fmt.Errorf("sku is required: %w", domain.ErrValidation)
	}

	existing, err := uc.productRepo.GetBySKU(ctx, sku)
	if err != nil {
		return false, false, fmt.Errorf("checking sku %s: %w", sku, err)
	}
	if existing != nil {
		return false, true, nil
	}

	name := field(record, idx, "name")
	if name == "" {
		return false, false, fmt.Errorf("name is required: %w", domain.ErrValidation)
	}

	price, err := decimal.NewFromString(field(record, idx, "price"))
	if err != nil {
		return false, false, fmt.Errorf("bad price %q: %w", field(record, idx, "price"), domain.ErrValidation)
	}

	quantity, err := optionalInt(record, idx, "quantity")
	if err != nil {
		return false, false, err
	}
	reorder, err := optionalInt(record, idx, "reorder level")
	if err != nil {
		return false, false, err
	}

	category, err := uc.ensureCategory(ctx, actor, field(record, idx, "category"))
	if err != nil {
		return false, false, err
	}

	_, err = uc.productUC.Create(ctx, actor, dto.CreateProductRequest{
		SKU:             sku,
		Name:            name,
		CategoryID:      category.ID,
		Price:           price,
		ReorderLevel:    reorder,
		InitialQuantity: quantity,
	})
	if err != nil {
		return false, false, err
	}
	return true, false, nil
}

// ensureCategory finds the named category or creates it on the fly, so an
// export from another shop imports without manual category setup first.
func (uc *ImportUseCase) ensureCategory(ctx context.Context, actor entity.Actor, name string) (*entity.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("category is required: %w", domain.ErrValidation)
	}

	category, err := uc.categoryRepo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("looking up category %q: %w", name, err)
	}
	if category != nil {
		return category, nil
	}

	category, err = uc.categoryUC.Create(ctx, actor, name)
	if errors.Is(err, domain.ErrConflict) {
		// Another row or request created it between the lookup and now.
		return uc.categoryRepo.GetByName(ctx, name)
	}
	if err != nil {
		return nil, err
	}
	return category, nil
}

func field(record []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func optionalInt(record []string, idx map[string]int, name string) (int64, error) {
	raw := field(record, idx, name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s %q: %w", name, raw, domain.ErrValidation)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s cannot be negative: %w", name, domain.ErrValidation)
	}
	return n, nil
}

// isRowError reports whether err only concerns the current row. Such
// errors are collected in the result instead of aborting the import.
func isRowError(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrDuplicate) ||
		errors.Is(err, domain.ErrConflict)
}
