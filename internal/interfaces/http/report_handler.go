package http

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/richland-auto/inventory-api/internal/application/dto"
	"github.com/richland-auto/inventory-api/internal/application/reporting"
	"github.com/richland-auto/inventory-api/internal/domain/repository"
)

// ReportHandler serves CSV and PDF exports, the CSV import and the
// dashboard summary.
type ReportHandler struct {
	exportUC    *reporting.ExportUseCase
	importUC    *reporting.ImportUseCase
	dashboardUC *reporting.DashboardUseCase
}

// NewReportHandler builds the handler.
func NewReportHandler(exportUC *reporting.ExportUseCase, importUC *reporting.ImportUseCase, dashboardUC *reporting.DashboardUseCase) *ReportHandler {
	return &ReportHandler{exportUC: exportUC, importUC: importUC, dashboardUC: dashboardUC}
}

// Dashboard godoc
// @Summary      Inventory dashboard summary
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardResponse
// @Router       /api/dashboard [get]
func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	out, err := h.dashboardUC.GetSummary(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// InventoryCSV godoc
// @Summary      Download the full inventory as CSV
// @Tags         reports
// @Security     Bearer
// @Produce      text/csv
// @Success      200  {string}  string  "CSV file"
// @Router       /api/reports/inventory.csv [get]
func (h *ReportHandler) InventoryCSV(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.exportUC.InventoryCSV(c.Context(), &buf); err != nil {
		return respondError(c, err)
	}
	return sendAttachment(c, "text/csv", "inventory_report.csv", buf.Bytes())
}

// TransactionsCSV godoc
// @Summary      Download ledger transactions as CSV
// @Tags         reports
// @Security     Bearer
// @Produce      text/csv
// @Param        product  query  string  false  "Product ID"
// @Param        kind     query  string  false  "in or out"
// @Param        from     query  string  false  "From date (YYYY-MM-DD)"
// @Param        to       query  string  false  "To date (YYYY-MM-DD)"
// @Success      200  {string}  string  "CSV file"
// @Router       /api/reports/transactions.csv [get]
func (h *ReportHandler) TransactionsCSV(c *fiber.Ctx) error {
	from, ok := queryTime(c, "from")
	if !ok {
		return nil
	}
	to, ok := queryTime(c, "to")
	if !ok {
		return nil
	}
	filter := repository.TransactionFilter{
		ProductID: c.Query("product"),
		Kind:      c.Query("kind"),
		From:      from,
		To:        to,
	}
	var buf bytes.Buffer
	if err := h.exportUC.TransactionsCSV(c.Context(), &buf, filter); err != nil {
		return respondError(c, err)
	}
	return sendAttachment(c, "text/csv", "transactions_report.csv", buf.Bytes())
}

// InventoryPDF godoc
// @Summary      Download the inventory report as PDF
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {string}  string  "PDF file"
// @Router       /api/reports/inventory.pdf [get]
func (h *ReportHandler) InventoryPDF(c *fiber.Ctx) error {
	doc, filename, err := h.exportUC.InventoryPDF(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return sendAttachment(c, "application/pdf", filename, doc)
}

// MovementsPDF godoc
// @Summary      Download the stock movements report as PDF
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Param        from  query  string  false  "From date (YYYY-MM-DD), default 30 days ago"
// @Param        to    query  string  false  "To date (YYYY-MM-DD), default today"
// @Param        kind  query  string  false  "in or out, default both"
// @Success      200  {string}  string  "PDF file"
// @Router       /api/reports/movements.pdf [get]
func (h *ReportHandler) MovementsPDF(c *fiber.Ctx) error {
	from, ok := queryTime(c, "from")
	if !ok {
		return nil
	}
	to, ok := queryTime(c, "to")
	if !ok {
		return nil
	}
	var fromT, toT time.Time
	if from != nil {
		fromT = *from
	}
	if to != nil {
		toT = *to
	}
	doc, filename, err := h.exportUC.MovementsPDF(c.Context(), fromT, toT, c.Query("kind"))
	if err != nil {
		return respondError(c, err)
	}
	return sendAttachment(c, "application/pdf", filename, doc)
}

// ImportProducts godoc
// @Summary      Import products from a CSV file
// @Tags         reports
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "CSV with sku,name,category,price columns"
// @Success      200  {object}  dto.ImportResult
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/reports/import [post]
func (h *ReportHandler) ImportProducts(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return nil
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "multipart field 'file' required"})
	}
	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cannot read uploaded file"})
	}
	defer f.Close()

	result, err := h.importUC.ImportProductsCSV(c.Context(), actor, f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// sendAttachment writes a download response with the browser-facing
// filename.
func sendAttachment(c *fiber.Ctx, contentType, filename string, body []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Send(body)
}
