package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/richland-auto/inventory-api/internal/application/dto"
	"github.com/richland-auto/inventory-api/internal/application/ledger"
	"github.com/richland-auto/inventory-api/internal/domain/entity"
	"github.com/richland-auto/inventory-api/internal/domain/repository"
)

// TransactionHandler serves the stock ledger routes. Recording a movement
// is the only way stock levels change.
type TransactionHandler struct {
	uc *ledger.UseCase
}

// NewTransactionHandler builds the handler.
func NewTransactionHandler(uc *ledger.UseCase) *TransactionHandler {
	return &TransactionHandler{uc: uc}
}

// Record godoc
// @Summary      Record a stock movement (in or out)
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordTransactionRequest  true  "Movement data"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transactions [post]
func (h *TransactionHandler) Record(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return nil
	}
	var in dto.RecordTransactionRequest
	if !parseBody(c, &in) {
		return nil
	}
	input := ledger.MovementInput{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		Reference: in.Reference,
		Note:      in.Note,
	}
	var (
		tx  *entity.StockTransaction
		err error
	)
	if in.Kind == entity.TransactionIn {
		tx, err = h.uc.StockIn(c.Context(), actor, input)
	} else {
		tx, err = h.uc.StockOut(c.Context(), actor, input)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTransactionResponse(tx))
}

// List godoc
// @Summary      List ledger transactions, newest first
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        product  query  string  false  "Product ID"
// @Param        kind     query  string  false  "in or out"
// @Param        actor    query  string  false  "Actor ID"
// @Param        from     query  string  false  "From date (YYYY-MM-DD)"
// @Param        to       query  string  false  "To date (YYYY-MM-DD)"
// @Param        limit    query  int     false  "Page size"  default(50)
// @Param        offset   query  int     false  "Offset"     default(0)
// @Success      200  {array}  dto.TransactionResponse
// @Router       /api/transactions [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	from, ok := queryTime(c, "from")
	if !ok {
		return nil
	}
	to, ok := queryTime(c, "to")
	if !ok {
		return nil
	}
	limit, offset := pageParams(c, 50)
	filter := repository.TransactionFilter{
		ProductID: c.Query("product"),
		Kind:      c.Query("kind"),
		ActorID:   c.Query("actor"),
		From:      from,
		To:        to,
		Limit:     limit,
		Offset:    offset,
	}
	txs, err := h.uc.List(c.Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewTransactionListResponse(txs))
}

// ListByProduct godoc
// @Summary      List one product's movements, newest first
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true   "Product ID"
// @Param        limit  query  int     false  "Page size"  default(50)
// @Success      200  {array}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/transactions [get]
func (h *TransactionHandler) ListByProduct(c *fiber.Ctx) error {
	limit, _ := pageParams(c, 50)
	txs, err := h.uc.ListByProduct(c.Context(), c.Params("id"), limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewTransactionListResponse(txs))
}

// ReconcileProduct godoc
// @Summary      Check one product's cached quantity against its ledger sum
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "Product ID"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reconciliation/products/{id} [post]
func (h *TransactionHandler) ReconcileProduct(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return nil
	}
	out, err := h.uc.ReconcileProduct(c.Context(), actor, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ReconcileAll godoc
// @Summary      Check every product's cached quantity against the ledger
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReconciliationResponse
// @Router       /api/reconciliation [post]
func (h *TransactionHandler) ReconcileAll(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return nil
	}
	out, err := h.uc.ReconcileAll(c.Context(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
