package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/richland-auto/inventory-api/internal/application/dto"
	"github.com/richland-auto/inventory-api/internal/application/purchasing"
	"github.com/richland-auto/inventory-api/internal/domain/repository"
)

// PurchaseOrderHandler serves the purchase order workflow routes.
type PurchaseOrderHandler struct {
	uc *purchasing.UseCase
}

// NewPurchaseOrderHandler builds the handler.
func NewPurchaseOrderHandler(uc *purchasing.UseCase) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{uc: uc}
}

// Create godoc
// @Summary      Create a draft purchase order
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseOrderRequest  true  "Supplier and lines"
// @Success      201   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders [post]
func (h *PurchaseOrderHandler) Create(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return nil
	}
	var in dto.CreatePurchaseOrderRequest
	if !parseBody(c, &in) {
		return nil
	}
	po, err := h.uc.Create(c.Context(), actor, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewPurchaseOrderResponse(po))
}

// GetByID godoc
// @Summary      Get a purchase order with its lines
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "Order ID"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) GetByID(c *fiber.Ctx) error {
	po, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewPurchaseOrderResponse(po))
}

// List godoc
// @Summary      List purchase orders, newest first
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        status    query  string  false  "draft, submitted, completed or cancelled"
// @Param        supplier  query  string  false  "Supplier ID"
// @Param        limit     query  int     false  "Page size"  default(20)
// @Param        offset    query  int     false  "Offset"     default(0)
// @Success      200  {array}  dto.PurchaseOrderResponse
// @Router       /api/purchase-orders [get]
func (h *PurchaseOrderHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c, 20)
	filter := repository.PurchaseOrderFilter{
		Status:     c.Query("status"),
		SupplierID: c.Query("supplier"),
		Limit:      limit,
		Offset:     offset,
	}
	orders, err := h.uc.List(c.Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewPurchaseOrderListResponse(orders))
}

// AddItem godoc
// @Summary      Add a line to a draft order
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "Order ID"
// @Param        body  body  dto.PurchaseOrderItemRequest  true  "Product and quantity"
// @Success      200   {object}  dto.PurchaseOrderResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/items [post]
func (h *PurchaseOrderHandler) AddItem(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return nil
	}
	var in dto.PurchaseOrderItemRequest
	if !parseBody(c, &in) {
		return nil
	}
	po, err := h.uc.AddItem(c.Context(), actor, c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewPurchaseOrderResponse(po))
}

// RemoveItem godoc
// @Summary      Remove a line from a draft order
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "Order ID"
// @Param        itemId  path  string  true  "Line item ID"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/items/{itemId} [delete]
func (h *PurchaseOrderHandler) RemoveItem(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return nil
	}
	po, err := h.uc.RemoveItem(c.Context(), actor, c.Params("id"), c.Params("itemId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewPurchaseOrderResponse(po))
}

// Submit godoc
// @Summary      Submit a draft order to its supplier
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "Order ID"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/submit [post]
func (h *PurchaseOrderHandler) Submit(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return nil
	}
	po, err := h.uc.Submit(c.Context(), actor, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewPurchaseOrderResponse(po))
}

// Cancel godoc
// @Summary      Cancel a draft or submitted order
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "Order ID"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/cancel [post]
func (h *PurchaseOrderHandler) Cancel(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return nil
	}
	po, err := h.uc.Cancel(c.Context(), actor, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewPurchaseOrderResponse(po))
}

// Complete godoc
// @Summary      Complete a submitted order, booking stock-in per line
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "Order ID"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/complete [post]
func (h *PurchaseOrderHandler) Complete(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return nil
	}
	po, err := h.uc.Complete(c.Context(), actor, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewPurchaseOrderResponse(po))
}
