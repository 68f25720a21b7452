package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/richland-auto/inventory-api/internal/application/audit"
	"github.com/richland-auto/inventory-api/internal/application/dto"
	"github.com/richland-auto/inventory-api/internal/domain/repository"
)

// historyMaxEntries caps one history response. The iterator itself is
// unbounded; the route walks it up to this many rows.
const historyMaxEntries = 1000

// AuditHandler serves read access to the audit trail.
type AuditHandler struct {
	uc *audit.UseCase
}

// NewAuditHandler builds the handler.
func NewAuditHandler(uc *audit.UseCase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

// List godoc
// @Summary      List audit entries, newest first
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        entity_type  query  string  false  "product, category, supplier, purchase_order or user"
// @Param        entity_id    query  string  false  "Entity ID"
// @Param        actor        query  string  false  "Actor ID"
// @Param        from         query  string  false  "From date (YYYY-MM-DD)"
// @Param        to           query  string  false  "To date (YYYY-MM-DD)"
// @Param        limit        query  int     false  "Page size"  default(50)
// @Param        offset       query  int     false  "Offset"     default(0)
// @Success      200  {array}  dto.AuditEntryResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/audit [get]
func (h *AuditHandler) List(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return nil
	}
	from, ok := queryTime(c, "from")
	if !ok {
		return nil
	}
	to, ok := queryTime(c, "to")
	if !ok {
		return nil
	}
	limit, offset := pageParams(c, 50)
	filter := repository.AuditFilter{
		EntityType: c.Query("entity_type"),
		EntityID:   c.Query("entity_id"),
		ActorID:    c.Query("actor"),
		From:       from,
		To:         to,
		Limit:      limit,
		Offset:     offset,
	}
	entries, err := h.uc.List(c.Context(), actor, filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewAuditListResponse(entries))
}

// History godoc
// @Summary      Walk one entity's full change history, oldest first
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        entityType  path  string  true  "Entity type"
// @Param        entityId    path  string  true  "Entity ID"
// @Success      200  {array}  dto.AuditEntryResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/audit/{entityType}/{entityId}/history [get]
func (h *AuditHandler) History(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return nil
	}
	it, err := h.uc.History(actor, c.Params("entityType"), c.Params("entityId"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.AuditEntryResponse, 0, 16)
	for len(out) < historyMaxEntries && it.Next(c.Context()) {
		out = append(out, dto.NewAuditEntryResponse(it.Entry()))
	}
	if err := it.Err(); err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
