package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wms/backend/internal/application/audit"
)

// AuditHandler handles audit trail HTTP requests
type AuditHandler struct {
	BaseHandler
	auditService *audit.QueryService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *audit.QueryService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
	}
}

// List godoc
// @Summary      List audit entries
// @Description  Get a paginated list of document audit entries
// @Tags         audit
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        order_by query string false "Sort by field" Enums(occurred_at, event_type, aggregate_type)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Param        event_type query string false "Filter by event type"
// @Param        aggregate_type query string false "Filter by aggregate type" Enums(grpo, transfer, pick_list, so_invoice)
// @Success      200 {object} dto.Response{data=[]audit.EntryDTO,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /audit [get]
func (h *AuditHandler) List(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	if eventType := c.Query("event_type"); eventType != "" {
		filter.Filters["event_type"] = eventType
	}
	if aggregateType := c.Query("aggregate_type"); aggregateType != "" {
		filter.Filters["aggregate_type"] = aggregateType
	}

	entries, total, err := h.auditService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, entries, total, filter.Page, filter.PageSize)
}

// AggregateHistory godoc
// @Summary      Get an aggregate's audit history
// @Description  List every audit entry recorded for one document, oldest first
// @Tags         audit
// @Produce      json
// @Param        aggregateType path string true "Aggregate type" Enums(grpo, transfer, pick_list, so_invoice)
// @Param        aggregateId path string true "Aggregate ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]audit.EntryDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /audit/{aggregateType}/{aggregateId} [get]
func (h *AuditHandler) AggregateHistory(c *gin.Context) {
	aggregateType := c.Param("aggregateType")
	if aggregateType == "" {
		h.BadRequest(c, "Aggregate type is required")
		return
	}

	aggregateID, err := uuid.Parse(c.Param("aggregateId"))
	if err != nil {
		h.BadRequest(c, "Invalid aggregate ID")
		return
	}

	entries, err := h.auditService.AggregateHistory(c.Request.Context(), aggregateType, aggregateID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entries)
}
