package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wms/backend/internal/application/picking"
)

// PickListHandler handles pick list HTTP requests
type PickListHandler struct {
	BaseHandler
	pickService *picking.Service
}

// NewPickListHandler creates a new pick list handler
func NewPickListHandler(pickService *picking.Service) *PickListHandler {
	return &PickListHandler{
		pickService: pickService,
	}
}

// CreatePickListRequest represents a request to draft a pick list
type CreatePickListRequest struct {
	OrderEntry    int    `json:"order_entry" binding:"required,min=1" example:"2041"`
	WarehouseCode string `json:"warehouse_code" binding:"required,max=8" example:"WH01"`
	Remarks       string `json:"remarks" binding:"omitempty,max=500"`
}

// UpdatePickListRequest represents a request to update a pick list header
type UpdatePickListRequest struct {
	Remarks string `json:"remarks" binding:"omitempty,max=500"`
}

// PickQuantityRequest records the picked amount for a non-serial line
type PickQuantityRequest struct {
	LineID   string  `json:"line_id" binding:"required,uuid"`
	Quantity float64 `json:"quantity" binding:"min=0" example:"4"`
}

// PickSerialRequest records one scanned serial for a line
type PickSerialRequest struct {
	LineID       string `json:"line_id" binding:"required,uuid"`
	SerialNumber string `json:"serial_number" binding:"required,max=100" example:"SN-93001"`
}

// Create godoc
// @Summary      Create a pick list draft
// @Description  Draft a pick list from an open sales order. Lines are copied
// @Description  from the order's open rows.
// @Tags         pick-lists
// @Accept       json
// @Produce      json
// @Param        request body CreatePickListRequest true "Pick list creation request"
// @Success      201 {object} dto.Response{data=picking.PickListDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pick-lists [post]
func (h *PickListHandler) Create(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	var req CreatePickListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	doc, err := h.pickService.Create(c.Request.Context(), actor, picking.CreatePickListInput{
		OrderEntry:    req.OrderEntry,
		WarehouseCode: req.WarehouseCode,
		Remarks:       req.Remarks,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, doc)
}

// GetByID godoc
// @Summary      Get a pick list
// @Description  Retrieve a pick list with its lines and picked serials
// @Tags         pick-lists
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} dto.Response{data=picking.PickListDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pick-lists/{id} [get]
func (h *PickListHandler) GetByID(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	doc, err := h.pickService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// List godoc
// @Summary      List pick lists
// @Description  Get a paginated list of pick lists visible to the caller
// @Tags         pick-lists
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        order_by query string false "Sort by field" Enums(document_number, status, created_at, updated_at)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Param        search query string false "Search by document number or customer"
// @Param        status query string false "Filter by status" Enums(draft, submitted, qc_approved, posting, posted, failed)
// @Param        warehouse query string false "Filter by warehouse code"
// @Success      200 {object} dto.Response{data=[]picking.PickListListItemDTO,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pick-lists [get]
func (h *PickListHandler) List(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if wh := c.Query("warehouse"); wh != "" {
		filter.Filters["warehouse_code"] = wh
	}

	items, total, err := h.pickService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// ListByOrder godoc
// @Summary      List pick lists for a sales order
// @Description  Get all pick lists created against one sales order
// @Tags         pick-lists
// @Produce      json
// @Param        orderEntry path int true "Sales order DocEntry"
// @Success      200 {object} dto.Response{data=[]picking.PickListListItemDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pick-lists/order/{orderEntry} [get]
func (h *PickListHandler) ListByOrder(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	orderEntry, err := strconv.Atoi(c.Param("orderEntry"))
	if err != nil || orderEntry <= 0 {
		h.BadRequest(c, "Invalid order entry")
		return
	}

	items, err := h.pickService.ListByOrder(c.Request.Context(), actor, orderEntry)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, items)
}

// UpdateHeader godoc
// @Summary      Update a pick list header
// @Description  Update the mutable header fields of a draft pick list
// @Tags         pick-lists
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body UpdatePickListRequest true "Header update request"
// @Success      200 {object} dto.Response{data=picking.PickListDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pick-lists/{id} [put]
func (h *PickListHandler) UpdateHeader(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	var req UpdatePickListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	doc, err := h.pickService.UpdateHeader(c.Request.Context(), actor, id, picking.UpdatePickListInput{
		Remarks: req.Remarks,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// Delete godoc
// @Summary      Delete a pick list draft
// @Description  Delete a pick list that has not been submitted
// @Tags         pick-lists
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pick-lists/{id} [delete]
func (h *PickListHandler) Delete(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	if err := h.pickService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, MessageData{Message: "Pick list deleted successfully"})
}

// SetPickedQuantity godoc
// @Summary      Record a picked quantity
// @Description  Set the picked quantity on a non-serial pick line
// @Tags         pick-lists
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body PickQuantityRequest true "Picked quantity"
// @Success      200 {object} dto.Response{data=picking.PickListDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pick-lists/{id}/quantities [put]
func (h *PickListHandler) SetPickedQuantity(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	var req PickQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lineID, err := uuid.Parse(req.LineID)
	if err != nil {
		h.BadRequest(c, "Invalid line ID")
		return
	}

	doc, err := h.pickService.SetPickedQuantity(c.Request.Context(), actor, id, picking.PickQuantityInput{
		LineID:   lineID,
		Quantity: toDecimal(req.Quantity),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// AddSerial godoc
// @Summary      Scan a serial onto a pick line
// @Description  Record one picked serial against a serial-managed pick line
// @Tags         pick-lists
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body PickSerialRequest true "Serial scan request"
// @Success      200 {object} dto.Response{data=picking.PickListDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pick-lists/{id}/serials [post]
func (h *PickListHandler) AddSerial(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	var req PickSerialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lineID, err := uuid.Parse(req.LineID)
	if err != nil {
		h.BadRequest(c, "Invalid line ID")
		return
	}

	doc, err := h.pickService.AddLineSerial(c.Request.Context(), actor, id, picking.PickSerialInput{
		LineID:       lineID,
		SerialNumber: req.SerialNumber,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// RemoveSerial godoc
// @Summary      Remove a picked serial
// @Description  Remove a serial number from a pick line
// @Tags         pick-lists
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        lineId path string true "Line ID" format(uuid)
// @Param        serial path string true "Serial number"
// @Success      200 {object} dto.Response{data=picking.PickListDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pick-lists/{id}/lines/{lineId}/serials/{serial} [delete]
func (h *PickListHandler) RemoveSerial(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	lineID, err := uuid.Parse(c.Param("lineId"))
	if err != nil {
		h.BadRequest(c, "Invalid line ID")
		return
	}

	serial := c.Param("serial")
	if serial == "" {
		h.BadRequest(c, "Serial number is required")
		return
	}

	doc, err := h.pickService.RemoveLineSerial(c.Request.Context(), actor, id, lineID, serial)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// RemoveLine godoc
// @Summary      Remove a pick line
// @Description  Remove a line from a draft pick list
// @Tags         pick-lists
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        lineId path string true "Line ID" format(uuid)
// @Success      200 {object} dto.Response{data=picking.PickListDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pick-lists/{id}/lines/{lineId} [delete]
func (h *PickListHandler) RemoveLine(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	lineID, err := uuid.Parse(c.Param("lineId"))
	if err != nil {
		h.BadRequest(c, "Invalid line ID")
		return
	}

	doc, err := h.pickService.RemoveLine(c.Request.Context(), actor, id, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// Submit godoc
// @Summary      Submit a pick list
// @Description  Submit a draft pick list for QC review
// @Tags         pick-lists
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} dto.Response{data=picking.PickListDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pick-lists/{id}/submit [post]
func (h *PickListHandler) Submit(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	doc, err := h.pickService.Submit(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// Approve godoc
// @Summary      Approve a pick list
// @Description  QC-approve a submitted pick list
// @Tags         pick-lists
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body ReviewRequest false "Approval notes"
// @Success      200 {object} dto.Response{data=picking.PickListDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pick-lists/{id}/approve [post]
func (h *PickListHandler) Approve(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	var req ReviewRequest
	_ = c.ShouldBindJSON(&req) // Optional body

	doc, err := h.pickService.Approve(c.Request.Context(), actor, id, picking.ReviewInput{Notes: req.Notes})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// Reject godoc
// @Summary      Reject a pick list
// @Description  QC-reject a submitted pick list back to draft
// @Tags         pick-lists
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body ReviewRequest true "Rejection notes"
// @Success      200 {object} dto.Response{data=picking.PickListDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pick-lists/{id}/reject [post]
func (h *PickListHandler) Reject(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	doc, err := h.pickService.Reject(c.Request.Context(), actor, id, picking.ReviewInput{Notes: req.Notes})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// Reopen godoc
// @Summary      Reopen a pick list
// @Description  Return a submitted pick list to draft for correction
// @Tags         pick-lists
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} dto.Response{data=picking.PickListDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pick-lists/{id}/reopen [post]
func (h *PickListHandler) Reopen(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	doc, err := h.pickService.Reopen(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// Post godoc
// @Summary      Post a pick list to SAP
// @Description  Queue an approved pick list for posting to the SAP Service Layer
// @Tags         pick-lists
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      202 {object} dto.Response{data=posting.JobDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pick-lists/{id}/post [post]
func (h *PickListHandler) Post(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	job, err := h.pickService.Post(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Accepted(c, job)
}
