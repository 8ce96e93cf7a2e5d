package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wms/backend/internal/application/transfer"
)

// TransferHandler handles serial item transfer HTTP requests
type TransferHandler struct {
	BaseHandler
	transferService *transfer.Service
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(transferService *transfer.Service) *TransferHandler {
	return &TransferHandler{
		transferService: transferService,
	}
}

// CreateTransferRequest represents a request to draft a stock transfer
type CreateTransferRequest struct {
	FromWarehouse string `json:"from_warehouse" binding:"required,max=8" example:"WH01"`
	ToWarehouse   string `json:"to_warehouse" binding:"required,max=8" example:"WH02"`
	Remarks       string `json:"remarks" binding:"omitempty,max=500"`
}

// AddSerialItemRequest represents one scanned serial for a transfer
type AddSerialItemRequest struct {
	ItemCode     string `json:"item_code" binding:"required,max=50" example:"A1001"`
	SerialNumber string `json:"serial_number" binding:"required,max=100" example:"SN-93001"`
}

// AddNonSerialItemRequest represents a plain quantity transfer line
type AddNonSerialItemRequest struct {
	ItemCode        string  `json:"item_code" binding:"required,max=50" example:"B2001"`
	ItemDescription string  `json:"item_description" binding:"omitempty,max=200"`
	Quantity        float64 `json:"quantity" binding:"required,gt=0" example:"5"`
}

// Create godoc
// @Summary      Create a stock transfer draft
// @Description  Draft a serial item transfer between warehouses
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        request body CreateTransferRequest true "Transfer creation request"
// @Success      201 {object} dto.Response{data=transfer.TransferDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transfers [post]
func (h *TransferHandler) Create(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	doc, err := h.transferService.Create(c.Request.Context(), actor, transfer.CreateTransferInput{
		FromWarehouse: req.FromWarehouse,
		ToWarehouse:   req.ToWarehouse,
		Remarks:       req.Remarks,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, doc)
}

// GetByID godoc
// @Summary      Get a stock transfer
// @Description  Retrieve a transfer with its lines
// @Tags         transfers
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} dto.Response{data=transfer.TransferDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transfers/{id} [get]
func (h *TransferHandler) GetByID(c *gin.Context) {
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

	doc, err := h.transferService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// List godoc
// @Summary      List stock transfers
// @Description  Get a paginated list of transfers visible to the caller
// @Tags         transfers
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        order_by query string false "Sort by field" Enums(document_number, status, created_at, updated_at)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Param        search query string false "Search by document number or item"
// @Param        status query string false "Filter by status" Enums(draft, submitted, qc_approved, posting, posted, failed)
// @Param        warehouse query string false "Filter by source warehouse code"
// @Success      200 {object} dto.Response{data=[]transfer.TransferListItemDTO,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transfers [get]
func (h *TransferHandler) List(c *gin.Context) {
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
		filter.Filters["from_warehouse"] = wh
	}

	items, total, err := h.transferService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// Delete godoc
// @Summary      Delete a transfer draft
// @Description  Delete a transfer that has not been submitted
// @Tags         transfers
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transfers/{id} [delete]
func (h *TransferHandler) Delete(c *gin.Context) {
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

	if err := h.transferService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, MessageData{Message: "Transfer deleted successfully"})
}

// AddSerialItem godoc
// @Summary      Scan a serial onto a transfer
// @Description  Add one scanned serial to a draft transfer. The line for the
// @Description  item is created on first scan.
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body AddSerialItemRequest true "Serial scan request"
// @Success      200 {object} dto.Response{data=transfer.TransferDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transfers/{id}/serial-items [post]
func (h *TransferHandler) AddSerialItem(c *gin.Context) {
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

	var req AddSerialItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	doc, err := h.transferService.AddSerialItem(c.Request.Context(), actor, id, transfer.AddSerialItemInput{
		ItemCode:     req.ItemCode,
		SerialNumber: req.SerialNumber,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// AddNonSerialItem godoc
// @Summary      Add a non-serial transfer line
// @Description  Add a quantity line for an item that is not serial managed
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body AddNonSerialItemRequest true "Line creation request"
// @Success      200 {object} dto.Response{data=transfer.TransferDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transfers/{id}/items [post]
func (h *TransferHandler) AddNonSerialItem(c *gin.Context) {
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

	var req AddNonSerialItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	doc, err := h.transferService.AddNonSerialItem(c.Request.Context(), actor, id, transfer.AddNonSerialItemInput{
		ItemCode:        req.ItemCode,
		ItemDescription: req.ItemDescription,
		Quantity:        toDecimal(req.Quantity),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// RemoveItem godoc
// @Summary      Remove a transfer line
// @Description  Remove a line and its serials from a draft transfer
// @Tags         transfers
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        itemId path string true "Line ID" format(uuid)
// @Success      200 {object} dto.Response{data=transfer.TransferDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transfers/{id}/items/{itemId} [delete]
func (h *TransferHandler) RemoveItem(c *gin.Context) {
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

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		h.BadRequest(c, "Invalid line ID")
		return
	}

	doc, err := h.transferService.RemoveItem(c.Request.Context(), actor, id, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// Submit godoc
// @Summary      Submit a transfer
// @Description  Submit a draft transfer for QC review
// @Tags         transfers
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} dto.Response{data=transfer.TransferDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transfers/{id}/submit [post]
func (h *TransferHandler) Submit(c *gin.Context) {
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

	doc, err := h.transferService.Submit(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// Approve godoc
// @Summary      Approve a transfer
// @Description  QC-approve a submitted transfer
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body ReviewRequest false "Approval notes"
// @Success      200 {object} dto.Response{data=transfer.TransferDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transfers/{id}/approve [post]
func (h *TransferHandler) Approve(c *gin.Context) {
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

	doc, err := h.transferService.Approve(c.Request.Context(), actor, id, transfer.ReviewInput{Notes: req.Notes})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// Reject godoc
// @Summary      Reject a transfer
// @Description  QC-reject a submitted transfer back to draft
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body ReviewRequest true "Rejection notes"
// @Success      200 {object} dto.Response{data=transfer.TransferDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transfers/{id}/reject [post]
func (h *TransferHandler) Reject(c *gin.Context) {
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

	doc, err := h.transferService.Reject(c.Request.Context(), actor, id, transfer.ReviewInput{Notes: req.Notes})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// Reopen godoc
// @Summary      Reopen a transfer
// @Description  Return a submitted transfer to draft for correction
// @Tags         transfers
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} dto.Response{data=transfer.TransferDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transfers/{id}/reopen [post]
func (h *TransferHandler) Reopen(c *gin.Context) {
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

	doc, err := h.transferService.Reopen(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// CleanupDrafts godoc
// @Summary      Clean up abandoned transfer drafts
// @Description  Delete empty draft transfers older than the given age
// @Tags         transfers
// @Produce      json
// @Param        max_age_hours query int false "Minimum draft age in hours" default(24)
// @Success      200 {object} dto.Response{data=handler.CleanupResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transfers/cleanup [post]
func (h *TransferHandler) CleanupDrafts(c *gin.Context) {
	if _, err := getActor(c); err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	maxAgeHours := 24
	if raw := c.Query("max_age_hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.BadRequest(c, "Invalid max_age_hours")
			return
		}
		maxAgeHours = parsed
	}

	removed, err := h.transferService.CleanupEmptyDrafts(c.Request.Context(), time.Duration(maxAgeHours)*time.Hour)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, CleanupResult{Removed: removed})
}

// CleanupResult reports how many abandoned drafts were removed
type CleanupResult struct {
	Removed int64 `json:"removed"`
}

// Post godoc
// @Summary      Post a transfer to SAP
// @Description  Queue an approved transfer for posting to the SAP Service Layer
// @Tags         transfers
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      202 {object} dto.Response{data=posting.JobDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transfers/{id}/post [post]
func (h *TransferHandler) Post(c *gin.Context) {
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

	job, err := h.transferService.Post(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Accepted(c, job)
}
