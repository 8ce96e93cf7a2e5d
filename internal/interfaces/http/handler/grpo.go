package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wms/backend/internal/application/receiving"
)

// GRPOHandler handles goods receipt PO HTTP requests
type GRPOHandler struct {
	BaseHandler
	grpoService *receiving.GRPOService
}

// NewGRPOHandler creates a new GRPO handler
func NewGRPOHandler(grpoService *receiving.GRPOService) *GRPOHandler {
	return &GRPOHandler{
		grpoService: grpoService,
	}
}

// CreateGRPORequest represents a request to draft a goods receipt
type CreateGRPORequest struct {
	PONumber      string `json:"po_number" binding:"required,max=50" example:"PO-10023"`
	POEntry       int    `json:"po_entry" binding:"omitempty,min=1" example:"1042"`
	CardCode      string `json:"card_code" binding:"required,max=50" example:"V10001"`
	CardName      string `json:"card_name" binding:"omitempty,max=200" example:"Acme Components Ltd"`
	WarehouseCode string `json:"warehouse_code" binding:"required,max=8" example:"WH01"`
	Remarks       string `json:"remarks" binding:"omitempty,max=500"`
}

// UpdateGRPORequest represents a request to update a draft receipt header
type UpdateGRPORequest struct {
	CardName string `json:"card_name" binding:"omitempty,max=200"`
	Remarks  string `json:"remarks" binding:"omitempty,max=500"`
}

// AddGRPOItemRequest represents a request to add a receipt line
type AddGRPOItemRequest struct {
	ItemCode         string  `json:"item_code" binding:"required,max=50" example:"A1001"`
	ItemDescription  string  `json:"item_description" binding:"omitempty,max=200"`
	UnitOfMeasure    string  `json:"unit_of_measure" binding:"omitempty,max=20" example:"EA"`
	POLineNumber     int     `json:"po_line_number" binding:"min=0"`
	OrderedQuantity  float64 `json:"ordered_quantity" binding:"min=0" example:"10"`
	ReceivedQuantity float64 `json:"received_quantity" binding:"required,gt=0" example:"10"`
	BinLocation      string  `json:"bin_location" binding:"omitempty,max=50"`
	SerialManaged    bool    `json:"serial_managed"`
	BatchManaged     bool    `json:"batch_managed"`
	BatchNumber      string  `json:"batch_number" binding:"omitempty,max=50"`
}

// UpdateItemQuantityRequest represents a request to change a line quantity
type UpdateItemQuantityRequest struct {
	Quantity float64 `json:"quantity" binding:"required,gt=0" example:"8"`
}

// AddGRPOSerialRequest represents a request to record a serial on a line
type AddGRPOSerialRequest struct {
	ItemID             string `json:"item_id" binding:"required,uuid"`
	SerialNumber       string `json:"serial_number" binding:"required,max=100" example:"SN-93001"`
	ManufacturerSerial string `json:"manufacturer_serial" binding:"omitempty,max=100"`
}

// ReviewRequest represents a QC approval or rejection request
type ReviewRequest struct {
	Notes string `json:"notes" binding:"omitempty,max=500"`
}

// Create godoc
// @Summary      Create a goods receipt draft
// @Description  Draft a goods receipt against a purchase order
// @Tags         grpo
// @Accept       json
// @Produce      json
// @Param        request body CreateGRPORequest true "Receipt creation request"
// @Success      201 {object} dto.Response{data=receiving.GRPODTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /grpo [post]
func (h *GRPOHandler) Create(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	var req CreateGRPORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	doc, err := h.grpoService.Create(c.Request.Context(), actor, receiving.CreateGRPOInput{
		PONumber:      req.PONumber,
		POEntry:       req.POEntry,
		CardCode:      req.CardCode,
		CardName:      req.CardName,
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
// @Summary      Get a goods receipt
// @Description  Retrieve a goods receipt with its lines and serials
// @Tags         grpo
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} dto.Response{data=receiving.GRPODTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /grpo/{id} [get]
func (h *GRPOHandler) GetByID(c *gin.Context) {
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

	doc, err := h.grpoService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// GetByNumber godoc
// @Summary      Get a goods receipt by document number
// @Description  Retrieve a goods receipt by its WMS document number
// @Tags         grpo
// @Produce      json
// @Param        number path string true "Document number"
// @Success      200 {object} dto.Response{data=receiving.GRPODTO}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /grpo/number/{number} [get]
func (h *GRPOHandler) GetByNumber(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Document number is required")
		return
	}

	doc, err := h.grpoService.GetByNumber(c.Request.Context(), actor, number)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// List godoc
// @Summary      List goods receipts
// @Description  Get a paginated list of goods receipts visible to the caller
// @Tags         grpo
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        order_by query string false "Sort by field" Enums(document_number, status, created_at, updated_at)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Param        search query string false "Search by document number, PO number or vendor"
// @Param        status query string false "Filter by status" Enums(draft, submitted, qc_approved, posting, posted, failed)
// @Param        warehouse query string false "Filter by warehouse code"
// @Success      200 {object} dto.Response{data=[]receiving.GRPOListItemDTO,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /grpo [get]
func (h *GRPOHandler) List(c *gin.Context) {
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

	items, total, err := h.grpoService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// UpdateHeader godoc
// @Summary      Update a goods receipt header
// @Description  Update the mutable header fields of a draft receipt
// @Tags         grpo
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body UpdateGRPORequest true "Header update request"
// @Success      200 {object} dto.Response{data=receiving.GRPODTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /grpo/{id} [put]
func (h *GRPOHandler) UpdateHeader(c *gin.Context) {
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

	var req UpdateGRPORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	doc, err := h.grpoService.UpdateHeader(c.Request.Context(), actor, id, receiving.UpdateGRPOInput{
		CardName: req.CardName,
		Remarks:  req.Remarks,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// Delete godoc
// @Summary      Delete a goods receipt draft
// @Description  Delete a receipt that has not been submitted
// @Tags         grpo
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /grpo/{id} [delete]
func (h *GRPOHandler) Delete(c *gin.Context) {
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

	if err := h.grpoService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, MessageData{Message: "Goods receipt deleted successfully"})
}

// AddItem godoc
// @Summary      Add a receipt line
// @Description  Add a line item to a draft receipt
// @Tags         grpo
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body AddGRPOItemRequest true "Line creation request"
// @Success      200 {object} dto.Response{data=receiving.GRPODTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /grpo/{id}/items [post]
func (h *GRPOHandler) AddItem(c *gin.Context) {
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

	var req AddGRPOItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	doc, err := h.grpoService.AddItem(c.Request.Context(), actor, id, receiving.AddItemInput{
		ItemCode:         req.ItemCode,
		ItemDescription:  req.ItemDescription,
		UnitOfMeasure:    req.UnitOfMeasure,
		POLineNumber:     req.POLineNumber,
		OrderedQuantity:  toDecimal(req.OrderedQuantity),
		ReceivedQuantity: toDecimal(req.ReceivedQuantity),
		BinLocation:      req.BinLocation,
		SerialManaged:    req.SerialManaged,
		BatchManaged:     req.BatchManaged,
		BatchNumber:      req.BatchNumber,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// UpdateItemQuantity godoc
// @Summary      Update a line quantity
// @Description  Change the received quantity on a draft receipt line
// @Tags         grpo
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        itemId path string true "Line ID" format(uuid)
// @Param        request body UpdateItemQuantityRequest true "Quantity update request"
// @Success      200 {object} dto.Response{data=receiving.GRPODTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /grpo/{id}/items/{itemId}/quantity [put]
func (h *GRPOHandler) UpdateItemQuantity(c *gin.Context) {
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

	var req UpdateItemQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	doc, err := h.grpoService.UpdateItemQuantity(c.Request.Context(), actor, id, itemID, toDecimal(req.Quantity))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// RemoveItem godoc
// @Summary      Remove a receipt line
// @Description  Remove a line item from a draft receipt
// @Tags         grpo
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        itemId path string true "Line ID" format(uuid)
// @Success      200 {object} dto.Response{data=receiving.GRPODTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /grpo/{id}/items/{itemId} [delete]
func (h *GRPOHandler) RemoveItem(c *gin.Context) {
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

	doc, err := h.grpoService.RemoveItem(c.Request.Context(), actor, id, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// AddSerial godoc
// @Summary      Record a serial number
// @Description  Record a serial against a serial-managed receipt line
// @Tags         grpo
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body AddGRPOSerialRequest true "Serial registration request"
// @Success      200 {object} dto.Response{data=receiving.GRPODTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /grpo/{id}/serials [post]
func (h *GRPOHandler) AddSerial(c *gin.Context) {
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

	var req AddGRPOSerialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		h.BadRequest(c, "Invalid line ID")
		return
	}

	doc, err := h.grpoService.AddItemSerial(c.Request.Context(), actor, id, receiving.AddSerialInput{
		ItemID:             itemID,
		SerialNumber:       req.SerialNumber,
		ManufacturerSerial: req.ManufacturerSerial,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// RemoveSerial godoc
// @Summary      Remove a recorded serial
// @Description  Remove a serial number from a receipt line
// @Tags         grpo
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        itemId path string true "Line ID" format(uuid)
// @Param        serial path string true "Serial number"
// @Success      200 {object} dto.Response{data=receiving.GRPODTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /grpo/{id}/items/{itemId}/serials/{serial} [delete]
func (h *GRPOHandler) RemoveSerial(c *gin.Context) {
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

	serial := c.Param("serial")
	if serial == "" {
		h.BadRequest(c, "Serial number is required")
		return
	}

	doc, err := h.grpoService.RemoveItemSerial(c.Request.Context(), actor, id, itemID, serial)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// Submit godoc
// @Summary      Submit a goods receipt
// @Description  Submit a draft receipt for QC review
// @Tags         grpo
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} dto.Response{data=receiving.GRPODTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /grpo/{id}/submit [post]
func (h *GRPOHandler) Submit(c *gin.Context) {
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

	doc, err := h.grpoService.Submit(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// Approve godoc
// @Summary      Approve a goods receipt
// @Description  QC-approve a submitted receipt
// @Tags         grpo
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body ReviewRequest false "Approval notes"
// @Success      200 {object} dto.Response{data=receiving.GRPODTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /grpo/{id}/approve [post]
func (h *GRPOHandler) Approve(c *gin.Context) {
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

	doc, err := h.grpoService.Approve(c.Request.Context(), actor, id, receiving.ReviewInput{Notes: req.Notes})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// Reject godoc
// @Summary      Reject a goods receipt
// @Description  QC-reject a submitted receipt back to draft
// @Tags         grpo
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body ReviewRequest true "Rejection notes"
// @Success      200 {object} dto.Response{data=receiving.GRPODTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /grpo/{id}/reject [post]
func (h *GRPOHandler) Reject(c *gin.Context) {
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

	doc, err := h.grpoService.Reject(c.Request.Context(), actor, id, receiving.ReviewInput{Notes: req.Notes})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// Reopen godoc
// @Summary      Reopen a goods receipt
// @Description  Return a submitted receipt to draft for correction
// @Tags         grpo
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} dto.Response{data=receiving.GRPODTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /grpo/{id}/reopen [post]
func (h *GRPOHandler) Reopen(c *gin.Context) {
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

	doc, err := h.grpoService.Reopen(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// Post godoc
// @Summary      Post a goods receipt to SAP
// @Description  Queue an approved receipt for posting to the SAP Service Layer
// @Tags         grpo
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      202 {object} dto.Response{data=posting.JobDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /grpo/{id}/post [post]
func (h *GRPOHandler) Post(c *gin.Context) {
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

	job, err := h.grpoService.Post(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Accepted(c, job)
}
