package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wms/backend/internal/application/invoicing"
)

// InvoiceHandler handles sales order invoice HTTP requests
type InvoiceHandler struct {
	BaseHandler
	invoiceService *invoicing.Service
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *invoicing.Service) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

// ValidateSalesOrderRequest resolves an order number within a numbering series
type ValidateSalesOrderRequest struct {
	OrderNumber string `json:"order_number" binding:"required,max=50" example:"2041"`
	Series      int    `json:"series" binding:"required,min=1" example:"74"`
}

// CreateInvoiceRequest represents a request to draft an invoice
type CreateInvoiceRequest struct {
	OrderNumber string `json:"order_number" binding:"required,max=50" example:"2041"`
	Series      int    `json:"series" binding:"required,min=1" example:"74"`
	Comments    string `json:"comments" binding:"omitempty,max=500"`
}

// UpdateInvoiceRequest represents a request to update an invoice header
type UpdateInvoiceRequest struct {
	Comments string `json:"comments" binding:"omitempty,max=500"`
}

// AddInvoiceSerialRequest records one scanned serial. The line is resolved by
// ID when given, otherwise by the reported item code.
type AddInvoiceSerialRequest struct {
	LineID       string `json:"line_id" binding:"omitempty,uuid"`
	ItemCode     string `json:"item_code" binding:"omitempty,max=50" example:"A1001"`
	SerialNumber string `json:"serial_number" binding:"required,max=100" example:"SN-93001"`
}

// ValidateQuantityRequest records the checked amount on a non-serial line
type ValidateQuantityRequest struct {
	LineID   string  `json:"line_id" binding:"required,uuid"`
	Quantity float64 `json:"quantity" binding:"min=0" example:"4"`
}

// ListSeries godoc
// @Summary      List sales order series
// @Description  List the SAP numbering series usable for order lookup
// @Tags         invoices
// @Produce      json
// @Success      200 {object} dto.Response{data=[]invoicing.SeriesDTO}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/series [get]
func (h *InvoiceHandler) ListSeries(c *gin.Context) {
	series, err := h.invoiceService.ListSeries(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, series)
}

// ValidateSalesOrder godoc
// @Summary      Validate a sales order
// @Description  Resolve an order number to its open-order snapshot in SAP
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body ValidateSalesOrderRequest true "Order lookup request"
// @Success      200 {object} dto.Response{data=invoicing.OrderDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/validate-order [post]
func (h *InvoiceHandler) ValidateSalesOrder(c *gin.Context) {
	var req ValidateSalesOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.invoiceService.ValidateSalesOrder(c.Request.Context(), invoicing.ValidateSalesOrderInput{
		OrderNumber: req.OrderNumber,
		Series:      req.Series,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// Create godoc
// @Summary      Create an invoice draft
// @Description  Draft an AR invoice against an open sales order. Lines are
// @Description  copied from the order's open rows.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body CreateInvoiceRequest true "Invoice creation request"
// @Success      201 {object} dto.Response{data=invoicing.InvoiceDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	doc, err := h.invoiceService.Create(c.Request.Context(), actor, invoicing.CreateInvoiceInput{
		OrderNumber: req.OrderNumber,
		Series:      req.Series,
		Comments:    req.Comments,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, doc)
}

// GetByID godoc
// @Summary      Get an invoice
// @Description  Retrieve an invoice with its lines and scanned serials
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} dto.Response{data=invoicing.InvoiceDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
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

	doc, err := h.invoiceService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// List godoc
// @Summary      List invoices
// @Description  Get a paginated list of invoices visible to the caller
// @Tags         invoices
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        order_by query string false "Sort by field" Enums(document_number, status, created_at, updated_at)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Param        search query string false "Search by document number, order or customer"
// @Param        status query string false "Filter by status" Enums(draft, validated, posting, posted, failed)
// @Success      200 {object} dto.Response{data=[]invoicing.InvoiceListItemDTO,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
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

	items, total, err := h.invoiceService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// ListByOrder godoc
// @Summary      List invoices for a sales order
// @Description  Get all invoices drafted against one sales order
// @Tags         invoices
// @Produce      json
// @Param        soEntry path int true "Sales order DocEntry"
// @Success      200 {object} dto.Response{data=[]invoicing.InvoiceListItemDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/order/{soEntry} [get]
func (h *InvoiceHandler) ListByOrder(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	soEntry, err := strconv.Atoi(c.Param("soEntry"))
	if err != nil || soEntry <= 0 {
		h.BadRequest(c, "Invalid order entry")
		return
	}

	items, err := h.invoiceService.ListByOrder(c.Request.Context(), actor, soEntry)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, items)
}

// UpdateHeader godoc
// @Summary      Update an invoice header
// @Description  Update the mutable header fields of a draft invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body UpdateInvoiceRequest true "Header update request"
// @Success      200 {object} dto.Response{data=invoicing.InvoiceDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id} [put]
func (h *InvoiceHandler) UpdateHeader(c *gin.Context) {
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

	var req UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	doc, err := h.invoiceService.UpdateHeader(c.Request.Context(), actor, id, invoicing.UpdateInvoiceInput{
		Comments: req.Comments,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// Delete godoc
// @Summary      Delete an invoice draft
// @Description  Delete an invoice that has not been queued for posting
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
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

	if err := h.invoiceService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, MessageData{Message: "Invoice deleted successfully"})
}

// AddSerial godoc
// @Summary      Scan a serial onto an invoice
// @Description  Record one scanned serial against an invoice line
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body AddInvoiceSerialRequest true "Serial scan request"
// @Success      200 {object} dto.Response{data=invoicing.InvoiceDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id}/serials [post]
func (h *InvoiceHandler) AddSerial(c *gin.Context) {
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

	var req AddInvoiceSerialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := invoicing.AddSerialInput{
		ItemCode:     req.ItemCode,
		SerialNumber: req.SerialNumber,
	}
	if req.LineID != "" {
		lineID, err := uuid.Parse(req.LineID)
		if err != nil {
			h.BadRequest(c, "Invalid line ID")
			return
		}
		input.LineID = lineID
	}

	doc, err := h.invoiceService.AddSerial(c.Request.Context(), actor, id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// RemoveSerial godoc
// @Summary      Remove a scanned serial
// @Description  Remove a serial number from an invoice line
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        lineId path string true "Line ID" format(uuid)
// @Param        serial path string true "Serial number"
// @Success      200 {object} dto.Response{data=invoicing.InvoiceDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id}/lines/{lineId}/serials/{serial} [delete]
func (h *InvoiceHandler) RemoveSerial(c *gin.Context) {
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

	doc, err := h.invoiceService.RemoveSerial(c.Request.Context(), actor, id, lineID, serial)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// SetValidatedQuantity godoc
// @Summary      Record a validated quantity
// @Description  Set the checked quantity on a non-serial invoice line
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body ValidateQuantityRequest true "Validated quantity"
// @Success      200 {object} dto.Response{data=invoicing.InvoiceDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id}/quantities [put]
func (h *InvoiceHandler) SetValidatedQuantity(c *gin.Context) {
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

	var req ValidateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lineID, err := uuid.Parse(req.LineID)
	if err != nil {
		h.BadRequest(c, "Invalid line ID")
		return
	}

	doc, err := h.invoiceService.SetValidatedQuantity(c.Request.Context(), actor, id, invoicing.ValidateQuantityInput{
		LineID:   lineID,
		Quantity: toDecimal(req.Quantity),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// Validate godoc
// @Summary      Validate an invoice
// @Description  Mark an invoice as checked once every line is fully scanned
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} dto.Response{data=invoicing.InvoiceDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id}/validate [post]
func (h *InvoiceHandler) Validate(c *gin.Context) {
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

	doc, err := h.invoiceService.Validate(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// Post godoc
// @Summary      Post an invoice to SAP
// @Description  Queue a validated invoice for posting as a final AR invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      202 {object} dto.Response{data=posting.JobDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id}/post [post]
func (h *InvoiceHandler) Post(c *gin.Context) {
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

	job, err := h.invoiceService.Post(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Accepted(c, job)
}

// PostAsDraft godoc
// @Summary      Post an invoice to SAP as a draft
// @Description  Queue a validated invoice for posting as an SAP draft document
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      202 {object} dto.Response{data=posting.JobDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id}/post-draft [post]
func (h *InvoiceHandler) PostAsDraft(c *gin.Context) {
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

	job, err := h.invoiceService.PostAsDraft(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Accepted(c, job)
}

// RetryPosting godoc
// @Summary      Reset a failed invoice
// @Description  Return a failed invoice to the validated state so posting can
// @Description  be attempted again
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} dto.Response{data=invoicing.InvoiceDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id}/retry [post]
func (h *InvoiceHandler) RetryPosting(c *gin.Context) {
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

	doc, err := h.invoiceService.RetryPosting(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}
