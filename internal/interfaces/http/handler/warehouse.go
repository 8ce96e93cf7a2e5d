package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wms/backend/internal/application/warehouse"
)

// WarehouseHandler handles warehouse-related API endpoints
type WarehouseHandler struct {
	BaseHandler
	warehouseService *warehouse.Service
}

// NewWarehouseHandler creates a new WarehouseHandler
func NewWarehouseHandler(warehouseService *warehouse.Service) *WarehouseHandler {
	return &WarehouseHandler{
		warehouseService: warehouseService,
	}
}

// CreateWarehouseRequest represents a request to create a new warehouse
// @Description Request body for creating a new warehouse
// @Name HandlerCreateWarehouseRequest
type CreateWarehouseRequest struct {
	Code            string `json:"code" binding:"required,min=1,max=8" example:"WH01"`
	Name            string `json:"name" binding:"required,min=1,max=100" example:"Main Warehouse"`
	BusinessPlaceID int    `json:"business_place_id" binding:"min=0" example:"3"`
}

// UpdateWarehouseRequest represents a request to update a warehouse
// @Description Request body for updating a warehouse
// @Name HandlerUpdateWarehouseRequest
type UpdateWarehouseRequest struct {
	Name            string `json:"name" binding:"required,min=1,max=100" example:"Main Distribution Center"`
	BusinessPlaceID int    `json:"business_place_id" binding:"min=0" example:"3"`
}

// SetWarehouseActiveRequest represents a request to toggle a warehouse's active flag
// @Description Request body for enabling or disabling a warehouse
// @Name HandlerSetWarehouseActiveRequest
type SetWarehouseActiveRequest struct {
	Active *bool `json:"active" binding:"required" example:"false"`
}

// Create godoc
// @ID           createWarehouse
// @Summary      Create a new warehouse
// @Description  Register a warehouse with its SAP business place mapping
// @Tags         warehouses
// @Accept       json
// @Produce      json
// @Param        request body CreateWarehouseRequest true "Warehouse creation request"
// @Success      201 {object} APIResponse[WarehouseResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /warehouses [post]
func (h *WarehouseHandler) Create(c *gin.Context) {
	var req CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	wh, err := h.warehouseService.Create(c.Request.Context(), warehouse.CreateInput{
		Code:            req.Code,
		Name:            req.Name,
		BusinessPlaceID: req.BusinessPlaceID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toWarehouseResponse(wh))
}

// GetByID godoc
// @ID           getWarehouseById
// @Summary      Get a warehouse by ID
// @Description  Retrieve a warehouse by its ID
// @Tags         warehouses
// @Produce      json
// @Param        id path string true "Warehouse ID" format(uuid)
// @Success      200 {object} APIResponse[WarehouseResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /warehouses/{id} [get]
func (h *WarehouseHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}

	wh, err := h.warehouseService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toWarehouseResponse(wh))
}

// GetByCode godoc
// @ID           getWarehouseByCode
// @Summary      Get a warehouse by code
// @Description  Retrieve a warehouse by its SAP warehouse code
// @Tags         warehouses
// @Produce      json
// @Param        code path string true "Warehouse code"
// @Success      200 {object} APIResponse[WarehouseResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /warehouses/code/{code} [get]
func (h *WarehouseHandler) GetByCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Warehouse code is required")
		return
	}

	wh, err := h.warehouseService.GetByCode(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toWarehouseResponse(wh))
}

// List godoc
// @ID           listWarehouses
// @Summary      List warehouses
// @Description  Get a paginated list of warehouses
// @Tags         warehouses
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        order_by query string false "Sort by field" Enums(code, name, created_at)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Param        search query string false "Search keyword"
// @Success      200 {object} APIResponse[WarehouseListData]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /warehouses [get]
func (h *WarehouseHandler) List(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.warehouseService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	data := WarehouseListData{
		Warehouses: make([]WarehouseResponse, len(result.Warehouses)),
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
	}
	for i := range result.Warehouses {
		data.Warehouses[i] = *toWarehouseResponse(&result.Warehouses[i])
	}

	h.Success(c, data)
}

// Update godoc
// @ID           updateWarehouse
// @Summary      Update a warehouse
// @Description  Update a warehouse's name and business place mapping
// @Tags         warehouses
// @Accept       json
// @Produce      json
// @Param        id path string true "Warehouse ID" format(uuid)
// @Param        request body UpdateWarehouseRequest true "Warehouse update request"
// @Success      200 {object} APIResponse[WarehouseResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /warehouses/{id} [put]
func (h *WarehouseHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}

	var req UpdateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	wh, err := h.warehouseService.Update(c.Request.Context(), warehouse.UpdateInput{
		ID:              id,
		Name:            req.Name,
		BusinessPlaceID: req.BusinessPlaceID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toWarehouseResponse(wh))
}

// SetActive godoc
// @ID           setWarehouseActive
// @Summary      Enable or disable a warehouse
// @Description  Toggle a warehouse's active flag
// @Tags         warehouses
// @Accept       json
// @Produce      json
// @Param        id path string true "Warehouse ID" format(uuid)
// @Param        request body SetWarehouseActiveRequest true "Active flag"
// @Success      200 {object} APIResponse[WarehouseResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /warehouses/{id}/active [put]
func (h *WarehouseHandler) SetActive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}

	var req SetWarehouseActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	wh, err := h.warehouseService.SetActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toWarehouseResponse(wh))
}

// Delete godoc
// @ID           deleteWarehouse
// @Summary      Delete a warehouse
// @Description  Delete a warehouse that has no documents
// @Tags         warehouses
// @Produce      json
// @Param        id path string true "Warehouse ID" format(uuid)
// @Success      200 {object} SuccessResponse
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /warehouses/{id} [delete]
func (h *WarehouseHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}

	if err := h.warehouseService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, MessageData{Message: "Warehouse deleted successfully"})
}

func toWarehouseResponse(wh *warehouse.WarehouseDTO) *WarehouseResponse {
	return &WarehouseResponse{
		ID:              wh.ID.String(),
		Code:            wh.Code,
		Name:            wh.Name,
		BusinessPlaceID: wh.BusinessPlaceID,
		Active:          wh.Active,
		CreatedAt:       wh.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       wh.UpdatedAt.Format(time.RFC3339),
	}
}
