package handler

// WarehouseResponse represents a warehouse in API responses
// @Description Warehouse details returned by the API
// @Name HandlerWarehouseResponse
type WarehouseResponse struct {
	ID              string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Code            string `json:"code" example:"WH01"`
	Name            string `json:"name" example:"Main Warehouse"`
	BusinessPlaceID int    `json:"business_place_id" example:"3"`
	Active          bool   `json:"active" example:"true"`
	CreatedAt       string `json:"created_at" example:"2026-01-24T12:00:00Z"`
	UpdatedAt       string `json:"updated_at" example:"2026-01-24T12:00:00Z"`
}

// WarehouseListData represents a paginated warehouse list
// @Description Paginated warehouse list
// @Name HandlerWarehouseListData
type WarehouseListData struct {
	Warehouses []WarehouseResponse `json:"warehouses"`
	Total      int64               `json:"total" example:"4"`
	Page       int                 `json:"page" example:"1"`
	PageSize   int                 `json:"page_size" example:"20"`
}
