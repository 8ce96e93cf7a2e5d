// Package warehouse provides application services for warehouse master data.
package warehouse

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/warehouse"
)

// Service handles warehouse master data operations
type Service struct {
	repo   warehouse.Repository
	logger *zap.Logger
}

// NewService creates a new warehouse service
func NewService(repo warehouse.Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// CreateInput contains input for creating a warehouse
type CreateInput struct {
	Code            string
	Name            string
	BusinessPlaceID int
}

// UpdateInput contains input for updating a warehouse
type UpdateInput struct {
	ID              uuid.UUID
	Name            string
	BusinessPlaceID int
}

// WarehouseDTO represents warehouse data transfer object
type WarehouseDTO struct {
	ID              uuid.UUID `json:"id"`
	Code            string    `json:"code"`
	Name            string    `json:"name"`
	BusinessPlaceID int       `json:"business_place_id"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ListResult represents paginated warehouse list result
type ListResult struct {
	Warehouses []WarehouseDTO `json:"warehouses"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
}

// Create registers a new warehouse
func (s *Service) Create(ctx context.Context, input CreateInput) (*WarehouseDTO, error) {
	exists, err := s.repo.ExistsByCode(ctx, input.Code)
	if err != nil {
		s.logger.Error("Failed to check warehouse code", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check warehouse code availability")
	}
	if exists {
		return nil, shared.NewDomainError("WAREHOUSE_EXISTS", "Warehouse code already exists")
	}

	wh, err := warehouse.NewWarehouse(input.Code, input.Name, input.BusinessPlaceID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, wh); err != nil {
		s.logger.Error("Failed to create warehouse", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create warehouse")
	}

	s.logger.Info("Warehouse created",
		zap.String("code", wh.Code),
		zap.Int("business_place_id", wh.BusinessPlaceID))

	return toDTO(wh), nil
}

// GetByID retrieves a warehouse by ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*WarehouseDTO, error) {
	wh, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("WAREHOUSE_NOT_FOUND", "Warehouse not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find warehouse")
	}
	return toDTO(wh), nil
}

// GetByCode retrieves a warehouse by its SAP code
func (s *Service) GetByCode(ctx context.Context, code string) (*WarehouseDTO, error) {
	wh, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("WAREHOUSE_NOT_FOUND", "Warehouse not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find warehouse")
	}
	return toDTO(wh), nil
}

// List retrieves warehouses matching the filter
func (s *Service) List(ctx context.Context, filter shared.Filter) (*ListResult, error) {
	warehouses, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list warehouses", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list warehouses")
	}

	dtos := make([]WarehouseDTO, len(warehouses))
	for i := range warehouses {
		dtos[i] = *toDTO(&warehouses[i])
	}

	return &ListResult{
		Warehouses: dtos,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	}, nil
}

// Update changes a warehouse's name and business place
func (s *Service) Update(ctx context.Context, input UpdateInput) (*WarehouseDTO, error) {
	wh, err := s.repo.FindByID(ctx, input.ID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("WAREHOUSE_NOT_FOUND", "Warehouse not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find warehouse")
	}

	if err := wh.Update(input.Name, input.BusinessPlaceID); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, wh); err != nil {
		s.logger.Error("Failed to update warehouse", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update warehouse")
	}

	s.logger.Info("Warehouse updated", zap.String("code", wh.Code))

	return toDTO(wh), nil
}

// SetActive toggles whether the warehouse accepts new documents
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*WarehouseDTO, error) {
	wh, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("WAREHOUSE_NOT_FOUND", "Warehouse not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find warehouse")
	}

	if active {
		wh.Activate()
	} else {
		wh.Deactivate()
	}

	if err := s.repo.Save(ctx, wh); err != nil {
		s.logger.Error("Failed to update warehouse", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update warehouse")
	}

	return toDTO(wh), nil
}

// Delete removes a warehouse
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == shared.ErrNotFound {
			return shared.NewDomainError("WAREHOUSE_NOT_FOUND", "Warehouse not found")
		}
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to find warehouse")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete warehouse", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete warehouse")
	}

	s.logger.Info("Warehouse deleted", zap.String("id", id.String()))

	return nil
}

// ResolveBusinessPlace returns the BPLID stamped on documents posted from the
// given warehouse
func (s *Service) ResolveBusinessPlace(ctx context.Context, code string) (int, error) {
	wh, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if err == shared.ErrNotFound {
			return 0, shared.NewDomainError("WAREHOUSE_NOT_FOUND", "Warehouse not found")
		}
		return 0, shared.NewDomainError("INTERNAL_ERROR", "Failed to find warehouse")
	}
	if !wh.Active {
		return 0, shared.NewDomainError("WAREHOUSE_INACTIVE", "Warehouse is not active")
	}
	return wh.BusinessPlaceID, nil
}

// toDTO converts domain Warehouse to WarehouseDTO
func toDTO(wh *warehouse.Warehouse) *WarehouseDTO {
	return &WarehouseDTO{
		ID:              wh.ID,
		Code:            wh.Code,
		Name:            wh.Name,
		BusinessPlaceID: wh.BusinessPlaceID,
		Active:          wh.Active,
		CreatedAt:       wh.CreatedAt,
		UpdatedAt:       wh.UpdatedAt,
	}
}
