package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/receiving"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
)

// GormGRPOAttachmentRepository implements receiving.AttachmentRepository using GORM
type GormGRPOAttachmentRepository struct {
	db *gorm.DB
}

// NewGormGRPOAttachmentRepository creates a new GormGRPOAttachmentRepository
func NewGormGRPOAttachmentRepository(db *gorm.DB) *GormGRPOAttachmentRepository {
	return &GormGRPOAttachmentRepository{db: db}
}

// Save persists an attachment record
func (r *GormGRPOAttachmentRepository) Save(ctx context.Context, attachment *receiving.Attachment) error {
	model := models.GRPOAttachmentModelFromDomain(attachment)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID retrieves an attachment by ID
func (r *GormGRPOAttachmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*receiving.Attachment, error) {
	var model models.GRPOAttachmentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByGRPO lists attachments for a receipt, oldest first
func (r *GormGRPOAttachmentRepository) FindByGRPO(ctx context.Context, grpoID uuid.UUID) ([]receiving.Attachment, error) {
	var attachmentModels []models.GRPOAttachmentModel
	err := r.db.WithContext(ctx).
		Where("grpo_id = ?", grpoID).
		Order("created_at ASC").
		Find(&attachmentModels).Error
	if err != nil {
		return nil, err
	}

	attachments := make([]receiving.Attachment, len(attachmentModels))
	for i, model := range attachmentModels {
		attachments[i] = *model.ToDomain()
	}
	return attachments, nil
}

// Delete removes an attachment record
func (r *GormGRPOAttachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.GRPOAttachmentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormGRPOAttachmentRepository implements AttachmentRepository
var _ receiving.AttachmentRepository = (*GormGRPOAttachmentRepository)(nil)
