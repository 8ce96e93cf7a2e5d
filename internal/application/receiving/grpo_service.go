// Package receiving provides application services for goods receipts
// against purchase orders.
package receiving

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/application/posting"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/numbering"
	"github.com/wms/backend/internal/domain/receiving"
	"github.com/wms/backend/internal/domain/sap"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/warehouse"
)

// GRPOService handles goods receipt use cases
type GRPOService struct {
	repo         receiving.GRPORepository
	warehouses   warehouse.Repository
	serviceLayer sap.ServiceLayer
	scope        posting.TransactionScope
	eventBus     shared.EventBus
	logger       *zap.Logger
}

// NewGRPOService creates a new GRPOService
func NewGRPOService(
	repo receiving.GRPORepository,
	warehouses warehouse.Repository,
	serviceLayer sap.ServiceLayer,
	scope posting.TransactionScope,
	eventBus shared.EventBus,
	logger *zap.Logger,
) *GRPOService {
	return &GRPOService{
		repo:         repo,
		warehouses:   warehouses,
		serviceLayer: serviceLayer,
		scope:        scope,
		eventBus:     eventBus,
		logger:       logger,
	}
}

// Create drafts a goods receipt, allocating its document number from the
// GRPO series inside the creating transaction
func (s *GRPOService) Create(ctx context.Context, actor identity.Actor, input CreateGRPOInput) (*GRPODTO, error) {
	wh, err := s.warehouses.FindByCode(ctx, input.WarehouseCode)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("WAREHOUSE_NOT_FOUND", "Warehouse not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to resolve warehouse")
	}
	if !wh.Active {
		return nil, shared.NewDomainError("WAREHOUSE_INACTIVE", "Warehouse is not active")
	}

	var doc *receiving.GRPODocument
	err = s.scope.Execute(ctx, func(repos posting.Repositories) error {
		number, err := repos.Series().Next(ctx, numbering.SeriesGoodsReceipt)
		if err != nil {
			return err
		}
		doc, err = receiving.NewGRPODocument(number, input.PONumber, input.POEntry,
			input.CardCode, input.CardName, wh.Code, actor.ID, actor.Name)
		if err != nil {
			return err
		}
		doc.Remarks = input.Remarks
		return repos.GoodsReceipts().Save(ctx, doc)
	})
	if err != nil {
		return nil, s.wrapError(err, "Failed to create goods receipt")
	}

	s.publishEvents(ctx, doc)

	s.logger.Info("Goods receipt created",
		zap.String("document_number", doc.DocumentNumber),
		zap.String("po_number", doc.PONumber),
		zap.String("created_by", actor.ID.String()))

	return toGRPODTO(doc), nil
}

// GetByID retrieves a receipt, enforcing creator visibility
func (s *GRPOService) GetByID(ctx context.Context, actor identity.Actor, id uuid.UUID) (*GRPODTO, error) {
	doc, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return toGRPODTO(doc), nil
}

// GetByNumber retrieves a receipt by document number
func (s *GRPOService) GetByNumber(ctx context.Context, actor identity.Actor, number string) (*GRPODTO, error) {
	doc, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("DOCUMENT_NOT_FOUND", "Goods receipt not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find goods receipt")
	}
	if !actor.CanSee(doc.CreatedBy, doc.Status.String()) {
		return nil, shared.ErrForbidden
	}
	return toGRPODTO(doc), nil
}

// List retrieves receipts matching the filter. Plain users only see their
// own receipts; QC reviewers additionally see submitted ones.
func (s *GRPOService) List(ctx context.Context, actor identity.Actor, filter shared.Filter) ([]GRPOListItemDTO, int64, error) {
	actor.ScopeFilter(&filter)

	docs, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list goods receipts", zap.Error(err))
		return nil, 0, shared.NewDomainError("INTERNAL_ERROR", "Failed to list goods receipts")
	}

	dtos := make([]GRPOListItemDTO, len(docs))
	for i := range docs {
		dtos[i] = toGRPOListItemDTO(&docs[i])
	}
	return dtos, total, nil
}

// UpdateHeader changes the mutable header fields of a draft
func (s *GRPOService) UpdateHeader(ctx context.Context, actor identity.Actor, id uuid.UUID, input UpdateGRPOInput) (*GRPODTO, error) {
	doc, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := doc.UpdateHeader(input.CardName, input.Remarks); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, doc); err != nil {
		return nil, s.wrapError(err, "Failed to update goods receipt")
	}
	return toGRPODTO(doc), nil
}

// Delete removes a draft receipt
func (s *GRPOService) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	doc, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return err
	}
	if !doc.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATUS", "Can only delete draft receipts")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.wrapError(err, "Failed to delete goods receipt")
	}

	s.logger.Info("Goods receipt deleted", zap.String("document_number", doc.DocumentNumber))
	return nil
}

// AddItem adds a line to a draft receipt
func (s *GRPOService) AddItem(ctx context.Context, actor identity.Actor, id uuid.UUID, input AddItemInput) (*GRPODTO, error) {
	doc, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if _, err := doc.AddItem(input.ItemCode, input.ItemDescription, input.UnitOfMeasure,
		input.POLineNumber, input.OrderedQuantity, input.ReceivedQuantity,
		input.BinLocation, input.SerialManaged, input.BatchManaged, input.BatchNumber); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, doc); err != nil {
		return nil, s.wrapError(err, "Failed to save goods receipt")
	}
	return toGRPODTO(doc), nil
}

// UpdateItemQuantity changes the received quantity on a draft line
func (s *GRPOService) UpdateItemQuantity(ctx context.Context, actor identity.Actor, id, itemID uuid.UUID, quantity decimal.Decimal) (*GRPODTO, error) {
	doc, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := doc.UpdateItemQuantity(itemID, quantity); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, doc); err != nil {
		return nil, s.wrapError(err, "Failed to save goods receipt")
	}
	return toGRPODTO(doc), nil
}

// RemoveItem removes a line from a draft receipt
func (s *GRPOService) RemoveItem(ctx context.Context, actor identity.Actor, id, itemID uuid.UUID) (*GRPODTO, error) {
	doc, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := doc.RemoveItem(itemID); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, doc); err != nil {
		return nil, s.wrapError(err, "Failed to save goods receipt")
	}
	return toGRPODTO(doc), nil
}

// AddItemSerial validates a serial against SAP stock and records it on a
// serial-managed line. In offline mode validation is skipped with a warning.
func (s *GRPOService) AddItemSerial(ctx context.Context, actor identity.Actor, id uuid.UUID, input AddSerialInput) (*GRPODTO, error) {
	doc, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	item := doc.FindItem(input.ItemID)
	if item == nil {
		return nil, shared.NewDomainError("ITEM_NOT_FOUND", "Item not found on this receipt")
	}

	if s.serviceLayer.Offline() {
		s.logger.Warn("Offline mode: serial recorded without SAP validation",
			zap.String("serial", input.SerialNumber),
			zap.String("item_code", item.ItemCode))
	} else {
		// A GRPO receives new stock, so the serial must NOT already exist
		// in the destination warehouse.
		_, err := s.serviceLayer.ValidateSerial(ctx, doc.WarehouseCode, item.ItemCode, input.SerialNumber)
		if err == nil {
			return nil, shared.NewDomainError("SERIAL_EXISTS", "Serial number already exists in warehouse stock")
		}
		if !errors.Is(err, sap.ErrSerialNotFound) {
			s.logger.Error("Serial validation failed", zap.Error(err))
			return nil, shared.ErrExternalService
		}
	}

	if err := doc.AddItemSerial(input.ItemID, input.SerialNumber, input.ManufacturerSerial); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, doc); err != nil {
		return nil, s.wrapError(err, "Failed to save goods receipt")
	}
	return toGRPODTO(doc), nil
}

// RemoveItemSerial removes a recorded serial from a draft line
func (s *GRPOService) RemoveItemSerial(ctx context.Context, actor identity.Actor, id, itemID uuid.UUID, serial string) (*GRPODTO, error) {
	doc, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := doc.RemoveItemSerial(itemID, serial); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, doc); err != nil {
		return nil, s.wrapError(err, "Failed to save goods receipt")
	}
	return toGRPODTO(doc), nil
}

// Submit moves a draft into QC review
func (s *GRPOService) Submit(ctx context.Context, actor identity.Actor, id uuid.UUID) (*GRPODTO, error) {
	doc, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := doc.Submit(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, doc); err != nil {
		return nil, s.wrapError(err, "Failed to submit goods receipt")
	}

	s.publishEvents(ctx, doc)

	s.logger.Info("Goods receipt submitted", zap.String("document_number", doc.DocumentNumber))
	return toGRPODTO(doc), nil
}

// Approve records QC approval. The document row is locked so two
// concurrent approvals serialize; the second sees the advanced status.
func (s *GRPOService) Approve(ctx context.Context, actor identity.Actor, id uuid.UUID, input ReviewInput) (*GRPODTO, error) {
	return s.review(ctx, actor, id, func(doc *receiving.GRPODocument) error {
		if doc.Status == shared.DocumentStatusQCApproved {
			return shared.NewDomainError("ALREADY_APPROVED", "Goods receipt is already approved")
		}
		return doc.Approve(actor.ID, actor.Name, input.Notes)
	})
}

// Reject records QC rejection; a reason is required
func (s *GRPOService) Reject(ctx context.Context, actor identity.Actor, id uuid.UUID, input ReviewInput) (*GRPODTO, error) {
	return s.review(ctx, actor, id, func(doc *receiving.GRPODocument) error {
		return doc.Reject(actor.ID, actor.Name, input.Notes)
	})
}

// Reopen returns a rejected receipt to draft for correction
func (s *GRPOService) Reopen(ctx context.Context, actor identity.Actor, id uuid.UUID) (*GRPODTO, error) {
	doc, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := doc.Reopen(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, doc); err != nil {
		return nil, s.wrapError(err, "Failed to reopen goods receipt")
	}

	s.publishEvents(ctx, doc)
	return toGRPODTO(doc), nil
}

// Post enqueues a grpo_post job for an approved receipt. The payload is
// snapshotted at enqueue time; the enqueue runs under the document row
// lock so concurrent posts cannot create duplicate jobs.
func (s *GRPOService) Post(ctx context.Context, actor identity.Actor, id uuid.UUID) (*posting.JobDTO, error) {
	peek, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	businessPlaceID, err := s.resolveBusinessPlace(ctx, peek.WarehouseCode)
	if err != nil {
		return nil, err
	}

	var job *sap.PostingJob
	err = s.scope.Execute(ctx, func(repos posting.Repositories) error {
		doc, err := repos.GoodsReceipts().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := doc.CanPost(); err != nil {
			return err
		}
		if active, err := repos.Jobs().FindActiveByDocument(ctx, doc.ID); err != nil {
			return err
		} else if active != nil {
			return shared.NewDomainError("JOB_ACTIVE", "A posting job is already queued for this document")
		}

		payload, err := json.Marshal(posting.BuildGoodsReceipt(doc, businessPlaceID))
		if err != nil {
			return err
		}
		job, err = sap.NewPostingJob(sap.JobTypeGoodsReceipt, sap.DocumentTypeGoodsReceipt,
			doc.ID, doc.DocumentNumber, payload, actor.ID)
		if err != nil {
			return err
		}
		return repos.Jobs().Save(ctx, job)
	})
	if err != nil {
		return nil, s.wrapError(err, "Failed to enqueue posting job")
	}

	s.logger.Info("Goods receipt queued for SAP posting",
		zap.String("document_number", peek.DocumentNumber),
		zap.String("job_id", job.ID.String()))

	dto := posting.ToJobDTO(job)
	return &dto, nil
}

// load retrieves a receipt and enforces read visibility
func (s *GRPOService) load(ctx context.Context, actor identity.Actor, id uuid.UUID) (*receiving.GRPODocument, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("DOCUMENT_NOT_FOUND", "Goods receipt not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find goods receipt")
	}
	if !actor.CanSee(doc.CreatedBy, doc.Status.String()) {
		return nil, shared.ErrForbidden
	}
	return doc, nil
}

// loadForModify retrieves a receipt and enforces write ownership
func (s *GRPOService) loadForModify(ctx context.Context, actor identity.Actor, id uuid.UUID) (*receiving.GRPODocument, error) {
	doc, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(doc.CreatedBy) {
		return nil, shared.ErrForbidden
	}
	return doc, nil
}

// review runs a QC decision under the document row lock
func (s *GRPOService) review(ctx context.Context, actor identity.Actor, id uuid.UUID, decide func(*receiving.GRPODocument) error) (*GRPODTO, error) {
	var doc *receiving.GRPODocument
	err := s.scope.Execute(ctx, func(repos posting.Repositories) error {
		var err error
		doc, err = repos.GoodsReceipts().FindByIDForUpdate(ctx, id)
		if err != nil {
			if err == shared.ErrNotFound {
				return shared.NewDomainError("DOCUMENT_NOT_FOUND", "Goods receipt not found")
			}
			return err
		}
		if !actor.CanReview() {
			return shared.ErrForbidden
		}
		if err := decide(doc); err != nil {
			return err
		}
		return repos.GoodsReceipts().Save(ctx, doc)
	})
	if err != nil {
		return nil, s.wrapError(err, "Failed to review goods receipt")
	}

	s.publishEvents(ctx, doc)

	s.logger.Info("Goods receipt reviewed",
		zap.String("document_number", doc.DocumentNumber),
		zap.String("status", doc.Status.String()),
		zap.String("reviewer", actor.Name))

	return toGRPODTO(doc), nil
}

func (s *GRPOService) resolveBusinessPlace(ctx context.Context, warehouseCode string) (int, error) {
	wh, err := s.warehouses.FindByCode(ctx, warehouseCode)
	if err != nil {
		if err == shared.ErrNotFound {
			return 0, shared.NewDomainError("WAREHOUSE_NOT_FOUND", "Warehouse not found")
		}
		return 0, shared.NewDomainError("INTERNAL_ERROR", "Failed to resolve warehouse")
	}
	return wh.BusinessPlaceID, nil
}

// wrapError passes domain errors through and hides infrastructure errors
func (s *GRPOService) wrapError(err error, message string) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	s.logger.Error(message, zap.Error(err))
	return shared.NewDomainError("INTERNAL_ERROR", message)
}

func (s *GRPOService) publishEvents(ctx context.Context, doc *receiving.GRPODocument) {
	if s.eventBus == nil {
		return
	}
	for _, event := range doc.GetDomainEvents() {
		_ = s.eventBus.Publish(ctx, event)
	}
	doc.ClearDomainEvents()
}
