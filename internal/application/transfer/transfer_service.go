// Package transfer provides application services for serial item transfers
// between warehouses.
package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/application/posting"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/numbering"
	"github.com/wms/backend/internal/domain/sap"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/transfer"
	"github.com/wms/backend/internal/domain/warehouse"
)

// Service handles serial item transfer use cases
type Service struct {
	repo         transfer.Repository
	warehouses   warehouse.Repository
	serviceLayer sap.ServiceLayer
	scope        posting.TransactionScope
	eventBus     shared.EventBus
	logger       *zap.Logger
}

// NewService creates a new transfer Service
func NewService(
	repo transfer.Repository,
	warehouses warehouse.Repository,
	serviceLayer sap.ServiceLayer,
	scope posting.TransactionScope,
	eventBus shared.EventBus,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:         repo,
		warehouses:   warehouses,
		serviceLayer: serviceLayer,
		scope:        scope,
		eventBus:     eventBus,
		logger:       logger,
	}
}

// Create drafts a transfer between two distinct active warehouses
func (s *Service) Create(ctx context.Context, actor identity.Actor, input CreateTransferInput) (*TransferDTO, error) {
	for _, code := range []string{input.FromWarehouse, input.ToWarehouse} {
		wh, err := s.warehouses.FindByCode(ctx, code)
		if err != nil {
			if err == shared.ErrNotFound {
				return nil, shared.NewDomainError("WAREHOUSE_NOT_FOUND", fmt.Sprintf("Warehouse %s not found", code))
			}
			return nil, s.wrapError(err, "Failed to resolve warehouse")
		}
		if !wh.Active {
			return nil, shared.NewDomainError("WAREHOUSE_INACTIVE", fmt.Sprintf("Warehouse %s is not active", code))
		}
	}

	var tr *transfer.SerialItemTransfer
	err := s.scope.Execute(ctx, func(repos posting.Repositories) error {
		number, err := repos.Series().Next(ctx, numbering.SeriesSerialTransfer)
		if err != nil {
			return err
		}
		tr, err = transfer.NewSerialItemTransfer(number, input.FromWarehouse, input.ToWarehouse, actor.ID, actor.Name)
		if err != nil {
			return err
		}
		tr.Remarks = input.Remarks
		return repos.Transfers().Save(ctx, tr)
	})
	if err != nil {
		return nil, s.wrapError(err, "Failed to create transfer")
	}

	s.publishEvents(ctx, tr)

	s.logger.Info("Serial item transfer created",
		zap.String("transfer_number", tr.TransferNumber),
		zap.String("from", tr.FromWarehouse),
		zap.String("to", tr.ToWarehouse))

	return toTransferDTO(tr), nil
}

// GetByID retrieves a transfer, enforcing creator visibility
func (s *Service) GetByID(ctx context.Context, actor identity.Actor, id uuid.UUID) (*TransferDTO, error) {
	tr, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return toTransferDTO(tr), nil
}

// List retrieves transfers matching the filter, scoped to the actor's
// document visibility
func (s *Service) List(ctx context.Context, actor identity.Actor, filter shared.Filter) ([]TransferListItemDTO, int64, error) {
	actor.ScopeFilter(&filter)

	transfers, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list transfers", zap.Error(err))
		return nil, 0, shared.NewDomainError("INTERNAL_ERROR", "Failed to list transfers")
	}

	dtos := make([]TransferListItemDTO, len(transfers))
	for i := range transfers {
		dtos[i] = toTransferListItemDTO(&transfers[i])
	}
	return dtos, total, nil
}

// Delete removes a draft transfer
func (s *Service) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	tr, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return err
	}
	if !tr.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATUS", "Can only delete draft transfers")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.wrapError(err, "Failed to delete transfer")
	}

	s.logger.Info("Transfer deleted", zap.String("transfer_number", tr.TransferNumber))
	return nil
}

// AddSerialItem validates a scanned serial against stock in the source
// warehouse and records it. The serial must belong to the item the user
// selected; invalid serials are never added. In offline mode the serial is
// recorded unvalidated with a warning.
func (s *Service) AddSerialItem(ctx context.Context, actor identity.Actor, id uuid.UUID, input AddSerialItemInput) (*TransferDTO, error) {
	tr, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	itemCode := input.ItemCode
	itemDescription := ""

	if s.serviceLayer.Offline() {
		s.logger.Warn("Offline mode: serial recorded without SAP validation",
			zap.String("serial", input.SerialNumber),
			zap.String("item_code", input.ItemCode))
	} else {
		validation, err := s.serviceLayer.ValidateSerial(ctx, tr.FromWarehouse, input.ItemCode, input.SerialNumber)
		if err != nil {
			if errors.Is(err, sap.ErrSerialNotFound) {
				return nil, shared.NewDomainError("SERIAL_NOT_FOUND",
					fmt.Sprintf("Serial number %s was not found in warehouse %s", input.SerialNumber, tr.FromWarehouse))
			}
			s.logger.Error("Serial validation failed", zap.Error(err))
			return nil, shared.ErrExternalService
		}
		if validation.ItemCode != input.ItemCode {
			return nil, shared.NewDomainError("ITEM_MISMATCH",
				fmt.Sprintf("Serial number %s belongs to item %s, not %s", input.SerialNumber, validation.ItemCode, input.ItemCode))
		}
		itemCode = validation.ItemCode
		itemDescription = validation.ItemName
	}

	if _, err := tr.AddSerialItem(itemCode, itemDescription, input.SerialNumber, transfer.ItemValidationValidated, ""); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, tr); err != nil {
		return nil, s.wrapError(err, "Failed to save transfer")
	}
	return toTransferDTO(tr), nil
}

// AddNonSerialItem records a plain quantity line. The item must not be
// serial managed and the quantity cannot exceed on-hand stock in the source
// warehouse. When SAP cannot be reached the line is accepted with a warning.
func (s *Service) AddNonSerialItem(ctx context.Context, actor identity.Actor, id uuid.UUID, input AddNonSerialItemInput) (*TransferDTO, error) {
	tr, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	description := input.ItemDescription
	if s.serviceLayer.Offline() {
		s.logger.Warn("Offline mode: quantity recorded without SAP stock check",
			zap.String("item_code", input.ItemCode))
	} else {
		stock, err := s.serviceLayer.CheckItemStock(ctx, tr.FromWarehouse, input.ItemCode)
		if err != nil {
			if errors.Is(err, sap.ErrItemNotFound) {
				return nil, shared.NewDomainError("ITEM_NOT_FOUND",
					fmt.Sprintf("Item %s was not found in SAP", input.ItemCode))
			}
			// Stock check failures do not block warehouse work
			s.logger.Warn("Stock check failed, accepting quantity unverified",
				zap.String("item_code", input.ItemCode), zap.Error(err))
		} else {
			if stock.SerialManaged {
				return nil, shared.NewDomainError("SERIAL_MANAGED_ITEM",
					fmt.Sprintf("Item %s is serial managed; scan its serial numbers instead", input.ItemCode))
			}
			if input.Quantity.GreaterThan(stock.OnHand) {
				return nil, shared.NewDomainError("INSUFFICIENT_STOCK",
					fmt.Sprintf("Requested quantity %s exceeds on-hand stock %s in %s", input.Quantity, stock.OnHand, tr.FromWarehouse))
			}
		}
	}

	if _, err := tr.AddNonSerialItem(input.ItemCode, description, input.Quantity, transfer.ItemValidationValidated, ""); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, tr); err != nil {
		return nil, s.wrapError(err, "Failed to save transfer")
	}
	return toTransferDTO(tr), nil
}

// RemoveItem removes a line from a draft transfer
func (s *Service) RemoveItem(ctx context.Context, actor identity.Actor, id, itemID uuid.UUID) (*TransferDTO, error) {
	tr, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := tr.RemoveItem(itemID); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, tr); err != nil {
		return nil, s.wrapError(err, "Failed to save transfer")
	}
	return toTransferDTO(tr), nil
}

// Submit moves a draft into QC review
func (s *Service) Submit(ctx context.Context, actor identity.Actor, id uuid.UUID) (*TransferDTO, error) {
	tr, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := tr.Submit(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, tr); err != nil {
		return nil, s.wrapError(err, "Failed to submit transfer")
	}

	s.publishEvents(ctx, tr)

	s.logger.Info("Transfer submitted", zap.String("transfer_number", tr.TransferNumber))
	return toTransferDTO(tr), nil
}

// Approve records QC approval under the document row lock
func (s *Service) Approve(ctx context.Context, actor identity.Actor, id uuid.UUID, input ReviewInput) (*TransferDTO, error) {
	return s.review(ctx, actor, id, func(tr *transfer.SerialItemTransfer) error {
		if tr.Status == shared.DocumentStatusQCApproved {
			return shared.NewDomainError("ALREADY_APPROVED", "Transfer is already approved")
		}
		return tr.Approve(actor.ID, actor.Name, input.Notes)
	})
}

// Reject records QC rejection; a reason is required
func (s *Service) Reject(ctx context.Context, actor identity.Actor, id uuid.UUID, input ReviewInput) (*TransferDTO, error) {
	return s.review(ctx, actor, id, func(tr *transfer.SerialItemTransfer) error {
		return tr.Reject(actor.ID, actor.Name, input.Notes)
	})
}

// Reopen returns a rejected transfer to draft for correction
func (s *Service) Reopen(ctx context.Context, actor identity.Actor, id uuid.UUID) (*TransferDTO, error) {
	tr, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := tr.Reopen(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, tr); err != nil {
		return nil, s.wrapError(err, "Failed to reopen transfer")
	}

	s.publishEvents(ctx, tr)
	return toTransferDTO(tr), nil
}

// Post enqueues a serial_transfer job for an approved transfer. System
// serial numbers are resolved before the enqueue transaction so the payload
// snapshot is complete at enqueue time.
func (s *Service) Post(ctx context.Context, actor identity.Actor, id uuid.UUID) (*posting.JobDTO, error) {
	peek, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := peek.CanPost(); err != nil {
		return nil, err
	}

	toWarehouse, err := s.warehouses.FindByCode(ctx, peek.ToWarehouse)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("WAREHOUSE_NOT_FOUND", "Destination warehouse not found")
		}
		return nil, s.wrapError(err, "Failed to resolve warehouse")
	}

	systemNumbers, err := s.resolveSystemNumbers(ctx, peek)
	if err != nil {
		return nil, err
	}

	var job *sap.PostingJob
	err = s.scope.Execute(ctx, func(repos posting.Repositories) error {
		tr, err := repos.Transfers().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := tr.CanPost(); err != nil {
			return err
		}
		if active, err := repos.Jobs().FindActiveByDocument(ctx, tr.ID); err != nil {
			return err
		} else if active != nil {
			return shared.NewDomainError("JOB_ACTIVE", "A posting job is already queued for this transfer")
		}

		payload, err := json.Marshal(posting.BuildStockTransfer(tr, toWarehouse.BusinessPlaceID, systemNumbers))
		if err != nil {
			return err
		}
		job, err = sap.NewPostingJob(sap.JobTypeSerialTransfer, sap.DocumentTypeSerialTransfer,
			tr.ID, tr.TransferNumber, payload, actor.ID)
		if err != nil {
			return err
		}
		return repos.Jobs().Save(ctx, job)
	})
	if err != nil {
		return nil, s.wrapError(err, "Failed to enqueue posting job")
	}

	s.logger.Info("Transfer queued for SAP posting",
		zap.String("transfer_number", peek.TransferNumber),
		zap.String("job_id", job.ID.String()))

	dto := posting.ToJobDTO(job)
	return &dto, nil
}

// CleanupEmptyDrafts removes abandoned drafts with no items older than the
// given age. Returns the number of transfers removed.
func (s *Service) CleanupEmptyDrafts(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge)
	removed, err := s.repo.DeleteEmptyDraftsOlderThan(ctx, cutoff)
	if err != nil {
		return 0, s.wrapError(err, "Failed to clean up empty drafts")
	}
	if removed > 0 {
		s.logger.Info("Removed empty draft transfers", zap.Int64("count", removed))
	}
	return removed, nil
}

// resolveSystemNumbers looks up the SAP system number for every serial on
// the transfer. Offline mode leaves them at zero.
func (s *Service) resolveSystemNumbers(ctx context.Context, tr *transfer.SerialItemTransfer) (map[string]int, error) {
	systemNumbers := make(map[string]int)
	if s.serviceLayer.Offline() {
		return systemNumbers, nil
	}
	for _, item := range tr.Items {
		if !item.SerialManaged {
			continue
		}
		systemNumber, err := s.serviceLayer.GetSerialSystemNumber(ctx, item.ItemCode, item.SerialNumber)
		if err != nil {
			s.logger.Error("Failed to resolve system serial number",
				zap.String("serial", item.SerialNumber), zap.Error(err))
			return nil, shared.ErrExternalService
		}
		systemNumbers[item.SerialNumber] = systemNumber
	}
	return systemNumbers, nil
}

func (s *Service) load(ctx context.Context, actor identity.Actor, id uuid.UUID) (*transfer.SerialItemTransfer, error) {
	tr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("DOCUMENT_NOT_FOUND", "Transfer not found")
		}
		return nil, s.wrapError(err, "Failed to find transfer")
	}
	if !actor.CanSee(tr.CreatedBy, tr.Status.String()) {
		return nil, shared.ErrForbidden
	}
	return tr, nil
}

func (s *Service) loadForModify(ctx context.Context, actor identity.Actor, id uuid.UUID) (*transfer.SerialItemTransfer, error) {
	tr, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(tr.CreatedBy) {
		return nil, shared.ErrForbidden
	}
	return tr, nil
}

func (s *Service) review(ctx context.Context, actor identity.Actor, id uuid.UUID, decide func(*transfer.SerialItemTransfer) error) (*TransferDTO, error) {
	var tr *transfer.SerialItemTransfer
	err := s.scope.Execute(ctx, func(repos posting.Repositories) error {
		var err error
		tr, err = repos.Transfers().FindByIDForUpdate(ctx, id)
		if err != nil {
			if err == shared.ErrNotFound {
				return shared.NewDomainError("DOCUMENT_NOT_FOUND", "Transfer not found")
			}
			return err
		}
		if !actor.CanReview() {
			return shared.ErrForbidden
		}
		if err := decide(tr); err != nil {
			return err
		}
		return repos.Transfers().Save(ctx, tr)
	})
	if err != nil {
		return nil, s.wrapError(err, "Failed to review transfer")
	}

	s.publishEvents(ctx, tr)

	s.logger.Info("Transfer reviewed",
		zap.String("transfer_number", tr.TransferNumber),
		zap.String("status", tr.Status.String()),
		zap.String("reviewer", actor.Name))

	return toTransferDTO(tr), nil
}

func (s *Service) wrapError(err error, message string) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	s.logger.Error(message, zap.Error(err))
	return shared.NewDomainError("INTERNAL_ERROR", message)
}

func (s *Service) publishEvents(ctx context.Context, tr *transfer.SerialItemTransfer) {
	if s.eventBus == nil {
		return
	}
	for _, event := range tr.GetDomainEvents() {
		_ = s.eventBus.Publish(ctx, event)
	}
	tr.ClearDomainEvents()
}
