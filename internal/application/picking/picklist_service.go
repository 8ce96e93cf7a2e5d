// Package picking provides application services for pick lists built
// against open SAP sales orders.
package picking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/application/posting"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/numbering"
	"github.com/wms/backend/internal/domain/picking"
	"github.com/wms/backend/internal/domain/sap"
	"github.com/wms/backend/internal/domain/shared"
)

// Service handles pick list use cases
type Service struct {
	repo         picking.Repository
	serviceLayer sap.ServiceLayer
	scope        posting.TransactionScope
	eventBus     shared.EventBus
	logger       *zap.Logger
}

// NewService creates a new picking Service
func NewService(
	repo picking.Repository,
	serviceLayer sap.ServiceLayer,
	scope posting.TransactionScope,
	eventBus shared.EventBus,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:         repo,
		serviceLayer: serviceLayer,
		scope:        scope,
		eventBus:     eventBus,
		logger:       logger,
	}
}

// Create drafts a pick list from an open sales order. The order is loaded
// from SAP and only its open lines are copied. Not available offline: a
// pick list cannot be drafted without the order snapshot.
func (s *Service) Create(ctx context.Context, actor identity.Actor, input CreatePickListInput) (*PickListDTO, error) {
	if s.serviceLayer.Offline() {
		return nil, shared.NewDomainError("SAP_OFFLINE", "Pick lists require a SAP connection to load the sales order")
	}

	order, err := s.serviceLayer.GetSalesOrder(ctx, input.OrderEntry)
	if err != nil {
		switch {
		case errors.Is(err, sap.ErrSalesOrderNotFound):
			return nil, shared.NewDomainError("ORDER_NOT_FOUND", fmt.Sprintf("Sales order %d was not found", input.OrderEntry))
		case errors.Is(err, sap.ErrSalesOrderClosed):
			return nil, shared.NewDomainError("ORDER_NOT_OPEN", "Sales order is not open")
		default:
			s.logger.Error("Failed to load sales order", zap.Int("doc_entry", input.OrderEntry), zap.Error(err))
			return nil, shared.ErrExternalService
		}
	}
	if !order.IsOpen() {
		return nil, shared.NewDomainError("ORDER_NOT_OPEN", "Sales order is not open")
	}

	openLines := make([]sap.SalesOrderLine, 0, len(order.Lines))
	for _, line := range order.Lines {
		if line.IsOpen() && line.OpenQuantity.IsPositive() {
			openLines = append(openLines, line)
		}
	}
	if len(openLines) == 0 {
		return nil, shared.NewDomainError("NO_OPEN_LINES", "Sales order has no open lines left to pick")
	}

	warehouseCode := input.WarehouseCode
	if warehouseCode == "" {
		warehouseCode = openLines[0].WarehouseCode
	}

	var pl *picking.PickList
	err = s.scope.Execute(ctx, func(repos posting.Repositories) error {
		number, err := repos.Series().Next(ctx, numbering.SeriesPickList)
		if err != nil {
			return err
		}
		pl, err = picking.NewPickList(number, order.DocEntry, order.DocNum,
			order.CardCode, order.CardName, warehouseCode, actor.ID, actor.Name)
		if err != nil {
			return err
		}
		pl.Remarks = input.Remarks
		for _, line := range openLines {
			serialManaged, err := s.lineSerialManaged(ctx, line)
			if err != nil {
				return err
			}
			if _, err := pl.AddLine(line.LineNum, line.ItemCode, line.ItemDescription,
				line.OpenQuantity, line.WarehouseCode, serialManaged); err != nil {
				return err
			}
		}
		return repos.PickLists().Save(ctx, pl)
	})
	if err != nil {
		return nil, s.wrapError(err, "Failed to create pick list")
	}

	s.publishEvents(ctx, pl)

	s.logger.Info("Pick list created",
		zap.String("pick_number", pl.PickNumber),
		zap.Int("order_entry", pl.OrderEntry),
		zap.Int("lines", len(pl.Lines)))

	return toPickListDTO(pl), nil
}

// GetByID retrieves a pick list, enforcing creator visibility
func (s *Service) GetByID(ctx context.Context, actor identity.Actor, id uuid.UUID) (*PickListDTO, error) {
	pl, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return toPickListDTO(pl), nil
}

// List retrieves pick lists matching the filter, scoped to the actor's
// document visibility
func (s *Service) List(ctx context.Context, actor identity.Actor, filter shared.Filter) ([]PickListListItemDTO, int64, error) {
	actor.ScopeFilter(&filter)

	lists, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list pick lists", zap.Error(err))
		return nil, 0, shared.NewDomainError("INTERNAL_ERROR", "Failed to list pick lists")
	}

	dtos := make([]PickListListItemDTO, len(lists))
	for i := range lists {
		dtos[i] = toPickListListItemDTO(&lists[i])
	}
	return dtos, total, nil
}

// ListByOrder returns every pick list raised against a sales order
func (s *Service) ListByOrder(ctx context.Context, actor identity.Actor, orderEntry int) ([]PickListListItemDTO, error) {
	lists, err := s.repo.FindByOrderEntry(ctx, orderEntry)
	if err != nil {
		return nil, s.wrapError(err, "Failed to list pick lists for order")
	}

	dtos := make([]PickListListItemDTO, 0, len(lists))
	for i := range lists {
		if !actor.CanSee(lists[i].CreatedBy, lists[i].Status.String()) {
			continue
		}
		dtos = append(dtos, toPickListListItemDTO(&lists[i]))
	}
	return dtos, nil
}

// UpdateHeader changes mutable header fields of a draft
func (s *Service) UpdateHeader(ctx context.Context, actor identity.Actor, id uuid.UUID, input UpdatePickListInput) (*PickListDTO, error) {
	pl, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !pl.Status.IsEditable() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Can only update draft pick lists")
	}
	pl.Remarks = input.Remarks
	pl.IncrementVersion()
	if err := s.repo.Save(ctx, pl); err != nil {
		return nil, s.wrapError(err, "Failed to update pick list")
	}
	return toPickListDTO(pl), nil
}

// Delete removes a draft pick list
func (s *Service) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	pl, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return err
	}
	if !pl.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATUS", "Can only delete draft pick lists")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.wrapError(err, "Failed to delete pick list")
	}

	s.logger.Info("Pick list deleted", zap.String("pick_number", pl.PickNumber))
	return nil
}

// SetPickedQuantity records the picked amount on a non-serial line
func (s *Service) SetPickedQuantity(ctx context.Context, actor identity.Actor, id uuid.UUID, input PickQuantityInput) (*PickListDTO, error) {
	pl, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := pl.SetPickedQuantity(input.LineID, input.Quantity); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, pl); err != nil {
		return nil, s.wrapError(err, "Failed to save pick list")
	}
	return toPickListDTO(pl), nil
}

// AddLineSerial picks one serialized unit. The serial is validated against
// the line's warehouse and its SAP system number resolved before the pick
// is recorded. Offline mode records the pick with system number zero.
func (s *Service) AddLineSerial(ctx context.Context, actor identity.Actor, id uuid.UUID, input PickSerialInput) (*PickListDTO, error) {
	pl, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	line := pl.FindLine(input.LineID)
	if line == nil {
		return nil, shared.NewDomainError("LINE_NOT_FOUND", "Line not found on this pick list")
	}

	systemNumber := 0
	if s.serviceLayer.Offline() {
		s.logger.Warn("Offline mode: serial picked without SAP validation",
			zap.String("serial", input.SerialNumber),
			zap.String("item_code", line.ItemCode))
	} else {
		validation, err := s.serviceLayer.ValidateSerial(ctx, line.WarehouseCode, line.ItemCode, input.SerialNumber)
		if err != nil {
			if errors.Is(err, sap.ErrSerialNotFound) {
				return nil, shared.NewDomainError("SERIAL_NOT_FOUND",
					fmt.Sprintf("Serial number %s was not found in warehouse %s", input.SerialNumber, line.WarehouseCode))
			}
			s.logger.Error("Serial validation failed", zap.Error(err))
			return nil, shared.ErrExternalService
		}
		if validation.ItemCode != line.ItemCode {
			return nil, shared.NewDomainError("ITEM_MISMATCH",
				fmt.Sprintf("Serial number %s belongs to item %s, not %s", input.SerialNumber, validation.ItemCode, line.ItemCode))
		}
		systemNumber, err = s.serviceLayer.GetSerialSystemNumber(ctx, line.ItemCode, input.SerialNumber)
		if err != nil {
			s.logger.Error("Failed to resolve system serial number",
				zap.String("serial", input.SerialNumber), zap.Error(err))
			return nil, shared.ErrExternalService
		}
	}

	if err := pl.AddLineSerial(input.LineID, input.SerialNumber, systemNumber); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, pl); err != nil {
		return nil, s.wrapError(err, "Failed to save pick list")
	}
	return toPickListDTO(pl), nil
}

// RemoveLineSerial undoes a serial pick on a draft line
func (s *Service) RemoveLineSerial(ctx context.Context, actor identity.Actor, id uuid.UUID, lineID uuid.UUID, serial string) (*PickListDTO, error) {
	pl, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := pl.RemoveLineSerial(lineID, serial); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, pl); err != nil {
		return nil, s.wrapError(err, "Failed to save pick list")
	}
	return toPickListDTO(pl), nil
}

// RemoveLine removes an order row from a draft pick list
func (s *Service) RemoveLine(ctx context.Context, actor identity.Actor, id, lineID uuid.UUID) (*PickListDTO, error) {
	pl, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := pl.RemoveLine(lineID); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, pl); err != nil {
		return nil, s.wrapError(err, "Failed to save pick list")
	}
	return toPickListDTO(pl), nil
}

// Submit moves a draft into QC review
func (s *Service) Submit(ctx context.Context, actor identity.Actor, id uuid.UUID) (*PickListDTO, error) {
	pl, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := pl.Submit(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, pl); err != nil {
		return nil, s.wrapError(err, "Failed to submit pick list")
	}

	s.publishEvents(ctx, pl)

	s.logger.Info("Pick list submitted", zap.String("pick_number", pl.PickNumber))
	return toPickListDTO(pl), nil
}

// Approve records QC approval under the document row lock
func (s *Service) Approve(ctx context.Context, actor identity.Actor, id uuid.UUID, input ReviewInput) (*PickListDTO, error) {
	return s.review(ctx, actor, id, func(pl *picking.PickList) error {
		if pl.Status == shared.DocumentStatusQCApproved {
			return shared.NewDomainError("ALREADY_APPROVED", "Pick list is already approved")
		}
		return pl.Approve(actor.ID, actor.Name, input.Notes)
	})
}

// Reject records QC rejection; a reason is required
func (s *Service) Reject(ctx context.Context, actor identity.Actor, id uuid.UUID, input ReviewInput) (*PickListDTO, error) {
	return s.review(ctx, actor, id, func(pl *picking.PickList) error {
		return pl.Reject(actor.ID, actor.Name, input.Notes)
	})
}

// Reopen returns a rejected pick list to draft
func (s *Service) Reopen(ctx context.Context, actor identity.Actor, id uuid.UUID) (*PickListDTO, error) {
	pl, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := pl.Reopen(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, pl); err != nil {
		return nil, s.wrapError(err, "Failed to reopen pick list")
	}

	s.publishEvents(ctx, pl)
	return toPickListDTO(pl), nil
}

// Post enqueues a pick_list_post job for an approved pick list
func (s *Service) Post(ctx context.Context, actor identity.Actor, id uuid.UUID) (*posting.JobDTO, error) {
	peek, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := peek.CanPost(); err != nil {
		return nil, err
	}

	var job *sap.PostingJob
	err = s.scope.Execute(ctx, func(repos posting.Repositories) error {
		pl, err := repos.PickLists().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := pl.CanPost(); err != nil {
			return err
		}
		if active, err := repos.Jobs().FindActiveByDocument(ctx, pl.ID); err != nil {
			return err
		} else if active != nil {
			return shared.NewDomainError("JOB_ACTIVE", "A posting job is already queued for this pick list")
		}

		payload, err := json.Marshal(posting.BuildPickList(pl))
		if err != nil {
			return err
		}
		job, err = sap.NewPostingJob(sap.JobTypePickList, sap.DocumentTypePickList,
			pl.ID, pl.PickNumber, payload, actor.ID)
		if err != nil {
			return err
		}
		return repos.Jobs().Save(ctx, job)
	})
	if err != nil {
		return nil, s.wrapError(err, "Failed to enqueue posting job")
	}

	s.logger.Info("Pick list queued for SAP posting",
		zap.String("pick_number", peek.PickNumber),
		zap.String("job_id", job.ID.String()))

	dto := posting.ToJobDTO(job)
	return &dto, nil
}

// lineSerialManaged resolves whether an order line's item is serial managed
func (s *Service) lineSerialManaged(ctx context.Context, line sap.SalesOrderLine) (bool, error) {
	stock, err := s.serviceLayer.CheckItemStock(ctx, line.WarehouseCode, line.ItemCode)
	if err != nil {
		if errors.Is(err, sap.ErrItemNotFound) {
			return false, shared.NewDomainError("ITEM_NOT_FOUND",
				fmt.Sprintf("Item %s was not found in SAP", line.ItemCode))
		}
		s.logger.Error("Item stock check failed",
			zap.String("item_code", line.ItemCode), zap.Error(err))
		return false, shared.ErrExternalService
	}
	return stock.SerialManaged, nil
}

func (s *Service) load(ctx context.Context, actor identity.Actor, id uuid.UUID) (*picking.PickList, error) {
	pl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("DOCUMENT_NOT_FOUND", "Pick list not found")
		}
		return nil, s.wrapError(err, "Failed to find pick list")
	}
	if !actor.CanSee(pl.CreatedBy, pl.Status.String()) {
		return nil, shared.ErrForbidden
	}
	return pl, nil
}

func (s *Service) loadForModify(ctx context.Context, actor identity.Actor, id uuid.UUID) (*picking.PickList, error) {
	pl, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(pl.CreatedBy) {
		return nil, shared.ErrForbidden
	}
	return pl, nil
}

func (s *Service) review(ctx context.Context, actor identity.Actor, id uuid.UUID, decide func(*picking.PickList) error) (*PickListDTO, error) {
	var pl *picking.PickList
	err := s.scope.Execute(ctx, func(repos posting.Repositories) error {
		var err error
		pl, err = repos.PickLists().FindByIDForUpdate(ctx, id)
		if err != nil {
			if err == shared.ErrNotFound {
				return shared.NewDomainError("DOCUMENT_NOT_FOUND", "Pick list not found")
			}
			return err
		}
		if !actor.CanReview() {
			return shared.ErrForbidden
		}
		if err := decide(pl); err != nil {
			return err
		}
		return repos.PickLists().Save(ctx, pl)
	})
	if err != nil {
		return nil, s.wrapError(err, "Failed to review pick list")
	}

	s.publishEvents(ctx, pl)

	s.logger.Info("Pick list reviewed",
		zap.String("pick_number", pl.PickNumber),
		zap.String("status", pl.Status.String()),
		zap.String("reviewer", actor.Name))

	return toPickListDTO(pl), nil
}

func (s *Service) wrapError(err error, message string) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	s.logger.Error(message, zap.Error(err))
	return shared.NewDomainError("INTERNAL_ERROR", message)
}

func (s *Service) publishEvents(ctx context.Context, pl *picking.PickList) {
	if s.eventBus == nil {
		return
	}
	for _, event := range pl.GetDomainEvents() {
		_ = s.eventBus.Publish(ctx, event)
	}
	pl.ClearDomainEvents()
}
