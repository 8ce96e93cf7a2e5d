// Package invoicing provides application services for drafting, validating
// and posting sales order invoices through the SAP Service Layer.
package invoicing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/application/posting"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/invoicing"
	"github.com/wms/backend/internal/domain/numbering"
	"github.com/wms/backend/internal/domain/sap"
	"github.com/wms/backend/internal/domain/shared"
)

// SeriesCache caches the sales order series list so the scanner UI does not
// hit the Service Layer on every lookup. Get returns nil on a miss.
type SeriesCache interface {
	Get(ctx context.Context) ([]sap.SalesOrderSeries, error)
	Set(ctx context.Context, series []sap.SalesOrderSeries) error
}

// Service handles sales order invoice use cases
type Service struct {
	repo         invoicing.Repository
	serviceLayer sap.ServiceLayer
	scope        posting.TransactionScope
	seriesCache  SeriesCache
	eventBus     shared.EventBus
	logger       *zap.Logger
}

// NewService creates a new invoicing Service
func NewService(
	repo invoicing.Repository,
	serviceLayer sap.ServiceLayer,
	scope posting.TransactionScope,
	seriesCache SeriesCache,
	eventBus shared.EventBus,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:         repo,
		serviceLayer: serviceLayer,
		scope:        scope,
		seriesCache:  seriesCache,
		eventBus:     eventBus,
		logger:       logger,
	}
}

// ListSeries returns the sales order numbering series, served from cache
// when available
func (s *Service) ListSeries(ctx context.Context) ([]SeriesDTO, error) {
	if s.seriesCache != nil {
		cached, err := s.seriesCache.Get(ctx)
		if err != nil {
			s.logger.Warn("Series cache read failed", zap.Error(err))
		} else if cached != nil {
			return toSeriesDTOs(cached), nil
		}
	}

	if s.serviceLayer.Offline() {
		return nil, shared.NewDomainError("SAP_OFFLINE", "Series list requires a SAP connection")
	}

	series, err := s.serviceLayer.ListSalesOrderSeries(ctx)
	if err != nil {
		s.logger.Error("Failed to list sales order series", zap.Error(err))
		return nil, shared.ErrExternalService
	}

	if s.seriesCache != nil {
		if err := s.seriesCache.Set(ctx, series); err != nil {
			s.logger.Warn("Series cache write failed", zap.Error(err))
		}
	}

	return toSeriesDTOs(series), nil
}

// ValidateSalesOrder resolves an order number within a series and returns
// the open-order snapshot the invoice would be drafted from
func (s *Service) ValidateSalesOrder(ctx context.Context, input ValidateSalesOrderInput) (*OrderDTO, error) {
	order, openLines, err := s.loadOpenOrder(ctx, input.OrderNumber, input.Series)
	if err != nil {
		return nil, err
	}
	return toOrderDTO(order, openLines), nil
}

// Create drafts an invoice copying the order header and its open lines.
// Nothing is validated yet: every line starts at quantity zero.
func (s *Service) Create(ctx context.Context, actor identity.Actor, input CreateInvoiceInput) (*InvoiceDTO, error) {
	order, openLines, err := s.loadOpenOrder(ctx, input.OrderNumber, input.Series)
	if err != nil {
		return nil, err
	}

	var inv *invoicing.SalesOrderInvoice
	err = s.scope.Execute(ctx, func(repos posting.Repositories) error {
		number, err := repos.Series().Next(ctx, numbering.SeriesInvoice)
		if err != nil {
			return err
		}
		inv, err = invoicing.NewSalesOrderInvoice(number, order.DocNum, input.Series, order.DocEntry,
			order.CardCode, order.CardName, order.Address, order.UserSign, order.BusinessPlaceID,
			actor.ID, actor.Name)
		if err != nil {
			return err
		}
		inv.Comments = input.Comments
		for _, line := range openLines {
			serialManaged, err := s.lineSerialManaged(ctx, line)
			if err != nil {
				return err
			}
			if _, err := inv.AddLine(line.LineNum, line.ItemCode, line.ItemDescription,
				line.OpenQuantity, line.WarehouseCode, serialManaged); err != nil {
				return err
			}
		}
		return repos.Invoices().Save(ctx, inv)
	})
	if err != nil {
		return nil, s.wrapError(err, "Failed to create invoice")
	}

	s.publishEvents(ctx, inv)

	s.logger.Info("Invoice drafted",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.Int("so_entry", inv.SOEntry),
		zap.Int("lines", len(inv.Lines)))

	return toInvoiceDTO(inv), nil
}

// GetByID retrieves an invoice, enforcing creator visibility
func (s *Service) GetByID(ctx context.Context, actor identity.Actor, id uuid.UUID) (*InvoiceDTO, error) {
	inv, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return toInvoiceDTO(inv), nil
}

// List retrieves invoices matching the filter, scoped to the actor's
// document visibility
func (s *Service) List(ctx context.Context, actor identity.Actor, filter shared.Filter) ([]InvoiceListItemDTO, int64, error) {
	actor.ScopeFilter(&filter)

	invoices, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list invoices", zap.Error(err))
		return nil, 0, shared.NewDomainError("INTERNAL_ERROR", "Failed to list invoices")
	}

	dtos := make([]InvoiceListItemDTO, len(invoices))
	for i := range invoices {
		dtos[i] = toInvoiceListItemDTO(&invoices[i])
	}
	return dtos, total, nil
}

// ListByOrder returns every invoice drafted against a sales order
func (s *Service) ListByOrder(ctx context.Context, actor identity.Actor, soEntry int) ([]InvoiceListItemDTO, error) {
	invoices, err := s.repo.FindBySOEntry(ctx, soEntry)
	if err != nil {
		return nil, s.wrapError(err, "Failed to list invoices for order")
	}

	dtos := make([]InvoiceListItemDTO, 0, len(invoices))
	for i := range invoices {
		if !actor.CanSee(invoices[i].CreatedBy, invoices[i].Status.String()) {
			continue
		}
		dtos = append(dtos, toInvoiceListItemDTO(&invoices[i]))
	}
	return dtos, nil
}

// UpdateHeader changes mutable header fields of a draft
func (s *Service) UpdateHeader(ctx context.Context, actor identity.Actor, id uuid.UUID, input UpdateInvoiceInput) (*InvoiceDTO, error) {
	inv, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !inv.Status.IsEditable() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Can only update draft invoices")
	}
	inv.Comments = input.Comments
	inv.IncrementVersion()
	if err := s.repo.Save(ctx, inv); err != nil {
		return nil, s.wrapError(err, "Failed to update invoice")
	}
	return toInvoiceDTO(inv), nil
}

// Delete removes a draft invoice
func (s *Service) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	inv, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return err
	}
	if !inv.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATUS", "Can only delete draft invoices")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.wrapError(err, "Failed to delete invoice")
	}

	s.logger.Info("Invoice deleted", zap.String("invoice_number", inv.InvoiceNumber))
	return nil
}

// AddSerial records one scanned serial against an invoice line. The line is
// resolved by ID when given, otherwise by the item code the scanner
// reported. The serial count becomes the line's validated quantity.
func (s *Service) AddSerial(ctx context.Context, actor identity.Actor, id uuid.UUID, input AddSerialInput) (*InvoiceDTO, error) {
	inv, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	var line *invoicing.InvoiceLine
	if input.LineID != uuid.Nil {
		line = inv.FindLine(input.LineID)
	} else {
		line = inv.FindLineByItemCode(input.ItemCode)
	}
	if line == nil {
		return nil, shared.NewDomainError("LINE_NOT_FOUND", "Line not found on this invoice")
	}

	if s.serviceLayer.Offline() {
		s.logger.Warn("Offline mode: serial scanned without SAP validation",
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
	}

	if err := inv.AddLineSerial(line.ID, input.SerialNumber); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, inv); err != nil {
		return nil, s.wrapError(err, "Failed to save invoice")
	}
	return toInvoiceDTO(inv), nil
}

// RemoveSerial undoes a scan on a draft line
func (s *Service) RemoveSerial(ctx context.Context, actor identity.Actor, id, lineID uuid.UUID, serial string) (*InvoiceDTO, error) {
	inv, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := inv.RemoveLineSerial(lineID, serial); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, inv); err != nil {
		return nil, s.wrapError(err, "Failed to save invoice")
	}
	return toInvoiceDTO(inv), nil
}

// SetValidatedQuantity records the checked amount on a non-serial line
func (s *Service) SetValidatedQuantity(ctx context.Context, actor identity.Actor, id uuid.UUID, input ValidateQuantityInput) (*InvoiceDTO, error) {
	inv, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := inv.SetValidatedQuantity(input.LineID, input.Quantity); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, inv); err != nil {
		return nil, s.wrapError(err, "Failed to save invoice")
	}
	return toInvoiceDTO(inv), nil
}

// Validate freezes the invoice once every line carries a validated quantity
func (s *Service) Validate(ctx context.Context, actor identity.Actor, id uuid.UUID) (*InvoiceDTO, error) {
	inv, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, inv); err != nil {
		return nil, s.wrapError(err, "Failed to validate invoice")
	}

	s.publishEvents(ctx, inv)

	s.logger.Info("Invoice validated", zap.String("invoice_number", inv.InvoiceNumber))
	return toInvoiceDTO(inv), nil
}

// Post enqueues a so_invoice_post job creating an Invoices document
func (s *Service) Post(ctx context.Context, actor identity.Actor, id uuid.UUID) (*posting.JobDTO, error) {
	return s.enqueue(ctx, actor, id, false)
}

// PostAsDraft enqueues a so_invoice_post job staging a Draft that awaits
// authorization on the SAP side
func (s *Service) PostAsDraft(ctx context.Context, actor identity.Actor, id uuid.UUID) (*posting.JobDTO, error) {
	return s.enqueue(ctx, actor, id, true)
}

// RetryPosting returns a failed invoice to validated for another attempt
func (s *Service) RetryPosting(ctx context.Context, actor identity.Actor, id uuid.UUID) (*InvoiceDTO, error) {
	inv, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := inv.ResetForRetry(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, inv); err != nil {
		return nil, s.wrapError(err, "Failed to reset invoice")
	}

	s.logger.Info("Invoice reset for posting retry", zap.String("invoice_number", inv.InvoiceNumber))
	return toInvoiceDTO(inv), nil
}

func (s *Service) enqueue(ctx context.Context, actor identity.Actor, id uuid.UUID, asDraft bool) (*posting.JobDTO, error) {
	peek, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := peek.CanPost(); err != nil {
		return nil, err
	}

	var job *sap.PostingJob
	err = s.scope.Execute(ctx, func(repos posting.Repositories) error {
		inv, err := repos.Invoices().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := inv.CanPost(); err != nil {
			return err
		}
		if active, err := repos.Jobs().FindActiveByDocument(ctx, inv.ID); err != nil {
			return err
		} else if active != nil {
			return shared.NewDomainError("JOB_ACTIVE", "A posting job is already queued for this invoice")
		}

		payload, err := json.Marshal(posting.BuildInvoicePayload(inv, asDraft))
		if err != nil {
			return err
		}
		job, err = sap.NewPostingJob(sap.JobTypeInvoice, sap.DocumentTypeInvoice,
			inv.ID, inv.InvoiceNumber, payload, actor.ID)
		if err != nil {
			return err
		}
		return repos.Jobs().Save(ctx, job)
	})
	if err != nil {
		return nil, s.wrapError(err, "Failed to enqueue posting job")
	}

	s.logger.Info("Invoice queued for SAP posting",
		zap.String("invoice_number", peek.InvoiceNumber),
		zap.Bool("as_draft", asDraft),
		zap.String("job_id", job.ID.String()))

	dto := posting.ToJobDTO(job)
	return &dto, nil
}

// loadOpenOrder resolves an order number within a series and loads the open
// order snapshot. Not available offline.
func (s *Service) loadOpenOrder(ctx context.Context, orderNumber string, series int) (*sap.SalesOrder, []sap.SalesOrderLine, error) {
	if s.serviceLayer.Offline() {
		return nil, nil, shared.NewDomainError("SAP_OFFLINE", "Invoicing requires a SAP connection to load the sales order")
	}

	docEntry, err := s.serviceLayer.FindSalesOrderEntry(ctx, orderNumber, series)
	if err != nil {
		if errors.Is(err, sap.ErrSalesOrderNotFound) {
			return nil, nil, shared.NewDomainError("ORDER_NOT_FOUND",
				fmt.Sprintf("Sales order %s was not found in series %d", orderNumber, series))
		}
		s.logger.Error("Failed to resolve sales order",
			zap.String("order_number", orderNumber), zap.Int("series", series), zap.Error(err))
		return nil, nil, shared.ErrExternalService
	}

	order, err := s.serviceLayer.GetSalesOrder(ctx, docEntry)
	if err != nil {
		switch {
		case errors.Is(err, sap.ErrSalesOrderNotFound):
			return nil, nil, shared.NewDomainError("ORDER_NOT_FOUND", fmt.Sprintf("Sales order %d was not found", docEntry))
		case errors.Is(err, sap.ErrSalesOrderClosed):
			return nil, nil, shared.NewDomainError("ORDER_NOT_OPEN", "Sales order is not open")
		default:
			s.logger.Error("Failed to load sales order", zap.Int("doc_entry", docEntry), zap.Error(err))
			return nil, nil, shared.ErrExternalService
		}
	}
	if !order.IsOpen() {
		return nil, nil, shared.NewDomainError("ORDER_NOT_OPEN", "Sales order is not open")
	}

	openLines := make([]sap.SalesOrderLine, 0, len(order.Lines))
	for _, line := range order.Lines {
		if line.IsOpen() && line.OpenQuantity.IsPositive() {
			openLines = append(openLines, line)
		}
	}
	if len(openLines) == 0 {
		return nil, nil, shared.NewDomainError("NO_OPEN_LINES", "Sales order has no open lines left to invoice")
	}

	return order, openLines, nil
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

func (s *Service) load(ctx context.Context, actor identity.Actor, id uuid.UUID) (*invoicing.SalesOrderInvoice, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("DOCUMENT_NOT_FOUND", "Invoice not found")
		}
		return nil, s.wrapError(err, "Failed to find invoice")
	}
	if !actor.CanSee(inv.CreatedBy, inv.Status.String()) {
		return nil, shared.ErrForbidden
	}
	return inv, nil
}

func (s *Service) loadForModify(ctx context.Context, actor identity.Actor, id uuid.UUID) (*invoicing.SalesOrderInvoice, error) {
	inv, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(inv.CreatedBy) {
		return nil, shared.ErrForbidden
	}
	return inv, nil
}

func (s *Service) wrapError(err error, message string) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	s.logger.Error(message, zap.Error(err))
	return shared.NewDomainError("INTERNAL_ERROR", message)
}

func (s *Service) publishEvents(ctx context.Context, inv *invoicing.SalesOrderInvoice) {
	if s.eventBus == nil {
		return
	}
	for _, event := range inv.GetDomainEvents() {
		_ = s.eventBus.Publish(ctx, event)
	}
	inv.ClearDomainEvents()
}
