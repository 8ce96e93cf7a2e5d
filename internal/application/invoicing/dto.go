package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/invoicing"
	"github.com/wms/backend/internal/domain/sap"
)

// ValidateSalesOrderInput resolves an order number within a series
type ValidateSalesOrderInput struct {
	OrderNumber string
	Series      int
}

// CreateInvoiceInput drafts an invoice against a validated sales order
type CreateInvoiceInput struct {
	OrderNumber string
	Series      int
	Comments    string
}

// UpdateInvoiceInput carries the mutable header fields
type UpdateInvoiceInput struct {
	Comments string
}

// AddSerialInput records one scanned serial. The line is resolved by ID when
// given, otherwise by the item code the scanner reported.
type AddSerialInput struct {
	LineID       uuid.UUID
	ItemCode     string
	SerialNumber string
}

// ValidateQuantityInput records the checked amount for a non-serial line
type ValidateQuantityInput struct {
	LineID   uuid.UUID
	Quantity decimal.Decimal
}

// SeriesDTO is the API representation of a sales order numbering series
type SeriesDTO struct {
	Series     int    `json:"series"`
	SeriesName string `json:"series_name"`
}

// OrderLineDTO is one open sales order line returned by order validation
type OrderLineDTO struct {
	LineNum         int             `json:"line_num"`
	ItemCode        string          `json:"item_code"`
	ItemDescription string          `json:"item_description"`
	Quantity        decimal.Decimal `json:"quantity"`
	OpenQuantity    decimal.Decimal `json:"open_quantity"`
	WarehouseCode   string          `json:"warehouse_code"`
}

// OrderDTO is the open-order snapshot returned by order validation
type OrderDTO struct {
	DocEntry        int            `json:"doc_entry"`
	DocNum          int            `json:"doc_num"`
	CardCode        string         `json:"card_code"`
	CardName        string         `json:"card_name"`
	Address         string         `json:"address,omitempty"`
	BusinessPlaceID int            `json:"business_place_id"`
	Lines           []OrderLineDTO `json:"lines"`
}

// InvoiceSerialDTO is the API representation of a scanned serial
type InvoiceSerialDTO struct {
	ID           uuid.UUID `json:"id"`
	SerialNumber string    `json:"serial_number"`
}

// InvoiceLineDTO is the API representation of an invoice line
type InvoiceLineDTO struct {
	ID                uuid.UUID          `json:"id"`
	BaseLineNumber    int                `json:"base_line_number"`
	ItemCode          string             `json:"item_code"`
	ItemDescription   string             `json:"item_description"`
	OrderedQuantity   decimal.Decimal    `json:"ordered_quantity"`
	ValidatedQuantity decimal.Decimal    `json:"validated_quantity"`
	WarehouseCode     string             `json:"warehouse_code"`
	SerialManaged     bool               `json:"serial_managed"`
	Serials           []InvoiceSerialDTO `json:"serials"`
}

// InvoiceDTO is the API representation of a sales order invoice
type InvoiceDTO struct {
	ID              uuid.UUID        `json:"id"`
	InvoiceNumber   string           `json:"invoice_number"`
	SONumber        int              `json:"so_number"`
	SOSeries        int              `json:"so_series"`
	SOEntry         int              `json:"so_entry"`
	CardCode        string           `json:"card_code"`
	CardName        string           `json:"card_name"`
	Address         string           `json:"address,omitempty"`
	BusinessPlaceID int              `json:"business_place_id"`
	Status          string           `json:"status"`
	Comments        string           `json:"comments,omitempty"`
	SAPDocNumber    string           `json:"sap_doc_number,omitempty"`
	SAPDocEntry     int              `json:"sap_doc_entry,omitempty"`
	PostedAsDraft   bool             `json:"posted_as_draft"`
	PostingError    string           `json:"posting_error,omitempty"`
	CreatedBy       uuid.UUID        `json:"created_by"`
	CreatedByName   string           `json:"created_by_name"`
	Version         int              `json:"version"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	Lines           []InvoiceLineDTO `json:"lines"`
}

// InvoiceListItemDTO is the list representation without nested lines
type InvoiceListItemDTO struct {
	ID            uuid.UUID `json:"id"`
	InvoiceNumber string    `json:"invoice_number"`
	SONumber      int       `json:"so_number"`
	SOEntry       int       `json:"so_entry"`
	CardCode      string    `json:"card_code"`
	CardName      string    `json:"card_name"`
	Status        string    `json:"status"`
	LineCount     int       `json:"line_count"`
	SAPDocNumber  string    `json:"sap_doc_number,omitempty"`
	PostedAsDraft bool      `json:"posted_as_draft"`
	CreatedByName string    `json:"created_by_name"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toSeriesDTOs(series []sap.SalesOrderSeries) []SeriesDTO {
	dtos := make([]SeriesDTO, len(series))
	for i, s := range series {
		dtos[i] = SeriesDTO{Series: s.Series, SeriesName: s.SeriesName}
	}
	return dtos
}

func toOrderDTO(order *sap.SalesOrder, openLines []sap.SalesOrderLine) *OrderDTO {
	dto := &OrderDTO{
		DocEntry:        order.DocEntry,
		DocNum:          order.DocNum,
		CardCode:        order.CardCode,
		CardName:        order.CardName,
		Address:         order.Address,
		BusinessPlaceID: order.BusinessPlaceID,
		Lines:           make([]OrderLineDTO, len(openLines)),
	}
	for i, line := range openLines {
		dto.Lines[i] = OrderLineDTO{
			LineNum:         line.LineNum,
			ItemCode:        line.ItemCode,
			ItemDescription: line.ItemDescription,
			Quantity:        line.Quantity,
			OpenQuantity:    line.OpenQuantity,
			WarehouseCode:   line.WarehouseCode,
		}
	}
	return dto
}

func toInvoiceDTO(inv *invoicing.SalesOrderInvoice) *InvoiceDTO {
	dto := &InvoiceDTO{
		ID:              inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		SONumber:        inv.SONumber,
		SOSeries:        inv.SOSeries,
		SOEntry:         inv.SOEntry,
		CardCode:        inv.CardCode,
		CardName:        inv.CardName,
		Address:         inv.Address,
		BusinessPlaceID: inv.BusinessPlaceID,
		Status:          inv.Status.String(),
		Comments:        inv.Comments,
		SAPDocNumber:    inv.SAPDocNumber,
		SAPDocEntry:     inv.SAPDocEntry,
		PostedAsDraft:   inv.PostedAsDraft,
		PostingError:    inv.PostingError,
		CreatedBy:       inv.CreatedBy,
		CreatedByName:   inv.CreatedByName,
		Version:         inv.Version,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
		Lines:           make([]InvoiceLineDTO, len(inv.Lines)),
	}
	for i := range inv.Lines {
		dto.Lines[i] = toInvoiceLineDTO(&inv.Lines[i])
	}
	return dto
}

func toInvoiceLineDTO(line *invoicing.InvoiceLine) InvoiceLineDTO {
	dto := InvoiceLineDTO{
		ID:                line.ID,
		BaseLineNumber:    line.BaseLineNumber,
		ItemCode:          line.ItemCode,
		ItemDescription:   line.ItemDescription,
		OrderedQuantity:   line.OrderedQuantity,
		ValidatedQuantity: line.ValidatedQuantity,
		WarehouseCode:     line.WarehouseCode,
		SerialManaged:     line.SerialManaged,
		Serials:           make([]InvoiceSerialDTO, len(line.Serials)),
	}
	for i, s := range line.Serials {
		dto.Serials[i] = InvoiceSerialDTO{ID: s.ID, SerialNumber: s.SerialNumber}
	}
	return dto
}

func toInvoiceListItemDTO(inv *invoicing.SalesOrderInvoice) InvoiceListItemDTO {
	return InvoiceListItemDTO{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		SONumber:      inv.SONumber,
		SOEntry:       inv.SOEntry,
		CardCode:      inv.CardCode,
		CardName:      inv.CardName,
		Status:        inv.Status.String(),
		LineCount:     len(inv.Lines),
		SAPDocNumber:  inv.SAPDocNumber,
		PostedAsDraft: inv.PostedAsDraft,
		CreatedByName: inv.CreatedByName,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}
