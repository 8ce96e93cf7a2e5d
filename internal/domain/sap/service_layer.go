package sap

import (
	"context"
	"errors"
	"strconv"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// ServiceLayer Errors
// ---------------------------------------------------------------------------

var (
	// Gateway errors
	ErrNotConfigured   = errors.New("sap: service layer not configured")
	ErrUnavailable     = errors.New("sap: service layer temporarily unavailable")
	ErrAuthFailed      = errors.New("sap: service layer authentication failed")
	ErrInvalidResponse = errors.New("sap: invalid service layer response")
	ErrRejected        = errors.New("sap: document rejected by service layer")

	// Lookup errors
	ErrSerialNotFound     = errors.New("sap: serial number not found in warehouse stock")
	ErrItemNotFound       = errors.New("sap: item not found")
	ErrSalesOrderNotFound = errors.New("sap: sales order not found")
	ErrSalesOrderClosed   = errors.New("sap: sales order is not open")
)

// ---------------------------------------------------------------------------
// Value Objects
// ---------------------------------------------------------------------------

// SerialValidation is the result of validating a serial number against
// warehouse stock in SAP.
type SerialValidation struct {
	// ItemCode is the item the serial belongs to
	ItemCode string
	// ItemName is the item description
	ItemName string
	// WarehouseCode is the warehouse holding the serial
	WarehouseCode string
	// SerialNumber is the internal serial number
	SerialNumber string
}

// ItemStock describes an item's stock in a single warehouse.
type ItemStock struct {
	// ItemCode is the SAP item code
	ItemCode string
	// SerialManaged is true when the item is managed by serial numbers
	// (Service Layer reports ManSerNum = "Y")
	SerialManaged bool
	// OnHand is the on-hand quantity in the queried warehouse
	OnHand decimal.Decimal
}

// SalesOrderSeries identifies a document numbering series for sales orders.
type SalesOrderSeries struct {
	// Series is the numeric series ID
	Series int
	// SeriesName is the display name
	SeriesName string
}

// SalesOrder is the open-order snapshot used to build pick lists and invoices.
type SalesOrder struct {
	// DocEntry is the SAP internal key
	DocEntry int
	// DocNum is the user-facing order number
	DocNum int
	// CardCode is the customer code
	CardCode string
	// CardName is the customer name
	CardName string
	// Address is the bill-to address
	Address string
	// UserSign is the SAP user who created the order
	UserSign int
	// BusinessPlaceID is BPL_IDAssignedToInvoice on the order
	BusinessPlaceID int
	// DocumentStatus is the raw Service Layer status (e.g. "bost_Open")
	DocumentStatus string
	// Lines are the order lines that are still open
	Lines []SalesOrderLine
}

// IsOpen returns true when the order can still be picked or invoiced.
func (o *SalesOrder) IsOpen() bool {
	return o.DocumentStatus == "bost_Open"
}

// SalesOrderLine is a single open line on a sales order.
type SalesOrderLine struct {
	// LineNum is the SAP line number, referenced as BaseLine when posting
	LineNum int
	// ItemCode is the SAP item code
	ItemCode string
	// ItemDescription is the item description
	ItemDescription string
	// Quantity is the ordered quantity
	Quantity decimal.Decimal
	// OpenQuantity is the quantity not yet delivered or invoiced
	OpenQuantity decimal.Decimal
	// WarehouseCode is the line's warehouse
	WarehouseCode string
	// LineStatus is the raw Service Layer line status
	LineStatus string
}

// IsOpen returns true when the line still has open quantity.
func (l *SalesOrderLine) IsOpen() bool {
	return l.LineStatus == "bost_Open"
}

// PostResult is the identifying slice of a Service Layer create response.
type PostResult struct {
	// DocEntry is the SAP internal key of the created document
	DocEntry int
	// DocNum is the user-facing document number
	DocNum int
	// AbsoluteEntry is set for pick lists, which key on Absoluteentry
	AbsoluteEntry int
}

// DocumentNumber returns the reference stored on the originating document.
func (r *PostResult) DocumentNumber() string {
	if r.DocNum != 0 {
		return strconv.Itoa(r.DocNum)
	}
	if r.AbsoluteEntry != 0 {
		return strconv.Itoa(r.AbsoluteEntry)
	}
	return strconv.Itoa(r.DocEntry)
}

// ---------------------------------------------------------------------------
// ServiceLayer Port Interface
// ---------------------------------------------------------------------------

// ServiceLayer defines the port interface for the SAP B1 Service Layer.
// The interface is defined in the domain layer; the HTTP adapter and the
// offline stub live in the infrastructure layer.
type ServiceLayer interface {
	// Ping verifies connectivity by performing a lightweight authenticated call
	Ping(ctx context.Context) error

	// Offline reports whether the gateway is running in offline mode, where
	// validations are skipped with a warning instead of calling SAP
	Offline() bool

	// ---------------------------------------------------------------------------
	// Lookups
	// ---------------------------------------------------------------------------

	// ValidateSerial checks that a serial number exists in the given warehouse.
	// Returns ErrSerialNotFound when the serial is absent from on-hand stock.
	ValidateSerial(ctx context.Context, warehouseCode, itemCode, serial string) (*SerialValidation, error)

	// GetSerialSystemNumber resolves the SAP system number for an internal serial
	GetSerialSystemNumber(ctx context.Context, itemCode, serial string) (int, error)

	// CheckItemStock returns the item's serial-management flag and on-hand
	// quantity in the given warehouse
	CheckItemStock(ctx context.Context, warehouseCode, itemCode string) (*ItemStock, error)

	// ListSalesOrderSeries lists the numbering series configured for sales orders
	ListSalesOrderSeries(ctx context.Context) ([]SalesOrderSeries, error)

	// FindSalesOrderEntry resolves a sales order number within a series to its
	// DocEntry. Returns ErrSalesOrderNotFound when no such order exists.
	FindSalesOrderEntry(ctx context.Context, orderNumber string, series int) (int, error)

	// GetSalesOrder loads an order by DocEntry with only its open lines.
	// Returns ErrSalesOrderClosed when the order is not open.
	GetSalesOrder(ctx context.Context, docEntry int) (*SalesOrder, error)

	// ---------------------------------------------------------------------------
	// Document Posting
	// ---------------------------------------------------------------------------

	// PostGoodsReceipt creates a PurchaseDeliveryNotes document
	PostGoodsReceipt(ctx context.Context, doc *GoodsReceiptDocument) (*PostResult, error)

	// PostStockTransfer creates a StockTransfers document
	PostStockTransfer(ctx context.Context, doc *StockTransferDocument) (*PostResult, error)

	// PostPickList creates a PickLists document
	PostPickList(ctx context.Context, doc *PickListDocument) (*PostResult, error)

	// PostInvoice creates an Invoices document
	PostInvoice(ctx context.Context, doc *InvoiceDocument) (*PostResult, error)

	// PostInvoiceDraft creates an invoice as a Drafts document pending approval
	PostInvoiceDraft(ctx context.Context, doc *DraftDocument) (*PostResult, error)
}
