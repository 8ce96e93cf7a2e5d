package sap

// Service Layer document payloads. Field names and JSON tags mirror the
// B1 Service Layer contracts exactly, including the U_EA_* user-defined
// fields the warehouse add-on stamps on every document. Dates are wire
// strings in 2006-01-02 form; quantities are plain JSON numbers.

// DateFormat is the wire format for Service Layer date fields.
const DateFormat = "2006-01-02"

// Base object types referenced when posting against a base document.
const (
	// BaseTypeSalesOrder is the object type of sales orders (ORDR)
	BaseTypeSalesOrder = 17
	// BaseTypePurchaseOrder is the object type of purchase orders (OPOR)
	BaseTypePurchaseOrder = 22
)

// ---------------------------------------------------------------------------
// PurchaseDeliveryNotes (GRPO)
// ---------------------------------------------------------------------------

// GoodsReceiptDocument is the PurchaseDeliveryNotes create payload.
type GoodsReceiptDocument struct {
	CardCode        string              `json:"CardCode"`
	DocDate         string              `json:"DocDate"`
	Comments        string              `json:"Comments,omitempty"`
	BusinessPlaceID int                 `json:"BPL_IDAssignedToInvoice,omitempty"`
	CreatedByUser   string              `json:"U_EA_CREATEDBy,omitempty"`
	ApprovedFlag    string              `json:"U_EA_Approved,omitempty"`
	DocumentLines   []GoodsReceiptLine  `json:"DocumentLines"`
}

// GoodsReceiptLine is a single PurchaseDeliveryNotes line, optionally drawn
// from a purchase order base line.
type GoodsReceiptLine struct {
	ItemCode      string              `json:"ItemCode"`
	Quantity      float64             `json:"Quantity"`
	WarehouseCode string              `json:"WarehouseCode"`
	BaseType      int                 `json:"BaseType,omitempty"`
	BaseEntry     int                 `json:"BaseEntry,omitempty"`
	BaseLine      int                 `json:"BaseLine,omitempty"`
	BatchNumbers  []BatchAllocation   `json:"BatchNumbers,omitempty"`
	SerialNumbers []SerialAllocation  `json:"SerialNumbers,omitempty"`
}

// BatchAllocation allocates received quantity to a batch number.
type BatchAllocation struct {
	BatchNumber string  `json:"BatchNumber"`
	Quantity    float64 `json:"Quantity"`
}

// SerialAllocation allocates one received unit to an internal serial number.
type SerialAllocation struct {
	InternalSerialNumber     string  `json:"InternalSerialNumber"`
	ManufacturerSerialNumber string  `json:"ManufacturerSerialNumber,omitempty"`
	Quantity                 float64 `json:"Quantity"`
}

// ---------------------------------------------------------------------------
// StockTransfers
// ---------------------------------------------------------------------------

// StockTransferDocument is the StockTransfers create payload.
type StockTransferDocument struct {
	DocDate             string              `json:"DocDate"`
	DueDate             string              `json:"DueDate"`
	CardCode            string              `json:"CardCode"`
	CardName            string              `json:"CardName"`
	Address             string              `json:"Address"`
	BusinessPlaceID     int                 `json:"BPLID"`
	CreatedByUser       string              `json:"U_EA_CREATEDBy,omitempty"`
	ApprovedFlag        string              `json:"U_EA_Approved,omitempty"`
	Comments            string              `json:"Comments,omitempty"`
	JournalMemo         string              `json:"JournalMemo,omitempty"`
	FromWarehouse       string              `json:"FromWarehouse"`
	ToWarehouse         string              `json:"ToWarehouse"`
	AuthorizationStatus string              `json:"AuthorizationStatus"`
	StockTransferLines  []StockTransferLine `json:"StockTransferLines"`
}

// StockTransferLine groups serials of one item into a single transfer line.
type StockTransferLine struct {
	LineNum           int                     `json:"LineNum"`
	ItemCode          string                  `json:"ItemCode"`
	Quantity          float64                 `json:"Quantity"`
	WarehouseCode     string                  `json:"WarehouseCode"`
	FromWarehouseCode string                  `json:"FromWarehouseCode"`
	UoMCode           string                  `json:"UoMCode"`
	SerialNumbers     []TransferSerialNumber  `json:"SerialNumbers,omitempty"`
}

// TransferSerialNumber identifies one transferred serial. SystemSerialNumber
// is the SAP system number resolved through SerialNumberDetails.
type TransferSerialNumber struct {
	SystemSerialNumber       int     `json:"SystemSerialNumber"`
	InternalSerialNumber     string  `json:"InternalSerialNumber"`
	ManufacturerSerialNumber string  `json:"ManufacturerSerialNumber"`
	Location                 *string `json:"Location"`
	Notes                    *string `json:"Notes"`
}

// ---------------------------------------------------------------------------
// PickLists
// ---------------------------------------------------------------------------

// PickListDocument is the PickLists create payload.
type PickListDocument struct {
	Name           string         `json:"Name"`
	PickDate       string         `json:"PickDate"`
	Remarks        string         `json:"Remarks,omitempty"`
	PickListsLines []PickListLine `json:"PickListsLines"`
}

// PickListLine releases quantity on one sales order row for picking.
type PickListLine struct {
	BaseObjectType   int                  `json:"BaseObjectType"`
	OrderEntry       int                  `json:"OrderEntry"`
	OrderRowID       int                  `json:"OrderRowID"`
	ReleasedQuantity float64              `json:"ReleasedQuantity"`
	SerialNumbers    []PickedSerialNumber `json:"SerialNumbers,omitempty"`
}

// PickedSerialNumber allocates one picked unit to a serial system number.
type PickedSerialNumber struct {
	SystemSerialNumber int     `json:"SystemSerialNumber"`
	Quantity           float64 `json:"Quantity"`
}

// ---------------------------------------------------------------------------
// Invoices and Drafts
// ---------------------------------------------------------------------------

// InvoiceDocument is the Invoices create payload for A/R invoices built
// against validated sales orders.
type InvoiceDocument struct {
	DocDate         string        `json:"DocDate"`
	DocDueDate      string        `json:"DocDueDate"`
	CardCode        string        `json:"CardCode"`
	BusinessPlaceID int           `json:"BPL_IDAssignedToInvoice,omitempty"`
	CreatedByUser   string        `json:"U_EA_CREATEDBy,omitempty"`
	ApprovedFlag    string        `json:"U_EA_Approved,omitempty"`
	Comments        string        `json:"Comments,omitempty"`
	DocumentLines   []InvoiceLine `json:"DocumentLines"`
}

// InvoiceLine is a single invoice line with its serial allocations.
type InvoiceLine struct {
	ItemCode        string                `json:"ItemCode"`
	ItemDescription string                `json:"ItemDescription,omitempty"`
	Quantity        float64               `json:"Quantity"`
	WarehouseCode   string                `json:"WarehouseCode"`
	BaseType        int                   `json:"BaseType,omitempty"`
	BaseEntry       int                   `json:"BaseEntry,omitempty"`
	BaseLine        int                   `json:"BaseLine,omitempty"`
	SerialNumbers   []InvoiceSerialNumber `json:"SerialNumbers,omitempty"`
}

// InvoiceSerialNumber allocates one invoiced unit to an internal serial,
// anchored to the base sales order line.
type InvoiceSerialNumber struct {
	InternalSerialNumber string  `json:"InternalSerialNumber"`
	Quantity             float64 `json:"Quantity"`
	BaseLineNumber       int     `json:"BaseLineNumber"`
}

// DraftDocument is the Drafts create payload used to stage an invoice for
// SAP-side authorization instead of posting it directly.
type DraftDocument struct {
	DocObjectCode       string        `json:"DocObjectCode"`
	DocType             string        `json:"DocType"`
	DocDate             string        `json:"DocDate"`
	DocDueDate          string        `json:"DocDueDate"`
	CardCode            string        `json:"CardCode"`
	BusinessPlaceID     int           `json:"BPL_IDAssignedToInvoice,omitempty"`
	CreatedByUser       string        `json:"U_EA_CREATEDBy,omitempty"`
	Comments            string        `json:"Comments,omitempty"`
	JournalMemo         string        `json:"JournalMemo,omitempty"`
	DocumentStatus      string        `json:"DocumentStatus"`
	AuthorizationStatus string        `json:"AuthorizationStatus"`
	DocumentLines       []InvoiceLine `json:"DocumentLines"`
}

// Draft document constants for A/R invoice drafts.
const (
	DraftObjectCodeInvoices = "oInvoices"
	DraftDocTypeItems       = "dDocument_Items"
	DraftStatusOpen         = "bost_Open"
	DraftAuthPending        = "dasPending"
)
