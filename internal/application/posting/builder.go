package posting

import (
	"fmt"
	"time"

	"github.com/wms/backend/internal/domain/invoicing"
	"github.com/wms/backend/internal/domain/picking"
	"github.com/wms/backend/internal/domain/receiving"
	"github.com/wms/backend/internal/domain/sap"
	"github.com/wms/backend/internal/domain/transfer"
)

// InvoiceDueDays is the default payment term stamped on DocDueDate
const InvoiceDueDays = 30

// approvedFlag is the U_EA_Approved value stamped on documents that passed QC
const approvedFlag = "Y"

// BuildGoodsReceipt assembles the PurchaseDeliveryNotes payload for an
// approved receipt. Lines reference the base purchase order when the
// document carries its DocEntry.
func BuildGoodsReceipt(doc *receiving.GRPODocument, businessPlaceID int) *sap.GoodsReceiptDocument {
	payload := &sap.GoodsReceiptDocument{
		CardCode:        doc.CardCode,
		DocDate:         time.Now().Format(sap.DateFormat),
		Comments:        doc.Remarks,
		BusinessPlaceID: businessPlaceID,
		CreatedByUser:   doc.CreatedByName,
		ApprovedFlag:    approvedFlag,
		DocumentLines:   make([]sap.GoodsReceiptLine, 0, len(doc.Items)),
	}

	for _, item := range doc.Items {
		line := sap.GoodsReceiptLine{
			ItemCode:      item.ItemCode,
			Quantity:      item.ReceivedQuantity.InexactFloat64(),
			WarehouseCode: doc.WarehouseCode,
		}
		if doc.POEntry > 0 {
			line.BaseType = sap.BaseTypePurchaseOrder
			line.BaseEntry = doc.POEntry
			line.BaseLine = item.POLineNumber
		}
		if item.BatchManaged {
			line.BatchNumbers = []sap.BatchAllocation{{
				BatchNumber: item.BatchNumber,
				Quantity:    item.ReceivedQuantity.InexactFloat64(),
			}}
		}
		for _, serial := range item.Serials {
			line.SerialNumbers = append(line.SerialNumbers, sap.SerialAllocation{
				InternalSerialNumber:     serial.SerialNumber,
				ManufacturerSerialNumber: serial.ManufacturerSerial,
				Quantity:                 1,
			})
		}
		payload.DocumentLines = append(payload.DocumentLines, line)
	}

	return payload
}

// BuildStockTransfer assembles the StockTransfers payload. Serial items are
// grouped into one line per item code; systemNumbers maps each internal
// serial to the SAP system number resolved through SerialNumberDetails.
func BuildStockTransfer(t *transfer.SerialItemTransfer, businessPlaceID int, systemNumbers map[string]int) *sap.StockTransferDocument {
	today := time.Now().Format(sap.DateFormat)
	payload := &sap.StockTransferDocument{
		DocDate:         today,
		DueDate:         today,
		BusinessPlaceID: businessPlaceID,
		CreatedByUser:   t.CreatedByName,
		ApprovedFlag:    approvedFlag,
		Comments:        t.Remarks,
		JournalMemo:     fmt.Sprintf("Serial item transfer %s", t.TransferNumber),
		FromWarehouse:   t.FromWarehouse,
		ToWarehouse:     t.ToWarehouse,
	}

	lineNum := 0
	itemCodes, serialItems := t.SerialsByItem()
	for _, itemCode := range itemCodes {
		items := serialItems[itemCode]
		line := sap.StockTransferLine{
			LineNum:           lineNum,
			ItemCode:          itemCode,
			Quantity:          float64(len(items)),
			WarehouseCode:     t.ToWarehouse,
			FromWarehouseCode: t.FromWarehouse,
		}
		for _, item := range items {
			line.SerialNumbers = append(line.SerialNumbers, sap.TransferSerialNumber{
				SystemSerialNumber:       systemNumbers[item.SerialNumber],
				InternalSerialNumber:     item.SerialNumber,
				ManufacturerSerialNumber: item.SerialNumber,
			})
		}
		payload.StockTransferLines = append(payload.StockTransferLines, line)
		lineNum++
	}

	for _, item := range t.NonSerialItems() {
		payload.StockTransferLines = append(payload.StockTransferLines, sap.StockTransferLine{
			LineNum:           lineNum,
			ItemCode:          item.ItemCode,
			Quantity:          item.Quantity.InexactFloat64(),
			WarehouseCode:     t.ToWarehouse,
			FromWarehouseCode: t.FromWarehouse,
		})
		lineNum++
	}

	return payload
}

// BuildPickList assembles the PickLists payload releasing picked quantity
// against the base sales order rows.
func BuildPickList(p *picking.PickList) *sap.PickListDocument {
	payload := &sap.PickListDocument{
		Name:           p.CreatedByName,
		PickDate:       time.Now().Format(sap.DateFormat),
		Remarks:        p.Remarks,
		PickListsLines: make([]sap.PickListLine, 0, len(p.Lines)),
	}

	for _, line := range p.Lines {
		pl := sap.PickListLine{
			BaseObjectType:   sap.BaseTypeSalesOrder,
			OrderEntry:       p.OrderEntry,
			OrderRowID:       line.OrderRowID,
			ReleasedQuantity: line.PickedQuantity.InexactFloat64(),
		}
		for _, serial := range line.Serials {
			pl.SerialNumbers = append(pl.SerialNumbers, sap.PickedSerialNumber{
				SystemSerialNumber: serial.SystemNumber,
				Quantity:           1,
			})
		}
		payload.PickListsLines = append(payload.PickListsLines, pl)
	}

	return payload
}

// BuildInvoice assembles the Invoices payload from a validated SO invoice.
func BuildInvoice(inv *invoicing.SalesOrderInvoice) *sap.InvoiceDocument {
	now := time.Now()
	payload := &sap.InvoiceDocument{
		DocDate:         now.Format(sap.DateFormat),
		DocDueDate:      now.AddDate(0, 0, InvoiceDueDays).Format(sap.DateFormat),
		CardCode:        inv.CardCode,
		BusinessPlaceID: inv.BusinessPlaceID,
		CreatedByUser:   inv.CreatedByName,
		ApprovedFlag:    approvedFlag,
		Comments:        inv.Comments,
		DocumentLines:   make([]sap.InvoiceLine, 0, len(inv.Lines)),
	}

	for _, line := range inv.Lines {
		il := sap.InvoiceLine{
			ItemCode:        line.ItemCode,
			ItemDescription: line.ItemDescription,
			Quantity:        line.ValidatedQuantity.InexactFloat64(),
			WarehouseCode:   line.WarehouseCode,
		}
		for _, serial := range line.Serials {
			il.SerialNumbers = append(il.SerialNumbers, sap.InvoiceSerialNumber{
				InternalSerialNumber: serial.SerialNumber,
				Quantity:             1,
				BaseLineNumber:       line.BaseLineNumber,
			})
		}
		payload.DocumentLines = append(payload.DocumentLines, il)
	}

	return payload
}

// InvoicePayload wraps the invoice document together with the posting mode
// so the queue worker knows whether to create an Invoices document or stage
// a Draft for SAP-side authorization.
type InvoicePayload struct {
	AsDraft bool                 `json:"as_draft"`
	Invoice *sap.InvoiceDocument `json:"invoice,omitempty"`
	Draft   *sap.DraftDocument   `json:"draft,omitempty"`
}

// BuildInvoicePayload assembles the queued payload for a validated invoice
func BuildInvoicePayload(inv *invoicing.SalesOrderInvoice, asDraft bool) *InvoicePayload {
	if asDraft {
		return &InvoicePayload{AsDraft: true, Draft: BuildInvoiceDraft(inv)}
	}
	return &InvoicePayload{Invoice: BuildInvoice(inv)}
}

// BuildInvoiceDraft assembles the Drafts payload that stages the invoice
// for SAP-side authorization instead of posting it directly. Draft lines
// anchor to the base sales order.
func BuildInvoiceDraft(inv *invoicing.SalesOrderInvoice) *sap.DraftDocument {
	now := time.Now()
	payload := &sap.DraftDocument{
		DocObjectCode:       sap.DraftObjectCodeInvoices,
		DocType:             sap.DraftDocTypeItems,
		DocDate:             now.Format(sap.DateFormat),
		DocDueDate:          now.AddDate(0, 0, InvoiceDueDays).Format(sap.DateFormat),
		CardCode:            inv.CardCode,
		BusinessPlaceID:     inv.BusinessPlaceID,
		CreatedByUser:       inv.CreatedByName,
		Comments:            fmt.Sprintf("Based On Sales Orders %d", inv.SONumber),
		JournalMemo:         fmt.Sprintf("A/R Invoices - %s", inv.CardName),
		DocumentStatus:      sap.DraftStatusOpen,
		AuthorizationStatus: sap.DraftAuthPending,
		DocumentLines:       make([]sap.InvoiceLine, 0, len(inv.Lines)),
	}

	for _, line := range inv.Lines {
		il := sap.InvoiceLine{
			ItemCode:        line.ItemCode,
			ItemDescription: line.ItemDescription,
			Quantity:        line.ValidatedQuantity.InexactFloat64(),
			WarehouseCode:   line.WarehouseCode,
			BaseType:        sap.BaseTypeSalesOrder,
			BaseEntry:       inv.SOEntry,
			BaseLine:        line.BaseLineNumber,
		}
		for _, serial := range line.Serials {
			il.SerialNumbers = append(il.SerialNumbers, sap.InvoiceSerialNumber{
				InternalSerialNumber: serial.SerialNumber,
				Quantity:             1,
				BaseLineNumber:       line.BaseLineNumber,
			})
		}
		payload.DocumentLines = append(payload.DocumentLines, il)
	}

	return payload
}
