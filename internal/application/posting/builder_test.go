package posting

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms/backend/internal/domain/invoicing"
	"github.com/wms/backend/internal/domain/picking"
	"github.com/wms/backend/internal/domain/receiving"
	"github.com/wms/backend/internal/domain/sap"
	"github.com/wms/backend/internal/domain/transfer"
)

func TestBuildGoodsReceipt(t *testing.T) {
	doc, err := receiving.NewGRPODocument("GRPO-00001", "PO-100", 310, "V001", "Vendor Ltd", "WH01", uuid.New(), "Receiver")
	require.NoError(t, err)

	serialItem, err := doc.AddItem("ITEM-A", "Widget A", "EA", 0,
		decimal.NewFromInt(2), decimal.NewFromInt(2), "BIN-1", true, false, "")
	require.NoError(t, err)
	require.NoError(t, doc.AddItemSerial(serialItem.ID, "SN-1", "MFG-1"))
	require.NoError(t, doc.AddItemSerial(serialItem.ID, "SN-2", "MFG-2"))

	_, err = doc.AddItem("ITEM-B", "Widget B", "EA", 1,
		decimal.NewFromInt(5), decimal.NewFromInt(5), "", false, true, "BATCH-7")
	require.NoError(t, err)

	payload := BuildGoodsReceipt(doc, 2)

	assert.Equal(t, "V001", payload.CardCode)
	assert.Equal(t, 2, payload.BusinessPlaceID)
	assert.Equal(t, "Receiver", payload.CreatedByUser)
	assert.Equal(t, "Y", payload.ApprovedFlag)
	require.Len(t, payload.DocumentLines, 2)

	serialLine := payload.DocumentLines[0]
	assert.Equal(t, sap.BaseTypePurchaseOrder, serialLine.BaseType)
	assert.Equal(t, 310, serialLine.BaseEntry)
	assert.Equal(t, 0, serialLine.BaseLine)
	require.Len(t, serialLine.SerialNumbers, 2)
	assert.Equal(t, "SN-1", serialLine.SerialNumbers[0].InternalSerialNumber)
	assert.Equal(t, "MFG-1", serialLine.SerialNumbers[0].ManufacturerSerialNumber)
	assert.Equal(t, float64(1), serialLine.SerialNumbers[0].Quantity)

	batchLine := payload.DocumentLines[1]
	assert.Equal(t, 1, batchLine.BaseLine)
	require.Len(t, batchLine.BatchNumbers, 1)
	assert.Equal(t, "BATCH-7", batchLine.BatchNumbers[0].BatchNumber)
	assert.Equal(t, float64(5), batchLine.BatchNumbers[0].Quantity)
}

func TestBuildGoodsReceipt_NoBaseOrder(t *testing.T) {
	doc, err := receiving.NewGRPODocument("GRPO-00002", "PO-EXT", 0, "V001", "Vendor Ltd", "WH01", uuid.New(), "Receiver")
	require.NoError(t, err)
	_, err = doc.AddItem("ITEM-A", "Widget A", "EA", 0,
		decimal.NewFromInt(1), decimal.NewFromInt(1), "", false, false, "")
	require.NoError(t, err)

	payload := BuildGoodsReceipt(doc, 2)

	require.Len(t, payload.DocumentLines, 1)
	assert.Zero(t, payload.DocumentLines[0].BaseType)
	assert.Zero(t, payload.DocumentLines[0].BaseEntry)
}

func TestBuildStockTransfer_GroupsSerialsByItem(t *testing.T) {
	tr, err := transfer.NewSerialItemTransfer("SIT-00001", "WH01", "WH02", uuid.New(), "Mover")
	require.NoError(t, err)

	_, err = tr.AddSerialItem("ITEM-A", "Widget A", "SN-1", transfer.ItemValidationValidated, "")
	require.NoError(t, err)
	_, err = tr.AddSerialItem("ITEM-A", "Widget A", "SN-2", transfer.ItemValidationValidated, "")
	require.NoError(t, err)
	_, err = tr.AddNonSerialItem("ITEM-B", "Widget B", decimal.NewFromInt(4), transfer.ItemValidationValidated, "")
	require.NoError(t, err)

	payload := BuildStockTransfer(tr, 2, map[string]int{"SN-1": 101, "SN-2": 102})

	assert.Equal(t, "WH01", payload.FromWarehouse)
	assert.Equal(t, "WH02", payload.ToWarehouse)
	assert.Equal(t, 2, payload.BusinessPlaceID)
	require.Len(t, payload.StockTransferLines, 2)

	serialLine := payload.StockTransferLines[0]
	assert.Equal(t, "ITEM-A", serialLine.ItemCode)
	assert.Equal(t, float64(2), serialLine.Quantity)
	assert.Equal(t, "WH02", serialLine.WarehouseCode)
	assert.Equal(t, "WH01", serialLine.FromWarehouseCode)
	require.Len(t, serialLine.SerialNumbers, 2)
	assert.Equal(t, 101, serialLine.SerialNumbers[0].SystemSerialNumber)
	assert.Equal(t, "SN-1", serialLine.SerialNumbers[0].InternalSerialNumber)

	plainLine := payload.StockTransferLines[1]
	assert.Equal(t, "ITEM-B", plainLine.ItemCode)
	assert.Equal(t, float64(4), plainLine.Quantity)
	assert.Empty(t, plainLine.SerialNumbers)

	// line numbers are sequential across both groups
	assert.Equal(t, 0, serialLine.LineNum)
	assert.Equal(t, 1, plainLine.LineNum)
}

func TestBuildPickList(t *testing.T) {
	pl, err := picking.NewPickList("PL-00001", 501, 10501, "C001", "Acme Corp", "WH01", uuid.New(), "Picker")
	require.NoError(t, err)

	line, err := pl.AddLine(3, "ITEM-A", "Widget A", decimal.NewFromInt(2), "WH01", true)
	require.NoError(t, err)
	require.NoError(t, pl.AddLineSerial(line.ID, "SN-1", 77))
	require.NoError(t, pl.AddLineSerial(line.ID, "SN-2", 78))

	payload := BuildPickList(pl)

	assert.Equal(t, "Picker", payload.Name)
	require.Len(t, payload.PickListsLines, 1)

	pll := payload.PickListsLines[0]
	assert.Equal(t, sap.BaseTypeSalesOrder, pll.BaseObjectType)
	assert.Equal(t, 501, pll.OrderEntry)
	assert.Equal(t, 3, pll.OrderRowID)
	assert.Equal(t, float64(2), pll.ReleasedQuantity)
	require.Len(t, pll.SerialNumbers, 2)
	assert.Equal(t, 77, pll.SerialNumbers[0].SystemSerialNumber)
	assert.Equal(t, float64(1), pll.SerialNumbers[0].Quantity)
}

func testInvoice(t *testing.T) *invoicing.SalesOrderInvoice {
	t.Helper()
	inv, err := invoicing.NewSalesOrderInvoice("INV-00001", 20701, 3, 701,
		"C001", "Acme Corp", "1 Main St", 4, 2, uuid.New(), "Biller")
	require.NoError(t, err)

	line, err := inv.AddLine(0, "ITEM-A", "Widget A", decimal.NewFromInt(2), "WH01", true)
	require.NoError(t, err)
	require.NoError(t, inv.AddLineSerial(line.ID, "SN-1"))
	require.NoError(t, inv.AddLineSerial(line.ID, "SN-2"))
	return inv
}

func TestBuildInvoice(t *testing.T) {
	inv := testInvoice(t)

	payload := BuildInvoice(inv)

	assert.Equal(t, "C001", payload.CardCode)
	assert.Equal(t, 2, payload.BusinessPlaceID)
	assert.Equal(t, "Biller", payload.CreatedByUser)
	assert.Equal(t, "Y", payload.ApprovedFlag)
	require.Len(t, payload.DocumentLines, 1)

	dl := payload.DocumentLines[0]
	assert.Equal(t, "ITEM-A", dl.ItemCode)
	// validated quantity, not the SO open quantity, is what gets invoiced
	assert.Equal(t, float64(2), dl.Quantity)
	require.Len(t, dl.SerialNumbers, 2)
	assert.Equal(t, "SN-1", dl.SerialNumbers[0].InternalSerialNumber)
	assert.Equal(t, float64(1), dl.SerialNumbers[0].Quantity)
	assert.Equal(t, 0, dl.SerialNumbers[0].BaseLineNumber)
}

func TestBuildInvoiceDraft(t *testing.T) {
	inv := testInvoice(t)

	payload := BuildInvoiceDraft(inv)

	assert.Equal(t, sap.DraftObjectCodeInvoices, payload.DocObjectCode)
	assert.Equal(t, sap.DraftDocTypeItems, payload.DocType)
	assert.Equal(t, "Based On Sales Orders 20701", payload.Comments)
	assert.Equal(t, "A/R Invoices - Acme Corp", payload.JournalMemo)
	assert.Equal(t, sap.DraftStatusOpen, payload.DocumentStatus)
	assert.Equal(t, sap.DraftAuthPending, payload.AuthorizationStatus)
	require.Len(t, payload.DocumentLines, 1)

	dl := payload.DocumentLines[0]
	assert.Equal(t, sap.BaseTypeSalesOrder, dl.BaseType)
	assert.Equal(t, 701, dl.BaseEntry)
	assert.Equal(t, 0, dl.BaseLine)
}

func TestBuildInvoicePayload(t *testing.T) {
	inv := testInvoice(t)

	direct := BuildInvoicePayload(inv, false)
	assert.False(t, direct.AsDraft)
	assert.NotNil(t, direct.Invoice)
	assert.Nil(t, direct.Draft)

	draft := BuildInvoicePayload(inv, true)
	assert.True(t, draft.AsDraft)
	assert.Nil(t, draft.Invoice)
	assert.NotNil(t, draft.Draft)
}
