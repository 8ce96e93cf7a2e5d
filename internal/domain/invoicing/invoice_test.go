package invoicing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms/backend/internal/domain/shared"
)

func createTestInvoice(t *testing.T) *SalesOrderInvoice {
	t.Helper()
	inv, err := NewSalesOrderInvoice("INV-00031", 2311, 74, 1205, "C20000", "Maxi-Teq", "1 Industrial Way", 7, 3, uuid.New(), "Billing Op")
	require.NoError(t, err)
	return inv
}

func validatedInvoice(t *testing.T) *SalesOrderInvoice {
	t.Helper()
	inv := createTestInvoice(t)
	line, err := inv.AddLine(0, "LAPTOP-01", "Laptop 14in", decimal.NewFromInt(2), "WH-MAIN", true)
	require.NoError(t, err)
	require.NoError(t, inv.AddLineSerial(line.ID, "SN-1001"))
	require.NoError(t, inv.AddLineSerial(line.ID, "SN-1002"))
	require.NoError(t, inv.Validate())
	return inv
}

func TestNewSalesOrderInvoice(t *testing.T) {
	t.Run("creates draft with order header copied", func(t *testing.T) {
		inv := createTestInvoice(t)

		assert.Equal(t, InvoiceStatusDraft, inv.Status)
		assert.Equal(t, 2311, inv.SONumber)
		assert.Equal(t, 1205, inv.SOEntry)
		assert.Equal(t, 7, inv.UserSign)
		assert.Equal(t, 3, inv.BusinessPlaceID)
	})

	t.Run("requires a sales order entry", func(t *testing.T) {
		_, err := NewSalesOrderInvoice("INV-00001", 2311, 74, 0, "C20000", "", "", 0, 0, uuid.New(), "")

		assert.Error(t, err)
	})
}

func TestInvoiceStatus_Transitions(t *testing.T) {
	cases := []struct {
		from    InvoiceStatus
		to      InvoiceStatus
		allowed bool
	}{
		{InvoiceStatusDraft, InvoiceStatusValidated, true},
		{InvoiceStatusDraft, InvoiceStatusPosted, false},
		{InvoiceStatusValidated, InvoiceStatusPosted, true},
		{InvoiceStatusValidated, InvoiceStatusFailed, true},
		{InvoiceStatusFailed, InvoiceStatusValidated, true},
		{InvoiceStatusFailed, InvoiceStatusPosted, false},
		{InvoiceStatusPosted, InvoiceStatusValidated, false},
		{InvoiceStatusPosted, InvoiceStatusFailed, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestSalesOrderInvoice_Scanning(t *testing.T) {
	t.Run("serial count becomes validated quantity", func(t *testing.T) {
		inv := createTestInvoice(t)
		line, err := inv.AddLine(0, "LAPTOP-01", "", decimal.NewFromInt(2), "WH-MAIN", true)
		require.NoError(t, err)

		require.NoError(t, inv.AddLineSerial(line.ID, "SN-1001"))

		assert.True(t, line.ValidatedQuantity.Equal(decimal.NewFromInt(1)))
	})

	t.Run("rejects duplicate serial on the invoice", func(t *testing.T) {
		inv := createTestInvoice(t)
		line, err := inv.AddLine(0, "LAPTOP-01", "", decimal.NewFromInt(2), "WH-MAIN", true)
		require.NoError(t, err)
		require.NoError(t, inv.AddLineSerial(line.ID, "SN-1001"))

		err = inv.AddLineSerial(line.ID, "SN-1001")

		assert.ErrorIs(t, err, shared.ErrSerialDuplicate)
	})

	t.Run("rejects serial beyond open quantity", func(t *testing.T) {
		inv := createTestInvoice(t)
		line, err := inv.AddLine(0, "LAPTOP-01", "", decimal.NewFromInt(1), "WH-MAIN", true)
		require.NoError(t, err)
		require.NoError(t, inv.AddLineSerial(line.ID, "SN-1001"))

		err = inv.AddLineSerial(line.ID, "SN-1002")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "limited to 1")
	})

	t.Run("finds line by item code for scans", func(t *testing.T) {
		inv := createTestInvoice(t)
		_, err := inv.AddLine(0, "LAPTOP-01", "", decimal.NewFromInt(2), "WH-MAIN", true)
		require.NoError(t, err)

		line := inv.FindLineByItemCode("LAPTOP-01")

		require.NotNil(t, line)
		assert.Equal(t, 0, line.BaseLineNumber)
		assert.Nil(t, inv.FindLineByItemCode("UNKNOWN"))
	})

	t.Run("non-serial quantity capped at open quantity", func(t *testing.T) {
		inv := createTestInvoice(t)
		line, err := inv.AddLine(1, "CABLE-HDMI", "", decimal.NewFromInt(10), "WH-MAIN", false)
		require.NoError(t, err)

		err = inv.SetValidatedQuantity(line.ID, decimal.NewFromInt(12))
		assert.Error(t, err)

		require.NoError(t, inv.SetValidatedQuantity(line.ID, decimal.NewFromInt(10)))
		assert.True(t, line.ValidatedQuantity.Equal(decimal.NewFromInt(10)))
	})

	t.Run("removing a serial lowers validated quantity", func(t *testing.T) {
		inv := createTestInvoice(t)
		line, err := inv.AddLine(0, "LAPTOP-01", "", decimal.NewFromInt(2), "WH-MAIN", true)
		require.NoError(t, err)
		require.NoError(t, inv.AddLineSerial(line.ID, "SN-1001"))
		require.NoError(t, inv.AddLineSerial(line.ID, "SN-1002"))

		require.NoError(t, inv.RemoveLineSerial(line.ID, "SN-1001"))

		assert.True(t, line.ValidatedQuantity.Equal(decimal.NewFromInt(1)))
	})
}

func TestSalesOrderInvoice_Validate(t *testing.T) {
	t.Run("rejects empty invoice", func(t *testing.T) {
		inv := createTestInvoice(t)

		err := inv.Validate()

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no lines")
	})

	t.Run("rejects line with nothing validated", func(t *testing.T) {
		inv := createTestInvoice(t)
		_, err := inv.AddLine(0, "LAPTOP-01", "", decimal.NewFromInt(2), "WH-MAIN", true)
		require.NoError(t, err)

		err = inv.Validate()

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Nothing validated")
	})

	t.Run("freezes lines after validation", func(t *testing.T) {
		inv := validatedInvoice(t)

		assert.Equal(t, InvoiceStatusValidated, inv.Status)

		err := inv.AddLineSerial(inv.Lines[0].ID, "SN-9999")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "draft")
	})

	t.Run("cannot validate twice", func(t *testing.T) {
		inv := validatedInvoice(t)

		err := inv.Validate()

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Cannot transition from validated")
	})
}

func TestSalesOrderInvoice_Posting(t *testing.T) {
	t.Run("only validated invoices can post", func(t *testing.T) {
		inv := createTestInvoice(t)

		assert.Error(t, inv.CanPost())

		inv = validatedInvoice(t)
		assert.NoError(t, inv.CanPost())
	})

	t.Run("mark posted stores sap references", func(t *testing.T) {
		inv := validatedInvoice(t)

		require.NoError(t, inv.MarkPosted("8009", 5120, false))

		assert.Equal(t, InvoiceStatusPosted, inv.Status)
		assert.Equal(t, "8009", inv.SAPDocNumber)
		assert.False(t, inv.PostedAsDraft)
	})

	t.Run("draft posting is recorded", func(t *testing.T) {
		inv := validatedInvoice(t)

		require.NoError(t, inv.MarkPosted("312", 312, true))

		assert.True(t, inv.PostedAsDraft)
	})

	t.Run("transient failure keeps invoice validated", func(t *testing.T) {
		inv := validatedInvoice(t)

		inv.RecordPostingFailure("gateway timeout")

		assert.Equal(t, InvoiceStatusValidated, inv.Status)
		assert.Equal(t, "gateway timeout", inv.PostingError)
	})

	t.Run("exhausted retries park the invoice in failed", func(t *testing.T) {
		inv := validatedInvoice(t)

		require.NoError(t, inv.MarkPostingFailed("customer is on credit hold"))

		assert.Equal(t, InvoiceStatusFailed, inv.Status)
		assert.Error(t, inv.CanPost())
	})

	t.Run("failed invoice can be reset and posted again", func(t *testing.T) {
		inv := validatedInvoice(t)
		require.NoError(t, inv.MarkPostingFailed("credit hold"))

		require.NoError(t, inv.ResetForRetry())

		assert.Equal(t, InvoiceStatusValidated, inv.Status)
		assert.Empty(t, inv.PostingError)
		require.NoError(t, inv.MarkPosted("8010", 5121, false))
	})
}
