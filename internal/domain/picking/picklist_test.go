package picking

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms/backend/internal/domain/shared"
)

func createTestPickList(t *testing.T) *PickList {
	t.Helper()
	pl, err := NewPickList("PL-00017", 1205, 2311, "C20000", "Maxi-Teq", "WH-MAIN", uuid.New(), "Picker One")
	require.NoError(t, err)
	return pl
}

func pickedList(t *testing.T) *PickList {
	t.Helper()
	pl := createTestPickList(t)
	line, err := pl.AddLine(0, "LAPTOP-01", "Laptop 14in", decimal.NewFromInt(2), "", true)
	require.NoError(t, err)
	require.NoError(t, pl.AddLineSerial(line.ID, "SN-1001", 310))
	require.NoError(t, pl.AddLineSerial(line.ID, "SN-1002", 311))
	return pl
}

func TestNewPickList(t *testing.T) {
	t.Run("creates draft pick list", func(t *testing.T) {
		pl := createTestPickList(t)

		assert.Equal(t, shared.DocumentStatusDraft, pl.Status)
		assert.Equal(t, 1205, pl.OrderEntry)
		assert.Equal(t, "C20000", pl.CardCode)
		assert.Empty(t, pl.Lines)
	})

	t.Run("requires a sales order entry", func(t *testing.T) {
		_, err := NewPickList("PL-00001", 0, 0, "C20000", "", "WH-MAIN", uuid.New(), "")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Sales order entry")
	})

	t.Run("requires a customer", func(t *testing.T) {
		_, err := NewPickList("PL-00001", 1205, 2311, "  ", "", "WH-MAIN", uuid.New(), "")

		assert.Error(t, err)
	})
}

func TestPickList_AddLine(t *testing.T) {
	t.Run("adds line with order row reference", func(t *testing.T) {
		pl := createTestPickList(t)

		line, err := pl.AddLine(2, "CABLE-HDMI", "HDMI cable", decimal.NewFromInt(10), "", false)

		require.NoError(t, err)
		assert.Equal(t, 2, line.OrderRowID)
		assert.Equal(t, "WH-MAIN", line.WarehouseCode)
		assert.True(t, line.PickedQuantity.IsZero())
	})

	t.Run("rejects duplicate order row", func(t *testing.T) {
		pl := createTestPickList(t)
		_, err := pl.AddLine(0, "LAPTOP-01", "", decimal.NewFromInt(2), "", true)
		require.NoError(t, err)

		_, err = pl.AddLine(0, "LAPTOP-01", "", decimal.NewFromInt(2), "", true)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already on this pick list")
	})

	t.Run("rejects zero open quantity", func(t *testing.T) {
		pl := createTestPickList(t)

		_, err := pl.AddLine(0, "LAPTOP-01", "", decimal.Zero, "", true)

		assert.Error(t, err)
	})
}

func TestPickList_Picking(t *testing.T) {
	t.Run("serial pick counts toward picked quantity", func(t *testing.T) {
		pl := createTestPickList(t)
		line, err := pl.AddLine(0, "LAPTOP-01", "", decimal.NewFromInt(2), "", true)
		require.NoError(t, err)

		require.NoError(t, pl.AddLineSerial(line.ID, "SN-1001", 310))

		assert.True(t, line.PickedQuantity.Equal(decimal.NewFromInt(1)))
		assert.Equal(t, 310, line.Serials[0].SystemNumber)
	})

	t.Run("rejects serial beyond open quantity", func(t *testing.T) {
		pl := createTestPickList(t)
		line, err := pl.AddLine(0, "LAPTOP-01", "", decimal.NewFromInt(1), "", true)
		require.NoError(t, err)
		require.NoError(t, pl.AddLineSerial(line.ID, "SN-1001", 310))

		err = pl.AddLineSerial(line.ID, "SN-1002", 311)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "limited to 1")
	})

	t.Run("rejects duplicate serial across lines", func(t *testing.T) {
		pl := createTestPickList(t)
		first, err := pl.AddLine(0, "LAPTOP-01", "", decimal.NewFromInt(1), "", true)
		require.NoError(t, err)
		second, err := pl.AddLine(1, "LAPTOP-02", "", decimal.NewFromInt(1), "", true)
		require.NoError(t, err)
		require.NoError(t, pl.AddLineSerial(first.ID, "SN-1001", 310))

		err = pl.AddLineSerial(second.ID, "SN-1001", 310)

		assert.ErrorIs(t, err, shared.ErrSerialDuplicate)
	})

	t.Run("removing serial lowers picked quantity", func(t *testing.T) {
		pl := pickedList(t)
		line := &pl.Lines[0]

		require.NoError(t, pl.RemoveLineSerial(line.ID, "SN-1001"))

		assert.True(t, line.PickedQuantity.Equal(decimal.NewFromInt(1)))
		assert.False(t, line.HasSerial("SN-1001"))
	})

	t.Run("quantity pick on serial line is rejected", func(t *testing.T) {
		pl := createTestPickList(t)
		line, err := pl.AddLine(0, "LAPTOP-01", "", decimal.NewFromInt(2), "", true)
		require.NoError(t, err)

		err = pl.SetPickedQuantity(line.ID, decimal.NewFromInt(2))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "picked by serial number")
	})

	t.Run("quantity pick capped at open quantity", func(t *testing.T) {
		pl := createTestPickList(t)
		line, err := pl.AddLine(2, "CABLE-HDMI", "", decimal.NewFromInt(10), "", false)
		require.NoError(t, err)

		err = pl.SetPickedQuantity(line.ID, decimal.NewFromInt(11))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds open quantity")

		require.NoError(t, pl.SetPickedQuantity(line.ID, decimal.NewFromInt(7)))
		assert.True(t, line.PickedQuantity.Equal(decimal.NewFromInt(7)))
	})
}

func TestPickList_Submit(t *testing.T) {
	t.Run("rejects empty pick list", func(t *testing.T) {
		pl := createTestPickList(t)

		err := pl.Submit()

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no lines")
	})

	t.Run("rejects line with nothing picked", func(t *testing.T) {
		pl := createTestPickList(t)
		_, err := pl.AddLine(0, "LAPTOP-01", "", decimal.NewFromInt(2), "", true)
		require.NoError(t, err)

		err = pl.Submit()

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Nothing picked")
	})

	t.Run("submits partially picked list", func(t *testing.T) {
		pl := createTestPickList(t)
		line, err := pl.AddLine(0, "LAPTOP-01", "", decimal.NewFromInt(2), "", true)
		require.NoError(t, err)
		require.NoError(t, pl.AddLineSerial(line.ID, "SN-1001", 310))

		err = pl.Submit()

		require.NoError(t, err)
		assert.Equal(t, shared.DocumentStatusSubmitted, pl.Status)
	})
}

func TestPickList_ApprovalAndPosting(t *testing.T) {
	t.Run("cannot approve twice", func(t *testing.T) {
		pl := pickedList(t)
		require.NoError(t, pl.Submit())
		require.NoError(t, pl.Approve(uuid.New(), "QC Lead", ""))

		err := pl.Approve(uuid.New(), "QC Lead", "")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Cannot transition from qc_approved")
	})

	t.Run("mark posted stores absolute entry", func(t *testing.T) {
		pl := pickedList(t)
		require.NoError(t, pl.Submit())
		require.NoError(t, pl.Approve(uuid.New(), "QC Lead", ""))

		require.NoError(t, pl.MarkPosted(90210))

		assert.Equal(t, shared.DocumentStatusPosted, pl.Status)
		assert.Equal(t, 90210, pl.SAPAbsoluteEntry)
		assert.Empty(t, pl.PostingError)
	})

	t.Run("posting failure keeps list approved and retryable", func(t *testing.T) {
		pl := pickedList(t)
		require.NoError(t, pl.Submit())
		require.NoError(t, pl.Approve(uuid.New(), "QC Lead", ""))

		pl.RecordPostingFailure("service layer timeout")

		assert.Equal(t, shared.DocumentStatusQCApproved, pl.Status)
		assert.Equal(t, "service layer timeout", pl.PostingError)
		assert.NoError(t, pl.CanPost())

		require.NoError(t, pl.MarkPosted(90211))
		assert.Empty(t, pl.PostingError)
	})

	t.Run("reject and reopen", func(t *testing.T) {
		pl := pickedList(t)
		require.NoError(t, pl.Submit())
		require.NoError(t, pl.Reject(uuid.New(), "QC Lead", "short pick"))

		assert.Equal(t, shared.DocumentStatusRejected, pl.Status)

		require.NoError(t, pl.Reopen())
		assert.Equal(t, shared.DocumentStatusDraft, pl.Status)
		assert.Empty(t, pl.QCNotes)
	})
}

func TestPickList_TotalPickedQuantity(t *testing.T) {
	pl := pickedList(t)
	line, err := pl.AddLine(2, "CABLE-HDMI", "", decimal.NewFromInt(10), "", false)
	require.NoError(t, err)
	require.NoError(t, pl.SetPickedQuantity(line.ID, decimal.NewFromInt(5)))

	assert.True(t, pl.TotalPickedQuantity().Equal(decimal.NewFromInt(7)))
}
