package servicelayer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms/backend/internal/domain/sap"
	"github.com/wms/backend/internal/infrastructure/config"
)

// newTestServer fakes a Service Layer instance: it answers /Login with a
// B1SESSION cookie and delegates everything else to the handler.
func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()

	loginCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == loginPath {
			loginCount++
			var req loginRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "TESTDB", req.CompanyDB)

			http.SetCookie(w, &http.Cookie{Name: "B1SESSION", Value: "session-1"})
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"SessionId":"session-1","SessionTimeout":30}`))
			return
		}
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(config.SAPConfig{
		BaseURL:    server.URL,
		CompanyDB:  "TESTDB",
		Username:   "manager",
		Password:   "secret",
		Timeout:    5 * time.Second,
		SessionTTL: 25 * time.Minute,
	})
	require.NoError(t, err)

	return server, client
}

func TestNewClient_NotConfigured(t *testing.T) {
	_, err := NewClient(config.SAPConfig{})
	assert.ErrorIs(t, err, sap.ErrNotConfigured)
}

func TestClient_Offline(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	assert.False(t, client.Offline())
}

func TestClient_SessionReuse(t *testing.T) {
	requests := 0
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		cookie, err := r.Cookie("B1SESSION")
		require.NoError(t, err)
		assert.Equal(t, "session-1", cookie.Value)
		_, _ = w.Write([]byte(`{"value":[]}`))
	})

	ctx := context.Background()
	_, err := client.ListSalesOrderSeries(ctx)
	require.NoError(t, err)
	_, err = client.ListSalesOrderSeries(ctx)
	require.NoError(t, err)

	// Both calls carried a session; the cached one was reused
	assert.Equal(t, 2, requests)
	sessionID, err := client.sessions.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "session-1", sessionID)
}

func TestClient_ReloginOnExpiredSession(t *testing.T) {
	attempts := 0
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":301,"message":{"value":"Invalid session."}}}`))
			return
		}
		_, _ = w.Write([]byte(`{"value":[{"Series":12,"SeriesName":"Primary"}]}`))
	})

	// Seed a stale session so the first request hits the 401 path
	require.NoError(t, client.sessions.Set(context.Background(), "stale", time.Minute))

	series, err := client.ListSalesOrderSeries(context.Background())
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, 12, series[0].Series)
	assert.Equal(t, 2, attempts)
}

func TestClient_AuthFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":10,"message":{"value":"Login failed"}}}`))
	}))
	defer server.Close()

	client, err := NewClient(config.SAPConfig{
		BaseURL:   server.URL,
		CompanyDB: "TESTDB",
		Username:  "manager",
		Password:  "wrong",
		Timeout:   5 * time.Second,
	})
	require.NoError(t, err)

	err = client.Ping(context.Background())
	assert.ErrorIs(t, err, sap.ErrAuthFailed)
}

func TestClient_Unavailable(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := client.Ping(context.Background())
	assert.ErrorIs(t, err, sap.ErrUnavailable)
}

func TestClient_ValidateSerial(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/SQLQueries('Series_Validation')/List", r.URL.Path)

		var req sqlQueryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "whsCode='WH01'&itemCode='ITM-100'&series='SN-001'", req.ParamList)

		_, _ = w.Write([]byte(`{"value":[{"ItemCode":"ITM-100","ItemName":"Router","WhsCode":"WH01","DistNumber":"SN-001"}]}`))
	})

	validation, err := client.ValidateSerial(context.Background(), "WH01", "ITM-100", "SN-001")
	require.NoError(t, err)
	assert.Equal(t, "ITM-100", validation.ItemCode)
	assert.Equal(t, "Router", validation.ItemName)
	assert.Equal(t, "WH01", validation.WarehouseCode)
	assert.Equal(t, "SN-001", validation.SerialNumber)
}

func TestClient_ValidateSerial_NotFound(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"value":[]}`))
	})

	_, err := client.ValidateSerial(context.Background(), "WH01", "ITM-100", "MISSING")
	assert.ErrorIs(t, err, sap.ErrSerialNotFound)
}

func TestClient_GetSerialSystemNumber(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/SerialNumberDetails", r.URL.Path)
		assert.Equal(t, "SystemNumber", r.URL.Query().Get("$select"))
		assert.Equal(t, "SerialNumber eq 'SN-001' and ItemCode eq 'ITM-100'", r.URL.Query().Get("$filter"))

		_, _ = w.Write([]byte(`{"value":[{"SystemNumber":42}]}`))
	})

	systemNumber, err := client.GetSerialSystemNumber(context.Background(), "ITM-100", "SN-001")
	require.NoError(t, err)
	assert.Equal(t, 42, systemNumber)
}

func TestClient_CheckItemStock(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/SQLQueries('Quantity_Check')/List", r.URL.Path)

		var req sqlQueryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "whCode='WH01'&itemCode='ITM-200'", req.ParamList)

		_, _ = w.Write([]byte(`{"value":[{"ItemCode":"ITM-200","ManSerNum":"N","OnHand":37.5}]}`))
	})

	stock, err := client.CheckItemStock(context.Background(), "WH01", "ITM-200")
	require.NoError(t, err)
	assert.Equal(t, "ITM-200", stock.ItemCode)
	assert.False(t, stock.SerialManaged)
	assert.Equal(t, "37.5", stock.OnHand.String())
}

func TestClient_CheckItemStock_NotFound(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"value":[]}`))
	})

	_, err := client.CheckItemStock(context.Background(), "WH01", "MISSING")
	assert.ErrorIs(t, err, sap.ErrItemNotFound)
}

func TestClient_FindSalesOrderEntry(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/SQLQueries('Get_SO_Details')/List", r.URL.Path)

		var req sqlQueryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "SONumber='100045'&Series='12'", req.ParamList)

		_, _ = w.Write([]byte(`{"value":[{"DocEntry":987}]}`))
	})

	docEntry, err := client.FindSalesOrderEntry(context.Background(), "100045", 12)
	require.NoError(t, err)
	assert.Equal(t, 987, docEntry)
}

func TestClient_FindSalesOrderEntry_NotFound(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"value":[]}`))
	})

	_, err := client.FindSalesOrderEntry(context.Background(), "999999", 12)
	assert.ErrorIs(t, err, sap.ErrSalesOrderNotFound)
}

func TestClient_GetSalesOrder(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Orders", r.URL.Path)
		assert.Equal(t, "DocEntry eq 987", r.URL.Query().Get("$filter"))

		_, _ = w.Write([]byte(`{"value":[{
			"DocEntry":987,"DocNum":100045,"CardCode":"C001","CardName":"Acme",
			"Address":"1 Main St","UserSign":7,"BPL_IDAssignedToInvoice":2,
			"DocumentStatus":"bost_Open",
			"DocumentLines":[
				{"LineNum":0,"ItemCode":"ITM-100","ItemDescription":"Router","Quantity":5,"RemainingOpenQuantity":3,"WarehouseCode":"WH01","LineStatus":"bost_Open"},
				{"LineNum":1,"ItemCode":"ITM-200","ItemDescription":"Switch","Quantity":2,"RemainingOpenQuantity":0,"WarehouseCode":"WH01","LineStatus":"bost_Close"}
			]}]}`))
	})

	order, err := client.GetSalesOrder(context.Background(), 987)
	require.NoError(t, err)
	assert.Equal(t, 987, order.DocEntry)
	assert.Equal(t, 100045, order.DocNum)
	assert.Equal(t, "C001", order.CardCode)
	assert.Equal(t, 2, order.BusinessPlaceID)
	assert.True(t, order.IsOpen())

	// Closed lines are dropped
	require.Len(t, order.Lines, 1)
	assert.Equal(t, "ITM-100", order.Lines[0].ItemCode)
	assert.Equal(t, "3", order.Lines[0].OpenQuantity.String())
}

func TestClient_GetSalesOrder_Closed(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"value":[{"DocEntry":987,"DocNum":100045,"DocumentStatus":"bost_Close","DocumentLines":[]}]}`))
	})

	_, err := client.GetSalesOrder(context.Background(), 987)
	assert.ErrorIs(t, err, sap.ErrSalesOrderClosed)
}

func TestClient_PostStockTransfer(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/StockTransfers", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var doc sap.StockTransferDocument
		require.NoError(t, json.NewDecoder(r.Body).Decode(&doc))
		assert.Equal(t, "WH01", doc.FromWarehouse)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"DocEntry":501,"DocNum":300077}`))
	})

	result, err := client.PostStockTransfer(context.Background(), &sap.StockTransferDocument{
		FromWarehouse: "WH01",
		ToWarehouse:   "WH02",
	})
	require.NoError(t, err)
	assert.Equal(t, 501, result.DocEntry)
	assert.Equal(t, 300077, result.DocNum)
	assert.Equal(t, "300077", result.DocumentNumber())
}

func TestClient_PostStockTransfer_ChunksLargeTransfers(t *testing.T) {
	var posted []sap.StockTransferDocument
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/StockTransfers", r.URL.Path)

		var doc sap.StockTransferDocument
		require.NoError(t, json.NewDecoder(r.Body).Decode(&doc))
		posted = append(posted, doc)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"DocEntry":600,"DocNum":300100}`))
	})

	serials := make([]sap.TransferSerialNumber, 1000)
	for i := range serials {
		serials[i] = sap.TransferSerialNumber{SystemSerialNumber: i + 1}
	}
	doc := &sap.StockTransferDocument{
		FromWarehouse: "WH01",
		ToWarehouse:   "WH02",
		StockTransferLines: []sap.StockTransferLine{
			{ItemCode: "A1001", Quantity: 1000, WarehouseCode: "WH02", SerialNumbers: serials},
		},
	}

	result, err := client.PostStockTransfer(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, 300100, result.DocNum)

	require.Len(t, posted, 2)
	assert.Len(t, posted[0].StockTransferLines[0].SerialNumbers, 800)
	assert.Equal(t, float64(800), posted[0].StockTransferLines[0].Quantity)
	assert.Len(t, posted[1].StockTransferLines[0].SerialNumbers, 200)
	assert.Equal(t, float64(200), posted[1].StockTransferLines[0].Quantity)
	assert.Equal(t, "WH01", posted[1].FromWarehouse)
}

func TestStockTransferTimeout(t *testing.T) {
	assert.Equal(t, 60*time.Second, stockTransferTimeout(1))
	assert.Equal(t, 60*time.Second, stockTransferTimeout(100))
	assert.Equal(t, 120*time.Second, stockTransferTimeout(101))
	assert.Equal(t, 120*time.Second, stockTransferTimeout(500))
	assert.Equal(t, 300*time.Second, stockTransferTimeout(501))
}

func TestChunkStockTransfer_SplitsAcrossLines(t *testing.T) {
	mkSerials := func(n int) []sap.TransferSerialNumber {
		out := make([]sap.TransferSerialNumber, n)
		for i := range out {
			out[i] = sap.TransferSerialNumber{SystemSerialNumber: i + 1}
		}
		return out
	}
	doc := &sap.StockTransferDocument{
		FromWarehouse: "WH01",
		ToWarehouse:   "WH02",
		StockTransferLines: []sap.StockTransferLine{
			{ItemCode: "A1001", Quantity: 3, SerialNumbers: mkSerials(3)},
			{ItemCode: "B2001", Quantity: 4, SerialNumbers: mkSerials(4)},
			{ItemCode: "C3001", Quantity: 10}, // non-serial
		},
	}

	chunks := chunkStockTransfer(doc, 5)
	require.Len(t, chunks, 2)

	// First chunk: line A whole plus the first two serials of line B
	require.Len(t, chunks[0].StockTransferLines, 2)
	assert.Equal(t, 0, chunks[0].StockTransferLines[0].LineNum)
	assert.Len(t, chunks[0].StockTransferLines[0].SerialNumbers, 3)
	assert.Equal(t, 1, chunks[0].StockTransferLines[1].LineNum)
	assert.Len(t, chunks[0].StockTransferLines[1].SerialNumbers, 2)

	// Second chunk: remainder of line B, then the non-serial line
	require.Len(t, chunks[1].StockTransferLines, 2)
	assert.Equal(t, "B2001", chunks[1].StockTransferLines[0].ItemCode)
	assert.Len(t, chunks[1].StockTransferLines[0].SerialNumbers, 2)
	assert.Equal(t, "C3001", chunks[1].StockTransferLines[1].ItemCode)
	assert.Equal(t, float64(10), chunks[1].StockTransferLines[1].Quantity)
}

func TestClient_PostPickList_AbsoluteEntry(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/PickLists", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"Absoluteentry":61}`))
	})

	result, err := client.PostPickList(context.Background(), &sap.PickListDocument{Name: "picker"})
	require.NoError(t, err)
	assert.Equal(t, 61, result.AbsoluteEntry)
	assert.Equal(t, "61", result.DocumentNumber())
}

func TestClient_PostInvoice_Rejected(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":-5002,"message":{"value":"Item quantity falls below minimum"}}}`))
	})

	_, err := client.PostInvoice(context.Background(), &sap.InvoiceDocument{CardCode: "C001"})
	require.Error(t, err)
	assert.ErrorIs(t, err, sap.ErrRejected)
	assert.Contains(t, err.Error(), "Item quantity falls below minimum")
}

func TestClient_PostGoodsReceipt_InvalidResponse(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := client.PostGoodsReceipt(context.Background(), &sap.GoodsReceiptDocument{CardCode: "V001"})
	assert.ErrorIs(t, err, sap.ErrInvalidResponse)
}

func TestServiceLayerError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "standard envelope",
			body: `{"error":{"code":-5002,"message":{"value":"bad document"}}}`,
			want: "-5002 - bad document",
		},
		{
			name: "plain text body",
			body: "gateway timeout",
			want: "gateway timeout",
		},
		{
			name: "empty body",
			body: "",
			want: "no error detail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, serviceLayerError([]byte(tt.body)))
		})
	}
}

func TestMemorySessionStore(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	sessionID, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessionID)

	require.NoError(t, store.Set(ctx, "abc", time.Minute))
	sessionID, err = store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", sessionID)

	require.NoError(t, store.Clear(ctx))
	sessionID, err = store.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessionID)
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "abc", -time.Second))
	sessionID, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessionID)
}

func TestOfflineClient(t *testing.T) {
	client := NewOfflineClient(nil)
	ctx := context.Background()

	assert.True(t, client.Offline())
	assert.NoError(t, client.Ping(ctx))

	_, err := client.ValidateSerial(ctx, "WH01", "ITM-100", "SN-001")
	assert.ErrorIs(t, err, sap.ErrNotConfigured)
	_, err = client.GetSalesOrder(ctx, 1)
	assert.ErrorIs(t, err, sap.ErrNotConfigured)

	first, err := client.PostInvoice(ctx, &sap.InvoiceDocument{})
	require.NoError(t, err)
	second, err := client.PostStockTransfer(ctx, &sap.StockTransferDocument{})
	require.NoError(t, err)

	// Simulated document numbers are distinct and monotonic
	assert.Equal(t, first.DocNum+1, second.DocNum)
	assert.False(t, errors.Is(err, sap.ErrUnavailable))
}
