package servicelayer

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/sap"
	"github.com/wms/backend/internal/infrastructure/config"
)

const (
	// maxResponseSize limits the response body size to prevent memory exhaustion
	maxResponseSize = 10 * 1024 * 1024 // 10MB max response

	loginPath = "/Login"
)

// Client implements sap.ServiceLayer against a live B1 Service Layer instance.
// Sessions are cached in a SessionStore and re-established once on a 401, so
// concurrent workers and API handlers can share one B1SESSION cookie.
type Client struct {
	cfg        config.SAPConfig
	httpClient *http.Client
	sessions   SessionStore
	logger     *zap.Logger
}

// ClientOption is a functional option for configuring the client
type ClientOption func(*Client)

// WithLogger sets the logger for the client
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithSessionStore sets the shared session store. The default is an in-process
// store; multi-process deployments should pass the Redis store so the login
// quota on the B1 side is not exhausted.
func WithSessionStore(store SessionStore) ClientOption {
	return func(c *Client) {
		c.sessions = store
	}
}

// WithHTTPClient overrides the HTTP client (used in tests)
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Service Layer client from configuration
func NewClient(cfg config.SAPConfig, opts ...ClientOption) (*Client, error) {
	if cfg.BaseURL == "" || cfg.CompanyDB == "" || cfg.Username == "" {
		return nil, sap.ErrNotConfigured
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		// Many on-premise B1 instances run the Service Layer on a
		// self-signed certificate.
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	client := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		sessions: NewMemorySessionStore(),
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Offline reports whether the client skips SAP calls. The live client never does.
func (c *Client) Offline() bool {
	return false
}

// Ping performs a minimal authenticated query to verify connectivity
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, "/Orders?"+odataQuery("DocEntry", "", 1), nil)
	return err
}

// ---------------------------------------------------------------------------
// Session Handling
// ---------------------------------------------------------------------------

type loginRequest struct {
	CompanyDB string `json:"CompanyDB"`
	UserName  string `json:"UserName"`
	Password  string `json:"Password"`
	Language  int    `json:"Language,omitempty"`
}

// login posts credentials and caches the returned B1SESSION cookie
func (c *Client) login(ctx context.Context) (string, error) {
	body, err := json.Marshal(loginRequest{
		CompanyDB: c.cfg.CompanyDB,
		UserName:  c.cfg.Username,
		Password:  c.cfg.Password,
		Language:  c.cfg.Language,
	})
	if err != nil {
		return "", fmt.Errorf("servicelayer: failed to marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+loginPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("servicelayer: failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", sap.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("servicelayer: failed to read login response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return "", fmt.Errorf("%w: %s", sap.ErrAuthFailed, serviceLayerError(respBody))
	}
	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("%w: HTTP %d", sap.ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: %s", sap.ErrAuthFailed, serviceLayerError(respBody))
	}

	var sessionID string
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "B1SESSION" {
			sessionID = cookie.Value
			break
		}
	}
	if sessionID == "" {
		return "", fmt.Errorf("%w: login response missing B1SESSION cookie", sap.ErrInvalidResponse)
	}

	if err := c.sessions.Set(ctx, sessionID, c.cfg.SessionTTL); err != nil {
		// A failed cache write only costs an extra login next time
		c.logger.Warn("failed to cache service layer session", zap.Error(err))
	}

	c.logger.Debug("logged in to service layer", zap.String("company_db", c.cfg.CompanyDB))
	return sessionID, nil
}

// ensureSession returns a cached session or logs in for a fresh one
func (c *Client) ensureSession(ctx context.Context) (string, error) {
	sessionID, err := c.sessions.Get(ctx)
	if err != nil {
		c.logger.Warn("session store read failed", zap.Error(err))
	}
	if sessionID != "" {
		return sessionID, nil
	}
	return c.login(ctx)
}

// ---------------------------------------------------------------------------
// Request Plumbing
// ---------------------------------------------------------------------------

// doRequest performs an authenticated Service Layer request. On a 401 the
// cached session is discarded and the request is retried once with a fresh
// login.
func (c *Client) doRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	return c.doRequestClient(ctx, c.httpClient, method, path, payload)
}

func (c *Client) doRequestClient(ctx context.Context, httpClient *http.Client, method, path string, payload any) ([]byte, error) {
	var bodyBytes []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("servicelayer: failed to marshal request: %w", err)
		}
		bodyBytes = b
	}

	relogin := false
	for {
		sessionID, err := c.ensureSession(ctx)
		if err != nil {
			return nil, err
		}

		var reqBody io.Reader
		if bodyBytes != nil {
			reqBody = bytes.NewReader(bodyBytes)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reqBody)
		if err != nil {
			return nil, fmt.Errorf("servicelayer: failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.AddCookie(&http.Cookie{Name: "B1SESSION", Value: sessionID})

		resp, err := httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", sap.ErrUnavailable, err)
		}

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("servicelayer: failed to read response: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			if relogin {
				return nil, fmt.Errorf("%w: %s", sap.ErrAuthFailed, serviceLayerError(respBody))
			}
			// Session expired on the B1 side before our TTL ran out
			if clearErr := c.sessions.Clear(ctx); clearErr != nil {
				c.logger.Warn("failed to clear expired session", zap.Error(clearErr))
			}
			relogin = true
			continue
		case resp.StatusCode >= 500:
			return nil, fmt.Errorf("%w: HTTP %d", sap.ErrUnavailable, resp.StatusCode)
		case resp.StatusCode >= 400:
			return nil, fmt.Errorf("%w: %s", sap.ErrRejected, serviceLayerError(respBody))
		}

		return respBody, nil
	}
}

// serviceLayerErrorEnvelope is the Service Layer error body shape
type serviceLayerErrorEnvelope struct {
	Error struct {
		Code    json.Number `json:"code"`
		Message struct {
			Value string `json:"value"`
		} `json:"message"`
	} `json:"error"`
}

// serviceLayerError extracts the human-readable message from an error body
func serviceLayerError(body []byte) string {
	var envelope serviceLayerErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message.Value != "" {
		if envelope.Error.Code != "" {
			return fmt.Sprintf("%s - %s", envelope.Error.Code, envelope.Error.Message.Value)
		}
		return envelope.Error.Message.Value
	}
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "no error detail"
	}
	return trimmed
}

// odataQuery builds an escaped $select/$filter/$top query string
func odataQuery(selectFields, filter string, top int) string {
	values := url.Values{}
	if selectFields != "" {
		values.Set("$select", selectFields)
	}
	if filter != "" {
		values.Set("$filter", filter)
	}
	if top > 0 {
		values.Set("$top", fmt.Sprintf("%d", top))
	}
	return values.Encode()
}

// sqlQueryPath builds the path for a saved SQLQueries invocation
func sqlQueryPath(name string) string {
	return fmt.Sprintf("/SQLQueries('%s')/List", name)
}

// sqlQueryRequest is the body of a saved query invocation. ParamList carries
// the query parameters in name='value' pairs joined with '&'.
type sqlQueryRequest struct {
	ParamList string `json:"ParamList,omitempty"`
}

// valueEnvelope is the standard OData collection wrapper
type valueEnvelope[T any] struct {
	Value []T `json:"value"`
}

func decodeValues[T any](body []byte) ([]T, error) {
	var envelope valueEnvelope[T]
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", sap.ErrInvalidResponse, err)
	}
	return envelope.Value, nil
}

// ---------------------------------------------------------------------------
// Lookups
// ---------------------------------------------------------------------------

// ValidateSerial checks that a serial exists in the warehouse's on-hand stock
// via the Series_Validation saved query.
func (c *Client) ValidateSerial(ctx context.Context, warehouseCode, itemCode, serial string) (*sap.SerialValidation, error) {
	body, err := c.doRequest(ctx, http.MethodPost, sqlQueryPath("Series_Validation"), sqlQueryRequest{
		ParamList: fmt.Sprintf("whsCode='%s'&itemCode='%s'&series='%s'", warehouseCode, itemCode, serial),
	})
	if err != nil {
		return nil, err
	}

	type serialRow struct {
		ItemCode   string `json:"ItemCode"`
		ItemName   string `json:"ItemName"`
		WhsCode    string `json:"WhsCode"`
		DistNumber string `json:"DistNumber"`
	}
	rows, err := decodeValues[serialRow](body)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: serial %s for item %s in warehouse %s", sap.ErrSerialNotFound, serial, itemCode, warehouseCode)
	}

	row := rows[0]
	return &sap.SerialValidation{
		ItemCode:      row.ItemCode,
		ItemName:      row.ItemName,
		WarehouseCode: row.WhsCode,
		SerialNumber:  row.DistNumber,
	}, nil
}

// GetSerialSystemNumber resolves the SAP system number for an internal serial
func (c *Client) GetSerialSystemNumber(ctx context.Context, itemCode, serial string) (int, error) {
	filter := fmt.Sprintf("SerialNumber eq '%s'", serial)
	if itemCode != "" {
		filter += fmt.Sprintf(" and ItemCode eq '%s'", itemCode)
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/SerialNumberDetails?"+odataQuery("SystemNumber", filter, 0), nil)
	if err != nil {
		return 0, err
	}

	type systemNumberRow struct {
		SystemNumber int `json:"SystemNumber"`
	}
	rows, err := decodeValues[systemNumberRow](body)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("%w: serial %s", sap.ErrSerialNotFound, serial)
	}
	return rows[0].SystemNumber, nil
}

// CheckItemStock returns the serial-management flag and on-hand quantity via
// the Quantity_Check saved query.
func (c *Client) CheckItemStock(ctx context.Context, warehouseCode, itemCode string) (*sap.ItemStock, error) {
	body, err := c.doRequest(ctx, http.MethodPost, sqlQueryPath("Quantity_Check"), sqlQueryRequest{
		ParamList: fmt.Sprintf("whCode='%s'&itemCode='%s'", warehouseCode, itemCode),
	})
	if err != nil {
		return nil, err
	}

	type stockRow struct {
		ItemCode  string          `json:"ItemCode"`
		ManSerNum string          `json:"ManSerNum"`
		OnHand    decimal.Decimal `json:"OnHand"`
	}
	rows, err := decodeValues[stockRow](body)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: item %s in warehouse %s", sap.ErrItemNotFound, itemCode, warehouseCode)
	}

	row := rows[0]
	itemCodeResult := row.ItemCode
	if itemCodeResult == "" {
		itemCodeResult = itemCode
	}
	return &sap.ItemStock{
		ItemCode:      itemCodeResult,
		SerialManaged: row.ManSerNum == "Y",
		OnHand:        row.OnHand,
	}, nil
}

// ListSalesOrderSeries lists the numbering series configured for sales orders
func (c *Client) ListSalesOrderSeries(ctx context.Context) ([]sap.SalesOrderSeries, error) {
	body, err := c.doRequest(ctx, http.MethodPost, sqlQueryPath("Get_SO_Series"), sqlQueryRequest{})
	if err != nil {
		return nil, err
	}

	type seriesRow struct {
		Series     int    `json:"Series"`
		SeriesName string `json:"SeriesName"`
	}
	rows, err := decodeValues[seriesRow](body)
	if err != nil {
		return nil, err
	}

	series := make([]sap.SalesOrderSeries, 0, len(rows))
	for _, row := range rows {
		series = append(series, sap.SalesOrderSeries{
			Series:     row.Series,
			SeriesName: row.SeriesName,
		})
	}
	return series, nil
}

// FindSalesOrderEntry resolves an order number within a series to its DocEntry
// via the Get_SO_Details saved query.
func (c *Client) FindSalesOrderEntry(ctx context.Context, orderNumber string, series int) (int, error) {
	body, err := c.doRequest(ctx, http.MethodPost, sqlQueryPath("Get_SO_Details"), sqlQueryRequest{
		ParamList: fmt.Sprintf("SONumber='%s'&Series='%d'", orderNumber, series),
	})
	if err != nil {
		return 0, err
	}

	type docEntryRow struct {
		DocEntry int `json:"DocEntry"`
	}
	rows, err := decodeValues[docEntryRow](body)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("%w: order %s in series %d", sap.ErrSalesOrderNotFound, orderNumber, series)
	}
	return rows[0].DocEntry, nil
}

// salesOrderResponse mirrors the Orders entity fields the warehouse flows need
type salesOrderResponse struct {
	DocEntry        int    `json:"DocEntry"`
	DocNum          int    `json:"DocNum"`
	CardCode        string `json:"CardCode"`
	CardName        string `json:"CardName"`
	Address         string `json:"Address"`
	UserSign        int    `json:"UserSign"`
	BusinessPlaceID int    `json:"BPL_IDAssignedToInvoice"`
	DocumentStatus  string `json:"DocumentStatus"`
	DocumentLines   []struct {
		LineNum               int             `json:"LineNum"`
		ItemCode              string          `json:"ItemCode"`
		ItemDescription       string          `json:"ItemDescription"`
		Quantity              decimal.Decimal `json:"Quantity"`
		RemainingOpenQuantity decimal.Decimal `json:"RemainingOpenQuantity"`
		WarehouseCode         string          `json:"WarehouseCode"`
		LineStatus            string          `json:"LineStatus"`
	} `json:"DocumentLines"`
}

// GetSalesOrder loads an order by DocEntry with only its open lines
func (c *Client) GetSalesOrder(ctx context.Context, docEntry int) (*sap.SalesOrder, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/Orders?"+odataQuery("", fmt.Sprintf("DocEntry eq %d", docEntry), 0), nil)
	if err != nil {
		return nil, err
	}

	rows, err := decodeValues[salesOrderResponse](body)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: DocEntry %d", sap.ErrSalesOrderNotFound, docEntry)
	}

	raw := rows[0]
	order := &sap.SalesOrder{
		DocEntry:        raw.DocEntry,
		DocNum:          raw.DocNum,
		CardCode:        raw.CardCode,
		CardName:        raw.CardName,
		Address:         raw.Address,
		UserSign:        raw.UserSign,
		BusinessPlaceID: raw.BusinessPlaceID,
		DocumentStatus:  raw.DocumentStatus,
	}
	if !order.IsOpen() {
		return nil, fmt.Errorf("%w: DocEntry %d has status %s", sap.ErrSalesOrderClosed, docEntry, raw.DocumentStatus)
	}

	for _, line := range raw.DocumentLines {
		domainLine := sap.SalesOrderLine{
			LineNum:         line.LineNum,
			ItemCode:        line.ItemCode,
			ItemDescription: line.ItemDescription,
			Quantity:        line.Quantity,
			OpenQuantity:    line.RemainingOpenQuantity,
			WarehouseCode:   line.WarehouseCode,
			LineStatus:      line.LineStatus,
		}
		if !domainLine.IsOpen() {
			continue
		}
		order.Lines = append(order.Lines, domainLine)
	}
	return order, nil
}

// ---------------------------------------------------------------------------
// Document Posting
// ---------------------------------------------------------------------------

// postResultResponse captures the identifying fields of a create response.
// Pick lists use Absoluteentry instead of DocEntry/DocNum.
type postResultResponse struct {
	DocEntry      int `json:"DocEntry"`
	DocNum        int `json:"DocNum"`
	AbsoluteEntry int `json:"Absoluteentry"`
}

// postDocument creates a document and extracts its identifiers
func (c *Client) postDocument(ctx context.Context, path string, doc any) (*sap.PostResult, error) {
	body, err := c.doRequest(ctx, http.MethodPost, path, doc)
	if err != nil {
		return nil, err
	}
	return parsePostResult(body)
}

func parsePostResult(body []byte) (*sap.PostResult, error) {
	var resp postResultResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", sap.ErrInvalidResponse, err)
	}
	if resp.DocEntry == 0 && resp.DocNum == 0 && resp.AbsoluteEntry == 0 {
		return nil, fmt.Errorf("%w: create response missing document identifiers", sap.ErrInvalidResponse)
	}

	return &sap.PostResult{
		DocEntry:      resp.DocEntry,
		DocNum:        resp.DocNum,
		AbsoluteEntry: resp.AbsoluteEntry,
	}, nil
}

// PostGoodsReceipt creates a PurchaseDeliveryNotes document
func (c *Client) PostGoodsReceipt(ctx context.Context, doc *sap.GoodsReceiptDocument) (*sap.PostResult, error) {
	return c.postDocument(ctx, "/PurchaseDeliveryNotes", doc)
}

const (
	// maxSerialsPerTransfer splits very large transfers into multiple
	// StockTransfers documents. The Service Layer times out on payloads
	// beyond this size regardless of the request timeout.
	maxSerialsPerTransfer = 800
)

// stockTransferTimeout scales the request timeout with payload size.
// Large serialized transfers take the B1 side minutes to commit.
func stockTransferTimeout(serialCount int) time.Duration {
	switch {
	case serialCount <= 100:
		return 60 * time.Second
	case serialCount <= 500:
		return 120 * time.Second
	default:
		return 300 * time.Second
	}
}

// PostStockTransfer creates one or more StockTransfers documents. Transfers
// above maxSerialsPerTransfer serials are posted in chunks; the result of the
// last chunk is returned and every created DocNum is logged. A failure mid-way
// leaves earlier chunks posted, surfaced through the job error for manual
// reconciliation.
func (c *Client) PostStockTransfer(ctx context.Context, doc *sap.StockTransferDocument) (*sap.PostResult, error) {
	serialCount := 0
	for _, line := range doc.StockTransferLines {
		serialCount += len(line.SerialNumbers)
	}

	httpClient := c.httpClient
	if t := stockTransferTimeout(serialCount); t > httpClient.Timeout {
		scaled := *httpClient
		scaled.Timeout = t
		httpClient = &scaled
	}

	if serialCount <= maxSerialsPerTransfer {
		return c.postStockTransferDoc(ctx, httpClient, doc)
	}

	var result *sap.PostResult
	for i, chunk := range chunkStockTransfer(doc, maxSerialsPerTransfer) {
		res, err := c.postStockTransferDoc(ctx, httpClient, chunk)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i+1, err)
		}
		c.logger.Info("posted stock transfer chunk",
			zap.Int("chunk", i+1),
			zap.Int("doc_num", res.DocNum),
			zap.Int("serials", countTransferSerials(chunk)),
		)
		result = res
	}
	return result, nil
}

func (c *Client) postStockTransferDoc(ctx context.Context, httpClient *http.Client, doc *sap.StockTransferDocument) (*sap.PostResult, error) {
	body, err := c.doRequestClient(ctx, httpClient, http.MethodPost, "/StockTransfers", doc)
	if err != nil {
		return nil, err
	}
	return parsePostResult(body)
}

func countTransferSerials(doc *sap.StockTransferDocument) int {
	n := 0
	for _, line := range doc.StockTransferLines {
		n += len(line.SerialNumbers)
	}
	return n
}

// chunkStockTransfer splits a transfer into documents of at most maxSerials
// serials each. Lines are split across chunks when needed, keeping quantity
// equal to the serial count per line and renumbering lines per chunk.
func chunkStockTransfer(doc *sap.StockTransferDocument, maxSerials int) []*sap.StockTransferDocument {
	var chunks []*sap.StockTransferDocument

	header := *doc
	header.StockTransferLines = nil

	current := header
	count := 0
	for _, line := range doc.StockTransferLines {
		serials := line.SerialNumbers
		for len(serials) > 0 {
			room := maxSerials - count
			if room == 0 {
				next := current
				chunks = append(chunks, &next)
				current = header
				count = 0
				room = maxSerials
			}
			take := len(serials)
			if take > room {
				take = room
			}
			part := line
			part.LineNum = len(current.StockTransferLines)
			part.SerialNumbers = serials[:take]
			part.Quantity = float64(take)
			current.StockTransferLines = append(current.StockTransferLines, part)
			serials = serials[take:]
			count += take
		}
		// Non-serial lines travel whole with the current chunk
		if len(line.SerialNumbers) == 0 {
			part := line
			part.LineNum = len(current.StockTransferLines)
			current.StockTransferLines = append(current.StockTransferLines, part)
		}
	}
	if len(current.StockTransferLines) > 0 {
		chunks = append(chunks, &current)
	}
	return chunks
}

// PostPickList creates a PickLists document
func (c *Client) PostPickList(ctx context.Context, doc *sap.PickListDocument) (*sap.PostResult, error) {
	return c.postDocument(ctx, "/PickLists", doc)
}

// PostInvoice creates an Invoices document
func (c *Client) PostInvoice(ctx context.Context, doc *sap.InvoiceDocument) (*sap.PostResult, error) {
	return c.postDocument(ctx, "/Invoices", doc)
}

// PostInvoiceDraft creates an invoice as a Drafts document pending approval
func (c *Client) PostInvoiceDraft(ctx context.Context, doc *sap.DraftDocument) (*sap.PostResult, error) {
	return c.postDocument(ctx, "/Drafts", doc)
}

// Ensure Client implements the ServiceLayer port
var _ sap.ServiceLayer = (*Client)(nil)
