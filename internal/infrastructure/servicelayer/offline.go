package servicelayer

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/sap"
)

// OfflineClient is the sap.ServiceLayer implementation used when the gateway
// runs without a B1 instance. Application services check Offline() and skip
// serial and stock validation with a warning, so the lookup methods here are
// never reached in normal flows and fail loudly if they are. Document posting
// is simulated with synthetic document numbers so the queue and lifecycle can
// be exercised end to end.
type OfflineClient struct {
	logger  *zap.Logger
	counter atomic.Int64
}

// NewOfflineClient creates an offline stub
func NewOfflineClient(logger *zap.Logger) *OfflineClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OfflineClient{logger: logger}
}

// Offline always reports true
func (c *OfflineClient) Offline() bool {
	return true
}

// Ping always succeeds; there is nothing to reach
func (c *OfflineClient) Ping(context.Context) error {
	return nil
}

func (c *OfflineClient) ValidateSerial(_ context.Context, warehouseCode, itemCode, serial string) (*sap.SerialValidation, error) {
	return nil, fmt.Errorf("%w: serial validation requires a SAP connection", sap.ErrNotConfigured)
}

func (c *OfflineClient) GetSerialSystemNumber(_ context.Context, itemCode, serial string) (int, error) {
	return 0, fmt.Errorf("%w: serial lookup requires a SAP connection", sap.ErrNotConfigured)
}

func (c *OfflineClient) CheckItemStock(_ context.Context, warehouseCode, itemCode string) (*sap.ItemStock, error) {
	return nil, fmt.Errorf("%w: stock check requires a SAP connection", sap.ErrNotConfigured)
}

func (c *OfflineClient) ListSalesOrderSeries(context.Context) ([]sap.SalesOrderSeries, error) {
	return nil, fmt.Errorf("%w: series lookup requires a SAP connection", sap.ErrNotConfigured)
}

func (c *OfflineClient) FindSalesOrderEntry(_ context.Context, orderNumber string, series int) (int, error) {
	return 0, fmt.Errorf("%w: sales order lookup requires a SAP connection", sap.ErrNotConfigured)
}

func (c *OfflineClient) GetSalesOrder(_ context.Context, docEntry int) (*sap.SalesOrder, error) {
	return nil, fmt.Errorf("%w: sales order lookup requires a SAP connection", sap.ErrNotConfigured)
}

// simulate fabricates a create response so documents can complete their
// lifecycle without SAP. Every simulated post is logged as a warning.
func (c *OfflineClient) simulate(documentType string) (*sap.PostResult, error) {
	n := int(c.counter.Add(1))
	c.logger.Warn("Offline mode: document posting simulated",
		zap.String("document_type", documentType),
		zap.Int("simulated_doc_num", n))
	return &sap.PostResult{DocEntry: n, DocNum: n, AbsoluteEntry: n}, nil
}

func (c *OfflineClient) PostGoodsReceipt(_ context.Context, _ *sap.GoodsReceiptDocument) (*sap.PostResult, error) {
	return c.simulate("goods_receipt")
}

func (c *OfflineClient) PostStockTransfer(_ context.Context, _ *sap.StockTransferDocument) (*sap.PostResult, error) {
	return c.simulate("stock_transfer")
}

func (c *OfflineClient) PostPickList(_ context.Context, _ *sap.PickListDocument) (*sap.PostResult, error) {
	return c.simulate("pick_list")
}

func (c *OfflineClient) PostInvoice(_ context.Context, _ *sap.InvoiceDocument) (*sap.PostResult, error) {
	return c.simulate("invoice")
}

func (c *OfflineClient) PostInvoiceDraft(_ context.Context, _ *sap.DraftDocument) (*sap.PostResult, error) {
	return c.simulate("invoice_draft")
}

// Ensure OfflineClient implements the ServiceLayer port
var _ sap.ServiceLayer = (*OfflineClient)(nil)
