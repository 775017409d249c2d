package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when BillingMetrics is constructed without a meter.
var ErrMeterNil = &MetricsError{Op: "NewBillingMetrics", Err: errors.New("meter is nil")}

// MetricsError wraps an instrument construction or recording failure.
type MetricsError struct {
	Op  string
	Err error
}

func (e *MetricsError) Error() string {
	return fmt.Sprintf("telemetry: %s: %v", e.Op, e.Err)
}

func (e *MetricsError) Unwrap() error {
	return e.Err
}

// Invoice mutation operations recorded on the mutation counter.
const (
	MutationCreate       = "create"
	MutationUpdate       = "update"
	MutationDelete       = "delete"
	MutationStatusChange = "status_change"
)

// Stock adjustment directions.
const (
	StockDirectionConsume = "consume"
	StockDirectionRestore = "restore"
)

// BillingMetrics records business-level counters for invoice mutations
// and the stock movements they cause.
type BillingMetrics struct {
	invoiceMutations metric.Int64Counter
	invoiceAmount    metric.Int64Counter
	stockAdjustments metric.Int64Counter
	logger           *zap.Logger
}

// BillingMetricsConfig holds dependencies for BillingMetrics.
type BillingMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewBillingMetrics creates the billing counters on the given meter.
func NewBillingMetrics(cfg BillingMetricsConfig) (*BillingMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	invoiceMutations, err := Counter(cfg.Meter,
		"billing_invoice_mutations_total",
		"Total number of invoice mutations by operation",
		"{mutations}",
	)
	if err != nil {
		return nil, &MetricsError{Op: "create invoice mutations counter", Err: err}
	}

	invoiceAmount, err := Counter(cfg.Meter,
		"billing_invoice_amount_cents_total",
		"Total invoiced amount in cents",
		"{cents}",
	)
	if err != nil {
		return nil, &MetricsError{Op: "create invoice amount counter", Err: err}
	}

	stockAdjustments, err := Counter(cfg.Meter,
		"billing_stock_adjustments_total",
		"Total stock quantity moved by invoice mutations",
		"{units}",
	)
	if err != nil {
		return nil, &MetricsError{Op: "create stock adjustments counter", Err: err}
	}

	return &BillingMetrics{
		invoiceMutations: invoiceMutations,
		invoiceAmount:    invoiceAmount,
		stockAdjustments: stockAdjustments,
		logger:           logger,
	}, nil
}

// RecordInvoiceMutation increments the mutation counter for a committed
// invoice operation.
func (m *BillingMetrics) RecordInvoiceMutation(ctx context.Context, tenantID uuid.UUID, operation string) {
	m.invoiceMutations.Add(ctx, 1, metric.WithAttributes(
		AttrTenantID.String(tenantID.String()),
		AttrOperation.String(operation),
	))
}

// RecordInvoiceAmount adds an invoice total, converted to cents, to the
// amount counter.
func (m *BillingMetrics) RecordInvoiceAmount(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal) {
	cents := amount.Mul(decimal.NewFromInt(100)).IntPart()
	m.invoiceAmount.Add(ctx, cents, metric.WithAttributes(
		AttrTenantID.String(tenantID.String()),
	))
}

// RecordStockAdjustment records a signed stock delta as an absolute
// quantity tagged with its direction. Negative deltas consume stock,
// positive deltas restore it.
func (m *BillingMetrics) RecordStockAdjustment(ctx context.Context, tenantID uuid.UUID, delta int64) {
	if delta == 0 {
		return
	}
	direction := StockDirectionRestore
	quantity := delta
	if delta < 0 {
		direction = StockDirectionConsume
		quantity = -delta
	}
	m.stockAdjustments.Add(ctx, quantity, metric.WithAttributes(
		AttrTenantID.String(tenantID.String()),
		AttrDirection.String(direction),
	))
}
