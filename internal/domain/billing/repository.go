package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billing/backend/internal/domain/catalog"
	"github.com/billing/backend/internal/domain/shared"
)

// Summary is the read-only aggregate over a tenant's committed invoices
type Summary struct {
	InvoiceCount int64           `json:"invoice_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
	OverdueCount int64           `json:"overdue_count"`
}

// InvoiceRepository defines the persistence interface for invoices and
// their lines
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *Invoice) error
	Update(ctx context.Context, invoice *Invoice) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*Invoice, int64, error)
	ExistsByNumberForTenant(ctx context.Context, tenantID uuid.UUID, invoiceNumber string) (bool, error)

	FindLines(ctx context.Context, invoiceID uuid.UUID) ([]InvoiceLine, error)
	InsertLines(ctx context.Context, lines []InvoiceLine) error
	UpdateLine(ctx context.Context, line *InvoiceLine) error
	DeleteLines(ctx context.Context, invoiceID uuid.UUID, lineIDs []uuid.UUID) error
	DeleteAllLines(ctx context.Context, invoiceID uuid.UUID) error

	// SumLineTotals sums persisted line totals so the stored invoice
	// total can never drift from the stored lines.
	SumLineTotals(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error)
	UpdateTotal(ctx context.Context, tenantID, id uuid.UUID, total decimal.Decimal) error

	Summarize(ctx context.Context, tenantID uuid.UUID) (*Summary, error)
}

// TxContext bundles the repositories bound to one open transaction
type TxContext struct {
	Invoices InvoiceRepository
	Items    catalog.ItemRepository
	Parties  catalog.PartyRepository
}

// UnitOfWork runs a function inside a single storage transaction.
// Every write made through the TxContext commits together or rolls
// back together; an error from fn aborts the whole transaction.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(tx TxContext) error) error
}
