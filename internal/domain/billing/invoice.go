package billing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billing/backend/internal/domain/shared"
)

// InvoiceStatus represents the lifecycle state of an invoice.
// Status transitions carry no stock side effects.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusSent      InvoiceStatus = "SENT"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// IsValid checks whether the status is a known value
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// ParseInvoiceStatus normalizes a wire-format status string
func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	status := InvoiceStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", shared.NewDomainError("INVALID_STATUS", "Invoice status must be one of draft, sent, paid, cancelled")
	}
	return status, nil
}

// Invoice is the billing aggregate root. TotalAmount is derived from the
// line set and is only ever written by summing persisted lines, never
// supplied by a caller.
type Invoice struct {
	shared.TenantAggregateRoot
	PartyID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceNumber string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_invoices_tenant_number,priority:2"`
	InvoiceDate   time.Time       `gorm:"not null"`
	DueDate       *time.Time      `gorm:""`
	Status        InvoiceStatus   `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Lines         []InvoiceLine   `gorm:"foreignKey:InvoiceID"`
}

// TableName returns the database table name
func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceLine is one item-quantity-price entry on an invoice.
// PriceAtPurchase is captured when the line is created and is never
// re-read from the catalog on later quantity updates.
type InvoiceLine struct {
	shared.BaseEntity
	InvoiceID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_lines_invoice_item,priority:1"`
	ItemID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_lines_invoice_item,priority:2"`
	Quantity        int64           `gorm:"not null;check:quantity > 0"`
	PriceAtPurchase decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	TotalLineAmount decimal.Decimal `gorm:"type:decimal(15,2);not null"`
}

// TableName returns the database table name
func (InvoiceLine) TableName() string {
	return "invoice_lines"
}

// NewInvoice creates a new invoice in the given status with a zero total.
// Lines are attached by the transaction manager after reconciliation.
func NewInvoice(tenantID, partyID uuid.UUID, invoiceNumber string, invoiceDate time.Time, dueDate *time.Time, status InvoiceStatus) (*Invoice, error) {
	invoiceNumber = strings.TrimSpace(invoiceNumber)
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invoice number is required")
	}
	if partyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Party is required")
	}
	if status == "" {
		status = InvoiceStatusDraft
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Invoice status must be one of draft, sent, paid, cancelled")
	}
	if invoiceDate.IsZero() {
		invoiceDate = time.Now()
	}
	return &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PartyID:             partyID,
		InvoiceNumber:       invoiceNumber,
		InvoiceDate:         invoiceDate,
		DueDate:             dueDate,
		Status:              status,
		TotalAmount:         decimal.Zero,
	}, nil
}

// ChangeStatus transitions the invoice to the given status.
// Any transition between valid statuses is allowed; repeating the
// current status is a no-op.
func (inv *Invoice) ChangeStatus(status InvoiceStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invoice status must be one of draft, sent, paid, cancelled")
	}
	if inv.Status == status {
		return nil
	}
	inv.Status = status
	inv.UpdatedAt = time.Now()
	return nil
}

// IsOverdue reports whether the invoice is unpaid past its due date
func (inv *Invoice) IsOverdue(now time.Time) bool {
	return inv.Status != InvoiceStatusPaid && inv.DueDate != nil && inv.DueDate.Before(now)
}

// NewInvoiceLine creates a line for the given invoice
func NewInvoiceLine(invoiceID, itemID uuid.UUID, quantity int64, priceAtPurchase decimal.Decimal) (*InvoiceLine, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Line quantity must be positive")
	}
	if priceAtPurchase.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Line price cannot be negative")
	}
	return &InvoiceLine{
		BaseEntity:      shared.NewBaseEntity(),
		InvoiceID:       invoiceID,
		ItemID:          itemID,
		Quantity:        quantity,
		PriceAtPurchase: priceAtPurchase,
		TotalLineAmount: priceAtPurchase.Mul(decimal.NewFromInt(quantity)),
	}, nil
}
