package billing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billing/backend/internal/domain/billing"
)

// ==================== Invoice DTOs ====================

// InvoiceLineInput represents one desired line in a create or update request
type InvoiceLineInput struct {
	ItemID   uuid.UUID `json:"item_id" binding:"required"`
	Quantity int64     `json:"quantity" binding:"required"`
}

// CreateInvoiceRequest represents a request to create an invoice
type CreateInvoiceRequest struct {
	PartyID       uuid.UUID          `json:"party_id" binding:"required"`
	InvoiceNumber string             `json:"invoice_number" binding:"required,min=1,max=100"`
	InvoiceDate   *time.Time         `json:"invoice_date"`
	DueDate       *time.Time         `json:"due_date"`
	Status        *string            `json:"status"`
	Lines         []InvoiceLineInput `json:"lines" binding:"dive"`
}

// UpdateInvoiceRequest represents a request to update an invoice.
// Absent fields are left unchanged; a nil Lines pointer means the line
// set is untouched, while an empty array removes every line.
type UpdateInvoiceRequest struct {
	PartyID *uuid.UUID          `json:"party_id"`
	DueDate *time.Time          `json:"due_date"`
	Status  *string             `json:"status"`
	Lines   *[]InvoiceLineInput `json:"lines" binding:"omitempty,dive"`
}

// UpdateInvoiceStatusRequest represents a status-only transition
type UpdateInvoiceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// InvoiceListFilter represents filter options for the invoice list
type InvoiceListFilter struct {
	Search    string     `form:"search"`
	PartyID   *uuid.UUID `form:"party_id"`
	Status    *string    `form:"status"`
	StartDate *time.Time `form:"start_date"`
	EndDate   *time.Time `form:"end_date"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// InvoiceLineResponse represents an invoice line in API responses
type InvoiceLineResponse struct {
	ID              uuid.UUID       `json:"id"`
	ItemID          uuid.UUID       `json:"item_id"`
	Quantity        int64           `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
	TotalLineAmount decimal.Decimal `json:"total_line_amount"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID            uuid.UUID             `json:"id"`
	TenantID      uuid.UUID             `json:"tenant_id"`
	PartyID       uuid.UUID             `json:"party_id"`
	InvoiceNumber string                `json:"invoice_number"`
	InvoiceDate   time.Time             `json:"invoice_date"`
	DueDate       *time.Time            `json:"due_date,omitempty"`
	Status        string                `json:"status"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	Lines         []InvoiceLineResponse `json:"lines"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// InvoiceListItemResponse represents an invoice in list responses,
// without its lines
type InvoiceListItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	PartyID       uuid.UUID       `json:"party_id"`
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	Status        string          `json:"status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CreatedAt     time.Time       `json:"created_at"`
}

// SummaryResponse represents the tenant invoice summary
type SummaryResponse struct {
	InvoiceCount int64           `json:"invoice_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
	OverdueCount int64           `json:"overdue_count"`
}

// ToInvoiceResponse converts a domain invoice to a response DTO
func ToInvoiceResponse(inv *billing.Invoice) InvoiceResponse {
	lines := make([]InvoiceLineResponse, 0, len(inv.Lines))
	for _, line := range inv.Lines {
		lines = append(lines, InvoiceLineResponse{
			ID:              line.ID,
			ItemID:          line.ItemID,
			Quantity:        line.Quantity,
			PriceAtPurchase: line.PriceAtPurchase,
			TotalLineAmount: line.TotalLineAmount,
		})
	}
	return InvoiceResponse{
		ID:            inv.ID,
		TenantID:      inv.TenantID,
		PartyID:       inv.PartyID,
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceDate:   inv.InvoiceDate,
		DueDate:       inv.DueDate,
		Status:        strings.ToLower(string(inv.Status)),
		TotalAmount:   inv.TotalAmount,
		Lines:         lines,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}

// ToInvoiceListItemResponses converts domain invoices to list DTOs
func ToInvoiceListItemResponses(invoices []*billing.Invoice) []InvoiceListItemResponse {
	responses := make([]InvoiceListItemResponse, 0, len(invoices))
	for _, inv := range invoices {
		responses = append(responses, InvoiceListItemResponse{
			ID:            inv.ID,
			PartyID:       inv.PartyID,
			InvoiceNumber: inv.InvoiceNumber,
			InvoiceDate:   inv.InvoiceDate,
			DueDate:       inv.DueDate,
			Status:        strings.ToLower(string(inv.Status)),
			TotalAmount:   inv.TotalAmount,
			CreatedAt:     inv.CreatedAt,
		})
	}
	return responses
}

// ToSummaryResponse converts a domain summary to a response DTO
func ToSummaryResponse(summary *billing.Summary) SummaryResponse {
	return SummaryResponse{
		InvoiceCount: summary.InvoiceCount,
		TotalAmount:  summary.TotalAmount,
		PaidAmount:   summary.PaidAmount,
		OverdueCount: summary.OverdueCount,
	}
}
