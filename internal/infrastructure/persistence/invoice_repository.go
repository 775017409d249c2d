package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
)

// GormInvoiceRepository implements billing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)

// Create inserts a new invoice row. A concurrent insert of the same
// invoice number loses to the unique constraint on (tenant_id,
// invoice_number), which surfaces as ErrDuplicateInvoiceNumber.
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *billing.Invoice) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrDuplicateInvoiceNumber
		}
		return err
	}
	return nil
}

// Update writes the invoice's mutable header fields
func (r *GormInvoiceRepository) Update(ctx context.Context, invoice *billing.Invoice) error {
	result := r.db.WithContext(ctx).Model(&billing.Invoice{}).
		Where("tenant_id = ? AND id = ?", invoice.TenantID, invoice.ID).
		Updates(map[string]interface{}{
			"party_id":   invoice.PartyID,
			"due_date":   invoice.DueDate,
			"status":     invoice.Status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes an invoice row within a tenant
func (r *GormInvoiceRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&billing.Invoice{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByIDForTenant finds an invoice with its lines within a tenant
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindForTenant finds invoices for a tenant with filtering and pagination
func (r *GormInvoiceRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*billing.Invoice, int64, error) {
	base := r.db.WithContext(ctx).Model(&billing.Invoice{}).Where("tenant_id = ?", tenantID)

	var total int64
	if err := r.applyFilterWithoutPagination(base.Session(&gorm.Session{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoices []*billing.Invoice
	if err := r.applyFilter(base.Session(&gorm.Session{}), filter).Find(&invoices).Error; err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// ExistsByNumberForTenant checks whether an invoice number is taken
// within a tenant
func (r *GormInvoiceRepository) ExistsByNumberForTenant(ctx context.Context, tenantID uuid.UUID, invoiceNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&billing.Invoice{}).
		Where("tenant_id = ? AND invoice_number = ?", tenantID, invoiceNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindLines loads all lines of an invoice
func (r *GormInvoiceRepository) FindLines(ctx context.Context, invoiceID uuid.UUID) ([]billing.InvoiceLine, error) {
	var lines []billing.InvoiceLine
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// InsertLines inserts new invoice lines
func (r *GormInvoiceRepository) InsertLines(ctx context.Context, lines []billing.InvoiceLine) error {
	if len(lines) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&lines).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrStorageConflict
		}
		return err
	}
	return nil
}

// UpdateLine updates an existing line's quantity and total in place
func (r *GormInvoiceRepository) UpdateLine(ctx context.Context, line *billing.InvoiceLine) error {
	result := r.db.WithContext(ctx).Model(&billing.InvoiceLine{}).
		Where("id = ? AND invoice_id = ?", line.ID, line.InvoiceID).
		Updates(map[string]interface{}{
			"quantity":          line.Quantity,
			"total_line_amount": line.TotalLineAmount,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteLines removes the given lines of an invoice
func (r *GormInvoiceRepository) DeleteLines(ctx context.Context, invoiceID uuid.UUID, lineIDs []uuid.UUID) error {
	if len(lineIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Delete(&billing.InvoiceLine{}, "invoice_id = ? AND id IN ?", invoiceID, lineIDs).Error
}

// DeleteAllLines removes every line of an invoice
func (r *GormInvoiceRepository) DeleteAllLines(ctx context.Context, invoiceID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&billing.InvoiceLine{}, "invoice_id = ?", invoiceID).Error
}

// SumLineTotals sums the persisted line totals of an invoice
func (r *GormInvoiceRepository) SumLineTotals(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&billing.InvoiceLine{}).
		Select("COALESCE(SUM(total_line_amount), 0) AS total").
		Where("invoice_id = ?", invoiceID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// UpdateTotal writes the derived invoice total
func (r *GormInvoiceRepository) UpdateTotal(ctx context.Context, tenantID, id uuid.UUID, total decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&billing.Invoice{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(map[string]interface{}{
			"total_amount": total,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Summarize aggregates committed invoice state for a tenant
func (r *GormInvoiceRepository) Summarize(ctx context.Context, tenantID uuid.UUID) (*billing.Summary, error) {
	var result struct {
		InvoiceCount int64
		TotalAmount  decimal.Decimal
		PaidAmount   decimal.Decimal
		OverdueCount int64
	}
	if err := r.db.WithContext(ctx).Model(&billing.Invoice{}).
		Select("COUNT(*) AS invoice_count, COALESCE(SUM(total_amount), 0) AS total_amount, COALESCE(SUM(CASE WHEN status = ? THEN total_amount ELSE 0 END), 0) AS paid_amount, COUNT(CASE WHEN status <> ? AND due_date < ? THEN 1 END) AS overdue_count",
			billing.InvoiceStatusPaid, billing.InvoiceStatusPaid, time.Now()).
		Where("tenant_id = ?", tenantID).
		Scan(&result).Error; err != nil {
		return nil, err
	}
	return &billing.Summary{
		InvoiceCount: result.InvoiceCount,
		TotalAmount:  result.TotalAmount,
		PaidAmount:   result.PaidAmount,
		OverdueCount: result.OverdueCount,
	}, nil
}

// applyFilter applies filter options to the query
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("invoice_number ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "party_id":
			query = query.Where("party_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("invoice_date >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("invoice_date <= ?", t)
			}
		}
	}

	return query
}
