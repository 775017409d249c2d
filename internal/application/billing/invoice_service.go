package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/catalog"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/infrastructure/telemetry"
)

// InvoiceService orchestrates invoice mutations. Every mutation runs
// inside one unit of work: validation, line reconciliation, stock
// adjustment and total recomputation commit together or not at all.
type InvoiceService struct {
	uow            billing.UnitOfWork
	invoiceRepo    billing.InvoiceRepository
	invalidator    SummaryInvalidator
	billingMetrics *telemetry.BillingMetrics
}

// SummaryInvalidator drops any cached summary for a tenant after a
// committed invoice mutation. Implementations must be safe to call
// with a nil-op fallback; failures are the caller's to ignore.
type SummaryInvalidator interface {
	Invalidate(ctx context.Context, tenantID uuid.UUID)
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(uow billing.UnitOfWork, invoiceRepo billing.InvoiceRepository) *InvoiceService {
	return &InvoiceService{
		uow:         uow,
		invoiceRepo: invoiceRepo,
	}
}

// SetSummaryInvalidator wires cache invalidation for summary reads
func (s *InvoiceService) SetSummaryInvalidator(inv SummaryInvalidator) {
	s.invalidator = inv
}

// SetBillingMetrics wires business metrics recording for invoice mutations
func (s *InvoiceService) SetBillingMetrics(metrics *telemetry.BillingMetrics) {
	s.billingMetrics = metrics
}

// Create creates an invoice together with its lines, consuming stock
// for every line. Any failure leaves no invoice, no lines and no stock
// change behind.
func (s *InvoiceService) Create(ctx context.Context, tenantID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	status := billing.InvoiceStatusDraft
	if req.Status != nil {
		parsed, err := billing.ParseInvoiceStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	var invoiceDate time.Time
	if req.InvoiceDate != nil {
		invoiceDate = *req.InvoiceDate
	}

	var response InvoiceResponse
	var stockDeltas map[uuid.UUID]int64
	err := s.uow.Execute(ctx, func(tx billing.TxContext) error {
		exists, err := tx.Parties.ExistsForTenant(ctx, tenantID, req.PartyID)
		if err != nil {
			return err
		}
		if !exists {
			return shared.NewDomainError("NOT_FOUND", "Party not found")
		}

		taken, err := tx.Invoices.ExistsByNumberForTenant(ctx, tenantID, req.InvoiceNumber)
		if err != nil {
			return err
		}
		if taken {
			return shared.ErrDuplicateInvoiceNumber
		}

		invoice, err := billing.NewInvoice(tenantID, req.PartyID, req.InvoiceNumber, invoiceDate, req.DueDate, status)
		if err != nil {
			return err
		}
		if err := tx.Invoices.Create(ctx, invoice); err != nil {
			return err
		}

		desired := toDesiredLines(req.Lines)
		deltas, err := s.applyLineChanges(ctx, tx, tenantID, invoice.ID, nil, desired)
		if err != nil {
			return err
		}
		stockDeltas = deltas

		total, err := tx.Invoices.SumLineTotals(ctx, invoice.ID)
		if err != nil {
			return err
		}
		if err := tx.Invoices.UpdateTotal(ctx, tenantID, invoice.ID, total); err != nil {
			return err
		}

		created, err := tx.Invoices.FindByIDForTenant(ctx, tenantID, invoice.ID)
		if err != nil {
			return err
		}
		response = ToInvoiceResponse(created)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, tenantID)
	s.recordMutation(ctx, tenantID, telemetry.MutationCreate, stockDeltas)
	if s.billingMetrics != nil {
		s.billingMetrics.RecordInvoiceAmount(ctx, tenantID, response.TotalAmount)
	}
	return &response, nil
}

// Update applies partial changes to an invoice. Fields left absent in
// the request keep their stored values. When a line set is supplied the
// stored lines are reconciled against it and the total is recomputed
// from the persisted lines.
func (s *InvoiceService) Update(ctx context.Context, tenantID, invoiceID uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	var status *billing.InvoiceStatus
	if req.Status != nil {
		parsed, err := billing.ParseInvoiceStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		status = &parsed
	}

	var response InvoiceResponse
	var stockDeltas map[uuid.UUID]int64
	err := s.uow.Execute(ctx, func(tx billing.TxContext) error {
		invoice, err := tx.Invoices.FindByIDForTenant(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}

		if req.PartyID != nil {
			exists, err := tx.Parties.ExistsForTenant(ctx, tenantID, *req.PartyID)
			if err != nil {
				return err
			}
			if !exists {
				return shared.NewDomainError("NOT_FOUND", "Party not found")
			}
			invoice.PartyID = *req.PartyID
		}
		if req.DueDate != nil {
			invoice.DueDate = req.DueDate
		}
		if status != nil {
			if err := invoice.ChangeStatus(*status); err != nil {
				return err
			}
		}
		if err := tx.Invoices.Update(ctx, invoice); err != nil {
			return err
		}

		if req.Lines != nil {
			existingLines, err := tx.Invoices.FindLines(ctx, invoice.ID)
			if err != nil {
				return err
			}
			existing := make(map[uuid.UUID]billing.ExistingLine, len(existingLines))
			for _, line := range existingLines {
				existing[line.ItemID] = billing.ExistingLine{
					LineID:          line.ID,
					Quantity:        line.Quantity,
					PriceAtPurchase: line.PriceAtPurchase,
				}
			}

			desired := toDesiredLines(*req.Lines)
			deltas, err := s.applyLineChanges(ctx, tx, tenantID, invoice.ID, existing, desired)
			if err != nil {
				return err
			}
			stockDeltas = deltas

			total, err := tx.Invoices.SumLineTotals(ctx, invoice.ID)
			if err != nil {
				return err
			}
			if err := tx.Invoices.UpdateTotal(ctx, tenantID, invoice.ID, total); err != nil {
				return err
			}
		}

		updated, err := tx.Invoices.FindByIDForTenant(ctx, tenantID, invoice.ID)
		if err != nil {
			return err
		}
		response = ToInvoiceResponse(updated)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, tenantID)
	s.recordMutation(ctx, tenantID, telemetry.MutationUpdate, stockDeltas)
	return &response, nil
}

// Delete removes an invoice after returning every line's quantity to
// stock. Deletion never leaves stock shorted.
func (s *InvoiceService) Delete(ctx context.Context, tenantID, invoiceID uuid.UUID) error {
	var stockDeltas map[uuid.UUID]int64
	err := s.uow.Execute(ctx, func(tx billing.TxContext) error {
		invoice, err := tx.Invoices.FindByIDForTenant(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}

		lines, err := tx.Invoices.FindLines(ctx, invoice.ID)
		if err != nil {
			return err
		}
		stockDeltas = make(map[uuid.UUID]int64, len(lines))
		for _, line := range lines {
			if err := tx.Items.AdjustStock(ctx, tenantID, line.ItemID, line.Quantity); err != nil {
				return err
			}
			stockDeltas[line.ItemID] += line.Quantity
		}

		if err := tx.Invoices.DeleteAllLines(ctx, invoice.ID); err != nil {
			return err
		}
		return tx.Invoices.Delete(ctx, tenantID, invoice.ID)
	})
	if err != nil {
		return err
	}

	s.invalidateSummary(ctx, tenantID)
	s.recordMutation(ctx, tenantID, telemetry.MutationDelete, stockDeltas)
	return nil
}

// UpdateStatus performs a status-only transition with no line or stock
// interaction. Repeating the current status is a no-op.
func (s *InvoiceService) UpdateStatus(ctx context.Context, tenantID, invoiceID uuid.UUID, req UpdateInvoiceStatusRequest) (*InvoiceResponse, error) {
	status, err := billing.ParseInvoiceStatus(req.Status)
	if err != nil {
		return nil, err
	}

	var response InvoiceResponse
	err = s.uow.Execute(ctx, func(tx billing.TxContext) error {
		invoice, err := tx.Invoices.FindByIDForTenant(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		if err := invoice.ChangeStatus(status); err != nil {
			return err
		}
		if err := tx.Invoices.Update(ctx, invoice); err != nil {
			return err
		}
		response = ToInvoiceResponse(invoice)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, tenantID)
	s.recordMutation(ctx, tenantID, telemetry.MutationStatusChange, nil)
	return &response, nil
}

// GetByID retrieves an invoice with its lines
func (s *InvoiceService) GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// List retrieves invoices with filtering and pagination
func (s *InvoiceService) List(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) ([]InvoiceListItemResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search

	if filter.PartyID != nil {
		domainFilter.Filters["party_id"] = *filter.PartyID
	}
	if filter.Status != nil {
		status, err := billing.ParseInvoiceStatus(*filter.Status)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Filters["status"] = string(status)
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	invoices, total, err := s.invoiceRepo.FindForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToInvoiceListItemResponses(invoices), total, nil
}

// applyLineChanges reconciles the desired line set against the existing
// one and applies the resulting stock deltas and line writes through
// the transaction, returning the applied deltas. Stock availability is
// pre-checked for a descriptive error; the conditional update in
// AdjustStock remains the backstop against concurrent draws.
func (s *InvoiceService) applyLineChanges(ctx context.Context, tx billing.TxContext, tenantID, invoiceID uuid.UUID, existing map[uuid.UUID]billing.ExistingLine, desired []billing.DesiredLine) (map[uuid.UUID]int64, error) {
	items, err := s.loadDesiredItems(ctx, tx.Items, tenantID, existing, desired)
	if err != nil {
		return nil, err
	}

	prices := make(map[uuid.UUID]decimal.Decimal, len(items))
	for id, item := range items {
		prices[id] = item.Price
	}

	plan, err := billing.Reconcile(existing, desired, prices)
	if err != nil {
		return nil, err
	}

	for itemID, delta := range plan.StockDeltas {
		if delta >= 0 {
			continue
		}
		item, ok := items[itemID]
		if !ok || !item.HasStock(-delta) {
			name := itemID.String()
			if ok {
				name = item.Name
			}
			return nil, shared.NewDomainError("INSUFFICIENT_STOCK", fmt.Sprintf("Insufficient stock for item %s", name))
		}
	}

	for itemID, delta := range plan.StockDeltas {
		if err := tx.Items.AdjustStock(ctx, tenantID, itemID, delta); err != nil {
			return nil, err
		}
	}

	var inserts []billing.InvoiceLine
	for _, upsert := range plan.Upserts {
		if upsert.IsNew {
			line, err := billing.NewInvoiceLine(invoiceID, upsert.ItemID, upsert.Quantity, upsert.PriceAtPurchase)
			if err != nil {
				return nil, err
			}
			inserts = append(inserts, *line)
			continue
		}
		line := billing.InvoiceLine{
			InvoiceID:       invoiceID,
			ItemID:          upsert.ItemID,
			Quantity:        upsert.Quantity,
			PriceAtPurchase: upsert.PriceAtPurchase,
			TotalLineAmount: upsert.TotalLineAmount,
		}
		line.ID = upsert.LineID
		line.UpdatedAt = time.Now()
		if err := tx.Invoices.UpdateLine(ctx, &line); err != nil {
			return nil, err
		}
	}
	if len(inserts) > 0 {
		if err := tx.Invoices.InsertLines(ctx, inserts); err != nil {
			return nil, err
		}
	}
	if len(plan.DeleteLineIDs) > 0 {
		if err := tx.Invoices.DeleteLines(ctx, invoiceID, plan.DeleteLineIDs); err != nil {
			return nil, err
		}
	}
	return plan.StockDeltas, nil
}

// loadDesiredItems fetches every catalog item referenced by the desired
// line set, failing on the first missing one. Items only present in the
// existing set are not needed: their lines keep stored prices and their
// deltas only restore stock.
func (s *InvoiceService) loadDesiredItems(ctx context.Context, items catalog.ItemRepository, tenantID uuid.UUID, existing map[uuid.UUID]billing.ExistingLine, desired []billing.DesiredLine) (map[uuid.UUID]*catalog.Item, error) {
	ids := make([]uuid.UUID, 0, len(desired))
	seen := make(map[uuid.UUID]bool, len(desired))
	for _, want := range desired {
		if !seen[want.ItemID] {
			seen[want.ItemID] = true
			ids = append(ids, want.ItemID)
		}
	}
	if len(ids) == 0 {
		return map[uuid.UUID]*catalog.Item{}, nil
	}

	found, err := items.FindByIDsForTenant(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Item, len(found))
	for _, item := range found {
		byID[item.ID] = item
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Item %s not found", id))
		}
	}
	return byID, nil
}

func (s *InvoiceService) invalidateSummary(ctx context.Context, tenantID uuid.UUID) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, tenantID)
	}
}

// recordMutation emits business metrics for a committed mutation and the
// stock deltas it applied. No-op until SetBillingMetrics is called.
func (s *InvoiceService) recordMutation(ctx context.Context, tenantID uuid.UUID, operation string, stockDeltas map[uuid.UUID]int64) {
	if s.billingMetrics == nil {
		return
	}
	s.billingMetrics.RecordInvoiceMutation(ctx, tenantID, operation)
	for _, delta := range stockDeltas {
		s.billingMetrics.RecordStockAdjustment(ctx, tenantID, delta)
	}
}

func toDesiredLines(inputs []InvoiceLineInput) []billing.DesiredLine {
	desired := make([]billing.DesiredLine, 0, len(inputs))
	for _, input := range inputs {
		desired = append(desired, billing.DesiredLine{ItemID: input.ItemID, Quantity: input.Quantity})
	}
	return desired
}
