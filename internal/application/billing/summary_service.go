package billing

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/billing/backend/internal/domain/billing"
)

// SummaryCache caches computed tenant summaries. A miss returns
// (nil, nil); cache failures never fail the read path.
type SummaryCache interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*billing.Summary, error)
	Set(ctx context.Context, tenantID uuid.UUID, summary *billing.Summary) error
	Invalidate(ctx context.Context, tenantID uuid.UUID) error
}

// SummaryService serves the read-only invoice summary projection
type SummaryService struct {
	invoiceRepo billing.InvoiceRepository
	cache       SummaryCache
	logger      *zap.Logger
}

// NewSummaryService creates a new SummaryService. cache may be nil to
// disable caching.
func NewSummaryService(invoiceRepo billing.InvoiceRepository, cache SummaryCache, logger *zap.Logger) *SummaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryService{
		invoiceRepo: invoiceRepo,
		cache:       cache,
		logger:      logger,
	}
}

// Get returns the invoice summary for a tenant, from cache when a
// fresh entry exists
func (s *SummaryService) Get(ctx context.Context, tenantID uuid.UUID) (*SummaryResponse, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, tenantID)
		if err != nil {
			s.logger.Warn("summary cache read failed", zap.String("tenant_id", tenantID.String()), zap.Error(err))
		} else if cached != nil {
			response := ToSummaryResponse(cached)
			return &response, nil
		}
	}

	summary, err := s.invoiceRepo.Summarize(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, tenantID, summary); err != nil {
			s.logger.Warn("summary cache write failed", zap.String("tenant_id", tenantID.String()), zap.Error(err))
		}
	}

	response := ToSummaryResponse(summary)
	return &response, nil
}

// Invalidate drops the cached summary for a tenant. Implements
// SummaryInvalidator for the invoice write path.
func (s *SummaryService) Invalidate(ctx context.Context, tenantID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, tenantID); err != nil {
		s.logger.Warn("summary cache invalidation failed", zap.String("tenant_id", tenantID.String()), zap.Error(err))
	}
}
