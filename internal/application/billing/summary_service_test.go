package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/billing/backend/internal/domain/billing"
)

// MockSummaryCache is a mock implementation of SummaryCache
type MockSummaryCache struct {
	mock.Mock
}

func (m *MockSummaryCache) Get(ctx context.Context, tenantID uuid.UUID) (*billing.Summary, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Summary), args.Error(1)
}

func (m *MockSummaryCache) Set(ctx context.Context, tenantID uuid.UUID, summary *billing.Summary) error {
	args := m.Called(ctx, tenantID, summary)
	return args.Error(0)
}

func (m *MockSummaryCache) Invalidate(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func testSummary() *billing.Summary {
	return &billing.Summary{
		InvoiceCount: 3,
		TotalAmount:  decimal.NewFromInt(600),
		PaidAmount:   decimal.NewFromInt(200),
		OverdueCount: 1,
	}
}

func TestSummaryServiceGet(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("serves from cache on hit", func(t *testing.T) {
		invoices := new(MockInvoiceRepository)
		cache := new(MockSummaryCache)
		cache.On("Get", ctx, tenantID).Return(testSummary(), nil)

		service := NewSummaryService(invoices, cache, nil)
		resp, err := service.Get(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), resp.InvoiceCount)
		invoices.AssertNotCalled(t, "Summarize", mock.Anything, mock.Anything)
	})

	t.Run("computes and caches on miss", func(t *testing.T) {
		invoices := new(MockInvoiceRepository)
		cache := new(MockSummaryCache)
		summary := testSummary()
		cache.On("Get", ctx, tenantID).Return(nil, nil)
		invoices.On("Summarize", ctx, tenantID).Return(summary, nil)
		cache.On("Set", ctx, tenantID, summary).Return(nil)

		service := NewSummaryService(invoices, cache, nil)
		resp, err := service.Get(ctx, tenantID)
		require.NoError(t, err)
		assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(600)))
		assert.Equal(t, int64(1), resp.OverdueCount)
		cache.AssertExpectations(t)
	})

	t.Run("cache failures fall through to storage", func(t *testing.T) {
		invoices := new(MockInvoiceRepository)
		cache := new(MockSummaryCache)
		cache.On("Get", ctx, tenantID).Return(nil, errors.New("redis down"))
		invoices.On("Summarize", ctx, tenantID).Return(testSummary(), nil)
		cache.On("Set", ctx, tenantID, mock.Anything).Return(errors.New("redis down"))

		service := NewSummaryService(invoices, cache, nil)
		resp, err := service.Get(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), resp.InvoiceCount)
	})

	t.Run("works without a cache", func(t *testing.T) {
		invoices := new(MockInvoiceRepository)
		invoices.On("Summarize", ctx, tenantID).Return(testSummary(), nil)

		service := NewSummaryService(invoices, nil, nil)
		resp, err := service.Get(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), resp.InvoiceCount)
	})

	t.Run("propagates storage errors", func(t *testing.T) {
		invoices := new(MockInvoiceRepository)
		invoices.On("Summarize", ctx, tenantID).Return(nil, errors.New("query failed"))

		service := NewSummaryService(invoices, nil, nil)
		_, err := service.Get(ctx, tenantID)
		assert.Error(t, err)
	})
}

func TestSummaryServiceInvalidate(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("drops the cached entry", func(t *testing.T) {
		cache := new(MockSummaryCache)
		cache.On("Invalidate", ctx, tenantID).Return(nil)

		service := NewSummaryService(new(MockInvoiceRepository), cache, nil)
		service.Invalidate(ctx, tenantID)
		cache.AssertExpectations(t)
	})

	t.Run("swallows cache errors", func(t *testing.T) {
		cache := new(MockSummaryCache)
		cache.On("Invalidate", ctx, tenantID).Return(errors.New("redis down"))

		service := NewSummaryService(new(MockInvoiceRepository), cache, nil)
		service.Invalidate(ctx, tenantID)
	})

	t.Run("no-op without cache", func(t *testing.T) {
		service := NewSummaryService(new(MockInvoiceRepository), nil, nil)
		service.Invalidate(ctx, tenantID)
	})
}
