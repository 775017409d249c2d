package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/billing/backend/internal/domain/catalog"
	"github.com/billing/backend/internal/domain/shared"
)

// MockItemRepository is a mock implementation of catalog.ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Item, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Item), args.Error(1)
}

func (m *MockItemRepository) FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*catalog.Item, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*catalog.Item), args.Error(1)
}

func (m *MockItemRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*catalog.Item, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*catalog.Item), args.Get(1).(int64), args.Error(2)
}

func (m *MockItemRepository) AdjustStock(ctx context.Context, tenantID, itemID uuid.UUID, delta int64) error {
	args := m.Called(ctx, tenantID, itemID, delta)
	return args.Error(0)
}

// MockPartyRepository is a mock implementation of catalog.PartyRepository
type MockPartyRepository struct {
	mock.Mock
}

func (m *MockPartyRepository) Save(ctx context.Context, party *catalog.Party) error {
	args := m.Called(ctx, party)
	return args.Error(0)
}

func (m *MockPartyRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Party, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Party), args.Error(1)
}

func (m *MockPartyRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*catalog.Party, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*catalog.Party), args.Get(1).(int64), args.Error(2)
}

func (m *MockPartyRepository) ExistsForTenant(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, id)
	return args.Bool(0), args.Error(1)
}

func TestCatalogServiceCreateItem(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("creates and saves item", func(t *testing.T) {
		items := new(MockItemRepository)
		items.On("Save", ctx, mock.MatchedBy(func(item *catalog.Item) bool {
			return item.TenantID == tenantID && item.Name == "Widget" && item.StockQuantity == 10
		})).Return(nil)

		service := NewCatalogService(items, new(MockPartyRepository))
		resp, err := service.CreateItem(ctx, tenantID, CreateItemRequest{
			Name:          "Widget",
			Price:         decimal.NewFromInt(100),
			StockQuantity: 10,
		})
		require.NoError(t, err)
		assert.Equal(t, "Widget", resp.Name)
		items.AssertExpectations(t)
	})

	t.Run("rejects invalid item", func(t *testing.T) {
		service := NewCatalogService(new(MockItemRepository), new(MockPartyRepository))
		_, err := service.CreateItem(ctx, tenantID, CreateItemRequest{
			Name:  " ",
			Price: decimal.NewFromInt(1),
		})
		assert.Error(t, err)
	})
}

func TestCatalogServiceCreateParty(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("normalizes kind from wire format", func(t *testing.T) {
		parties := new(MockPartyRepository)
		parties.On("Save", ctx, mock.MatchedBy(func(party *catalog.Party) bool {
			return party.Kind == catalog.PartyKindCustomer
		})).Return(nil)

		service := NewCatalogService(new(MockItemRepository), parties)
		resp, err := service.CreateParty(ctx, tenantID, CreatePartyRequest{Name: "Acme", Kind: "customer"})
		require.NoError(t, err)
		assert.Equal(t, "customer", resp.Kind)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		service := NewCatalogService(new(MockItemRepository), new(MockPartyRepository))
		_, err := service.CreateParty(ctx, tenantID, CreatePartyRequest{Name: "Acme", Kind: "reseller"})
		assert.Error(t, err)
	})
}

func TestCatalogServiceGetItem(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	items := new(MockItemRepository)
	item, _ := catalog.NewItem(tenantID, "Widget", "hardware", decimal.NewFromInt(5), 3)
	items.On("FindByIDForTenant", ctx, tenantID, item.ID).Return(item, nil)

	service := NewCatalogService(items, new(MockPartyRepository))
	resp, err := service.GetItem(ctx, tenantID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, resp.ID)
	assert.Equal(t, int64(3), resp.StockQuantity)
}

func TestCatalogServiceListItems(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	items := new(MockItemRepository)
	item, _ := catalog.NewItem(tenantID, "Widget", "hardware", decimal.NewFromInt(5), 3)

	items.On("FindForTenant", ctx, tenantID, mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.Page == 1 && filter.PageSize == 20 && filter.Filters["category"] == "hardware"
	})).Return([]*catalog.Item{item}, int64(1), nil)

	service := NewCatalogService(items, new(MockPartyRepository))
	resp, total, err := service.ListItems(ctx, tenantID, ItemListFilter{Category: "hardware"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, resp, 1)
}

func TestCatalogServiceListParties(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("filters by normalized kind", func(t *testing.T) {
		parties := new(MockPartyRepository)
		party, _ := catalog.NewParty(tenantID, "Acme", catalog.PartyKindSupplier)
		parties.On("FindForTenant", ctx, tenantID, mock.MatchedBy(func(filter shared.Filter) bool {
			return filter.Filters["kind"] == "SUPPLIER"
		})).Return([]*catalog.Party{party}, int64(1), nil)

		service := NewCatalogService(new(MockItemRepository), parties)
		resp, total, err := service.ListParties(ctx, tenantID, PartyListFilter{Kind: "supplier"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "supplier", resp[0].Kind)
	})

	t.Run("rejects invalid kind filter", func(t *testing.T) {
		service := NewCatalogService(new(MockItemRepository), new(MockPartyRepository))
		_, _, err := service.ListParties(ctx, tenantID, PartyListFilter{Kind: "reseller"})
		assert.Error(t, err)
	})
}
