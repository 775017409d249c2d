package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/billing/backend/internal/domain/catalog"
	"github.com/billing/backend/internal/domain/shared"
)

// CatalogService handles item and party management outside invoice
// flows. Stock is only ever seeded here at item creation; all later
// stock movement belongs to the invoice write path.
type CatalogService struct {
	itemRepo  catalog.ItemRepository
	partyRepo catalog.PartyRepository
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(itemRepo catalog.ItemRepository, partyRepo catalog.PartyRepository) *CatalogService {
	return &CatalogService{
		itemRepo:  itemRepo,
		partyRepo: partyRepo,
	}
}

// CreateItem creates a new catalog item
func (s *CatalogService) CreateItem(ctx context.Context, tenantID uuid.UUID, req CreateItemRequest) (*ItemResponse, error) {
	item, err := catalog.NewItem(tenantID, req.Name, req.Category, req.Price, req.StockQuantity)
	if err != nil {
		return nil, err
	}
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	response := ToItemResponse(item)
	return &response, nil
}

// GetItem retrieves a catalog item by ID
func (s *CatalogService) GetItem(ctx context.Context, tenantID, itemID uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	response := ToItemResponse(item)
	return &response, nil
}

// ListItems retrieves catalog items with filtering and pagination
func (s *CatalogService) ListItems(ctx context.Context, tenantID uuid.UUID, filter ItemListFilter) ([]ItemResponse, int64, error) {
	domainFilter := buildFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search)
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}

	items, total, err := s.itemRepo.FindForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToItemResponses(items), total, nil
}

// CreateParty creates a new party
func (s *CatalogService) CreateParty(ctx context.Context, tenantID uuid.UUID, req CreatePartyRequest) (*PartyResponse, error) {
	kind := catalog.PartyKind(strings.ToUpper(strings.TrimSpace(req.Kind)))
	party, err := catalog.NewParty(tenantID, req.Name, kind)
	if err != nil {
		return nil, err
	}
	if err := s.partyRepo.Save(ctx, party); err != nil {
		return nil, err
	}
	response := ToPartyResponse(party)
	return &response, nil
}

// GetParty retrieves a party by ID
func (s *CatalogService) GetParty(ctx context.Context, tenantID, partyID uuid.UUID) (*PartyResponse, error) {
	party, err := s.partyRepo.FindByIDForTenant(ctx, tenantID, partyID)
	if err != nil {
		return nil, err
	}
	response := ToPartyResponse(party)
	return &response, nil
}

// ListParties retrieves parties with filtering and pagination
func (s *CatalogService) ListParties(ctx context.Context, tenantID uuid.UUID, filter PartyListFilter) ([]PartyResponse, int64, error) {
	domainFilter := buildFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search)
	if filter.Kind != "" {
		kind := catalog.PartyKind(strings.ToUpper(filter.Kind))
		if !kind.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_INPUT", "Party kind must be customer or supplier")
		}
		domainFilter.Filters["kind"] = string(kind)
	}

	parties, total, err := s.partyRepo.FindForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToPartyResponses(parties), total, nil
}

func buildFilter(page, pageSize int, orderBy, orderDir, search string) shared.Filter {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	if orderBy != "" {
		filter.OrderBy = orderBy
	}
	if orderDir != "" {
		filter.OrderDir = orderDir
	}
	filter.Search = search
	return filter
}
