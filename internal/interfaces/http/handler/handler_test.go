package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appbilling "github.com/billing/backend/internal/application/billing"
	appcatalog "github.com/billing/backend/internal/application/catalog"
	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/catalog"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/interfaces/http/dto"
	"github.com/billing/backend/internal/interfaces/http/router"
)

type mockInvoiceRepo struct {
	mock.Mock
}

func (m *mockInvoiceRepo) Create(ctx context.Context, invoice *billing.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *mockInvoiceRepo) Update(ctx context.Context, invoice *billing.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *mockInvoiceRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *mockInvoiceRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*billing.Invoice, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*billing.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *mockInvoiceRepo) ExistsByNumberForTenant(ctx context.Context, tenantID uuid.UUID, invoiceNumber string) (bool, error) {
	args := m.Called(ctx, tenantID, invoiceNumber)
	return args.Bool(0), args.Error(1)
}

func (m *mockInvoiceRepo) FindLines(ctx context.Context, invoiceID uuid.UUID) ([]billing.InvoiceLine, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.InvoiceLine), args.Error(1)
}

func (m *mockInvoiceRepo) InsertLines(ctx context.Context, lines []billing.InvoiceLine) error {
	return m.Called(ctx, lines).Error(0)
}

func (m *mockInvoiceRepo) UpdateLine(ctx context.Context, line *billing.InvoiceLine) error {
	return m.Called(ctx, line).Error(0)
}

func (m *mockInvoiceRepo) DeleteLines(ctx context.Context, invoiceID uuid.UUID, lineIDs []uuid.UUID) error {
	return m.Called(ctx, invoiceID, lineIDs).Error(0)
}

func (m *mockInvoiceRepo) DeleteAllLines(ctx context.Context, invoiceID uuid.UUID) error {
	return m.Called(ctx, invoiceID).Error(0)
}

func (m *mockInvoiceRepo) SumLineTotals(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockInvoiceRepo) UpdateTotal(ctx context.Context, tenantID, id uuid.UUID, total decimal.Decimal) error {
	return m.Called(ctx, tenantID, id, total).Error(0)
}

func (m *mockInvoiceRepo) Summarize(ctx context.Context, tenantID uuid.UUID) (*billing.Summary, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Summary), args.Error(1)
}

type mockItemRepo struct {
	mock.Mock
}

func (m *mockItemRepo) Save(ctx context.Context, item *catalog.Item) error {
	return m.Called(ctx, item).Error(0)
}

func (m *mockItemRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Item, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Item), args.Error(1)
}

func (m *mockItemRepo) FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*catalog.Item, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*catalog.Item), args.Error(1)
}

func (m *mockItemRepo) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*catalog.Item, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*catalog.Item), args.Get(1).(int64), args.Error(2)
}

func (m *mockItemRepo) AdjustStock(ctx context.Context, tenantID, itemID uuid.UUID, delta int64) error {
	return m.Called(ctx, tenantID, itemID, delta).Error(0)
}

type mockPartyRepo struct {
	mock.Mock
}

func (m *mockPartyRepo) Save(ctx context.Context, party *catalog.Party) error {
	return m.Called(ctx, party).Error(0)
}

func (m *mockPartyRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Party, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Party), args.Error(1)
}

func (m *mockPartyRepo) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*catalog.Party, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*catalog.Party), args.Get(1).(int64), args.Error(2)
}

func (m *mockPartyRepo) ExistsForTenant(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, id)
	return args.Bool(0), args.Error(1)
}

var testTenantID = uuid.MustParse("11111111-1111-1111-1111-111111111111")

func newTestEngine(register func(dg *router.DomainGroup), name, prefix string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	dg := router.NewDomainGroup(name, prefix)
	register(dg)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(dg)
	r.Setup()

	return engine
}

func doRequest(t *testing.T, engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", testTenantID.String())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestInvoiceHandlerGetByIDNotFound(t *testing.T) {
	invoiceRepo := new(mockInvoiceRepo)
	invoiceID := uuid.New()
	invoiceRepo.On("FindByIDForTenant", mock.Anything, testTenantID, invoiceID).
		Return(nil, shared.NewDomainError("NOT_FOUND", "Invoice not found"))

	svc := appbilling.NewInvoiceService(nil, invoiceRepo)
	h := NewInvoiceHandler(svc, nil)
	engine := newTestEngine(h.RegisterRoutes, "billing", "/billing")

	w := doRequest(t, engine, http.MethodGet, "/api/v1/billing/invoices/"+invoiceID.String(), "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	invoiceRepo.AssertExpectations(t)
}

func TestInvoiceHandlerGetByIDInvalidID(t *testing.T) {
	svc := appbilling.NewInvoiceService(nil, new(mockInvoiceRepo))
	h := NewInvoiceHandler(svc, nil)
	engine := newTestEngine(h.RegisterRoutes, "billing", "/billing")

	w := doRequest(t, engine, http.MethodGet, "/api/v1/billing/invoices/not-a-uuid", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvoiceHandlerListPagination(t *testing.T) {
	invoiceRepo := new(mockInvoiceRepo)
	inv, err := billing.NewInvoice(testTenantID, uuid.New(), "INV-001", time.Now(), nil, billing.InvoiceStatusDraft)
	require.NoError(t, err)

	invoiceRepo.On("FindForTenant", mock.Anything, testTenantID, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 2 && f.PageSize == 10
	})).Return([]*billing.Invoice{inv}, int64(25), nil)

	svc := appbilling.NewInvoiceService(nil, invoiceRepo)
	h := NewInvoiceHandler(svc, nil)
	engine := newTestEngine(h.RegisterRoutes, "billing", "/billing")

	w := doRequest(t, engine, http.MethodGet, "/api/v1/billing/invoices?page=2&page_size=10", "")

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(25), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	invoiceRepo.AssertExpectations(t)
}

func TestInvoiceHandlerGetSummary(t *testing.T) {
	invoiceRepo := new(mockInvoiceRepo)
	invoiceRepo.On("Summarize", mock.Anything, testTenantID).Return(&billing.Summary{
		InvoiceCount: 4,
		TotalAmount:  decimal.NewFromInt(1200),
		PaidAmount:   decimal.NewFromInt(300),
		OverdueCount: 1,
	}, nil)

	summarySvc := appbilling.NewSummaryService(invoiceRepo, nil, nil)
	h := NewInvoiceHandler(appbilling.NewInvoiceService(nil, invoiceRepo), summarySvc)
	engine := newTestEngine(h.RegisterRoutes, "billing", "/billing")

	w := doRequest(t, engine, http.MethodGet, "/api/v1/billing/summary", "")

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var summary appbilling.SummaryResponse
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, int64(4), summary.InvoiceCount)
	assert.Equal(t, int64(1), summary.OverdueCount)
}

func TestInvoiceHandlerMissingTenant(t *testing.T) {
	svc := appbilling.NewInvoiceService(nil, new(mockInvoiceRepo))
	h := NewInvoiceHandler(svc, nil)
	engine := newTestEngine(h.RegisterRoutes, "billing", "/billing")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/billing/invoices", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogHandlerCreateItem(t *testing.T) {
	itemRepo := new(mockItemRepo)
	itemRepo.On("Save", mock.Anything, mock.MatchedBy(func(item *catalog.Item) bool {
		return item.Name == "Widget" && item.TenantID == testTenantID
	})).Return(nil)

	svc := appcatalog.NewCatalogService(itemRepo, new(mockPartyRepo))
	h := NewCatalogHandler(svc)
	engine := newTestEngine(h.RegisterRoutes, "catalog", "/catalog")

	body := `{"name": "Widget", "category": "tools", "price": "9.99", "stock_quantity": 5}`
	w := doRequest(t, engine, http.MethodPost, "/api/v1/catalog/items", body)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	itemRepo.AssertExpectations(t)
}

func TestCatalogHandlerCreateItemMissingName(t *testing.T) {
	svc := appcatalog.NewCatalogService(new(mockItemRepo), new(mockPartyRepo))
	h := NewCatalogHandler(svc)
	engine := newTestEngine(h.RegisterRoutes, "catalog", "/catalog")

	w := doRequest(t, engine, http.MethodPost, "/api/v1/catalog/items", `{"price": "1.00"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeInvalidInput, resp.Error.Code)
}

func TestCatalogHandlerListParties(t *testing.T) {
	partyRepo := new(mockPartyRepo)
	party, err := catalog.NewParty(testTenantID, "Acme Corp", catalog.PartyKindCustomer)
	require.NoError(t, err)

	partyRepo.On("FindForTenant", mock.Anything, testTenantID, mock.Anything).
		Return([]*catalog.Party{party}, int64(1), nil)

	svc := appcatalog.NewCatalogService(new(mockItemRepo), partyRepo)
	h := NewCatalogHandler(svc)
	engine := newTestEngine(h.RegisterRoutes, "catalog", "/catalog")

	w := doRequest(t, engine, http.MethodGet, "/api/v1/catalog/parties", "")

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
	partyRepo.AssertExpectations(t)
}
