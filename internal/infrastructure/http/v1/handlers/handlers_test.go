package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/inventory"
	"backoffice/internal/domain/invoice"
	"backoffice/internal/domain/payments"
	"backoffice/internal/domain/sales"
	"backoffice/internal/infrastructure/http/v1/middleware"
)

func init() { gin.SetMode(gin.TestMode) }

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler(), middleware.Recovery())
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// --- products ---

type fakeProducts struct {
	items   map[id.ID]*inventory.Product
	filters []inventory.ProductFilter
}

func newFakeProducts(ps ...*inventory.Product) *fakeProducts {
	f := &fakeProducts{items: map[id.ID]*inventory.Product{}}
	for _, p := range ps {
		f.items[p.ID] = p
	}
	return f
}

func (f *fakeProducts) CreateProduct(ctx context.Context, p *inventory.Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	f.items[p.ID] = p
	return nil
}

func (f *fakeProducts) UpdateProduct(ctx context.Context, p *inventory.Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	f.items[p.ID] = p
	return nil
}

func (f *fakeProducts) GetProduct(_ context.Context, productID id.ID) (*inventory.Product, error) {
	p, ok := f.items[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) ListProducts(_ context.Context, filter inventory.ProductFilter) ([]inventory.Product, error) {
	f.filters = append(f.filters, filter)
	out := make([]inventory.Product, 0, len(f.items))
	for _, p := range f.items {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProducts) Brands(context.Context) ([]string, error) { return []string{"ACME"}, nil }

func (f *fakeProducts) DeleteProduct(_ context.Context, productID id.ID) error {
	return apperror.NewInUse("product", productID, "sale lines")
}

func productRouter(f *fakeProducts) *gin.Engine {
	h := NewProductHandler(NewBaseHandler(), f)
	r := newEngine()
	r.GET("/products", h.List)
	r.POST("/products", h.Create)
	r.GET("/products/:id", h.Get)
	r.PUT("/products/:id", h.Update)
	r.DELETE("/products/:id", h.Delete)
	return r
}

func TestProductHandler_Create(t *testing.T) {
	f := newFakeProducts()
	w := do(productRouter(f), http.MethodPost, "/products",
		`{"name":"Shampoo","brand":"acme","purchasePrice":"10","salePrice":"15","minQuantity":3}`)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "Shampoo", body["name"])
	assert.Equal(t, "50", body["marginPercent"])
	assert.Len(t, f.items, 1)
}

func TestProductHandler_CreateValidation(t *testing.T) {
	w := do(productRouter(newFakeProducts()), http.MethodPost, "/products", `{"brand":"acme"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperror.CodeValidation, decode(t, w)["code"])
}

func TestProductHandler_ListPassesFilter(t *testing.T) {
	f := newFakeProducts()
	w := do(productRouter(f), http.MethodGet, "/products?brand=acme&q=sham&limit=10000&offset=-3", "")

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, f.filters, 1)
	assert.Equal(t, inventory.ProductFilter{Brand: "acme", Search: "sham", Limit: maxLimit, Offset: 0}, f.filters[0])
}

func TestProductHandler_UpdateKeepsOmittedFields(t *testing.T) {
	p := inventory.NewProduct("Soap", "ACME", types.MustMoney("2"), types.MustMoney("3"), 1)
	f := newFakeProducts(p)

	w := do(productRouter(f), http.MethodPut, "/products/"+p.ID.String(), `{"salePrice":"4"}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Soap", f.items[p.ID].Name)
	assert.True(t, f.items[p.ID].SalePrice.Equal(types.MustMoney("4")))
}

func TestProductHandler_DeleteInUse(t *testing.T) {
	w := do(productRouter(newFakeProducts()), http.MethodDelete, "/products/"+id.New().String(), "")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperror.CodeInUse, decode(t, w)["code"])
}

func TestProductHandler_BadID(t *testing.T) {
	w := do(productRouter(newFakeProducts()), http.MethodGet, "/products/not-a-uuid", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- sales ---

type fakeSales struct {
	registered []sales.RegisterInput
	err        error
}

func (f *fakeSales) Register(_ context.Context, in sales.RegisterInput) (*sales.Sale, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.registered = append(f.registered, in)
	s := sales.NewSale(in.SellerID, in.ClientName, in.Date)
	s.Number = "V-000001"
	return s, nil
}

func (f *fakeSales) Get(_ context.Context, saleID id.ID) (*sales.Sale, error) {
	return nil, apperror.NewNotFound("sale", saleID)
}

func (f *fakeSales) List(context.Context, sales.Filter) ([]sales.Sale, error) { return nil, nil }

func (f *fakeSales) Delete(context.Context, id.ID) error { return nil }

type fakeInvoices struct{}

func (fakeInvoices) Summary(_ context.Context, saleID id.ID) (*invoice.Summary, error) {
	return &invoice.Summary{SaleID: saleID, Number: "V-000001"}, nil
}

func (fakeInvoices) Render(context.Context, id.ID) (*invoice.Document, error) {
	return &invoice.Document{Filename: "invoice_V-000001.json", ContentType: "application/json", Body: []byte(`{"number":"V-000001"}`)}, nil
}

func saleRouter(f *fakeSales) *gin.Engine {
	h := NewSaleHandler(NewBaseHandler(), f, fakeInvoices{})
	r := newEngine()
	r.POST("/sales", h.Create)
	r.GET("/sales/:id", h.Get)
	r.GET("/sales/:id/invoice", h.Invoice)
	return r
}

func TestSaleHandler_Create(t *testing.T) {
	f := &fakeSales{}
	sellerID, productID := id.New(), id.New()
	body := `{"sellerId":"` + sellerID.String() + `","date":"2026-03-15","lines":[{"productId":"` +
		productID.String() + `","quantity":4,"percent":"10"}]}`

	w := do(saleRouter(f), http.MethodPost, "/sales", body)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, f.registered, 1)
	in := f.registered[0]
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), in.Date)
	require.Len(t, in.Lines, 1)
	assert.Equal(t, types.Quantity(4), in.Lines[0].Quantity)
	assert.Nil(t, in.Lines[0].Price)
	require.NotNil(t, in.Lines[0].Percent)
	assert.Equal(t, "V-000001", decode(t, w)["number"])
}

func TestSaleHandler_InsufficientStock(t *testing.T) {
	f := &fakeSales{err: apperror.NewInsufficientStock("p", 10, 3)}
	w := do(saleRouter(f), http.MethodPost, "/sales", `{"sellerId":"`+id.New().String()+`","lines":[]}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, apperror.CodeInsufficientStock, decode(t, w)["code"])
}

func TestSaleHandler_BadDate(t *testing.T) {
	w := do(saleRouter(&fakeSales{}), http.MethodPost, "/sales", `{"sellerId":"`+id.New().String()+`","date":"15/03/2026"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaleHandler_InvoiceFile(t *testing.T) {
	w := do(saleRouter(&fakeSales{}), http.MethodGet, "/sales/"+id.New().String()+"/invoice?format=file", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "invoice_V-000001.json")
	assert.JSONEq(t, `{"number":"V-000001"}`, w.Body.String())
}

func TestSaleHandler_NotFound(t *testing.T) {
	w := do(saleRouter(&fakeSales{}), http.MethodGet, "/sales/"+id.New().String(), "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- entries ---

type fakeBook struct {
	filters []payments.Filter
	created []*payments.Expense
}

func (f *fakeBook) Create(_ context.Context, e *payments.Expense) error {
	e.Normalize(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	if err := e.Validate(context.Background()); err != nil {
		return err
	}
	f.created = append(f.created, e)
	return nil
}

func (f *fakeBook) Update(context.Context, *payments.Expense) error { return nil }

func (f *fakeBook) Get(_ context.Context, entryID id.ID) (*payments.Expense, error) {
	return nil, apperror.NewNotFound("expense", entryID)
}

func (f *fakeBook) List(_ context.Context, filter payments.Filter) ([]*payments.Expense, error) {
	f.filters = append(f.filters, filter)
	return []*payments.Expense{}, nil
}

func (f *fakeBook) Delete(context.Context, id.ID) error { return errors.New("boom") }

type expenseReq struct {
	Kind   string      `json:"kind"`
	Amount types.Money `json:"amount"`
}

func expenseRouter(f *fakeBook) *gin.Engine {
	h := NewEntryHandler(NewBaseHandler(), EntryHandlerConfig[*payments.Expense, expenseReq]{
		Service: f,
		MapCreate: func(r expenseReq) *payments.Expense {
			return &payments.Expense{Kind: r.Kind, Amount: r.Amount}
		},
		MapUpdate: func(r expenseReq, e *payments.Expense) *payments.Expense {
			e.Kind, e.Amount = r.Kind, r.Amount
			return e
		},
	})
	r := newEngine()
	r.GET("/expenses", h.List)
	r.POST("/expenses", h.Create)
	r.PUT("/expenses/:id", h.Update)
	r.DELETE("/expenses/:id", h.Delete)
	return r
}

func TestEntryHandler_MonthFilter(t *testing.T) {
	f := &fakeBook{}
	w := do(expenseRouter(f), http.MethodGet, "/expenses?month=2026-02", "")

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, f.filters, 1)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), *f.filters[0].From)
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), *f.filters[0].To)
	assert.Equal(t, defaultLimit, f.filters[0].Limit)
}

func TestEntryHandler_BadMonth(t *testing.T) {
	w := do(expenseRouter(&fakeBook{}), http.MethodGet, "/expenses?month=feb", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEntryHandler_CreateRejectsZeroAmount(t *testing.T) {
	w := do(expenseRouter(&fakeBook{}), http.MethodPost, "/expenses", `{"kind":"fuel","amount":"0"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "amount", decode(t, w)["details"].(map[string]any)["field"])
}

func TestEntryHandler_UpdateUnknown(t *testing.T) {
	w := do(expenseRouter(&fakeBook{}), http.MethodPut, "/expenses/"+id.New().String(), `{"kind":"rent","amount":"5"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEntryHandler_InternalErrorIsHidden(t *testing.T) {
	w := do(expenseRouter(&fakeBook{}), http.MethodDelete, "/expenses/"+id.New().String(), "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}

// --- health ---

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestHealth_Ready(t *testing.T) {
	cases := []struct {
		name   string
		db     error
		cache  error
		status int
	}{
		{"healthy", nil, nil, http.StatusOK},
		{"cache degraded", nil, errors.New("refused"), http.StatusOK},
		{"database down", errors.New("refused"), nil, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHealthHandler(pinger{tc.db}, pinger{tc.cache})
			r := newEngine()
			r.GET("/health/ready", h.Ready)

			w := do(r, http.MethodGet, "/health/ready", "")
			assert.Equal(t, tc.status, w.Code)
		})
	}
}
