package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pos-service/internal/cart"
	"pos-service/internal/models"
	"pos-service/internal/service"
	"pos-service/internal/store"
	"pos-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	util.SetLogger(zap.NewNop())

	db, err := store.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sales := service.NewSaleService(db, nil)
	h := NewHandler(
		db,
		service.NewCatalogService(db),
		service.NewCartService(db, cart.NewMemoryStore(), sales, cart.DefaultMaxLineQuantity),
		sales,
		service.NewReportService(db),
		Options{StoreName: "Toko Test"},
	)

	router := gin.New()
	h.SetupRoutes(router)
	return router
}

func do(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func createProduct(t *testing.T, router *gin.Engine, name string, price, stock int) models.Product {
	t.Helper()
	w := do(t, router, http.MethodPost, "/api/v1/products", gin.H{"name": name, "price": price, "stock": stock})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var p models.Product
	decode(t, w, &p)
	return p
}

func createCart(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := do(t, router, http.MethodPost, "/api/v1/carts", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var c cart.Cart
	decode(t, w, &c)
	require.NotEmpty(t, c.ID)
	return c.ID
}

func TestHealthAndReady(t *testing.T) {
	router := setupRouter(t)

	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/ready", nil).Code)
}

func TestProductEndpoints(t *testing.T) {
	router := setupRouter(t)

	p := createProduct(t, router, "Kopi", 1500, 10)
	assert.True(t, decimal.NewFromInt(1500).Equal(p.Price))

	w := do(t, router, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", p.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodPut, fmt.Sprintf("/api/v1/products/%d", p.ID),
		gin.H{"name": "Kopi Susu", "price": "2000", "stock": 10})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &p)
	assert.Equal(t, "Kopi Susu", p.Name)

	w = do(t, router, http.MethodPost, fmt.Sprintf("/api/v1/products/%d/stock", p.ID), gin.H{"delta": -11})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, router, http.MethodPost, fmt.Sprintf("/api/v1/products/%d/stock", p.ID), gin.H{"delta": 5})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &p)
	assert.Equal(t, 15, p.Stock)

	w = do(t, router, http.MethodGet, "/api/v1/products/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, fmt.Sprintf("ID,Name,Price,Stock\n%d,Kopi Susu,2000,15\n", p.ID), w.Body.String())

	w = do(t, router, http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", p.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, router, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", p.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductValidation(t *testing.T) {
	router := setupRouter(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing price", gin.H{"name": "A", "stock": 1}},
		{"empty name", gin.H{"name": " ", "price": 10}},
		{"negative price", gin.H{"name": "A", "price": -10}},
		{"negative stock", gin.H{"name": "A", "price": 10, "stock": -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/api/v1/products", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}

	w := do(t, router, http.MethodGet, "/api/v1/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutFlow(t *testing.T) {
	router := setupRouter(t)
	a := createProduct(t, router, "A", 1500, 5)
	b := createProduct(t, router, "B", 12000, 1)
	id := createCart(t, router)

	w := do(t, router, http.MethodPost, "/api/v1/carts/"+id+"/checkout", gin.H{"tendered": 100})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, router, http.MethodPost, "/api/v1/carts/"+id+"/lines", gin.H{"product_id": a.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = do(t, router, http.MethodPost, "/api/v1/carts/"+id+"/lines", gin.H{"product_id": b.ID, "quantity": 2})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = do(t, router, http.MethodPost, "/api/v1/carts/"+id+"/lines", gin.H{"product_id": b.ID, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, router, http.MethodPost, "/api/v1/carts/"+id+"/lines", gin.H{"product_id": b.ID, "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)

	var view struct {
		Total decimal.Decimal `json:"total"`
	}
	decode(t, w, &view)
	assert.True(t, decimal.NewFromInt(15000).Equal(view.Total))

	w = do(t, router, http.MethodPost, "/api/v1/carts/"+id+"/checkout", gin.H{"tendered": 10000})
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	w = do(t, router, http.MethodPost, "/api/v1/carts/"+id+"/checkout", gin.H{"tendered": "20000"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res struct {
		Sale    models.Sale     `json:"sale"`
		Change  decimal.Decimal `json:"change"`
		Receipt string          `json:"receipt"`
	}
	decode(t, w, &res)
	assert.True(t, decimal.NewFromInt(15000).Equal(res.Sale.Total))
	assert.True(t, decimal.NewFromInt(5000).Equal(res.Change))
	assert.Contains(t, res.Receipt, "CHANGE")

	w = do(t, router, http.MethodGet, "/api/v1/carts/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodGet, fmt.Sprintf("/api/v1/sales/%d", res.Sale.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail models.SaleDetail
	decode(t, w, &detail)
	assert.Len(t, detail.Items, 2)

	w = do(t, router, http.MethodGet, fmt.Sprintf("/api/v1/sales/%d/receipt", res.Sale.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Toko Test")
	assert.NotContains(t, w.Body.String(), "TENDERED")

	w = do(t, router, http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", a.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/sales/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartLineRemoval(t *testing.T) {
	router := setupRouter(t)
	a := createProduct(t, router, "A", 1500, 5)
	id := createCart(t, router)

	do(t, router, http.MethodPost, "/api/v1/carts/"+id+"/lines", gin.H{"product_id": a.ID, "quantity": 1})

	w := do(t, router, http.MethodDelete, "/api/v1/carts/"+id+"/lines/3", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, router, http.MethodDelete, "/api/v1/carts/"+id+"/lines/0", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodDelete, "/api/v1/carts/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, router, http.MethodDelete, "/api/v1/carts/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportEndpoints(t *testing.T) {
	router := setupRouter(t)
	a := createProduct(t, router, "A", 1500, 5)
	b := createProduct(t, router, "B", 12000, 5)
	id := createCart(t, router)
	do(t, router, http.MethodPost, "/api/v1/carts/"+id+"/lines", gin.H{"product_id": a.ID, "quantity": 2})
	do(t, router, http.MethodPost, "/api/v1/carts/"+id+"/lines", gin.H{"product_id": b.ID, "quantity": 1})
	w := do(t, router, http.MethodPost, "/api/v1/carts/"+id+"/checkout", gin.H{"tendered": 15000})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, router, http.MethodGet, "/api/v1/reports/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dash struct {
		Stats   models.DashboardStats `json:"stats"`
		Display string                `json:"revenue_today_display"`
	}
	decode(t, w, &dash)
	assert.Equal(t, 2, dash.Stats.ProductCount)
	assert.Equal(t, 1, dash.Stats.SaleCountToday)
	assert.Equal(t, "Rp 15.000", dash.Display)

	now := time.Now()
	w = do(t, router, http.MethodGet, "/api/v1/reports/daily?date="+now.Format("2006-01-02"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodGet,
		fmt.Sprintf("/api/v1/reports/monthly/export?year=%d&month=%d", now.Year(), int(now.Month())), nil)
	require.Equal(t, http.StatusOK, w.Code)
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Equal(t, "TOTAL,,3,15000", lines[len(lines)-1])

	w = do(t, router, http.MethodGet, "/api/v1/reports/revenue", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var trend struct {
		Months []models.MonthRevenue `json:"months"`
	}
	decode(t, w, &trend)
	require.Len(t, trend.Months, 3)
	assert.True(t, decimal.NewFromInt(15000).Equal(trend.Months[2].Revenue))

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/v1/reports/monthly?month=13", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/v1/reports/daily?date=15-06-2025", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/v1/reports/revenue?months=0", nil).Code)
}

func TestErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &Handler{logger: zap.NewNop()}

	tests := []struct {
		err  error
		code int
	}{
		{&service.ValidationError{Field: "name", Message: "empty"}, http.StatusBadRequest},
		{cart.ErrInvalidQuantity, http.StatusBadRequest},
		{fmt.Errorf("product 1: %w", store.ErrNotFound), http.StatusNotFound},
		{cart.ErrCartNotFound, http.StatusNotFound},
		{store.ErrProductInUse, http.StatusConflict},
		{fmt.Errorf("failed to record sale: %w", store.ErrInsufficientStock), http.StatusConflict},
		{service.ErrInsufficientPayment, http.StatusPaymentRequired},
		{service.ErrEmptyCart, http.StatusUnprocessableEntity},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		h.writeError(c, tt.err)
		assert.Equal(t, tt.code, w.Code, "%v", tt.err)
	}
}
