package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"billing-service/internal/model"
	"billing-service/internal/store"
	"billing-service/pkg/config"
	"billing-service/prometheus"

	"github.com/labstack/echo/v4"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	// metric vectors must exist before any handler records into them
	prometheus.InitMetrics(&config.Config{
		Metrics: config.MetricsConfig{Prefix: "billing_test"},
	})
	os.Exit(m.Run())
}

type testEnv struct {
	e       *echo.Echo
	bills   *store.BillStore
	catalog *store.CatalogStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&model.Bill{}, &model.BillItem{}, &model.Product{}); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	bills := store.NewBillStore(db)
	catalog := store.NewCatalogStore(db)
	billHandler := NewBillHandler(bills)
	productHandler := NewProductHandler(catalog)

	e := echo.New()
	e.Validator = NewRequestValidator()

	e.GET("/health", HealthCheck)
	billAPI := e.Group("/api/bills")
	billAPI.GET("/current", billHandler.GetCurrentBill)
	billAPI.POST("", billHandler.CreateBill)
	billAPI.POST("/:id/items", billHandler.AppendItem)
	billAPI.PATCH("/:id", billHandler.PatchBill)

	productAPI := e.Group("/api/products")
	productAPI.GET("", productHandler.ListProducts)
	productAPI.GET("/:code", productHandler.GetProduct)
	productAPI.POST("", productHandler.CreateProduct)
	productAPI.PUT("/:code", productHandler.UpdateProduct)
	productAPI.DELETE("/:code", productHandler.DeleteProduct)

	return &testEnv{e: e, bills: bills, catalog: catalog}
}

func (env *testEnv) request(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)
	rec := env.request(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
