package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/app"
	"stockledger/internal/core/apperror"
	v1 "stockledger/internal/infrastructure/http/v1"
	"stockledger/internal/infrastructure/storage/memory"
	"stockledger/pkg/logger"
)

type apiClient struct {
	t      *testing.T
	router *gin.Engine
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	store := memory.New()
	require.NoError(t, store.SeedDemo(context.Background()))

	svc := app.NewServices(app.MemoryBackend(store), app.Options{
		JWTSecret:         "test-secret",
		LowStockThreshold: 10,
		Location:          time.UTC,
	})
	router := v1.NewRouter(v1.RouterConfig{
		Logger:           logger.Nop(),
		JWTValidator:     svc.JWT,
		AuthService:      svc.Auth,
		Recorder:         svc.Recorder,
		StockService:     svc.Stock,
		ReportService:    svc.Reports,
		ProductService:   svc.Products,
		WarehouseService: svc.Warehouses,
		Mode:             "memory",
	})
	return &apiClient{t: t, router: router}
}

func (a *apiClient) do(method, path, token string, body any) (int, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func (a *apiClient) login(username, password string) string {
	a.t.Helper()
	code, body := a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username, "password": password,
	})
	require.Equal(a.t, http.StatusOK, code, body)
	token, ok := body["token"].(map[string]any)
	require.True(a.t, ok)
	return token["accessToken"].(string)
}

func TestHealth(t *testing.T) {
	api := newAPI(t)

	code, body := api.do(http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	code, body = api.do(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "memory", body["mode"])
}

func TestAuthRequired(t *testing.T) {
	api := newAPI(t)

	code, body := api.do(http.MethodGet, "/api/v1/stock/balances", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, apperror.CodeUnauthorized, body["code"])

	code, _ = api.do(http.MethodGet, "/api/v1/stock/balances", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body = api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "admin", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, apperror.CodeUnauthorized, body["code"])
}

func TestMe(t *testing.T) {
	api := newAPI(t)
	token := api.login("nv1", "123456")

	code, body := api.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "nv1", body["username"])
	assert.Equal(t, "K1", body["assignedWarehouseId"])
	assert.Equal(t, "NV001", body["employeeId"])
}

func TestMovementFlow(t *testing.T) {
	api := newAPI(t)
	admin := api.login("admin", "admin123")
	nv1 := api.login("nv1", "123456")

	code, body := api.do(http.MethodGet, "/api/v1/movements/next-codes", nv1, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "N001", body["import"])
	assert.Equal(t, "DC001", body["transfer"])

	code, body = api.do(http.MethodPost, "/api/v1/movements/imports", nv1, map[string]any{
		"warehouseId": "K1", "productId": "SP001", "quantity": 50, "unitCost": "10.00", "supplierId": "NCC01",
	})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "N001", body["id"])
	assert.EqualValues(t, 50, body["balance"])

	code, body = api.do(http.MethodPost, "/api/v1/movements/imports", nv1, map[string]any{
		"warehouseId": "K2", "productId": "SP001", "quantity": 5, "unitCost": "10",
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, apperror.CodeForbidden, body["code"])

	code, body = api.do(http.MethodPost, "/api/v1/movements/exports", nv1, map[string]any{
		"warehouseId": "K1", "productId": "SP001", "quantity": 60, "unitPrice": "25",
	})
	require.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, apperror.CodeInsufficientStock, body["code"])
	details := body["details"].(map[string]any)
	assert.EqualValues(t, 10, details["shortfall"])
	assert.EqualValues(t, 50, details["available"])

	code, body = api.do(http.MethodPost, "/api/v1/movements/exports", nv1, map[string]any{
		"warehouseId": "K1", "productId": "SP001", "quantity": 20, "unitPrice": "25",
	})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "X001", body["id"])
	assert.EqualValues(t, 30, body["balance"])

	transfer := map[string]any{
		"sourceWarehouseId": "K1", "destinationWarehouseId": "K2",
		"lines": []map[string]any{{"productId": "SP001", "quantity": 10}},
	}
	code, body = api.do(http.MethodPost, "/api/v1/movements/transfers", nv1, transfer)
	assert.Equal(t, http.StatusForbidden, code, body)

	code, body = api.do(http.MethodPost, "/api/v1/movements/transfers", admin, transfer)
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "DC001", body["id"])

	code, body = api.do(http.MethodPost, "/api/v1/movements/transfers", admin, map[string]any{
		"sourceWarehouseId": "K1", "destinationWarehouseId": "K1",
		"lines": []map[string]any{{"productId": "SP001", "quantity": 1}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, apperror.CodeInvalidTransfer, body["code"])

	code, body = api.do(http.MethodGet, "/api/v1/stock/balances?warehouseId=K2", admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "K2", body["warehouseId"])
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.EqualValues(t, 10, items[0].(map[string]any)["quantity"])

	code, body = api.do(http.MethodGet, "/api/v1/stock/balances", nv1, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "K1", body["warehouseId"])

	code, _ = api.do(http.MethodGet, "/api/v1/stock/balances?warehouseId=K2", nv1, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = api.do(http.MethodGet, "/api/v1/movements/transfers", admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])

	code, body = api.do(http.MethodGet, "/api/v1/stock/reconcile", admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["drifts"])

	code, _ = api.do(http.MethodGet, "/api/v1/stock/reconcile", nv1, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestProductCatalog(t *testing.T) {
	api := newAPI(t)
	admin := api.login("admin", "admin123")
	nv2 := api.login("nv2", "123456")

	code, body := api.do(http.MethodPost, "/api/v1/catalog/products", admin, map[string]any{"name": "Tui xach"})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "SP006", body["id"])

	code, body = api.do(http.MethodPost, "/api/v1/catalog/products", admin, map[string]any{"id": "SP001", "name": "Dup"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, apperror.CodeDuplicate, body["code"])

	code, body = api.do(http.MethodPut, "/api/v1/catalog/products/SP006", admin, map[string]any{"name": "Tui deo", "color": "Nau"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Nau", body["color"])

	code, body = api.do(http.MethodPost, "/api/v1/movements/imports", admin, map[string]any{
		"warehouseId": "K2", "productId": "SP002", "quantity": 3, "unitCost": "7",
	})
	require.Equal(t, http.StatusCreated, code, body)

	code, body = api.do(http.MethodDelete, "/api/v1/catalog/products/SP002", admin, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, apperror.CodeIntegrityViolation, body["code"])

	code, _ = api.do(http.MethodDelete, "/api/v1/catalog/products/SP006", nv2, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = api.do(http.MethodDelete, "/api/v1/catalog/products/SP006", admin, nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, body = api.do(http.MethodGet, "/api/v1/catalog/warehouses", nv2, nil)
	require.Equal(t, http.StatusOK, code)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "K2", items[0].(map[string]any)["id"])

	code, body = api.do(http.MethodGet, "/api/v1/stock/low", nv2, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])
}

func TestReports(t *testing.T) {
	api := newAPI(t)
	admin := api.login("admin", "admin123")
	ts := time.Date(2024, 4, 10, 9, 0, 0, 0, time.UTC)

	code, body := api.do(http.MethodPost, "/api/v1/movements/imports", admin, map[string]any{
		"warehouseId": "K1", "productId": "SP001", "quantity": 50, "unitCost": "8", "timestamp": ts,
	})
	require.Equal(t, http.StatusCreated, code, body)
	code, body = api.do(http.MethodPost, "/api/v1/movements/exports", admin, map[string]any{
		"warehouseId": "K1", "productId": "SP001", "quantity": 20, "unitPrice": "25", "timestamp": ts.Add(time.Hour),
	})
	require.Equal(t, http.StatusCreated, code, body)

	code, body = api.do(http.MethodGet, "/api/v1/reports/sales?from=2024-04-01&to=2024-04-30", admin, nil)
	require.Equal(t, http.StatusOK, code, body)
	totals := body["totals"].(map[string]any)
	assert.Equal(t, "500", totals["revenue"])
	assert.Equal(t, "160", totals["cogs"])
	assert.Equal(t, "340", totals["profit"])
	daily := body["daily"].([]any)
	require.Len(t, daily, 1)
	assert.Equal(t, "2024-04-10", daily[0].(map[string]any)["date"])

	code, body = api.do(http.MethodGet, "/api/v1/reports/sales?from=bogus", admin, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, apperror.CodeValidation, body["code"])

	nv1 := api.login("nv1", "123456")
	code, body = api.do(http.MethodGet, "/api/v1/reports/dashboard", nv1, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "K1", body["warehouseId"])
	assert.EqualValues(t, 30, body["totalStock"])
	assert.EqualValues(t, 1, body["exportCount"])
}
