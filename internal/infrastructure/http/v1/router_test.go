package v1

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketbill/internal/app"
	"marketbill/internal/domain/billing"
	"marketbill/internal/infrastructure/metrics"
	"marketbill/internal/infrastructure/storage/memory"
	"marketbill/pkg/logger"
)

type apiClient struct {
	t      *testing.T
	router *gin.Engine
}

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()
	store := memory.NewStore()
	services := app.NewServices(app.MemoryStorage(store), billing.Config{}, nil)
	router := NewRouter(RouterConfig{
		Logger:   logger.NewNop(),
		Services: services,
		Metrics:  metrics.New(),
		Driver:   "memory",
		Currency: "BDT",
	})
	return &apiClient{t: t, router: router}
}

func (a *apiClient) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *apiClient) create(path string, body any) string {
	a.t.Helper()
	w := a.do(http.MethodPost, path, body)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(a.t, resp.ID)
	return resp.ID
}

// seedMarket creates one billable shop with a reading for 2025-01.
func (a *apiClient) seedMarket() (marketID, shopID string) {
	marketID = a.create("/api/v1/markets", map[string]any{"name": "Central Market"})
	shopID = a.create("/api/v1/shops", map[string]any{
		"marketId": marketID,
		"code":     "A-1",
		"areaSqft": "100",
	})
	meterID := a.create("/api/v1/meters", map[string]any{
		"shopId":      shopID,
		"utilityType": "ELECTRIC",
		"serial":      "M-001",
		"multiplier":  "1",
	})
	a.create("/api/v1/readings", map[string]any{
		"meterId":     meterID,
		"period":      "2025-01",
		"prevReading": "100",
		"currReading": "150",
	})
	a.create("/api/v1/tariffs", map[string]any{
		"utilityType":     "ELECTRIC",
		"flatRatePerUnit": "10",
		"effectiveFrom":   "2024-01-01",
	})
	a.create("/api/v1/monthly-costs", map[string]any{
		"marketId": marketID,
		"period":   "2025-01",
	})
	return marketID, shopID
}

func (a *apiClient) compute(marketID string) billing.RunSummary {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/v1/billing/compute?marketId="+marketID+"&period=2025-01", nil)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var summary billing.RunSummary
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &summary))
	return summary
}

type invoiceBody struct {
	ID     string          `json:"id"`
	Number string          `json:"number"`
	Total  decimal.Decimal `json:"total"`
	Locked bool            `json:"locked"`
}

func (a *apiClient) firstInvoice() invoiceBody {
	a.t.Helper()
	w := a.do(http.MethodGet, "/api/v1/invoices?period=2025-01", nil)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var list struct {
		Items      []invoiceBody `json:"items"`
		TotalCount int64         `json:"totalCount"`
	}
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(a.t, list.Items, 1)
	return list.Items[0]
}

func TestRouter_Health(t *testing.T) {
	api := newTestAPI(t)

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/health/live", nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/health/ready", nil).Code)

	w := api.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "marketbill_")
}

func TestRouter_CatalogCRUD(t *testing.T) {
	api := newTestAPI(t)

	marketID := api.create("/api/v1/markets", map[string]any{"name": "North"})

	w := api.do(http.MethodPut, "/api/v1/markets/"+marketID, map[string]any{"name": "North Plaza", "active": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "North Plaza")

	w = api.do(http.MethodGet, "/api/v1/markets?search=plaza", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), marketID)

	w = api.do(http.MethodDelete, "/api/v1/markets/"+marketID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(http.MethodGet, "/api/v1/markets/"+marketID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_ErrorBody(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/api/v1/shops/0190f3a0-0000-7000-8000-000000000000", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	var body struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "NOT_FOUND", body.Code)
	assert.Equal(t, "shop", body.Details["entity"])

	w = api.do(http.MethodGet, "/api/v1/shops/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/v1/shops", map[string]any{"marketId": "0190f3a0-0000-7000-8000-000000000000", "code": "X"})
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
}

func TestRouter_ComputeAndInvoices(t *testing.T) {
	api := newTestAPI(t)
	marketID, _ := api.seedMarket()

	summary := api.compute(marketID)
	assert.True(t, summary.Success, summary.Errors)
	assert.Equal(t, 1, summary.ProcessedCount)
	assert.Equal(t, 0, summary.SkippedCount)

	inv := api.firstInvoice()
	assert.True(t, inv.Total.Equal(decimal.NewFromInt(500)), inv.Total.String())
	assert.NotEmpty(t, inv.Number)

	w := api.do(http.MethodGet, "/api/v1/invoices/"+inv.ID+"/items", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ELECTRICITY")

	w = api.do(http.MethodGet, "/api/v1/billing/runs?marketId="+marketID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var runs struct {
		Items []billing.RunRecord `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &runs))
	require.Len(t, runs.Items, 1)
	assert.True(t, runs.Items[0].Success)
}

func TestRouter_LockedInvoiceBlocksRecompute(t *testing.T) {
	api := newTestAPI(t)
	marketID, _ := api.seedMarket()
	api.compute(marketID)
	inv := api.firstInvoice()

	w := api.do(http.MethodPost, "/api/v1/invoices/"+inv.ID+"/lock", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	summary := api.compute(marketID)
	assert.False(t, summary.Success)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "force=true")

	w = api.do(http.MethodPost, "/api/v1/invoices/"+inv.ID+"/items/ELECTRICITY/override",
		map[string]any{"amount": "450", "reason": "meter fault"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRouter_AdjustmentCarriesActor(t *testing.T) {
	api := newTestAPI(t)
	marketID, _ := api.seedMarket()
	api.compute(marketID)
	inv := api.firstInvoice()

	w := api.do(http.MethodPost, "/api/v1/invoices/"+inv.ID+"/adjustments",
		map[string]any{"label": "Goodwill credit", "amount": "-50"},
		"X-Actor", "cashier-2")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var adj struct {
		ID        string `json:"id"`
		CreatedBy string `json:"createdBy"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &adj))
	assert.Equal(t, "cashier-2", adj.CreatedBy)

	w = api.do(http.MethodGet, "/api/v1/invoices/"+inv.ID+"/adjustments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Goodwill credit")

	w = api.do(http.MethodDelete, "/api/v1/invoices/"+inv.ID+"/adjustments/"+adj.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRouter_Exports(t *testing.T) {
	api := newTestAPI(t)
	marketID, _ := api.seedMarket()
	api.compute(marketID)
	inv := api.firstInvoice()

	w := api.do(http.MethodGet, "/api/v1/invoices/"+inv.ID+"/pdf", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = api.do(http.MethodGet, "/api/v1/reports/invoices.xlsx?marketId="+marketID+"&period=2025-01", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "invoices-2025-01.xlsx")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	w = api.do(http.MethodGet, "/api/v1/reports/market-summary?marketId="+marketID+"&period=2025-01", nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
