package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketbill/internal/domain/billing"
)

func TestObserveRun(t *testing.T) {
	m := New()

	m.ObserveRun(&billing.RunSummary{
		Success:    true,
		DurationMs: 250,
		Shops: []billing.ShopOutcome{
			{Status: billing.ShopProcessed, Total: decimal.RequireFromString("100.50")},
			{Status: billing.ShopProcessed, Total: decimal.RequireFromString("49.50")},
			{Status: billing.ShopSkipped, Reason: "no reading"},
			{Status: billing.ShopFailed, Reason: "disk full"},
		},
	})
	m.ObserveRun(&billing.RunSummary{Success: false})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BillingRuns.WithLabelValues(resultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BillingRuns.WithLabelValues(resultFailed)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BillingShops.WithLabelValues("processed", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BillingShops.WithLabelValues("skipped", "no reading")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BillingShops.WithLabelValues("failed", "error")))
	assert.Equal(t, 150.0, testutil.ToFloat64(m.BillingInvoiced))
}

func TestObserveRelay(t *testing.T) {
	m := New()

	m.ObserveRelay("InvoiceMaterialized", nil)
	m.ObserveRelay("InvoiceMaterialized", errors.New("broker down"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxRelayed.WithLabelValues("InvoiceMaterialized", resultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxRelayed.WithLabelValues("InvoiceMaterialized", resultFailed)))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	m.RegisterGauge("outbox_pending", "Pending outbox messages", func() float64 { return 3 })

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/shops/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/shops/42", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/shops/:id", "204")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.True(t, strings.Contains(body, "marketbill_outbox_pending 3"))
	assert.True(t, strings.Contains(body, "marketbill_http_requests_total"))
}
