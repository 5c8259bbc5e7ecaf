// Package metrics exposes Prometheus metrics of billing runs, the HTTP API
// and the outbox relay.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marketbill/internal/domain/billing"
)

const (
	metricPrefix = "marketbill_"

	resultSuccess = "success"
	resultFailed  = "failed"
)

// Metrics bundles service metrics registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	BillingRuns        *prometheus.CounterVec
	BillingRunDuration prometheus.Histogram
	BillingShops       *prometheus.CounterVec
	BillingInvoiced    prometheus.Counter

	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec

	OutboxRelayed *prometheus.CounterVec
}

var _ billing.RunObserver = (*Metrics)(nil)

// New constructs and registers metrics on a fresh registry,
// together with the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		BillingRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "billing_runs_total",
				Help: "Total billing runs by result",
			},
			[]string{"result"},
		),
		BillingRunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricPrefix + "billing_run_duration_seconds",
			Help:    "Billing run duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		BillingShops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "billing_shops_total",
				Help: "Shops handled by billing runs by status and reason",
			},
			[]string{"status", "reason"},
		),
		BillingInvoiced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "billing_invoiced_amount_total",
			Help: "Sum of invoice totals written by billing runs",
		}),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		OutboxRelayed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "outbox_relayed_total",
				Help: "Outbox messages handed to the broker by event type and result",
			},
			[]string{"event_type", "result"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.BillingRuns,
		m.BillingRunDuration,
		m.BillingShops,
		m.BillingInvoiced,
		m.HTTPRequests,
		m.HTTPLatency,
		m.OutboxRelayed,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RegisterGauge exposes a value computed on scrape, such as the outbox backlog.
func (m *Metrics) RegisterGauge(name, help string, fn func() float64) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{Name: metricPrefix + name, Help: help},
		fn,
	))
}

// ObserveRun implements billing.RunObserver.
func (m *Metrics) ObserveRun(summary *billing.RunSummary) {
	result := resultSuccess
	if !summary.Success {
		result = resultFailed
	}
	m.BillingRuns.WithLabelValues(result).Inc()
	m.BillingRunDuration.Observe(float64(summary.DurationMs) / 1000)

	for _, shop := range summary.Shops {
		reason := shop.Reason
		if shop.Status == billing.ShopFailed {
			reason = "error"
		}
		m.BillingShops.WithLabelValues(string(shop.Status), reason).Inc()
		if shop.Status == billing.ShopProcessed {
			total, _ := shop.Total.Float64()
			m.BillingInvoiced.Add(total)
		}
	}
}

// ObserveRelay counts one outbox message handed to the broker.
func (m *Metrics) ObserveRelay(eventType string, err error) {
	result := resultSuccess
	if err != nil {
		result = resultFailed
	}
	m.OutboxRelayed.WithLabelValues(eventType, result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request count and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPLatency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
