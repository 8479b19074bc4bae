package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SalesRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_sales_recorded_total",
		Help: "Total number of sales recorded",
	})

	SaleItemsRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_sale_items_recorded_total",
		Help: "Total number of units sold",
	})

	SalesRevenueTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_sales_revenue_total",
		Help: "Total revenue of recorded sales",
	})

	CheckoutsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_checkouts_failed_total",
		Help: "Total number of rejected or failed checkouts",
	}, []string{"reason"})

	CheckoutLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_checkout_latency_seconds",
		Help:    "Latency of checkout transactions",
		Buckets: prometheus.DefBuckets,
	})

	CatalogChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_catalog_changes_total",
		Help: "Total number of catalog mutations",
	}, []string{"op"})

	ReceiptsWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_receipts_written_total",
		Help: "Total number of receipts written by the receipt worker",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
