// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nool",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "nool",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	JobOrdersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nool",
		Name:      "job_orders_created_total",
		Help:      "Job orders created by job work type.",
	}, []string{"job_work_type"})

	JobOrderReceipts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nool",
		Name:      "job_order_receipts_total",
		Help:      "Receipt events by resulting job order status.",
	}, []string{"status"})

	ProcessLossPercent = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "nool",
		Name:      "process_loss_percent",
		Help:      "Aggregate process loss percentage recorded on receipt.",
		Buckets:   []float64{1, 2, 5, 8, 10, 15, 20, 30, 50},
	})

	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nool",
		Name:      "notifications_total",
		Help:      "Vendor notifications by channel, kind and outcome.",
	}, []string{"channel", "kind", "outcome"})
)
