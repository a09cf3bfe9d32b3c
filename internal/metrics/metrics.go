package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Delivery channels of a shopping list
const (
	DeliveryDownload = "download"
	DeliveryEmail    = "email"
)

// Failure stages of a shopping list export
const (
	StageAggregate = "aggregate"
	StageRender    = "render"
	StageSend      = "send"
)

var (
	ShoppingListExports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_shopping_list_exports_total",
			Help: "Total number of shopping lists delivered",
		},
		[]string{"format", "delivery"},
	)

	ShoppingListFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_shopping_list_failures_total",
			Help: "Total number of failed shopping list exports by stage",
		},
		[]string{"stage"},
	)

	ShoppingListItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "foodgram_shopping_list_items",
			Help:    "Number of aggregated lines per exported shopping list",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		},
	)

	// MailCircuitOpen is 1 while the mail circuit breaker is open
	MailCircuitOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "foodgram_mail_circuit_open",
			Help: "Whether the SMTP circuit breaker is open",
		},
	)

	ShortLinkResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_short_link_resolutions_total",
			Help: "Total number of short link lookups by result",
		},
		[]string{"result"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
