// Package telemetry exposes Prometheus collectors for the insights service.
package telemetry

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	scrapesTotal               *prometheus.CounterVec
	scrapeDurationSeconds      *prometheus.HistogramVec
	loginWallsTotal            prometheus.Counter
	headlessPromotionsTotal    prometheus.Counter
	cacheOpsTotal              *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	summariesTotal             *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		scrapesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insights_scrapes_total",
				Help: "Total number of scrape attempts, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		scrapeDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "insights_scrape_duration_seconds",
				Help:    "Histogram of full scrape pipeline latencies.",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
			},
			[]string{"headless"},
		)

		loginWallsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "insights_login_walls_total",
				Help: "Total number of scrapes rejected by the login wall guard.",
			},
		)

		headlessPromotionsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "insights_headless_promotions_total",
				Help: "Total number of probe fetches promoted to a headless fetch.",
			},
		)

		cacheOpsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insights_cache_ops_total",
				Help: "Total cache operations, labeled by op and result.",
			},
			[]string{"op", "result"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 45},
			},
			[]string{"method", "route"},
		)

		summariesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insights_ai_summaries_total",
				Help: "Total AI summary generations, labeled by result.",
			},
			[]string{"result"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveScrape records one scrape attempt with its outcome and duration.
func ObserveScrape(outcome string, headless bool, duration time.Duration) {
	scrapesTotal.WithLabelValues(outcome).Inc()
	scrapeDurationSeconds.WithLabelValues(strconv.FormatBool(headless)).Observe(duration.Seconds())
}

// ObserveLoginWall increments the login wall rejection counter.
func ObserveLoginWall() {
	loginWallsTotal.Inc()
}

// ObserveHeadlessPromotion increments the probe promotion counter.
func ObserveHeadlessPromotion() {
	headlessPromotionsTotal.Inc()
}

// ObserveCacheOp records a cache operation result (hit, miss, error).
func ObserveCacheOp(op, result string) {
	cacheOpsTotal.WithLabelValues(op, result).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveSummary records one AI summary generation attempt.
func ObserveSummary(result string) {
	summariesTotal.WithLabelValues(result).Inc()
}
