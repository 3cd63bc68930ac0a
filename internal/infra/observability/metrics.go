package observability

import (
	"time"

	"github.com/boddenberg/bills-dashboard-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the dashboard.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	fetchDuration  *prometheus.HistogramVec
	fetchErrors    *prometheus.CounterVec
	refreshCycles  *prometheus.CounterVec
	staleResponses prometheus.Counter
	realtimeEvents *prometheus.CounterVec
	liveCharts     prometheus.Gauge
	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// dashboard metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		fetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dashboard_fetch_duration_seconds",
				Help:    "Duration of dashboard data fetches.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		fetchErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_fetch_errors_total",
				Help: "Failed dashboard data fetches by kind.",
			},
			[]string{"kind"},
		),
		refreshCycles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_refresh_cycles_total",
				Help: "Refresh cycles by trigger and status.",
			},
			[]string{"trigger", "status"},
		),
		staleResponses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dashboard_stale_responses_total",
				Help: "Responses discarded because a newer cycle was already applied.",
			},
		),
		realtimeEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_realtime_events_total",
				Help: "Push notifications received.",
			},
			[]string{"event"},
		),
		liveCharts: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "dashboard_live_charts",
				Help: "Chart instances currently bound to a canvas.",
			},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
	}
}

// RecordFetch records the duration of one fetch and its outcome.
func (m *Metrics) RecordFetch(outcome string, d time.Duration) {
	m.fetchDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// IncrFetchError increments the fetch error counter (network, parse, circuit_open).
func (m *Metrics) IncrFetchError(kind string) {
	m.fetchErrors.WithLabelValues(kind).Inc()
}

// IncrRefresh counts a finished refresh cycle.
func (m *Metrics) IncrRefresh(trigger, status string) {
	m.refreshCycles.WithLabelValues(trigger, status).Inc()
}

// IncrStale counts a discarded out-of-order response.
func (m *Metrics) IncrStale() {
	m.staleResponses.Inc()
}

// IncrRealtimeEvent counts a received push notification.
func (m *Metrics) IncrRealtimeEvent(event string) {
	m.realtimeEvents.WithLabelValues(event).Inc()
}

// SetLiveCharts reports the number of live chart instances.
func (m *Metrics) SetLiveCharts(n int) {
	m.liveCharts.Set(float64(n))
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// GetDashboardSnapshot summarizes the counters for GET /v1/metrics/dashboard.
func (m *Metrics) GetDashboardSnapshot() *domain.DashboardMetrics {
	var cycles, failed float64
	for _, trigger := range []string{"startup", "user", "realtime"} {
		ok := getCounterValue(m.refreshCycles, trigger, "ok")
		bad := getCounterValue(m.refreshCycles, trigger, "error")
		cycles += ok + bad + getCounterValue(m.refreshCycles, trigger, "stale")
		failed += bad
	}
	fetchErrors := getCounterValue(m.fetchErrors, "network") +
		getCounterValue(m.fetchErrors, "parse") +
		getCounterValue(m.fetchErrors, "circuit_open")

	hits := getCounterValue(m.cacheHits, "chart_png")
	misses := getCounterValue(m.cacheMisses, "chart_png")
	hitRate := 0.0
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &domain.DashboardMetrics{
		RefreshCycles:     int64(cycles),
		FailedCycles:      int64(failed),
		StaleResponses:    int64(metricValue(m.staleResponses)),
		RealtimeEvents:    int64(getCounterValue(m.realtimeEvents, "bills_updated")),
		FetchErrors:       int64(fetchErrors),
		ChartCacheHitRate: hitRate,
		Period:            "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for the given labels.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	return metricValue(cv.WithLabelValues(labels...))
}

func metricValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
