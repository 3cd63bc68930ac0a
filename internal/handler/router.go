package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/boddenberg/bills-dashboard-go/internal/domain"
	"github.com/boddenberg/bills-dashboard-go/internal/infra/charting"
	"github.com/boddenberg/bills-dashboard-go/internal/infra/observability"
	"github.com/boddenberg/bills-dashboard-go/internal/infra/view"
	"github.com/boddenberg/bills-dashboard-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// HealthCheck reports the state of one collaborator for /healthz.
type HealthCheck func(ctx context.Context) domain.ServiceHealth

type routerConfig struct {
	corsOrigins []string
	checks      []HealthCheck
}

// RouterOption configures NewRouter.
type RouterOption func(*routerConfig)

// WithCORSOrigins sets the origins allowed to call the API from a browser.
func WithCORSOrigins(origins ...string) RouterOption {
	return func(c *routerConfig) { c.corsOrigins = origins }
}

// WithHealthCheck adds a collaborator to /healthz.
func WithHealthCheck(check HealthCheck) RouterOption {
	return func(c *routerConfig) { c.checks = append(c.checks, check) }
}

// NewRouter creates the HTTP router with all routes and middleware.
// Dashboard routes are mounted only when dash is set.
func NewRouter(dash *service.Dashboard, doc *view.Document, charts *charting.Engine, metrics *observability.Metrics, logger *zap.Logger, opts ...RouterOption) http.Handler {
	cfg := routerConfig{corsOrigins: []string{"*"}}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id", "Traceparent"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(cfg.checks))
	r.Get("/readyz", readyzHandler(dash))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Get("/metrics/dashboard", dashboardMetricsHandler(metrics))

		if dash == nil {
			return
		}
		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", snapshotHandler(dash, doc, charts))
			r.Post("/refresh", refreshHandler(dash, doc, charts, logger))

			// Filter selection: each change refetches from page 1.
			r.Post("/timeframe", timeframeHandler(dash, doc, charts, logger))
			r.Post("/range", rangeHandler(dash, doc, charts, logger))
			r.Post("/type", typeHandler(dash, doc, charts, logger))
			r.Post("/categories", categoriesHandler(dash, doc, charts, logger))

			r.Post("/pages/prev", prevPageHandler(dash, doc, charts, logger))
			r.Post("/pages/next", nextPageHandler(dash, doc, charts, logger))

			// Local interactions: no fetch.
			r.Post("/report", reportHandler(dash, logger))
			r.Post("/tabs/{tab}", tabHandler(dash, doc, logger))
			r.Post("/canvases/{canvas}", resizeCanvasHandler(doc, logger))
			r.Post("/charts/category/hover", hoverHandler(dash, charts))
			r.Post("/charts/category/leave", leaveHandler(dash, charts))
			r.Get("/charts/{canvas}.png", chartImageHandler(charts, logger))
		})
	})

	return r
}

func healthzHandler(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "dashboard-api", Status: "healthy", LastChecked: now},
		}
		for _, check := range checks {
			s := check(ctx)
			if s.LastChecked == "" {
				s.LastChecked = now
			}
			services = append(services, s)
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

// readyzHandler reports ready once the dashboard has applied a payload.
func readyzHandler(dash *service.Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if dash != nil && !dash.Loaded() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func dashboardMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetDashboardSnapshot())
	}
}
