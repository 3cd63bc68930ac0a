package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/bills-dashboard-go/internal/config"
	"github.com/boddenberg/bills-dashboard-go/internal/domain"
	"github.com/boddenberg/bills-dashboard-go/internal/handler"
	"github.com/boddenberg/bills-dashboard-go/internal/infra/cache"
	"github.com/boddenberg/bills-dashboard-go/internal/infra/charting"
	"github.com/boddenberg/bills-dashboard-go/internal/infra/client"
	"github.com/boddenberg/bills-dashboard-go/internal/infra/observability"
	"github.com/boddenberg/bills-dashboard-go/internal/infra/principal"
	"github.com/boddenberg/bills-dashboard-go/internal/infra/realtime"
	"github.com/boddenberg/bills-dashboard-go/internal/infra/resilience"
	"github.com/boddenberg/bills-dashboard-go/internal/infra/view"
	"github.com/boddenberg/bills-dashboard-go/internal/port"
	"github.com/boddenberg/bills-dashboard-go/internal/service"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("dashboard_data_url", cfg.DashboardDataURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("chart_cache_ttl", cfg.ChartCacheTTL),
		zap.Bool("realtime", cfg.AMQPURL != ""),
		zap.String("default_timeframe", cfg.DefaultTimeframe),
		zap.Int("page_size", cfg.PageSize),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "bills-dashboard")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Charts ---
	pngCache := cache.New[[]byte](cfg.ChartCacheTTL)
	defer pngCache.Close()
	charts := charting.NewEngine(
		charting.WithPNGCache(cache.NewInstrumented("chart_png", pngCache, metrics)),
		charting.WithLiveGauge(metrics.SetLiveCharts),
	)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("dashboard-data", logger)

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	dataClient := client.NewDashboardClient(httpClient, cfg.DashboardDataURL, cb, resilienceCfg)

	var who port.PrincipalProvider = principal.Static{ID: cfg.UserID}
	if cfg.PrincipalToken != "" {
		who = principal.NewToken(cfg.PrincipalToken, cfg.JWTSecret)
		logger.Info("principal read from signed token")
	}

	// --- Dashboard ---
	doc := view.NewDashboardDocument()
	dash := service.NewDashboard(dataClient, who, doc, charts, metrics, logger, service.Options{
		Timeframe:  cfg.DefaultTimeframe,
		PageSize:   cfg.PageSize,
		Locale:     cfg.Locale,
		PagerLabel: cfg.PagerLabel,
	})
	defer dash.Close()

	var subscriber *realtime.Subscriber
	if cfg.AMQPURL != "" {
		subscriber = realtime.NewSubscriber(cfg.AMQPURL, cfg.EventsExchange, logger)
	} else {
		logger.Warn("realtime: AMQP_URL not configured, push refresh disabled")
	}

	// --- Router ---
	router := handler.NewRouter(dash, doc, charts, metrics, logger,
		handler.WithCORSOrigins(cfg.CORSOrigins...),
		handler.WithHealthCheck(breakerHealth(cb)),
		handler.WithHealthCheck(realtimeHealth(subscriber)),
	)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	// First paint. A failure leaves the page empty until the next trigger.
	g.Go(func() error {
		if err := dash.Refresh(gctx, service.TriggerStartup); err != nil {
			logger.Warn("initial refresh failed", zap.Error(err))
		}
		return nil
	})

	if subscriber != nil {
		listener := service.NewRealtimeListener(subscriber, dash, cfg.RealtimeEvent, metrics, logger)
		g.Go(func() error { return listener.Run(gctx) })
	}

	// --- Graceful shutdown ---
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}

func breakerHealth(cb *gobreaker.CircuitBreaker) handler.HealthCheck {
	return func(context.Context) domain.ServiceHealth {
		h := domain.ServiceHealth{Name: "dashboard-data", Status: "healthy"}
		switch cb.State() {
		case gobreaker.StateOpen:
			h.Status, h.Detail = "unhealthy", "circuit open"
		case gobreaker.StateHalfOpen:
			h.Status, h.Detail = "degraded", "circuit half-open"
		}
		return h
	}
}

func realtimeHealth(sub *realtime.Subscriber) handler.HealthCheck {
	return func(context.Context) domain.ServiceHealth {
		h := domain.ServiceHealth{Name: "realtime", Status: "healthy"}
		if sub == nil {
			h.Status, h.Detail = "degraded", "disabled"
			return h
		}
		if connected, err := sub.Status(); !connected {
			h.Status = "degraded"
			if err != nil {
				h.Detail = err.Error()
			}
		}
		return h
	}
}
