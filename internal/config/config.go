package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/boddenberg/bills-dashboard-go/internal/domain"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port        int
	LogLevel    string
	CORSOrigins []string

	// Bills backend
	DashboardDataURL string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Cache
	ChartCacheTTL time.Duration

	// Observability
	OTLPEndpoint string

	// Realtime (AMQP_URL empty disables the listener)
	AMQPURL        string
	EventsExchange string
	RealtimeEvent  string

	// Principal: a signed token wins over the static id
	UserID         string
	PrincipalToken string
	JWTSecret      string

	// Dashboard
	PageSize         int
	DefaultTimeframe string
	Locale           string
	PagerLabel       string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:        getEnvInt("PORT", 8080),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"*"}),

		DashboardDataURL: getEnv("DASHBOARD_DATA_URL", "http://127.0.0.1:5001/dashboard_data"),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 8),

		ChartCacheTTL: getEnvDuration("CHART_CACHE_TTL", 5*time.Minute),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		AMQPURL:        getEnv("AMQP_URL", ""),
		EventsExchange: getEnv("DASHBOARD_EVENTS_EXCHANGE", "bills.events"),
		RealtimeEvent:  getEnv("REALTIME_EVENT", "bills_updated"),

		UserID:         getEnv("DASHBOARD_USER_ID", ""),
		PrincipalToken: getEnv("PRINCIPAL_TOKEN", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),

		PageSize:         getEnvInt("PAGE_SIZE", 10),
		DefaultTimeframe: getEnv("DEFAULT_TIMEFRAME", domain.DefaultTimeframe),
		Locale:           getEnv("LOCALE", "vi-VN"),
		PagerLabel:       getEnv("PAGER_LABEL", "Trang"),
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be 1-65535, got %d", c.Port))
	}
	if u, err := url.Parse(c.DashboardDataURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("DASHBOARD_DATA_URL must be an absolute URL, got %q", c.DashboardDataURL))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("HTTP_TIMEOUT must be positive"))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, errors.New("MAX_RETRIES must not be negative"))
	}
	if c.MaxConcurrency < 1 {
		errs = append(errs, errors.New("MAX_CONCURRENCY must be at least 1"))
	}
	if c.PageSize < 1 {
		errs = append(errs, errors.New("PAGE_SIZE must be at least 1"))
	}
	if _, err := domain.ValidateTimeframe(c.DefaultTimeframe); err != nil {
		errs = append(errs, fmt.Errorf("DEFAULT_TIMEFRAME: %w", err))
	}
	if c.PrincipalToken != "" && c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required with PRINCIPAL_TOKEN"))
	}
	if c.PrincipalToken == "" && strings.TrimSpace(c.UserID) == "" {
		errs = append(errs, errors.New("one of DASHBOARD_USER_ID or PRINCIPAL_TOKEN is required"))
	}
	if c.AMQPURL != "" && c.EventsExchange == "" {
		errs = append(errs, errors.New("DASHBOARD_EVENTS_EXCHANGE is required with AMQP_URL"))
	}

	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
