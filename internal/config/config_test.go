package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/bills-dashboard-go/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DASHBOARD_USER_ID", "2")

	cfg := config.Load()

	if cfg.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Port)
	}
	if cfg.DefaultTimeframe != "1M" || cfg.PageSize != 10 {
		t.Errorf("unexpected dashboard defaults: %s / %d", cfg.DefaultTimeframe, cfg.PageSize)
	}
	if cfg.RealtimeEvent != "bills_updated" || cfg.Locale != "vi-VN" || cfg.PagerLabel != "Trang" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("MAX_RETRIES", "not-a-number")

	cfg := config.Load()

	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Errorf("expected 3s timeout, got %s", cfg.HTTPTimeout)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("unexpected origins %v", cfg.CORSOrigins)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("expected invalid MAX_RETRIES to fall back to 3, got %d", cfg.MaxRetries)
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := config.Load()
	cfg.Port = 0
	cfg.DashboardDataURL = "not a url"
	cfg.DefaultTimeframe = "forever"
	cfg.UserID = ""
	cfg.PrincipalToken = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"PORT", "DASHBOARD_DATA_URL", "DEFAULT_TIMEFRAME", "DASHBOARD_USER_ID"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %s, got %v", want, err)
		}
	}
}

func TestValidate_TokenNeedsSecret(t *testing.T) {
	cfg := config.Load()
	cfg.PrincipalToken = "abc"
	cfg.JWTSecret = ""

	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Errorf("expected JWT_SECRET error, got %v", err)
	}
}

func TestLoadDotEnv_EnvWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "DASHBOARD_TEST_FROM_FILE=file\nDASHBOARD_TEST_OVERRIDE=file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("DASHBOARD_TEST_OVERRIDE", "env")
	t.Cleanup(func() { os.Unsetenv("DASHBOARD_TEST_FROM_FILE") })

	if err := config.LoadDotEnv(path); err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := os.Getenv("DASHBOARD_TEST_FROM_FILE"); got != "file" {
		t.Errorf("expected value from file, got %q", got)
	}
	if got := os.Getenv("DASHBOARD_TEST_OVERRIDE"); got != "env" {
		t.Errorf("expected env to win, got %q", got)
	}
}
