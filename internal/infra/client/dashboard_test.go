package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boddenberg/bills-dashboard-go/internal/domain"
	"github.com/boddenberg/bills-dashboard-go/internal/infra/client"
	"github.com/boddenberg/bills-dashboard-go/internal/infra/resilience"

	"go.uber.org/zap"
)

const validBody = `{
	"monthly": {"income": 1000, "expense": 400},
	"timeseries": {"labels": ["W1"], "income": [1000], "expense": [400]},
	"transactions": [
		{"date": "2024-01-01", "merchant": "A", "category": "Food", "amount": 400, "type": "expense"},
		{"date": "2024-01-02", "merchant": "Acme", "category": "Salary", "amount": 1000, "type": 1}
	],
	"pagination": {"page": 1, "total_pages": 1}
}`

func newClient(url string, retries int) *client.DashboardClient {
	return client.NewDashboardClient(
		&http.Client{Timeout: 2 * time.Second},
		url+"/dashboard_data",
		resilience.NewCircuitBreaker("test", zap.NewNop()),
		resilience.Config{MaxRetries: retries, InitialBackoff: time.Millisecond, MaxConcurrency: 2},
	)
}

func TestFetchSummary_Success(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dashboard_data" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(validBody))
	}))
	defer srv.Close()

	q := domain.NewFilterState("1M", 10).BuildQuery("2")
	payload, err := newClient(srv.URL, 0).FetchSummary(context.Background(), q)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if gotQuery != "timeframe=1M&page=1&page_size=10&user_id=2" {
		t.Errorf("unexpected query %q", gotQuery)
	}
	if len(payload.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(payload.Transactions))
	}
	if payload.Transactions[0].Type != domain.Expense || payload.Transactions[1].Type != domain.Income {
		t.Errorf("types not normalized: %+v", payload.Transactions)
	}
	if payload.Pagination == nil || payload.Pagination.TotalPages != 1 {
		t.Errorf("unexpected pagination %+v", payload.Pagination)
	}
	if payload.CategoryTimeseries != nil {
		t.Error("expected absent category time-series")
	}
}

func TestFetchSummary_ServerErrorRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(validBody))
	}))
	defer srv.Close()

	if _, err := newClient(srv.URL, 3).FetchSummary(context.Background(), nil); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}

func TestFetchSummary_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL, 3).FetchSummary(context.Background(), nil)

	var netErr *domain.ErrNetwork
	if !errors.As(err, &netErr) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if netErr.Status != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", netErr.Status)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestFetchSummary_MalformedBodyIsParseError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"monthly": `))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL, 3).FetchSummary(context.Background(), nil)

	var parseErr *domain.ErrParse
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected parse errors not retried, got %d calls", calls.Load())
	}
}

func TestFetchSummary_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newClient(url, 0).FetchSummary(context.Background(), nil)

	var netErr *domain.ErrNetwork
	if !errors.As(err, &netErr) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if netErr.Status != 0 {
		t.Errorf("expected no status for transport failure, got %d", netErr.Status)
	}
}

func TestDecodeSummary_ShapeViolations(t *testing.T) {
	tests := map[string]string{
		"missing monthly":    `{"timeseries": {"labels": [], "income": [], "expense": []}}`,
		"missing timeseries": `{"monthly": {"income": 0, "expense": 0}}`,
		"misaligned series":  `{"monthly": {}, "timeseries": {"labels": ["W1", "W2"], "income": [1], "expense": [1, 2]}}`,
		"category length": `{"monthly": {}, "timeseries": {"labels": [], "income": [], "expense": []},
			"category_timeseries": {"labels": ["W1"], "datasets": [{"label": "Food", "data": [1, 2]}]}}`,
		"negative amount": `{"monthly": {}, "timeseries": {"labels": [], "income": [], "expense": []},
			"transactions": [{"date": "2024-01-01", "amount": -5, "type": "expense"}]}`,
		"not an object": `[]`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := client.DecodeSummary([]byte(body))
			var parseErr *domain.ErrParse
			if !errors.As(err, &parseErr) {
				t.Errorf("expected ErrParse, got %v", err)
			}
		})
	}
}

func TestDecodeSummary_OptionalSections(t *testing.T) {
	body := `{
		"monthly": {"income": 0, "expense": 0},
		"timeseries": {"labels": ["W1"], "income": [0], "expense": [0]},
		"category_timeseries": {"labels": ["W1"], "datasets": [{"label": "Food", "data": [3]}]},
		"by_category": [{"category": "Food", "amount": 3}],
		"transactions": []
	}`

	p, err := client.DecodeSummary([]byte(body))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p.CategoryTimeseries == nil || len(p.CategoryTimeseries.Datasets) != 1 {
		t.Errorf("expected one category dataset, got %+v", p.CategoryTimeseries)
	}
	if len(p.ByCategory) != 1 || p.ByCategory[0].Amount != 3 {
		t.Errorf("unexpected by_category %+v", p.ByCategory)
	}
	if p.Pagination != nil {
		t.Errorf("expected nil pagination, got %+v", p.Pagination)
	}
}
