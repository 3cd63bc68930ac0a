package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/boddenberg/bills-dashboard-go/internal/domain"
	"github.com/boddenberg/bills-dashboard-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

var tracer = otel.Tracer("client")

// maxPayloadBytes bounds the response body read from the backend.
const maxPayloadBytes = 8 << 20

// DashboardClient fetches dashboard payloads from the bills backend.
type DashboardClient struct {
	httpClient *http.Client
	endpoint   string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	bulkhead   *resilience.Bulkhead
}

// NewDashboardClient creates a client for endpoint, the full URL of the
// dashboard data route (e.g. http://127.0.0.1:5001/dashboard_data).
func NewDashboardClient(httpClient *http.Client, endpoint string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *DashboardClient {
	if cfg.Retryable == nil {
		cfg.Retryable = isRetryable
	}
	return &DashboardClient{
		httpClient: httpClient,
		endpoint:   endpoint,
		cb:         cb,
		cfg:        cfg,
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
	}
}

// FetchSummary issues one GET with q and decodes the payload. Transport
// failures and non-2xx statuses return *domain.ErrNetwork; a body that is not
// a well-formed payload returns *domain.ErrParse and is not retried.
func (c *DashboardClient) FetchSummary(ctx context.Context, q domain.Query) (*domain.SummaryPayload, error) {
	ctx, span := tracer.Start(ctx, "DashboardClient.FetchSummary")
	defer span.End()
	span.SetAttributes(attribute.String("dashboard.query", q.Encode()))

	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, &domain.ErrNetwork{Err: err}
	}
	defer c.bulkhead.Release()

	result, err := c.cb.Execute(func() (any, error) {
		var payload *domain.SummaryPayload
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			p, err := c.fetchOnce(ctx, q)
			if err != nil {
				return err
			}
			payload = p
			return nil
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return payload, nil
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &domain.ErrNetwork{Err: &domain.ErrCircuitOpen{Service: "dashboard_data"}}
		}
		var netErr *domain.ErrNetwork
		var parseErr *domain.ErrParse
		if errors.As(err, &netErr) || errors.As(err, &parseErr) {
			return nil, err
		}
		return nil, &domain.ErrNetwork{Err: err}
	}

	return result.(*domain.SummaryPayload), nil
}

func (c *DashboardClient) fetchOnce(ctx context.Context, q domain.Query) (*domain.SummaryPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(q), nil)
	if err != nil {
		return nil, &domain.ErrNetwork{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ErrNetwork{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &domain.ErrNetwork{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("dashboard API returned status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, &domain.ErrNetwork{Err: err}
	}
	return DecodeSummary(body)
}

func (c *DashboardClient) url(q domain.Query) string {
	if len(q) == 0 {
		return c.endpoint
	}
	sep := "?"
	if strings.Contains(c.endpoint, "?") {
		sep = "&"
	}
	return c.endpoint + sep + q.Encode()
}

func isRetryable(err error) bool {
	var netErr *domain.ErrNetwork
	if !errors.As(err, &netErr) {
		return false
	}
	return netErr.Status == 0 || netErr.Status >= 500
}

type wirePayload struct {
	Monthly            *domain.Monthly            `json:"monthly"`
	Timeseries         *domain.Timeseries         `json:"timeseries"`
	CategoryTimeseries *domain.CategoryTimeseries `json:"category_timeseries"`
	ByCategory         []domain.CategoryAmount    `json:"by_category"`
	Transactions       []domain.Transaction       `json:"transactions"`
	Pagination         *domain.Pagination         `json:"pagination"`
}

// DecodeSummary parses and shape-checks a dashboard payload. Transaction
// types are normalized while decoding.
func DecodeSummary(body []byte) (*domain.SummaryPayload, error) {
	var w wirePayload
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, &domain.ErrParse{Reason: "invalid JSON", Err: err}
	}
	if w.Monthly == nil {
		return nil, &domain.ErrParse{Reason: "missing monthly"}
	}
	if w.Timeseries == nil {
		return nil, &domain.ErrParse{Reason: "missing timeseries"}
	}
	ts := w.Timeseries
	if len(ts.Income) != len(ts.Labels) || len(ts.Expense) != len(ts.Labels) {
		return nil, &domain.ErrParse{Reason: fmt.Sprintf(
			"timeseries not aligned: %d labels, %d income, %d expense",
			len(ts.Labels), len(ts.Income), len(ts.Expense))}
	}
	if cts := w.CategoryTimeseries; cts != nil {
		for _, ds := range cts.Datasets {
			if len(ds.Data) != len(cts.Labels) {
				return nil, &domain.ErrParse{Reason: fmt.Sprintf(
					"category series %q has %d points for %d labels", ds.Label, len(ds.Data), len(cts.Labels))}
			}
		}
	}
	for i, tx := range w.Transactions {
		if tx.Amount < 0 {
			return nil, &domain.ErrParse{Reason: fmt.Sprintf("transaction %d has negative amount", i)}
		}
	}

	return &domain.SummaryPayload{
		Monthly:            *w.Monthly,
		Timeseries:         *w.Timeseries,
		CategoryTimeseries: w.CategoryTimeseries,
		ByCategory:         w.ByCategory,
		Transactions:       w.Transactions,
		Pagination:         w.Pagination,
	}, nil
}
