// Package service provides the dashboard use cases: the refresh cycle that
// turns a filter selection into a rendered page, and the local interactions
// (report, tabs, chart hover) that never reach the backend.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/boddenberg/bills-dashboard-go/internal/domain"
	"github.com/boddenberg/bills-dashboard-go/internal/infra/observability"
	"github.com/boddenberg/bills-dashboard-go/internal/infra/view"
	"github.com/boddenberg/bills-dashboard-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service/dashboard")

// Trigger names what started a refresh cycle.
type Trigger string

const (
	TriggerStartup  Trigger = "startup"
	TriggerUser     Trigger = "user"
	TriggerRealtime Trigger = "realtime"
)

// FilterView is a read-only copy of the current filter selection.
type FilterView struct {
	Timeframe  string            `json:"timeframe,omitempty"`
	Start      string            `json:"start,omitempty"`
	End        string            `json:"end,omitempty"`
	Type       domain.TypeFilter `json:"type"`
	Categories []string          `json:"categories"`
	Page       int               `json:"page"`
	TotalPages int               `json:"total_pages"`
	PageSize   int               `json:"page_size"`
}

// Options tunes a Dashboard.
type Options struct {
	Timeframe  string
	PageSize   int
	Locale     string
	PagerLabel string
}

// Dashboard orchestrates refresh cycles. Filter and view mutations are
// serialized by mu, which is never held while a fetch is outstanding.
// Overlapping cycles run independently; a response is applied only if no
// newer cycle has been applied before it.
type Dashboard struct {
	fetcher   port.SummaryFetcher
	principal port.PrincipalProvider
	page      port.Page
	charts    *ChartRenderer
	tables    *TableRenderer
	pager     *Pager
	metrics   *observability.Metrics
	logger    *zap.Logger

	mu       sync.Mutex
	filter   *domain.FilterState
	payload  *domain.SummaryPayload
	report   *domain.Report
	issued   uint64
	applied  uint64
	inFlight int
}

// NewDashboard wires a controller rendering into page.
func NewDashboard(
	fetcher port.SummaryFetcher,
	principal port.PrincipalProvider,
	page port.Page,
	charts port.ChartFactory,
	metrics *observability.Metrics,
	logger *zap.Logger,
	opts Options,
) *Dashboard {
	return &Dashboard{
		fetcher:   fetcher,
		principal: principal,
		page:      page,
		charts:    NewChartRenderer(page, charts, logger),
		tables:    NewTableRenderer(page, NewAmountFormatter(opts.Locale)),
		pager:     NewPager(page, opts.PagerLabel),
		metrics:   metrics,
		logger:    logger,
		filter:    domain.NewFilterState(opts.Timeframe, opts.PageSize),
	}
}

// ============================================================
// Refresh cycle
// ============================================================

// Refresh runs one fetch-then-render cycle for the current filter. Fetch
// failures leave the rendered view untouched. A response superseded by a
// newer applied cycle is dropped without error.
func (d *Dashboard) Refresh(ctx context.Context, trigger Trigger) error {
	cycleID := uuid.NewString()
	ctx, span := tracer.Start(ctx, "Dashboard.Refresh")
	defer span.End()
	span.SetAttributes(
		attribute.String("cycle.id", cycleID),
		attribute.String("cycle.trigger", string(trigger)),
	)
	log := d.logger.With(zap.String("cycle_id", cycleID), zap.String("trigger", string(trigger)))

	principal, err := d.principal.Principal(ctx)
	if err != nil {
		log.Warn("no principal for refresh", zap.Error(err))
		d.metrics.IncrRefresh(string(trigger), "error")
		return err
	}

	d.mu.Lock()
	d.issued++
	seq := d.issued
	q := d.filter.BuildQuery(principal)
	d.beginLoading()
	d.mu.Unlock()
	defer d.endLoading()

	log.Debug("refresh started", zap.Uint64("seq", seq), zap.String("query", q.Encode()))

	start := time.Now()
	payload, err := d.fetcher.FetchSummary(ctx, q)
	if err != nil {
		d.metrics.RecordFetch("error", time.Since(start))
		d.metrics.IncrFetchError(fetchErrorKind(err))
		d.metrics.IncrRefresh(string(trigger), "error")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error("dashboard fetch failed, keeping previous view", zap.Error(err))
		return err
	}
	d.metrics.RecordFetch("ok", time.Since(start))

	d.mu.Lock()
	defer d.mu.Unlock()

	if seq < d.applied {
		d.metrics.IncrStale()
		d.metrics.IncrRefresh(string(trigger), "stale")
		log.Info("discarding stale response",
			zap.Uint64("seq", seq),
			zap.Uint64("applied", d.applied),
		)
		return nil
	}
	d.applied = seq

	if err := d.render(payload); err != nil {
		d.metrics.IncrRefresh(string(trigger), "error")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error("dashboard render failed", zap.Error(err))
		return err
	}

	d.metrics.IncrRefresh(string(trigger), "ok")
	log.Info("dashboard refreshed",
		zap.Int("transactions", len(payload.Transactions)),
		zap.Int("page", d.filter.Page()),
		zap.Int("total_pages", d.filter.TotalPages()),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// render applies a payload to every view. Must hold mu.
func (d *Dashboard) render(p *domain.SummaryPayload) error {
	d.payload = p
	if err := d.tables.RenderTotals(p.Monthly); err != nil {
		return err
	}
	if err := d.charts.RenderTimeseries(p.Timeseries); err != nil {
		return err
	}
	if err := d.charts.RenderCategoryTimeseries(p.CategoryTimeseries); err != nil {
		return err
	}
	if err := d.charts.RenderCategoryBreakdown(p.ByCategory); err != nil {
		return err
	}
	if err := d.tables.RenderTransactions(p.Transactions); err != nil {
		return err
	}
	_, err := d.pager.Apply(d.filter, p.Pagination)
	return err
}

// beginLoading shows the overlay for the first in-flight cycle. Must hold mu.
func (d *Dashboard) beginLoading() {
	d.inFlight++
	if d.inFlight == 1 {
		d.setOverlay(false)
	}
}

// endLoading hides the overlay once the last in-flight cycle ends.
func (d *Dashboard) endLoading() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inFlight--
	if d.inFlight == 0 {
		d.setOverlay(true)
	}
}

func (d *Dashboard) setOverlay(hidden bool) {
	if err := d.page.SetHidden(view.LoadingOverlayID, hidden); err != nil {
		d.logger.Debug("loading overlay unavailable", zap.Error(err))
	}
}

func fetchErrorKind(err error) string {
	var circuitErr *domain.ErrCircuitOpen
	var parseErr *domain.ErrParse
	switch {
	case errors.As(err, &circuitErr):
		return "circuit_open"
	case errors.As(err, &parseErr):
		return "parse"
	default:
		return "network"
	}
}

// ============================================================
// Filter selection
// ============================================================

// SelectTimeframe switches to a relative window and refreshes from page 1.
func (d *Dashboard) SelectTimeframe(ctx context.Context, tf string) error {
	d.mu.Lock()
	err := d.filter.SetTimeframe(tf)
	d.mu.Unlock()
	if err != nil {
		return err
	}
	return d.Refresh(ctx, TriggerUser)
}

// SelectRange switches to an explicit date range and refreshes from page 1.
func (d *Dashboard) SelectRange(ctx context.Context, start, end string) error {
	d.mu.Lock()
	err := d.filter.SetRange(start, end)
	d.mu.Unlock()
	if err != nil {
		return err
	}
	return d.Refresh(ctx, TriggerUser)
}

// SelectType narrows by transaction type and refreshes from page 1.
func (d *Dashboard) SelectType(ctx context.Context, t string) error {
	filter, err := domain.ParseTypeFilter(t)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.filter.SetType(filter)
	d.mu.Unlock()
	return d.Refresh(ctx, TriggerUser)
}

// SelectCategories replaces the category selection and refreshes from page 1.
func (d *Dashboard) SelectCategories(ctx context.Context, categories []string) error {
	d.mu.Lock()
	d.filter.SetCategories(categories)
	d.mu.Unlock()
	return d.Refresh(ctx, TriggerUser)
}

// NextPage moves forward one page and refreshes. On the last page it does
// nothing.
func (d *Dashboard) NextPage(ctx context.Context) error {
	d.mu.Lock()
	moved := d.pager.Next(d.filter)
	d.mu.Unlock()
	if !moved {
		return nil
	}
	return d.Refresh(ctx, TriggerUser)
}

// PrevPage moves back one page and refreshes. On page 1 it does nothing.
func (d *Dashboard) PrevPage(ctx context.Context) error {
	d.mu.Lock()
	moved := d.pager.Prev(d.filter)
	d.mu.Unlock()
	if !moved {
		return nil
	}
	return d.Refresh(ctx, TriggerUser)
}

// Loaded reports whether a payload has been applied.
func (d *Dashboard) Loaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.payload != nil
}

// Filter returns the current selection.
func (d *Dashboard) Filter() FilterView {
	d.mu.Lock()
	defer d.mu.Unlock()
	start, end := d.filter.Range()
	return FilterView{
		Timeframe:  d.filter.Timeframe(),
		Start:      start,
		End:        end,
		Type:       d.filter.Type(),
		Categories: d.filter.Categories(),
		Page:       d.filter.Page(),
		TotalPages: d.filter.TotalPages(),
		PageSize:   d.filter.PageSize(),
	}
}

// ============================================================
// Local interactions
// ============================================================

// GenerateReport filters the loaded transactions and renders the report
// table and chart. It never fetches.
func (d *Dashboard) GenerateReport(ctx context.Context, rf domain.ReportFilter) (domain.Report, error) {
	_, span := tracer.Start(ctx, "Dashboard.GenerateReport")
	defer span.End()

	if rf.DateStart != "" && rf.DateEnd != "" && rf.DateStart > rf.DateEnd {
		return domain.Report{}, &domain.ErrValidation{Field: "date_start", Message: "date_start must not be after date_end"}
	}
	if _, err := domain.ParseTypeFilter(string(rf.Type)); err != nil {
		return domain.Report{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var txs []domain.Transaction
	if d.payload != nil {
		txs = d.payload.Transactions
	}
	r := domain.FilterReport(txs, rf)
	span.SetAttributes(attribute.Int("report.included", len(r.Included)))

	if err := d.tables.RenderReport(r); err != nil {
		return domain.Report{}, err
	}
	if err := d.charts.RenderReportChart(r.Groups); err != nil {
		return domain.Report{}, err
	}
	d.report = &r
	return r, nil
}

// LastReport returns the most recently generated report.
func (d *Dashboard) LastReport() (domain.Report, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.report == nil {
		return domain.Report{}, false
	}
	return *d.report, true
}

// SwitchTab shows one panel and hides the others.
func (d *Dashboard) SwitchTab(panelID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.page.ShowPanel(panelID)
}

// Hover highlights the category series nearest to p.
func (d *Dashboard) Hover(p domain.Point) (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.charts.HoverCategorySeries(p)
}

// Leave restores every category series to its original color.
func (d *Dashboard) Leave() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.charts.LeaveCategorySeries()
}

// Close disposes of every chart instance.
func (d *Dashboard) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.charts.DestroyAll()
}
