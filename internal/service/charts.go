package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/boddenberg/bills-dashboard-go/internal/domain"
	"github.com/boddenberg/bills-dashboard-go/internal/infra/view"
	"github.com/boddenberg/bills-dashboard-go/internal/port"

	"github.com/wcharczuk/go-chart/v2/drawing"
	"go.uber.org/zap"
)

// Palette is the fixed series palette, assigned by series index.
var Palette = []string{"#0a84ff", "#ef4444", "#f59e0b", "#10b981", "#7c3aed", "#f472b6"}

// MutedColor is drawn for every series except the hovered one.
const MutedColor = "rgba(107, 114, 128, 0.2)"

// Series labels of the main time-series chart.
const (
	IncomeSeriesLabel  = "Thu"
	ExpenseSeriesLabel = "Chi"
)

// categoryPaletteOffset skips the income/expense colors for category series.
const categoryPaletteOffset = 2

// ChartRenderer owns one chart slot per canvas. Creating into a slot always
// destroys the previous instance first. It is not safe for concurrent use;
// Dashboard serializes access.
type ChartRenderer struct {
	page    port.Page
	factory port.ChartFactory
	logger  *zap.Logger
	slots   map[string]port.ChartHandle
}

// NewChartRenderer creates a renderer drawing into page through factory.
func NewChartRenderer(page port.Page, factory port.ChartFactory, logger *zap.Logger) *ChartRenderer {
	return &ChartRenderer{
		page:    page,
		factory: factory,
		logger:  logger,
		slots:   make(map[string]port.ChartHandle),
	}
}

// Handle returns the live instance bound to canvasID.
func (r *ChartRenderer) Handle(canvasID string) (port.ChartHandle, bool) {
	h, ok := r.slots[canvasID]
	return h, ok
}

// replace resolves the canvas, disposes of the prior instance and creates
// the new one.
func (r *ChartRenderer) replace(canvasID string, cfg *domain.ChartConfig) (port.ChartHandle, error) {
	canvas, err := r.page.Canvas(canvasID)
	if err != nil {
		return nil, err
	}
	if prior, ok := r.slots[canvasID]; ok {
		prior.Destroy()
		delete(r.slots, canvasID)
	}
	h, err := r.factory.Create(canvas, cfg)
	if err != nil {
		return nil, fmt.Errorf("create chart %s: %w", canvasID, err)
	}
	r.slots[canvasID] = h
	return h, nil
}

// RenderTimeseries draws the income/expense lines on tsChart.
func (r *ChartRenderer) RenderTimeseries(ts domain.Timeseries) error {
	canvas, err := r.page.Canvas(view.TsChartID)
	if err != nil {
		return err
	}
	cfg := &domain.ChartConfig{
		Kind:   domain.ChartLine,
		Labels: ts.Labels,
		Datasets: []domain.Dataset{
			lineDataset(IncomeSeriesLabel, ts.Income, Palette[0], canvas.Height),
			lineDataset(ExpenseSeriesLabel, ts.Expense, Palette[1], canvas.Height),
		},
	}
	_, err = r.replace(view.TsChartID, cfg)
	return err
}

// RenderCategoryTimeseries draws one highlightable line per category. With
// no category data the container is hidden and any existing instance is
// left as it is.
func (r *ChartRenderer) RenderCategoryTimeseries(cts *domain.CategoryTimeseries) error {
	if cts == nil || len(cts.Datasets) == 0 {
		return optional(r.page.SetHidden(view.CategoryTsChartContainerID, true))
	}
	if err := optional(r.page.SetHidden(view.CategoryTsChartContainerID, false)); err != nil {
		return err
	}

	canvas, err := r.page.Canvas(view.CategoryTsChartID)
	if err != nil {
		r.logger.Debug("category time-series canvas missing", zap.Error(err))
		return optional(err)
	}
	datasets := make([]domain.Dataset, len(cts.Datasets))
	for i, ds := range cts.Datasets {
		datasets[i] = lineDataset(ds.Label, ds.Data, paletteColor(i+categoryPaletteOffset), canvas.Height)
	}
	_, err = r.replace(view.CategoryTsChartID, &domain.ChartConfig{
		Kind:      domain.ChartLine,
		Labels:    cts.Labels,
		Datasets:  datasets,
		Highlight: true,
	})
	return err
}

// HoverCategorySeries highlights the series nearest to p and mutes the
// rest. When no series is nearest every series gets its original color
// back. It returns the highlighted dataset index, if any.
func (r *ChartRenderer) HoverCategorySeries(p domain.Point) (int, bool) {
	h, ok := r.slots[view.CategoryTsChartID]
	if !ok {
		return 0, false
	}
	cfg := h.Config()
	idx, found := h.Nearest(p)

	colors := make([]string, len(cfg.Datasets))
	for i, ds := range cfg.Datasets {
		if !found || i == idx {
			colors[i] = ds.OriginalColor
		} else {
			colors[i] = MutedColor
		}
	}
	r.applyColors(h, cfg, colors)
	return idx, found
}

// LeaveCategorySeries restores every series to its original color.
func (r *ChartRenderer) LeaveCategorySeries() {
	h, ok := r.slots[view.CategoryTsChartID]
	if !ok {
		return
	}
	cfg := h.Config()
	colors := make([]string, len(cfg.Datasets))
	for i, ds := range cfg.Datasets {
		colors[i] = ds.OriginalColor
	}
	r.applyColors(h, cfg, colors)
}

// applyColors skips the redraw when nothing changes.
func (r *ChartRenderer) applyColors(h port.ChartHandle, cfg domain.ChartConfig, colors []string) {
	for i, ds := range cfg.Datasets {
		if ds.CurrentColor != colors[i] {
			h.SetColors(colors, domain.UpdateNone)
			return
		}
	}
}

// RenderCategoryBreakdown draws the doughnut of amounts per category.
func (r *ChartRenderer) RenderCategoryBreakdown(byCategory []domain.CategoryAmount) error {
	if len(byCategory) == 0 {
		return optional(r.page.SetHidden(view.CategoryChartContainerID, true))
	}
	if err := optional(r.page.SetHidden(view.CategoryChartContainerID, false)); err != nil {
		return err
	}

	labels, data, colors := splitAmounts(byCategory)
	_, err := r.replace(view.CategoryChartID, &domain.ChartConfig{
		Kind:   domain.ChartDoughnut,
		Labels: labels,
		Datasets: []domain.Dataset{{
			Label:         "by_category",
			Data:          data,
			OriginalColor: Palette[0],
			CurrentColor:  Palette[0],
			SliceColors:   colors,
		}},
	})
	return optional(err)
}

// RenderReportChart draws the report's per-category totals as bars.
func (r *ChartRenderer) RenderReportChart(groups []domain.CategoryAmount) error {
	labels, data, colors := splitAmounts(groups)
	_, err := r.replace(view.ReportChartID, &domain.ChartConfig{
		Kind:   domain.ChartBar,
		Labels: labels,
		Datasets: []domain.Dataset{{
			Label:         "report",
			Data:          data,
			OriginalColor: Palette[0],
			CurrentColor:  Palette[0],
			SliceColors:   colors,
		}},
	})
	return err
}

// DestroyAll disposes of every live instance.
func (r *ChartRenderer) DestroyAll() {
	for id, h := range r.slots {
		h.Destroy()
		delete(r.slots, id)
	}
}

func lineDataset(label string, data []float64, color string, height float64) domain.Dataset {
	return domain.Dataset{
		Label:         label,
		Data:          data,
		OriginalColor: color,
		CurrentColor:  color,
		Fill:          Gradient(color, height),
	}
}

func splitAmounts(amounts []domain.CategoryAmount) (labels []string, data []float64, colors []string) {
	labels = make([]string, len(amounts))
	data = make([]float64, len(amounts))
	colors = make([]string, len(amounts))
	for i, a := range amounts {
		labels[i] = a.Category
		data[i] = a.Amount
		colors[i] = paletteColor(i)
	}
	return labels, data, colors
}

func paletteColor(i int) string {
	return Palette[i%len(Palette)]
}

// Gradient builds the vertical series fill: 25% opacity of hex at the top
// fading to 2% at height.
func Gradient(hex string, height float64) *domain.Gradient {
	c := hexToRGB(hex)
	return &domain.Gradient{
		Top:    fmt.Sprintf("rgba(%d,%d,%d,0.25)", c.R, c.G, c.B),
		Bottom: fmt.Sprintf("rgba(%d,%d,%d,0.02)", c.R, c.G, c.B),
		Height: height,
	}
}

// hexToRGB parses "#rrggbb". Anything else yields rgb(77,163,255).
func hexToRGB(hex string) drawing.Color {
	s := strings.TrimPrefix(hex, "#")
	if len(s) == 6 {
		if _, err := strconv.ParseUint(s, 16, 32); err == nil {
			return drawing.ColorFromHex(s)
		}
	}
	return drawing.Color{R: 77, G: 163, B: 255, A: 255}
}

// optional treats a missing page target as nothing to do.
func optional(err error) error {
	var renderErr *domain.ErrRender
	if errors.As(err, &renderErr) {
		return nil
	}
	return err
}
