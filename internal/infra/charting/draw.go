package charting

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/boddenberg/bills-dashboard-go/internal/domain"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

func draw(w io.Writer, canvas domain.Canvas, cfg *domain.ChartConfig) error {
	width, height := int(canvas.Width), int(canvas.Height)
	if width <= 0 || height <= 0 {
		return fmt.Errorf("canvas %s has no rendered size", canvas.ID)
	}
	if !hasData(cfg) {
		return drawBlank(w, width, height)
	}

	switch cfg.Kind {
	case domain.ChartLine:
		return drawLine(w, width, height, cfg)
	case domain.ChartDoughnut:
		return drawDoughnut(w, width, height, cfg)
	case domain.ChartBar:
		return drawBar(w, width, height, cfg)
	}
	return fmt.Errorf("unsupported chart kind %q", cfg.Kind)
}

func drawLine(w io.Writer, width, height int, cfg *domain.ChartConfig) error {
	maxY := 0.0
	points := 0
	series := make([]chart.Series, 0, len(cfg.Datasets))
	for _, ds := range cfg.Datasets {
		xs := make([]float64, len(ds.Data))
		for i := range xs {
			xs[i] = float64(i)
		}
		for _, v := range ds.Data {
			maxY = math.Max(maxY, v)
		}
		points = max(points, len(ds.Data))

		stroke := ParseColor(ds.CurrentColor)
		style := chart.Style{
			StrokeColor: stroke,
			StrokeWidth: 2.4,
		}
		if ds.Fill != nil {
			// go-chart fills flat; use the gradient's top stop.
			style.FillColor = ParseColor(ds.Fill.Top)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    ds.Label,
			Style:   style,
			XValues: xs,
			YValues: ds.Data,
		})
	}
	if len(series) == 0 {
		return fmt.Errorf("line chart has no datasets")
	}

	graph := chart.Chart{
		Width:  width,
		Height: height,
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: math.Max(float64(points-1), 1)},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: math.Max(maxY, 1)},
		},
		Series: series,
	}
	return graph.Render(chart.PNG, w)
}

func drawDoughnut(w io.Writer, width, height int, cfg *domain.ChartConfig) error {
	if len(cfg.Datasets) == 0 {
		return fmt.Errorf("doughnut chart has no datasets")
	}
	ds := cfg.Datasets[0]
	values := make([]chart.Value, 0, len(ds.Data))
	for i, v := range ds.Data {
		if v <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: labelAt(cfg.Labels, i),
			Value: v,
			Style: chart.Style{FillColor: ParseColor(colorAt(ds.SliceColors, i, ds.CurrentColor))},
		})
	}
	if len(values) == 0 {
		return drawBlank(w, width, height)
	}

	graph := chart.DonutChart{
		Width:  width,
		Height: height,
		Values: values,
	}
	return graph.Render(chart.PNG, w)
}

func drawBar(w io.Writer, width, height int, cfg *domain.ChartConfig) error {
	if len(cfg.Datasets) == 0 || len(cfg.Datasets[0].Data) == 0 {
		return fmt.Errorf("bar chart has no values")
	}
	ds := cfg.Datasets[0]
	maxY := 0.0
	bars := make([]chart.Value, 0, len(ds.Data))
	for i, v := range ds.Data {
		maxY = math.Max(maxY, v)
		fill := ParseColor(colorAt(ds.SliceColors, i, ds.CurrentColor))
		bars = append(bars, chart.Value{
			Label: labelAt(cfg.Labels, i),
			Value: v,
			Style: chart.Style{FillColor: fill, StrokeColor: fill},
		})
	}

	// Keep every bar inside the canvas.
	slot := max(width/(2*len(bars)+1), 1)
	graph := chart.BarChart{
		Width:      width,
		Height:     height,
		BarWidth:   slot,
		BarSpacing: slot,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: math.Max(maxY, 1)},
		},
		Bars: bars,
	}
	return graph.Render(chart.PNG, w)
}

// hasData reports whether any dataset has a point to draw.
func hasData(cfg *domain.ChartConfig) bool {
	for _, ds := range cfg.Datasets {
		if len(ds.Data) > 0 {
			return true
		}
	}
	return false
}

// drawBlank emits a transparent image of the canvas size.
func drawBlank(w io.Writer, width, height int) error {
	return png.Encode(w, image.NewRGBA(image.Rect(0, 0, width, height)))
}

func labelAt(labels []string, i int) string {
	if i < len(labels) {
		return labels[i]
	}
	return ""
}

func colorAt(colors []string, i int, fallback string) string {
	if i < len(colors) {
		return colors[i]
	}
	return fallback
}

var rgbaPattern = regexp.MustCompile(`^rgba?\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)\s*(?:,\s*([0-9.]+)\s*)?\)$`)

// ParseColor converts "#rrggbb" or "rgba(r, g, b, a)" into a drawing color.
// Unparseable input yields the default series blue.
func ParseColor(s string) drawing.Color {
	s = strings.TrimSpace(s)
	if hex := strings.TrimPrefix(s, "#"); hex != s && len(hex) == 6 {
		if _, err := strconv.ParseUint(hex, 16, 32); err == nil {
			return drawing.ColorFromHex(hex)
		}
	}
	if m := rgbaPattern.FindStringSubmatch(s); m != nil {
		r, _ := strconv.Atoi(m[1])
		g, _ := strconv.Atoi(m[2])
		b, _ := strconv.Atoi(m[3])
		a := 255
		if m[4] != "" {
			if f, err := strconv.ParseFloat(m[4], 64); err == nil {
				a = int(math.Round(math.Min(math.Max(f, 0), 1) * 255))
			}
		}
		return drawing.Color{R: uint8(min(r, 255)), G: uint8(min(g, 255)), B: uint8(min(b, 255)), A: uint8(a)}
	}
	return drawing.Color{R: 77, G: 163, B: 255, A: 255}
}
