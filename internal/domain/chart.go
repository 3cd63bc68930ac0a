package domain

// ============================================================
// Charts: configuration handed to the charting capability
// ============================================================

// ChartKind selects how a chart is drawn.
type ChartKind string

const (
	ChartLine     ChartKind = "line"
	ChartDoughnut ChartKind = "doughnut"
	ChartBar      ChartKind = "bar"
)

// UpdateMode controls how a live chart redraws after a state change.
type UpdateMode string

// UpdateNone redraws colors only: no animation, no layout or data change.
const UpdateNone UpdateMode = "none"

// Canvas is a drawing target and its rendered size in pixels.
type Canvas struct {
	ID     string  `json:"id"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is a pointer position in canvas pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Gradient is a vertical fill from Top (y=0) to Bottom (y=Height).
type Gradient struct {
	Top    string  `json:"top"`
	Bottom string  `json:"bottom"`
	Height float64 `json:"height"`
}

// Dataset is one series of a chart. OriginalColor is fixed when the chart is
// created; CurrentColor is what is drawn and may be muted by hover.
type Dataset struct {
	Label         string    `json:"label"`
	Data          []float64 `json:"data"`
	OriginalColor string    `json:"original_color"`
	CurrentColor  string    `json:"current_color"`
	Fill          *Gradient `json:"fill,omitempty"`
	// SliceColors colors each point individually (doughnut and bar charts).
	SliceColors []string `json:"slice_colors,omitempty"`
}

// ChartConfig is everything needed to draw one chart instance.
type ChartConfig struct {
	Kind     ChartKind `json:"kind"`
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
	// Highlight enables nearest-series hover highlighting.
	Highlight bool `json:"highlight,omitempty"`
}
