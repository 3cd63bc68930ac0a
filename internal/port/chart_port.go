package port

import "github.com/boddenberg/bills-dashboard-go/internal/domain"

// ChartFactory is the external charting capability.
type ChartFactory interface {
	Create(canvas domain.Canvas, cfg *domain.ChartConfig) (ChartHandle, error)
}

// ChartHandle is one live chart instance bound to a canvas.
type ChartHandle interface {
	// Config returns a copy of the live configuration.
	Config() domain.ChartConfig
	// SetColors replaces each dataset's drawn color and redraws with mode.
	SetColors(colors []string, mode domain.UpdateMode)
	// Nearest returns the dataset whose rendered element is closest to p,
	// without requiring p to intersect it. ok is false when p is outside the
	// chart area or nothing is drawn.
	Nearest(p domain.Point) (datasetIndex int, ok bool)
	Destroy()
}
