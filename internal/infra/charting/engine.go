// Package charting is the charting capability behind port.ChartFactory.
// It keeps the live chart instances, answers nearest-element queries from
// their geometry and draws them to PNG with go-chart.
package charting

import (
	"bytes"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/boddenberg/bills-dashboard-go/internal/domain"
	"github.com/boddenberg/bills-dashboard-go/internal/port"
)

// Engine creates and tracks chart instances. Destroyed instances are
// forgotten; a canvas never has more than one registered instance.
type Engine struct {
	mu     sync.RWMutex
	live   map[string]*Chart
	cache  port.Cache[[]byte]
	onLive func(n int)
	nextID atomic.Uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithPNGCache caches rendered images by canvas and revision.
func WithPNGCache(c port.Cache[[]byte]) Option {
	return func(e *Engine) { e.cache = c }
}

// WithLiveGauge reports the number of live instances after every change.
func WithLiveGauge(fn func(n int)) Option {
	return func(e *Engine) { e.onLive = fn }
}

// NewEngine creates an empty engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{live: make(map[string]*Chart)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Create registers a new instance for canvas. Creating over a live instance
// is a caller error: the prior one must be destroyed first.
func (e *Engine) Create(canvas domain.Canvas, cfg *domain.ChartConfig) (port.ChartHandle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("chart %s: nil config", canvas.ID)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.live[canvas.ID]; exists {
		return nil, fmt.Errorf("chart %s: canvas already has a live instance", canvas.ID)
	}
	own := *cfg
	own.Datasets = append([]domain.Dataset(nil), cfg.Datasets...)
	c := &Chart{engine: e, id: e.nextID.Add(1), canvas: canvas, cfg: &own}
	e.live[canvas.ID] = c
	e.reportLive()
	return c, nil
}

// Lookup returns the live instance of canvasID.
func (e *Engine) Lookup(canvasID string) (*Chart, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, ok := e.live[canvasID]
	return c, ok
}

// Live returns the number of live instances.
func (e *Engine) Live() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.live)
}

// Configs returns a copy of every live configuration keyed by canvas.
func (e *Engine) Configs() map[string]domain.ChartConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]domain.ChartConfig, len(e.live))
	for id, c := range e.live {
		out[id] = c.snapshot()
	}
	return out
}

func (e *Engine) release(c *Chart) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cur, ok := e.live[c.canvas.ID]; ok && cur == c {
		delete(e.live, c.canvas.ID)
		e.reportLive()
	}
}

func (e *Engine) reportLive() {
	if e.onLive != nil {
		e.onLive(len(e.live))
	}
}

// Chart is one live instance.
type Chart struct {
	engine *Engine
	// id is unique per engine and never reused, unlike the instance address.
	id     uint64
	canvas domain.Canvas

	mu        sync.RWMutex
	cfg       *domain.ChartConfig
	revision  int
	destroyed bool
}

// Config returns a copy of the live configuration.
func (c *Chart) Config() domain.ChartConfig { return c.snapshot() }

// Canvas returns the bound canvas.
func (c *Chart) Canvas() domain.Canvas { return c.canvas }

// Revision counts redraws since creation.
func (c *Chart) Revision() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.revision
}

// SetColors replaces the drawn color of each dataset, in order, and redraws.
// Data, labels and original colors are untouched.
func (c *Chart) SetColors(colors []string, mode domain.UpdateMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return
	}
	for i := range c.cfg.Datasets {
		if i < len(colors) {
			c.cfg.Datasets[i].CurrentColor = colors[i]
		}
	}
	c.revision++
}

// Destroy unregisters the instance. It is safe to call more than once.
func (c *Chart) Destroy() {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	c.destroyed = true
	c.mu.Unlock()
	c.engine.release(c)
}

// Destroyed reports whether Destroy was called.
func (c *Chart) Destroyed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.destroyed
}

// Nearest finds the dataset owning the data point closest to p. Points are
// laid out over the full canvas: x spread evenly across labels, y scaled
// from zero to the largest value.
func (c *Chart) Nearest(p domain.Point) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.destroyed || p.X < 0 || p.Y < 0 || p.X > c.canvas.Width || p.Y > c.canvas.Height {
		return 0, false
	}

	maxY := c.maxValue()
	best, bestDist := -1, math.Inf(1)
	for di, ds := range c.cfg.Datasets {
		n := len(ds.Data)
		for i, v := range ds.Data {
			x := c.canvas.Width / 2
			if n > 1 {
				x = float64(i) * c.canvas.Width / float64(n-1)
			}
			y := c.canvas.Height - v/maxY*c.canvas.Height
			if d := math.Hypot(p.X-x, p.Y-y); d < bestDist {
				best, bestDist = di, d
			}
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

func (c *Chart) maxValue() float64 {
	maxY := 0.0
	for _, ds := range c.cfg.Datasets {
		for _, v := range ds.Data {
			maxY = math.Max(maxY, v)
		}
	}
	if maxY == 0 {
		return 1
	}
	return maxY
}

func (c *Chart) snapshot() domain.ChartConfig {
	cfg, _ := c.revisionSnapshot()
	return cfg
}

// revisionSnapshot copies the configuration together with the revision it
// belongs to.
func (c *Chart) revisionSnapshot() (domain.ChartConfig, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := *c.cfg
	out.Datasets = append([]domain.Dataset(nil), c.cfg.Datasets...)
	return out, c.revision
}

func (c *Chart) cacheKey(revision int) string {
	return fmt.Sprintf("%s:%d:%d", c.canvas.ID, c.id, revision)
}

// PNG draws the instance, serving repeated requests for the same revision
// from the cache.
func (c *Chart) PNG() ([]byte, error) {
	cfg, revision := c.revisionSnapshot()
	key := c.cacheKey(revision)
	if c.engine.cache != nil {
		if b, ok := c.engine.cache.Get(key); ok {
			return b, nil
		}
	}

	var buf bytes.Buffer
	if err := draw(&buf, c.canvas, &cfg); err != nil {
		return nil, fmt.Errorf("draw %s: %w", c.canvas.ID, err)
	}
	b := buf.Bytes()
	if c.engine.cache != nil {
		c.engine.cache.Set(key, b)
	}
	return b, nil
}
