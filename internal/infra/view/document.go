// Package view provides a headless page model: the dashboard's elements,
// tables, canvases and tab panels, mutated by the renderers and exposed to
// the browser as a JSON snapshot.
package view

import (
	"sync"

	"github.com/boddenberg/bills-dashboard-go/internal/domain"
)

// Element ids of the standard dashboard page.
const (
	IncomeID                   = "income"
	ExpenseID                  = "expense"
	PageInfoID                 = "pageInfo"
	PrevPageID                 = "prevPage"
	NextPageID                 = "nextPage"
	LoadingOverlayID           = "loadingOverlay"
	CategoryTsChartContainerID = "categoryTsChartContainer"
	CategoryChartContainerID   = "categoryChartContainer"
	ReportTotalID              = "reportTotal"

	TxTableID     = "txTable"
	ReportTableID = "reportTable"

	TsChartID         = "tsChart"
	CategoryTsChartID = "categoryTsChart"
	CategoryChartID   = "categoryChart"
	ReportChartID     = "reportChart"

	OverviewPanelID     = "overview"
	TransactionsPanelID = "transactions"
	ReportsPanelID      = "reports"
)

// Element is the mutable state of one page element.
type Element struct {
	Text     string `json:"text"`
	Disabled bool   `json:"disabled"`
	Hidden   bool   `json:"hidden"`
}

// Snapshot is a point-in-time copy of the page.
type Snapshot struct {
	Elements    map[string]Element           `json:"elements"`
	Tables      map[string][]domain.TableRow `json:"tables"`
	Canvases    map[string]domain.Canvas     `json:"canvases"`
	ActivePanel string                       `json:"active_panel"`
	Panels      []string                     `json:"panels"`
}

// Document implements port.Page in memory. It is safe for concurrent use.
type Document struct {
	mu          sync.RWMutex
	elements    map[string]*Element
	tables      map[string][]domain.TableRow
	canvases    map[string]domain.Canvas
	panels      []string
	activePanel string
}

// Option configures a Document.
type Option func(*Document)

// WithElement adds a plain element, initially visible and empty.
func WithElement(id string) Option {
	return func(d *Document) { d.elements[id] = &Element{} }
}

// WithHiddenElement adds an element that starts hidden.
func WithHiddenElement(id string) Option {
	return func(d *Document) { d.elements[id] = &Element{Hidden: true} }
}

// WithTable adds an empty table.
func WithTable(id string) Option {
	return func(d *Document) { d.tables[id] = []domain.TableRow{} }
}

// WithCanvas adds a canvas with its rendered size.
func WithCanvas(id string, width, height float64) Option {
	return func(d *Document) { d.canvases[id] = domain.Canvas{ID: id, Width: width, Height: height} }
}

// WithPanels declares the tab panels; the first one starts active.
func WithPanels(ids ...string) Option {
	return func(d *Document) {
		d.panels = append([]string(nil), ids...)
		if len(ids) > 0 {
			d.activePanel = ids[0]
		}
	}
}

// New creates an empty document with the given elements.
func New(opts ...Option) *Document {
	d := &Document{
		elements: make(map[string]*Element),
		tables:   make(map[string][]domain.TableRow),
		canvases: make(map[string]domain.Canvas),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewDashboardDocument creates the standard dashboard page.
func NewDashboardDocument() *Document {
	return New(
		WithElement(IncomeID),
		WithElement(ExpenseID),
		WithElement(PageInfoID),
		WithElement(PrevPageID),
		WithElement(NextPageID),
		WithHiddenElement(LoadingOverlayID),
		WithHiddenElement(CategoryTsChartContainerID),
		WithElement(CategoryChartContainerID),
		WithElement(ReportTotalID),
		WithTable(TxTableID),
		WithTable(ReportTableID),
		WithCanvas(TsChartID, 800, 280),
		WithCanvas(CategoryTsChartID, 800, 280),
		WithCanvas(CategoryChartID, 320, 320),
		WithCanvas(ReportChartID, 800, 280),
		WithPanels(OverviewPanelID, TransactionsPanelID, ReportsPanelID),
	)
}

func (d *Document) element(id string) (*Element, error) {
	el, ok := d.elements[id]
	if !ok {
		return nil, &domain.ErrRender{Target: id}
	}
	return el, nil
}

// SetText replaces the text content of id.
func (d *Document) SetText(id, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	el, err := d.element(id)
	if err != nil {
		return err
	}
	el.Text = text
	return nil
}

// SetDisabled toggles the disabled state of id.
func (d *Document) SetDisabled(id string, disabled bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	el, err := d.element(id)
	if err != nil {
		return err
	}
	el.Disabled = disabled
	return nil
}

// SetHidden toggles the visibility of id.
func (d *Document) SetHidden(id string, hidden bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	el, err := d.element(id)
	if err != nil {
		return err
	}
	el.Hidden = hidden
	return nil
}

// ReplaceRows discards every row of tableID and installs rows.
func (d *Document) ReplaceRows(tableID string, rows []domain.TableRow) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.tables[tableID]; !ok {
		return &domain.ErrRender{Target: tableID}
	}
	d.tables[tableID] = append([]domain.TableRow(nil), rows...)
	return nil
}

// Canvas returns the canvas id and its rendered size.
func (d *Document) Canvas(id string) (domain.Canvas, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.canvases[id]
	if !ok {
		return domain.Canvas{}, &domain.ErrRender{Target: id}
	}
	return c, nil
}

// ResizeCanvas records the size the browser actually rendered id at.
func (d *Document) ResizeCanvas(id string, width, height float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.canvases[id]; !ok {
		return &domain.ErrRender{Target: id}
	}
	d.canvases[id] = domain.Canvas{ID: id, Width: width, Height: height}
	return nil
}

// ShowPanel makes panelID the only visible tab panel.
func (d *Document) ShowPanel(panelID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.panels {
		if p == panelID {
			d.activePanel = panelID
			return nil
		}
	}
	return &domain.ErrRender{Target: panelID}
}

// Element returns a copy of element id.
func (d *Document) Element(id string) (Element, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	el, ok := d.elements[id]
	if !ok {
		return Element{}, false
	}
	return *el, true
}

// Rows returns a copy of the rows of tableID.
func (d *Document) Rows(tableID string) []domain.TableRow {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]domain.TableRow(nil), d.tables[tableID]...)
}

// Snapshot copies the whole page.
func (d *Document) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s := Snapshot{
		Elements:    make(map[string]Element, len(d.elements)),
		Tables:      make(map[string][]domain.TableRow, len(d.tables)),
		Canvases:    make(map[string]domain.Canvas, len(d.canvases)),
		ActivePanel: d.activePanel,
		Panels:      append([]string(nil), d.panels...),
	}
	for id, el := range d.elements {
		s.Elements[id] = *el
	}
	for id, rows := range d.tables {
		s.Tables[id] = append([]domain.TableRow(nil), rows...)
	}
	for id, c := range d.canvases {
		s.Canvases[id] = c
	}
	return s
}
