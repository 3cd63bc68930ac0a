package view_test

import (
	"errors"
	"testing"

	"github.com/boddenberg/bills-dashboard-go/internal/domain"
	"github.com/boddenberg/bills-dashboard-go/internal/infra/view"
)

func TestDashboardDocument_InitialState(t *testing.T) {
	doc := view.NewDashboardDocument()

	overlay, ok := doc.Element(view.LoadingOverlayID)
	if !ok || !overlay.Hidden {
		t.Error("expected loading overlay present and hidden")
	}
	container, ok := doc.Element(view.CategoryTsChartContainerID)
	if !ok || !container.Hidden {
		t.Error("expected category time-series container hidden until data arrives")
	}
	c, err := doc.Canvas(view.TsChartID)
	if err != nil || c.Height != 280 {
		t.Errorf("expected tsChart canvas 280px high, got %+v (%v)", c, err)
	}
	if got := doc.Snapshot().ActivePanel; got != view.OverviewPanelID {
		t.Errorf("expected overview panel active, got %q", got)
	}
}

func TestDocument_UnknownTargetsAreRenderErrors(t *testing.T) {
	doc := view.New()
	var renderErr *domain.ErrRender

	checks := map[string]error{
		"text":     doc.SetText("nope", "x"),
		"disabled": doc.SetDisabled("nope", true),
		"hidden":   doc.SetHidden("nope", true),
		"rows":     doc.ReplaceRows("nope", nil),
		"panel":    doc.ShowPanel("nope"),
		"resize":   doc.ResizeCanvas("nope", 1, 1),
	}
	if _, err := doc.Canvas("nope"); err != nil {
		checks["canvas"] = err
	} else {
		t.Error("expected canvas lookup to fail")
	}

	for name, err := range checks {
		if !errors.As(err, &renderErr) {
			t.Errorf("%s: expected ErrRender, got %v", name, err)
		}
	}
}

func TestDocument_ReplaceRowsDoesNotAccumulate(t *testing.T) {
	doc := view.New(view.WithTable(view.TxTableID))
	rows := []domain.TableRow{{Merchant: "A"}, {Merchant: "B"}}

	_ = doc.ReplaceRows(view.TxTableID, rows)
	_ = doc.ReplaceRows(view.TxTableID, rows[:1])

	got := doc.Rows(view.TxTableID)
	if len(got) != 1 || got[0].Merchant != "A" {
		t.Errorf("expected rows replaced, got %+v", got)
	}

	rows[0].Merchant = "mutated"
	if doc.Rows(view.TxTableID)[0].Merchant != "A" {
		t.Error("expected document to own a copy of the rows")
	}
}

func TestDocument_SnapshotIsCopy(t *testing.T) {
	doc := view.New(view.WithElement(view.PageInfoID), view.WithCanvas(view.TsChartID, 800, 280))
	_ = doc.SetText(view.PageInfoID, "Trang 1/1")

	snap := doc.Snapshot()
	_ = doc.SetText(view.PageInfoID, "Trang 2/2")
	_ = doc.ResizeCanvas(view.TsChartID, 640, 200)

	if snap.Elements[view.PageInfoID].Text != "Trang 1/1" {
		t.Error("expected snapshot unaffected by later writes")
	}
	if snap.Canvases[view.TsChartID].Height != 280 {
		t.Error("expected snapshot canvas unaffected by resize")
	}
	if c, _ := doc.Canvas(view.TsChartID); c.Width != 640 || c.Height != 200 {
		t.Errorf("expected resized canvas, got %+v", c)
	}
}
