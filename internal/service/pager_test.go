package service_test

import (
	"testing"

	"github.com/boddenberg/bills-dashboard-go/internal/domain"
	"github.com/boddenberg/bills-dashboard-go/internal/infra/view"
	"github.com/boddenberg/bills-dashboard-go/internal/service"
)

func TestPager_Apply(t *testing.T) {
	tests := []struct {
		name         string
		desc         *domain.Pagination
		wantText     string
		wantPrevOff  bool
		wantNextOff  bool
		wantPage     int
		wantTotalPgs int
	}{
		{"absent descriptor", nil, "Trang 1/1", true, true, 1, 1},
		{"first of three", &domain.Pagination{Page: 1, TotalPages: 3}, "Trang 1/3", true, false, 1, 3},
		{"middle", &domain.Pagination{Page: 2, TotalPages: 3}, "Trang 2/3", false, false, 2, 3},
		{"last", &domain.Pagination{Page: 3, TotalPages: 3}, "Trang 3/3", false, true, 3, 3},
		{"page past end is clamped", &domain.Pagination{Page: 9, TotalPages: 3}, "Trang 3/3", false, true, 3, 3},
		{"zero values default", &domain.Pagination{}, "Trang 1/1", true, true, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := view.NewDashboardDocument()
			state := domain.NewFilterState("", 10)
			pager := service.NewPager(doc, "")

			n, err := pager.Apply(state, tt.desc)
			if err != nil {
				t.Fatalf("apply: %v", err)
			}
			if n.Page != tt.wantPage || n.TotalPages != tt.wantTotalPgs {
				t.Errorf("expected %d/%d, got %d/%d", tt.wantPage, tt.wantTotalPgs, n.Page, n.TotalPages)
			}
			if state.Page() != tt.wantPage {
				t.Errorf("expected state page %d, got %d", tt.wantPage, state.Page())
			}
			info, _ := doc.Element(view.PageInfoID)
			prev, _ := doc.Element(view.PrevPageID)
			next, _ := doc.Element(view.NextPageID)
			if info.Text != tt.wantText {
				t.Errorf("expected %q, got %q", tt.wantText, info.Text)
			}
			if prev.Disabled != tt.wantPrevOff || next.Disabled != tt.wantNextOff {
				t.Errorf("expected prev disabled=%v next disabled=%v, got %v/%v",
					tt.wantPrevOff, tt.wantNextOff, prev.Disabled, next.Disabled)
			}
		})
	}
}

func TestPager_CustomLabelAndMissingControls(t *testing.T) {
	doc := view.New(view.WithElement(view.PageInfoID))
	pager := service.NewPager(doc, "Page")

	if _, err := pager.Apply(domain.NewFilterState("", 10), &domain.Pagination{Page: 1, TotalPages: 2}); err != nil {
		t.Fatalf("expected missing buttons to be skipped, got %v", err)
	}
	if el, _ := doc.Element(view.PageInfoID); el.Text != "Page 1/2" {
		t.Errorf("expected 'Page 1/2', got %q", el.Text)
	}
}

func TestPager_NextPrevStayInBounds(t *testing.T) {
	state := domain.NewFilterState("", 10)
	pager := service.NewPager(view.NewDashboardDocument(), "")
	if _, err := pager.Apply(state, &domain.Pagination{Page: 1, TotalPages: 2}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if pager.Prev(state) {
		t.Error("expected prev to refuse on page 1")
	}
	if !pager.Next(state) || state.Page() != 2 {
		t.Errorf("expected next to move to 2, at %d", state.Page())
	}
	if pager.Next(state) {
		t.Error("expected next to refuse on last page")
	}
	if state.Page() != 2 {
		t.Errorf("expected page to stay 2, got %d", state.Page())
	}
}
