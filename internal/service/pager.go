package service

import (
	"fmt"

	"github.com/boddenberg/bills-dashboard-go/internal/domain"
	"github.com/boddenberg/bills-dashboard-go/internal/infra/view"
	"github.com/boddenberg/bills-dashboard-go/internal/port"
)

// DefaultPagerLabel prefixes the page indicator.
const DefaultPagerLabel = "Trang"

// Pager applies pagination descriptors to the filter state and keeps the
// page indicator and navigation buttons in sync with it.
type Pager struct {
	page  port.Page
	label string
}

// NewPager creates a pager. An empty label uses DefaultPagerLabel.
func NewPager(page port.Page, label string) *Pager {
	if label == "" {
		label = DefaultPagerLabel
	}
	return &Pager{page: page, label: label}
}

// Apply stores the descriptor's position in state (page and total default
// to 1, page is clamped) and updates the controls.
func (p *Pager) Apply(state *domain.FilterState, desc *domain.Pagination) (domain.Pagination, error) {
	n := state.ApplyPagination(desc)
	return n, p.sync(n.Page, n.TotalPages)
}

// Next advances one page. It reports false, changing nothing, on the last page.
func (p *Pager) Next(state *domain.FilterState) bool {
	if state.Page() >= state.TotalPages() {
		return false
	}
	state.SetPage(state.Page() + 1)
	return true
}

// Prev goes back one page. It reports false, changing nothing, on page 1.
func (p *Pager) Prev(state *domain.FilterState) bool {
	if state.Page() <= 1 {
		return false
	}
	state.SetPage(state.Page() - 1)
	return true
}

func (p *Pager) sync(page, total int) error {
	if err := optional(p.page.SetText(view.PageInfoID, fmt.Sprintf("%s %d/%d", p.label, page, total))); err != nil {
		return err
	}
	if err := optional(p.page.SetDisabled(view.PrevPageID, page <= 1)); err != nil {
		return err
	}
	return optional(p.page.SetDisabled(view.NextPageID, page >= total))
}
