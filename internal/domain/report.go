package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ReportFilter scopes the ad-hoc report. It is independent of FilterState
// and never triggers a fetch.
type ReportFilter struct {
	DateStart  string     `json:"date_start,omitempty"`
	DateEnd    string     `json:"date_end,omitempty"`
	Type       TypeFilter `json:"type,omitempty"`
	Categories []string   `json:"categories,omitempty"`
}

// Report is the filtered subset and its signed net total
// (income added, expense subtracted).
type Report struct {
	Included []Transaction    `json:"included"`
	Net      float64          `json:"net"`
	Groups   []CategoryAmount `json:"groups"`
}

// FilterReport selects the transactions matching rf, preserving input order.
// Dates compare lexically. It only sees the transactions it is given, which
// for the dashboard is the page currently loaded.
func FilterReport(txs []Transaction, rf ReportFilter) Report {
	cats := make(map[string]struct{}, len(rf.Categories))
	for _, c := range rf.Categories {
		if c = strings.TrimSpace(c); c != "" {
			cats[c] = struct{}{}
		}
	}

	included := make([]Transaction, 0, len(txs))
	net := decimal.Zero
	for _, tx := range txs {
		if !rf.Type.Matches(tx.Type) {
			continue
		}
		if len(cats) > 0 {
			if _, ok := cats[tx.Category]; !ok {
				continue
			}
		}
		if rf.DateStart != "" && tx.Date < rf.DateStart {
			continue
		}
		if rf.DateEnd != "" && tx.Date > rf.DateEnd {
			continue
		}
		included = append(included, tx)
		amt := decimal.NewFromFloat(tx.Amount)
		if tx.Type == Income {
			net = net.Add(amt)
		} else {
			net = net.Sub(amt)
		}
	}

	return Report{
		Included: included,
		Net:      net.InexactFloat64(),
		Groups:   GroupByCategory(included),
	}
}

// GroupByCategory sums amounts per category in first-appearance order.
func GroupByCategory(txs []Transaction) []CategoryAmount {
	idx := make(map[string]int)
	sums := make([]decimal.Decimal, 0)
	out := make([]CategoryAmount, 0)
	for _, tx := range txs {
		i, ok := idx[tx.Category]
		if !ok {
			i = len(out)
			idx[tx.Category] = i
			out = append(out, CategoryAmount{Category: tx.Category})
			sums = append(sums, decimal.Zero)
		}
		sums[i] = sums[i].Add(decimal.NewFromFloat(tx.Amount))
	}
	for i := range out {
		out[i].Amount = sums[i].InexactFloat64()
	}
	return out
}
