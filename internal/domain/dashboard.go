package domain

// ============================================================
// Dashboard payload: GET <dashboard-data-endpoint>
// ============================================================

// SummaryPayload is the full response of one dashboard query.
// It is rebuilt on every fetch and never merged with a previous one.
type SummaryPayload struct {
	Monthly            Monthly             `json:"monthly"`
	Timeseries         Timeseries          `json:"timeseries"`
	CategoryTimeseries *CategoryTimeseries `json:"category_timeseries,omitempty"`
	ByCategory         []CategoryAmount    `json:"by_category,omitempty"`
	Transactions       []Transaction       `json:"transactions"`
	Pagination         *Pagination         `json:"pagination,omitempty"`
}

// Monthly holds the aggregate totals for the current filter window.
type Monthly struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// Timeseries is the income/expense series of the main chart.
// Labels, Income and Expense are index-aligned.
type Timeseries struct {
	Labels  []string  `json:"labels"`
	Income  []float64 `json:"income"`
	Expense []float64 `json:"expense"`
}

// CategoryTimeseries is the optional per-category expense series.
type CategoryTimeseries struct {
	Labels   []string          `json:"labels"`
	Datasets []CategoryDataset `json:"datasets"`
}

// CategoryDataset is one category series; len(Data) == len(Labels).
type CategoryDataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// CategoryAmount is one slice of the category breakdown.
type CategoryAmount struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// Transaction is one row of the transaction table.
// Amount is a non-negative magnitude; Type carries the sign.
type Transaction struct {
	Date     string          `json:"date"` // YYYY-MM-DD, lexically sortable
	Merchant string          `json:"merchant"`
	Category string          `json:"category"`
	Amount   float64         `json:"amount"`
	Type     TransactionType `json:"type"`
}

// Pagination describes the transaction page returned by the backend.
type Pagination struct {
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
	PageSize   int `json:"page_size,omitempty"`
	TotalItems int `json:"total_items,omitempty"`
}

// Normalized returns the descriptor with page/total defaulted to 1 and
// page clamped into [1, TotalPages]. A nil descriptor yields page 1 of 1.
func (p *Pagination) Normalized() Pagination {
	out := Pagination{Page: 1, TotalPages: 1}
	if p == nil {
		return out
	}
	out.PageSize = p.PageSize
	out.TotalItems = p.TotalItems
	if p.TotalPages > 1 {
		out.TotalPages = p.TotalPages
	}
	if p.Page > 1 {
		out.Page = p.Page
	}
	if out.Page > out.TotalPages {
		out.Page = out.TotalPages
	}
	return out
}
