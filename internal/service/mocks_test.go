package service_test

import (
	"context"
	"sync"

	"github.com/boddenberg/bills-dashboard-go/internal/domain"
)

// --- Mocks ---

// stepFetcher answers call i with payloads[i] / errs[i] (the last entry
// repeats) and blocks call i on gates[i] when set.
type stepFetcher struct {
	mu       sync.Mutex
	queries  []domain.Query
	payloads []*domain.SummaryPayload
	errs     []error
	gates    map[int]chan struct{}
	started  chan int
}

func (f *stepFetcher) FetchSummary(_ context.Context, q domain.Query) (*domain.SummaryPayload, error) {
	f.mu.Lock()
	i := len(f.queries)
	f.queries = append(f.queries, q)
	var payload *domain.SummaryPayload
	if len(f.payloads) > 0 {
		payload = f.payloads[min(i, len(f.payloads)-1)]
	}
	var err error
	if len(f.errs) > 0 {
		err = f.errs[min(i, len(f.errs)-1)]
	}
	gate := f.gates[i]
	f.mu.Unlock()

	if f.started != nil {
		f.started <- i
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (f *stepFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func (f *stepFetcher) lastQuery() domain.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queries) == 0 {
		return nil
	}
	return f.queries[len(f.queries)-1]
}

type staticPrincipal struct {
	id  string
	err error
}

func (p staticPrincipal) Principal(_ context.Context) (string, error) {
	return p.id, p.err
}

// --- Fixtures ---

func scenarioPayload() *domain.SummaryPayload {
	return &domain.SummaryPayload{
		Monthly: domain.Monthly{Income: 1000, Expense: 400},
		Timeseries: domain.Timeseries{
			Labels:  []string{"W1"},
			Income:  []float64{1000},
			Expense: []float64{400},
		},
		Transactions: []domain.Transaction{
			{Date: "2024-01-01", Merchant: "A", Category: "Food", Amount: 400, Type: domain.Expense},
		},
		Pagination: &domain.Pagination{Page: 1, TotalPages: 1},
	}
}

func pagedPayload(merchant string, page, total int) *domain.SummaryPayload {
	p := scenarioPayload()
	p.Transactions[0].Merchant = merchant
	p.Pagination = &domain.Pagination{Page: page, TotalPages: total}
	return p
}

func categoryPayload() *domain.SummaryPayload {
	p := scenarioPayload()
	p.CategoryTimeseries = &domain.CategoryTimeseries{
		Labels: []string{"W1", "W2", "W3"},
		Datasets: []domain.CategoryDataset{
			{Label: "Food", Data: []float64{100, 100, 100}},
			{Label: "Rent", Data: []float64{0, 0, 0}},
			{Label: "Fun", Data: []float64{50, 50, 50}},
		},
	}
	p.ByCategory = []domain.CategoryAmount{
		{Category: "Food", Amount: 300},
		{Category: "Rent", Amount: 0},
	}
	return p
}
