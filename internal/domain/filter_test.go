package domain_test

import (
	"reflect"
	"testing"

	"github.com/boddenberg/bills-dashboard-go/internal/domain"
)

func keys(q domain.Query) []string {
	out := make([]string, len(q))
	for i, p := range q {
		out[i] = p.Key
	}
	return out
}

func TestBuildQuery_Defaults(t *testing.T) {
	f := domain.NewFilterState("", 0)

	q := f.BuildQuery("2")

	want := domain.Query{
		{Key: "timeframe", Value: "1M"},
		{Key: "page", Value: "1"},
		{Key: "page_size", Value: "10"},
		{Key: "user_id", Value: "2"},
	}
	if !reflect.DeepEqual(q, want) {
		t.Errorf("expected %v, got %v", want, q)
	}
	if got := q.Encode(); got != "timeframe=1M&page=1&page_size=10&user_id=2" {
		t.Errorf("unexpected encoding %q", got)
	}
}

func TestBuildQuery_AllFilters(t *testing.T) {
	f := domain.NewFilterState("3M", 20)
	if err := f.SetRange("2024-01-01", "2024-03-31"); err != nil {
		t.Fatalf("set range: %v", err)
	}
	f.SetType(domain.TypeExpense)
	f.SetCategories([]string{"Rent", " Food ", ""})

	q := f.BuildQuery("u-1")

	wantKeys := []string{"start", "end", "type", "categories", "page", "page_size", "user_id"}
	if !reflect.DeepEqual(keys(q), wantKeys) {
		t.Errorf("expected keys %v, got %v", wantKeys, keys(q))
	}
	if v, _ := q.Get("categories"); v != "Food,Rent" {
		t.Errorf("expected sorted categories, got %q", v)
	}
	if _, ok := q.Get("timeframe"); ok {
		t.Error("expected timeframe omitted while a range is set")
	}
}

func TestBuildQuery_Deterministic(t *testing.T) {
	f := domain.NewFilterState("1Y", 10)
	f.SetCategories([]string{"c", "a", "b", "d"})

	first := f.BuildQuery("2")
	for i := 0; i < 20; i++ {
		if got := f.BuildQuery("2"); !reflect.DeepEqual(got, first) {
			t.Fatalf("query changed between calls: %v vs %v", first, got)
		}
	}
}

func TestFilterState_FilterChangesResetPage(t *testing.T) {
	mutations := map[string]func(f *domain.FilterState){
		"timeframe":  func(f *domain.FilterState) { _ = f.SetTimeframe("1W") },
		"range":      func(f *domain.FilterState) { _ = f.SetRange("2024-01-01", "") },
		"type":       func(f *domain.FilterState) { f.SetType(domain.TypeIncome) },
		"categories": func(f *domain.FilterState) { f.SetCategories([]string{"Food"}) },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			f := domain.NewFilterState("1M", 10)
			f.ApplyPagination(&domain.Pagination{Page: 3, TotalPages: 5})

			mutate(f)

			if f.Page() != 1 {
				t.Errorf("expected page reset to 1, got %d", f.Page())
			}
		})
	}
}

func TestFilterState_SetPageChangesOnlyPage(t *testing.T) {
	f := domain.NewFilterState("6M", 25)
	f.SetType(domain.TypeIncome)
	f.SetCategories([]string{"Food"})
	f.ApplyPagination(&domain.Pagination{Page: 1, TotalPages: 4})
	before := f.BuildQuery("2")

	f.SetPage(3)

	after := f.BuildQuery("2")
	for i, p := range after {
		if p.Key == "page" {
			if p.Value != "3" {
				t.Errorf("expected page 3, got %s", p.Value)
			}
			continue
		}
		if p != before[i] {
			t.Errorf("expected %v unchanged, got %v", before[i], p)
		}
	}
}

func TestFilterState_PageClamped(t *testing.T) {
	f := domain.NewFilterState("", 10)
	f.ApplyPagination(&domain.Pagination{Page: 7, TotalPages: 4})
	if f.Page() != 4 {
		t.Errorf("expected page clamped to 4, got %d", f.Page())
	}

	f.SetPage(99)
	if f.Page() != 4 {
		t.Errorf("expected page clamped to 4, got %d", f.Page())
	}
	f.SetPage(-2)
	if f.Page() != 1 {
		t.Errorf("expected page clamped to 1, got %d", f.Page())
	}

	f.ApplyPagination(nil)
	if f.Page() != 1 || f.TotalPages() != 1 {
		t.Errorf("expected 1/1 for absent descriptor, got %d/%d", f.Page(), f.TotalPages())
	}
}

func TestValidateTimeframe(t *testing.T) {
	valid := map[string]string{"1M": "1M", "2w": "2W", "10Y": "10Y", "all": "ALL", " 3m ": "3M"}
	for in, want := range valid {
		got, err := domain.ValidateTimeframe(in)
		if err != nil || got != want {
			t.Errorf("ValidateTimeframe(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, in := range []string{"", "0M", "M", "1D", "1MM", "-1M"} {
		if _, err := domain.ValidateTimeframe(in); err == nil {
			t.Errorf("ValidateTimeframe(%q): expected error", in)
		}
	}
}

func TestSetRange_RejectsInverted(t *testing.T) {
	f := domain.NewFilterState("", 10)
	if err := f.SetRange("2024-02-01", "2024-01-01"); err == nil {
		t.Fatal("expected error for inverted range")
	}
	if tf := f.Timeframe(); tf != "1M" {
		t.Errorf("expected timeframe unchanged, got %q", tf)
	}
}
