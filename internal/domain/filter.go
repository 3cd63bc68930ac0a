package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// DefaultTimeframe is the window the backend assumes when none is sent.
const DefaultTimeframe = "1M"

var timeframePattern = regexp.MustCompile(`^[1-9][0-9]*[WMY]$`)

// ValidateTimeframe accepts "<n>W", "<n>M", "<n>Y" or "ALL" (case-insensitive)
// and returns its canonical upper-case form.
func ValidateTimeframe(tf string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(tf))
	if s == "ALL" || timeframePattern.MatchString(s) {
		return s, nil
	}
	return "", &ErrValidation{Field: "timeframe", Message: fmt.Sprintf("invalid timeframe %q", tf)}
}

// QueryParam is one key/value of the dashboard query, in emission order.
type QueryParam struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Query is the ordered dashboard query.
type Query []QueryParam

// Encode renders the query string preserving parameter order.
func (q Query) Encode() string {
	var b strings.Builder
	for i, p := range q {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// Get returns the value for key and whether it is present.
func (q Query) Get(key string) (string, bool) {
	for _, p := range q {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// FilterState is the client-owned selection behind every dashboard query.
// It never holds payload data. Changing any filter other than the page
// resets the page to 1.
type FilterState struct {
	timeframe  string
	start, end string
	txType     TypeFilter
	categories map[string]struct{}
	page       int
	totalPages int
	pageSize   int
}

// NewFilterState returns the initial state: default timeframe, all types,
// no categories, page 1 of 1.
func NewFilterState(timeframe string, pageSize int) *FilterState {
	if tf, err := ValidateTimeframe(timeframe); err == nil {
		timeframe = tf
	} else {
		timeframe = DefaultTimeframe
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return &FilterState{
		timeframe:  timeframe,
		txType:     TypeAll,
		categories: map[string]struct{}{},
		page:       1,
		totalPages: 1,
		pageSize:   pageSize,
	}
}

// SetTimeframe selects a relative window and clears any explicit range.
func (f *FilterState) SetTimeframe(tf string) error {
	canonical, err := ValidateTimeframe(tf)
	if err != nil {
		return err
	}
	f.timeframe = canonical
	f.start, f.end = "", ""
	f.page = 1
	return nil
}

// SetRange selects an explicit date range; either bound may be empty.
// A non-empty range replaces the timeframe.
func (f *FilterState) SetRange(start, end string) error {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start != "" && end != "" && start > end {
		return &ErrValidation{Field: "start", Message: "start must not be after end"}
	}
	f.start, f.end = start, end
	if start == "" && end == "" && f.timeframe == "" {
		f.timeframe = DefaultTimeframe
	}
	f.page = 1
	return nil
}

// SetType selects the transaction type filter.
func (f *FilterState) SetType(t TypeFilter) {
	f.txType = t
	f.page = 1
}

// SetCategories replaces the selected categories. Blank names are ignored.
func (f *FilterState) SetCategories(categories []string) {
	f.categories = make(map[string]struct{}, len(categories))
	for _, c := range categories {
		if c = strings.TrimSpace(c); c != "" {
			f.categories[c] = struct{}{}
		}
	}
	f.page = 1
}

// SetPage moves to page p, clamped into [1, TotalPages]. No other field changes.
func (f *FilterState) SetPage(p int) {
	f.page = clamp(p, 1, f.totalPages)
}

// ApplyPagination records the descriptor of a received payload and clamps
// the current page into the new bounds.
func (f *FilterState) ApplyPagination(p *Pagination) Pagination {
	n := p.Normalized()
	f.totalPages = n.TotalPages
	f.page = n.Page
	return n
}

func (f *FilterState) Page() int       { return f.page }
func (f *FilterState) TotalPages() int { return f.totalPages }
func (f *FilterState) PageSize() int   { return f.pageSize }
func (f *FilterState) Type() TypeFilter {
	return f.txType
}

// Timeframe returns the relative window, or "" when an explicit range is active.
func (f *FilterState) Timeframe() string {
	if f.hasRange() {
		return ""
	}
	return f.timeframe
}

// Range returns the explicit date bounds.
func (f *FilterState) Range() (start, end string) { return f.start, f.end }

// Categories returns the selected categories sorted.
func (f *FilterState) Categories() []string {
	out := make([]string, 0, len(f.categories))
	for c := range f.categories {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func (f *FilterState) hasRange() bool { return f.start != "" || f.end != "" }

// BuildQuery derives the canonical query for principal. Keys at their no-op
// default (type=all, no categories, missing dates) are omitted; the window,
// page, page_size and user_id are always present.
func (f *FilterState) BuildQuery(principal string) Query {
	q := make(Query, 0, 7)
	if f.hasRange() {
		if f.start != "" {
			q = append(q, QueryParam{"start", f.start})
		}
		if f.end != "" {
			q = append(q, QueryParam{"end", f.end})
		}
	} else {
		q = append(q, QueryParam{"timeframe", f.timeframe})
	}
	if f.txType != TypeAll && f.txType != "" {
		q = append(q, QueryParam{"type", string(f.txType)})
	}
	if len(f.categories) > 0 {
		q = append(q, QueryParam{"categories", strings.Join(f.Categories(), ",")})
	}
	q = append(q,
		QueryParam{"page", strconv.Itoa(f.page)},
		QueryParam{"page_size", strconv.Itoa(f.pageSize)},
		QueryParam{"user_id", principal},
	)
	return q
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
