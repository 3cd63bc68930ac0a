package domain

import (
	"encoding/json"
	"fmt"
)

// TransactionType is the canonical two-valued classification of a transaction.
type TransactionType int

const (
	Expense TransactionType = iota
	Income
)

// String returns the canonical label ("income" or "expense").
func (t TransactionType) String() string {
	if t == Income {
		return "income"
	}
	return "expense"
}

// DecodeTransactionType maps the heterogeneous encodings the backend emits
// onto the canonical type. "income", 1, "1" and true are income; any other
// value, including nil, is expense.
func DecodeTransactionType(v any) TransactionType {
	switch x := v.(type) {
	case string:
		if x == "income" || x == "1" {
			return Income
		}
	case bool:
		if x {
			return Income
		}
	case float64:
		if x == 1 {
			return Income
		}
	case int:
		if x == 1 {
			return Income
		}
	case json.Number:
		if x.String() == "1" {
			return Income
		}
	}
	return Expense
}

// UnmarshalJSON decodes any JSON scalar through DecodeTransactionType.
func (t *TransactionType) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("transaction type: %w", err)
	}
	*t = DecodeTransactionType(raw)
	return nil
}

// MarshalJSON always emits the canonical label.
func (t TransactionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// TypeFilter narrows transactions by canonical type.
type TypeFilter string

const (
	TypeAll     TypeFilter = "all"
	TypeIncome  TypeFilter = "income"
	TypeExpense TypeFilter = "expense"
)

// ParseTypeFilter validates a filter value; the empty string means all.
func ParseTypeFilter(s string) (TypeFilter, error) {
	switch TypeFilter(s) {
	case "", TypeAll:
		return TypeAll, nil
	case TypeIncome, TypeExpense:
		return TypeFilter(s), nil
	}
	return "", &ErrValidation{Field: "type", Message: fmt.Sprintf("unknown type filter %q", s)}
}

// Matches reports whether t passes the filter.
func (f TypeFilter) Matches(t TransactionType) bool {
	switch f {
	case TypeIncome:
		return t == Income
	case TypeExpense:
		return t == Expense
	}
	return true
}
