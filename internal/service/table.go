package service

import (
	"github.com/boddenberg/bills-dashboard-go/internal/domain"
	"github.com/boddenberg/bills-dashboard-go/internal/infra/view"
	"github.com/boddenberg/bills-dashboard-go/internal/port"
)

// Row icons by canonical type.
const (
	IconIncome  = "icon-coin"
	IconExpense = "icon-pay"
)

// TableRenderer fills the transaction and report tables and the totals.
type TableRenderer struct {
	page   port.Page
	format *AmountFormatter
}

// NewTableRenderer creates a renderer writing into page.
func NewTableRenderer(page port.Page, format *AmountFormatter) *TableRenderer {
	return &TableRenderer{page: page, format: format}
}

// RenderTotals writes the monthly income and expense figures, when the page
// has them.
func (t *TableRenderer) RenderTotals(m domain.Monthly) error {
	if err := optional(t.page.SetText(view.IncomeID, t.format.Format(m.Income))); err != nil {
		return err
	}
	return optional(t.page.SetText(view.ExpenseID, t.format.Format(m.Expense)))
}

// RenderTransactions replaces every row of txTable, one per transaction in
// input order.
func (t *TableRenderer) RenderTransactions(txs []domain.Transaction) error {
	return t.page.ReplaceRows(view.TxTableID, t.rows(txs))
}

// RenderReport replaces the report rows and writes the signed net total.
func (t *TableRenderer) RenderReport(r domain.Report) error {
	if err := t.page.ReplaceRows(view.ReportTableID, t.rows(r.Included)); err != nil {
		return err
	}
	return optional(t.page.SetText(view.ReportTotalID, t.format.Format(r.Net)))
}

func (t *TableRenderer) rows(txs []domain.Transaction) []domain.TableRow {
	rows := make([]domain.TableRow, len(txs))
	for i, tx := range txs {
		icon := IconExpense
		if tx.Type == domain.Income {
			icon = IconIncome
		}
		rows[i] = domain.TableRow{
			Date:     tx.Date,
			Icon:     icon,
			Merchant: tx.Merchant,
			Category: tx.Category,
			Amount:   t.format.Format(tx.Amount),
			Type:     tx.Type.String(),
		}
	}
	return rows
}
