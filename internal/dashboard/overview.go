package dashboard

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"welth/internal/core"
)

// RecentLimit is the number of rows in the recent transactions list.
const RecentLimit = 5

const (
	EmptyRecentText    = "No recent transactions"
	EmptyBreakdownText = "No expenses this month"
	untitledText       = "Untitled Transaction"
	dateLayout         = "Jan 2, 2006"
)

// PieColors is the slice palette, applied by index modulo its length.
var PieColors = []string{
	"#FF6B6B",
	"#4ECDC4",
	"#45B7D1",
	"#96CEB4",
	"#FFEEAD",
	"#D4A5A5",
	"#9FA8DA",
}

// CategoryTotal is one slice of the expense breakdown.
type CategoryTotal struct {
	Name  string
	Value decimal.Decimal
}

// AccountOption is one entry of the account selector.
type AccountOption struct {
	ID       string
	Name     string
	Selected bool
}

// RecentRow is a rendered recent transaction.
type RecentRow struct {
	ID          string
	Description string
	Date        string
	Amount      string
	IsExpense   bool
}

// PieSlice is a rendered slice of the expense pie chart.
type PieSlice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Label string  `json:"label"`
	Color string  `json:"color"`
}

// Overview is the template-facing model of the transaction overview panel.
type Overview struct {
	SelectedAccountID string
	Options           []AccountOption
	Recent            []RecentRow
	Slices            []PieSlice
}

// HasRecent reports whether the recent list has rows.
func (o Overview) HasRecent() bool { return len(o.Recent) > 0 }

// HasBreakdown reports whether the pie has slices.
func (o Overview) HasBreakdown() bool { return len(o.Slices) > 0 }

// SelectAccount resolves the selector value. A requested id is honoured only
// if it belongs to accounts; otherwise the default account wins, then the
// first account. It returns "" when accounts is empty.
func SelectAccount(accounts []core.Account, requested string) string {
	if requested != "" {
		for _, a := range accounts {
			if a.ID == requested {
				return a.ID
			}
		}
	}
	for _, a := range accounts {
		if a.IsDefault {
			return a.ID
		}
	}
	if len(accounts) > 0 {
		return accounts[0].ID
	}
	return ""
}

// AccountTransactions returns the transactions of accountID in input order.
func AccountTransactions(txs []core.Transaction, accountID string) []core.Transaction {
	var out []core.Transaction
	for _, t := range txs {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	return out
}

// RecentTransactions returns up to limit transactions of accountID, newest
// first. Transactions with equal dates keep their input order.
func RecentTransactions(txs []core.Transaction, accountID string, limit int) []core.Transaction {
	out := AccountTransactions(txs, accountID)
	slices.SortStableFunc(out, func(a, b core.Transaction) int {
		return b.Date.Compare(a.Date)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ExpenseBreakdown sums the EXPENSE transactions of accountID that fall in
// the calendar month and year of now, grouped by the exact category string.
// Dates are compared in now's location. Categories appear in first-seen order.
func ExpenseBreakdown(txs []core.Transaction, accountID string, now time.Time) []CategoryTotal {
	year, month, _ := now.Date()
	loc := now.Location()

	index := map[string]int{}
	var out []CategoryTotal
	for _, t := range AccountTransactions(txs, accountID) {
		if !t.IsExpense() {
			continue
		}
		y, m, _ := t.Date.In(loc).Date()
		if y != year || m != month {
			continue
		}
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, CategoryTotal{Name: t.Category, Value: decimal.Zero})
		}
		out[i].Value = out[i].Value.Add(t.Amount)
	}
	return out
}

// NewOverview derives the overview panel for the requested account.
func NewOverview(accounts []core.Account, txs []core.Transaction, requested string, now time.Time) Overview {
	selected := SelectAccount(accounts, requested)
	ov := Overview{SelectedAccountID: selected}

	for _, a := range accounts {
		ov.Options = append(ov.Options, AccountOption{ID: a.ID, Name: a.Name, Selected: a.ID == selected})
	}
	if selected == "" {
		return ov
	}

	for _, t := range RecentTransactions(txs, selected, RecentLimit) {
		ov.Recent = append(ov.Recent, NewRecentRow(t, now.Location()))
	}
	for i, c := range ExpenseBreakdown(txs, selected, now) {
		ov.Slices = append(ov.Slices, newPieSlice(i, c))
	}
	return ov
}

// NewRecentRow renders t for a transaction list, with dates shown in loc.
func NewRecentRow(t core.Transaction, loc *time.Location) RecentRow {
	desc := t.Description
	if desc == "" {
		desc = untitledText
	}
	return RecentRow{
		ID:          t.ID,
		Description: desc,
		Date:        t.Date.In(loc).Format(dateLayout),
		Amount:      core.FormatDollars(t.Amount),
		IsExpense:   t.IsExpense(),
	}
}

func newPieSlice(i int, c CategoryTotal) PieSlice {
	value, _ := c.Value.Float64()
	return PieSlice{
		Name:  c.Name,
		Value: value,
		Label: c.Name + ": " + core.FormatDollars(c.Value),
		Color: PieColors[i%len(PieColors)],
	}
}
