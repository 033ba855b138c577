package dashboard

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"welth/internal/core"
)

var now = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func tx(id, account string, typ core.TransactionType, category, amount string, date time.Time) core.Transaction {
	return core.Transaction{
		ID:        id,
		AccountID: account,
		Type:      typ,
		Category:  category,
		Amount:    decimal.RequireFromString(amount),
		Date:      date,
	}
}

func day(d int) time.Time {
	return time.Date(2025, time.March, d, 9, 0, 0, 0, time.UTC)
}

func TestSelectAccount(t *testing.T) {
	accounts := []core.Account{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B", IsDefault: true},
		{ID: "c", Name: "C"},
	}
	cases := []struct {
		name      string
		accounts  []core.Account
		requested string
		want      string
	}{
		{"default wins without request", accounts, "", "b"},
		{"requested known id", accounts, "c", "c"},
		{"unknown id falls back to default", accounts, "zzz", "b"},
		{"first when no default", []core.Account{{ID: "x"}, {ID: "y"}}, "", "x"},
		{"empty accounts", nil, "a", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SelectAccount(tc.accounts, tc.requested); got != tc.want {
				t.Fatalf("SelectAccount = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRecentTransactionsFiltersSortsAndCaps(t *testing.T) {
	var txs []core.Transaction
	for i := 1; i <= 7; i++ {
		txs = append(txs, tx(fmt.Sprintf("a%d", i), "a", core.Expense, "Food", "1", day(i)))
		txs = append(txs, tx(fmt.Sprintf("b%d", i), "b", core.Income, "Salary", "1", day(i+10)))
	}

	recentA := RecentTransactions(txs, "a", RecentLimit)
	if len(recentA) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(recentA))
	}
	for i, want := range []string{"a7", "a6", "a5", "a4", "a3"} {
		if recentA[i].ID != want {
			t.Fatalf("row %d: expected %s, got %s", i, want, recentA[i].ID)
		}
	}

	recentB := RecentTransactions(txs, "b", RecentLimit)
	for _, r := range recentB {
		if r.AccountID != "b" {
			t.Fatalf("unexpected account %s in recent list for b", r.AccountID)
		}
	}
	if recentB[0].ID != "b7" {
		t.Fatalf("expected newest b7 first, got %s", recentB[0].ID)
	}
}

func TestRecentTransactionsKeepsInputOrderOnTies(t *testing.T) {
	txs := []core.Transaction{
		tx("first", "a", core.Expense, "Food", "1", day(3)),
		tx("second", "a", core.Expense, "Food", "1", day(3)),
		tx("older", "a", core.Expense, "Food", "1", day(1)),
	}
	got := RecentTransactions(txs, "a", RecentLimit)
	if got[0].ID != "first" || got[1].ID != "second" || got[2].ID != "older" {
		t.Fatalf("unexpected order: %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
	if txs[0].ID != "first" || txs[2].ID != "older" {
		t.Fatalf("input slice must not be reordered")
	}
}

func TestExpenseBreakdownIsCaseSensitive(t *testing.T) {
	txs := []core.Transaction{
		tx("1", "a", core.Expense, "Food", "10", day(1)),
		tx("2", "a", core.Expense, "Food", "20", day(2)),
		tx("3", "a", core.Expense, "food", "5", day(3)),
		tx("4", "a", core.Expense, "Food ", "1", day(3)),
	}
	got := ExpenseBreakdown(txs, "a", now)
	if len(got) != 3 {
		t.Fatalf("expected 3 slices, got %d: %+v", len(got), got)
	}
	want := []struct {
		name  string
		value string
	}{{"Food", "30"}, {"food", "5"}, {"Food ", "1"}}
	for i, w := range want {
		if got[i].Name != w.name || !got[i].Value.Equal(decimal.RequireFromString(w.value)) {
			t.Fatalf("slice %d: expected %s=%s, got %s=%s", i, w.name, w.value, got[i].Name, got[i].Value)
		}
	}
}

func TestExpenseBreakdownOnlyCurrentMonthExpenses(t *testing.T) {
	txs := []core.Transaction{
		tx("inc", "a", core.Income, "Salary", "100", day(2)),
		tx("lastMonth", "a", core.Expense, "Food", "7", time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC)),
		tx("lastYear", "a", core.Expense, "Food", "9", time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)),
		tx("other", "b", core.Expense, "Food", "11", day(4)),
	}
	if got := ExpenseBreakdown(txs, "a", now); len(got) != 0 {
		t.Fatalf("expected empty breakdown, got %+v", got)
	}
}

func TestExpenseBreakdownUsesViewerLocation(t *testing.T) {
	rome := time.FixedZone("CET", 60*60)
	viewerNow := time.Date(2025, time.April, 1, 10, 0, 0, 0, rome)
	// 23:30 UTC on March 31 is already April 1 in the viewer's zone.
	txs := []core.Transaction{
		tx("edge", "a", core.Expense, "Food", "4", time.Date(2025, time.March, 31, 23, 30, 0, 0, time.UTC)),
	}
	got := ExpenseBreakdown(txs, "a", viewerNow)
	if len(got) != 1 || !got[0].Value.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("expected edge transaction in April, got %+v", got)
	}
}

func TestNewOverview(t *testing.T) {
	accounts := []core.Account{
		{ID: "a", Name: "Checking", IsDefault: true},
		{ID: "b", Name: "Savings"},
	}
	txs := []core.Transaction{
		tx("1", "a", core.Expense, "Food", "10", day(1)),
		tx("2", "a", core.Income, "Salary", "1000", day(2)),
		tx("3", "b", core.Expense, "Rent", "500", day(3)),
	}
	txs[1].Description = "Paycheck"

	ov := NewOverview(accounts, txs, "", now)
	if ov.SelectedAccountID != "a" {
		t.Fatalf("expected default account selected, got %q", ov.SelectedAccountID)
	}
	if len(ov.Options) != 2 || !ov.Options[0].Selected || ov.Options[1].Selected {
		t.Fatalf("unexpected options %+v", ov.Options)
	}
	if len(ov.Recent) != 2 {
		t.Fatalf("expected 2 recent rows, got %d", len(ov.Recent))
	}
	first := ov.Recent[0]
	if first.Description != "Paycheck" || first.IsExpense || first.Amount != "$1000.00" || first.Date != "Mar 2, 2025" {
		t.Fatalf("unexpected first row %+v", first)
	}
	if ov.Recent[1].Description != "Untitled Transaction" {
		t.Fatalf("expected untitled fallback, got %q", ov.Recent[1].Description)
	}
	if len(ov.Slices) != 1 || ov.Slices[0].Label != "Food: $10.00" || ov.Slices[0].Color != PieColors[0] {
		t.Fatalf("unexpected slices %+v", ov.Slices)
	}

	ov = NewOverview(accounts, txs, "b", now)
	if len(ov.Recent) != 1 || ov.Recent[0].ID != "3" {
		t.Fatalf("expected only account b rows, got %+v", ov.Recent)
	}
	if ov.Slices[0].Name != "Rent" {
		t.Fatalf("expected Rent slice, got %+v", ov.Slices)
	}
}

func TestNewOverviewEmptyStates(t *testing.T) {
	ov := NewOverview(nil, nil, "", now)
	if ov.HasRecent() || ov.HasBreakdown() {
		t.Fatalf("expected empty overview")
	}

	accounts := []core.Account{{ID: "a", Name: "A"}}
	txs := []core.Transaction{tx("1", "a", core.Income, "Salary", "10", day(1))}
	ov = NewOverview(accounts, txs, "", now)
	if !ov.HasRecent() {
		t.Fatalf("expected recent rows")
	}
	if ov.HasBreakdown() {
		t.Fatalf("expected empty breakdown without expenses")
	}
}

func TestPieColorsWrap(t *testing.T) {
	var txs []core.Transaction
	for i := 0; i < 9; i++ {
		txs = append(txs, tx(fmt.Sprint(i), "a", core.Expense, fmt.Sprintf("cat%d", i), "1", day(1)))
	}
	ov := NewOverview([]core.Account{{ID: "a"}}, txs, "", now)
	if ov.Slices[7].Color != PieColors[0] || ov.Slices[8].Color != PieColors[1] {
		t.Fatalf("expected palette to wrap, got %s %s", ov.Slices[7].Color, ov.Slices[8].Color)
	}
}
