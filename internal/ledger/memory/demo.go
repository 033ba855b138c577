package memory

import (
	"time"

	"github.com/shopspring/decimal"

	"welth/internal/core"
)

// Demo returns a store with three accounts and a few weeks of transactions
// around now, so that the current-month breakdown is never empty.
func Demo(now time.Time) *Store {
	accounts := []core.Account{
		{ID: "acc-checking", Name: "Everyday Checking", Type: core.Checking, Balance: "2450.75", IsDefault: true},
		{ID: "acc-savings", Name: "Rainy Day Savings", Type: core.Savings, Balance: "12000"},
		{ID: "acc-current", Name: "Travel Current", Type: core.Current, Balance: "310.4"},
	}
	for i := range accounts {
		accounts[i].CreatedAt = now.AddDate(0, -6, 0)
		accounts[i].UpdatedAt = accounts[i].CreatedAt
	}

	y, m, _ := now.Date()
	monthStart := time.Date(y, m, 1, 9, 0, 0, 0, now.Location())
	at := func(days int) time.Time { return monthStart.AddDate(0, 0, days) }

	seed := []struct {
		account  string
		typ      core.TransactionType
		category string
		amount   string
		desc     string
		date     time.Time
	}{
		{"acc-checking", core.Income, "Salary", "3200", "Monthly salary", at(0)},
		{"acc-checking", core.Expense, "Rent", "1100", "Apartment rent", at(0)},
		{"acc-checking", core.Expense, "Food", "64.20", "Groceries", at(2)},
		{"acc-checking", core.Expense, "Transport", "45", "Metro pass", at(3)},
		{"acc-checking", core.Expense, "Food", "23.50", "", at(5)},
		{"acc-checking", core.Expense, "Utilities", "89.99", "Electricity bill", at(-4)},
		{"acc-savings", core.Income, "Transfer", "500", "Monthly saving", at(1)},
		{"acc-savings", core.Income, "Interest", "12.34", "Interest", at(-1)},
		{"acc-current", core.Expense, "Travel", "180", "Train tickets", at(4)},
		{"acc-current", core.Expense, "Food", "32", "Dinner out", at(4)},
	}
	txs := make([]core.Transaction, 0, len(seed))
	for _, s := range seed {
		txs = append(txs, core.Transaction{
			ID:          core.NewID(),
			AccountID:   s.account,
			Amount:      decimal.RequireFromString(s.amount),
			Type:        s.typ,
			Category:    s.category,
			Description: s.desc,
			Date:        s.date,
		})
	}
	return New(accounts, txs)
}
