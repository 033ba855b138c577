package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"welth/internal/core"
)

func TestUpdateDefaultAccountKeepsSingleDefault(t *testing.T) {
	s := New([]core.Account{
		{ID: "a", Name: "A", Type: core.Checking, IsDefault: true},
		{ID: "b", Name: "B", Type: core.Savings},
		{ID: "c", Name: "C", Type: core.Current},
	}, nil)

	res, err := s.UpdateDefaultAccount(context.Background(), "c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success || res.Account.ID != "c" || !res.Account.IsDefault || res.PreviousDefaultID != "a" {
		t.Fatalf("unexpected result: %+v", res)
	}

	accounts, _ := s.ListAccounts(context.Background())
	defaults := 0
	for _, a := range accounts {
		if a.IsDefault {
			defaults++
			if a.ID != "c" {
				t.Fatalf("expected c to be default, got %s", a.ID)
			}
		}
	}
	if defaults != 1 {
		t.Fatalf("expected exactly one default, got %d", defaults)
	}
}

func TestUpdateDefaultAccountUnknownID(t *testing.T) {
	s := New([]core.Account{{ID: "a", Name: "A", Type: core.Checking, IsDefault: true}}, nil)
	_, err := s.UpdateDefaultAccount(context.Background(), "missing")
	if !errors.Is(err, core.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	a, _ := s.GetAccount(context.Background(), "a")
	if !a.IsDefault {
		t.Fatalf("failed update must not clear the default")
	}
}

func TestListReturnsCopies(t *testing.T) {
	s := New([]core.Account{{ID: "a", Name: "A"}}, nil)
	accounts, _ := s.ListAccounts(context.Background())
	accounts[0].Name = "changed"
	again, _ := s.ListAccounts(context.Background())
	if again[0].Name != "A" {
		t.Fatalf("store was mutated through returned slice")
	}
}

func TestNewFromFiles(t *testing.T) {
	dir := t.TempDir()

	// No files -> demo data
	s := NewFromFiles(dir)
	accounts, _ := s.ListAccounts(context.Background())
	if len(accounts) == 0 {
		t.Fatalf("expected demo accounts when files missing")
	}

	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite("accounts.json", `[
		{"id":"x","name":"Main","type":"checking","balance":"10.5","isDefault":true},
		{"name":"Odd","type":"BROKERAGE","balance":"abc"}
	]`)
	mustWrite("transactions.json", `[
		{"id":"t1","accountId":"x","amount":"12.30","type":"expense","category":"Food","date":"2025-03-01T10:00:00Z"}
	]`)

	s = NewFromFiles(dir)
	accounts, _ = s.ListAccounts(context.Background())
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}
	if accounts[0].Type != core.Checking || !accounts[0].IsDefault || accounts[0].Balance != "10.5" {
		t.Fatalf("unexpected first account: %+v", accounts[0])
	}
	if accounts[1].ID == "" || accounts[1].Type != "BROKERAGE" {
		t.Fatalf("expected generated id and verbatim type, got %+v", accounts[1])
	}

	txs, _ := s.ListTransactions(context.Background())
	if len(txs) != 1 || txs[0].Type != core.Expense || txs[0].Amount.String() != "12.3" {
		t.Fatalf("unexpected transactions: %+v", txs)
	}
	if !txs[0].Date.Equal(time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", txs[0].Date)
	}
}

func TestDemoHasCurrentMonthExpenses(t *testing.T) {
	now := time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC)
	s := Demo(now)
	txs, _ := s.ListTransactions(context.Background())
	found := false
	for _, tx := range txs {
		if tx.IsExpense() && tx.Date.Month() == now.Month() && tx.Date.Year() == now.Year() {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected at least one current-month expense in demo data")
	}
}
