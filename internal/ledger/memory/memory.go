package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"welth/internal/core"
	"welth/internal/ledger"
)

// Store keeps accounts and transactions in process memory.
type Store struct {
	mu       sync.RWMutex
	accounts []core.Account
	txs      []core.Transaction
}

func New(accounts []core.Account, txs []core.Transaction) *Store {
	return &Store{
		accounts: append([]core.Account(nil), accounts...),
		txs:      append([]core.Transaction(nil), txs...),
	}
}

// NewFromFiles seeds the store from accounts.json and transactions.json in
// base. Missing or unreadable files fall back to the demo data set.
func NewFromFiles(base string) *Store {
	accounts, err := readAccounts(filepath.Join(base, "accounts.json"))
	if err != nil || len(accounts) == 0 {
		if err != nil && !os.IsNotExist(err) {
			slog.Warn("Falling back to demo accounts", "error", err)
		}
		return Demo(time.Now())
	}
	txs, err := readTransactions(filepath.Join(base, "transactions.json"))
	if err != nil && !os.IsNotExist(err) {
		slog.Warn("Ignoring transactions seed", "error", err)
	}
	return New(accounts, txs)
}

func (s *Store) ListAccounts(_ context.Context) ([]core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Account(nil), s.accounts...), nil
}

func (s *Store) GetAccount(_ context.Context, id string) (core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return core.Account{}, core.ErrAccountNotFound
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.txs...), nil
}

// UpdateDefaultAccount flags id as default and clears every other account.
func (s *Store) UpdateDefaultAccount(_ context.Context, id string) (ledger.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, a := range s.accounts {
		if a.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ledger.UpdateResult{}, core.ErrAccountNotFound
	}

	var prev string
	now := time.Now()
	for i := range s.accounts {
		a := &s.accounts[i]
		if a.IsDefault && i != idx {
			prev = a.ID
		}
		wasDefault := a.IsDefault
		a.IsDefault = i == idx
		if wasDefault != a.IsDefault {
			a.UpdatedAt = now
		}
	}
	return ledger.UpdateResult{Success: true, Account: s.accounts[idx], PreviousDefaultID: prev}, nil
}

type accountRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Balance   string `json:"balance"`
	IsDefault bool   `json:"isDefault"`
}

type transactionRecord struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"accountId"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
}

func readAccounts(path string) ([]core.Account, error) {
	var recs []accountRecord
	if err := readJSON(path, &recs); err != nil {
		return nil, err
	}
	out := make([]core.Account, 0, len(recs))
	for i, r := range recs {
		t, err := core.ParseAccountType(r.Type)
		if err != nil {
			slog.Warn("Unknown account type in seed", "index", i, "type", r.Type)
		}
		a := core.Account{ID: r.ID, Name: r.Name, Type: t, Balance: r.Balance, IsDefault: r.IsDefault}
		if a.ID == "" {
			a.ID = core.NewID()
		}
		if err := a.Validate(); err != nil && !errors.Is(err, core.ErrInvalidAccountType) {
			return nil, fmt.Errorf("account %d: %w", i, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func readTransactions(path string) ([]core.Transaction, error) {
	var recs []transactionRecord
	if err := readJSON(path, &recs); err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(recs))
	for i, r := range recs {
		typ, _ := core.ParseTransactionType(r.Type)
		t := core.Transaction{
			ID:          r.ID,
			AccountID:   r.AccountID,
			Amount:      r.Amount,
			Type:        typ,
			Category:    r.Category,
			Description: r.Description,
			Date:        r.Date,
		}
		if t.ID == "" {
			t.ID = core.NewID()
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
