package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"welth/internal/core"
	"welth/internal/ledger"

	_ "modernc.org/sqlite"
)

// timeLayout keeps stored timestamps lexicographically sortable.
const timeLayout = "2006-01-02T15:04:05.000Z"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

// Ensure interface conformance
var (
	_ ledger.AccountReader         = (*SQLiteRepository)(nil)
	_ ledger.TransactionLister     = (*SQLiteRepository)(nil)
	_ ledger.DefaultAccountUpdater = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer; serialize access through one connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.queries.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	out := make([]core.Account, 0, len(rows))
	for _, row := range rows {
		out = append(out, toCoreAccount(row))
	}
	return out, nil
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, id string) (core.Account, error) {
	row, err := r.queries.GetAccount(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, core.ErrAccountNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account %s: %w", id, err)
	}
	return toCoreAccount(row), nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := toCoreTransaction(row)
		if err != nil {
			slog.WarnContext(ctx, "Skipping unreadable transaction", "id", row.ID, "error", err)
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// UpdateDefaultAccount clears every default flag and sets the one of id in a
// single transaction.
func (r *SQLiteRepository) UpdateDefaultAccount(ctx context.Context, id string) (ledger.UpdateResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return ledger.UpdateResult{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if _, err := q.GetAccount(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.UpdateResult{}, core.ErrAccountNotFound
		}
		return ledger.UpdateResult{}, fmt.Errorf("get account %s: %w", id, err)
	}

	prev, err := q.GetDefaultAccountID(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return ledger.UpdateResult{}, fmt.Errorf("get default account: %w", err)
	}
	if prev == id {
		prev = ""
	}

	now := formatTime(time.Now())
	if err := q.ClearDefaultAccounts(ctx, ClearDefaultAccountsParams{UpdatedAt: now, KeepID: id}); err != nil {
		return ledger.UpdateResult{}, fmt.Errorf("clear default accounts: %w", err)
	}
	if err := q.SetDefaultAccount(ctx, SetDefaultAccountParams{UpdatedAt: now, ID: id}); err != nil {
		return ledger.UpdateResult{}, fmt.Errorf("set default account: %w", err)
	}

	row, err := q.GetAccount(ctx, id)
	if err != nil {
		return ledger.UpdateResult{}, fmt.Errorf("reload account %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return ledger.UpdateResult{}, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Default account updated",
		"account_id", id,
		"previous_default_id", prev)

	return ledger.UpdateResult{Success: true, Account: toCoreAccount(row), PreviousDefaultID: prev}, nil
}

// CreateAccount stores a validated account, generating its id when empty.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	if a.ID == "" {
		a.ID = core.NewID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}
	var isDefault int64
	if a.IsDefault {
		isDefault = 1
	}
	err := r.queries.CreateAccount(ctx, CreateAccountParams{
		ID:        a.ID,
		Name:      a.Name,
		Type:      string(a.Type),
		Balance:   a.Balance,
		IsDefault: isDefault,
		CreatedAt: formatTime(a.CreatedAt),
		UpdatedAt: formatTime(a.UpdatedAt),
	})
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	return a, nil
}

// CreateTransaction stores a validated transaction, generating its id when empty.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if t.ID == "" {
		t.ID = core.NewID()
	}
	err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Amount:      t.Amount.String(),
		Type:        string(t.Type),
		Category:    t.Category,
		Description: t.Description,
		OccurredAt:  formatTime(t.Date),
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return t, nil
}

// SeedIfEmpty inserts accounts and txs when the accounts table is empty.
// It reports whether anything was inserted.
func (r *SQLiteRepository) SeedIfEmpty(ctx context.Context, accounts []core.Account, txs []core.Transaction) (bool, error) {
	n, err := r.queries.CountAccounts(ctx)
	if err != nil {
		return false, fmt.Errorf("count accounts: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	seeder := &SQLiteRepository{db: r.db, queries: r.queries.WithTx(tx)}
	for _, a := range accounts {
		if _, err := seeder.CreateAccount(ctx, a); err != nil {
			return false, fmt.Errorf("seed account %s: %w", a.Name, err)
		}
	}
	for _, t := range txs {
		if _, err := seeder.CreateTransaction(ctx, t); err != nil {
			return false, fmt.Errorf("seed transaction %s: %w", t.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Seeded SQLite database",
		"accounts", len(accounts),
		"transactions", len(txs))
	return true, nil
}

func toCoreAccount(row Account) core.Account {
	return core.Account{
		ID:        row.ID,
		Name:      row.Name,
		Type:      core.AccountType(row.Type),
		Balance:   row.Balance,
		IsDefault: row.IsDefault == 1,
		CreatedAt: parseTime(row.CreatedAt),
		UpdatedAt: parseTime(row.UpdatedAt),
	}
}

func toCoreTransaction(row Transaction) (core.Transaction, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount %q: %w", row.Amount, err)
	}
	date, err := time.Parse(time.RFC3339Nano, row.OccurredAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date %q: %w", row.OccurredAt, err)
	}
	return core.Transaction{
		ID:          row.ID,
		AccountID:   row.AccountID,
		Amount:      amount,
		Type:        core.TransactionType(row.Type),
		Category:    row.Category,
		Description: row.Description,
		Date:        date,
	}, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
