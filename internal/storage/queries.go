package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const listAccounts = `
SELECT id, name, type, balance, is_default, created_at, updated_at
FROM accounts
ORDER BY created_at, name
`

func (q *Queries) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := q.db.QueryContext(ctx, listAccounts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Account
	for rows.Next() {
		var i Account
		if err := rows.Scan(&i.ID, &i.Name, &i.Type, &i.Balance, &i.IsDefault, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getAccount = `
SELECT id, name, type, balance, is_default, created_at, updated_at
FROM accounts
WHERE id = ?
`

func (q *Queries) GetAccount(ctx context.Context, id string) (Account, error) {
	row := q.db.QueryRowContext(ctx, getAccount, id)
	var i Account
	err := row.Scan(&i.ID, &i.Name, &i.Type, &i.Balance, &i.IsDefault, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const getDefaultAccountID = `
SELECT id FROM accounts WHERE is_default = 1 LIMIT 1
`

func (q *Queries) GetDefaultAccountID(ctx context.Context) (string, error) {
	row := q.db.QueryRowContext(ctx, getDefaultAccountID)
	var id string
	err := row.Scan(&id)
	return id, err
}

const createAccount = `
INSERT INTO accounts (id, name, type, balance, is_default, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

type CreateAccountParams struct {
	ID        string
	Name      string
	Type      string
	Balance   string
	IsDefault int64
	CreatedAt string
	UpdatedAt string
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) error {
	_, err := q.db.ExecContext(ctx, createAccount,
		arg.ID, arg.Name, arg.Type, arg.Balance, arg.IsDefault, arg.CreatedAt, arg.UpdatedAt)
	return err
}

const clearDefaultAccounts = `
UPDATE accounts SET is_default = 0, updated_at = ?
WHERE is_default = 1 AND id <> ?
`

type ClearDefaultAccountsParams struct {
	UpdatedAt string
	KeepID    string
}

func (q *Queries) ClearDefaultAccounts(ctx context.Context, arg ClearDefaultAccountsParams) error {
	_, err := q.db.ExecContext(ctx, clearDefaultAccounts, arg.UpdatedAt, arg.KeepID)
	return err
}

const setDefaultAccount = `
UPDATE accounts SET is_default = 1, updated_at = ?
WHERE id = ? AND is_default = 0
`

type SetDefaultAccountParams struct {
	UpdatedAt string
	ID        string
}

func (q *Queries) SetDefaultAccount(ctx context.Context, arg SetDefaultAccountParams) error {
	_, err := q.db.ExecContext(ctx, setDefaultAccount, arg.UpdatedAt, arg.ID)
	return err
}

const countAccounts = `
SELECT COUNT(*) FROM accounts
`

func (q *Queries) CountAccounts(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countAccounts)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listTransactions = `
SELECT id, account_id, amount, type, category, description, occurred_at, created_at
FROM transactions
ORDER BY occurred_at DESC, created_at
`

func (q *Queries) ListTransactions(ctx context.Context) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(&i.ID, &i.AccountID, &i.Amount, &i.Type, &i.Category, &i.Description, &i.OccurredAt, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createTransaction = `
INSERT INTO transactions (id, account_id, amount, type, category, description, occurred_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

type CreateTransactionParams struct {
	ID          string
	AccountID   string
	Amount      string
	Type        string
	Category    string
	Description string
	OccurredAt  string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		arg.ID, arg.AccountID, arg.Amount, arg.Type, arg.Category, arg.Description, arg.OccurredAt)
	return err
}
