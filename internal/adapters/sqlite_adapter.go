package adapters

import (
	"context"

	"welth/internal/core"
	"welth/internal/ledger"
	"welth/internal/services"
	"welth/internal/storage"
)

// SQLiteAdapter reads from the SQLite repository and routes default
// updates through AccountService so that changes are published.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.AccountService
}

var _ ledger.Store = (*SQLiteAdapter)(nil)

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.AccountService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

func (a *SQLiteAdapter) ListAccounts(ctx context.Context) ([]core.Account, error) {
	return a.storage.ListAccounts(ctx)
}

func (a *SQLiteAdapter) GetAccount(ctx context.Context, id string) (core.Account, error) {
	return a.storage.GetAccount(ctx, id)
}

func (a *SQLiteAdapter) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return a.storage.ListTransactions(ctx)
}

func (a *SQLiteAdapter) UpdateDefaultAccount(ctx context.Context, id string) (ledger.UpdateResult, error) {
	return a.service.UpdateDefaultAccount(ctx, id)
}
