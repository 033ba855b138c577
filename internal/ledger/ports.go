package ledger

import (
	"context"

	"welth/internal/core"
)

// Ports for outbound adapters.
type (
	AccountReader interface {
		ListAccounts(ctx context.Context) ([]core.Account, error)
		// GetAccount returns core.ErrAccountNotFound for unknown ids.
		GetAccount(ctx context.Context, id string) (core.Account, error)
	}

	// TransactionLister returns every transaction visible to the dashboard.
	TransactionLister interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	// DefaultAccountUpdater marks one account as the default account.
	DefaultAccountUpdater interface {
		UpdateDefaultAccount(ctx context.Context, accountID string) (UpdateResult, error)
	}
)

// UpdateResult is the resolved value of a default-account update.
type UpdateResult struct {
	Success           bool
	Account           core.Account
	PreviousDefaultID string
}
