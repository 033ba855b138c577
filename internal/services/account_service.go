package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"welth/internal/amqp"
	"welth/internal/ledger"
)

// Publisher announces default account changes.
type Publisher interface {
	PublishDefaultChanged(ctx context.Context, msg *amqp.DefaultChangedMessage) error
}

// AccountStore is the local source of truth for accounts.
type AccountStore interface {
	ledger.DefaultAccountUpdater
	Close() error
}

// AccountService orchestrates default account updates across SQLite and AMQP
type AccountService struct {
	storage   AccountStore
	publisher Publisher
}

// NewAccountService wires storage and an optional publisher. A nil publisher
// disables change notifications.
func NewAccountService(storage AccountStore, publisher Publisher) *AccountService {
	return &AccountService{storage: storage, publisher: publisher}
}

// UpdateDefaultAccount saves the new default locally and publishes a change
// message. Publish failures are logged and do not fail the update.
func (s *AccountService) UpdateDefaultAccount(ctx context.Context, id string) (ledger.UpdateResult, error) {
	res, err := s.storage.UpdateDefaultAccount(ctx, id)
	if err != nil {
		return ledger.UpdateResult{}, fmt.Errorf("update default account: %w", err)
	}
	if !res.Success {
		return res, nil
	}

	if err := s.publish(ctx, res); err != nil {
		slog.ErrorContext(ctx, "Failed to publish default account change",
			"account_id", id,
			"error", err)
	}
	return res, nil
}

func (s *AccountService) publish(ctx context.Context, res ledger.UpdateResult) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping change message")
		return nil
	}
	return s.publisher.PublishDefaultChanged(ctx, amqp.NewDefaultChangedMessage(res.Account.ID, res.PreviousDefaultID))
}

// Close closes both storage and AMQP connections
func (s *AccountService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(interface{ Close() error }); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close account service: %w", err)
	}
	return nil
}
