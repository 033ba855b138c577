package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"welth/internal/amqp"
	"welth/internal/core"
	"welth/internal/ledger"
)

// MirrorWorker copies the default account flag from the local store to the
// Google Sheets Accounts tab.
type MirrorWorker struct {
	source ledger.AccountReader
	mirror ledger.DefaultAccountUpdater
}

func NewMirrorWorker(source ledger.AccountReader, mirror ledger.DefaultAccountUpdater) *MirrorWorker {
	return &MirrorWorker{source: source, mirror: mirror}
}

// HandleDefaultChanged processes one account.default_changed message.
//
// Messages for accounts that are gone or no longer default are stale and
// acknowledged without touching the sheet.
func (w *MirrorWorker) HandleDefaultChanged(ctx context.Context, msg *amqp.DefaultChangedMessage) error {
	slog.InfoContext(ctx, "Processing default account change",
		"account_id", msg.AccountID,
		"previous_default_id", msg.PreviousDefaultID,
		"timestamp", msg.Timestamp)

	acc, err := w.source.GetAccount(ctx, msg.AccountID)
	if errors.Is(err, core.ErrAccountNotFound) {
		slog.WarnContext(ctx, "Account no longer exists, skipping", "account_id", msg.AccountID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get account from storage: %w", err)
	}
	if !acc.IsDefault {
		slog.InfoContext(ctx, "Stale default change, skipping", "account_id", msg.AccountID)
		return nil
	}
	return w.mirrorDefault(ctx, acc.ID)
}

// StartupSync mirrors the current default account once, covering changes
// published while the worker was down.
func (w *MirrorWorker) StartupSync(ctx context.Context) error {
	accounts, err := w.source.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}
	for _, a := range accounts {
		if a.IsDefault {
			return w.mirrorDefault(ctx, a.ID)
		}
	}
	slog.InfoContext(ctx, "No default account to mirror")
	return nil
}

func (w *MirrorWorker) mirrorDefault(ctx context.Context, id string) error {
	res, err := w.mirror.UpdateDefaultAccount(ctx, id)
	if errors.Is(err, core.ErrAccountNotFound) {
		// Requeueing cannot fix a sheet that lacks the row.
		slog.WarnContext(ctx, "Account missing from Google Sheets, skipping", "account_id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("mirror default account: %w", err)
	}
	slog.InfoContext(ctx, "Mirrored default account to Google Sheets",
		"account_id", id,
		"previous_default_id", res.PreviousDefaultID)
	return nil
}
