package dashboard

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"welth/internal/core"
	"welth/internal/ledger"
)

// NotificationType represents the type of toast shown to the user.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
)

// Toast messages of the default toggle.
const (
	MsgDefaultRequired = "At least one default account is required."
	MsgDefaultUpdated  = "Default account updated successfully"
	MsgDefaultFailed   = "Failed to update default account"
)

// Notification is a toast to display. The zero value means "show nothing".
type Notification struct {
	Type    NotificationType
	Message string
}

// Empty reports whether n carries no toast.
func (n Notification) Empty() bool {
	return n.Type == ""
}

// ToggleOutcome is the result of one toggle interaction.
type ToggleOutcome struct {
	Notification Notification
	// Requested is true when the updater was invoked (or joined).
	Requested bool
	Result    ledger.UpdateResult
	Err       error
}

// DefaultToggler handles the default switch of account cards.
//
// Toggles for the same account that overlap share a single updater call.
// The shared call outlives any one caller; each caller stops waiting when
// its own context ends.
type DefaultToggler struct {
	updater ledger.DefaultAccountUpdater
	group   singleflight.Group
}

// NewDefaultToggler wires the toggle to the given updater.
func NewDefaultToggler(u ledger.DefaultAccountUpdater) *DefaultToggler {
	return &DefaultToggler{updater: u}
}

// Toggle asks for account to become the default account.
//
// An account that is already default is refused locally with a warning and
// the updater is never called. Failures are terminal for the interaction.
func (t *DefaultToggler) Toggle(ctx context.Context, account core.Account) ToggleOutcome {
	if account.IsDefault {
		return ToggleOutcome{Notification: Notification{Type: NotificationWarning, Message: MsgDefaultRequired}}
	}

	ch := t.group.DoChan(account.ID, func() (any, error) {
		uctx, cancel := ledger.Detach(ctx)
		defer cancel()
		return t.updater.UpdateDefaultAccount(uctx, account.ID)
	})

	var r singleflight.Result
	select {
	case r = <-ch:
	case <-ctx.Done():
		r = singleflight.Result{Err: ctx.Err()}
	}
	if r.Shared {
		slog.DebugContext(ctx, "Joined in-flight default account update", "account_id", account.ID)
	}
	v, err := r.Val, r.Err

	out := ToggleOutcome{Requested: true, Err: err}
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = MsgDefaultFailed
		}
		out.Notification = Notification{Type: NotificationError, Message: msg}
		return out
	}

	res, _ := v.(ledger.UpdateResult)
	out.Result = res
	if res.Success {
		out.Notification = Notification{Type: NotificationSuccess, Message: MsgDefaultUpdated}
	}
	return out
}
