package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"welth/internal/core"
	"welth/internal/ledger"
)

// Options configures the Sheets backend.
type Options struct {
	SpreadsheetID     string
	AccountsSheet     string
	TransactionsSheet string
	// CredentialsJSON takes precedence over CredentialsFile.
	CredentialsJSON string
	CredentialsFile string
	// Location is used for dates without an explicit zone. Defaults to UTC.
	Location *time.Location
}

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	accountsSheet     string
	transactionsSheet string
	loc               *time.Location
}

// Ensure interface conformance
var (
	_ ledger.AccountReader         = (*Client)(nil)
	_ ledger.TransactionLister     = (*Client)(nil)
	_ ledger.DefaultAccountUpdater = (*Client)(nil)
)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, opts), nil
}

// NewWithService wraps an already configured Sheets service.
func NewWithService(svc *gsheet.Service, opts Options) *Client {
	accounts := strings.TrimSpace(opts.AccountsSheet)
	if accounts == "" {
		accounts = "Accounts"
	}
	txs := strings.TrimSpace(opts.TransactionsSheet)
	if txs == "" {
		txs = "Transactions"
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Client{
		svc:               svc,
		spreadsheetID:     strings.TrimSpace(opts.SpreadsheetID),
		accountsSheet:     accounts,
		transactionsSheet: txs,
		loc:               loc,
	}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Falls back to GOOGLE_APPLICATION_CREDENTIALS when no credentials are configured.
func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	credsJSON := strings.TrimSpace(opts.CredentialsJSON)
	credsFile := strings.TrimSpace(opts.CredentialsFile)
	if credsJSON == "" && credsFile == "" {
		credsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var raw []byte
	switch {
	case credsJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		raw = []byte(credsJSON)
	case credsFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", credsFile)
		b, err := os.ReadFile(credsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		raw = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(raw),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

func (c *Client) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := c.readRange(ctx, c.accountsSheet+"!A:E")
	if err != nil {
		return nil, err
	}
	return parseAccounts(ctx, rows), nil
}

func (c *Client) GetAccount(ctx context.Context, id string) (core.Account, error) {
	accounts, err := c.ListAccounts(ctx)
	if err != nil {
		return core.Account{}, err
	}
	for _, a := range accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return core.Account{}, core.ErrAccountNotFound
}

func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := c.readRange(ctx, c.transactionsSheet+"!A:G")
	if err != nil {
		return nil, err
	}
	return parseTransactions(ctx, rows, c.loc), nil
}

// UpdateDefaultAccount rewrites the Default column so that only id is flagged.
func (c *Client) UpdateDefaultAccount(ctx context.Context, id string) (ledger.UpdateResult, error) {
	rows, err := c.readRange(ctx, c.accountsSheet+"!A:E")
	if err != nil {
		return ledger.UpdateResult{}, err
	}
	first, flags, res, err := defaultColumn(rows, id)
	if err != nil {
		return ledger.UpdateResult{}, err
	}

	values := make([][]any, len(flags))
	for i, f := range flags {
		values[i] = []any{f}
	}
	rng := fmt.Sprintf("%s!E%d:E%d", c.accountsSheet, first, first+len(flags)-1)
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return ledger.UpdateResult{}, fmt.Errorf("update %s: %w", rng, err)
	}

	slog.InfoContext(ctx, "Default account updated in sheet",
		"account_id", id,
		"previous_default_id", res.PreviousDefaultID,
		"range", rng)
	return res, nil
}

func (c *Client) readRange(ctx context.Context, rng string) ([][]any, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}
