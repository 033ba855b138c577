package backend

import (
	"context"
	"fmt"

	"welth/internal/adapters"
	"welth/internal/amqp"
	lgoogle "welth/internal/ledger/google"
	"welth/internal/ledger/memory"
	applog "welth/internal/log"
	"welth/internal/services"
	"welth/internal/storage"
)

type opener func(ctx context.Context, logger *applog.Logger, cfg Config) (*Opened, error)

var openers = map[Kind]opener{
	KindSQLite: openSQLite,
	KindSheets: openSheets,
	KindMemory: openMemory,
}

// Open validates cfg and opens the store it selects.
func Open(ctx context.Context, logger *applog.Logger, cfg Config) (*Opened, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return openers[cfg.Kind](ctx, logger.WithComponent(applog.ComponentBackend), cfg)
}

func openSQLite(ctx context.Context, logger *applog.Logger, cfg Config) (*Opened, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite repository: %w", err)
	}

	seed := memory.NewFromFiles(cfg.dataDir())
	accounts, _ := seed.ListAccounts(ctx)
	txs, _ := seed.ListTransactions(ctx)
	if _, err := repo.SeedIfEmpty(ctx, accounts, txs); err != nil {
		repo.Close()
		return nil, fmt.Errorf("seed sqlite repository: %w", err)
	}

	service := services.NewAccountService(repo, dialPublisher(logger, cfg.AMQP))
	logger.Info("Initialized SQLite backend", "db_path", cfg.SQLitePath, "amqp_enabled", cfg.AMQP.URL != "")

	return &Opened{
		Store: adapters.NewSQLiteAdapter(repo, service),
		Close: service.Close,
		Ready: repo.Ping,
	}, nil
}

// dialPublisher returns nil, never a nil *amqp.Client, when publishing is off
// or the broker is unreachable.
func dialPublisher(logger *applog.Logger, opts AMQPOptions) services.Publisher {
	if opts.URL == "" {
		return nil
	}
	client, err := amqp.NewClient(opts.URL, opts.Exchange, opts.Queue)
	if err != nil {
		logger.Warn("AMQP unavailable, default changes will not be mirrored", applog.FieldError, err)
		return nil
	}
	logger.Info("Initialized AMQP client", "exchange", opts.Exchange, "queue", opts.Queue)
	return client
}

func openSheets(ctx context.Context, logger *applog.Logger, cfg Config) (*Opened, error) {
	opts := cfg.Sheets
	if opts.Location == nil {
		opts.Location = cfg.Location
	}
	cli, err := lgoogle.New(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open google sheets: %w", err)
	}
	logger.Info("Initialized Google Sheets backend", "spreadsheet_id", opts.SpreadsheetID)

	return &Opened{
		Store: cli,
		Ready: func(ctx context.Context) error {
			_, err := cli.ListAccounts(ctx)
			return err
		},
	}, nil
}

func openMemory(_ context.Context, logger *applog.Logger, cfg Config) (*Opened, error) {
	dir := cfg.dataDir()
	logger.Info("Initialized memory backend", "data_directory", dir)
	return &Opened{Store: memory.NewFromFiles(dir)}, nil
}
