// Package backend opens the ledger store selected by DATA_BACKEND.
package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"welth/internal/config"
	"welth/internal/ledger"
	lgoogle "welth/internal/ledger/google"
)

// Kind names a ledger store implementation.
type Kind string

const (
	KindSQLite Kind = "sqlite"
	KindSheets Kind = "sheets"
	KindMemory Kind = "memory"
)

// Kinds lists every supported kind.
func Kinds() []Kind {
	return []Kind{KindSQLite, KindSheets, KindMemory}
}

// ParseKind accepts a kind name in any case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown backend %q (want one of %v)", s, Kinds())
}

// AMQPOptions locates the broker that receives default-change messages.
// An empty URL disables publishing.
type AMQPOptions struct {
	URL      string
	Exchange string
	Queue    string
}

// Config selects and configures one store.
type Config struct {
	Kind Kind

	SQLitePath string
	AMQP       AMQPOptions

	Sheets lgoogle.Options

	// DataDir holds the JSON seed files of the memory store. An empty SQLite
	// database is seeded from the same files. Defaults to "data".
	DataDir string

	Location *time.Location
}

// FromAppConfig maps the application config onto a store config.
func FromAppConfig(cfg *config.Config) (Config, error) {
	if cfg == nil {
		return Config{}, errors.New("app config is nil")
	}
	kind, err := ParseKind(cfg.DataBackend)
	if err != nil {
		return Config{}, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return Config{}, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	return Config{
		Kind:       kind,
		SQLitePath: cfg.SQLiteDBPath,
		AMQP: AMQPOptions{
			URL:      cfg.AMQPURL,
			Exchange: cfg.AMQPExchange,
			Queue:    cfg.AMQPQueue,
		},
		Sheets: lgoogle.Options{
			SpreadsheetID:     cfg.GoogleSpreadsheetID,
			AccountsSheet:     cfg.GoogleAccountsSheetName,
			TransactionsSheet: cfg.GoogleTransactionsSheet,
			CredentialsJSON:   cfg.GoogleServiceAccountJSON,
			CredentialsFile:   cfg.GoogleServiceAccountFile,
			Location:          loc,
		},
		DataDir:  cfg.DataDir,
		Location: loc,
	}, nil
}

// Validate checks the fields the selected kind needs.
func (c Config) Validate() error {
	switch c.Kind {
	case KindSQLite:
		if c.SQLitePath == "" {
			return errors.New("sqlite backend: database path is required")
		}
	case KindSheets:
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("sheets backend: spreadsheet id is required")
		}
	case KindMemory:
	default:
		return fmt.Errorf("unknown backend %q", c.Kind)
	}
	return nil
}

func (c Config) dataDir() string {
	if c.DataDir == "" {
		return "data"
	}
	return c.DataDir
}

// Opened is a store ready to serve the dashboard.
type Opened struct {
	Store ledger.Store
	// Close releases the store's resources. Nil when there are none.
	Close func() error
	// Ready probes the store for /readyz. Nil means always ready.
	Ready func(ctx context.Context) error
}
