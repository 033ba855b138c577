package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"welth/internal/core"
)

// ledgerData is one consistent read of the dashboard inputs.
type ledgerData struct {
	Accounts     []core.Account
	Transactions []core.Transaction
}

// loadLedger reads accounts and transactions concurrently under the backend timeout.
func (s *Server) loadLedger(ctx context.Context) (ledgerData, error) {
	ctx, cancel := context.WithTimeout(ctx, s.backendTimeout)
	defer cancel()

	var data ledgerData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		accounts, err := s.ledger.ListAccounts(gctx)
		if err != nil {
			return fmt.Errorf("list accounts: %w", err)
		}
		data.Accounts = accounts
		return nil
	})
	g.Go(func() error {
		txs, err := s.ledger.ListTransactions(gctx)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		data.Transactions = txs
		return nil
	})
	if err := g.Wait(); err != nil {
		return ledgerData{}, err
	}
	return data, nil
}

// render executes a named template into a buffer so that a failing
// template never leaves a half-written response.
func (s *Server) render(name string, data any) ([]byte, error) {
	if s.templates == nil {
		return nil, fmt.Errorf("templates not loaded")
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// placeholder renders the fallback markup of a partial that failed to load.
func placeholder(id, message string) []byte {
	return []byte(`<section id="` + id + `" class="panel"><div class="placeholder">` + message + `</div></section>`)
}

// accountParam reads the selector value from the query string.
func accountParam(r *http.Request) string {
	return sanitizeInput(r.URL.Query().Get("account"))
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
