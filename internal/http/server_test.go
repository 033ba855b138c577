package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"welth/internal/core"
	"welth/internal/dashboard"
	"welth/internal/ledger"
	"welth/internal/ledger/memory"
	applog "welth/internal/log"
)

var testNow = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func testAccounts() []core.Account {
	return []core.Account{
		{ID: "a", Name: "Checking", Type: core.Checking, Balance: "100.5", IsDefault: true},
		{ID: "b", Name: "Savings", Type: core.Savings, Balance: "abc"},
	}
}

func testTransactions() []core.Transaction {
	tx := func(id, account string, typ core.TransactionType, category, amount, desc string, day int) core.Transaction {
		return core.Transaction{
			ID:          id,
			AccountID:   account,
			Type:        typ,
			Category:    category,
			Amount:      decimal.RequireFromString(amount),
			Description: desc,
			Date:        time.Date(2025, time.March, day, 9, 0, 0, 0, time.UTC),
		}
	}
	return []core.Transaction{
		tx("t1", "a", core.Expense, "Food", "10", "Lunch", 1),
		tx("t2", "a", core.Expense, "Food", "20", "Dinner", 2),
		tx("t3", "a", core.Expense, "food", "5", "Snack", 3),
		tx("t4", "a", core.Income, "Salary", "1000", "Pay", 4),
		tx("t5", "b", core.Income, "Interest", "7", "", 5),
	}
}

// failingStore fails every default update with err.
type failingStore struct {
	ledger.Store
	err   error
	calls atomic.Int64
}

func (f *failingStore) UpdateDefaultAccount(ctx context.Context, id string) (ledger.UpdateResult, error) {
	f.calls.Add(1)
	return ledger.UpdateResult{}, f.err
}

// brokenStore fails every read.
type brokenStore struct{ ledger.Store }

func (brokenStore) ListAccounts(context.Context) ([]core.Account, error) {
	return nil, errors.New("backend down")
}

func (brokenStore) ListTransactions(context.Context) ([]core.Transaction, error) {
	return nil, errors.New("backend down")
}

func newTestServer(t *testing.T, store ledger.Store, ready func(context.Context) error) *Server {
	t.Helper()
	srv := NewServer(Options{
		Addr:               ":0",
		Store:              store,
		Ready:              ready,
		Logger:             applog.New(applog.Config{Output: &bytes.Buffer{}}),
		Location:           time.UTC,
		RateLimitPerMinute: 100,
		Now:                func() time.Time { return testNow },
	})
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv
}

func do(srv *Server, method, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func toast(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	header := rr.Header().Get("HX-Trigger")
	if header == "" {
		return nil
	}
	var triggers map[string]map[string]any
	if err := json.Unmarshal([]byte(header), &triggers); err != nil {
		t.Fatalf("invalid HX-Trigger %q: %v", header, err)
	}
	return triggers[EventShowNotification]
}

func TestDashboardAndHealth(t *testing.T) {
	srv := newTestServer(t, memory.New(testAccounts(), testTransactions()), nil)

	rr := do(srv, http.MethodGet, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard status=%d body=%s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	for _, want := range []string{
		"Checking", "$100.50", "Savings", "$0.00", "Savings Account",
		`aria-label="Set Checking as default account"`,
		`href="/account/a"`,
		"Lunch", "Food: $30.00", "food: $5.00",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
	if rr.Header().Get("Content-Security-Policy") == "" {
		t.Error("security headers missing")
	}

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		rr := do(srv, http.MethodGet, path)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}

	rr = do(srv, http.MethodGet, "/static/app.js")
	if rr.Code != http.StatusOK {
		t.Errorf("static asset status=%d", rr.Code)
	}
	// Unswapped toggles must snap the switch back to its rendered state.
	for _, want := range []string{"htmx:afterRequest", "el.defaultChecked", `"HX-Reswap"`} {
		if !strings.Contains(rr.Body.String(), want) {
			t.Errorf("app.js missing %q", want)
		}
	}
	if rr := do(srv, http.MethodGet, "/nope"); rr.Code != http.StatusNotFound {
		t.Errorf("unknown path status=%d", rr.Code)
	}
}

func TestOverviewPartialSwitchesAccount(t *testing.T) {
	srv := newTestServer(t, memory.New(testAccounts(), testTransactions()), nil)

	rr := do(srv, http.MethodGet, "/ui/overview?account=b")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	body := rr.Body.String()
	if strings.Contains(body, "Lunch") {
		t.Error("overview for b must not list a's transactions")
	}
	if !strings.Contains(body, "Untitled Transaction") {
		t.Error("missing description fallback")
	}
	if !strings.Contains(body, dashboard.EmptyBreakdownText) {
		t.Error("b has no expenses this month")
	}
	if !strings.Contains(body, `<option value="b" selected>`) {
		t.Errorf("selector should mark b as selected: %s", body)
	}
}

func TestOverviewJSON(t *testing.T) {
	srv := newTestServer(t, memory.New(testAccounts(), testTransactions()), nil)

	rr := do(srv, http.MethodGet, "/api/overview?account=unknown")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	var got overviewJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.SelectedAccountID != "a" {
		t.Errorf("unknown account should fall back to the default, got %q", got.SelectedAccountID)
	}
	if len(got.Recent) != 4 || got.Recent[0].ID != "t4" {
		t.Errorf("unexpected recent rows %+v", got.Recent)
	}
	if len(got.Slices) != 2 || got.Slices[0].Name != "Food" || got.Slices[0].Value != 30 {
		t.Errorf("unexpected slices %+v", got.Slices)
	}
	if got.MonthLabel != "March 2025" {
		t.Errorf("month = %q", got.MonthLabel)
	}
}

func TestToggleDefault(t *testing.T) {
	t.Run("already default is refused locally", func(t *testing.T) {
		store := &failingStore{Store: memory.New(testAccounts(), nil), err: errors.New("must not be called")}
		srv := newTestServer(t, store, nil)

		rr := do(srv, http.MethodPost, "/accounts/a/default")
		if rr.Code != http.StatusOK {
			t.Fatalf("status=%d", rr.Code)
		}
		n := toast(t, rr)
		if n["type"] != "warning" || n["message"] != dashboard.MsgDefaultRequired {
			t.Errorf("unexpected toast %v", n)
		}
		if store.calls.Load() != 0 {
			t.Errorf("updater called %d times", store.calls.Load())
		}
		if !strings.Contains(rr.Body.String(), "checked") {
			t.Error("card should re-render as default")
		}
	})

	t.Run("success refreshes the grid", func(t *testing.T) {
		srv := newTestServer(t, memory.New(testAccounts(), nil), nil)

		// Warm the cache so the update has something to invalidate.
		do(srv, http.MethodGet, "/ui/accounts")

		rr := do(srv, http.MethodPost, "/accounts/b/default")
		if rr.Code != http.StatusOK {
			t.Fatalf("status=%d", rr.Code)
		}
		n := toast(t, rr)
		if n["type"] != "success" || n["message"] != dashboard.MsgDefaultUpdated {
			t.Errorf("unexpected toast %v", n)
		}
		if !strings.Contains(rr.Header().Get("HX-Trigger"), EventAccountsRefresh) {
			t.Error("missing accounts:refresh trigger")
		}

		grid := do(srv, http.MethodGet, "/api/overview").Body.String()
		if !strings.Contains(grid, `"selectedAccountId":"b"`) {
			t.Errorf("b should now be the default selection: %s", grid)
		}
	})

	t.Run("remote failure shows the error", func(t *testing.T) {
		store := &failingStore{Store: memory.New(testAccounts(), nil), err: errors.New("sheet is read-only")}
		srv := newTestServer(t, store, nil)

		rr := do(srv, http.MethodPost, "/accounts/b/default")
		if rr.Code != http.StatusOK {
			t.Fatalf("status=%d", rr.Code)
		}
		n := toast(t, rr)
		if n["type"] != "error" || n["message"] != "sheet is read-only" {
			t.Errorf("unexpected toast %v", n)
		}
		if store.calls.Load() != 1 {
			t.Errorf("updater called %d times, want 1", store.calls.Load())
		}
		if strings.Contains(rr.Header().Get("HX-Trigger"), EventAccountsRefresh) {
			t.Error("failed update must not refresh the grid")
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		srv := newTestServer(t, memory.New(testAccounts(), nil), nil)

		rr := do(srv, http.MethodPost, "/accounts/zzz/default")
		if rr.Code != http.StatusNotFound {
			t.Fatalf("status=%d", rr.Code)
		}
		if n := toast(t, rr); n["message"] != "account not found" {
			t.Errorf("unexpected toast %v", n)
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		srv := newTestServer(t, memory.New(testAccounts(), nil), nil)
		if rr := do(srv, http.MethodGet, "/accounts/a/default"); rr.Code != http.StatusMethodNotAllowed {
			t.Fatalf("status=%d", rr.Code)
		}
	})
}

func TestToggleRateLimited(t *testing.T) {
	srv := NewServer(Options{
		Store:              memory.New(testAccounts(), nil),
		Logger:             applog.New(applog.Config{Output: &bytes.Buffer{}}),
		RateLimitPerMinute: 1,
	})
	defer srv.Shutdown(context.Background())

	do(srv, http.MethodPost, "/accounts/a/default")
	rr := do(srv, http.MethodPost, "/accounts/a/default")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status=%d", rr.Code)
	}
	if n := toast(t, rr); n["type"] != "error" {
		t.Errorf("expected error toast, got %v", n)
	}
}

func TestAccountPage(t *testing.T) {
	srv := newTestServer(t, memory.New(testAccounts(), testTransactions()), nil)

	rr := do(srv, http.MethodGet, "/account/a")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"Lunch", "Dinner", "Snack", "Pay", "Mar 4, 2025"} {
		if !strings.Contains(body, want) {
			t.Errorf("account page missing %q", want)
		}
	}

	if rr := do(srv, http.MethodGet, "/account/zzz"); rr.Code != http.StatusNotFound {
		t.Errorf("unknown account status=%d", rr.Code)
	}
}

func TestBackendFailures(t *testing.T) {
	srv := newTestServer(t, brokenStore{Store: memory.New(nil, nil)}, func(context.Context) error {
		return errors.New("backend down")
	})

	if rr := do(srv, http.MethodGet, "/readyz"); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz status=%d", rr.Code)
	}
	rr := do(srv, http.MethodGet, "/ui/overview")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Error loading overview") {
		t.Errorf("overview should render a placeholder, got %d %s", rr.Code, rr.Body.String())
	}
	if rr := do(srv, http.MethodGet, "/"); rr.Code != http.StatusInternalServerError {
		t.Errorf("dashboard status=%d", rr.Code)
	}
}

func TestEmptyDashboard(t *testing.T) {
	srv := newTestServer(t, memory.New(nil, nil), nil)

	rr := do(srv, http.MethodGet, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, dashboard.EmptyRecentText) || !strings.Contains(body, dashboard.EmptyBreakdownText) {
		t.Error("expected both empty states")
	}
}
