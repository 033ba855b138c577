package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"welth/internal/core"
	"welth/internal/dashboard"
	applog "welth/internal/log"
)

// overviewView is the template data of the overview partial.
type overviewView struct {
	dashboard.Overview
	MonthLabel     string
	SlicesJSON     string
	EmptyRecent    string
	EmptyBreakdown string
}

type dashboardPage struct {
	Cards    []dashboard.AccountCard
	Overview overviewView
}

type accountPage struct {
	Card dashboard.AccountCard
	Rows []dashboard.RecentRow
}

func (s *Server) clock() time.Time {
	return s.now().In(s.loc)
}

func (s *Server) newOverviewView(data ledgerData, requested string) overviewView {
	now := s.clock()
	ov := dashboard.NewOverview(data.Accounts, data.Transactions, requested, now)

	slices := ov.Slices
	if slices == nil {
		slices = []dashboard.PieSlice{}
	}
	raw, _ := json.Marshal(slices)

	return overviewView{
		Overview:       ov,
		MonthLabel:     now.Format("January 2006"),
		SlicesJSON:     string(raw),
		EmptyRecent:    dashboard.EmptyRecentText,
		EmptyBreakdown: dashboard.EmptyBreakdownText,
	}
}

// handleDashboard renders the main dashboard page
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	data, err := s.loadLedger(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load dashboard data", applog.FieldError, err, applog.FieldOperation, applog.OpList)
		InternalServerError("Failed to load dashboard").Write(w)
		return
	}

	page := dashboardPage{
		Cards:    dashboard.NewAccountCards(data.Accounts),
		Overview: s.newOverviewView(data, accountParam(r)),
	}
	body, err := s.render("dashboard_page", page)
	if err != nil {
		s.appMetrics.renderFailures.Add(1)
		logger.ErrorContext(ctx, "Dashboard template execution failed", applog.FieldError, err, applog.FieldOperation, applog.OpRender)
		InternalServerError("Failed to render dashboard").Write(w)
		return
	}
	writeHTML(w, http.StatusOK, body)
}

// handleAccountsPartial returns the account cards grid
func (s *Server) handleAccountsPartial(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	bctx, cancel := context.WithTimeout(ctx, s.backendTimeout)
	defer cancel()

	accounts, err := s.ledger.ListAccounts(bctx)
	if err != nil {
		s.appMetrics.renderFailures.Add(1)
		logger.ErrorContext(ctx, "Failed to list accounts", applog.FieldError, err, applog.FieldOperation, applog.OpList)
		writeHTML(w, http.StatusOK, placeholder("accounts", "Error loading accounts"))
		return
	}

	body, err := s.render("account_cards", dashboardPage{Cards: dashboard.NewAccountCards(accounts)})
	if err != nil {
		s.appMetrics.renderFailures.Add(1)
		logger.ErrorContext(ctx, "Account cards template failed", applog.FieldError, err)
		writeHTML(w, http.StatusOK, placeholder("accounts", "Error rendering accounts"))
		return
	}
	writeHTML(w, http.StatusOK, body)
}

// handleOverviewPartial re-renders the overview for the selected account
func (s *Server) handleOverviewPartial(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)
	requested := accountParam(r)

	data, err := s.loadLedger(ctx)
	if err != nil {
		s.appMetrics.renderFailures.Add(1)
		logger.ErrorContext(ctx, "Failed to load overview data", applog.FieldError, err, applog.FieldAccountID, requested)
		writeHTML(w, http.StatusOK, placeholder("overview", "Error loading overview"))
		return
	}

	body, err := s.render("overview", s.newOverviewView(data, requested))
	if err != nil {
		s.appMetrics.renderFailures.Add(1)
		logger.ErrorContext(ctx, "Overview template failed", applog.FieldError, err)
		writeHTML(w, http.StatusOK, placeholder("overview", "Error rendering overview"))
		return
	}
	writeHTML(w, http.StatusOK, body)
}

// handleToggleDefault makes the account the default one and returns its
// refreshed card. The outcome is reported as a toast through HX-Trigger.
func (s *Server) handleToggleDefault(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)
	id := sanitizeInput(r.PathValue("id"))

	bctx, cancel := context.WithTimeout(ctx, s.backendTimeout)
	defer cancel()

	account, err := s.ledger.GetAccount(bctx, id)
	if errors.Is(err, core.ErrAccountNotFound) {
		s.accountNotFound(w)
		return
	}
	if err != nil {
		s.appMetrics.toggleFailures.Add(1)
		logger.ErrorContext(ctx, "Failed to read account", applog.FieldError, err, applog.FieldAccountID, id)
		NewHTMXResponse().
			Status(http.StatusServiceUnavailable).
			TriggerErrorNotification(dashboard.MsgDefaultFailed).
			Write(w)
		return
	}

	outcome := s.toggler.Toggle(bctx, account)
	switch {
	case !outcome.Requested:
		s.appMetrics.toggleRefused.Add(1)
	case outcome.Err != nil:
		s.appMetrics.toggles.Add(1)
		s.appMetrics.toggleFailures.Add(1)
		if errors.Is(outcome.Err, core.ErrAccountNotFound) {
			s.accountNotFound(w)
			return
		}
		logger.ErrorContext(ctx, "Default account update failed",
			applog.FieldError, outcome.Err,
			applog.FieldAccountID, id,
			applog.FieldOperation, applog.OpToggle)
	default:
		s.appMetrics.toggles.Add(1)
	}

	card := account
	if outcome.Result.Success {
		card = outcome.Result.Account
	}

	resp := NewHTMXResponse().TriggerToast(outcome.Notification)
	if outcome.Result.Success {
		resp.TriggerAccountsRefresh(card.ID)
	}

	body, err := s.render("account_card", dashboard.NewAccountCard(card))
	if err != nil {
		s.appMetrics.renderFailures.Add(1)
		logger.ErrorContext(ctx, "Account card template failed", applog.FieldError, err, applog.FieldAccountID, id)
		resp.Header("HX-Reswap", "none")
	} else {
		resp.BodyHTML(body)
	}
	resp.Write(w)

	s.events.LogDefaultToggled(ctx, id, outcome.Result.PreviousDefaultID, string(outcome.Notification.Type))
}

func (s *Server) accountNotFound(w http.ResponseWriter) {
	NewHTMXResponse().
		Status(http.StatusNotFound).
		TriggerErrorNotification(core.ErrAccountNotFound.Error()).
		Write(w)
}

// handleAccountPage renders the card link target: the card plus every
// transaction of the account, newest first.
func (s *Server) handleAccountPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)
	id := sanitizeInput(r.PathValue("id"))

	data, err := s.loadLedger(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load account page", applog.FieldError, err, applog.FieldAccountID, id)
		InternalServerError("Failed to load account").Write(w)
		return
	}

	var account *core.Account
	for i := range data.Accounts {
		if data.Accounts[i].ID == id {
			account = &data.Accounts[i]
			break
		}
	}
	if account == nil {
		NotFoundError(core.ErrAccountNotFound.Error()).Write(w)
		return
	}

	page := accountPage{Card: dashboard.NewAccountCard(*account)}
	for _, t := range dashboard.RecentTransactions(data.Transactions, id, -1) {
		page.Rows = append(page.Rows, dashboard.NewRecentRow(t, s.loc))
	}

	body, err := s.render("account_page", page)
	if err != nil {
		s.appMetrics.renderFailures.Add(1)
		logger.ErrorContext(ctx, "Account page template failed", applog.FieldError, err, applog.FieldAccountID, id)
		InternalServerError("Failed to render account").Write(w)
		return
	}
	writeHTML(w, http.StatusOK, body)
}

type overviewJSON struct {
	SelectedAccountID string               `json:"selectedAccountId"`
	MonthLabel        string               `json:"month"`
	Accounts          []accountOptionJSON  `json:"accounts"`
	Recent            []recentJSON         `json:"recent"`
	Slices            []dashboard.PieSlice `json:"slices"`
}

type accountOptionJSON struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

type recentJSON struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	IsExpense   bool   `json:"isExpense"`
}

// handleOverviewJSON serves the overview for scripts and the chart.
func (s *Server) handleOverviewJSON(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, err := s.loadLedger(ctx)
	if err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Failed to load overview data", applog.FieldError, err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "failed to load overview"})
		return
	}

	view := s.newOverviewView(data, accountParam(r))
	resp := overviewJSON{
		SelectedAccountID: view.SelectedAccountID,
		MonthLabel:        view.MonthLabel,
		Accounts:          make([]accountOptionJSON, 0, len(view.Options)),
		Recent:            make([]recentJSON, 0, len(view.Recent)),
		Slices:            make([]dashboard.PieSlice, 0, len(view.Slices)),
	}
	for _, o := range view.Options {
		resp.Accounts = append(resp.Accounts, accountOptionJSON(o))
	}
	for _, row := range view.Recent {
		resp.Recent = append(resp.Recent, recentJSON(row))
	}
	resp.Slices = append(resp.Slices, view.Slices...)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
