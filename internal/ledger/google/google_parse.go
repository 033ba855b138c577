package google

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"welth/internal/core"
	"welth/internal/ledger"
)

// Column order of the Accounts tab: ID, Name, Type, Balance, Default.
const (
	colAccID = iota
	colAccName
	colAccType
	colAccBalance
	colAccDefault
)

// Column order of the Transactions tab:
// ID, AccountID, Date, Type, Category, Amount, Description.
const (
	colTxID = iota
	colTxAccount
	colTxDate
	colTxType
	colTxCategory
	colTxAmount
	colTxDescription
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

func parseAccounts(ctx context.Context, values [][]any) []core.Account {
	var out []core.Account
	for i, row := range dataRows(values) {
		cols := toStrings(row)
		id := safeGet(cols, colAccID)
		if id == "" {
			continue
		}
		t, err := core.ParseAccountType(safeGet(cols, colAccType))
		if err != nil {
			slog.WarnContext(ctx, "Unknown account type in sheet", "row", i+2, "type", t)
		}
		out = append(out, core.Account{
			ID:        id,
			Name:      safeGet(cols, colAccName),
			Type:      t,
			Balance:   safeGet(cols, colAccBalance),
			IsDefault: parseBool(safeGet(cols, colAccDefault)),
		})
	}
	return out
}

func parseTransactions(ctx context.Context, values [][]any, loc *time.Location) []core.Transaction {
	var out []core.Transaction
	for i, row := range dataRows(values) {
		cols := toStrings(row)
		t, err := parseTransaction(cols, loc)
		if err != nil {
			// Listing is best-effort: one bad row must not hide the others.
			slog.WarnContext(ctx, "Skipping transaction row", "row", i+2, "error", err)
			continue
		}
		out = append(out, t)
	}
	return out
}

func parseTransaction(cols []string, loc *time.Location) (core.Transaction, error) {
	date, err := parseDate(safeGet(cols, colTxDate), loc)
	if err != nil {
		return core.Transaction{}, err
	}
	typ, err := core.ParseTransactionType(safeGet(cols, colTxType))
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseAmount(safeGet(cols, colTxAmount))
	if err != nil {
		return core.Transaction{}, err
	}
	t := core.Transaction{
		ID:          safeGet(cols, colTxID),
		AccountID:   safeGet(cols, colTxAccount),
		Amount:      amount,
		Type:        typ,
		Category:    safeGet(cols, colTxCategory),
		Description: safeGet(cols, colTxDescription),
		Date:        date,
	}
	if t.ID == "" {
		t.ID = core.NewID()
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// defaultColumn computes the new Default column for the data rows of values.
// first is the 1-based sheet row of the first data row.
func defaultColumn(values [][]any, id string) (first int, flags []bool, res ledger.UpdateResult, err error) {
	first = 1
	if hasHeader(values) {
		first = 2
	}
	rows := dataRows(values)
	idx := -1
	flags = make([]bool, len(rows))
	for i, row := range rows {
		cols := toStrings(row)
		if safeGet(cols, colAccID) == id && idx < 0 {
			idx = i
			flags[i] = true
			continue
		}
		if parseBool(safeGet(cols, colAccDefault)) {
			res.PreviousDefaultID = safeGet(cols, colAccID)
		}
	}
	if idx < 0 {
		return 0, nil, ledger.UpdateResult{}, core.ErrAccountNotFound
	}
	acc := parseAccounts(context.Background(), [][]any{rows[idx]})
	if len(acc) == 1 {
		res.Account = acc[0]
	}
	res.Account.IsDefault = true
	res.Success = true
	return first, flags, res, nil
}

func dataRows(values [][]any) [][]any {
	if hasHeader(values) {
		return values[1:]
	}
	return values
}

func hasHeader(values [][]any) bool {
	if len(values) == 0 || len(values[0]) == 0 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(fmt.Sprint(values[0][0])), "id")
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "x":
		return true
	default:
		return false
	}
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
