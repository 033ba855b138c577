// Package dashboard derives the view models of the dashboard widgets:
// the account card with its default toggle and the transaction overview.
package dashboard

import (
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"welth/internal/core"
)

// AccountCard is the template-facing model of a single account card.
type AccountCard struct {
	ID        string
	Name      string
	Balance   string
	TypeLabel string
	IsDefault bool
	// ToggleLabel is the accessible name of the default switch.
	ToggleLabel string
	Href        string
}

// NewAccountCard builds the card model for a.
func NewAccountCard(a core.Account) AccountCard {
	return AccountCard{
		ID:          a.ID,
		Name:        a.Name,
		Balance:     FormatBalance(a.Balance),
		TypeLabel:   AccountTypeLabel(a.Type),
		IsDefault:   a.IsDefault,
		ToggleLabel: "Set " + a.Name + " as default account",
		Href:        "/account/" + a.ID,
	}
}

// NewAccountCards maps accounts to cards preserving order.
func NewAccountCards(accounts []core.Account) []AccountCard {
	cards := make([]AccountCard, 0, len(accounts))
	for _, a := range accounts {
		cards = append(cards, NewAccountCard(a))
	}
	return cards
}

// FormatBalance renders a raw balance as dollars with two decimals.
// Values without a numeric prefix render as "$0.00".
func FormatBalance(raw string) string {
	d, ok := core.ParseLeadingDecimal(raw)
	if !ok {
		return "$0.00"
	}
	return core.FormatDollars(d)
}

// AccountTypeLabel upper-cases the first character of t and lower-cases the rest.
func AccountTypeLabel(t core.AccountType) string {
	s := string(t)
	if s == "" {
		return ""
	}
	// Casers hold state and must not be shared between goroutines.
	_, size := utf8.DecodeRuneInString(s)
	return cases.Upper(language.English).String(s[:size]) + cases.Lower(language.English).String(s[size:])
}
