package dashboard

import (
	"testing"

	"welth/internal/core"
)

func TestFormatBalance(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"abc", "$0.00"},
		{"", "$0.00"},
		{"12.5", "$12.50"},
		{"12.5abc", "$12.50"},
		{"1000", "$1000.00"},
		{"-5", "$-5.00"},
		{"0.125", "$0.13"},
	}
	for _, tc := range cases {
		if got := FormatBalance(tc.in); got != tc.want {
			t.Fatalf("FormatBalance(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAccountTypeLabel(t *testing.T) {
	cases := map[core.AccountType]string{
		"savings":  "Savings",
		"SAVINGS":  "Savings",
		"CHECKING": "Checking",
		"cUrReNt":  "Current",
		"":         "",
	}
	for in, want := range cases {
		if got := AccountTypeLabel(in); got != want {
			t.Fatalf("AccountTypeLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewAccountCard(t *testing.T) {
	card := NewAccountCard(core.Account{
		ID:        "acc-1",
		Name:      "Main",
		Type:      core.Savings,
		Balance:   "250.4",
		IsDefault: true,
	})
	if card.Balance != "$250.40" {
		t.Fatalf("unexpected balance %q", card.Balance)
	}
	if card.TypeLabel != "Savings" {
		t.Fatalf("unexpected type label %q", card.TypeLabel)
	}
	if card.Href != "/account/acc-1" {
		t.Fatalf("unexpected href %q", card.Href)
	}
	if card.ToggleLabel != "Set Main as default account" {
		t.Fatalf("unexpected toggle label %q", card.ToggleLabel)
	}
	if !card.IsDefault {
		t.Fatalf("expected default card")
	}
}
