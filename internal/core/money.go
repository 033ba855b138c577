// Package core provides money parsing and handling utilities.
//
// This file contains the lenient number parsing used for display and the
// strict decimal parsing used when amounts are written.
package core

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// leadingNumber matches the numeric prefix a browser's parseFloat would accept.
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseLeadingDecimal parses the longest numeric prefix of s.
//
// Leading whitespace is ignored and trailing garbage is dropped, so
// "12.5abc" yields 12.5. It reports false when s has no numeric prefix.
//
// Examples:
//
//	ParseLeadingDecimal("12.5")   -> 12.5, true
//	ParseLeadingDecimal(" 7 USD") -> 7, true
//	ParseLeadingDecimal("abc")    -> 0, false
func ParseLeadingDecimal(s string) (decimal.Decimal, bool) {
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseAmount converts a decimal string to a positive amount.
//
// Both dot (12.34) and comma (12,34) separators are accepted. Zero,
// negative and malformed values return ErrInvalidAmount.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatDollars renders d as "$" followed by the value rounded to cents.
// The sign, if any, follows the dollar symbol ("$-5.00").
func FormatDollars(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
