package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	Current  AccountType = "CURRENT"
	Checking AccountType = "CHECKING"
	Savings  AccountType = "SAVINGS"

	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

type (
	AccountType     string
	TransactionType string

	Account struct {
		ID   string
		Name string
		Type AccountType
		// Balance is kept as received from the data layer; it may not parse.
		Balance   string
		IsDefault bool
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	Transaction struct {
		ID          string
		AccountID   string
		Amount      decimal.Decimal
		Type        TransactionType
		Category    string
		Description string // optional
		Date        time.Time
	}
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmptyAccountName   = errors.New("empty account name")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidTransaction = errors.New("invalid transaction type")
	ErrEmptyCategory      = errors.New("empty category")
	ErrEmptyAccountID     = errors.New("empty account id")
	ErrZeroDate           = errors.New("date cannot be zero")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
)

// NewID returns a fresh identifier for accounts and transactions.
func NewID() string {
	return uuid.NewString()
}

// ParseAccountType normalizes s to an upper-case AccountType.
// Unknown values are returned upper-cased together with ErrInvalidAccountType.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return t, ErrInvalidAccountType
	}
	return t, nil
}

func (t AccountType) IsValid() bool {
	switch t {
	case Current, Checking, Savings:
		return true
	default:
		return false
	}
}

// ParseTransactionType normalizes s to INCOME or EXPENSE.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case Income, Expense:
		return t, nil
	default:
		return t, ErrInvalidTransaction
	}
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyAccountName
	}
	if !a.Type.IsValid() {
		return ErrInvalidAccountType
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.AccountID) == "" {
		return ErrEmptyAccountID
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if t.Type != Income && t.Type != Expense {
		return ErrInvalidTransaction
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// IsExpense reports whether t is an EXPENSE transaction.
func (t Transaction) IsExpense() bool {
	return t.Type == Expense
}
