package storage

// Account is a row of the accounts table.
type Account struct {
	ID        string
	Name      string
	Type      string
	Balance   string
	IsDefault int64
	CreatedAt string
	UpdatedAt string
}

// Transaction is a row of the transactions table.
type Transaction struct {
	ID          string
	AccountID   string
	Amount      string
	Type        string
	Category    string
	Description string
	OccurredAt  string
	CreatedAt   string
}
