package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a ledger account that postings are booked against.
type Account struct {
	ID        string
	Name      string
	Balance   decimal.Decimal
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApplyDebit returns new balance after debit.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}

// ApplyCredit returns new balance after credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// Apply returns the balance after booking entry e.
func (a *Account) Apply(e PostingEntry) decimal.Decimal {
	if e.Side == SideDebit {
		return a.ApplyDebit(e.Amount)
	}
	return a.ApplyCredit(e.Amount)
}
