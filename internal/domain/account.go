package domain

import (
	"github.com/shopspring/decimal"
)

// Account is a ledger account holding a balance. Accounts are seeded
// outside this module and only ever change through transfers.
type Account struct {
	ID      int64
	Balance decimal.Decimal
}

// ApplyDelta returns the balance after adding delta.
func (a *Account) ApplyDelta(delta decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(delta)
}

// CanApply reports whether adding delta keeps the balance non-negative.
func (a *Account) CanApply(delta decimal.Decimal) bool {
	return !a.ApplyDelta(delta).IsNegative()
}
