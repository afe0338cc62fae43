package domain

import (
	"github.com/shopspring/decimal"
)

// Transfer is a request to move Amount from one account to another.
// It is never persisted.
type Transfer struct {
	FromAccountID int64
	ToAccountID   int64
	Amount        decimal.Decimal
}

// Leg is a signed balance change applied to a single account.
type Leg struct {
	AccountID int64
	Delta     decimal.Decimal
}

// Validate checks the transfer preconditions.
func (t *Transfer) Validate() error {
	if t.FromAccountID == t.ToAccountID {
		return ErrSameAccount
	}

	return ValidateAmount(t.Amount)
}

// Legs returns the debit and credit legs ordered by ascending account ID,
// so that concurrent transfers touching the same pair lock rows in the same order.
func (t *Transfer) Legs() []Leg {
	debit := Leg{AccountID: t.FromAccountID, Delta: t.Amount.Neg()}
	credit := Leg{AccountID: t.ToAccountID, Delta: t.Amount}

	if credit.AccountID < debit.AccountID {
		return []Leg{credit, debit}
	}

	return []Leg{debit, credit}
}
