package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// AccountRepository defines data access for account balances.
type AccountRepository interface {
	// GetBalance returns domain.ErrAccountNotFound when no account has the given id.
	GetBalance(ctx context.Context, id int64) (decimal.Decimal, error)
	// AddToBalance applies a signed delta inside tx. It returns
	// domain.ErrAccountNotFound when no row matches and domain.ErrInsufficientFunds
	// when the result would violate the non-negative balance constraint.
	AddToBalance(ctx context.Context, tx Transaction, id int64, delta decimal.Decimal) error
}

// LedgerRepository defines data access for ledger-wide reads.
type LedgerRepository interface {
	TotalBalance(ctx context.Context) (decimal.Decimal, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// BalanceCache caches account balances between reads.
type BalanceCache interface {
	// Get returns ok=false on a miss.
	Get(ctx context.Context, accountID int64) (balance decimal.Decimal, ok bool, err error)
	Set(ctx context.Context, accountID int64, balance decimal.Decimal) error
	Invalidate(ctx context.Context, accountIDs ...int64) error
}

// MetricsRecorder receives operation outcomes.
type MetricsRecorder interface {
	ObserveTransfer(outcome string, amount decimal.Decimal, duration time.Duration)
	ObserveBalanceLookup(source, outcome string)
}
