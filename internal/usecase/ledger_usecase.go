package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrLedgerImbalance is returned when the sum of all balances differs from the expected total.
	ErrLedgerImbalance = errors.New("ledger is imbalanced: total balance changed")
)

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo: ledgerRepo,
	}
}

// TotalBalance returns the sum of all account balances.
func (uc *LedgerUseCase) TotalBalance(ctx context.Context) (decimal.Decimal, error) {
	total, err := uc.ledgerRepo.TotalBalance(ctx)
	if err != nil {
		return decimal.Zero, asStoreFailure("sum balances", err)
	}

	return total, nil
}

// CheckConservation verifies that the total balance still equals expected.
// Transfers only move funds, so the total never changes after seeding.
func (uc *LedgerUseCase) CheckConservation(ctx context.Context, expected decimal.Decimal) error {
	total, err := uc.TotalBalance(ctx)
	if err != nil {
		return err
	}

	if !total.Equal(expected) {
		return fmt.Errorf("%w: expected %s, got %s", ErrLedgerImbalance, expected, total)
	}

	return nil
}
