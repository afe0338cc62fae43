package mocks

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/banking/internal/domain"
)

func TestMemoryStoreAddToBalance(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(map[int64]decimal.Decimal{
		0: decimal.RequireFromString("100.00"),
		1: decimal.Zero,
	})

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	if err := store.AddToBalance(ctx, tx, 0, decimal.RequireFromString("-60.00")); err != nil {
		t.Fatalf("first debit failed: %v", err)
	}

	// The second debit is checked against the staged balance, not the committed one.
	if err := store.AddToBalance(ctx, tx, 0, decimal.RequireFromString("-40.01")); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	if err := store.AddToBalance(ctx, tx, 0, decimal.RequireFromString("-40.00")); err != nil {
		t.Fatalf("debit to zero failed: %v", err)
	}

	if err := store.AddToBalance(ctx, tx, 2, decimal.NewFromInt(1)); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected account not found, got %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	balance, err := store.GetBalance(ctx, 0)
	if err != nil || !balance.IsZero() {
		t.Fatalf("expected zero balance after commit, got %s (%v)", balance, err)
	}
}

func TestMemoryStoreRollbackDiscardsStagedDeltas(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(map[int64]decimal.Decimal{0: decimal.NewFromInt(100)})

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	if err := store.AddToBalance(ctx, tx, 0, decimal.NewFromInt(-10)); err != nil {
		t.Fatalf("debit failed: %v", err)
	}

	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("rollback failed: %v", err)
	}

	balance, _ := store.GetBalance(ctx, 0)
	if !balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected 100 after rollback, got %s", balance)
	}
}
