package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"

	"github.com/iho/banking/internal/domain"
)

func TestLedgerRepository_TotalBalance(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery(`SELECT COALESCE\(SUM\(balance\), 0\)`).
		WillReturnRows(pgxmock.NewRows([]string{"total"}).AddRow(numeric("100.00")))

	total, err := newLedgerRepositoryWithDB(mockPool).TotalBalance(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !total.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected 100, got %s", total)
	}

	assertExpectations(t, mockPool)
}

func TestLedgerRepository_TotalBalanceError(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery(`SELECT COALESCE\(SUM\(balance\), 0\)`).
		WillReturnError(errors.New("relation \"accounts\" does not exist"))

	_, err := newLedgerRepositoryWithDB(mockPool).TotalBalance(context.Background())
	if !errors.Is(err, domain.ErrStoreFailure) {
		t.Fatalf("expected store failure, got %v", err)
	}
}
