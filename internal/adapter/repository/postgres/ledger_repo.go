package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/banking/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return newLedgerRepositoryWithDB(pool)
}

func newLedgerRepositoryWithDB(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// TotalBalance returns the sum of all account balances.
func (r *LedgerRepository) TotalBalance(ctx context.Context) (decimal.Decimal, error) {
	total, err := r.queries.TotalBalance(ctx)
	if err != nil {
		return decimal.Zero, translateError("sum balances", err)
	}

	return numericToDecimal(total)
}
