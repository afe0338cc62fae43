package postgres

import (
	"context"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/banking/internal/domain"
	"github.com/iho/banking/internal/infrastructure/postgres/generated"
	"github.com/iho/banking/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return newAccountRepositoryWithDB(pool)
}

func newAccountRepositoryWithDB(db generated.DBTX) *AccountRepository {
	return &AccountRepository{queries: generated.New(db)}
}

// GetBalance returns the balance of an account outside of any transaction.
func (r *AccountRepository) GetBalance(ctx context.Context, id int64) (decimal.Decimal, error) {
	n, err := r.queries.GetAccountBalance(ctx, id)
	if err != nil {
		return decimal.Zero, translateError("get balance", err)
	}

	return numericToDecimal(n)
}

// AddToBalance applies delta to the account balance inside tx.
func (r *AccountRepository) AddToBalance(ctx context.Context, tx usecase.Transaction, id int64, delta decimal.Decimal) error {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return err
	}

	rows, err := r.queries.WithTx(pgxTx).AddAccountBalance(ctx, generated.AddAccountBalanceParams{
		Delta: decimalToNumeric(delta),
		ID:    id,
	})
	if err != nil {
		return translateError("update balance", err)
	}

	if rows == 0 {
		return fmt.Errorf("%w: id %d", domain.ErrAccountNotFound, id)
	}

	return nil
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{
		Int:   d.Coefficient(),
		Exp:   d.Exponent(),
		Valid: true,
	}
}

func numericToDecimal(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid {
		return decimal.Zero, nil
	}

	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return decimal.Zero, domain.NewStoreError("decode numeric", fmt.Errorf("non-finite numeric value"))
	}

	coefficient := n.Int
	if coefficient == nil {
		coefficient = new(big.Int)
	}

	return decimal.NewFromBigInt(coefficient, n.Exp), nil
}
