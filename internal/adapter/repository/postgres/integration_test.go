package postgres_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/banking/internal/adapter/repository/postgres"
	"github.com/iho/banking/internal/domain"
	"github.com/iho/banking/internal/testutil"
	"github.com/iho/banking/internal/usecase"
)

type ledgerFixture struct {
	db       *testutil.TestDB
	transfer *usecase.TransferUseCase
	ledger   *usecase.LedgerUseCase
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()

	db := testutil.NewTestDB(t)

	return &ledgerFixture{
		db: db,
		transfer: usecase.NewTransferUseCase(
			postgres.NewTxManager(db.Pool),
			postgres.NewAccountRepository(db.Pool),
			postgres.NewULIDGenerator(),
		),
		ledger: usecase.NewLedgerUseCase(postgres.NewLedgerRepository(db.Pool)),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (f *ledgerFixture) assertBalances(t *testing.T, want0, want1 string) {
	t.Helper()
	ctx := context.Background()

	assert.True(t, f.db.Balance(ctx, 0).Equal(dec(want0)), "account 0: got %s want %s", f.db.Balance(ctx, 0), want0)
	assert.True(t, f.db.Balance(ctx, 1).Equal(dec(want1)), "account 1: got %s want %s", f.db.Balance(ctx, 1), want1)
	require.NoError(t, f.ledger.CheckConservation(ctx, dec("100.00")))
}

func TestPostgresLedger(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	t.Run("balance of seeded account", func(t *testing.T) {
		f.db.Seed(ctx)

		balance, err := f.transfer.BalanceForAccount(ctx, 0)
		require.NoError(t, err)
		assert.True(t, balance.Equal(dec("100.00")))
	})

	t.Run("balance of missing account", func(t *testing.T) {
		f.db.Seed(ctx)

		_, err := f.transfer.BalanceForAccount(ctx, 3)
		assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	})

	t.Run("transfer commits", func(t *testing.T) {
		f.db.Seed(ctx)

		require.NoError(t, f.transfer.Transfer(ctx, usecase.TransferInput{FromAccountID: 0, ToAccountID: 1, Amount: dec("10.0")}))
		f.assertBalances(t, "90.00", "10.00")
	})

	t.Run("insufficient funds leaves balances untouched", func(t *testing.T) {
		f.db.Seed(ctx)

		err := f.transfer.Transfer(ctx, usecase.TransferInput{FromAccountID: 0, ToAccountID: 1, Amount: dec("150.00")})
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
		f.assertBalances(t, "100.00", "0.00")
	})

	t.Run("missing destination rolls back the debit", func(t *testing.T) {
		f.db.Seed(ctx)

		err := f.transfer.Transfer(ctx, usecase.TransferInput{FromAccountID: 0, ToAccountID: 2, Amount: dec("10.00")})
		assert.ErrorIs(t, err, domain.ErrAccountNotFound)
		f.assertBalances(t, "100.00", "0.00")
	})

	t.Run("missing source", func(t *testing.T) {
		f.db.Seed(ctx)

		err := f.transfer.Transfer(ctx, usecase.TransferInput{FromAccountID: 2, ToAccountID: 1, Amount: dec("10.00")})
		assert.ErrorIs(t, err, domain.ErrAccountNotFound)
		f.assertBalances(t, "100.00", "0.00")
	})

	t.Run("both accounts missing", func(t *testing.T) {
		f.db.Seed(ctx)

		err := f.transfer.Transfer(ctx, usecase.TransferInput{FromAccountID: 2, ToAccountID: 3, Amount: dec("10.00")})
		assert.ErrorIs(t, err, domain.ErrAccountNotFound)
		f.assertBalances(t, "100.00", "0.00")
	})

	t.Run("rejected preconditions touch no rows", func(t *testing.T) {
		f.db.Seed(ctx)

		err := f.transfer.Transfer(ctx, usecase.TransferInput{FromAccountID: 0, ToAccountID: 0, Amount: dec("10.00")})
		assert.ErrorIs(t, err, domain.ErrSameAccount)

		for _, amount := range []string{"0", "-10.00", "0.001"} {
			err := f.transfer.Transfer(ctx, usecase.TransferInput{FromAccountID: 0, ToAccountID: 1, Amount: dec(amount)})
			assert.ErrorIs(t, err, domain.ErrInvalidAmount, "amount %s", amount)
		}

		f.assertBalances(t, "100.00", "0.00")
	})

	t.Run("repeated transfer is applied twice", func(t *testing.T) {
		f.db.Seed(ctx)

		in := usecase.TransferInput{FromAccountID: 0, ToAccountID: 1, Amount: dec("10.00")}
		require.NoError(t, f.transfer.Transfer(ctx, in))
		require.NoError(t, f.transfer.Transfer(ctx, in))
		f.assertBalances(t, "80.00", "20.00")
	})

	t.Run("draining the account then overdrawing", func(t *testing.T) {
		f.db.Seed(ctx)

		require.NoError(t, f.transfer.Transfer(ctx, usecase.TransferInput{FromAccountID: 0, ToAccountID: 1, Amount: dec("100.00")}))
		err := f.transfer.Transfer(ctx, usecase.TransferInput{FromAccountID: 0, ToAccountID: 1, Amount: dec("0.01")})
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
		f.assertBalances(t, "0.00", "100.00")
	})

	t.Run("concurrent opposite transfers conserve funds", func(t *testing.T) {
		f.db.Seed(ctx)
		require.NoError(t, f.transfer.Transfer(ctx, usecase.TransferInput{FromAccountID: 0, ToAccountID: 1, Amount: dec("50.00")}))

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				in := usecase.TransferInput{FromAccountID: 0, ToAccountID: 1, Amount: dec("3.00")}
				if i%2 == 1 {
					in.FromAccountID, in.ToAccountID = 1, 0
				}
				err := f.transfer.Transfer(ctx, in)
				if err != nil {
					assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
				}
			}(i)
		}
		wg.Wait()

		require.NoError(t, f.ledger.CheckConservation(ctx, dec("100.00")))
		assert.False(t, f.db.Balance(ctx, 0).IsNegative())
		assert.False(t, f.db.Balance(ctx, 1).IsNegative())
	})
}
