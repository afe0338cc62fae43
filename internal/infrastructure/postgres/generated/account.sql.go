package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const addAccountBalance = `-- name: AddAccountBalance :execrows
UPDATE accounts SET balance = balance + $1 WHERE id = $2
`

type AddAccountBalanceParams struct {
	Delta pgtype.Numeric `json:"delta"`
	ID    int64          `json:"id"`
}

func (q *Queries) AddAccountBalance(ctx context.Context, arg AddAccountBalanceParams) (int64, error) {
	result, err := q.db.Exec(ctx, addAccountBalance, arg.Delta, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const createAccount = `-- name: CreateAccount :one
INSERT INTO accounts (id, balance)
VALUES ($1, $2)
RETURNING id, balance
`

type CreateAccountParams struct {
	ID      int64          `json:"id"`
	Balance pgtype.Numeric `json:"balance"`
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) (Account, error) {
	row := q.db.QueryRow(ctx, createAccount, arg.ID, arg.Balance)
	var i Account
	err := row.Scan(&i.ID, &i.Balance)
	return i, err
}

const getAccountBalance = `-- name: GetAccountBalance :one
SELECT balance FROM accounts WHERE id = $1
`

func (q *Queries) GetAccountBalance(ctx context.Context, id int64) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, getAccountBalance, id)
	var balance pgtype.Numeric
	err := row.Scan(&balance)
	return balance, err
}

const totalBalance = `-- name: TotalBalance :one
SELECT COALESCE(SUM(balance), 0)::NUMERIC AS total FROM accounts
`

func (q *Queries) TotalBalance(ctx context.Context) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, totalBalance)
	var total pgtype.Numeric
	err := row.Scan(&total)
	return total, err
}
