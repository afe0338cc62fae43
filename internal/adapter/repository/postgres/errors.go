package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/banking/internal/domain"
)

// PostgreSQL error codes and constraint names the adapter translates.
const (
	pgErrCheckViolation = "23514"

	balanceConstraint = "accounts_balance_non_negative"
)

// translateError maps driver errors onto the domain error taxonomy.
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrAccountNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrCheckViolation && pgErr.ConstraintName == balanceConstraint {
		return fmt.Errorf("%w: %s", domain.ErrInsufficientFunds, pgErr.Message)
	}

	return domain.NewStoreError(op, err)
}
