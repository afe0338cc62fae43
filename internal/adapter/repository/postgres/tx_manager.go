package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/banking/internal/domain"
	"github.com/iho/banking/internal/usecase"
)

type pgxPool interface {
	BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error)
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	pool     pgxPool
	isoLevel pgx.TxIsoLevel
}

// NewTxManager creates a new TxManager using read committed isolation.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool, pgx.ReadCommitted)
}

// NewTxManagerWithIsolation creates a TxManager with the given isolation level name
// ("read committed", "repeatable read" or "serializable").
func NewTxManagerWithIsolation(pool *pgxpool.Pool, level string) (*TxManager, error) {
	iso, err := ParseIsolationLevel(level)
	if err != nil {
		return nil, err
	}

	return newTxManagerWithPool(pool, iso), nil
}

func newTxManagerWithPool(pool pgxPool, isoLevel pgx.TxIsoLevel) *TxManager {
	return &TxManager{pool: pool, isoLevel: isoLevel}
}

// ParseIsolationLevel maps a configuration value to a pgx isolation level.
// Levels weaker than read committed are rejected.
func ParseIsolationLevel(level string) (pgx.TxIsoLevel, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "read committed", "read_committed":
		return pgx.ReadCommitted, nil
	case "repeatable read", "repeatable_read":
		return pgx.RepeatableRead, nil
	case "serializable":
		return pgx.Serializable, nil
	default:
		return "", fmt.Errorf("unsupported isolation level %q", level)
	}
}

// Begin starts a new transaction. The connection returns to the pool on Commit or Rollback.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: m.isoLevel})
	if err != nil {
		return nil, domain.NewStoreError("begin transaction", err)
	}

	return &Tx{tx: tx}, nil
}

// Tx wraps a pgx transaction.
type Tx struct {
	tx   pgx.Tx
	done bool
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	t.done = true

	if err := t.tx.Commit(ctx); err != nil {
		return translateError("commit transaction", err)
	}

	return nil
}

// Rollback rolls back the transaction. It is a no-op once the transaction has finished.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}

	t.done = true

	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return domain.NewStoreError("rollback transaction", err)
	}

	return nil
}

func pgxTxFrom(tx usecase.Transaction) (pgx.Tx, error) {
	pgTx, ok := tx.(*Tx)
	if !ok || pgTx == nil {
		return nil, domain.NewStoreError("resolve transaction", fmt.Errorf("unexpected transaction type %T", tx))
	}

	if pgTx.done {
		return nil, domain.NewStoreError("resolve transaction", pgx.ErrTxClosed)
	}

	return pgTx.tx, nil
}
