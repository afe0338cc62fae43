// Package testutil provides PostgreSQL fixtures for integration tests.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/banking/internal/infrastructure/postgres"
	"github.com/iho/banking/internal/infrastructure/postgres/generated"
)

// DatabaseURLEnv names the variable that enables integration tests.
const DatabaseURLEnv = "TEST_DATABASE_URL"

// TestDB provides isolated test database connections.
type TestDB struct {
	Pool    *pgxpool.Pool
	Queries *generated.Queries
	t       *testing.T
}

// NewTestDB migrates the database named by TEST_DATABASE_URL and connects to it.
// The test is skipped when the variable is unset or -short is given.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dbURL := os.Getenv(DatabaseURLEnv)
	if dbURL == "" {
		t.Skipf("%s not set", DatabaseURLEnv)
	}

	if err := postgres.RunMigrations(dbURL); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, dbURL, 10, 0)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	db := &TestDB{
		Pool:    pool,
		Queries: generated.New(pool),
		t:       t,
	}
	t.Cleanup(db.Cleanup)

	return db
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes all accounts.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	if _, err := db.Pool.Exec(ctx, `TRUNCATE TABLE accounts`); err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// CreateAccount inserts an account with the given balance.
func (db *TestDB) CreateAccount(ctx context.Context, id int64, balance string) {
	db.t.Helper()

	var numeric pgtype.Numeric
	if err := numeric.Scan(decimal.RequireFromString(balance).String()); err != nil {
		db.t.Fatalf("invalid balance %q: %v", balance, err)
	}

	if _, err := db.Queries.CreateAccount(ctx, generated.CreateAccountParams{ID: id, Balance: numeric}); err != nil {
		db.t.Fatalf("failed to create account %d: %v", id, err)
	}
}

// Seed resets the accounts table to the standard fixture:
// account 0 holds 100.00, account 1 holds 0.00, accounts 2 and 3 do not exist.
func (db *TestDB) Seed(ctx context.Context) {
	db.t.Helper()

	db.TruncateAll(ctx)
	db.CreateAccount(ctx, 0, "100.00")
	db.CreateAccount(ctx, 1, "0.00")
}

// Balance reads an account balance directly, bypassing the code under test.
func (db *TestDB) Balance(ctx context.Context, id int64) decimal.Decimal {
	db.t.Helper()

	var raw string
	if err := db.Pool.QueryRow(ctx, `SELECT balance::TEXT FROM accounts WHERE id = $1`, id).Scan(&raw); err != nil {
		db.t.Fatalf("failed to read balance of %d: %v", id, err)
	}

	balance, err := decimal.NewFromString(raw)
	if err != nil {
		db.t.Fatalf("failed to parse balance %q: %v", raw, err)
	}

	return balance
}
