package postgres

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("failed to read embedded migrations: %v", err)
	}

	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}

	if ups == 0 || ups != downs {
		t.Fatalf("expected paired up/down migrations, got %d up and %d down", ups, downs)
	}
}

func TestAccountsMigrationHasBalanceConstraint(t *testing.T) {
	data, err := fs.ReadFile(migrationsFS, "migrations/000001_create_accounts.up.sql")
	if err != nil {
		t.Fatalf("failed to read migration: %v", err)
	}

	if !strings.Contains(string(data), "CHECK (balance >= 0)") {
		t.Fatalf("expected non-negative balance check in accounts migration")
	}
}

func TestRunMigrationsInvalidURL(t *testing.T) {
	if err := RunMigrations("not-a-url"); err == nil {
		t.Fatalf("expected error for invalid database URL")
	}
}
