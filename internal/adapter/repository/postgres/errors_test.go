package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/banking/internal/domain"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: pgx.ErrNoRows, want: domain.ErrAccountNotFound},
		{name: "balance check", err: checkViolation(), want: domain.ErrInsufficientFunds},
		{
			name: "other check constraint",
			err:  &pgconn.PgError{Code: pgErrCheckViolation, ConstraintName: "something_else"},
			want: domain.ErrStoreFailure,
		},
		{name: "deadlock", err: &pgconn.PgError{Code: "40P01"}, want: domain.ErrStoreFailure},
		{name: "wrapped balance check", err: fmt.Errorf("exec: %w", checkViolation()), want: domain.ErrInsufficientFunds},
		{name: "context canceled", err: context.Canceled, want: domain.ErrStoreFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError("op", tt.err)
			if !errors.Is(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}

	if translateError("op", nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}

func TestNumericConversionRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "0.01", "100.00", "-25.50", "99999999999999999.99"} {
		d := decimal.RequireFromString(s)

		got, err := numericToDecimal(decimalToNumeric(d))
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", s, err)
		}
		if !got.Equal(d) {
			t.Fatalf("expected %s, got %s", d, got)
		}
	}
}

func TestNumericToDecimalRejectsNaN(t *testing.T) {
	if _, err := numericToDecimal(pgtype.Numeric{NaN: true, Valid: true}); !errors.Is(err, domain.ErrStoreFailure) {
		t.Fatalf("expected store failure for NaN, got %v", err)
	}

	d, err := numericToDecimal(pgtype.Numeric{})
	if err != nil || !d.IsZero() {
		t.Fatalf("expected zero for NULL numeric, got %s (%v)", d, err)
	}
}
