package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
)

func TestTranslateError(t *testing.T) {
	plain := errors.New("connection reset by peer")

	tests := []struct {
		name          string
		err           error
		wantDomain    bool
		errorContains string
	}{
		{
			name:          "unique_violation",
			err:           &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "medicines_approval_number_key"},
			wantDomain:    true,
			errorContains: "medicines_approval_number_key",
		},
		{
			name:          "foreign_key_violation_wrapped",
			err:           fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "fk_sales_orders_customer"}),
			wantDomain:    true,
			errorContains: "referenced row does not exist",
		},
		{
			name:          "check_violation",
			err:           &pgconn.PgError{Code: pgCheckViolation, ConstraintName: "inventory_quantity_check"},
			wantDomain:    true,
			errorContains: "inventory_quantity_check",
		},
		{
			name: "other_pg_error_passes_through",
			err:  &pgconn.PgError{Code: "40P01"},
		},
		{
			name: "non_pg_error_passes_through",
			err:  plain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err)

			if tt.wantDomain {
				assert.ErrorIs(t, got, domain.ErrValidation)
				assert.Contains(t, got.Error(), tt.errorContains)
				return
			}
			assert.Same(t, tt.err, got)
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	keyErr := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: inventoryKeyConstraint}

	assert.True(t, isUniqueViolation(keyErr, inventoryKeyConstraint))
	assert.True(t, isUniqueViolation(fmt.Errorf("wrapped: %w", keyErr), ""))
	assert.False(t, isUniqueViolation(keyErr, "medicines_pkey"))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: pgCheckViolation}, ""))
	assert.False(t, isUniqueViolation(errors.New("boom"), ""))
}

func TestIsCheckViolation(t *testing.T) {
	assert.True(t, isCheckViolation(&pgconn.PgError{Code: pgCheckViolation}))
	assert.False(t, isCheckViolation(&pgconn.PgError{Code: pgUniqueViolation}))
	assert.False(t, isCheckViolation(nil))
}
