// internal/adapters/db/errors.go
package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
)

// Postgres SQLSTATE codes the repositories translate
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

const inventoryKeyConstraint = "uq_inventory_medicine_batch"

// errLockOutsideTx is returned by locking reads called without a transaction in ctx
var errLockOutsideTx = errors.New("row lock requested outside a transaction")

// pgError returns the *pgconn.PgError wrapped in err, if any
func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// translateError maps constraint violations to domain errors. Anything else
// is returned unchanged.
func translateError(err error) error {
	pgErr, ok := pgError(err)
	if !ok {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return &domain.ValidationError{Message: "duplicate value violates " + pgErr.ConstraintName}
	case pgForeignKeyViolation:
		return &domain.ValidationError{Message: "referenced row does not exist (" + pgErr.ConstraintName + ")"}
	case pgCheckViolation:
		return &domain.ValidationError{Message: "value violates " + pgErr.ConstraintName}
	}
	return err
}

func isUniqueViolation(err error, constraint string) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == pgUniqueViolation && (constraint == "" || pgErr.ConstraintName == constraint)
}

func isCheckViolation(err error) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == pgCheckViolation
}
