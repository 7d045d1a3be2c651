// Package dbutil holds helpers shared by the bun repositories.
package dbutil

import (
	"database/sql"
	"errors"

	"github.com/uptrace/bun/driver/pgdriver"
)

const (
	sqlStateUniqueViolation = "23505"
	sqlStateSerialization   = "40001"
)

// IsUniqueViolation reports whether err is a Postgres unique_violation.
func IsUniqueViolation(err error) bool {
	return sqlState(err) == sqlStateUniqueViolation
}

// IsSerializationFailure reports whether err is a Postgres serialization_failure.
func IsSerializationFailure(err error) bool {
	return sqlState(err) == sqlStateSerialization
}

// ConstraintName returns the violated constraint, if the driver reported one.
func ConstraintName(err error) string {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('n')
	}
	return ""
}

// IsNoRows reports whether err is sql.ErrNoRows.
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func sqlState(err error) string {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C')
	}
	return ""
}
