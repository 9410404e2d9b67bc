package common

import (
	"errors"

	"github.com/lib/pq"
)

// UniqueViolation reports whether err is a unique constraint failure on the named constraint.
func UniqueViolation(err error, constraint string) bool {
	return constraintViolation(err, "unique_violation", constraint)
}

// ForeignKeyViolation reports whether err is a foreign key failure on the named constraint.
func ForeignKeyViolation(err error, constraint string) bool {
	return constraintViolation(err, "foreign_key_violation", constraint)
}

func constraintViolation(err error, condition, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	return pqErr.Code.Name() == condition && pqErr.Constraint == constraint
}
