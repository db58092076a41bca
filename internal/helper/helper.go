package helper

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// IsDuplicateKey reports whether err is a postgres unique-constraint
// violation. Services treat these as "row already exists", not failures.
func IsDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}

func IsDuplicateNotification(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName == "uidx_student_notifications_idem" ||
			pgErr.ConstraintName == "uidx_university_notifications_idem"
	}
	return false
}
