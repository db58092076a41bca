package helper

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateKey(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "idx_affiliate_referrals_payment_id"}
	assert.True(t, IsDuplicateKey(dup))
	assert.True(t, IsDuplicateKey(fmt.Errorf("create: %w", dup)))

	assert.False(t, IsDuplicateKey(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsDuplicateKey(errors.New("duplicate key value")))
	assert.False(t, IsDuplicateKey(nil))
}

func TestIsDuplicateNotification(t *testing.T) {
	assert.True(t, IsDuplicateNotification(&pgconn.PgError{
		Code: "23505", ConstraintName: "uidx_student_notifications_idem",
	}))
	assert.True(t, IsDuplicateNotification(&pgconn.PgError{
		Code: "23505", ConstraintName: "uidx_university_notifications_idem",
	}))
	assert.False(t, IsDuplicateNotification(&pgconn.PgError{
		Code: "23505", ConstraintName: "idx_affiliate_referrals_payment_id",
	}))
	assert.False(t, IsDuplicateNotification(errors.New("x")))
}
