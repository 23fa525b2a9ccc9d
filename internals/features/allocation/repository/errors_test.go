package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"exam_allocation_backend/internals/features/allocation/engine"
)

func TestIsRetryable(t *testing.T) {
	serialization := &pgconn.PgError{Code: "40001", Message: "could not serialize access due to concurrent update"}
	deadlock := &pgconn.PgError{Code: "40P01", Message: "deadlock detected"}
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "uq_invigilations_subject_slot"}

	assert.True(t, IsRetryable(serialization))
	assert.True(t, IsRetryable(deadlock))
	assert.True(t, IsRetryable(fmt.Errorf("tx: %w", serialization)))
	// the engine wraps store failures; the cause must stay visible
	assert.True(t, IsRetryable(&engine.StorageError{Op: "create room allocation", Err: deadlock}))

	assert.False(t, IsRetryable(unique))
	assert.False(t, IsRetryable(errors.New("40001")))
	assert.False(t, IsRetryable(nil))
}

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "idx_exams_exam_code"}

	assert.True(t, IsUniqueViolation(unique))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.Equal(t, "idx_exams_exam_code", UniqueConstraint(fmt.Errorf("create: %w", unique)))

	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "40001"}))
	assert.Empty(t, UniqueConstraint(errors.New("boom")))
}
