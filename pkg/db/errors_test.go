package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil, ""))
	assert.True(t, IsUniqueViolation(errors.New(`duplicate key value violates unique constraint "idx_users_email"`), ""))
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: users.email"), ""))
	assert.True(t, IsUniqueViolation(errors.New(`duplicate key value violates unique constraint "idx_users_email"`), "idx_users_email"))
	assert.False(t, IsUniqueViolation(errors.New("connection refused"), ""))
	assert.False(t, IsUniqueViolation(errors.New(`duplicate key value violates unique constraint "other"`), "idx_users_email"))
}
