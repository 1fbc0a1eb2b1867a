// AngelaMos | 2026
// database_test.go

package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPgErrorClassification(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "users_phone_key",
	})
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "users_region_id_fkey"}

	assert.True(t, IsDuplicateKeyError(dup))
	assert.False(t, IsForeignKeyError(dup))
	assert.Equal(t, "users_phone_key", ConstraintName(dup))

	assert.True(t, IsForeignKeyError(fk))
	assert.False(t, IsDuplicateKeyError(fk))

	plain := errors.New("boom")
	assert.False(t, IsDuplicateKeyError(plain))
	assert.Empty(t, ConstraintName(plain))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now\\`, EscapeLike(`50% off_now\`))
	assert.Equal(t, "Tashkent", EscapeLike("Tashkent"))
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("SuperAdmin")
	assert.NoError(t, err)
	assert.Equal(t, RoleSuperAdmin, role)
	assert.True(t, role.Privileged())
	assert.False(t, RoleSeller.Privileged())

	_, err = ParseRole("admin")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
