package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vet-clinic/internal/domain/apperr"
)

func TestMapErrorBySQLState(t *testing.T) {
	pet := writeTarget{entity: "pet", id: "p1", ref: "owner", refID: "o1"}

	tests := []struct {
		name    string
		err     error
		target  writeTarget
		kind    error
		message string
	}{
		{
			name:    "foreign key names the missing parent",
			err:     &pgconn.PgError{Code: codeForeignKey, ConstraintName: "pets_owner_id_fkey"},
			target:  pet,
			kind:    apperr.ErrReference,
			message: "owner o1 does not exist",
		},
		{
			name:    "duplicate primary key is a conflict on the row itself",
			err:     &pgconn.PgError{Code: codeUnique, ConstraintName: "pets_pkey"},
			target:  pet,
			kind:    apperr.ErrConflict,
			message: "pet p1 already exists",
		},
		{
			name:    "owner email index",
			err:     &pgconn.PgError{Code: codeUnique, ConstraintName: ownersEmailIndex},
			target:  writeTarget{entity: "owner", id: "o2"},
			kind:    apperr.ErrConflict,
			message: "owner email already in use",
		},
		{
			name:    "check constraint",
			err:     &pgconn.PgError{Code: codeCheck, ConstraintName: "appointments_status_check"},
			target:  writeTarget{entity: "appointment", id: "a1"},
			kind:    apperr.ErrValidation,
			message: "appointment a1 violates appointments_status_check",
		},
		{
			name:    "wrapped driver error",
			err:     fmt.Errorf("exec: %w", &pgconn.PgError{Code: codeUnique, ConstraintName: "appointments_pkey"}),
			target:  writeTarget{entity: "appointment", id: "a1", ref: "pet", refID: "p1"},
			kind:    apperr.ErrConflict,
			message: "appointment a1 already exists",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := mapError(tc.err, tc.target)
			require.ErrorIs(t, got, tc.kind)
			assert.Contains(t, got.Error(), tc.message)
		})
	}

	t.Run("conflict never reads as a missing reference", func(t *testing.T) {
		got := mapError(&pgconn.PgError{Code: codeUnique, ConstraintName: "pets_pkey"}, pet)
		assert.NotContains(t, got.Error(), "does not exist")
		assert.False(t, errors.Is(got, apperr.ErrReference))
	})

	t.Run("other errors pass through", func(t *testing.T) {
		plain := errors.New("connection reset")
		assert.Same(t, plain, mapError(plain, pet))

		deadlock := &pgconn.PgError{Code: "40P01"}
		assert.Equal(t, error(deadlock), mapError(deadlock, pet))
	})
}
