package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	wrapped := fmt.Errorf("repo: %w", NotFound("pet", "p1"))

	assert.Equal(t, ErrNotFound, Kind(wrapped))
	assert.Equal(t, ErrReference, Kind(Reference("owner", "o1")))
	assert.Equal(t, ErrValidation, Kind(Validation("name is required")))
	assert.Equal(t, ErrConflict, Kind(Conflict("email %s already in use", "a@x.com")))
	assert.Equal(t, ErrInvalidTransition, Kind(fmt.Errorf("%w: completed -> cancelled", ErrInvalidTransition)))
	assert.Nil(t, Kind(errors.New("boom")))
}

func TestMessages(t *testing.T) {
	assert.EqualError(t, NotFound("pet", "p1"), "not found: pet p1")
	assert.EqualError(t, Reference("owner", "o1"), "reference error: owner o1 does not exist")
}
