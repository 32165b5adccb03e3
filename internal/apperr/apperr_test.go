package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfUnwraps(t *testing.T) {
	err := Conflict("Insufficient available quantity")
	wrapped := fmt.Errorf("create reservation: %w", err)

	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindConflict))
	assert.False(t, IsKind(wrapped, KindNotFound))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestMessageFormatting(t *testing.T) {
	err := InvalidState("Cannot confirm reservation with status: %s", "CANCELLED")
	assert.EqualError(t, err, "Cannot confirm reservation with status: CANCELLED")
}
