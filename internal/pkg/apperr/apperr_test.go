package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs_MatchesByCode(t *testing.T) {
	err := fmt.Errorf("add item: %w", ErrProductNotFound)

	assert.True(t, errors.Is(err, ErrProductNotFound))
	assert.False(t, errors.Is(err, ErrLineItemNotFound))
	assert.Equal(t, KindProductNotFound, KindOf(err))
}

func TestIs_SpecificCodeDoesNotMatchGenericKind(t *testing.T) {
	generic := New(KindInvalidInput, "quantity must be at least 1")

	assert.False(t, errors.Is(generic, ErrInvalidID))
	assert.True(t, errors.Is(ErrInvalidID, New(KindInvalidInput, "x").WithCode("invalid_id")))
	assert.True(t, IsKind(ErrInvalidID, KindInvalidInput))
}

func TestStorage_WrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Storage(cause, "load cart")

	assert.Equal(t, KindStorageUnavailable, err.Kind)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load cart: connection refused", err.Error())
}

func TestKindOf_Unclassified(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, IsKind(nil, KindInternal))
}
