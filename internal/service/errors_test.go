package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKindMatching(t *testing.T) {
	err := notFoundf("recipe %q not found", "x")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestErrorMatchesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", conflictf("duplicate review"))
	assert.ErrorIs(t, wrapped, ErrConflict)
	assert.Equal(t, KindConflict, KindOf(wrapped))
}

func TestUnavailableCarriesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := unavailable("failed to fetch", cause)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}
