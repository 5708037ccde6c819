package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMatchesSentinelByKind(t *testing.T) {
	err := Conflict("room %s is already booked", "101")

	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "[CONFLICT] room 101 is already booked", err.Error())
}

func TestAppErrorSurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("create booking: %w", NotFound("room", 7))

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, "room 7 not found", GetAppError(wrapped).Message)
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Nil(t, GetAppError(errors.New("boom")))
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := New(KindConflict, "race lost", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestSentinelWithMessageMatchesExactly(t *testing.T) {
	assert.True(t, errors.Is(ErrUnauthorized, ErrUnauthorized))
	assert.False(t, errors.Is(New(KindUnauthorized, "token expired", nil), ErrUnauthorized))
}
