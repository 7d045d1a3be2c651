package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsKinds(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    error
		notKind error
	}{
		{"validation", Validation("op", "bad %s", "input"), ErrValidation, ErrNotFound},
		{"not found", NotFound("op", "missing"), ErrNotFound, ErrDuplicate},
		{"duplicate participant", DuplicateParticipant("op", "u1", 7), ErrDuplicate, ErrInvalidState},
		{"tag taken", TagTaken("op", 3, "u2"), ErrDuplicate, ErrValidation},
		{"empty identifier", EmptyIdentifier("op"), ErrValidation, ErrDuplicate},
		{"authorization", Authorization("op", "nope"), ErrAuthorization, ErrValidation},
		{"already finalized matches invalid state", AlreadyFinalized("op"), ErrInvalidState, ErrNotFound},
		{"already finalized matches itself", AlreadyFinalized("op"), ErrAlreadyFinalized, ErrDuplicate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.kind))
			assert.False(t, errors.Is(tt.err, tt.notKind))
		})
	}
}

func TestPersistence(t *testing.T) {
	cause := errors.New("connection reset")

	err := Persistence("GetRound", cause)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPersistence))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "internal storage error", Message(err))

	domain := NotFound("GetRound", "round 1 not found")
	passed := Persistence("outer", fmt.Errorf("wrapped: %w", domain))
	assert.True(t, errors.Is(passed, ErrNotFound))
	assert.False(t, errors.Is(passed, ErrPersistence))
	assert.NoError(t, Persistence("op", nil))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Round has already been finalized", Message(AlreadyFinalized("FinalizeRound")))
	assert.Equal(t, "You can only join rounds that are upcoming",
		Message(InvalidState("JoinRound", "You can only join rounds that are upcoming")))
	assert.Equal(t, "internal error", Message(errors.New("boom")))
	assert.Equal(t, "JoinRound: missing", NotFound("JoinRound", "missing").Error())
}
