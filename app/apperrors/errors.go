// Package apperrors defines the error taxonomy shared by every module.
//
// Services return *Error values; callers branch with errors.Is against the
// sentinel kinds (ErrValidation, ErrNotFound, ...) and read Message for the
// human readable text.
package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel kinds.
var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrInvalidState     = errors.New("invalid state")
	ErrDuplicate        = errors.New("duplicate")
	ErrAuthorization    = errors.New("not authorized")
	ErrAlreadyFinalized = errors.New("already finalized")
	ErrPersistence      = errors.New("persistence error")
)

// Error is a domain error with a kind, the operation that produced it, a
// caller-facing message and an optional cause.
type Error struct {
	Kind    error
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel kind. AlreadyFinalized is a specialization of
// InvalidState and matches both.
func (e *Error) Is(target error) bool {
	if e.Kind == target {
		return true
	}
	return e.Kind == ErrAlreadyFinalized && target == ErrInvalidState
}

func newError(kind error, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Validation reports malformed or missing input.
func Validation(op, format string, args ...any) *Error {
	return newError(ErrValidation, op, format, args...)
}

// NotFound reports an absent round, score, participant or entry.
func NotFound(op, format string, args ...any) *Error {
	return newError(ErrNotFound, op, format, args...)
}

// InvalidState reports an operation attempted in the wrong round state.
func InvalidState(op, format string, args ...any) *Error {
	return newError(ErrInvalidState, op, format, args...)
}

// Duplicate reports that the participant, score or tag already exists.
func Duplicate(op, format string, args ...any) *Error {
	return newError(ErrDuplicate, op, format, args...)
}

// Authorization reports a caller acting outside their privileges.
func Authorization(op, format string, args ...any) *Error {
	return newError(ErrAuthorization, op, format, args...)
}

// AlreadyFinalized reports a second finalize attempt.
func AlreadyFinalized(op string) *Error {
	return &Error{Kind: ErrAlreadyFinalized, Op: op, Message: "Round has already been finalized"}
}

// Persistence wraps a store failure. Domain errors pass through untouched so
// that wrapping at every boundary is safe.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Kind: ErrPersistence, Op: op, Message: "storage operation failed", Err: err}
}

// EmptyIdentifier is the validation error for a blank Discord ID.
func EmptyIdentifier(op string) *Error {
	return Validation(op, "discord ID cannot be empty")
}

// TagTaken reports that another player holds the tag.
func TagTaken(op string, tag int, holder string) *Error {
	return Duplicate(op, "tag %d is already held by %s", tag, holder)
}

// DuplicateParticipant reports a second join for the same player.
func DuplicateParticipant(op string, userID string, roundID int64) *Error {
	return Duplicate(op, "participant %s has already joined round %d", userID, roundID)
}

// DuplicateScore reports a second score for the same (player, round).
func DuplicateScore(op string, userID string, roundID int64) *Error {
	return Duplicate(op, "score for %s in round %d already exists", userID, roundID)
}

// Message returns the caller-facing message of a domain error, or a generic
// text for anything else.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		if de.Kind == ErrPersistence {
			return "internal storage error"
		}
		if de.Message != "" {
			return de.Message
		}
		return de.Kind.Error()
	}
	return "internal error"
}
