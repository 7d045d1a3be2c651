package rounddb

import "errors"

// Sentinel errors for the round repository layer.
var (
	// ErrNotFound indicates the round does not exist.
	ErrNotFound = errors.New("round not found")

	// ErrDuplicateParticipant indicates the player already joined the round.
	ErrDuplicateParticipant = errors.New("participant already in round")

	// ErrNoRowsAffected indicates an UPDATE/DELETE matched no rows.
	ErrNoRowsAffected = errors.New("no rows affected")
)
