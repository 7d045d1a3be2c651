package scoredb

import "errors"

// Sentinel errors for the repository layer.
// These are infrastructure-level errors that indicate database state, not business logic failures.
var (
	// ErrNotFound indicates the requested score record does not exist in the database.
	ErrNotFound = errors.New("score not found")

	// ErrDuplicate indicates a second score row for the same (player, round).
	ErrDuplicate = errors.New("score already recorded for player in round")

	// ErrNoRowsAffected indicates an UPDATE or DELETE affected zero rows.
	ErrNoRowsAffected = errors.New("no rows affected")
)
