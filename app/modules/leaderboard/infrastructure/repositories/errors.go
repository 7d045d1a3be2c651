package leaderboarddb

import "errors"

// Sentinel errors for the repository layer.
// These represent infrastructure-level conditions callers may want
// to handle specially (not business-domain errors).
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("leaderboard entry not found")

	// ErrTagConflict indicates a write would give two players the same tag.
	ErrTagConflict = errors.New("tag number already assigned")

	// ErrUserConflict indicates a second entry for the same player.
	ErrUserConflict = errors.New("player already has a leaderboard entry")

	// ErrNoRowsAffected indicates an UPDATE/DELETE matched no rows.
	ErrNoRowsAffected = errors.New("no rows affected")
)
