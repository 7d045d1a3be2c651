package leaderboarddb

import (
	"context"

	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/uptrace/bun"
)

// Repository defines the contract for leaderboard persistence.
// All methods are context-aware and take the bun.IDB to run on so that the
// service layer decides the transaction boundary.
//
// Error semantics:
//   - ErrNotFound: no entry for the player or tag
//   - ErrTagConflict: tag_number unique constraint violated
//   - ErrUserConflict: discord_id unique constraint violated
//   - ErrNoRowsAffected: UPDATE matched no rows
//   - Other errors: infrastructure failures (DB connection, query errors)
type Repository interface {
	// AcquireLadderLock takes a transaction-scoped advisory lock shared by
	// every leaderboard writer.
	AcquireLadderLock(ctx context.Context, db bun.IDB) error

	// GetEntryByUserID returns the player's entry.
	GetEntryByUserID(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID) (*LeaderboardEntry, error)

	// LockEntryByUserID returns the player's entry and holds a row lock on it
	// until the surrounding transaction ends.
	LockEntryByUserID(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID) (*LeaderboardEntry, error)

	// GetEntryByTagNumber returns the entry currently holding tag.
	GetEntryByTagNumber(ctx context.Context, db bun.IDB, tag sharedtypes.TagNumber) (*LeaderboardEntry, error)

	// ListEntries returns entries ordered by ascending tag number.
	ListEntries(ctx context.Context, db bun.IDB, offset, limit int) ([]LeaderboardEntry, error)

	// InsertEntry creates a new entry and fills in its generated fields.
	InsertEntry(ctx context.Context, db bun.IDB, entry *LeaderboardEntry) error

	// UpdateEntry writes tag, last played and duration held for entry.UserID.
	UpdateEntry(ctx context.Context, db bun.IDB, entry *LeaderboardEntry) error

	// SwapTags exchanges the tags of two players in a single statement.
	SwapTags(ctx context.Context, db bun.IDB, a, b sharedtypes.DiscordID) error
}
