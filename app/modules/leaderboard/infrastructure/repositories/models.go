package leaderboarddb

import (
	"time"

	leaderboardtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/leaderboard"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/uptrace/bun"
)

// LeaderboardEntry is one row of the leaderboard table. Both discord_id and
// tag_number are unique.
type LeaderboardEntry struct {
	bun.BaseModel `bun:"table:leaderboard,alias:lb"`

	ID           int64                 `bun:"id,pk,autoincrement"`
	UserID       sharedtypes.DiscordID `bun:"discord_id,notnull"`
	TagNumber    sharedtypes.TagNumber `bun:"tag_number,notnull"`
	LastPlayed   *time.Time            `bun:"last_played,nullzero"`
	DurationHeld int                   `bun:"duration_held,notnull,default:0"`
	CreatedAt    time.Time             `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time             `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// ToDomain converts the row into the shared leaderboard type.
func (e *LeaderboardEntry) ToDomain() leaderboardtypes.LeaderboardEntry {
	return leaderboardtypes.LeaderboardEntry{
		UserID:       e.UserID,
		TagNumber:    e.TagNumber,
		LastPlayed:   e.LastPlayed,
		DurationHeld: e.DurationHeld,
	}
}
