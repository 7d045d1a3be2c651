package leaderboardtypes

import (
	"time"

	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
)

// LeaderboardEntry is one player's current position on the ladder.
type LeaderboardEntry struct {
	UserID       sharedtypes.DiscordID `json:"user_id"`
	TagNumber    sharedtypes.TagNumber `json:"tag_number"`
	LastPlayed   *time.Time            `json:"last_played,omitempty"`
	DurationHeld int                   `json:"duration_held"`
}

// TagChange records one reassignment made by the ranking engine.
type TagChange struct {
	UserID       sharedtypes.DiscordID  `json:"user_id"`
	OldTag       *sharedtypes.TagNumber `json:"old_tag,omitempty"`
	NewTag       sharedtypes.TagNumber  `json:"new_tag"`
	DurationHeld int                    `json:"duration_held"`
}
