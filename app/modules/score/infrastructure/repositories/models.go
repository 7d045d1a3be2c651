package scoredb

import (
	"time"

	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/uptrace/bun"
)

// Score sources.
const (
	SourceSubmission = "submission"
	SourceLedger     = "ledger"
	SourceCorrection = "correction"
)

// Score is one ledger row. (discord_id, round_id) is unique.
type Score struct {
	bun.BaseModel `bun:"table:scores,alias:s"`

	ID        int64                  `bun:"id,pk,autoincrement"`
	UserID    sharedtypes.DiscordID  `bun:"discord_id,notnull"`
	RoundID   sharedtypes.RoundID    `bun:"round_id,notnull"`
	Score     sharedtypes.Score      `bun:"score,notnull"`
	TagNumber *sharedtypes.TagNumber `bun:"tag_number"`
	Source    string                 `bun:"source,notnull"`
	CreatedAt time.Time              `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time              `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// ToInfo converts the row into the shared score triple.
func (s *Score) ToInfo() sharedtypes.ScoreInfo {
	return sharedtypes.ScoreInfo{
		UserID:    s.UserID,
		Score:     s.Score,
		TagNumber: s.TagNumber,
	}
}
