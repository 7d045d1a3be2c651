package roundservice

import (
	"context"
	"time"

	leaderboardtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/leaderboard"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	usertypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/user"
	"github.com/uptrace/bun"
)

// UserLookup resolves a user's role. An unknown user has an empty role.
type UserLookup interface {
	GetUserRole(ctx context.Context, userID sharedtypes.DiscordID) (usertypes.UserRoleEnum, error)
}

// TagLookup resolves a player's current tag. Nil means the player has none.
type TagLookup interface {
	TagForUser(ctx context.Context, userID sharedtypes.DiscordID) (*sharedtypes.TagNumber, error)
}

// TagRanker applies a finalized round's scores to the leaderboard on the
// caller's transaction.
type TagRanker interface {
	ProcessScoresInTx(ctx context.Context, db bun.IDB, scores []sharedtypes.ScoreInfo) ([]leaderboardtypes.TagChange, error)
}

// ScoreLedger stores per-round scores.
type ScoreLedger interface {
	InsertScoreInTx(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID, score sharedtypes.ScoreInfo) error
	GetScoresForRoundInTx(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) ([]sharedtypes.ScoreInfo, error)
	DeleteScoresForRoundInTx(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) error
}

// QueueService schedules delayed round jobs.
type QueueService interface {
	ScheduleRoundStart(ctx context.Context, roundID sharedtypes.RoundID, startTime time.Time) error
	CancelRoundJobs(ctx context.Context, roundID sharedtypes.RoundID) error
}
