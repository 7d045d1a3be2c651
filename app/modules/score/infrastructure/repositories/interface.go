package scoredb

import (
	"context"

	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/uptrace/bun"
)

// Repository is the score ledger store. A nil db runs on the repository's
// own connection.
type Repository interface {
	GetScore(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID, userID sharedtypes.DiscordID) (*Score, error)
	GetScoresForRound(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) ([]Score, error)
	// InsertScores writes all rows or none. ErrDuplicate on a unique violation.
	InsertScores(ctx context.Context, db bun.IDB, scores []Score) error
	UpdateScore(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID, userID sharedtypes.DiscordID, score sharedtypes.Score, tag *sharedtypes.TagNumber) error
	DeleteScoresForRound(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) (int, error)
}
