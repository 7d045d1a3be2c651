package rounddb

import (
	"context"

	roundtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/round"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/uptrace/bun"
)

// Repository is the round store. Reads return soft-deleted rounds too; the
// service decides what a deleted round means for each operation.
type Repository interface {
	CreateRound(ctx context.Context, db bun.IDB, round *Round) error
	GetRound(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) (*Round, error)
	// GetRoundForUpdate reads the round and locks its row until the
	// surrounding transaction ends.
	GetRoundForUpdate(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) (*Round, error)
	// ListRounds returns non-deleted rounds, newest first.
	ListRounds(ctx context.Context, db bun.IDB, limit, offset int) ([]Round, error)
	UpdateRoundDetails(ctx context.Context, db bun.IDB, round *Round) error
	UpdateRoundState(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID, from, to roundtypes.RoundState) error
	// FinalizeRound flips finalized false to true. It reports false when the
	// round was already finalized.
	FinalizeRound(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) (bool, error)
	SoftDeleteRound(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) error

	AddParticipant(ctx context.Context, db bun.IDB, participant *Participant) error
	UpdateParticipantResponse(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID, userID sharedtypes.DiscordID, response roundtypes.Response) error
	DeleteParticipants(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) (int, error)
}
