package adapters

import (
	"context"
	"errors"

	rounddb "github.com/Black-And-White-Club/tcr-bot/app/modules/round/infrastructure/repositories"
	roundtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/round"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/uptrace/bun"
)

// RoundStateAdapter adapts the round repository to the score ledger's
// RoundStates port.
type RoundStateAdapter struct {
	rounds rounddb.Repository
}

// NewRoundStateAdapter constructs a new adapter.
func NewRoundStateAdapter(rounds rounddb.Repository) *RoundStateAdapter {
	return &RoundStateAdapter{rounds: rounds}
}

// LockRoundState returns the round's state with its row locked, or an empty
// state for unknown rounds.
func (a *RoundStateAdapter) LockRoundState(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) (roundtypes.RoundState, error) {
	round, err := a.rounds.GetRoundForUpdate(ctx, db, roundID)
	if err != nil {
		if errors.Is(err, rounddb.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	if round.DeletedAt != nil {
		return roundtypes.RoundStateDeleted, nil
	}
	return round.State, nil
}
