package roundservice

import (
	"context"
	"errors"

	"github.com/Black-And-White-Club/tcr-bot/app/apperrors"
	rounddb "github.com/Black-And-White-Club/tcr-bot/app/modules/round/infrastructure/repositories"
	roundtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/round"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/uptrace/bun"
)

// StartRound moves an UPCOMING round to IN_PROGRESS.
func (s *RoundService) StartRound(ctx context.Context, roundID sharedtypes.RoundID) (*roundtypes.Round, error) {
	const op = "StartRound"
	return withTelemetry(s, ctx, op, roundID, func(ctx context.Context) (*roundtypes.Round, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (*roundtypes.Round, error) {
			round, err := s.lockRound(ctx, db, op, roundID)
			if err != nil {
				return nil, err
			}
			if isDeleted(round) {
				return nil, apperrors.NotFound(op, "round %d not found", roundID)
			}
			if round.State != roundtypes.RoundStateUpcoming {
				return nil, apperrors.InvalidState(op, "Only upcoming rounds can be started (round is %s)", round.State)
			}

			err = s.repo.UpdateRoundState(ctx, db, roundID, roundtypes.RoundStateUpcoming, roundtypes.RoundStateInProgress)
			if errors.Is(err, rounddb.ErrNoRowsAffected) {
				return nil, apperrors.InvalidState(op, "Only upcoming rounds can be started")
			}
			if err != nil {
				return nil, apperrors.Persistence(op, err)
			}
			round.State = roundtypes.RoundStateInProgress
			return s.assemble(ctx, db, round)
		})
	})
}
