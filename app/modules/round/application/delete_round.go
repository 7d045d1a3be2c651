package roundservice

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/tcr-bot/app/apperrors"
	roundtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/round"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/uptrace/bun"
)

// DeleteRound soft-deletes the round and removes its participants and
// scores. Only the creator may delete, and finalized rounds are kept.
func (s *RoundService) DeleteRound(ctx context.Context, roundID sharedtypes.RoundID, requesterID sharedtypes.DiscordID) (bool, error) {
	const op = "DeleteRound"
	deleted, err := withTelemetry(s, ctx, op, roundID, func(ctx context.Context) (bool, error) {
		if requesterID == "" {
			return false, apperrors.EmptyIdentifier(op)
		}

		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (bool, error) {
			round, err := s.lockRound(ctx, db, op, roundID)
			if err != nil {
				return false, err
			}
			if isDeleted(round) {
				return false, apperrors.NotFound(op, "round %d not found", roundID)
			}
			if round.CreatedBy != requesterID {
				return false, apperrors.Authorization(op, "only the round creator can delete the round")
			}
			if round.Finalized || round.State == roundtypes.RoundStateFinalized {
				return false, apperrors.InvalidState(op, "Finalized rounds cannot be deleted")
			}

			if _, err := s.repo.DeleteParticipants(ctx, db, roundID); err != nil {
				return false, apperrors.Persistence(op, err)
			}
			if err := s.scores.DeleteScoresForRoundInTx(ctx, db, roundID); err != nil {
				return false, err
			}
			if err := s.repo.SoftDeleteRound(ctx, db, roundID); err != nil {
				return false, apperrors.Persistence(op, err)
			}
			return true, nil
		})
	})
	if err != nil {
		return false, err
	}

	if s.queue != nil {
		if err := s.queue.CancelRoundJobs(ctx, roundID); err != nil {
			s.logger.WarnContext(ctx, "Failed to cancel round jobs",
				slog.String("round_id", roundID.String()),
				slog.Any("error", err),
			)
		}
	}
	return deleted, nil
}
