package roundservice

import (
	"context"

	"github.com/Black-And-White-Club/tcr-bot/app/apperrors"
	leaderboardtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/leaderboard"
	roundtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/round"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/uptrace/bun"
)

// FinalizeResult is the finalized round and the leaderboard changes its
// scores produced.
type FinalizeResult struct {
	Round      *roundtypes.Round            `json:"round"`
	TagChanges []leaderboardtypes.TagChange `json:"tag_changes"`
}

// FinalizeAndProcessScores finalizes the round and applies its ledger scores
// to the leaderboard in one transaction. A second call fails with
// AlreadyFinalized and changes nothing.
func (s *RoundService) FinalizeAndProcessScores(ctx context.Context, roundID sharedtypes.RoundID) (*FinalizeResult, error) {
	const op = "FinalizeAndProcessScores"
	return withTelemetry(s, ctx, op, roundID, func(ctx context.Context) (*FinalizeResult, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (*FinalizeResult, error) {
			round, err := s.lockRound(ctx, db, op, roundID)
			if err != nil {
				return nil, err
			}
			if isDeleted(round) {
				return nil, apperrors.InvalidState(op, "Round %d has been deleted", roundID)
			}
			if round.Finalized {
				return nil, apperrors.AlreadyFinalized(op)
			}

			ok, err := s.repo.FinalizeRound(ctx, db, roundID)
			if err != nil {
				return nil, apperrors.Persistence(op, err)
			}
			if !ok {
				return nil, apperrors.AlreadyFinalized(op)
			}
			round.Finalized = true
			round.State = roundtypes.RoundStateFinalized

			scores, err := s.scores.GetScoresForRoundInTx(ctx, db, roundID)
			if err != nil {
				return nil, err
			}
			changes, err := s.ranker.ProcessScoresInTx(ctx, db, scores)
			if err != nil {
				return nil, err
			}

			out, err := s.assemble(ctx, db, round)
			if err != nil {
				return nil, err
			}
			if changes == nil {
				changes = []leaderboardtypes.TagChange{}
			}
			return &FinalizeResult{Round: out, TagChanges: changes}, nil
		})
	})
}
