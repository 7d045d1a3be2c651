package roundservice

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/tcr-bot/app/apperrors"
	roundtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/round"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/uptrace/bun"
)

// SubmitScoreInput is one player's score for a round.
type SubmitScoreInput struct {
	RoundID   sharedtypes.RoundID    `json:"round_id"`
	UserID    sharedtypes.DiscordID  `json:"user_id"`
	Score     sharedtypes.Score      `json:"score"`
	TagNumber *sharedtypes.TagNumber `json:"tag_number,omitempty"`
}

// SubmitScore records a score while the round is IN_PROGRESS. A player gets
// at most one score per round.
func (s *RoundService) SubmitScore(ctx context.Context, input SubmitScoreInput) (*roundtypes.Round, error) {
	const op = "SubmitScore"
	return withTelemetry(s, ctx, op, input.RoundID, func(ctx context.Context) (*roundtypes.Round, error) {
		if input.UserID == "" {
			return nil, apperrors.EmptyIdentifier(op)
		}

		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (*roundtypes.Round, error) {
			round, err := s.lockRound(ctx, db, op, input.RoundID)
			if err != nil {
				return nil, err
			}
			if isDeleted(round) {
				return nil, apperrors.NotFound(op, "round %d not found", input.RoundID)
			}
			if round.State != roundtypes.RoundStateInProgress {
				return nil, apperrors.InvalidState(op, "Scores can only be submitted while the round is in progress")
			}
			if !round.HasParticipant(input.UserID) {
				s.logger.InfoContext(ctx, "Score submitted by a non-participant",
					slog.String("round_id", input.RoundID.String()),
					slog.String("user_id", string(input.UserID)),
				)
			}

			err = s.scores.InsertScoreInTx(ctx, db, input.RoundID, sharedtypes.ScoreInfo{
				UserID:    input.UserID,
				Score:     input.Score,
				TagNumber: input.TagNumber,
			})
			if err != nil {
				return nil, err
			}
			return s.assemble(ctx, db, round)
		})
	})
}
