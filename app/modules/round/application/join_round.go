package roundservice

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Black-And-White-Club/tcr-bot/app/apperrors"
	rounddb "github.com/Black-And-White-Club/tcr-bot/app/modules/round/infrastructure/repositories"
	roundtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/round"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/uptrace/bun"
)

// JoinRoundInput identifies a player joining a round. When TagNumber is nil
// the player's current leaderboard tag is looked up.
type JoinRoundInput struct {
	RoundID   sharedtypes.RoundID    `json:"round_id"`
	UserID    sharedtypes.DiscordID  `json:"user_id"`
	Response  roundtypes.Response    `json:"response"`
	TagNumber *sharedtypes.TagNumber `json:"tag_number,omitempty"`
}

// JoinRound adds a participant to an UPCOMING round.
func (s *RoundService) JoinRound(ctx context.Context, input JoinRoundInput) (*roundtypes.Round, error) {
	const op = "JoinRound"
	return withTelemetry(s, ctx, op, input.RoundID, func(ctx context.Context) (*roundtypes.Round, error) {
		if input.UserID == "" {
			return nil, apperrors.EmptyIdentifier(op)
		}
		if !input.Response.Valid() {
			return nil, apperrors.Validation(op, "invalid response %q", input.Response)
		}

		tag := input.TagNumber
		if tag == nil {
			tag = s.lookupTag(ctx, input.UserID)
		}

		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (*roundtypes.Round, error) {
			round, err := s.lockRound(ctx, db, op, input.RoundID)
			if err != nil {
				return nil, err
			}
			if isDeleted(round) {
				return nil, apperrors.NotFound(op, "round %d not found", input.RoundID)
			}
			if round.State != roundtypes.RoundStateUpcoming {
				return nil, apperrors.InvalidState(op, "You can only join rounds that are upcoming")
			}
			if round.HasParticipant(input.UserID) {
				return nil, apperrors.DuplicateParticipant(op, string(input.UserID), int64(input.RoundID))
			}

			p := &rounddb.Participant{
				RoundID:   input.RoundID,
				UserID:    input.UserID,
				Response:  input.Response,
				TagNumber: tag,
				Position:  len(round.Participants) + 1,
			}
			if err := s.repo.AddParticipant(ctx, db, p); err != nil {
				if errors.Is(err, rounddb.ErrDuplicateParticipant) {
					return nil, apperrors.DuplicateParticipant(op, string(input.UserID), int64(input.RoundID))
				}
				return nil, apperrors.Persistence(op, err)
			}
			round.Participants = append(round.Participants, *p)
			return s.assemble(ctx, db, round)
		})
	})
}

// lookupTag treats lookup failures as "no tag".
func (s *RoundService) lookupTag(ctx context.Context, userID sharedtypes.DiscordID) *sharedtypes.TagNumber {
	if s.tags == nil {
		return nil
	}
	tag, err := s.tags.TagForUser(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "Tag lookup failed, joining without tag",
			slog.String("user_id", string(userID)),
			slog.Any("error", err),
		)
		return nil
	}
	return tag
}
