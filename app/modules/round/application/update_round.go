package roundservice

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Black-And-White-Club/tcr-bot/app/apperrors"
	rounddb "github.com/Black-And-White-Club/tcr-bot/app/modules/round/infrastructure/repositories"
	roundtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/round"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/uptrace/bun"
)

// EditRoundInput holds the fields to change. Nil fields are left as they are.
// RequesterID is optional; when set it must be the creator or a round manager.
type EditRoundInput struct {
	RequesterID sharedtypes.DiscordID `json:"requester_id,omitempty"`
	Title       *string               `json:"title,omitempty"`
	Location    *string               `json:"location,omitempty"`
	EventType   *string               `json:"event_type,omitempty"`
	Date        *string               `json:"date,omitempty"`
	Time        *string               `json:"time,omitempty"`
}

func (in EditRoundInput) empty() bool {
	return in.Title == nil && in.Location == nil && in.EventType == nil && in.Date == nil && in.Time == nil
}

// EditRound merges the provided metadata into the round. Participants,
// scores and state are never touched.
func (s *RoundService) EditRound(ctx context.Context, roundID sharedtypes.RoundID, input EditRoundInput) (*roundtypes.Round, error) {
	const op = "EditRound"
	round, err := withTelemetry(s, ctx, op, roundID, func(ctx context.Context) (*roundtypes.Round, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (*roundtypes.Round, error) {
			round, err := s.lockRound(ctx, db, op, roundID)
			if err != nil {
				return nil, err
			}
			if isDeleted(round) || round.Finalized || round.State == roundtypes.RoundStateFinalized {
				return nil, apperrors.InvalidState(op, "Round %d can no longer be edited", roundID)
			}
			if err := s.authorizeEdit(ctx, op, round, input.RequesterID); err != nil {
				return nil, err
			}
			if input.empty() {
				return s.assemble(ctx, db, round)
			}

			if input.Title != nil {
				title := strings.TrimSpace(*input.Title)
				if title == "" {
					return nil, apperrors.Validation(op, "title cannot be empty")
				}
				round.Title = title
			}
			if input.Location != nil {
				location := strings.TrimSpace(*input.Location)
				if location == "" {
					return nil, apperrors.Validation(op, "location cannot be empty")
				}
				round.Location = location
			}
			if input.EventType != nil {
				eventType := strings.TrimSpace(*input.EventType)
				if eventType == "" {
					round.EventType = nil
				} else {
					round.EventType = &eventType
				}
			}
			if input.Date != nil {
				date, err := s.parser.ParseDate(*input.Date, s.clock.Now().In(s.location))
				if err != nil {
					return nil, apperrors.Validation(op, "%s", err.Error())
				}
				round.Date = date
			}
			if input.Time != nil {
				tm, err := s.parser.ParseTime(*input.Time)
				if err != nil {
					return nil, apperrors.Validation(op, "%s", err.Error())
				}
				round.Time = tm
			}

			if err := s.repo.UpdateRoundDetails(ctx, db, round); err != nil {
				return nil, apperrors.Persistence(op, err)
			}
			return s.assemble(ctx, db, round)
		})
	})
	if err != nil {
		return nil, err
	}

	if (input.Date != nil || input.Time != nil) && round.State == roundtypes.RoundStateUpcoming {
		s.rescheduleStart(ctx, round)
	}
	return round, nil
}

// rescheduleStart replaces the round's pending start job.
func (s *RoundService) rescheduleStart(ctx context.Context, round *roundtypes.Round) {
	if s.queue == nil {
		return
	}
	if err := s.queue.CancelRoundJobs(ctx, round.ID); err != nil {
		s.logger.WarnContext(ctx, "Failed to cancel round start",
			slog.String("round_id", round.ID.String()),
			slog.Any("error", err),
		)
	}
	s.scheduleStart(ctx, round)
}

func (s *RoundService) authorizeEdit(ctx context.Context, op string, round *rounddb.Round, requesterID sharedtypes.DiscordID) error {
	if requesterID == "" || requesterID == round.CreatedBy {
		return nil
	}
	if s.users == nil {
		return apperrors.Authorization(op, "only the round creator can edit the round")
	}
	role, err := s.users.GetUserRole(ctx, requesterID)
	if err != nil {
		return apperrors.Persistence(op, err)
	}
	if !role.CanManageRounds() {
		return apperrors.Authorization(op, "only the round creator can edit the round")
	}
	return nil
}

// UpdateParticipantResponse changes an existing participant's RSVP.
func (s *RoundService) UpdateParticipantResponse(
	ctx context.Context,
	roundID sharedtypes.RoundID,
	userID sharedtypes.DiscordID,
	response roundtypes.Response,
) (*roundtypes.Round, error) {
	const op = "UpdateParticipantResponse"
	return withTelemetry(s, ctx, op, roundID, func(ctx context.Context) (*roundtypes.Round, error) {
		if userID == "" {
			return nil, apperrors.EmptyIdentifier(op)
		}
		if !response.Valid() {
			return nil, apperrors.Validation(op, "invalid response %q", response)
		}

		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (*roundtypes.Round, error) {
			round, err := s.lockRound(ctx, db, op, roundID)
			if err != nil {
				return nil, err
			}
			if isDeleted(round) {
				return nil, apperrors.NotFound(op, "round %d not found", roundID)
			}
			if round.State == roundtypes.RoundStateFinalized {
				return nil, apperrors.InvalidState(op, "Round %d is already finalized", roundID)
			}

			err = s.repo.UpdateParticipantResponse(ctx, db, roundID, userID, response)
			if errors.Is(err, rounddb.ErrNoRowsAffected) {
				return nil, apperrors.NotFound(op, "participant %s not found in round %d", userID, roundID)
			}
			if err != nil {
				return nil, apperrors.Persistence(op, err)
			}
			for i := range round.Participants {
				if round.Participants[i].UserID == userID {
					round.Participants[i].Response = response
				}
			}
			return s.assemble(ctx, db, round)
		})
	})
}
