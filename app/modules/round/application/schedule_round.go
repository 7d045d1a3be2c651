package roundservice

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Black-And-White-Club/tcr-bot/app/apperrors"
	rounddb "github.com/Black-And-White-Club/tcr-bot/app/modules/round/infrastructure/repositories"
	roundutil "github.com/Black-And-White-Club/tcr-bot/app/modules/round/utils"
	roundtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/round"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/uptrace/bun"
)

// ScheduleRoundInput carries the fields of a new round.
type ScheduleRoundInput struct {
	Title     string                `json:"title"`
	Location  string                `json:"location"`
	EventType *string               `json:"event_type,omitempty"`
	Date      string                `json:"date"`
	Time      string                `json:"time"`
	CreatorID sharedtypes.DiscordID `json:"creator_id"`
}

// ScheduleRound creates an UPCOMING round with no participants or scores and
// schedules its start.
func (s *RoundService) ScheduleRound(ctx context.Context, input ScheduleRoundInput) (*roundtypes.Round, error) {
	const op = "ScheduleRound"
	round, err := withTelemetry(s, ctx, op, 0, func(ctx context.Context) (*roundtypes.Round, error) {
		if errs := s.validator.ValidateScheduleInput(roundutil.ScheduleFields{
			Title:     input.Title,
			Location:  input.Location,
			Date:      input.Date,
			Time:      input.Time,
			CreatorID: string(input.CreatorID),
		}); len(errs) > 0 {
			return nil, apperrors.Validation(op, "%s", strings.Join(errs, "; "))
		}

		date, err := s.parser.ParseDate(input.Date, s.clock.Now().In(s.location))
		if err != nil {
			return nil, apperrors.Validation(op, "%s", err.Error())
		}
		tm, err := s.parser.ParseTime(input.Time)
		if err != nil {
			return nil, apperrors.Validation(op, "%s", err.Error())
		}

		row := &rounddb.Round{
			Title:     strings.TrimSpace(input.Title),
			Location:  strings.TrimSpace(input.Location),
			EventType: input.EventType,
			Date:      date,
			Time:      tm,
			CreatedBy: input.CreatorID,
			State:     roundtypes.RoundStateUpcoming,
		}
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (*roundtypes.Round, error) {
			if err := s.repo.CreateRound(ctx, db, row); err != nil {
				return nil, apperrors.Persistence(op, err)
			}
			return row.ToDomain(), nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.scheduleStart(ctx, round)
	return round, nil
}

// scheduleStart is best effort. A round that misses its job can still be
// started explicitly.
func (s *RoundService) scheduleStart(ctx context.Context, round *roundtypes.Round) {
	if s.queue == nil {
		return
	}
	start := round.StartTime(s.location)
	if start.IsZero() || !start.After(s.clock.Now()) {
		s.logger.InfoContext(ctx, "Round start is not in the future, skipping job",
			slog.String("round_id", round.ID.String()),
		)
		return
	}
	if err := s.queue.ScheduleRoundStart(ctx, round.ID, start); err != nil {
		s.logger.WarnContext(ctx, "Failed to schedule round start",
			slog.String("round_id", round.ID.String()),
			slog.Any("error", err),
		)
	}
}
