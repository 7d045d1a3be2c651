package roundservice

import (
	"context"
	"errors"

	"github.com/Black-And-White-Club/tcr-bot/app/apperrors"
	rounddb "github.com/Black-And-White-Club/tcr-bot/app/modules/round/infrastructure/repositories"
	roundtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/round"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
)

const (
	defaultRoundsLimit = 20
	maxRoundsLimit     = 100
)

// GetRound returns the round with its participants and scores.
func (s *RoundService) GetRound(ctx context.Context, roundID sharedtypes.RoundID) (*roundtypes.Round, error) {
	const op = "GetRound"
	return withTelemetry(s, ctx, op, roundID, func(ctx context.Context) (*roundtypes.Round, error) {
		round, err := s.repo.GetRound(ctx, nil, roundID)
		if errors.Is(err, rounddb.ErrNotFound) {
			return nil, apperrors.NotFound(op, "round %d not found", roundID)
		}
		if err != nil {
			return nil, apperrors.Persistence(op, err)
		}
		if isDeleted(round) {
			return nil, apperrors.NotFound(op, "round %d not found", roundID)
		}
		return s.assemble(ctx, nil, round)
	})
}

// GetRounds lists non-deleted rounds, newest first.
func (s *RoundService) GetRounds(ctx context.Context, limit, offset int) ([]*roundtypes.Round, error) {
	const op = "GetRounds"
	return withTelemetry(s, ctx, op, 0, func(ctx context.Context) ([]*roundtypes.Round, error) {
		if limit < 1 {
			limit = defaultRoundsLimit
		}
		if limit > maxRoundsLimit {
			limit = maxRoundsLimit
		}
		if offset < 0 {
			offset = 0
		}

		rows, err := s.repo.ListRounds(ctx, nil, limit, offset)
		if err != nil {
			return nil, apperrors.Persistence(op, err)
		}
		out := make([]*roundtypes.Round, 0, len(rows))
		for i := range rows {
			r, err := s.assemble(ctx, nil, &rows[i])
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		return out, nil
	})
}
