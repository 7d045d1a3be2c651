package leaderboardservice

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Black-And-White-Club/tcr-bot/app/apperrors"
	leaderboarddb "github.com/Black-And-White-Club/tcr-bot/app/modules/leaderboard/infrastructure/repositories"
	leaderboardtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/leaderboard"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/uptrace/bun"
)

// SwapTags exchanges the tags of two players atomically.
func (s *LeaderboardService) SwapTags(ctx context.Context, requestorID, targetID sharedtypes.DiscordID) ([]leaderboardtypes.TagChange, error) {
	const op = "SwapTags"
	return withTelemetry(s, ctx, op, func(ctx context.Context) ([]leaderboardtypes.TagChange, error) {
		if requestorID == "" || targetID == "" {
			return nil, apperrors.EmptyIdentifier(op)
		}
		if requestorID == targetID {
			return nil, apperrors.Validation(op, "cannot swap a tag with yourself")
		}

		changes, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) ([]leaderboardtypes.TagChange, error) {
			unlock, err := s.lockLadder(ctx, db, op)
			if err != nil {
				return nil, err
			}
			defer unlock()

			// Lock in a fixed order so two opposite swaps cannot deadlock.
			first, second := requestorID, targetID
			if second < first {
				first, second = second, first
			}
			locked := make(map[sharedtypes.DiscordID]*leaderboarddb.LeaderboardEntry, 2)
			for _, id := range []sharedtypes.DiscordID{first, second} {
				entry, err := s.repo.LockEntryByUserID(ctx, db, id)
				if errors.Is(err, leaderboarddb.ErrNotFound) {
					return nil, apperrors.NotFound(op, "player %s has no tag", id)
				}
				if err != nil {
					return nil, apperrors.Persistence(op, err)
				}
				locked[id] = entry
			}

			if err := s.repo.SwapTags(ctx, db, requestorID, targetID); err != nil {
				return nil, apperrors.Persistence(op, err)
			}

			req, tgt := locked[requestorID], locked[targetID]
			return []leaderboardtypes.TagChange{
				{UserID: requestorID, OldTag: sharedtypes.TagPtr(req.TagNumber), NewTag: tgt.TagNumber, DurationHeld: req.DurationHeld},
				{UserID: targetID, OldTag: sharedtypes.TagPtr(tgt.TagNumber), NewTag: req.TagNumber, DurationHeld: tgt.DurationHeld},
			}, nil
		})
		if err != nil {
			return nil, err
		}

		s.metrics.RecordTagChanges(ctx, "swap", len(changes))
		s.logger.InfoContext(ctx, "Tags swapped",
			slog.String("requestor", string(requestorID)),
			slog.String("target", string(targetID)),
		)
		return changes, nil
	})
}
