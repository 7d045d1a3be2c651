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

// ProcessScores applies a score batch to the leaderboard in its own transaction.
func (s *LeaderboardService) ProcessScores(ctx context.Context, scores []sharedtypes.ScoreInfo) ([]leaderboardtypes.TagChange, error) {
	return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) ([]leaderboardtypes.TagChange, error) {
		return s.ProcessScoresInTx(ctx, db, scores)
	})
}

// ProcessScoresInTx applies a score batch on db, which is normally the
// caller's transaction. Scores are handled in input order:
//
//   - a player without an entry is skipped
//   - a score that is not strictly below the player's tag is skipped
//   - otherwise the player moves to the supplied tag, or to the score itself,
//     keeping durationHeld
//
// A target tag held by someone else skips that score. Only storage failures
// fail the batch. The returned changes follow input order.
func (s *LeaderboardService) ProcessScoresInTx(ctx context.Context, db bun.IDB, scores []sharedtypes.ScoreInfo) ([]leaderboardtypes.TagChange, error) {
	const op = "ProcessScores"
	changes, err := withTelemetry(s, ctx, op, func(ctx context.Context) ([]leaderboardtypes.TagChange, error) {
		return s.processScores(ctx, db, op, scores)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordTagChanges(ctx, "scores", len(changes))
	return changes, nil
}

func (s *LeaderboardService) processScores(ctx context.Context, db bun.IDB, op string, scores []sharedtypes.ScoreInfo) ([]leaderboardtypes.TagChange, error) {
	unlock, err := s.lockLadder(ctx, db, op)
	if err != nil {
		return nil, err
	}
	defer unlock()

	changes := make([]leaderboardtypes.TagChange, 0, len(scores))
	now := s.now()

	for _, sc := range scores {
		if sc.UserID == "" {
			s.logger.WarnContext(ctx, "Skipping score with empty user ID", slog.Int("score", int(sc.Score)))
			continue
		}

		entry, err := s.repo.LockEntryByUserID(ctx, db, sc.UserID)
		if errors.Is(err, leaderboarddb.ErrNotFound) {
			s.logger.InfoContext(ctx, "No leaderboard entry for player, skipping score",
				slog.String("user_id", string(sc.UserID)),
			)
			continue
		}
		if err != nil {
			return nil, apperrors.Persistence(op, err)
		}

		if int(sc.Score) >= int(entry.TagNumber) {
			continue
		}

		newTag := sharedtypes.TagNumber(sc.Score)
		if sc.TagNumber != nil {
			newTag = *sc.TagNumber
		}
		if newTag == entry.TagNumber {
			continue
		}
		if newTag <= 0 {
			s.logger.WarnContext(ctx, "Skipping score that maps to a non-positive tag",
				slog.String("user_id", string(sc.UserID)),
				slog.Int("tag_number", int(newTag)),
			)
			continue
		}

		holder, err := s.repo.GetEntryByTagNumber(ctx, db, newTag)
		if err != nil && !errors.Is(err, leaderboarddb.ErrNotFound) {
			return nil, apperrors.Persistence(op, err)
		}
		if holder != nil && holder.UserID != sc.UserID {
			s.logger.WarnContext(ctx, "Target tag is held by another player, skipping score",
				slog.String("user_id", string(sc.UserID)),
				slog.String("holder", string(holder.UserID)),
				slog.Int("tag_number", int(newTag)),
			)
			continue
		}

		oldTag := entry.TagNumber
		entry.TagNumber = newTag
		entry.LastPlayed = &now
		if err := s.repo.UpdateEntry(ctx, db, entry); err != nil {
			return nil, s.mapWriteError(op, newTag, err)
		}

		changes = append(changes, leaderboardtypes.TagChange{
			UserID:       entry.UserID,
			OldTag:       sharedtypes.TagPtr(oldTag),
			NewTag:       newTag,
			DurationHeld: entry.DurationHeld,
		})
	}

	return changes, nil
}
