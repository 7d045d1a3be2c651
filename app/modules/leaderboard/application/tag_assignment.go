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

// LinkTag claims tag for userID. It fails if another player holds the tag.
// An existing entry keeps its durationHeld; a new one starts at zero.
func (s *LeaderboardService) LinkTag(ctx context.Context, userID sharedtypes.DiscordID, tag sharedtypes.TagNumber) (*leaderboardtypes.LeaderboardEntry, error) {
	const op = "LinkTag"
	return withTelemetry(s, ctx, op, func(ctx context.Context) (*leaderboardtypes.LeaderboardEntry, error) {
		return s.setTag(ctx, op, "link", userID, tag)
	})
}

// UpdateTag is the manual override path. It applies the same uniqueness rule
// as LinkTag so no code path can produce two holders of one tag.
func (s *LeaderboardService) UpdateTag(ctx context.Context, userID sharedtypes.DiscordID, tag sharedtypes.TagNumber) (*leaderboardtypes.LeaderboardEntry, error) {
	const op = "UpdateTag"
	return withTelemetry(s, ctx, op, func(ctx context.Context) (*leaderboardtypes.LeaderboardEntry, error) {
		return s.setTag(ctx, op, "manual", userID, tag)
	})
}

func (s *LeaderboardService) setTag(ctx context.Context, op, source string, userID sharedtypes.DiscordID, tag sharedtypes.TagNumber) (*leaderboardtypes.LeaderboardEntry, error) {
	if userID == "" {
		return nil, apperrors.EmptyIdentifier(op)
	}
	if tag <= 0 {
		return nil, apperrors.Validation(op, "tag number must be positive, got %d", tag)
	}

	entry, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (*leaderboarddb.LeaderboardEntry, error) {
		return s.assignTag(ctx, db, op, userID, tag)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTagChanges(ctx, source, 1)
	s.logger.InfoContext(ctx, "Tag assigned",
		slog.String("operation", op),
		slog.String("user_id", string(userID)),
		slog.Int("tag_number", int(tag)),
	)
	domain := entry.ToDomain()
	return &domain, nil
}

func (s *LeaderboardService) assignTag(ctx context.Context, db bun.IDB, op string, userID sharedtypes.DiscordID, tag sharedtypes.TagNumber) (*leaderboarddb.LeaderboardEntry, error) {
	unlock, err := s.lockLadder(ctx, db, op)
	if err != nil {
		return nil, err
	}
	defer unlock()

	holder, err := s.repo.GetEntryByTagNumber(ctx, db, tag)
	switch {
	case err == nil && holder.UserID != userID:
		return nil, apperrors.TagTaken(op, int(tag), string(holder.UserID))
	case err != nil && !errors.Is(err, leaderboarddb.ErrNotFound):
		return nil, apperrors.Persistence(op, err)
	}

	now := s.now()
	existing, err := s.repo.LockEntryByUserID(ctx, db, userID)
	if err != nil && !errors.Is(err, leaderboarddb.ErrNotFound) {
		return nil, apperrors.Persistence(op, err)
	}

	if existing != nil {
		existing.TagNumber = tag
		existing.LastPlayed = &now
		if err := s.repo.UpdateEntry(ctx, db, existing); err != nil {
			return nil, s.mapWriteError(op, tag, err)
		}
		return existing, nil
	}

	entry := &leaderboarddb.LeaderboardEntry{
		UserID:       userID,
		TagNumber:    tag,
		LastPlayed:   &now,
		DurationHeld: 0,
	}
	if err := s.repo.InsertEntry(ctx, db, entry); err != nil {
		return nil, s.mapWriteError(op, tag, err)
	}
	return entry, nil
}

func (s *LeaderboardService) mapWriteError(op string, tag sharedtypes.TagNumber, err error) error {
	switch {
	case errors.Is(err, leaderboarddb.ErrTagConflict):
		return apperrors.TagTaken(op, int(tag), "another player")
	case errors.Is(err, leaderboarddb.ErrUserConflict):
		return apperrors.Duplicate(op, "player already has a leaderboard entry")
	case errors.Is(err, leaderboarddb.ErrNoRowsAffected):
		return apperrors.NotFound(op, "leaderboard entry disappeared during update")
	default:
		return apperrors.Persistence(op, err)
	}
}
