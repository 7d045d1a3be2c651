package leaderboardservice

import (
	"context"
	"errors"

	"github.com/Black-And-White-Club/tcr-bot/app/apperrors"
	leaderboarddb "github.com/Black-And-White-Club/tcr-bot/app/modules/leaderboard/infrastructure/repositories"
	leaderboardtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/leaderboard"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// NormalizePage clamps paging input to valid values.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

// GetLeaderboard returns one page of entries, best tag first.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, page, limit int) ([]leaderboardtypes.LeaderboardEntry, error) {
	const op = "GetLeaderboard"
	return withTelemetry(s, ctx, op, func(ctx context.Context) ([]leaderboardtypes.LeaderboardEntry, error) {
		page, limit := NormalizePage(page, limit)
		rows, err := s.repo.ListEntries(ctx, nil, (page-1)*limit, limit)
		if err != nil {
			return nil, apperrors.Persistence(op, err)
		}
		out := make([]leaderboardtypes.LeaderboardEntry, 0, len(rows))
		for i := range rows {
			out = append(out, rows[i].ToDomain())
		}
		return out, nil
	})
}

// GetUserTag returns the player's entry, or nil if they have none.
func (s *LeaderboardService) GetUserTag(ctx context.Context, userID sharedtypes.DiscordID) (*leaderboardtypes.LeaderboardEntry, error) {
	const op = "GetUserTag"
	if userID == "" {
		return nil, apperrors.EmptyIdentifier(op)
	}
	entry, err := s.repo.GetEntryByUserID(ctx, nil, userID)
	return lookupResult(op, entry, err)
}

// GetUserByTagNumber returns the holder of tag, or nil if it is free.
func (s *LeaderboardService) GetUserByTagNumber(ctx context.Context, tag sharedtypes.TagNumber) (*leaderboardtypes.LeaderboardEntry, error) {
	const op = "GetUserByTagNumber"
	entry, err := s.repo.GetEntryByTagNumber(ctx, nil, tag)
	return lookupResult(op, entry, err)
}

// TagForUser adapts GetUserTag to the round module's tag lookup port.
func (s *LeaderboardService) TagForUser(ctx context.Context, userID sharedtypes.DiscordID) (*sharedtypes.TagNumber, error) {
	entry, err := s.GetUserTag(ctx, userID)
	if err != nil || entry == nil {
		return nil, err
	}
	return sharedtypes.TagPtr(entry.TagNumber), nil
}

func lookupResult(op string, entry *leaderboarddb.LeaderboardEntry, err error) (*leaderboardtypes.LeaderboardEntry, error) {
	if errors.Is(err, leaderboarddb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Persistence(op, err)
	}
	domain := entry.ToDomain()
	return &domain, nil
}
