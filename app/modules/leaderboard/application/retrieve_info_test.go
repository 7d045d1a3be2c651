package leaderboardservice

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Black-And-White-Club/tcr-bot/app/apperrors"
	leaderboarddb "github.com/Black-And-White-Club/tcr-bot/app/modules/leaderboard/infrastructure/repositories"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{1, 10, 1, 10},
		{0, 10, 1, 10},
		{-3, 0, 1, DefaultPageSize},
		{2, 500, 2, MaxPageSize},
		{4, 25, 4, 25},
	}
	for _, tt := range tests {
		p, l := NormalizePage(tt.page, tt.limit)
		assert.Equal(t, tt.wantPage, p)
		assert.Equal(t, tt.wantLimit, l)
	}
}

func TestLeaderboardService_GetLeaderboard(t *testing.T) {
	repo := leaderboarddb.NewFakeRepository()
	repo.Seed(entry("c", 3, 0), entry("a", 1, 0), entry("e", 5, 0), entry("b", 2, 0), entry("d", 4, 0))
	s := newTestService(repo)

	page1, err := s.GetLeaderboard(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, sharedtypes.DiscordID("a"), page1[0].UserID)
	assert.Equal(t, sharedtypes.DiscordID("b"), page1[1].UserID)

	page3, err := s.GetLeaderboard(context.Background(), 3, 2)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Equal(t, sharedtypes.TagNumber(5), page3[0].TagNumber)

	beyond, err := s.GetLeaderboard(context.Background(), 9, 2)
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestLeaderboardService_GetLeaderboard_SecondPageOfTen(t *testing.T) {
	repo := leaderboarddb.NewFakeRepository()
	// Seeded out of order so the page relies on tag ordering.
	for tag := 25; tag >= 1; tag-- {
		repo.Seed(entry(fmt.Sprintf("player-%02d", tag), tag, 0))
	}
	s := newTestService(repo)

	page, err := s.GetLeaderboard(context.Background(), 2, 10)
	require.NoError(t, err)

	tags := make([]sharedtypes.TagNumber, 0, len(page))
	for _, e := range page {
		tags = append(tags, e.TagNumber)
	}
	assert.Equal(t, []sharedtypes.TagNumber{11, 12, 13, 14, 15, 16, 17, 18, 19, 20}, tags)
	assert.Equal(t, sharedtypes.DiscordID("player-11"), page[0].UserID)
}

func TestLeaderboardService_GetLeaderboard_ClampsPaging(t *testing.T) {
	repo := leaderboarddb.NewFakeRepository()
	var gotOffset, gotLimit int
	repo.ListEntriesFn = func(_ context.Context, _ bun.IDB, offset, limit int) ([]leaderboarddb.LeaderboardEntry, error) {
		gotOffset, gotLimit = offset, limit
		return nil, nil
	}
	s := newTestService(repo)

	_, err := s.GetLeaderboard(context.Background(), 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, 0, gotOffset)
	assert.Equal(t, MaxPageSize, gotLimit)
}

func TestLeaderboardService_PointLookups(t *testing.T) {
	repo := leaderboarddb.NewFakeRepository()
	repo.Seed(entry("alice", 7, 1))
	s := newTestService(repo)
	ctx := context.Background()

	got, err := s.GetUserTag(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sharedtypes.TagNumber(7), got.TagNumber)

	missing, err := s.GetUserTag(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	holder, err := s.GetUserByTagNumber(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, holder)
	assert.Equal(t, sharedtypes.DiscordID("alice"), holder.UserID)

	free, err := s.GetUserByTagNumber(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, free)

	tag, err := s.TagForUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, sharedtypes.TagPtr(7), tag)

	noTag, err := s.TagForUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, noTag)
}

func TestLeaderboardService_GetUserTag_StorageError(t *testing.T) {
	repo := leaderboarddb.NewFakeRepository()
	repo.GetEntryByUserIDFn = func(context.Context, bun.IDB, sharedtypes.DiscordID) (*leaderboarddb.LeaderboardEntry, error) {
		return nil, errors.New("timeout")
	}
	s := newTestService(repo)

	_, err := s.GetUserTag(context.Background(), "alice")
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
}
