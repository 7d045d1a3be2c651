package testutils

import (
	"testing"
	"time"

	roundtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/round"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataGenerator_SeededIsRepeatable(t *testing.T) {
	a := NewDataGenerator(42)
	b := NewDataGenerator(42)
	assert.Equal(t, a.Users(5), b.Users(5))
}

func TestDataGenerator_DistinctIDs(t *testing.T) {
	g := NewDataGenerator(7)
	seen := map[sharedtypes.DiscordID]bool{}
	for _, u := range g.Users(200) {
		require.False(t, seen[u.UserID], "duplicate id %s", u.UserID)
		seen[u.UserID] = true
		assert.Len(t, string(u.UserID), 18)
	}
}

func TestDataGenerator_Ladder(t *testing.T) {
	ladder := NewDataGenerator(1).Ladder(10)
	for i, e := range ladder {
		assert.Equal(t, sharedtypes.TagNumber(i+1), e.TagNumber)
		assert.GreaterOrEqual(t, e.DurationHeld, 0)
	}
}

func TestDataGenerator_RoundIsInFuture(t *testing.T) {
	now := time.Date(2025, 6, 4, 23, 0, 0, 0, time.UTC)
	g := NewDataGenerator(3)
	for range 20 {
		r := g.Round(now)
		start, err := time.Parse(roundtypes.DateLayout+" "+roundtypes.TimeLayout, r.Date+" "+r.Time)
		require.NoError(t, err)
		assert.True(t, start.After(now), "start %s not after %s", start, now)
		assert.NotEmpty(t, r.Title)
		assert.NotEmpty(t, r.Location)
	}
}
