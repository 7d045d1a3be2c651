package leaderboardservice

import (
	"time"

	leaderboarddb "github.com/Black-And-White-Club/tcr-bot/app/modules/leaderboard/infrastructure/repositories"
	"github.com/Black-And-White-Club/tcr-bot/app/shared/observability"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"go.opentelemetry.io/otel/trace/noop"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(repo *leaderboarddb.FakeRepository) *LeaderboardService {
	s := NewLeaderboardService(nil, repo, observability.NoOpLogger, observability.NoOpMetrics{}, noop.NewTracerProvider().Tracer("test"))
	s.now = func() time.Time { return fixedNow }
	return s
}

func entry(id string, tag int, held int) leaderboarddb.LeaderboardEntry {
	return leaderboarddb.LeaderboardEntry{
		UserID:       sharedtypes.DiscordID(id),
		TagNumber:    sharedtypes.TagNumber(tag),
		DurationHeld: held,
	}
}

func tagsByUser(repo *leaderboarddb.FakeRepository) map[sharedtypes.DiscordID]sharedtypes.TagNumber {
	out := map[sharedtypes.DiscordID]sharedtypes.TagNumber{}
	for _, e := range repo.Snapshot() {
		out[e.UserID] = e.TagNumber
	}
	return out
}
