package roundservice

import (
	"context"
	"sync"
	"time"

	leaderboardservice "github.com/Black-And-White-Club/tcr-bot/app/modules/leaderboard/application"
	leaderboarddb "github.com/Black-And-White-Club/tcr-bot/app/modules/leaderboard/infrastructure/repositories"
	"github.com/Black-And-White-Club/tcr-bot/app/modules/round/infrastructure/adapters"
	rounddb "github.com/Black-And-White-Club/tcr-bot/app/modules/round/infrastructure/repositories"
	roundutil "github.com/Black-And-White-Club/tcr-bot/app/modules/round/utils"
	scoreservice "github.com/Black-And-White-Club/tcr-bot/app/modules/score/application"
	scoredb "github.com/Black-And-White-Club/tcr-bot/app/modules/score/infrastructure/repositories"
	"github.com/Black-And-White-Club/tcr-bot/app/shared/observability"
	roundtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/round"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	usertypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/user"
	"go.opentelemetry.io/otel/trace/noop"
)

// Wednesday.
var testNow = time.Date(2025, 6, 4, 9, 0, 0, 0, time.UTC)

type fakeQueue struct {
	mu        sync.Mutex
	scheduled map[sharedtypes.RoundID]time.Time
	cancelled []sharedtypes.RoundID

	ScheduleErr error
	CancelErr   error
}

func (q *fakeQueue) ScheduleRoundStart(_ context.Context, roundID sharedtypes.RoundID, start time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.ScheduleErr != nil {
		return q.ScheduleErr
	}
	if q.scheduled == nil {
		q.scheduled = map[sharedtypes.RoundID]time.Time{}
	}
	q.scheduled[roundID] = start
	return nil
}

func (q *fakeQueue) CancelRoundJobs(_ context.Context, roundID sharedtypes.RoundID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.cancelled = append(q.cancelled, roundID)
	return q.CancelErr
}

type fakeUsers struct {
	roles map[sharedtypes.DiscordID]usertypes.UserRoleEnum
	err   error
}

func (u *fakeUsers) GetUserRole(_ context.Context, userID sharedtypes.DiscordID) (usertypes.UserRoleEnum, error) {
	if u.err != nil {
		return "", u.err
	}
	return u.roles[userID], nil
}

type harness struct {
	svc    *RoundService
	rounds *rounddb.FakeRepository
	scores *scoredb.FakeRepository
	board  *leaderboarddb.FakeRepository
	lb     *leaderboardservice.LeaderboardService
	ledger *scoreservice.ScoreService
	queue  *fakeQueue
	users  *fakeUsers
}

func newHarness() *harness {
	tracer := noop.NewTracerProvider().Tracer("test")
	h := &harness{
		rounds: rounddb.NewFakeRepository(),
		scores: scoredb.NewFakeRepository(),
		board:  leaderboarddb.NewFakeRepository(),
		queue:  &fakeQueue{},
		users:  &fakeUsers{roles: map[sharedtypes.DiscordID]usertypes.UserRoleEnum{}},
	}
	h.lb = leaderboardservice.NewLeaderboardService(nil, h.board, observability.NoOpLogger, observability.NoOpMetrics{}, tracer)
	h.ledger = scoreservice.NewScoreService(h.scores, adapters.NewRoundStateAdapter(h.rounds), observability.NoOpLogger, observability.NoOpMetrics{}, tracer, nil)
	h.svc = NewRoundService(nil, h.rounds, h.ledger, h.lb, h.lb, h.users, h.queue, observability.NoOpLogger, observability.NoOpMetrics{}, tracer)
	h.svc.clock = roundutil.FixedClock(testNow)
	return h
}

func (h *harness) seedRound(state roundtypes.RoundState, participants ...sharedtypes.DiscordID) sharedtypes.RoundID {
	r := rounddb.Round{
		Title:     "Weekly",
		Location:  "Pier Park",
		Date:      "2025-06-06",
		Time:      "18:00",
		CreatedBy: "creator",
		State:     state,
		Finalized: state == roundtypes.RoundStateFinalized,
	}
	for i, p := range participants {
		r.Participants = append(r.Participants, rounddb.Participant{
			UserID:   p,
			Response: roundtypes.ResponseAccept,
			Position: i + 1,
		})
	}
	id := h.rounds.Seed(r)
	return id
}

func strPtr(s string) *string { return &s }
