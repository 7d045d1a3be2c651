package swap

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Black-And-White-Club/tcr-bot/app/eventbus"
	leaderboardservice "github.com/Black-And-White-Club/tcr-bot/app/modules/leaderboard/application"
	leaderboarddb "github.com/Black-And-White-Club/tcr-bot/app/modules/leaderboard/infrastructure/repositories"
	"github.com/Black-And-White-Club/tcr-bot/app/shared/observability"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type testEnv struct {
	bus       eventbus.EventBus
	repo      *leaderboarddb.FakeRepository
	completed <-chan *message.Message
	expired   <-chan *message.Message
	failed    <-chan *message.Message
	done      chan error
}

func startMatcher(t *testing.T, timeout time.Duration) *testEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	repo := leaderboarddb.NewFakeRepository()
	repo.Seed(
		leaderboarddb.LeaderboardEntry{UserID: "alice", TagNumber: 1},
		leaderboarddb.LeaderboardEntry{UserID: "bob", TagNumber: 2},
		leaderboarddb.LeaderboardEntry{UserID: "carol", TagNumber: 3},
	)
	board := leaderboardservice.NewLeaderboardService(nil, repo, observability.NoOpLogger, observability.NoOpMetrics{}, noop.NewTracerProvider().Tracer("test"))

	bus := eventbus.NewInMemory(observability.NoOpLogger)
	env := &testEnv{bus: bus, repo: repo, done: make(chan error, 1)}

	var err error
	env.completed, err = bus.Subscribe(ctx, TopicSwapCompleted)
	require.NoError(t, err)
	env.expired, err = bus.Subscribe(ctx, TopicSwapExpired)
	require.NoError(t, err)
	env.failed, err = bus.Subscribe(ctx, TopicSwapFailed)
	require.NoError(t, err)

	m := NewMatcher(board, bus, bus, observability.NoOpLogger, timeout)
	go func() { env.done <- m.Run(ctx) }()
	select {
	case <-m.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("matcher did not subscribe")
	}

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-env.done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("matcher did not stop")
		}
		_ = bus.Close()
	})
	return env
}

func receive[T any](t *testing.T, ch <-chan *message.Message) T {
	t.Helper()
	var out T
	select {
	case msg := <-ch:
		msg.Ack()
		require.NoError(t, json.Unmarshal(msg.Payload, &out))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return out
}

func tagOf(t *testing.T, repo *leaderboarddb.FakeRepository, user sharedtypes.DiscordID) sharedtypes.TagNumber {
	t.Helper()
	for _, e := range repo.Snapshot() {
		if e.UserID == user {
			return e.TagNumber
		}
	}
	t.Fatalf("no entry for %s", user)
	return 0
}

func TestMatcher_ReciprocalRequestsSwap(t *testing.T) {
	env := startMatcher(t, time.Minute)

	first, err := Submit(env.bus, "alice", 2)
	require.NoError(t, err)
	second, err := Submit(env.bus, "bob", 1)
	require.NoError(t, err)

	done := receive[SwapCompleted](t, env.completed)
	assert.Equal(t, second.RequestID, done.RequestID)
	assert.Equal(t, first.RequestID, done.MatchedRequestID)
	assert.Len(t, done.Changes, 2)

	assert.Equal(t, sharedtypes.TagNumber(2), tagOf(t, env.repo, "alice"))
	assert.Equal(t, sharedtypes.TagNumber(1), tagOf(t, env.repo, "bob"))
	assert.Equal(t, sharedtypes.TagNumber(3), tagOf(t, env.repo, "carol"))
}

func TestMatcher_UnmatchedRequestExpires(t *testing.T) {
	env := startMatcher(t, 50*time.Millisecond)

	req, err := Submit(env.bus, "alice", 3)
	require.NoError(t, err)

	exp := receive[SwapExpired](t, env.expired)
	assert.Equal(t, SwapExpired{RequestID: req.RequestID, RequestorID: "alice", TargetTag: 3}, exp)
	assert.Equal(t, sharedtypes.TagNumber(1), tagOf(t, env.repo, "alice"))
}

func TestMatcher_NonReciprocalRequestsWait(t *testing.T) {
	env := startMatcher(t, 100*time.Millisecond)

	_, err := Submit(env.bus, "alice", 2)
	require.NoError(t, err)
	_, err = Submit(env.bus, "bob", 3)
	require.NoError(t, err)

	receive[SwapExpired](t, env.expired)
	receive[SwapExpired](t, env.expired)
	select {
	case <-env.completed:
		t.Fatal("unexpected swap")
	default:
	}
	assert.Equal(t, sharedtypes.TagNumber(1), tagOf(t, env.repo, "alice"))
}

func TestMatcher_RejectsInvalidRequests(t *testing.T) {
	tests := []struct {
		name       string
		requestor  sharedtypes.DiscordID
		target     sharedtypes.TagNumber
		wantReason string
	}{
		{name: "requestor without tag", requestor: "dave", target: 1, wantReason: "requestor does not hold a tag"},
		{name: "own tag", requestor: "alice", target: 1, wantReason: "cannot swap for your own tag"},
		{name: "unassigned tag", requestor: "alice", target: 42, wantReason: "tag 42 is not assigned"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := startMatcher(t, time.Minute)

			req, err := Submit(env.bus, tt.requestor, tt.target)
			require.NoError(t, err)

			failed := receive[SwapFailed](t, env.failed)
			assert.Equal(t, req.RequestID, failed.RequestID)
			assert.Equal(t, tt.wantReason, failed.Reason)
		})
	}
}

func publishRequest(t *testing.T, env *testEnv, req SwapRequest) {
	t.Helper()
	msg, err := eventbus.NewMessage(req.RequestID, req)
	require.NoError(t, err)
	require.NoError(t, env.bus.Publish(TopicSwapRequested, msg))
}

func TestMatcher_RepeatedRequestIDKeepsOriginalDeadline(t *testing.T) {
	const timeout = 300 * time.Millisecond
	env := startMatcher(t, timeout)

	publishRequest(t, env, SwapRequest{RequestID: "req-1", RequestorID: "alice", TargetTag: 3})
	time.Sleep(timeout / 2)
	publishRequest(t, env, SwapRequest{RequestID: "req-1", RequestorID: "carol", TargetTag: 1})

	exp := receive[SwapExpired](t, env.expired)
	assert.Equal(t, SwapExpired{RequestID: "req-1", RequestorID: "alice", TargetTag: 3}, exp)

	select {
	case msg := <-env.expired:
		t.Fatalf("unexpected second expiry: %s", msg.Payload)
	case msg := <-env.failed:
		t.Fatalf("unexpected failure: %s", msg.Payload)
	case <-time.After(2 * timeout):
	}
	assert.Equal(t, sharedtypes.TagNumber(1), tagOf(t, env.repo, "alice"))
	assert.Equal(t, sharedtypes.TagNumber(3), tagOf(t, env.repo, "carol"))
}

func TestSubmit_Validation(t *testing.T) {
	bus := eventbus.NewInMemory(observability.NoOpLogger)
	defer bus.Close()

	_, err := Submit(bus, "", 1)
	require.Error(t, err)
	_, err = Submit(bus, "alice", 0)
	require.Error(t, err)
}
