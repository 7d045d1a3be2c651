package adapters

import (
	"context"
	"errors"
	"testing"
	"time"

	rounddb "github.com/Black-And-White-Club/tcr-bot/app/modules/round/infrastructure/repositories"
	roundtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/round"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/uptrace/bun"
)

func TestRoundStateAdapter_LockRoundState(t *testing.T) {
	t.Run("Round found", func(t *testing.T) {
		fakeRepo := rounddb.NewFakeRepository()
		id := fakeRepo.Seed(rounddb.Round{Title: "Weekly", State: roundtypes.RoundStateInProgress})
		adapter := NewRoundStateAdapter(fakeRepo)

		state, err := adapter.LockRoundState(context.Background(), nil, id)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if state != roundtypes.RoundStateInProgress {
			t.Errorf("expected state %s, got %s", roundtypes.RoundStateInProgress, state)
		}
		if trace := fakeRepo.Trace(); len(trace) != 1 || trace[0] != "GetRoundForUpdate" {
			t.Errorf("expected a locking read, got %v", trace)
		}
	})

	t.Run("Soft-deleted round", func(t *testing.T) {
		fakeRepo := rounddb.NewFakeRepository()
		now := time.Now()
		id := fakeRepo.Seed(rounddb.Round{Title: "Weekly", State: roundtypes.RoundStateUpcoming, DeletedAt: &now})
		adapter := NewRoundStateAdapter(fakeRepo)

		state, err := adapter.LockRoundState(context.Background(), nil, id)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if state != roundtypes.RoundStateDeleted {
			t.Errorf("expected state %s, got %s", roundtypes.RoundStateDeleted, state)
		}
	})

	t.Run("Round not found", func(t *testing.T) {
		adapter := NewRoundStateAdapter(rounddb.NewFakeRepository())

		state, err := adapter.LockRoundState(context.Background(), nil, 9999)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if state != "" {
			t.Errorf("expected empty state, got %s", state)
		}
	})

	t.Run("DB error", func(t *testing.T) {
		fakeRepo := rounddb.NewFakeRepository()
		fakeRepo.GetRoundForUpdateFn = func(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) (*rounddb.Round, error) {
			return nil, errors.New("database connection failed")
		}
		adapter := NewRoundStateAdapter(fakeRepo)

		if _, err := adapter.LockRoundState(context.Background(), nil, 1); err == nil {
			t.Error("expected error, got nil")
		}
	})
}
