package roundservice

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/Black-And-White-Club/tcr-bot/app/apperrors"
	roundtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/round"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundService_SubmitScore(t *testing.T) {
	tests := []struct {
		name    string
		state   roundtypes.RoundState
		prior   bool
		userID  sharedtypes.DiscordID
		wantErr error
	}{
		{name: "in progress", state: roundtypes.RoundStateInProgress, userID: "p1"},
		{name: "non-participant is accepted", state: roundtypes.RoundStateInProgress, userID: "walk-on"},
		{name: "upcoming", state: roundtypes.RoundStateUpcoming, userID: "p1", wantErr: apperrors.ErrInvalidState},
		{name: "finalized", state: roundtypes.RoundStateFinalized, userID: "p1", wantErr: apperrors.ErrInvalidState},
		{name: "second score", state: roundtypes.RoundStateInProgress, prior: true, userID: "p1", wantErr: apperrors.ErrDuplicate},
		{name: "empty user", state: roundtypes.RoundStateInProgress, wantErr: apperrors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			id := h.seedRound(tt.state, "p1")
			if tt.prior {
				_, err := h.svc.SubmitScore(context.Background(), SubmitScoreInput{RoundID: id, UserID: tt.userID, Score: 50})
				require.NoError(t, err)
			}

			round, err := h.svc.SubmitScore(context.Background(), SubmitScoreInput{
				RoundID:   id,
				UserID:    tt.userID,
				Score:     42,
				TagNumber: sharedtypes.TagPtr(4),
			})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, round.Scores, 1)
			assert.Equal(t, roundtypes.ScoreEntry{UserID: tt.userID, Score: 42, TagNumber: sharedtypes.TagPtr(4)}, round.Scores[0])
		})
	}
}

func TestRoundService_SubmitScore_DeletedRound(t *testing.T) {
	h := newHarness()
	id := h.seedRound(roundtypes.RoundStateUpcoming)
	_, err := h.svc.DeleteRound(context.Background(), id, "creator")
	require.NoError(t, err)

	_, err = h.svc.SubmitScore(context.Background(), SubmitScoreInput{RoundID: id, UserID: "p1", Score: 42})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRoundService_SubmitScore_Concurrent(t *testing.T) {
	h := newHarness()
	id := h.seedRound(roundtypes.RoundStateInProgress)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		user := sharedtypes.DiscordID(fmt.Sprintf("p%d", i))
		for j := 0; j < 2; j++ {
			go func() {
				defer wg.Done()
				_, _ = h.svc.SubmitScore(context.Background(), SubmitScoreInput{RoundID: id, UserID: user, Score: 40})
			}()
		}
	}
	wg.Wait()

	round, err := h.svc.GetRound(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, round.Scores, 10)
}

func TestRoundService_LedgerWritesWaitForStart(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	upcoming := h.seedRound(roundtypes.RoundStateUpcoming, "p1")
	finalized := h.seedRound(roundtypes.RoundStateFinalized, "p1")
	batch := []sharedtypes.ScoreInfo{{UserID: "p1", Score: 55}}

	require.ErrorIs(t, h.ledger.ProcessScores(ctx, upcoming, batch), apperrors.ErrInvalidState)
	require.ErrorIs(t, h.ledger.ProcessScores(ctx, finalized, batch), apperrors.ErrInvalidState)
	require.ErrorIs(t, h.ledger.ProcessScores(ctx, 9999, batch), apperrors.ErrNotFound)

	_, err := h.svc.StartRound(ctx, upcoming)
	require.NoError(t, err)
	round, err := h.svc.SubmitScore(ctx, SubmitScoreInput{RoundID: upcoming, UserID: "p1", Score: 60})
	require.NoError(t, err)
	require.Len(t, round.Scores, 1)
	assert.Equal(t, sharedtypes.Score(60), round.Scores[0].Score)
}
