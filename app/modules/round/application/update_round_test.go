package roundservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Black-And-White-Club/tcr-bot/app/apperrors"
	roundtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/round"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	usertypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundService_EditRound(t *testing.T) {
	tests := []struct {
		name    string
		state   roundtypes.RoundState
		input   EditRoundInput
		wantErr error
		check   func(t *testing.T, r *roundtypes.Round)
	}{
		{
			name:  "merges provided fields",
			state: roundtypes.RoundStateUpcoming,
			input: EditRoundInput{Title: strPtr("Doubles"), Time: strPtr("7:15PM")},
			check: func(t *testing.T, r *roundtypes.Round) {
				assert.Equal(t, "Doubles", r.Title)
				assert.Equal(t, "Pier Park", r.Location)
				assert.Equal(t, "19:15", r.Time)
				assert.Equal(t, "2025-06-06", r.Date)
			},
		},
		{
			name:  "date in natural language",
			state: roundtypes.RoundStateInProgress,
			input: EditRoundInput{Date: strPtr("tomorrow"), EventType: strPtr("casual")},
			check: func(t *testing.T, r *roundtypes.Round) {
				assert.Equal(t, "2025-06-05", r.Date)
				require.NotNil(t, r.EventType)
				assert.Equal(t, "casual", *r.EventType)
				assert.Equal(t, roundtypes.RoundStateInProgress, r.State)
			},
		},
		{
			name:  "no fields is a no-op",
			state: roundtypes.RoundStateUpcoming,
			input: EditRoundInput{},
			check: func(t *testing.T, r *roundtypes.Round) {
				assert.Equal(t, "Weekly", r.Title)
			},
		},
		{
			name:  "creator may edit",
			state: roundtypes.RoundStateUpcoming,
			input: EditRoundInput{RequesterID: "creator", Location: strPtr("Riverside")},
			check: func(t *testing.T, r *roundtypes.Round) {
				assert.Equal(t, "Riverside", r.Location)
			},
		},
		{
			name:  "editor may edit",
			state: roundtypes.RoundStateUpcoming,
			input: EditRoundInput{RequesterID: "editor", Location: strPtr("Riverside")},
			check: func(t *testing.T, r *roundtypes.Round) {
				assert.Equal(t, "Riverside", r.Location)
			},
		},
		{
			name:    "rattler may not edit someone else's round",
			state:   roundtypes.RoundStateUpcoming,
			input:   EditRoundInput{RequesterID: "rattler", Title: strPtr("Mine now")},
			wantErr: apperrors.ErrAuthorization,
		},
		{
			name:    "blank title",
			state:   roundtypes.RoundStateUpcoming,
			input:   EditRoundInput{Title: strPtr("  ")},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "bad date",
			state:   roundtypes.RoundStateUpcoming,
			input:   EditRoundInput{Date: strPtr("2025-13-40")},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "finalized",
			state:   roundtypes.RoundStateFinalized,
			input:   EditRoundInput{Title: strPtr("Late")},
			wantErr: apperrors.ErrInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.users.roles["editor"] = usertypes.UserRoleEditor
			h.users.roles["rattler"] = usertypes.UserRoleRattler
			id := h.seedRound(tt.state, "p1")

			round, err := h.svc.EditRound(context.Background(), id, tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.NotContains(t, h.rounds.Trace(), "UpdateRoundDetails")
				return
			}
			require.NoError(t, err)
			assert.Len(t, round.Participants, 1)
			tt.check(t, round)

			stored, err := h.svc.GetRound(context.Background(), id)
			require.NoError(t, err)
			tt.check(t, stored)
		})
	}
}

func TestRoundService_EditRound_NotFound(t *testing.T) {
	h := newHarness()
	_, err := h.svc.EditRound(context.Background(), 404, EditRoundInput{Title: strPtr("x")})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRoundService_EditRound_ClosedRoundBeforeAuthorization(t *testing.T) {
	h := newHarness()
	h.users.roles["rattler"] = usertypes.UserRoleRattler
	ctx := context.Background()

	deleted := h.seedRound(roundtypes.RoundStateUpcoming)
	_, err := h.svc.DeleteRound(ctx, deleted, "creator")
	require.NoError(t, err)
	finalized := h.seedRound(roundtypes.RoundStateFinalized)

	for _, id := range []sharedtypes.RoundID{deleted, finalized} {
		_, err := h.svc.EditRound(ctx, id, EditRoundInput{RequesterID: "rattler", Title: strPtr("Mine now")})
		require.ErrorIs(t, err, apperrors.ErrInvalidState)
		assert.NotErrorIs(t, err, apperrors.ErrAuthorization)
	}
}

func TestRoundService_EditRound_RoleLookupFailure(t *testing.T) {
	h := newHarness()
	h.users.err = errors.New("directory offline")
	id := h.seedRound(roundtypes.RoundStateUpcoming)

	_, err := h.svc.EditRound(context.Background(), id, EditRoundInput{RequesterID: "someone", Title: strPtr("x")})
	require.ErrorIs(t, err, apperrors.ErrPersistence)
}

func TestRoundService_UpdateParticipantResponse(t *testing.T) {
	tests := []struct {
		name     string
		state    roundtypes.RoundState
		userID   sharedtypes.DiscordID
		response roundtypes.Response
		wantErr  error
	}{
		{name: "changes response", state: roundtypes.RoundStateUpcoming, userID: "p1", response: roundtypes.ResponseDecline},
		{name: "in progress", state: roundtypes.RoundStateInProgress, userID: "p1", response: roundtypes.ResponseTentative},
		{name: "absent participant", state: roundtypes.RoundStateUpcoming, userID: "ghost", response: roundtypes.ResponseDecline, wantErr: apperrors.ErrNotFound},
		{name: "invalid response", state: roundtypes.RoundStateUpcoming, userID: "p1", response: "NOPE", wantErr: apperrors.ErrValidation},
		{name: "finalized", state: roundtypes.RoundStateFinalized, userID: "p1", response: roundtypes.ResponseDecline, wantErr: apperrors.ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			id := h.seedRound(tt.state, "p1", "p2")

			round, err := h.svc.UpdateParticipantResponse(context.Background(), id, tt.userID, tt.response)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			p, ok := round.FindParticipant(tt.userID)
			require.True(t, ok)
			assert.Equal(t, tt.response, p.Response)
			other, _ := round.FindParticipant("p2")
			assert.Equal(t, roundtypes.ResponseAccept, other.Response)
		})
	}
}

func TestRoundService_EditRound_ReschedulesStart(t *testing.T) {
	h := newHarness()
	id := h.seedRound(roundtypes.RoundStateUpcoming)

	_, err := h.svc.EditRound(context.Background(), id, EditRoundInput{Time: strPtr("20:30")})
	require.NoError(t, err)

	assert.Equal(t, []sharedtypes.RoundID{id}, h.queue.cancelled)
	assert.Equal(t, time.Date(2025, 6, 6, 20, 30, 0, 0, time.UTC), h.queue.scheduled[id])
}

func TestRoundService_EditRound_TitleOnlyKeepsJob(t *testing.T) {
	h := newHarness()
	id := h.seedRound(roundtypes.RoundStateUpcoming)

	_, err := h.svc.EditRound(context.Background(), id, EditRoundInput{Title: strPtr("Singles")})
	require.NoError(t, err)

	assert.Empty(t, h.queue.cancelled)
	assert.Empty(t, h.queue.scheduled)
}
