package score_test

import (
	"testing"

	"github.com/Black-And-White-Club/tcr-bot/app/apperrors"
	roundservice "github.com/Black-And-White-Club/tcr-bot/app/modules/round/application"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/Black-And-White-Club/tcr-bot/integration_tests/testutils"
	datagen "github.com/Black-And-White-Club/tcr-bot/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduledRound(t *testing.T, env *testutils.Env, gen *datagen.DataGenerator) sharedtypes.RoundID {
	t.Helper()
	round, err := env.Rounds.ScheduleRound(env.Ctx, roundservice.ScheduleRoundInput{
		Title:     "Ledger Night",
		Location:  "Ridgeview",
		Date:      "2099-06-06",
		Time:      "18:00",
		CreatorID: gen.DiscordID(),
	})
	require.NoError(t, err)
	return round.ID
}

func startedRound(t *testing.T, env *testutils.Env, gen *datagen.DataGenerator) sharedtypes.RoundID {
	t.Helper()
	id := scheduledRound(t, env, gen)
	_, err := env.Rounds.StartRound(env.Ctx, id)
	require.NoError(t, err)
	return id
}

func TestProcessScores_RecordsRound(t *testing.T) {
	env := testutils.NewEnv(t)
	gen := datagen.NewDataGenerator()
	roundID := startedRound(t, env, gen)

	in := []sharedtypes.ScoreInfo{
		{UserID: gen.DiscordID(), Score: gen.Score()},
		{UserID: gen.DiscordID(), Score: gen.Score(), TagNumber: sharedtypes.TagPtr(4)},
	}
	require.NoError(t, env.Scores.ProcessScores(env.Ctx, roundID, in))

	got, err := env.Scores.GetScoresForRound(env.Ctx, roundID)
	require.NoError(t, err)
	assert.ElementsMatch(t, in, got)

	other, err := env.Scores.GetScoresForRound(env.Ctx, roundID+1)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestProcessScores_RequiresRoundInProgress(t *testing.T) {
	env := testutils.NewEnv(t)
	gen := datagen.NewDataGenerator()
	player := gen.DiscordID()
	batch := []sharedtypes.ScoreInfo{{UserID: player, Score: 4}}

	upcoming := scheduledRound(t, env, gen)
	require.ErrorIs(t, env.Scores.ProcessScores(env.Ctx, upcoming, batch), apperrors.ErrInvalidState)
	require.ErrorIs(t, env.Scores.ProcessScores(env.Ctx, 9999, batch), apperrors.ErrNotFound)

	// Nothing was stored, so the player's real submission still goes through.
	_, err := env.Rounds.StartRound(env.Ctx, upcoming)
	require.NoError(t, err)
	_, err = env.Rounds.SubmitScore(env.Ctx, roundservice.SubmitScoreInput{RoundID: upcoming, UserID: player, Score: 60})
	require.NoError(t, err)

	_, err = env.Rounds.FinalizeAndProcessScores(env.Ctx, upcoming)
	require.NoError(t, err)
	require.ErrorIs(t, env.Scores.ProcessScores(env.Ctx, upcoming, []sharedtypes.ScoreInfo{{UserID: gen.DiscordID(), Score: 1}}), apperrors.ErrInvalidState)
	require.ErrorIs(t, env.Scores.UpdateScore(env.Ctx, upcoming, player, 50, nil), apperrors.ErrInvalidState)
}

func TestProcessScores_RejectsDuplicates(t *testing.T) {
	env := testutils.NewEnv(t)
	gen := datagen.NewDataGenerator()
	roundID := startedRound(t, env, gen)
	alice, bob := gen.DiscordID(), gen.DiscordID()

	err := env.Scores.ProcessScores(env.Ctx, roundID, []sharedtypes.ScoreInfo{
		{UserID: alice, Score: 3},
		{UserID: alice, Score: 4},
	})
	require.ErrorIs(t, err, apperrors.ErrDuplicate)

	scores, err := env.Scores.GetScoresForRound(env.Ctx, roundID)
	require.NoError(t, err)
	assert.Empty(t, scores)

	require.NoError(t, env.Scores.ProcessScores(env.Ctx, roundID, []sharedtypes.ScoreInfo{{UserID: alice, Score: 3}}))

	// A batch with one repeat is rejected whole.
	err = env.Scores.ProcessScores(env.Ctx, roundID, []sharedtypes.ScoreInfo{
		{UserID: bob, Score: 5},
		{UserID: alice, Score: 2},
	})
	require.ErrorIs(t, err, apperrors.ErrDuplicate)

	bobScore, err := env.Scores.GetUserScore(env.Ctx, bob, roundID)
	require.NoError(t, err)
	assert.Nil(t, bobScore)
}

func TestUpdateScore(t *testing.T) {
	env := testutils.NewEnv(t)
	gen := datagen.NewDataGenerator()
	roundID := startedRound(t, env, gen)
	player := gen.DiscordID()

	err := env.Scores.UpdateScore(env.Ctx, roundID, player, 2, nil)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, env.Scores.ProcessScores(env.Ctx, roundID, []sharedtypes.ScoreInfo{
		{UserID: player, Score: 9, TagNumber: sharedtypes.TagPtr(11)},
	}))
	require.NoError(t, env.Scores.UpdateScore(env.Ctx, roundID, player, 6, nil))

	got, err := env.Scores.GetUserScore(env.Ctx, player, roundID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sharedtypes.Score(6), got.Score)
	require.NotNil(t, got.TagNumber)
	assert.Equal(t, sharedtypes.TagNumber(11), *got.TagNumber)
}
