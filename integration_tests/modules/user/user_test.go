package user_test

import (
	"testing"

	"github.com/Black-And-White-Club/tcr-bot/app/apperrors"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	usertypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/user"
	"github.com/Black-And-White-Club/tcr-bot/integration_tests/testutils"
	datagen "github.com/Black-And-White-Club/tcr-bot/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	env := testutils.NewEnv(t)
	u := datagen.NewDataGenerator().User()

	created, err := env.Users.CreateUser(env.Ctx, usertypes.UserData{UserID: u.UserID, Name: u.Name})
	require.NoError(t, err)
	assert.Equal(t, usertypes.UserRoleRattler, created.Role)

	_, err = env.Users.CreateUser(env.Ctx, u)
	require.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestGetUserByDiscordID_IncludesTag(t *testing.T) {
	env := testutils.NewEnv(t)
	gen := datagen.NewDataGenerator()
	u := gen.User()

	missing, err := env.Users.GetUserByDiscordID(env.Ctx, u.UserID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = env.Users.CreateUser(env.Ctx, u)
	require.NoError(t, err)
	got, err := env.Users.GetUserByDiscordID(env.Ctx, u.UserID)
	require.NoError(t, err)
	assert.Nil(t, got.TagNumber)

	_, err = env.Leaderboard.LinkTag(env.Ctx, u.UserID, 13)
	require.NoError(t, err)
	got, err = env.Users.GetUserByDiscordID(env.Ctx, u.UserID)
	require.NoError(t, err)
	require.NotNil(t, got.TagNumber)
	assert.Equal(t, sharedtypes.TagNumber(13), *got.TagNumber)
}

func TestUpdateUserRole(t *testing.T) {
	env := testutils.NewEnv(t)
	gen := datagen.NewDataGenerator()
	admin, player := gen.User(), gen.User()
	admin.Role = usertypes.UserRoleAdmin

	for _, u := range []usertypes.UserData{admin, player} {
		_, err := env.Users.CreateUser(env.Ctx, u)
		require.NoError(t, err)
	}

	err := env.Users.UpdateUserRole(env.Ctx, player.UserID, admin.UserID, usertypes.UserRoleRattler)
	require.ErrorIs(t, err, apperrors.ErrAuthorization)

	require.NoError(t, env.Users.UpdateUserRole(env.Ctx, admin.UserID, player.UserID, usertypes.UserRoleEditor))
	role, err := env.Users.GetUserRole(env.Ctx, player.UserID)
	require.NoError(t, err)
	assert.Equal(t, usertypes.UserRoleEditor, role)

	err = env.Users.UpdateUserRole(env.Ctx, admin.UserID, gen.DiscordID(), usertypes.UserRoleEditor)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
