package adapters

import (
	"context"
	"errors"

	userdb "github.com/Black-And-White-Club/tcr-bot/app/modules/user/infrastructure/repositories"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	usertypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/user"
)

// UserLookupAdapter adapts the user repository to the round service UserLookup port.
type UserLookupAdapter struct {
	users userdb.Repository
}

// NewUserLookupAdapter constructs a new adapter.
func NewUserLookupAdapter(users userdb.Repository) *UserLookupAdapter {
	return &UserLookupAdapter{users: users}
}

// GetUserRole returns the user's role, or an empty role for unknown users.
func (a *UserLookupAdapter) GetUserRole(ctx context.Context, userID sharedtypes.DiscordID) (usertypes.UserRoleEnum, error) {
	user, err := a.users.GetUserByDiscordID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, userdb.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return user.Role, nil
}
