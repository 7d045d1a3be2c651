package userdb

import (
	"context"

	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	usertypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/user"
	"github.com/uptrace/bun"
)

// Repository defines the contract for user persistence.
type Repository interface {
	GetUserByDiscordID(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID) (*User, error)
	InsertUser(ctx context.Context, db bun.IDB, user *User) error
	UpdateUserRole(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID, role usertypes.UserRoleEnum) error
}
