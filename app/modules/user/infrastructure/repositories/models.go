package userdb

import (
	"time"

	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	usertypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/user"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is a registered player.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`
	ID            int64                  `bun:"id,pk,autoincrement" json:"id"`
	UUID          uuid.UUID              `bun:"uuid,type:uuid,notnull" json:"uuid"`
	UserID        sharedtypes.DiscordID  `bun:"discord_id,notnull" json:"discord_id"`
	Name          string                 `bun:"name,notnull" json:"name"`
	Role          usertypes.UserRoleEnum `bun:"role,notnull" json:"role"`
	CreatedAt     time.Time              `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time              `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// ToData converts the row into the directory view. The tag is filled in by
// the service from the leaderboard.
func (u *User) ToData() usertypes.UserData {
	return usertypes.UserData{
		UserID: u.UserID,
		Name:   u.Name,
		Role:   u.Role,
	}
}
