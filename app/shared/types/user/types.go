package usertypes

import sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"

// UserRoleEnum is a user's permission level.
type UserRoleEnum string

const (
	UserRoleRattler UserRoleEnum = "Rattler"
	UserRoleEditor  UserRoleEnum = "Editor"
	UserRoleAdmin   UserRoleEnum = "Admin"
)

// IsValid reports whether the role is known.
func (r UserRoleEnum) IsValid() bool {
	switch r {
	case UserRoleRattler, UserRoleEditor, UserRoleAdmin:
		return true
	}
	return false
}

// CanManageRounds reports whether the role may edit rounds it did not create.
func (r UserRoleEnum) CanManageRounds() bool {
	return r == UserRoleAdmin || r == UserRoleEditor
}

// UserData is the directory view of a user.
type UserData struct {
	UserID    sharedtypes.DiscordID  `json:"user_id"`
	Name      string                 `json:"name"`
	Role      UserRoleEnum           `json:"role"`
	TagNumber *sharedtypes.TagNumber `json:"tag_number,omitempty"`
}
