package userservice

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Black-And-White-Club/tcr-bot/app/apperrors"
	userdb "github.com/Black-And-White-Club/tcr-bot/app/modules/user/infrastructure/repositories"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	usertypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/user"
)

// GetUserByDiscordID returns the user, or nil if not registered.
func (s *UserService) GetUserByDiscordID(ctx context.Context, userID sharedtypes.DiscordID) (*usertypes.UserData, error) {
	const op = "GetUserByDiscordID"
	if userID == "" {
		return nil, apperrors.EmptyIdentifier(op)
	}
	user, err := s.repo.GetUserByDiscordID(ctx, nil, userID)
	if errors.Is(err, userdb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Persistence(op, err)
	}

	data := user.ToData()
	if s.tags != nil {
		tag, err := s.tags.TagForUser(ctx, userID)
		if err != nil {
			s.logger.WarnContext(ctx, "Tag lookup failed",
				slog.String("user_id", string(userID)),
				slog.Any("error", err),
			)
		} else {
			data.TagNumber = tag
		}
	}
	return &data, nil
}

// GetUserRole returns the user's role, or an empty role if not registered.
func (s *UserService) GetUserRole(ctx context.Context, userID sharedtypes.DiscordID) (usertypes.UserRoleEnum, error) {
	user, err := s.repo.GetUserByDiscordID(ctx, nil, userID)
	if errors.Is(err, userdb.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", apperrors.Persistence("GetUserRole", err)
	}
	return user.Role, nil
}

// CreateUser registers a new user. An empty role defaults to Rattler.
func (s *UserService) CreateUser(ctx context.Context, data usertypes.UserData) (*usertypes.UserData, error) {
	const op = "CreateUser"
	return withTelemetry(s, ctx, op, data.UserID, func(ctx context.Context) (*usertypes.UserData, error) {
		if data.UserID == "" {
			return nil, apperrors.EmptyIdentifier(op)
		}
		name := strings.TrimSpace(data.Name)
		if name == "" {
			return nil, apperrors.Validation(op, "name is required")
		}
		role := data.Role
		if role == "" {
			role = usertypes.UserRoleRattler
		}
		if !role.IsValid() {
			return nil, apperrors.Validation(op, "invalid role %q", role)
		}

		user := &userdb.User{UserID: data.UserID, Name: name, Role: role}
		if err := s.repo.InsertUser(ctx, nil, user); err != nil {
			if errors.Is(err, userdb.ErrDuplicate) {
				return nil, apperrors.Duplicate(op, "user %s already exists", data.UserID)
			}
			return nil, apperrors.Persistence(op, err)
		}

		out := user.ToData()
		return &out, nil
	})
}

// UpdateUserRole changes targetID's role. Only admins may do this.
func (s *UserService) UpdateUserRole(ctx context.Context, requesterID, targetID sharedtypes.DiscordID, role usertypes.UserRoleEnum) error {
	const op = "UpdateUserRole"
	_, err := withTelemetry(s, ctx, op, targetID, func(ctx context.Context) (struct{}, error) {
		if requesterID == "" || targetID == "" {
			return struct{}{}, apperrors.EmptyIdentifier(op)
		}
		if !role.IsValid() {
			return struct{}{}, apperrors.Validation(op, "invalid role %q", role)
		}

		requesterRole, err := s.GetUserRole(ctx, requesterID)
		if err != nil {
			return struct{}{}, err
		}
		if requesterRole != usertypes.UserRoleAdmin {
			return struct{}{}, apperrors.Authorization(op, "only admins can change roles")
		}

		err = s.repo.UpdateUserRole(ctx, nil, targetID, role)
		if errors.Is(err, userdb.ErrNoRowsAffected) {
			return struct{}{}, apperrors.NotFound(op, "user %s not found", targetID)
		}
		if err != nil {
			return struct{}{}, apperrors.Persistence(op, err)
		}
		return struct{}{}, nil
	})
	return err
}
