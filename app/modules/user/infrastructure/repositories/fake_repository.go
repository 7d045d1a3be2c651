package userdb

import (
	"context"
	"sync"

	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	usertypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/user"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// FakeRepository is an in-memory Repository for tests. Set an Fn field to
// override a method.
type FakeRepository struct {
	mu    sync.Mutex
	users map[sharedtypes.DiscordID]*User

	GetUserByDiscordIDFn func(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID) (*User, error)
	InsertUserFn         func(ctx context.Context, db bun.IDB, user *User) error
	UpdateUserRoleFn     func(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID, role usertypes.UserRoleEnum) error
}

func NewFakeRepository() *FakeRepository {
	return &FakeRepository{users: make(map[sharedtypes.DiscordID]*User)}
}

var _ Repository = (*FakeRepository)(nil)

func (f *FakeRepository) GetUserByDiscordID(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID) (*User, error) {
	if f.GetUserByDiscordIDFn != nil {
		return f.GetUserByDiscordIDFn(ctx, db, userID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *FakeRepository) InsertUser(ctx context.Context, db bun.IDB, user *User) error {
	if f.InsertUserFn != nil {
		return f.InsertUserFn(ctx, db, user)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.users == nil {
		f.users = make(map[sharedtypes.DiscordID]*User)
	}
	if _, ok := f.users[user.UserID]; ok {
		return ErrDuplicate
	}
	if user.UUID == uuid.Nil {
		user.UUID = uuid.New()
	}
	user.ID = int64(len(f.users) + 1)
	cp := *user
	f.users[user.UserID] = &cp
	return nil
}

func (f *FakeRepository) UpdateUserRole(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID, role usertypes.UserRoleEnum) error {
	if f.UpdateUserRoleFn != nil {
		return f.UpdateUserRoleFn(ctx, db, userID, role)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return ErrNoRowsAffected
	}
	u.Role = role
	return nil
}
