package userdb

import (
	"context"
	"fmt"
	"time"

	"github.com/Black-And-White-Club/tcr-bot/app/shared/dbutil"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	usertypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/user"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	DB *bun.DB
}

// NewRepository creates a new user repository.
func NewRepository(db *bun.DB) Repository {
	return &Impl{DB: db}
}

var _ Repository = (*Impl)(nil)

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db != nil {
		return db
	}
	return r.DB
}

func (r *Impl) GetUserByDiscordID(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID) (*User, error) {
	user := new(User)
	err := r.resolveDB(db).NewSelect().
		Model(user).
		Where("discord_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if dbutil.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("userdb.GetUserByDiscordID: %w", err)
	}
	return user, nil
}

func (r *Impl) InsertUser(ctx context.Context, db bun.IDB, user *User) error {
	if user.UUID == uuid.Nil {
		user.UUID = uuid.New()
	}
	_, err := r.resolveDB(db).NewInsert().
		Model(user).
		ExcludeColumn("id", "created_at", "updated_at").
		Returning("id, created_at, updated_at").
		Exec(ctx)
	if err != nil {
		if dbutil.IsUniqueViolation(err) {
			return fmt.Errorf("userdb.InsertUser: %w", ErrDuplicate)
		}
		return fmt.Errorf("userdb.InsertUser: %w", err)
	}
	return nil
}

func (r *Impl) UpdateUserRole(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID, role usertypes.UserRoleEnum) error {
	res, err := r.resolveDB(db).NewUpdate().
		Model((*User)(nil)).
		Set("role = ?", role).
		Set("updated_at = ?", time.Now().UTC()).
		Where("discord_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("userdb.UpdateUserRole: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
