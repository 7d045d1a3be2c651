package leaderboarddb

import (
	"context"
	"fmt"
	"time"

	"github.com/Black-And-White-Club/tcr-bot/app/shared/dbutil"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/uptrace/bun"
)

// Impl is the bun implementation of Repository.
type Impl struct {
	DB *bun.DB
}

// NewRepository creates a leaderboard repository on db.
func NewRepository(db *bun.DB) Repository {
	return &Impl{DB: db}
}

var _ Repository = (*Impl)(nil)

const ladderLockKey = "leaderboard"

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db != nil {
		return db
	}
	return r.DB
}

func (r *Impl) AcquireLadderLock(ctx context.Context, db bun.IDB) error {
	_, err := r.resolveDB(db).NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", ladderLockKey).Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaderboarddb.AcquireLadderLock: %w", err)
	}
	return nil
}

func (r *Impl) GetEntryByUserID(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID) (*LeaderboardEntry, error) {
	entry := new(LeaderboardEntry)
	err := r.resolveDB(db).NewSelect().
		Model(entry).
		Where("discord_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if dbutil.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("leaderboarddb.GetEntryByUserID: %w", err)
	}
	return entry, nil
}

func (r *Impl) LockEntryByUserID(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID) (*LeaderboardEntry, error) {
	entry := new(LeaderboardEntry)
	err := r.resolveDB(db).NewSelect().
		Model(entry).
		Where("discord_id = ?", userID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if dbutil.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("leaderboarddb.LockEntryByUserID: %w", err)
	}
	return entry, nil
}

func (r *Impl) GetEntryByTagNumber(ctx context.Context, db bun.IDB, tag sharedtypes.TagNumber) (*LeaderboardEntry, error) {
	entry := new(LeaderboardEntry)
	err := r.resolveDB(db).NewSelect().
		Model(entry).
		Where("tag_number = ?", tag).
		Scan(ctx)
	if err != nil {
		if dbutil.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("leaderboarddb.GetEntryByTagNumber: %w", err)
	}
	return entry, nil
}

func (r *Impl) ListEntries(ctx context.Context, db bun.IDB, offset, limit int) ([]LeaderboardEntry, error) {
	var entries []LeaderboardEntry
	err := r.resolveDB(db).NewSelect().
		Model(&entries).
		OrderExpr("tag_number ASC").
		Offset(offset).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaderboarddb.ListEntries: %w", err)
	}
	return entries, nil
}

func (r *Impl) InsertEntry(ctx context.Context, db bun.IDB, entry *LeaderboardEntry) error {
	_, err := r.resolveDB(db).NewInsert().
		Model(entry).
		ExcludeColumn("id", "created_at", "updated_at").
		Returning("id, created_at, updated_at").
		Exec(ctx)
	if err != nil {
		return classifyWriteError("leaderboarddb.InsertEntry", err)
	}
	return nil
}

func (r *Impl) UpdateEntry(ctx context.Context, db bun.IDB, entry *LeaderboardEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	res, err := r.resolveDB(db).NewUpdate().
		Model(entry).
		Column("tag_number", "last_played", "duration_held", "updated_at").
		Where("discord_id = ?", entry.UserID).
		Exec(ctx)
	if err != nil {
		return classifyWriteError("leaderboarddb.UpdateEntry", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// SwapTags relies on the tag_number constraint being DEFERRABLE so that the
// single UPDATE is checked once the statement completes.
func (r *Impl) SwapTags(ctx context.Context, db bun.IDB, a, b sharedtypes.DiscordID) error {
	res, err := r.resolveDB(db).NewRaw(`
		UPDATE leaderboard AS lb
		SET tag_number = other.tag_number, updated_at = current_timestamp
		FROM leaderboard AS other
		WHERE lb.discord_id IN (?, ?)
		  AND other.discord_id IN (?, ?)
		  AND other.discord_id <> lb.discord_id`,
		a, b, a, b,
	).Exec(ctx)
	if err != nil {
		return classifyWriteError("leaderboarddb.SwapTags", err)
	}
	if n, err := res.RowsAffected(); err == nil && n != 2 {
		return ErrNoRowsAffected
	}
	return nil
}

func classifyWriteError(op string, err error) error {
	if dbutil.IsUniqueViolation(err) {
		switch dbutil.ConstraintName(err) {
		case "leaderboard_discord_id_key":
			return fmt.Errorf("%s: %w", op, ErrUserConflict)
		default:
			return fmt.Errorf("%s: %w", op, ErrTagConflict)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
