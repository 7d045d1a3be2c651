package scoredb

import (
	"context"
	"fmt"
	"time"

	"github.com/Black-And-White-Club/tcr-bot/app/shared/dbutil"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/uptrace/bun"
)

type Impl struct {
	DB *bun.DB
}

// NewRepository creates a score ledger repository on db.
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

func (r *Impl) GetScore(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID, userID sharedtypes.DiscordID) (*Score, error) {
	score := new(Score)
	err := r.resolveDB(db).NewSelect().
		Model(score).
		Where("round_id = ?", roundID).
		Where("discord_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if dbutil.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scoredb.GetScore: %w", err)
	}
	return score, nil
}

func (r *Impl) GetScoresForRound(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) ([]Score, error) {
	var scores []Score
	err := r.resolveDB(db).NewSelect().
		Model(&scores).
		Where("round_id = ?", roundID).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scoredb.GetScoresForRound: %w", err)
	}
	return scores, nil
}

func (r *Impl) InsertScores(ctx context.Context, db bun.IDB, scores []Score) error {
	if len(scores) == 0 {
		return nil
	}
	_, err := r.resolveDB(db).NewInsert().
		Model(&scores).
		ExcludeColumn("id", "created_at", "updated_at").
		Returning("id, created_at, updated_at").
		Exec(ctx)
	if err != nil {
		if dbutil.IsUniqueViolation(err) {
			return fmt.Errorf("scoredb.InsertScores: %w", ErrDuplicate)
		}
		return fmt.Errorf("scoredb.InsertScores: %w", err)
	}
	return nil
}

func (r *Impl) UpdateScore(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID, userID sharedtypes.DiscordID, score sharedtypes.Score, tag *sharedtypes.TagNumber) error {
	q := r.resolveDB(db).NewUpdate().
		Model((*Score)(nil)).
		Set("score = ?", score).
		Set("source = ?", SourceCorrection).
		Set("updated_at = ?", time.Now().UTC()).
		Where("round_id = ?", roundID).
		Where("discord_id = ?", userID)
	if tag != nil {
		q = q.Set("tag_number = ?", *tag)
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("scoredb.UpdateScore: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *Impl) DeleteScoresForRound(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) (int, error) {
	res, err := r.resolveDB(db).NewDelete().
		Model((*Score)(nil)).
		Where("round_id = ?", roundID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("scoredb.DeleteScoresForRound: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
