package rounddb

import (
	"context"
	"fmt"
	"time"

	"github.com/Black-And-White-Club/tcr-bot/app/shared/dbutil"
	roundtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/round"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/uptrace/bun"
)

// Impl implements Repository with bun.
type Impl struct {
	DB *bun.DB
}

// NewRepository creates a round repository on db.
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

func (r *Impl) CreateRound(ctx context.Context, db bun.IDB, round *Round) error {
	_, err := r.resolveDB(db).NewInsert().
		Model(round).
		ExcludeColumn("id", "created_at", "updated_at").
		Returning("id, created_at, updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rounddb.CreateRound: %w", err)
	}
	return nil
}

func (r *Impl) GetRound(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) (*Round, error) {
	return r.getRound(ctx, r.resolveDB(db), roundID, false)
}

func (r *Impl) GetRoundForUpdate(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) (*Round, error) {
	return r.getRound(ctx, r.resolveDB(db), roundID, true)
}

func (r *Impl) getRound(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID, lock bool) (*Round, error) {
	round := new(Round)
	q := db.NewSelect().Model(round).Where("r.id = ?", roundID)
	if lock {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		if dbutil.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("rounddb.GetRound: %w", err)
	}

	participants, err := r.participants(ctx, db, []sharedtypes.RoundID{roundID})
	if err != nil {
		return nil, err
	}
	round.Participants = participants[roundID]
	return round, nil
}

func (r *Impl) participants(ctx context.Context, db bun.IDB, ids []sharedtypes.RoundID) (map[sharedtypes.RoundID][]Participant, error) {
	out := make(map[sharedtypes.RoundID][]Participant, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []Participant
	err := db.NewSelect().
		Model(&rows).
		Where("rp.round_id IN (?)", bun.In(ids)).
		OrderExpr("rp.round_id ASC, rp.position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("rounddb.participants: %w", err)
	}
	for _, p := range rows {
		out[p.RoundID] = append(out[p.RoundID], p)
	}
	return out, nil
}

func (r *Impl) ListRounds(ctx context.Context, db bun.IDB, limit, offset int) ([]Round, error) {
	idb := r.resolveDB(db)
	var rounds []Round
	err := idb.NewSelect().
		Model(&rounds).
		Where("r.deleted_at IS NULL").
		OrderExpr("r.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("rounddb.ListRounds: %w", err)
	}

	ids := make([]sharedtypes.RoundID, 0, len(rounds))
	for _, rd := range rounds {
		ids = append(ids, rd.ID)
	}
	participants, err := r.participants(ctx, idb, ids)
	if err != nil {
		return nil, err
	}
	for i := range rounds {
		rounds[i].Participants = participants[rounds[i].ID]
	}
	return rounds, nil
}

func (r *Impl) UpdateRoundDetails(ctx context.Context, db bun.IDB, round *Round) error {
	round.UpdatedAt = time.Now().UTC()
	res, err := r.resolveDB(db).NewUpdate().
		Model(round).
		Column("title", "location", "event_type", "date", "time", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rounddb.UpdateRoundDetails: %w", err)
	}
	return expectRows(res)
}

func (r *Impl) UpdateRoundState(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID, from, to roundtypes.RoundState) error {
	res, err := r.resolveDB(db).NewUpdate().
		Model((*Round)(nil)).
		Set("state = ?", to).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", roundID).
		Where("state = ?", from).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rounddb.UpdateRoundState: %w", err)
	}
	return expectRows(res)
}

func (r *Impl) FinalizeRound(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) (bool, error) {
	res, err := r.resolveDB(db).NewUpdate().
		Model((*Round)(nil)).
		Set("finalized = TRUE").
		Set("state = ?", roundtypes.RoundStateFinalized).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", roundID).
		Where("finalized = FALSE").
		Where("deleted_at IS NULL").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("rounddb.FinalizeRound: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rounddb.FinalizeRound: %w", err)
	}
	return n == 1, nil
}

func (r *Impl) SoftDeleteRound(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) error {
	now := time.Now().UTC()
	res, err := r.resolveDB(db).NewUpdate().
		Model((*Round)(nil)).
		Set("state = ?", roundtypes.RoundStateDeleted).
		Set("deleted_at = ?", now).
		Set("updated_at = ?", now).
		Where("id = ?", roundID).
		Where("deleted_at IS NULL").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rounddb.SoftDeleteRound: %w", err)
	}
	return expectRows(res)
}

func (r *Impl) AddParticipant(ctx context.Context, db bun.IDB, participant *Participant) error {
	_, err := r.resolveDB(db).NewInsert().
		Model(participant).
		ExcludeColumn("id", "joined_at").
		Returning("id, joined_at").
		Exec(ctx)
	if err != nil {
		if dbutil.IsUniqueViolation(err) {
			return fmt.Errorf("rounddb.AddParticipant: %w", ErrDuplicateParticipant)
		}
		return fmt.Errorf("rounddb.AddParticipant: %w", err)
	}
	return nil
}

func (r *Impl) UpdateParticipantResponse(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID, userID sharedtypes.DiscordID, response roundtypes.Response) error {
	res, err := r.resolveDB(db).NewUpdate().
		Model((*Participant)(nil)).
		Set("response = ?", response).
		Where("round_id = ?", roundID).
		Where("discord_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rounddb.UpdateParticipantResponse: %w", err)
	}
	return expectRows(res)
}

func (r *Impl) DeleteParticipants(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) (int, error) {
	res, err := r.resolveDB(db).NewDelete().
		Model((*Participant)(nil)).
		Where("round_id = ?", roundID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("rounddb.DeleteParticipants: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func expectRows(res rowsAffecter) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
