package scoredb

import (
	"context"
	"sort"
	"sync"

	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/uptrace/bun"
)

type scoreKey struct {
	round sharedtypes.RoundID
	user  sharedtypes.DiscordID
}

// FakeRepository is an in-memory Repository. Fn fields override the
// in-memory behaviour.
type FakeRepository struct {
	mu     sync.Mutex
	rows   map[scoreKey]*Score
	nextID int64

	GetScoreFn             func(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID, userID sharedtypes.DiscordID) (*Score, error)
	GetScoresForRoundFn    func(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) ([]Score, error)
	InsertScoresFn         func(ctx context.Context, db bun.IDB, scores []Score) error
	UpdateScoreFn          func(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID, userID sharedtypes.DiscordID, score sharedtypes.Score, tag *sharedtypes.TagNumber) error
	DeleteScoresForRoundFn func(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) (int, error)
}

func NewFakeRepository() *FakeRepository {
	return &FakeRepository{rows: make(map[scoreKey]*Score)}
}

var _ Repository = (*FakeRepository)(nil)

func (f *FakeRepository) ensure() {
	if f.rows == nil {
		f.rows = make(map[scoreKey]*Score)
	}
}

func (f *FakeRepository) GetScore(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID, userID sharedtypes.DiscordID) (*Score, error) {
	if f.GetScoreFn != nil {
		return f.GetScoreFn(ctx, db, roundID, userID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	row, ok := f.rows[scoreKey{roundID, userID}]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *FakeRepository) GetScoresForRound(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) ([]Score, error) {
	if f.GetScoresForRoundFn != nil {
		return f.GetScoresForRoundFn(ctx, db, roundID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	out := []Score{}
	for k, row := range f.rows {
		if k.round == roundID {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *FakeRepository) InsertScores(ctx context.Context, db bun.IDB, scores []Score) error {
	if f.InsertScoresFn != nil {
		return f.InsertScoresFn(ctx, db, scores)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	seen := make(map[scoreKey]bool, len(scores))
	for _, s := range scores {
		k := scoreKey{s.RoundID, s.UserID}
		if _, exists := f.rows[k]; exists || seen[k] {
			return ErrDuplicate
		}
		seen[k] = true
	}
	for i := range scores {
		f.nextID++
		scores[i].ID = f.nextID
		cp := scores[i]
		f.rows[scoreKey{cp.RoundID, cp.UserID}] = &cp
	}
	return nil
}

func (f *FakeRepository) UpdateScore(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID, userID sharedtypes.DiscordID, score sharedtypes.Score, tag *sharedtypes.TagNumber) error {
	if f.UpdateScoreFn != nil {
		return f.UpdateScoreFn(ctx, db, roundID, userID, score, tag)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	row, ok := f.rows[scoreKey{roundID, userID}]
	if !ok {
		return ErrNoRowsAffected
	}
	row.Score = score
	row.Source = SourceCorrection
	if tag != nil {
		t := *tag
		row.TagNumber = &t
	}
	return nil
}

func (f *FakeRepository) DeleteScoresForRound(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) (int, error) {
	if f.DeleteScoresForRoundFn != nil {
		return f.DeleteScoresForRoundFn(ctx, db, roundID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	n := 0
	for k := range f.rows {
		if k.round == roundID {
			delete(f.rows, k)
			n++
		}
	}
	return n, nil
}
