package rounddb

import (
	"context"
	"sort"
	"sync"
	"time"

	roundtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/round"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/uptrace/bun"
)

// FakeRepository is an in-memory Repository. Each Fn field, when set,
// replaces the in-memory behaviour of that method.
type FakeRepository struct {
	mu     sync.Mutex
	rounds map[sharedtypes.RoundID]*Round
	nextID sharedtypes.RoundID
	trace  []string

	CreateRoundFn               func(ctx context.Context, db bun.IDB, round *Round) error
	GetRoundFn                  func(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) (*Round, error)
	GetRoundForUpdateFn         func(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) (*Round, error)
	ListRoundsFn                func(ctx context.Context, db bun.IDB, limit, offset int) ([]Round, error)
	UpdateRoundDetailsFn        func(ctx context.Context, db bun.IDB, round *Round) error
	UpdateRoundStateFn          func(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID, from, to roundtypes.RoundState) error
	FinalizeRoundFn             func(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) (bool, error)
	SoftDeleteRoundFn           func(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) error
	AddParticipantFn            func(ctx context.Context, db bun.IDB, participant *Participant) error
	UpdateParticipantResponseFn func(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID, userID sharedtypes.DiscordID, response roundtypes.Response) error
	DeleteParticipantsFn        func(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) (int, error)
}

func NewFakeRepository() *FakeRepository {
	return &FakeRepository{rounds: make(map[sharedtypes.RoundID]*Round)}
}

var _ Repository = (*FakeRepository)(nil)

func (f *FakeRepository) record(step string) {
	f.mu.Lock()
	f.trace = append(f.trace, step)
	f.mu.Unlock()
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeRepository) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Seed stores a round as-is, assigning an ID when it has none.
func (f *FakeRepository) Seed(round Round) sharedtypes.RoundID {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	if round.ID == 0 {
		f.nextID++
		round.ID = f.nextID
	} else if round.ID > f.nextID {
		f.nextID = round.ID
	}
	f.rounds[round.ID] = clone(&round)
	return round.ID
}

func (f *FakeRepository) ensure() {
	if f.rounds == nil {
		f.rounds = make(map[sharedtypes.RoundID]*Round)
	}
}

func clone(r *Round) *Round {
	cp := *r
	cp.Participants = append([]Participant(nil), r.Participants...)
	return &cp
}

func (f *FakeRepository) CreateRound(ctx context.Context, db bun.IDB, round *Round) error {
	f.record("CreateRound")
	if f.CreateRoundFn != nil {
		return f.CreateRoundFn(ctx, db, round)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	f.nextID++
	round.ID = f.nextID
	now := time.Now().UTC()
	round.CreatedAt, round.UpdatedAt = now, now
	f.rounds[round.ID] = clone(round)
	return nil
}

func (f *FakeRepository) GetRound(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) (*Round, error) {
	f.record("GetRound")
	if f.GetRoundFn != nil {
		return f.GetRoundFn(ctx, db, roundID)
	}
	return f.get(roundID)
}

func (f *FakeRepository) GetRoundForUpdate(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) (*Round, error) {
	f.record("GetRoundForUpdate")
	if f.GetRoundForUpdateFn != nil {
		return f.GetRoundForUpdateFn(ctx, db, roundID)
	}
	return f.get(roundID)
}

func (f *FakeRepository) get(roundID sharedtypes.RoundID) (*Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	r, ok := f.rounds[roundID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(r), nil
}

func (f *FakeRepository) ListRounds(ctx context.Context, db bun.IDB, limit, offset int) ([]Round, error) {
	f.record("ListRounds")
	if f.ListRoundsFn != nil {
		return f.ListRoundsFn(ctx, db, limit, offset)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	out := []Round{}
	for _, r := range f.rounds {
		if r.DeletedAt == nil {
			out = append(out, *clone(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset >= len(out) {
		return []Round{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *FakeRepository) UpdateRoundDetails(ctx context.Context, db bun.IDB, round *Round) error {
	f.record("UpdateRoundDetails")
	if f.UpdateRoundDetailsFn != nil {
		return f.UpdateRoundDetailsFn(ctx, db, round)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	r, ok := f.rounds[round.ID]
	if !ok {
		return ErrNoRowsAffected
	}
	r.Title = round.Title
	r.Location = round.Location
	r.EventType = round.EventType
	r.Date = round.Date
	r.Time = round.Time
	r.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *FakeRepository) UpdateRoundState(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID, from, to roundtypes.RoundState) error {
	f.record("UpdateRoundState")
	if f.UpdateRoundStateFn != nil {
		return f.UpdateRoundStateFn(ctx, db, roundID, from, to)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	r, ok := f.rounds[roundID]
	if !ok || r.State != from {
		return ErrNoRowsAffected
	}
	r.State = to
	return nil
}

func (f *FakeRepository) FinalizeRound(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) (bool, error) {
	f.record("FinalizeRound")
	if f.FinalizeRoundFn != nil {
		return f.FinalizeRoundFn(ctx, db, roundID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	r, ok := f.rounds[roundID]
	if !ok || r.Finalized || r.DeletedAt != nil {
		return false, nil
	}
	r.Finalized = true
	r.State = roundtypes.RoundStateFinalized
	return true, nil
}

func (f *FakeRepository) SoftDeleteRound(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) error {
	f.record("SoftDeleteRound")
	if f.SoftDeleteRoundFn != nil {
		return f.SoftDeleteRoundFn(ctx, db, roundID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	r, ok := f.rounds[roundID]
	if !ok || r.DeletedAt != nil {
		return ErrNoRowsAffected
	}
	now := time.Now().UTC()
	r.State = roundtypes.RoundStateDeleted
	r.DeletedAt = &now
	return nil
}

func (f *FakeRepository) AddParticipant(ctx context.Context, db bun.IDB, participant *Participant) error {
	f.record("AddParticipant")
	if f.AddParticipantFn != nil {
		return f.AddParticipantFn(ctx, db, participant)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	r, ok := f.rounds[participant.RoundID]
	if !ok {
		return ErrNotFound
	}
	if r.HasParticipant(participant.UserID) {
		return ErrDuplicateParticipant
	}
	participant.ID = int64(len(r.Participants) + 1)
	r.Participants = append(r.Participants, *participant)
	return nil
}

func (f *FakeRepository) UpdateParticipantResponse(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID, userID sharedtypes.DiscordID, response roundtypes.Response) error {
	f.record("UpdateParticipantResponse")
	if f.UpdateParticipantResponseFn != nil {
		return f.UpdateParticipantResponseFn(ctx, db, roundID, userID, response)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	r, ok := f.rounds[roundID]
	if !ok {
		return ErrNoRowsAffected
	}
	for i := range r.Participants {
		if r.Participants[i].UserID == userID {
			r.Participants[i].Response = response
			return nil
		}
	}
	return ErrNoRowsAffected
}

func (f *FakeRepository) DeleteParticipants(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) (int, error) {
	f.record("DeleteParticipants")
	if f.DeleteParticipantsFn != nil {
		return f.DeleteParticipantsFn(ctx, db, roundID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	r, ok := f.rounds[roundID]
	if !ok {
		return 0, nil
	}
	n := len(r.Participants)
	r.Participants = nil
	return n, nil
}
