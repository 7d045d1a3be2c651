package leaderboarddb

import (
	"context"
	"sort"
	"sync"

	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/uptrace/bun"
)

// FakeRepository is an in-memory Repository for tests. Any Fn field that is
// set replaces the in-memory behaviour for that method.
type FakeRepository struct {
	mu      sync.Mutex
	entries map[sharedtypes.DiscordID]*LeaderboardEntry
	nextID  int64

	AcquireLadderLockFn   func(ctx context.Context, db bun.IDB) error
	GetEntryByUserIDFn    func(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID) (*LeaderboardEntry, error)
	LockEntryByUserIDFn   func(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID) (*LeaderboardEntry, error)
	GetEntryByTagNumberFn func(ctx context.Context, db bun.IDB, tag sharedtypes.TagNumber) (*LeaderboardEntry, error)
	ListEntriesFn         func(ctx context.Context, db bun.IDB, offset, limit int) ([]LeaderboardEntry, error)
	InsertEntryFn         func(ctx context.Context, db bun.IDB, entry *LeaderboardEntry) error
	UpdateEntryFn         func(ctx context.Context, db bun.IDB, entry *LeaderboardEntry) error
	SwapTagsFn            func(ctx context.Context, db bun.IDB, a, b sharedtypes.DiscordID) error

	trace []string
}

func NewFakeRepository() *FakeRepository {
	return &FakeRepository{entries: make(map[sharedtypes.DiscordID]*LeaderboardEntry)}
}

var _ Repository = (*FakeRepository)(nil)

func (f *FakeRepository) record(step string) {
	f.trace = append(f.trace, step)
}

// Trace returns the order of repository calls.
func (f *FakeRepository) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Seed stores entries directly, bypassing uniqueness checks.
func (f *FakeRepository) Seed(entries ...LeaderboardEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	for i := range entries {
		e := entries[i]
		f.nextID++
		e.ID = f.nextID
		f.entries[e.UserID] = &e
	}
}

// Snapshot returns every stored entry ordered by tag.
func (f *FakeRepository) Snapshot() []LeaderboardEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted()
}

func (f *FakeRepository) ensure() {
	if f.entries == nil {
		f.entries = make(map[sharedtypes.DiscordID]*LeaderboardEntry)
	}
}

func (f *FakeRepository) sorted() []LeaderboardEntry {
	out := make([]LeaderboardEntry, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TagNumber < out[j].TagNumber })
	return out
}

func (f *FakeRepository) holderOf(tag sharedtypes.TagNumber) *LeaderboardEntry {
	for _, e := range f.entries {
		if e.TagNumber == tag {
			return e
		}
	}
	return nil
}

func (f *FakeRepository) AcquireLadderLock(ctx context.Context, db bun.IDB) error {
	f.mu.Lock()
	f.record("AcquireLadderLock")
	f.mu.Unlock()
	if f.AcquireLadderLockFn != nil {
		return f.AcquireLadderLockFn(ctx, db)
	}
	return nil
}

func (f *FakeRepository) GetEntryByUserID(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID) (*LeaderboardEntry, error) {
	f.mu.Lock()
	f.record("GetEntryByUserID")
	f.mu.Unlock()
	if f.GetEntryByUserIDFn != nil {
		return f.GetEntryByUserIDFn(ctx, db, userID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	e, ok := f.entries[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *FakeRepository) LockEntryByUserID(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID) (*LeaderboardEntry, error) {
	f.mu.Lock()
	f.record("LockEntryByUserID")
	f.mu.Unlock()
	if f.LockEntryByUserIDFn != nil {
		return f.LockEntryByUserIDFn(ctx, db, userID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	e, ok := f.entries[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *FakeRepository) GetEntryByTagNumber(ctx context.Context, db bun.IDB, tag sharedtypes.TagNumber) (*LeaderboardEntry, error) {
	f.mu.Lock()
	f.record("GetEntryByTagNumber")
	f.mu.Unlock()
	if f.GetEntryByTagNumberFn != nil {
		return f.GetEntryByTagNumberFn(ctx, db, tag)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	e := f.holderOf(tag)
	if e == nil {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *FakeRepository) ListEntries(ctx context.Context, db bun.IDB, offset, limit int) ([]LeaderboardEntry, error) {
	f.mu.Lock()
	f.record("ListEntries")
	f.mu.Unlock()
	if f.ListEntriesFn != nil {
		return f.ListEntriesFn(ctx, db, offset, limit)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	all := f.sorted()
	if offset >= len(all) {
		return []LeaderboardEntry{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (f *FakeRepository) InsertEntry(ctx context.Context, db bun.IDB, entry *LeaderboardEntry) error {
	f.mu.Lock()
	f.record("InsertEntry")
	f.mu.Unlock()
	if f.InsertEntryFn != nil {
		return f.InsertEntryFn(ctx, db, entry)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	if _, ok := f.entries[entry.UserID]; ok {
		return ErrUserConflict
	}
	if f.holderOf(entry.TagNumber) != nil {
		return ErrTagConflict
	}
	f.nextID++
	entry.ID = f.nextID
	cp := *entry
	f.entries[entry.UserID] = &cp
	return nil
}

func (f *FakeRepository) UpdateEntry(ctx context.Context, db bun.IDB, entry *LeaderboardEntry) error {
	f.mu.Lock()
	f.record("UpdateEntry")
	f.mu.Unlock()
	if f.UpdateEntryFn != nil {
		return f.UpdateEntryFn(ctx, db, entry)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	existing, ok := f.entries[entry.UserID]
	if !ok {
		return ErrNoRowsAffected
	}
	if holder := f.holderOf(entry.TagNumber); holder != nil && holder.UserID != entry.UserID {
		return ErrTagConflict
	}
	existing.TagNumber = entry.TagNumber
	existing.LastPlayed = entry.LastPlayed
	existing.DurationHeld = entry.DurationHeld
	return nil
}

func (f *FakeRepository) SwapTags(ctx context.Context, db bun.IDB, a, b sharedtypes.DiscordID) error {
	f.mu.Lock()
	f.record("SwapTags")
	f.mu.Unlock()
	if f.SwapTagsFn != nil {
		return f.SwapTagsFn(ctx, db, a, b)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	ea, okA := f.entries[a]
	eb, okB := f.entries[b]
	if !okA || !okB || a == b {
		return ErrNoRowsAffected
	}
	ea.TagNumber, eb.TagNumber = eb.TagNumber, ea.TagNumber
	return nil
}
