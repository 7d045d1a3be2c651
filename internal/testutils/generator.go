// Package testutils generates realistic test data.
package testutils

import (
	"fmt"
	"time"

	leaderboardtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/leaderboard"
	roundtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/round"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	usertypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/user"
	"github.com/brianvoe/gofakeit/v7"
)

// DataGenerator creates test data. A fixed seed gives a repeatable sequence.
type DataGenerator struct {
	faker *gofakeit.Faker
	seen  map[sharedtypes.DiscordID]struct{}
}

// NewDataGenerator creates a generator. Without a seed it is random.
func NewDataGenerator(seed ...uint64) *DataGenerator {
	var s uint64
	if len(seed) > 0 {
		s = seed[0]
	}
	return &DataGenerator{
		faker: gofakeit.New(s),
		seen:  make(map[sharedtypes.DiscordID]struct{}),
	}
}

// DiscordID returns a snowflake-shaped ID not yet returned by this generator.
func (g *DataGenerator) DiscordID() sharedtypes.DiscordID {
	for {
		id := sharedtypes.DiscordID(g.faker.Numerify("1#################"))
		if _, dup := g.seen[id]; !dup {
			g.seen[id] = struct{}{}
			return id
		}
	}
}

// User returns a Rattler with a random name.
func (g *DataGenerator) User() usertypes.UserData {
	return usertypes.UserData{
		UserID: g.DiscordID(),
		Name:   g.faker.Name(),
		Role:   usertypes.UserRoleRattler,
	}
}

// Users returns n distinct users.
func (g *DataGenerator) Users(n int) []usertypes.UserData {
	out := make([]usertypes.UserData, n)
	for i := range out {
		out[i] = g.User()
	}
	return out
}

// Ladder returns n entries holding tags 1..n, in tag order.
func (g *DataGenerator) Ladder(n int) []leaderboardtypes.LeaderboardEntry {
	out := make([]leaderboardtypes.LeaderboardEntry, n)
	for i := range out {
		out[i] = leaderboardtypes.LeaderboardEntry{
			UserID:       g.DiscordID(),
			TagNumber:    sharedtypes.TagNumber(i + 1),
			DurationHeld: g.faker.IntRange(0, 30),
		}
	}
	return out
}

// Score returns a plausible round score relative to par.
func (g *DataGenerator) Score() sharedtypes.Score {
	return sharedtypes.Score(g.faker.IntRange(-12, 18))
}

// RoundFields are the user-supplied parts of a new round.
type RoundFields struct {
	Title    string
	Location string
	Date     string
	Time     string
}

// Round returns fields for a round one to sixty days after now.
func (g *DataGenerator) Round(now time.Time) RoundFields {
	day := now.AddDate(0, 0, g.faker.IntRange(1, 60))
	return RoundFields{
		Title:    fmt.Sprintf("%s %s Round", g.faker.Adjective(), g.faker.Noun()),
		Location: g.faker.City() + " Park",
		Date:     day.Format(roundtypes.DateLayout),
		Time:     fmt.Sprintf("%02d:%02d", g.faker.IntRange(7, 20), 15*g.faker.IntRange(0, 3)),
	}
}
