package rounddb

import (
	"time"

	roundtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/round"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/uptrace/bun"
)

// Round represents a single scheduled round.
type Round struct {
	bun.BaseModel `bun:"table:rounds,alias:r"`
	ID            sharedtypes.RoundID   `bun:"id,pk,autoincrement"`
	Title         string                `bun:"title,notnull"`
	Location      string                `bun:"location,notnull"`
	EventType     *string               `bun:"event_type"`
	Date          string                `bun:"date,notnull"`
	Time          string                `bun:"time,notnull"`
	CreatedBy     sharedtypes.DiscordID `bun:"created_by,notnull"`
	State         roundtypes.RoundState `bun:"state,notnull"`
	Finalized     bool                  `bun:"finalized,notnull,default:false"`
	CreatedAt     time.Time             `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt     time.Time             `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	DeletedAt     *time.Time            `bun:"deleted_at,nullzero"`

	Participants []Participant `bun:"-"`
}

// Participant is a row of round_participants. (round_id, discord_id) is unique.
type Participant struct {
	bun.BaseModel `bun:"table:round_participants,alias:rp"`
	ID            int64                  `bun:"id,pk,autoincrement"`
	RoundID       sharedtypes.RoundID    `bun:"round_id,notnull"`
	UserID        sharedtypes.DiscordID  `bun:"discord_id,notnull"`
	Response      roundtypes.Response    `bun:"response,notnull"`
	TagNumber     *sharedtypes.TagNumber `bun:"tag_number"`
	Position      int                    `bun:"position,notnull"`
	JoinedAt      time.Time              `bun:"joined_at,nullzero,notnull,default:current_timestamp"`
}

// ToDomain builds the round aggregate. Scores live in the score ledger and
// are attached by the service.
func (r *Round) ToDomain() *roundtypes.Round {
	out := &roundtypes.Round{
		ID:           r.ID,
		Title:        r.Title,
		Location:     r.Location,
		EventType:    r.EventType,
		Date:         r.Date,
		Time:         r.Time,
		CreatedBy:    r.CreatedBy,
		State:        r.State,
		Finalized:    r.Finalized,
		Participants: make([]roundtypes.Participant, 0, len(r.Participants)),
		Scores:       []roundtypes.ScoreEntry{},
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	for _, p := range r.Participants {
		out.Participants = append(out.Participants, roundtypes.Participant{
			UserID:    p.UserID,
			Response:  p.Response,
			TagNumber: p.TagNumber,
		})
	}
	return out
}

// HasParticipant reports whether userID already joined.
func (r *Round) HasParticipant(userID sharedtypes.DiscordID) bool {
	for _, p := range r.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
