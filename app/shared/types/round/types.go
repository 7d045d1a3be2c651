package roundtypes

import (
	"time"

	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
)

// RoundState is the lifecycle state of a round.
type RoundState string

const (
	RoundStateUpcoming   RoundState = "UPCOMING"
	RoundStateInProgress RoundState = "IN_PROGRESS"
	RoundStateFinalized  RoundState = "FINALIZED"
	RoundStateDeleted    RoundState = "DELETED"
)

// Response is a participant's RSVP.
type Response string

const (
	ResponseAccept    Response = "ACCEPT"
	ResponseTentative Response = "TENTATIVE"
	ResponseDecline   Response = "DECLINE"
)

// Valid reports whether r is one of the known responses.
func (r Response) Valid() bool {
	switch r {
	case ResponseAccept, ResponseTentative, ResponseDecline:
		return true
	}
	return false
}

// Date and time layouts stored on a round.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Participant is a player who responded to a round.
type Participant struct {
	UserID    sharedtypes.DiscordID  `json:"user_id"`
	Response  Response               `json:"response"`
	TagNumber *sharedtypes.TagNumber `json:"tag_number"`
}

// ScoreEntry is a submitted score for a round.
type ScoreEntry struct {
	UserID    sharedtypes.DiscordID  `json:"user_id"`
	Score     sharedtypes.Score      `json:"score"`
	TagNumber *sharedtypes.TagNumber `json:"tag_number"`
}

// Round is the aggregate returned by the round module.
type Round struct {
	ID           sharedtypes.RoundID   `json:"round_id"`
	Title        string                `json:"title"`
	Location     string                `json:"location"`
	EventType    *string               `json:"event_type,omitempty"`
	Date         string                `json:"date"`
	Time         string                `json:"time"`
	CreatedBy    sharedtypes.DiscordID `json:"creator_id"`
	State        RoundState            `json:"state"`
	Finalized    bool                  `json:"finalized"`
	Participants []Participant         `json:"participants"`
	Scores       []ScoreEntry          `json:"scores"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// StartTime combines Date and Time in loc. It returns the zero time when
// either part does not parse.
func (r *Round) StartTime(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, r.Date+" "+r.Time, loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// FindParticipant returns the participant for userID, if any.
func (r *Round) FindParticipant(userID sharedtypes.DiscordID) (*Participant, bool) {
	for i := range r.Participants {
		if r.Participants[i].UserID == userID {
			return &r.Participants[i], true
		}
	}
	return nil, false
}
