package sharedtypes

import "strconv"

// DiscordID identifies a player across every module.
type DiscordID string

// TagNumber is a player's ladder position. Lower is better.
type TagNumber int

// Score is a round score. Lower is better.
type Score int

// RoundID is the generated identity of a round.
type RoundID int64

func (id RoundID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ScoreInfo is a single (player, score, optional tag) triple as it moves
// between the score ledger and the ranking engine.
type ScoreInfo struct {
	UserID    DiscordID  `json:"user_id"`
	Score     Score      `json:"score"`
	TagNumber *TagNumber `json:"tag_number,omitempty"`
}

// TagPtr is a helper for optional tag values.
func TagPtr(t TagNumber) *TagNumber { return &t }
