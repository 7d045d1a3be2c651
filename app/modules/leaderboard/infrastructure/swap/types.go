package swap

import (
	leaderboardtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/leaderboard"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
)

// Topics.
const (
	TopicSwapRequested = "leaderboard.tag.swap.requested"
	TopicSwapCompleted = "leaderboard.tag.swap.completed"
	TopicSwapExpired   = "leaderboard.tag.swap.expired"
	TopicSwapFailed    = "leaderboard.tag.swap.failed"
)

// Subjects lists every topic the matcher uses, for stream provisioning.
var Subjects = []string{TopicSwapRequested, TopicSwapCompleted, TopicSwapExpired, TopicSwapFailed}

// SwapRequest is a player's request to trade their tag for TargetTag.
type SwapRequest struct {
	RequestID   string                `json:"request_id"`
	RequestorID sharedtypes.DiscordID `json:"requestor_id"`
	TargetTag   sharedtypes.TagNumber `json:"target_tag"`
}

// SwapCompleted is published when two reciprocal requests were executed.
type SwapCompleted struct {
	RequestID        string                       `json:"request_id"`
	MatchedRequestID string                       `json:"matched_request_id"`
	Changes          []leaderboardtypes.TagChange `json:"changes"`
}

// SwapExpired is published when a request found no counterpart in time.
type SwapExpired struct {
	RequestID   string                `json:"request_id"`
	RequestorID sharedtypes.DiscordID `json:"requestor_id"`
	TargetTag   sharedtypes.TagNumber `json:"target_tag"`
}

// SwapFailed is published when a request is rejected or its swap fails.
type SwapFailed struct {
	RequestID   string                `json:"request_id"`
	RequestorID sharedtypes.DiscordID `json:"requestor_id"`
	TargetTag   sharedtypes.TagNumber `json:"target_tag"`
	Reason      string                `json:"reason"`
}
