package roundqueue

import (
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
)

// Job kinds.
const (
	KindRoundStart = "round_start"
	QueueRound     = "round"
)

// RoundStartJob moves a round to IN_PROGRESS at its scheduled time.
type RoundStartJob struct {
	RoundID sharedtypes.RoundID `json:"round_id"`
}

// Kind returns the job type identifier for River
func (RoundStartJob) Kind() string { return KindRoundStart }

// JobInfo represents information about a scheduled job (for debugging/monitoring)
type JobInfo struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	RoundID     string `json:"round_id"`
	State       string `json:"state"`
	ScheduledAt string `json:"scheduled_at"`
	CreatedAt   string `json:"created_at"`
	Attempt     int    `json:"attempt"`
	MaxAttempts int    `json:"max_attempts"`
}
