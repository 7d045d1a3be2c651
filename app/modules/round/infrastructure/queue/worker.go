package roundqueue

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Black-And-White-Club/tcr-bot/app/apperrors"
	roundtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/round"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/riverqueue/river"
)

// RoundStarter is the round service operation the worker drives.
type RoundStarter interface {
	StartRound(ctx context.Context, roundID sharedtypes.RoundID) (*roundtypes.Round, error)
}

// RoundStartWorker runs RoundStartJob.
type RoundStartWorker struct {
	river.WorkerDefaults[RoundStartJob]
	logger  *slog.Logger
	starter RoundStarter
}

// NewRoundStartWorker creates a worker that starts rounds through starter.
func NewRoundStartWorker(logger *slog.Logger, starter RoundStarter) *RoundStartWorker {
	return &RoundStartWorker{logger: logger, starter: starter}
}

// Work starts the round. A round that was deleted, edited away or already
// started completes the job without retry; storage failures are retried.
func (w *RoundStartWorker) Work(ctx context.Context, job *river.Job[RoundStartJob]) error {
	roundID := job.Args.RoundID
	logger := w.logger.With(
		slog.String("round_id", roundID.String()),
		slog.String("job_kind", KindRoundStart),
	)

	_, err := w.starter.StartRound(ctx, roundID)
	switch {
	case err == nil:
		logger.InfoContext(ctx, "Round started by scheduled job")
		return nil
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrInvalidState):
		logger.InfoContext(ctx, "Scheduled start skipped", slog.String("reason", apperrors.Message(err)))
		return nil
	default:
		logger.ErrorContext(ctx, "Scheduled start failed", slog.Any("error", err))
		return err
	}
}
