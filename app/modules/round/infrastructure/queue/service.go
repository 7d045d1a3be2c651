package roundqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/tcr-bot/app/shared/observability"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/uptrace/bun"
)

// minLead is the smallest delay a start job is accepted with.
const minLead = 5 * time.Second

// QueueService defines the contract for job scheduling operations
type QueueService interface {
	// ScheduleRoundStart schedules a round start job to be executed at the specified time
	ScheduleRoundStart(ctx context.Context, roundID sharedtypes.RoundID, startTime time.Time) error
	// CancelRoundJobs cancels all scheduled jobs for a specific round
	CancelRoundJobs(ctx context.Context, roundID sharedtypes.RoundID) error
	// GetScheduledJobs returns information about scheduled jobs for a round (for debugging)
	GetScheduledJobs(ctx context.Context, roundID sharedtypes.RoundID) ([]JobInfo, error)
	HealthCheck(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Service handles job scheduling for the round module using River
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	db      *bun.DB
	metrics observability.Metrics
	now     func() time.Time
}

// NewService creates a new River-based queue service for round scheduling.
// River needs its own pgx pool; bun is used for job inspection.
func NewService(ctx context.Context, bunDB *bun.DB, logger *slog.Logger, dsn string, metrics observability.Metrics, starter RoundStarter) (*Service, error) {
	const op = "initialize_queue"
	ctxLogger := logger.With(slog.String("component", "river_queue"))

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, op)
	defer func() { metrics.RecordOperationDuration(ctx, op, time.Since(start)) }()

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		metrics.RecordOperationFailure(ctx, op)
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		metrics.RecordOperationFailure(ctx, op)
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, op)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewRoundStartWorker(ctxLogger, starter))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
			QueueRound:         {MaxWorkers: 25},
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, op)
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, op)
	ctxLogger.InfoContext(ctx, "Round queue service initialized")
	return &Service{
		client:  riverClient,
		pool:    pool,
		logger:  ctxLogger,
		db:      bunDB,
		metrics: metrics,
		now:     time.Now,
	}, nil
}

// Start starts the River queue service
func (s *Service) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		s.metrics.RecordOperationFailure(ctx, "start_queue")
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.logger.InfoContext(ctx, "Round queue service started")
	return nil
}

// Stop waits for running jobs and releases the pool.
func (s *Service) Stop(ctx context.Context) error {
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		s.metrics.RecordOperationFailure(ctx, "stop_queue")
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.logger.InfoContext(ctx, "Round queue service stopped")
	return nil
}

// ScheduleRoundStart schedules a round start job to be executed at the specified time
func (s *Service) ScheduleRoundStart(ctx context.Context, roundID sharedtypes.RoundID, startTime time.Time) error {
	const op = "schedule_round_start"
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, op)
	defer func() { s.metrics.RecordOperationDuration(ctx, op, time.Since(start)) }()

	logger := s.logger.With(
		slog.String("round_id", roundID.String()),
		slog.Time("start_time", startTime),
	)

	now := s.now()
	if startTime.Before(now.Add(minLead)) {
		s.metrics.RecordOperationFailure(ctx, op)
		return fmt.Errorf("start time must be at least %s in the future", minLead)
	}

	res, err := s.client.Insert(ctx, RoundStartJob{RoundID: roundID}, &river.InsertOpts{
		Queue:       QueueRound,
		ScheduledAt: startTime,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	})
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, op)
		return fmt.Errorf("failed to schedule round start job: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, op)
	logger.InfoContext(ctx, "Round start job scheduled",
		slog.Duration("delay", startTime.Sub(now)),
		slog.Int64("job_id", res.Job.ID),
	)
	return nil
}

type riverJobRow struct {
	ID          int64      `bun:"id"`
	Kind        string     `bun:"kind"`
	State       string     `bun:"state"`
	ScheduledAt *time.Time `bun:"scheduled_at"`
	CreatedAt   time.Time  `bun:"created_at"`
	Attempt     int16      `bun:"attempt"`
	MaxAttempts int16      `bun:"max_attempts"`
}

// CancelRoundJobs cancels all pending jobs for a round. Individual cancel
// failures are logged and counted as a failed operation.
func (s *Service) CancelRoundJobs(ctx context.Context, roundID sharedtypes.RoundID) error {
	const op = "cancel_round_jobs"
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, op)
	defer func() { s.metrics.RecordOperationDuration(ctx, op, time.Since(start)) }()

	logger := s.logger.With(slog.String("round_id", roundID.String()))

	var jobs []riverJobRow
	err := s.db.NewSelect().
		Table("river_job").
		Column("id", "kind", "state").
		Where("kind = ?", KindRoundStart).
		Where("state IN (?)", bun.In([]string{"available", "scheduled", "retryable"})).
		Where("args->>'round_id' = ?", roundID.String()).
		Scan(ctx, &jobs)
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, op)
		return fmt.Errorf("failed to query jobs for cancellation: %w", err)
	}

	cancelled := 0
	for _, job := range jobs {
		if _, err := s.client.JobCancel(ctx, job.ID); err != nil {
			logger.WarnContext(ctx, "Failed to cancel job",
				slog.Int64("job_id", job.ID),
				slog.Any("error", err),
			)
			continue
		}
		cancelled++
	}

	if cancelled == len(jobs) {
		s.metrics.RecordOperationSuccess(ctx, op)
	} else {
		s.metrics.RecordOperationFailure(ctx, op)
	}
	logger.InfoContext(ctx, "Round jobs cancelled",
		slog.Int("total_found", len(jobs)),
		slog.Int("cancelled_count", cancelled),
	)
	return nil
}

// GetScheduledJobs returns information about scheduled jobs for a round (for debugging)
func (s *Service) GetScheduledJobs(ctx context.Context, roundID sharedtypes.RoundID) ([]JobInfo, error) {
	var jobs []riverJobRow
	err := s.db.NewSelect().
		Table("river_job").
		Column("id", "kind", "state", "scheduled_at", "created_at", "attempt", "max_attempts").
		Where("kind = ?", KindRoundStart).
		Where("args->>'round_id' = ?", roundID.String()).
		Order("scheduled_at ASC NULLS LAST", "created_at ASC").
		Scan(ctx, &jobs)
	if err != nil {
		return nil, fmt.Errorf("failed to query scheduled jobs: %w", err)
	}

	result := make([]JobInfo, len(jobs))
	for i, job := range jobs {
		scheduledAt := ""
		if job.ScheduledAt != nil {
			scheduledAt = job.ScheduledAt.Format(time.RFC3339)
		}
		result[i] = JobInfo{
			ID:          job.ID,
			Kind:        job.Kind,
			RoundID:     roundID.String(),
			State:       job.State,
			ScheduledAt: scheduledAt,
			CreatedAt:   job.CreatedAt.Format(time.RFC3339),
			Attempt:     int(job.Attempt),
			MaxAttempts: int(job.MaxAttempts),
		}
	}
	return result, nil
}

// HealthCheck verifies the queue service is healthy
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("river client is nil")
	}
	var count int
	err := s.db.NewSelect().
		Table("river_job").
		ColumnExpr("COUNT(*)").
		Scan(ctx, &count)
	if err != nil {
		return fmt.Errorf("queue service health check failed: %w", err)
	}
	return nil
}
