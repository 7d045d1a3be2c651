package roundservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/tcr-bot/app/apperrors"
	rounddb "github.com/Black-And-White-Club/tcr-bot/app/modules/round/infrastructure/repositories"
	roundtime "github.com/Black-And-White-Club/tcr-bot/app/modules/round/time_utils"
	roundutil "github.com/Black-And-White-Club/tcr-bot/app/modules/round/utils"
	"github.com/Black-And-White-Club/tcr-bot/app/shared/observability"
	roundtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/round"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RoundService drives the round lifecycle. Every mutating operation runs in
// one transaction with the round row locked.
type RoundService struct {
	repo   rounddb.Repository
	scores ScoreLedger
	ranker TagRanker
	tags   TagLookup
	users  UserLookup
	queue  QueueService

	parser    roundtime.Parser
	validator roundutil.RoundValidator
	clock     roundutil.Clock
	location  *time.Location

	logger  *slog.Logger
	metrics observability.Metrics
	tracer  trace.Tracer
	db      *bun.DB
}

// NewRoundService creates a new RoundService. tags, users and queue may be nil.
func NewRoundService(
	db *bun.DB,
	repo rounddb.Repository,
	scores ScoreLedger,
	ranker TagRanker,
	tags TagLookup,
	users UserLookup,
	queue QueueService,
	logger *slog.Logger,
	metrics observability.Metrics,
	tracer trace.Tracer,
) *RoundService {
	return &RoundService{
		repo:      repo,
		scores:    scores,
		ranker:    ranker,
		tags:      tags,
		users:     users,
		queue:     queue,
		parser:    roundtime.NewTimeParser(),
		validator: roundutil.NewRoundValidator(),
		clock:     roundutil.RealClock{},
		location:  time.UTC,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		db:        db,
	}
}

// SetQueue attaches the job queue. The queue's worker calls back into the
// service, so it is built after the service.
func (s *RoundService) SetQueue(queue QueueService) {
	s.queue = queue
}

// SetLocation sets the time zone round dates and times are interpreted in.
func (s *RoundService) SetLocation(loc *time.Location) {
	if loc != nil {
		s.location = loc
	}
}

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[T any](
	s *RoundService,
	ctx context.Context,
	operationName string,
	roundID sharedtypes.RoundID,
	op func(ctx context.Context) (T, error),
) (result T, err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("round_id", roundID.String()),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, time.Since(startTime))
	}()

	s.logger.InfoContext(ctx, operationName+" triggered",
		slog.String("operation", operationName),
		slog.String("round_id", roundID.String()),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				slog.String("round_id", roundID.String()),
				slog.Any("error", err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			var zero T
			result = zero
		}
	}()

	result, err = op(ctx)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, apperrors.ErrPersistence) {
			level = slog.LevelError
		}
		s.logger.Log(ctx, level, "Operation failed with error",
			slog.String("operation", operationName),
			slog.String("round_id", roundID.String()),
			slog.Any("error", err),
		)
		s.metrics.RecordOperationFailure(ctx, operationName)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}

	s.logger.InfoContext(ctx, operationName+" completed successfully",
		slog.String("operation", operationName),
		slog.String("round_id", roundID.String()),
	)
	s.metrics.RecordOperationSuccess(ctx, operationName)
	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[T any](
	s *RoundService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (T, error),
) (T, error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result T
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}

// lockRound loads the round for update. A soft-deleted round is returned so
// callers can decide how to treat it.
func (s *RoundService) lockRound(ctx context.Context, db bun.IDB, op string, roundID sharedtypes.RoundID) (*rounddb.Round, error) {
	round, err := s.repo.GetRoundForUpdate(ctx, db, roundID)
	if errors.Is(err, rounddb.ErrNotFound) {
		return nil, apperrors.NotFound(op, "round %d not found", roundID)
	}
	if err != nil {
		return nil, apperrors.Persistence(op, err)
	}
	return round, nil
}

// assemble attaches the ledger scores to the round aggregate.
func (s *RoundService) assemble(ctx context.Context, db bun.IDB, round *rounddb.Round) (*roundtypes.Round, error) {
	out := round.ToDomain()
	scores, err := s.scores.GetScoresForRoundInTx(ctx, db, round.ID)
	if err != nil {
		return nil, err
	}
	for _, sc := range scores {
		out.Scores = append(out.Scores, roundtypes.ScoreEntry{
			UserID:    sc.UserID,
			Score:     sc.Score,
			TagNumber: sc.TagNumber,
		})
	}
	return out, nil
}

func isDeleted(round *rounddb.Round) bool {
	return round.State == roundtypes.RoundStateDeleted || round.DeletedAt != nil
}
