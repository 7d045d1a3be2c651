package userservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	userdb "github.com/Black-And-White-Club/tcr-bot/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/tcr-bot/app/shared/observability"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TagLookup resolves a player's current tag. Nil means no tag.
type TagLookup interface {
	TagForUser(ctx context.Context, userID sharedtypes.DiscordID) (*sharedtypes.TagNumber, error)
}

// UserService is the user directory.
type UserService struct {
	repo    userdb.Repository
	tags    TagLookup
	logger  *slog.Logger
	metrics observability.Metrics
	tracer  trace.Tracer
}

// NewUserService creates a new UserService. tags may be nil.
func NewUserService(
	repo userdb.Repository,
	tags TagLookup,
	logger *slog.Logger,
	metrics observability.Metrics,
	tracer trace.Tracer,
) *UserService {
	return &UserService{
		repo:    repo,
		tags:    tags,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
	}
}

func withTelemetry[T any](
	s *UserService,
	ctx context.Context,
	operationName string,
	userID sharedtypes.DiscordID,
	op func(ctx context.Context) (T, error),
) (result T, err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("user_id", string(userID)),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName)
	start := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, time.Since(start))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				slog.String("user_id", string(userID)),
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
		s.logger.WarnContext(ctx, "Operation failed",
			slog.String("operation", operationName),
			slog.String("user_id", string(userID)),
			slog.Any("error", err),
		)
		s.metrics.RecordOperationFailure(ctx, operationName)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}
	s.metrics.RecordOperationSuccess(ctx, operationName)
	return result, nil
}
