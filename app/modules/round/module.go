package round

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	roundservice "github.com/Black-And-White-Club/tcr-bot/app/modules/round/application"
	"github.com/Black-And-White-Club/tcr-bot/app/modules/round/infrastructure/adapters"
	roundqueue "github.com/Black-And-White-Club/tcr-bot/app/modules/round/infrastructure/queue"
	rounddb "github.com/Black-And-White-Club/tcr-bot/app/modules/round/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/tcr-bot/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/tcr-bot/app/shared/observability"
	"github.com/Black-And-White-Club/tcr-bot/config"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

const queueStopTimeout = 30 * time.Second

// Collaborators are the other modules' services the round module calls.
type Collaborators struct {
	Scores roundservice.ScoreLedger
	Ranker roundservice.TagRanker
	Tags   roundservice.TagLookup
	Users  userdb.Repository
}

// Module represents the round module.
type Module struct {
	RoundService *roundservice.RoundService
	Queue        *roundqueue.Service
	logger       *slog.Logger
	cancelFunc   context.CancelFunc
	mu           sync.Mutex
}

// NewRoundModule creates the round service and its start-job queue. The queue
// shares the Postgres database and calls back into the service to start
// rounds.
func NewRoundModule(
	ctx context.Context,
	cfg *config.Config,
	db *bun.DB,
	repo rounddb.Repository,
	deps Collaborators,
	logger *slog.Logger,
	metrics observability.Metrics,
	tracer trace.Tracer,
) (*Module, error) {
	logger.InfoContext(ctx, "round.NewRoundModule called")

	service := roundservice.NewRoundService(
		db,
		repo,
		deps.Scores,
		deps.Ranker,
		deps.Tags,
		adapters.NewUserLookupAdapter(deps.Users),
		nil,
		logger,
		metrics,
		tracer,
	)
	service.SetLocation(cfg.Location())

	queue, err := roundqueue.NewService(ctx, db, logger, cfg.Postgres.DSN, metrics, service)
	if err != nil {
		return nil, fmt.Errorf("failed to create round queue: %w", err)
	}
	service.SetQueue(queue)

	return &Module{
		RoundService: service,
		Queue:        queue,
		logger:       logger,
	}, nil
}

// Run starts the job queue and blocks until ctx is canceled or Close is called.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	if wg != nil {
		defer wg.Done()
	}
	m.logger.InfoContext(ctx, "Starting round module")

	ctx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	m.cancelFunc = cancel
	m.mu.Unlock()
	defer cancel()

	// River treats cancellation of its start context as a hard stop; shutdown
	// goes through Stop instead.
	if err := m.Queue.Start(context.WithoutCancel(ctx)); err != nil {
		m.logger.ErrorContext(ctx, "Failed to start round queue", slog.Any("error", err))
		return
	}

	<-ctx.Done()

	stopCtx, stop := context.WithTimeout(context.Background(), queueStopTimeout)
	defer stop()
	if err := m.Queue.Stop(stopCtx); err != nil {
		m.logger.Error("Failed to stop round queue", slog.Any("error", err))
	}
	m.logger.Info("Round module goroutine stopped")
}

// Close stops the round module.
func (m *Module) Close() error {
	m.logger.Info("Stopping round module")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return nil
}
