package leaderboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	leaderboardservice "github.com/Black-And-White-Club/tcr-bot/app/modules/leaderboard/application"
	leaderboarddb "github.com/Black-And-White-Club/tcr-bot/app/modules/leaderboard/infrastructure/repositories"
	"github.com/Black-And-White-Club/tcr-bot/app/modules/leaderboard/infrastructure/swap"
	"github.com/Black-And-White-Club/tcr-bot/app/shared/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// Module represents the leaderboard module.
type Module struct {
	LeaderboardService *leaderboardservice.LeaderboardService
	Matcher            *swap.Matcher
	logger             *slog.Logger
	cancelFunc         context.CancelFunc
	mu                 sync.Mutex
}

// NewLeaderboardModule creates the ranking engine and the tag swap matcher
// listening on pub/sub.
func NewLeaderboardModule(
	db *bun.DB,
	repo leaderboarddb.Repository,
	pub message.Publisher,
	sub message.Subscriber,
	swapTimeout time.Duration,
	logger *slog.Logger,
	metrics observability.Metrics,
	tracer trace.Tracer,
) *Module {
	logger.Info("leaderboard.NewLeaderboardModule called")

	service := leaderboardservice.NewLeaderboardService(db, repo, logger, metrics, tracer)
	return &Module{
		LeaderboardService: service,
		Matcher:            swap.NewMatcher(service, pub, sub, logger, swapTimeout),
		logger:             logger,
	}
}

// Run runs the swap matcher until ctx is canceled or Close is called.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	if wg != nil {
		defer wg.Done()
	}
	m.logger.InfoContext(ctx, "Starting leaderboard module")

	ctx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	m.cancelFunc = cancel
	m.mu.Unlock()
	defer cancel()

	if err := m.Matcher.Run(ctx); err != nil {
		m.logger.ErrorContext(ctx, "Swap matcher stopped", slog.Any("error", err))
		return
	}
	m.logger.InfoContext(ctx, "Leaderboard module goroutine stopped")
}

// Close stops the leaderboard module.
func (m *Module) Close() error {
	m.logger.Info("Stopping leaderboard module")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return nil
}
