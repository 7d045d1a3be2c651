package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Black-And-White-Club/tcr-bot/app/eventbus"
	"github.com/Black-And-White-Club/tcr-bot/app/modules/leaderboard"
	"github.com/Black-And-White-Club/tcr-bot/app/modules/leaderboard/infrastructure/swap"
	"github.com/Black-And-White-Club/tcr-bot/app/modules/round"
	"github.com/Black-And-White-Club/tcr-bot/app/modules/round/infrastructure/adapters"
	"github.com/Black-And-White-Club/tcr-bot/app/modules/score"
	"github.com/Black-And-White-Club/tcr-bot/app/modules/user"
	"github.com/Black-And-White-Club/tcr-bot/app/server"
	"github.com/Black-And-White-Club/tcr-bot/app/shared/observability"
	"github.com/Black-And-White-Club/tcr-bot/config"
	"github.com/Black-And-White-Club/tcr-bot/internal/db/bundb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
)

const tracerName = "github.com/Black-And-White-Club/tcr-bot"

// App holds every long-lived component of the service.
type App struct {
	Config            *config.Config
	Logger            *slog.Logger
	DB                *bundb.DBService
	EventBus          eventbus.EventBus
	Registry          *prometheus.Registry
	UserModule        *user.Module
	LeaderboardModule *leaderboard.Module
	ScoreModule       *score.Module
	RoundModule       *round.Module
	HTTPServer        *http.Server
}

// NewApp initializes the application with the necessary services and configuration.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	operations, err := observability.NewOperationCollectors(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	tracer := otel.Tracer(tracerName)

	dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database service: %w", err)
	}
	db := dbService.GetDB()

	bus, err := eventbus.New(ctx, eventbus.Config{
		NATSURL:    cfg.NATS.URL,
		StreamName: cfg.NATS.StreamName,
		Subjects:   swap.Subjects,
	}, logger)
	if err != nil {
		_ = dbService.Close()
		return nil, fmt.Errorf("failed to initialize event bus: %w", err)
	}

	leaderboardModule := leaderboard.NewLeaderboardModule(
		db, dbService.Leaderboard, bus, bus, cfg.Swap.Timeout,
		logger.With(slog.String("module", "leaderboard")),
		operations.ForModule("leaderboard"), tracer,
	)
	userModule := user.NewUserModule(
		dbService.User, leaderboardModule.LeaderboardService,
		logger.With(slog.String("module", "user")),
		operations.ForModule("user"), tracer,
	)
	scoreModule := score.NewScoreModule(
		db, dbService.Score, adapters.NewRoundStateAdapter(dbService.Round),
		logger.With(slog.String("module", "score")),
		operations.ForModule("score"), tracer,
	)
	roundModule, err := round.NewRoundModule(ctx, cfg, db, dbService.Round, round.Collaborators{
		Scores: scoreModule.ScoreService,
		Ranker: leaderboardModule.LeaderboardService,
		Tags:   leaderboardModule.LeaderboardService,
		Users:  dbService.User,
	}, logger.With(slog.String("module", "round")), operations.ForModule("round"), tracer)
	if err != nil {
		_ = bus.Close()
		_ = dbService.Close()
		return nil, fmt.Errorf("failed to initialize round module: %w", err)
	}

	srv := server.New(server.Config{
		JWTSecret:       cfg.JWT.Secret,
		AllowHeaderAuth: cfg.JWT.AllowHeaderAuth,
		RateLimit:       cfg.HTTP.RateLimit,
		RateBurst:       cfg.HTTP.RateBurst,
		AllowedOrigins:  cfg.HTTP.AllowedOrigins,
	}, server.Deps{
		Rounds:      roundModule.RoundService,
		Leaderboard: leaderboardModule.LeaderboardService,
		Scores:      scoreModule.ScoreService,
		Users:       userModule.UserService,
		Swaps:       bus,
		Gatherer:    registry,
		HealthChecks: map[string]server.HealthChecker{
			"database":    dbService,
			"round_queue": roundModule.Queue,
		},
	}, logger.With(slog.String("component", "http")))

	return &App{
		Config:            cfg,
		Logger:            logger,
		DB:                dbService,
		EventBus:          bus,
		Registry:          registry,
		UserModule:        userModule,
		LeaderboardModule: leaderboardModule,
		ScoreModule:       scoreModule,
		RoundModule:       roundModule,
		HTTPServer: &http.Server{
			Addr:         cfg.HTTP.Address,
			Handler:      srv.Handler(),
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		},
	}, nil
}
