package testutils

import (
	"context"
	"log"
	"sync"
	"testing"
	"time"

	leaderboardservice "github.com/Black-And-White-Club/tcr-bot/app/modules/leaderboard/application"
	roundservice "github.com/Black-And-White-Club/tcr-bot/app/modules/round/application"
	"github.com/Black-And-White-Club/tcr-bot/app/modules/round/infrastructure/adapters"
	scoreservice "github.com/Black-And-White-Club/tcr-bot/app/modules/score/application"
	userservice "github.com/Black-And-White-Club/tcr-bot/app/modules/user/application"
	"github.com/Black-And-White-Club/tcr-bot/app/shared/observability"
	"github.com/Black-And-White-Club/tcr-bot/integration_tests/containers"
	"github.com/Black-And-White-Club/tcr-bot/internal/db/bundb"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

// Env is a migrated, empty database plus services wired to it.
type Env struct {
	Ctx         context.Context
	DB          *bun.DB
	DSN         string
	Repos       *bundb.DBService
	Leaderboard *leaderboardservice.LeaderboardService
	Scores      *scoreservice.ScoreService
	Users       *userservice.UserService
	Rounds      *roundservice.RoundService
}

var (
	pgOnce      sync.Once
	pgContainer *postgres.PostgresContainer
	sharedDB    *bun.DB
	sharedDSN   string
	pgErr       error
)

// SkipIfShort skips integration tests in -short mode.
func SkipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
}

// NewEnv returns an Env over the package's shared Postgres container, started
// and migrated on first use. Tables are truncated before returning.
func NewEnv(t *testing.T) *Env {
	t.Helper()
	SkipIfShort(t)

	pgOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		pgContainer, sharedDSN, pgErr = containers.SetupPostgresContainer(ctx)
		if pgErr != nil {
			return
		}
		sharedDB, pgErr = bundb.Open(ctx, sharedDSN)
		if pgErr != nil {
			return
		}
		pgErr = RunMigrations(ctx, sharedDB, sharedDSN)
	})
	if pgErr != nil {
		t.Fatalf("failed to set up postgres: %v", pgErr)
	}

	ctx := context.Background()
	if err := CleanAllIntegrationTables(ctx, sharedDB); err != nil {
		t.Fatalf("failed to clean tables: %v", err)
	}
	return newEnv(ctx, sharedDB, sharedDSN)
}

func newEnv(ctx context.Context, db *bun.DB, dsn string) *Env {
	tracer := noop.NewTracerProvider().Tracer("integration")
	logger := observability.NoOpLogger
	metrics := observability.NoOpMetrics{}
	repos := bundb.NewDBService(db)

	lb := leaderboardservice.NewLeaderboardService(db, repos.Leaderboard, logger, metrics, tracer)
	scores := scoreservice.NewScoreService(repos.Score, adapters.NewRoundStateAdapter(repos.Round), logger, metrics, tracer, db)
	users := userservice.NewUserService(repos.User, lb, logger, metrics, tracer)
	rounds := roundservice.NewRoundService(
		db, repos.Round, scores, lb, lb, adapters.NewUserLookupAdapter(repos.User), nil,
		logger, metrics, tracer,
	)

	return &Env{
		Ctx:         ctx,
		DB:          db,
		DSN:         dsn,
		Repos:       repos,
		Leaderboard: lb,
		Scores:      scores,
		Users:       users,
		Rounds:      rounds,
	}
}

// WithPoolSize returns an Env on its own connection pool capped at n
// connections, closed when the test ends.
func (e *Env) WithPoolSize(t *testing.T, n int) *Env {
	t.Helper()
	db, err := bundb.Open(e.Ctx, e.DSN)
	if err != nil {
		t.Fatalf("failed to open pool: %v", err)
	}
	db.SetMaxOpenConns(n)
	t.Cleanup(func() { _ = db.Close() })
	return newEnv(e.Ctx, db, e.DSN)
}

// Terminate releases the shared container. Call it from TestMain after m.Run.
func Terminate() {
	if sharedDB != nil {
		_ = sharedDB.Close()
	}
	if pgContainer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := pgContainer.Terminate(ctx); err != nil {
			log.Printf("Failed to terminate postgres container: %v", err)
		}
	}
}
