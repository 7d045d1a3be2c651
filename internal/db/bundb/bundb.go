package bundb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	leaderboarddb "github.com/Black-And-White-Club/tcr-bot/app/modules/leaderboard/infrastructure/repositories"
	rounddb "github.com/Black-And-White-Club/tcr-bot/app/modules/round/infrastructure/repositories"
	scoredb "github.com/Black-And-White-Club/tcr-bot/app/modules/score/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/tcr-bot/app/modules/user/infrastructure/repositories"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// DBService holds the connection pool and one repository per module.
type DBService struct {
	User        userdb.Repository
	Leaderboard leaderboarddb.Repository
	Round       rounddb.Repository
	Score       scoredb.Repository
	db          *bun.DB
}

// GetDB returns the underlying database connection pool.
func (s *DBService) GetDB() *bun.DB {
	return s.db
}

// HealthCheck pings the database.
func (s *DBService) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *DBService) Close() error {
	return s.db.Close()
}

// NewBunDBService connects to Postgres and builds the module repositories.
func NewBunDBService(ctx context.Context, dsn string, logger *slog.Logger) (*DBService, error) {
	db, err := Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Connected to Postgres")
	return NewDBService(db), nil
}

// NewDBService builds the module repositories over an open pool.
func NewDBService(db *bun.DB) *DBService {
	return &DBService{
		User:        userdb.NewRepository(db),
		Leaderboard: leaderboarddb.NewRepository(db),
		Round:       rounddb.NewRepository(db),
		Score:       scoredb.NewRepository(db),
		db:          db,
	}
}

// Open returns a bun.DB for dsn after a successful ping.
func Open(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	sqldb.SetMaxOpenConns(25)
	sqldb.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sqldb.PingContext(pingCtx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return bun.NewDB(sqldb, pgdialect.New()), nil
}
