package bundb

import (
	"context"
	"fmt"
	"log/slog"

	leaderboardmigrations "github.com/Black-And-White-Club/tcr-bot/app/modules/leaderboard/infrastructure/repositories/migrations"
	roundmigrations "github.com/Black-And-White-Club/tcr-bot/app/modules/round/infrastructure/repositories/migrations"
	scoremigrations "github.com/Black-And-White-Club/tcr-bot/app/modules/score/infrastructure/repositories/migrations"
	usermigrations "github.com/Black-And-White-Club/tcr-bot/app/modules/user/infrastructure/repositories/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// ModuleMigrations is one module's migration set.
type ModuleMigrations struct {
	Name       string
	Migrations *migrate.Migrations
}

// Modules lists every module's migrations in the order they must run.
func Modules() []ModuleMigrations {
	return []ModuleMigrations{
		{"user", usermigrations.Migrations},
		{"leaderboard", leaderboardmigrations.Migrations},
		{"score", scoremigrations.Migrations},
		{"round", roundmigrations.Migrations},
	}
}

// Migrate creates the migration tables and applies every pending module
// migration in order.
func Migrate(ctx context.Context, db *bun.DB, logger *slog.Logger) error {
	modules := Modules()
	if err := migrate.NewMigrator(db, modules[0].Migrations).Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration tables: %w", err)
	}
	for _, mod := range modules {
		group, err := migrate.NewMigrator(db, mod.Migrations).Migrate(ctx)
		if err != nil {
			return fmt.Errorf("failed to run %s migrations: %w", mod.Name, err)
		}
		if group.IsZero() {
			logger.InfoContext(ctx, "No new migrations", slog.String("module", mod.Name))
		} else {
			logger.InfoContext(ctx, "Migrated module",
				slog.String("module", mod.Name),
				slog.Int64("group", group.ID),
			)
		}
	}
	return nil
}

// MigrateRiver applies River's job tables. direction is up or down; down
// removes one version.
func MigrateRiver(ctx context.Context, dsn string, direction rivermigrate.Direction, logger *slog.Logger) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool for River migrations: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	res, err := migrator.Migrate(ctx, direction, &rivermigrate.MigrateOpts{})
	if err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}
	for _, v := range res.Versions {
		logger.InfoContext(ctx, "River migration applied",
			slog.String("direction", string(direction)),
			slog.Int("version", v.Version),
		)
	}
	return nil
}
