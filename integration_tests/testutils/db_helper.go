package testutils

import (
	"context"
	"fmt"
	"strings"

	"github.com/Black-And-White-Club/tcr-bot/app/shared/observability"
	"github.com/Black-And-White-Club/tcr-bot/internal/db/bundb"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
)

var appTables = []string{"users", "leaderboard", "scores", "round_participants", "rounds"}

// RunMigrations applies River's tables and every module migration.
func RunMigrations(ctx context.Context, db *bun.DB, dsn string) error {
	if err := bundb.MigrateRiver(ctx, dsn, rivermigrate.DirectionUp, observability.NoOpLogger); err != nil {
		return err
	}
	return bundb.Migrate(ctx, db, observability.NoOpLogger)
}

// TruncateTables truncates the named tables.
func TruncateTables(ctx context.Context, db *bun.DB, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	quoted := make([]string, len(tables))
	for i, t := range tables {
		quoted[i] = `"` + t + `"`
	}
	query := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(quoted, ", "))
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to truncate tables %v: %w", tables, err)
	}
	return nil
}

// CleanAllIntegrationTables empties the application tables and River's jobs.
func CleanAllIntegrationTables(ctx context.Context, db *bun.DB) error {
	if err := TruncateTables(ctx, db, appTables...); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM river_job"); err != nil {
		return fmt.Errorf("failed to clean river jobs: %w", err)
	}
	return nil
}
