package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Black-And-White-Club/tcr-bot/app/shared/observability"
	"github.com/Black-And-White-Club/tcr-bot/config"
	"github.com/Black-And-White-Club/tcr-bot/internal/db/bundb"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:  "bun",
		Usage: "tcr-bot database migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Commands: []*cli.Command{
			newMultiModuleDBCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

type migrator struct {
	name string
	*migrate.Migrator
}

// withMigrators opens the database and hands the ordered module migrators to fn.
func withMigrators(c *cli.Context, fn func(db *bun.DB, cfg *config.Config, migrators []migrator) error) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	db, err := bundb.Open(c.Context, cfg.Postgres.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	var migrators []migrator
	for _, mod := range bundb.Modules() {
		migrators = append(migrators, migrator{name: mod.Name, Migrator: migrate.NewMigrator(db, mod.Migrations)})
	}
	return fn(db, cfg, migrators)
}

func findMigrator(migrators []migrator, name string) (migrator, error) {
	for _, m := range migrators {
		if m.name == name {
			return m, nil
		}
	}
	return migrator{}, fmt.Errorf("invalid module name: %s", name)
}

func newMultiModuleDBCommand() *cli.Command {
	logger := observability.NewLogger("", "info")

	return &cli.Command{
		Name:  "db",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					return withMigrators(c, func(_ *bun.DB, _ *config.Config, migrators []migrator) error {
						return migrators[0].Init(c.Context)
					})
				},
			},
			{
				Name:  "migrate",
				Usage: "migrate database, including River job tables",
				Action: func(c *cli.Context) error {
					return withMigrators(c, func(db *bun.DB, cfg *config.Config, _ []migrator) error {
						if err := bundb.MigrateRiver(c.Context, cfg.Postgres.DSN, rivermigrate.DirectionUp, logger); err != nil {
							return err
						}
						return bundb.Migrate(c.Context, db, logger)
					})
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group of each module",
				Action: func(c *cli.Context) error {
					return withMigrators(c, func(_ *bun.DB, _ *config.Config, migrators []migrator) error {
						for i := len(migrators) - 1; i >= 0; i-- {
							m := migrators[i]
							group, err := m.Rollback(c.Context)
							if err != nil {
								return fmt.Errorf("failed to roll back %s: %w", m.name, err)
							}
							if group.IsZero() {
								fmt.Printf("No groups to roll back for module: %s\n", m.name)
							} else {
								fmt.Printf("Rolled back module: %s to %s\n", m.name, group)
							}
						}
						return nil
					})
				},
			},
			{
				Name:  "river_rollback",
				Usage: "remove the latest River migration",
				Action: func(c *cli.Context) error {
					return withMigrators(c, func(_ *bun.DB, cfg *config.Config, _ []migrator) error {
						return bundb.MigrateRiver(c.Context, cfg.Postgres.DSN, rivermigrate.DirectionDown, logger)
					})
				},
			},
			{
				Name:      "create_go",
				Usage:     "create Go migration",
				ArgsUsage: "<module> <name...>",
				Action: func(c *cli.Context) error {
					return withMigrators(c, func(_ *bun.DB, _ *config.Config, migrators []migrator) error {
						m, err := findMigrator(migrators, c.Args().First())
						if err != nil {
							return err
						}
						name := strings.Join(c.Args().Tail(), "_")
						mf, err := m.CreateGoMigration(c.Context, name)
						if err != nil {
							return err
						}
						fmt.Printf("Created migration for module %s: %s (%s)\n", m.name, mf.Name, mf.Path)
						return nil
					})
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					return withMigrators(c, func(_ *bun.DB, _ *config.Config, migrators []migrator) error {
						for _, m := range migrators {
							ms, err := m.MigrationsWithStatus(c.Context)
							if err != nil {
								return err
							}
							fmt.Printf("Migrations for module: %s\n", m.name)
							fmt.Printf("  Applied: %s\n", ms.Applied())
							fmt.Printf("  Unapplied: %s\n", ms.Unapplied())
						}
						return nil
					})
				},
			},
		},
	}
}
