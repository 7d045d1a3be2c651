package leaderboardmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating leaderboard table...")

		// tag_number is DEFERRABLE so a two-row tag swap can run as one UPDATE.
		_, err := db.NewRaw(`
			CREATE TABLE IF NOT EXISTS leaderboard (
				id BIGSERIAL PRIMARY KEY,
				discord_id VARCHAR(64) NOT NULL,
				tag_number INTEGER NOT NULL CHECK (tag_number > 0),
				last_played TIMESTAMPTZ,
				duration_held INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
				CONSTRAINT leaderboard_discord_id_key UNIQUE (discord_id),
				CONSTRAINT leaderboard_tag_number_key UNIQUE (tag_number) DEFERRABLE INITIALLY IMMEDIATE
			)`).Exec(ctx)
		if err != nil {
			return err
		}

		fmt.Println("Leaderboard table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping leaderboard table...")
		_, err := db.NewDropTable().Table("leaderboard").IfExists().Exec(ctx)
		return err
	})
}
