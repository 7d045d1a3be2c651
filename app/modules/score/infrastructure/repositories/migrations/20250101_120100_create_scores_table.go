package scoremigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating scores table...")

		_, err := db.NewRaw(`
			CREATE TABLE IF NOT EXISTS scores (
				id BIGSERIAL PRIMARY KEY,
				discord_id VARCHAR(64) NOT NULL,
				round_id BIGINT NOT NULL,
				score INTEGER NOT NULL,
				tag_number INTEGER,
				source VARCHAR(20) NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
				CONSTRAINT scores_discord_round_key UNIQUE (discord_id, round_id)
			)`).Exec(ctx)
		if err != nil {
			return err
		}

		_, err = db.NewRaw("CREATE INDEX IF NOT EXISTS idx_scores_round_id ON scores (round_id)").Exec(ctx)
		if err != nil {
			return err
		}

		fmt.Println("Scores table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping scores table...")
		_, err := db.NewDropTable().Table("scores").IfExists().Exec(ctx)
		return err
	})
}
