package roundmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating rounds and round_participants tables...")

		_, err := db.NewRaw(`
			CREATE TABLE IF NOT EXISTS rounds (
				id BIGSERIAL PRIMARY KEY,
				title TEXT NOT NULL,
				location TEXT NOT NULL,
				event_type TEXT,
				date VARCHAR(10) NOT NULL,
				time VARCHAR(5) NOT NULL,
				created_by VARCHAR(64) NOT NULL,
				state VARCHAR(20) NOT NULL DEFAULT 'UPCOMING'
					CHECK (state IN ('UPCOMING', 'IN_PROGRESS', 'FINALIZED', 'DELETED')),
				finalized BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
				deleted_at TIMESTAMPTZ
			)`).Exec(ctx)
		if err != nil {
			return err
		}

		_, err = db.NewRaw(`
			CREATE TABLE IF NOT EXISTS round_participants (
				id BIGSERIAL PRIMARY KEY,
				round_id BIGINT NOT NULL REFERENCES rounds (id) ON DELETE CASCADE,
				discord_id VARCHAR(64) NOT NULL,
				response VARCHAR(10) NOT NULL
					CHECK (response IN ('ACCEPT', 'TENTATIVE', 'DECLINE')),
				tag_number INTEGER,
				position INTEGER NOT NULL,
				joined_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
				CONSTRAINT round_participants_round_discord_key UNIQUE (round_id, discord_id)
			)`).Exec(ctx)
		if err != nil {
			return err
		}

		_, err = db.NewRaw("CREATE INDEX IF NOT EXISTS idx_rounds_state ON rounds (state) WHERE deleted_at IS NULL").Exec(ctx)
		if err != nil {
			return err
		}

		fmt.Println("Round tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping round tables...")
		if _, err := db.NewDropTable().Table("round_participants").IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Table("rounds").IfExists().Exec(ctx); err != nil {
			return err
		}
		fmt.Println("Round tables dropped successfully!")
		return nil
	})
}
