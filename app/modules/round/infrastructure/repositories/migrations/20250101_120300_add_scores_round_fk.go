package roundmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Linking scores to rounds...")

		_, err := db.NewRaw(`
			ALTER TABLE scores
				ADD CONSTRAINT scores_round_id_fkey
				FOREIGN KEY (round_id) REFERENCES rounds(id)`).Exec(ctx)
		if err != nil {
			return err
		}

		fmt.Println("Scores linked to rounds successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Unlinking scores from rounds...")
		_, err := db.NewRaw("ALTER TABLE scores DROP CONSTRAINT IF EXISTS scores_round_id_fkey").Exec(ctx)
		return err
	})
}
