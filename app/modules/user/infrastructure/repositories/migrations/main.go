package usermigrations

import "github.com/uptrace/bun/migrate"

var Migrations = migrate.NewMigrations()

func init() {
	// Migration IDs are derived from the caller's file name.
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
}
