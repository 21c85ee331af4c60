package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/InventoryUI/internal/store"
)

var databaseURL string

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back the item database schema",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		url := databaseURL
		if url == "" {
			url = cfg.Store.DatabaseURL
		}
		if url == "" {
			return errors.New("no database URL: set DATABASE_URL or --database-url")
		}
		if args[0] == "down" {
			return store.MigrateDown(url)
		}
		return store.Migrate(url)
	},
}

func init() {
	migrateCmd.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL URL (default from DATABASE_URL)")
	rootCmd.AddCommand(migrateCmd)
}
