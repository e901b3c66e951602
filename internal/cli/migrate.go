package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gitlab.com/yelinaung/event-crm/internal/config"
	"gitlab.com/yelinaung/event-crm/internal/database"
	"gitlab.com/yelinaung/event-crm/internal/logger"
)

func newMigrateCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if databaseURL == "" {
				url, err := config.DatabaseURLFromEnv()
				if err != nil {
					return err
				}
				databaseURL = url
			}

			pool, err := database.Connect(cmd.Context(), databaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer pool.Close()

			if err := database.RunMigrations(cmd.Context(), pool); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			logger.Log.Info().Msg("Migrations applied")
			return nil
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL URL (default: $DATABASE_URL)")
	return cmd
}
