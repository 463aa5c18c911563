// Package cli holds the gallery-la command tree.
package cli

import (
	"context"
	"fmt"

	"gallery-la/config"
	"gallery-la/database"
	"gallery-la/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Execute runs the command line. Without a subcommand it serves the API.
func Execute(ctx context.Context) error {
	var migrate bool
	root := &cobra.Command{
		Use:           "gallery-la",
		Short:         "Gallery-La artwork and exhibition API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), migrate)
		},
	}
	root.Flags().BoolVar(&migrate, "migrate", false, "Run migrations before serving")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), migrate)
		},
	}
	serve.Flags().BoolVar(&migrate, "migrate", false, "Run migrations before serving")

	root.AddCommand(serve, &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	})
	return root.ExecuteContext(ctx)
}

// bootstrap loads configuration and opens the logger and database.
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	log, err := logging.New(cfg.LogLevel, cfg.Production())
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := database.Open(cfg, log)
	if err != nil {
		log.Sync()
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}

func runMigrate() error {
	_, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()
	if err := database.Migrate(db); err != nil {
		return err
	}
	log.Info("migrated successfully")
	return nil
}
